package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hl7fileprocessor/internal/config"
	"hl7fileprocessor/pkg/logging"
)

func TestNew_Levels(t *testing.T) {
	for _, level := range []string{"", "debug", "INFO", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			log, err := New(config.LoggingConfig{Level: level, Format: "console"}, "svc")
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud"}, "svc")
	assert.Error(t, err)
}

func TestWithContext_AddsServiceName(t *testing.T) {
	l := &SugaredLogger{serviceName: "svc"}

	ctx := logging.WithTickID(context.Background(), "tick-1")
	fields := l.withContext(ctx, []interface{}{"rows", 3})

	assert.Equal(t, []interface{}{
		logging.TickIDKey, "tick-1",
		logging.ServiceNameKey, "svc",
		"rows", 3,
	}, fields)
}

func TestWithContext_ContextServiceNameWins(t *testing.T) {
	l := &SugaredLogger{serviceName: "svc"}

	ctx := logging.WithServiceName(context.Background(), "other")
	fields := l.withContext(ctx, nil)

	assert.Equal(t, []interface{}{logging.ServiceNameKey, "other"}, fields)
}
