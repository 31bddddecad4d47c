package tracing

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldTrace(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "/health", want: false},
		{path: "/metrics", want: false},
		{path: "/status/last", want: true},
		{path: "/", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.path, nil)
			assert.Equal(t, tt.want, shouldTrace(r))
		})
	}
}
