package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "hl7fileprocessor/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
processing:
  input_folder: ./in
  output_folder: ./out
  polling_interval_minutes: 2
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./in", cfg.Processing.InputFolder)
	assert.Equal(t, "./out", cfg.Processing.OutputFolder)
	assert.Equal(t, 2*time.Minute, cfg.Processing.PollingInterval())
	assert.False(t, cfg.Processing.ContinueOnError)
	assert.Zero(t, cfg.Processing.FileTimeout)

	assert.Equal(t, "HL7FileProcessor", cfg.HL7.SendingApplication)
	assert.Equal(t, "HL7Consumer", cfg.HL7.ReceivingApplication)
	assert.Equal(t, "HFP", cfg.HL7.AssigningAuthority)
	assert.Equal(t, "hl7", cfg.HL7.FileExtension)

	assert.True(t, cfg.Bootstrap.SeedSample)
	assert.Equal(t, "patients.xlsx", cfg.Bootstrap.SampleFileName)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 30*time.Second, cfg.CircuitBreaker.Timeout)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
processing:
  input_folder: ./in
  output_folder: ./out
  polling_interval_minutes: 2
`)
	t.Setenv("HL7_PROCESSING_INPUT_FOLDER", "/data/incoming")
	t.Setenv("HL7_PROCESSING_POLLING_INTERVAL_MINUTES", "7")
	t.Setenv("HL7_HL7_SENDING_APPLICATION", "ADMITS")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/incoming", cfg.Processing.InputFolder)
	assert.Equal(t, 7, cfg.Processing.PollingIntervalMinutes)
	assert.Equal(t, "ADMITS", cfg.HL7.SendingApplication)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidIsFatal(t *testing.T) {
	path := writeConfig(t, `
processing:
  input_folder: ""
  output_folder: ./out
  polling_interval_minutes: 0
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConfig))
	assert.Contains(t, err.Error(), "processing.input_folder")
	assert.Contains(t, err.Error(), "processing.polling_interval_minutes")
}

func validConfig() *Config {
	return &Config{
		Processing: ProcessingConfig{
			InputFolder:            "in",
			OutputFolder:           "out",
			PollingIntervalMinutes: 1,
		},
		HL7: HL7Config{
			SendingApplication:   "A",
			ReceivingApplication: "B",
			AssigningAuthority:   "C",
			FileExtension:        "hl7",
		},
	}
}

func TestValidateStatic(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cfg *Config)
		wantField string
	}{
		{
			name:   "valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:      "blank output folder",
			mutate:    func(cfg *Config) { cfg.Processing.OutputFolder = "   " },
			wantField: "processing.output_folder",
		},
		{
			name:      "negative polling interval",
			mutate:    func(cfg *Config) { cfg.Processing.PollingIntervalMinutes = -1 },
			wantField: "processing.polling_interval_minutes",
		},
		{
			name:      "negative file timeout",
			mutate:    func(cfg *Config) { cfg.Processing.FileTimeout = -time.Second },
			wantField: "processing.file_timeout",
		},
		{
			name:      "dotted extension",
			mutate:    func(cfg *Config) { cfg.HL7.FileExtension = ".hl7" },
			wantField: "hl7.file_extension",
		},
		{
			name: "server port out of range",
			mutate: func(cfg *Config) {
				cfg.Server.Enabled = true
				cfg.Server.Port = 70000
			},
			wantField: "server.port",
		},
		{
			name: "breaker ratio out of range",
			mutate: func(cfg *Config) {
				cfg.CircuitBreaker.Enabled = true
				cfg.CircuitBreaker.FailureRatio = 1.5
				cfg.CircuitBreaker.Timeout = time.Second
			},
			wantField: "circuit_breaker.failure_ratio",
		},
		{
			name: "tracing without endpoint",
			mutate: func(cfg *Config) {
				cfg.Tracing.Enabled = true
			},
			wantField: "tracing.otlp.endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateStatic(cfg)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestLoadConfig_ExampleFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.Processing.PollingInterval())
	assert.Zero(t, cfg.Processing.FileTimeout)
	assert.True(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Server.RateLimit.CleanupInterval)
	assert.Equal(t, uint32(5), cfg.CircuitBreaker.MinRequests)
	assert.Equal(t, 30*time.Second, cfg.CircuitBreaker.Timeout)
}
