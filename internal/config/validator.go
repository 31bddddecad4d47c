package config

import (
	"fmt"
	"strings"

	apperrors "hl7fileprocessor/pkg/errors"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateStatic checks every section and reports all problems at once.
// The returned error matches apperrors.ErrConfig.
func ValidateStatic(cfg *Config) error {
	var errs []error

	errs = append(errs, validateProcessing(cfg.Processing)...)

	if err := validateHL7(cfg.HL7); err != nil {
		errs = append(errs, err)
	}

	if err := validateServer(cfg.Server); err != nil {
		errs = append(errs, err)
	}

	if err := validateCircuitBreaker(cfg.CircuitBreaker); err != nil {
		errs = append(errs, err)
	}

	if err := validateTracing(cfg.Tracing); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return apperrors.ErrConfig.
			WithMessage(fmt.Sprintf("configuration validation failed: %v", errs)).
			WithCause(errs[0])
	}

	return nil
}

func validateProcessing(cfg ProcessingConfig) []error {
	var errs []error

	if strings.TrimSpace(cfg.InputFolder) == "" {
		errs = append(errs, &ValidationError{
			Field:   "processing.input_folder",
			Message: "input folder is required",
		})
	}

	if strings.TrimSpace(cfg.OutputFolder) == "" {
		errs = append(errs, &ValidationError{
			Field:   "processing.output_folder",
			Message: "output folder is required",
		})
	}

	if cfg.PollingIntervalMinutes <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "processing.polling_interval_minutes",
			Message: fmt.Sprintf("polling interval must be greater than 0, got %d", cfg.PollingIntervalMinutes),
		})
	}

	if cfg.FileTimeout < 0 {
		errs = append(errs, &ValidationError{
			Field:   "processing.file_timeout",
			Message: "file timeout must be non-negative",
		})
	}

	return errs
}

func validateHL7(cfg HL7Config) error {
	if cfg.SendingApplication == "" {
		return &ValidationError{
			Field:   "hl7.sending_application",
			Message: "sending application is required",
		}
	}

	if cfg.ReceivingApplication == "" {
		return &ValidationError{
			Field:   "hl7.receiving_application",
			Message: "receiving application is required",
		}
	}

	if cfg.AssigningAuthority == "" {
		return &ValidationError{
			Field:   "hl7.assigning_authority",
			Message: "assigning authority is required",
		}
	}

	if cfg.FileExtension == "" || strings.ContainsAny(cfg.FileExtension, `./\`) {
		return &ValidationError{
			Field:   "hl7.file_extension",
			Message: fmt.Sprintf("file extension must be a bare name without dots or separators, got %q", cfg.FileExtension),
		}
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RPS <= 0 {
			return &ValidationError{
				Field:   "server.rate_limit.rps",
				Message: "rps must be positive",
			}
		}
		if cfg.RateLimit.Burst < 1 {
			return &ValidationError{
				Field:   "server.rate_limit.burst",
				Message: "burst must be at least 1",
			}
		}
	}

	return nil
}

func validateCircuitBreaker(cfg CircuitBreakerConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.FailureRatio <= 0 || cfg.FailureRatio > 1 {
		return &ValidationError{
			Field:   "circuit_breaker.failure_ratio",
			Message: fmt.Sprintf("failure ratio must be in (0, 1], got %v", cfg.FailureRatio),
		}
	}

	if cfg.Timeout <= 0 {
		return &ValidationError{
			Field:   "circuit_breaker.timeout",
			Message: "timeout must be positive",
		}
	}

	return nil
}

func validateTracing(cfg TracingConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.OTLP.Endpoint == "" {
		return &ValidationError{
			Field:   "tracing.otlp.endpoint",
			Message: "OTLP endpoint is required when tracing is enabled",
		}
	}

	validSamplers := map[string]bool{
		"always_on": true, "always_off": true, "traceidratio": true,
		"parentbased_always_on": true, "parentbased_traceidratio": true,
	}
	if cfg.Sampler.Type != "" && !validSamplers[strings.ToLower(cfg.Sampler.Type)] {
		return &ValidationError{
			Field:   "tracing.sampler.type",
			Message: fmt.Sprintf("unknown sampler type: %s", cfg.Sampler.Type),
		}
	}

	return nil
}
