package bootstrap

import (
	"context"
	"fmt"

	"hl7fileprocessor/internal/config"
	"hl7fileprocessor/internal/logger"
	"hl7fileprocessor/pkg/tracing"
)

// Base holds the pieces every entrypoint needs and owns their shutdown.
type Base struct {
	Config *config.Config
	Logger logger.Logger
	Tracer *tracing.TracerProvider
}

func NewBase(cfg *config.Config, log logger.Logger) *Base {
	return &Base{
		Config: cfg,
		Logger: log,
	}
}

func (b *Base) InitTracing(serviceName string) error {
	tp, err := tracing.Init(b.Config.Tracing, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	b.Tracer = tp
	return nil
}

func (b *Base) Shutdown(ctx context.Context, additionalShutdown func(ctx context.Context) []error) error {
	b.Logger.Info("Shutting down application...")

	var errs []error

	if additionalShutdown != nil {
		errs = append(errs, additionalShutdown(ctx)...)
	}

	if b.Tracer != nil {
		if err := b.Tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown error: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	b.Logger.Info("Application exited successfully")
	return nil
}
