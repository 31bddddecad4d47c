package sink

import (
	"context"
	"errors"

	"hl7fileprocessor/internal/hl7"
	"hl7fileprocessor/pkg/circuitbreaker"
	apperrors "hl7fileprocessor/pkg/errors"
)

// BreakerSink stops hammering a failing output folder. Once the breaker
// opens, writes fail fast with an I/O error until the breaker half-opens.
type BreakerSink struct {
	next    Writer
	breaker *circuitbreaker.Wrapper
}

func NewBreakerSink(next Writer, cfg circuitbreaker.Config) *BreakerSink {
	if cfg.IsSuccessful == nil {
		cfg.IsSuccessful = countsAsSuccess
	}
	return &BreakerSink{
		next:    next,
		breaker: circuitbreaker.NewWrapper(cfg),
	}
}

func (s *BreakerSink) Write(ctx context.Context, msg hl7.AdmissionMessage) error {
	_, err := s.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
		return nil, s.next.Write(ctx, msg)
	})
	if circuitbreaker.IsOpenError(err) {
		return apperrors.ErrIO.
			WithMessage("output folder circuit breaker is open").
			WithCause(err).
			WithDetail("file_name", msg.FileName)
	}
	return err
}

func (s *BreakerSink) Breaker() *circuitbreaker.Wrapper {
	return s.breaker
}

// Cancellation is not a fault of the output folder.
func countsAsSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
