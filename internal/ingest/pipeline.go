// Package ingest drives the polling loop that turns spreadsheets in the
// input folder into HL7 message files and archives the originals.
package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"hl7fileprocessor/internal/config"
	"hl7fileprocessor/internal/hl7"
	"hl7fileprocessor/internal/logger"
	"hl7fileprocessor/internal/patient"
	"hl7fileprocessor/internal/sink"
	"hl7fileprocessor/internal/spreadsheet"
	"hl7fileprocessor/pkg/stamp"
	"hl7fileprocessor/pkg/tracing"
)

type MessageFactory interface {
	CreateAdmissionMessage(row patient.Row) hl7.AdmissionMessage
}

const defaultInterval = time.Minute

type Option func(*Pipeline)

// WithClock replaces the clock used for archive stamps and reports.
func WithClock(now stamp.Clock) Option {
	return func(p *Pipeline) {
		p.now = now
		p.stamps = stamp.NewSequence(now)
	}
}

// WithInterval overrides the polling interval derived from the config.
// A non-positive d is ignored.
func WithInterval(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.interval = d
		}
	}
}

type Pipeline struct {
	cfg      config.ProcessingConfig
	source   spreadsheet.Source
	factory  MessageFactory
	sink     sink.Writer
	logger   logger.Logger
	tracer   trace.Tracer
	interval time.Duration
	now      stamp.Clock
	stamps   *stamp.Sequence

	mu          sync.RWMutex
	last        TickReport
	hasLast     bool
	lastSuccess time.Time
}

func NewPipeline(
	cfg config.ProcessingConfig,
	source spreadsheet.Source,
	factory MessageFactory,
	writer sink.Writer,
	log logger.Logger,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		source:   source,
		factory:  factory,
		sink:     writer,
		logger:   log,
		tracer:   tracing.GetTracer("hl7fileprocessor/ingest"),
		interval: cfg.PollingInterval(),
		now:      time.Now,
		stamps:   stamp.NewSequence(nil),
	}
	for _, o := range opts {
		o(p)
	}
	if p.interval <= 0 {
		p.interval = defaultInterval
	}
	return p
}

// Run processes the input folder immediately and then once per interval
// until ctx is cancelled. A failing tick is logged and does not stop the
// loop. Cancellation is a clean stop and returns nil.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Infow("Ingest pipeline started",
		"input_folder", p.cfg.InputFolder,
		"output_folder", p.cfg.OutputFolder,
		"interval", p.interval.String(),
		"continue_on_error", p.cfg.ContinueOnError,
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.runTick(ctx)

		select {
		case <-ctx.Done():
			p.logger.Info("Ingest pipeline stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Pipeline) runTick(ctx context.Context) {
	report, err := p.Tick(ctx)

	switch {
	case err == nil:
		if report.FilesFound > 0 {
			p.logger.InfowCtx(ctx, "Tick completed",
				"tick_id", report.TickID,
				"files_found", report.FilesFound,
				"files_archived", report.FilesArchived,
				"messages_written", report.MessagesWritten,
				"duration_ms", report.DurationMs,
			)
		}
	case isCancellation(ctx, err):
		p.logger.InfowCtx(ctx, "Tick interrupted by shutdown", "tick_id", report.TickID)
	default:
		p.logger.ErrorwCtx(ctx, "Tick failed",
			"tick_id", report.TickID,
			"error", err,
			"files_found", report.FilesFound,
			"files_archived", report.FilesArchived,
			"files_failed", report.FilesFailed,
		)
	}
}

// LastReport returns the report of the most recent finished tick.
func (p *Pipeline) LastReport() (TickReport, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last, p.hasLast
}

func (p *Pipeline) setLast(report TickReport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = report
	p.hasLast = true
	if report.Error == "" && !report.Cancelled {
		p.lastSuccess = report.StartedAt
	}
}

// LastSuccess returns the start time of the most recent tick that
// finished without error.
func (p *Pipeline) LastSuccess() (time.Time, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSuccess, !p.lastSuccess.IsZero()
}

// isCancellation reports whether err is the result of ctx being cancelled
// rather than a failure. A per-file deadline is a failure.
func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}
