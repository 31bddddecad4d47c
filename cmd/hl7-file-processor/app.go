package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"hl7fileprocessor/internal/config"
	"hl7fileprocessor/internal/constants"
	"hl7fileprocessor/internal/hl7"
	"hl7fileprocessor/internal/ingest"
	"hl7fileprocessor/internal/logger"
	"hl7fileprocessor/internal/sink"
	"hl7fileprocessor/internal/spreadsheet"
	"hl7fileprocessor/internal/status"
	"hl7fileprocessor/pkg/bootstrap"
	"hl7fileprocessor/pkg/circuitbreaker"
	"hl7fileprocessor/pkg/health"
	"hl7fileprocessor/pkg/metrics"
)

type App struct {
	*bootstrap.Base
	pipeline *ingest.Pipeline
	server   *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Base: bootstrap.NewBase(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.InitTracing(constants.ServiceName); err != nil {
		return err
	}

	metrics.RegisterIngestMetrics()

	workspace := bootstrap.NewWorkspace(a.Config.Processing, a.Config.Bootstrap, a.Logger)
	if err := workspace.Prepare(ctx); err != nil {
		return fmt.Errorf("failed to prepare workspace: %w", err)
	}

	factory := hl7.NewFactory(hl7.Options{
		SendingApplication:   a.Config.HL7.SendingApplication,
		ReceivingApplication: a.Config.HL7.ReceivingApplication,
		AssigningAuthority:   a.Config.HL7.AssigningAuthority,
		FileExtension:        a.Config.HL7.FileExtension,
	}, hl7.NewEncoder())

	a.pipeline = ingest.NewPipeline(
		a.Config.Processing,
		spreadsheet.NewExcelSource(),
		factory,
		a.newSink(),
		a.Logger,
	)

	if a.Config.Server.Enabled {
		a.initServer(ctx)
	}

	return nil
}

func (a *App) newSink() sink.Writer {
	fileSink := sink.NewFileSink(a.Config.Processing.OutputFolder)
	if !a.Config.CircuitBreaker.Enabled {
		return fileSink
	}

	metrics.RegisterCircuitBreakerMetrics()

	cb := a.Config.CircuitBreaker
	cfg := circuitbreaker.DefaultConfig("output-folder")
	cfg.MaxRequests = cb.MaxRequests
	cfg.Interval = cb.Interval
	cfg.Timeout = cb.Timeout
	cfg.ReadyToTrip = circuitbreaker.RatioTrip(cb.MinRequests, cb.FailureRatio)
	cfg.OnStateChange = func(name string, from, to gobreaker.State) {
		a.Logger.Warnw("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
	}

	return sink.NewBreakerSink(fileSink, cfg)
}

func (a *App) initServer(ctx context.Context) {
	metrics.RegisterServerMetrics()

	registry := health.NewCheckerRegistry()
	registry.Register(health.NewDirectoryChecker("input_folder", a.Config.Processing.InputFolder, true))
	registry.Register(health.NewDirectoryChecker("output_folder", a.Config.Processing.OutputFolder, true))
	registry.Register(health.NewTickChecker(a.pipeline.LastSuccess, 3*a.Config.Processing.PollingInterval()))

	router := status.NewRouter(ctx, status.RouterConfig{
		Server:         a.Config.Server,
		TracingEnabled: a.Config.Tracing.Enabled,
		Health:         registry,
		Reports:        a.pipeline,
		Logger:         a.Logger,
	})

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler: router,
	}
}

// Run drives the pipeline, and the status server when enabled, until ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	if a.server != nil {
		g.Go(func() error {
			a.Logger.InfowCtx(ctx, "Status server starting", "port", a.Config.Server.Port)
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("status server error: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()
			return a.server.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		return a.pipeline.Run(gCtx)
	})

	return g.Wait()
}

// RunOnce performs a single tick. Cancellation is not an error.
func (a *App) RunOnce(ctx context.Context) error {
	report, err := a.pipeline.Tick(ctx)
	if err != nil && !report.Cancelled {
		return err
	}

	a.Logger.InfowCtx(ctx, "Single run finished",
		"files_found", report.FilesFound,
		"files_archived", report.FilesArchived,
		"messages_written", report.MessagesWritten,
	)
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	return a.Base.Shutdown(shutdownCtx, nil)
}
