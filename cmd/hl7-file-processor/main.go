package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hl7fileprocessor/internal/config"
	"hl7fileprocessor/internal/constants"
	"hl7fileprocessor/internal/logger"
	"hl7fileprocessor/pkg/logging"
)

var (
	configFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   constants.ServiceName,
		Short: "Converts patient spreadsheets into HL7 ADT^A01 messages",
		Long: "HL7 File Processor polls an input folder for .xlsx patient lists, writes one " +
			"ADT^A01 message file per row and archives processed spreadsheets",
		RunE: serveCmd().RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (required)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(onceCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Poll the input folder until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, app *App) error {
				return app.Run(ctx)
			})
		},
	}
}

func onceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Process the pending spreadsheets once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, app *App) error {
				return app.RunOnce(ctx)
			})
		},
	}
}

func run(fn func(ctx context.Context, app *App) error) error {
	earlyLog := logging.NewEarlyLog()

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
		if configFile == "" {
			earlyLog.Error("Config file is required. Use --config flag or CONFIG_FILE environment variable")
			return fmt.Errorf("config file is required")
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return err
	}

	log, err := logger.New(cfg.Logging, constants.ServiceName)
	if err != nil {
		earlyLog.Error("Failed to init logger: %v", err)
		return err
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.InfowCtx(ctx, "Starting HL7 File Processor", "config", configFile)

	app := NewApp(cfg, log)
	if err := app.Initialize(ctx); err != nil {
		log.ErrorwCtx(ctx, "Failed to initialize application", "error", err)
		return err
	}

	runErr := fn(ctx, app)

	if err := app.Shutdown(ctx); err != nil {
		log.ErrorwCtx(ctx, "Shutdown error", "error", err)
	}

	if runErr != nil {
		log.ErrorwCtx(ctx, "Application error", "error", runErr)
		return runErr
	}
	return nil
}
