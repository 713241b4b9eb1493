package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/meenmo/multicurve/config"
	"github.com/meenmo/multicurve/logger"
	"github.com/meenmo/multicurve/marketdata"
	"github.com/meenmo/multicurve/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the calibration service",
	Long: `Starts the HTTP curve service. Configuration comes from the
environment (or a .env file): the curve group file, the quote source,
an optional Postgres store and the calibration schedule.

Endpoints:
  GET  /health
  GET  /api/groups
  GET  /api/runs
  GET  /api/groups/{group}/discount/{ccy}?date=2006-01-02
  GET  /api/groups/{group}/forward/{index}?date=2006-01-02
  GET  /api/groups/{group}/zero/{ccy}?date=2006-01-02
  POST /api/groups/{group}/calibrate

Example:
  GROUP_FILE=eur.yaml QUOTE_FILE=quotes.csv curvectl serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info().Str("env", cfg.Env).Str("port", cfg.HTTPPort).Msg("starting curve service")

	if cfg.GroupFile == "" {
		return fmt.Errorf("GROUP_FILE is required")
	}
	group, err := config.LoadGroupFile(cfg.GroupFile)
	if err != nil {
		return err
	}

	source, err := buildSource(cfg, log)
	if err != nil {
		return err
	}

	if cfg.DatabaseURL != "" {
		store, err := marketdata.OpenStore(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("database unreachable: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		log.Info().Msg("quote store connected")
		source = persistedSource(source, store, log)
	}

	registry := service.NewRegistry()
	runner := service.NewRunner(group, source, registry, service.RunnerOptions{Logger: &log})

	// First calibration before the server opens; a failure is logged
	// and left for the scheduler or a manual trigger to retry.
	startCtx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	if _, err := runner.Run(startCtx); err != nil {
		log.Warn().Err(err).Msg("initial calibration failed, serving without curves")
	}
	cancel()

	handlers := service.NewHandlers(registry, runner, log)
	server := service.NewServer(cfg.HTTPPort, service.NewRouter(handlers, log), log)

	if cfg.SchedulerEnabled {
		sched, err := service.NewScheduler(cfg.CalibrationSpec, runner, log)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("curve service stopped")
	return nil
}

// buildSource picks the quote source from configuration: an HTTP feed
// when QUOTE_SOURCE_URL is set, otherwise a local CSV file.
func buildSource(cfg *config.Config, log zerolog.Logger) (marketdata.Source, error) {
	switch {
	case cfg.QuoteSourceURL != "":
		return marketdata.NewHTTPSource(cfg.QuoteSourceURL, marketdata.HTTPSourceOptions{
			RequestsPerSecond: float64(cfg.QuoteSourceRPS),
			Logger:            &log,
		}), nil
	case cfg.QuoteFile != "":
		return &marketdata.FileSource{Path: cfg.QuoteFile}, nil
	default:
		return nil, fmt.Errorf("QUOTE_SOURCE_URL or QUOTE_FILE is required")
	}
}

// persistedSource writes every successful fetch through to the store
// and falls back to the latest stored quotes when the feed is down.
func persistedSource(base marketdata.Source, store *marketdata.Store, log zerolog.Logger) marketdata.Source {
	return marketdata.SourceFunc(func(ctx context.Context) ([]marketdata.QuoteRecord, error) {
		records, err := base.Fetch(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("quote fetch failed, reading stored quotes")
			return store.LoadQuotes(ctx, time.Now().UTC())
		}
		if err := store.SaveQuotes(ctx, time.Now().UTC(), records); err != nil {
			log.Warn().Err(err).Msg("could not persist quotes")
		}
		return records, nil
	})
}
