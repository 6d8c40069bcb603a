package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/i474232898/weather-export/internal/api/http"
	"github.com/i474232898/weather-export/internal/config"
	"github.com/i474232898/weather-export/internal/db"
	"github.com/i474232898/weather-export/internal/logging"
	"github.com/i474232898/weather-export/internal/scheduler"
	"github.com/i474232898/weather-export/internal/store"
	"github.com/i474232898/weather-export/internal/weather"
	"github.com/i474232898/weather-export/internal/weather/providers"
)

var (
	version = "dev"
	appName = "weather-export"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("weather-export stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Error("close database", "error", err)
		}
	}()

	if err := db.Migrate(ctx, database, cfg.DBDriver); err != nil {
		return err
	}

	// Shared HTTP client for outbound provider calls. A zero timeout waits
	// for the upstream indefinitely.
	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}
	provider := providers.NewOpenMeteoProvider(httpClient, cfg.OpenMeteoBaseURL)

	service := weather.NewService(
		store.NewSQLStore(database, cfg.DBDriver),
		provider,
		weather.WithExportWindow(cfg.ExportWindow),
		weather.WithLogger(logger),
	)

	locations := cfg.Locations
	named, err := scheduler.ResolveNamed(cfg.GeocoderAPIKey, cfg.NamedLocations)
	if err != nil {
		logger.Warn("some named locations were not resolved", "error", err)
	}
	locations = append(locations, named...)

	sched := scheduler.New(locations, cfg.FetchInterval, service)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	app := httpapi.NewApp()
	httpapi.RegisterRoutes(app, service)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "port", cfg.Port, "db_driver", cfg.DBDriver)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
	return nil
}
