package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/i474232898/weather-export/internal/config"
)

// New returns the process logger for cfg.AppEnv: colored tint output on
// stderr in dev, one JSON object per line on stdout in prod. Every record
// carries the app name, build version and environment.
func New(cfg *config.AppConfig, version string, appName string) *slog.Logger {
	w := io.Writer(os.Stdout)
	if cfg.AppEnv != config.EnvProd {
		w = os.Stderr
	}
	return newLogger(w, cfg, version, appName)
}

func newLogger(w io.Writer, cfg *config.AppConfig, version, appName string) *slog.Logger {
	return slog.New(newHandler(w, cfg)).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
	)
}

func newHandler(w io.Writer, cfg *config.AppConfig) slog.Handler {
	if cfg.AppEnv == config.EnvProd {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      cfg.LogLevel,
		AddSource:  cfg.LogLevel <= slog.LevelDebug,
		TimeFormat: time.TimeOnly,
		NoColor:    w != os.Stderr,
	})
}
