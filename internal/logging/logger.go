// Package logging builds the service's structured logger
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"go-nightsky/internal/config"

	"github.com/lmittmann/tint"
)

// New returns a colorized logger in dev and a JSON logger otherwise.
func New(cfg *config.AppConfig, version, appName string) *slog.Logger {
	return newLogger(os.Stdout, cfg, version, appName)
}

func newLogger(w io.Writer, cfg *config.AppConfig, version, appName string) *slog.Logger {
	if cfg.AppEnv == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	logger := slog.New(h).With("app", appName, "env", cfg.AppEnv)
	if version != "" {
		logger = logger.With("version", version)
	}
	return logger
}
