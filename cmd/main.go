// Main entry point for the night sky visibility service
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-nightsky/internal/cache"
	"go-nightsky/internal/config"
	"go-nightsky/internal/ephemeris"
	"go-nightsky/internal/handlers"
	"go-nightsky/internal/logging"
	"go-nightsky/internal/repo"
	"go-nightsky/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appName = "go-nightsky"

// Set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)
	logger.Info("starting",
		"version", version,
		"env", cfg.AppEnv,
		"log_level", cfg.LogLevel.String(),
		"ephemeris_dir", cfg.EphemerisDir,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

func run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	// Load ephemeris data; the service cannot answer without it.
	start := time.Now()
	eph, err := ephemeris.LoadMeeus(ctx, cfg.EphemerisDir)
	if err != nil {
		return fmt.Errorf("load ephemeris: %w", err)
	}
	logger.Info("ephemeris loaded", "dir", cfg.EphemerisDir, "took", time.Since(start))

	// Initialize the conditions store
	conditionsRepo, closeRepo, err := openConditionsRepo(ctx, cfg.Conditions, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	// Initialize services
	opts := services.SkyOptions{
		CacheSize:  cfg.Cache.Size,
		NightState: cfg.NightState,
	}
	if cfg.Cache.KeyDecimals >= 0 {
		opts.KeyFunc = cache.RoundedKey(cfg.Cache.KeyDecimals)
	}
	conditions := services.NewConditionsService(conditionsRepo, logger)
	sky, err := services.NewSkyService(eph, conditions, opts, logger)
	if err != nil {
		return fmt.Errorf("create sky service: %w", err)
	}

	// Start background tasks
	startBackgroundTasks(ctx, cfg, sky, logger)

	// Setup HTTP server
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.RequestLogger(logger))
	handlers.SetupRoutes(r, handlers.NewHandler(sky, conditions, logger))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return ctx.Err()
}

// openConditionsRepo returns the configured conditions store, or nil when
// none is configured.
func openConditionsRepo(ctx context.Context, cfg config.ConditionsConfig, logger *slog.Logger) (services.ConditionsRepo, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		if err := repo.InitDB(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		pgRepo := repo.NewPgConditionsRepo(pool)
		if n, err := pgRepo.Count(ctx); err == nil {
			logger.Info("conditions store ready", "driver", cfg.Driver, "cells", n)
		}
		return pgRepo, pool.Close, nil

	case config.DriverSQLite:
		db, err := repo.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := repo.InitSQLite(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("conditions store ready", "driver", cfg.Driver, "path", cfg.SQLitePath)
		return repo.NewSQLiteConditionsRepo(db), func() {
			if err := db.Close(); err != nil {
				logger.Warn("close sqlite", "error", err)
			}
		}, nil

	default:
		logger.Info("no conditions store configured, reporting default conditions")
		return nil, func() {}, nil
	}
}

func startBackgroundTasks(ctx context.Context, cfg *config.AppConfig, sky *services.SkyService, logger *slog.Logger) {
	if cfg.Cache.StatsSeconds <= 0 {
		return
	}

	// Cache statistics reporter
	go func() {
		interval := time.Duration(cfg.Cache.StatsSeconds) * time.Second
		logger.Info("starting cache stats task", "interval", interval)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, s := range sky.CacheStats() {
					logger.Info("cache stats",
						"cache", s.Name,
						"len", s.Len,
						"capacity", s.Capacity,
						"hits", s.Hits,
						"misses", s.Misses,
						"evictions", s.Evictions,
					)
				}
			}
		}
	}()
}
