// Package config provides application configuration from environment variables
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Conditions store drivers
const (
	DriverNone     = ""
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// AppConfig holds all application configuration
type AppConfig struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// EphemerisDir is the absolute path of the VSOP87 directory. Relative
	// EPHEMERIS_DIR values are resolved against the executable's directory.
	EphemerisDir string

	Cache      CacheConfig
	NightState int

	Conditions ConditionsConfig
}

// CacheConfig sizes the result caches
type CacheConfig struct {
	Size         int
	KeyDecimals  int
	StatsSeconds int
}

// ConditionsConfig selects the observing conditions store
type ConditionsConfig struct {
	Driver      string
	DatabaseURL string
	SQLitePath  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*AppConfig, error) {
	appEnv := getEnv("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	ephemerisDir, err := resolveDir(getEnv("EPHEMERIS_DIR", "vsop87"))
	if err != nil {
		return nil, fmt.Errorf("invalid EPHEMERIS_DIR: %w", err)
	}

	cacheSize, err := getEnvInt("CACHE_SIZE", 128)
	if err != nil {
		return nil, err
	}
	if cacheSize <= 0 {
		return nil, fmt.Errorf("invalid CACHE_SIZE %d: must be positive", cacheSize)
	}
	keyDecimals, err := getEnvInt("CACHE_KEY_DECIMALS", -1)
	if err != nil {
		return nil, err
	}
	if keyDecimals < -1 || keyDecimals > 8 {
		return nil, fmt.Errorf("invalid CACHE_KEY_DECIMALS %d (allowed: -1 to 8)", keyDecimals)
	}
	statsSeconds, err := getEnvInt("CACHE_STATS_EVERY_SECONDS", 300)
	if err != nil {
		return nil, err
	}

	nightState, err := getEnvInt("NIGHT_STATE", 0)
	if err != nil {
		return nil, err
	}
	if nightState < 0 || nightState > 4 {
		return nil, fmt.Errorf("invalid NIGHT_STATE %d (allowed: 0 to 4)", nightState)
	}

	conditions := ConditionsConfig{
		Driver:      getEnv("CONDITIONS_DRIVER", DriverNone),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "nightsky.db"),
	}
	switch conditions.Driver {
	case DriverNone, DriverSQLite:
	case DriverPostgres:
		if conditions.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when CONDITIONS_DRIVER is %q", DriverPostgres)
		}
	default:
		return nil, fmt.Errorf("invalid CONDITIONS_DRIVER %q (allowed: %s, %s or empty)", conditions.Driver, DriverPostgres, DriverSQLite)
	}

	return &AppConfig{
		AppEnv:       appEnv,
		LogLevel:     level,
		HTTPAddr:     getEnv("HTTP_ADDR", ":3000"),
		EphemerisDir: ephemerisDir,
		Cache: CacheConfig{
			Size:         cacheSize,
			KeyDecimals:  keyDecimals,
			StatsSeconds: statsSeconds,
		},
		NightState: nightState,
		Conditions: conditions,
	}, nil
}

func resolveDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(exe), dir), nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return n, nil
}
