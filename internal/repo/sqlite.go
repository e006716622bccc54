package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-nightsky/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sky_conditions (
  lat_cell        INTEGER NOT NULL,
  lon_cell        INTEGER NOT NULL,
  cloud_cover     INTEGER NOT NULL CHECK (cloud_cover BETWEEN 0 AND 100),
  light_pollution INTEGER NOT NULL CHECK (light_pollution BETWEEN 1 AND 9),
  forecast        TEXT    NOT NULL DEFAULT '[]',
  updated_at      TEXT    NOT NULL,
  PRIMARY KEY (lat_cell, lon_cell)
);
`

// OpenSQLite opens the sqlite database at path and validates connectivity.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn, err := buildDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	// One writer; readers go through the same connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func buildDSN(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}
	dir := filepath.Dir(strings.TrimPrefix(path, "file:"))
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	params := []string{
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}

// InitSQLite creates the conditions table.
func InitSQLite(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("init sqlite schema: %w", err)
	}
	return nil
}

// SQLiteConditionsRepo handles observing conditions persistence in sqlite
type SQLiteConditionsRepo struct {
	db *sql.DB
}

// NewSQLiteConditionsRepo creates a new sqlite conditions repository
func NewSQLiteConditionsRepo(db *sql.DB) *SQLiteConditionsRepo {
	return &SQLiteConditionsRepo{db: db}
}

// Lookup returns the conditions of the cell holding lat, lon, or nil when
// none are stored.
func (r *SQLiteConditionsRepo) Lookup(ctx context.Context, lat, lon float64) (*domain.Conditions, error) {
	latCell, lonCell := Cell(lat, lon)
	row := r.db.QueryRowContext(ctx,
		"SELECT cloud_cover, light_pollution, forecast, updated_at FROM sky_conditions WHERE lat_cell = ? AND lon_cell = ?",
		latCell, lonCell)

	var c domain.Conditions
	var forecast, updatedAt string
	err := row.Scan(&c.CloudCover, &c.LightPollution, &forecast, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
	}
	if c.HourlyForecast, err = decodeForecast([]byte(forecast)); err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert stores c for the cell holding lat, lon
func (r *SQLiteConditionsRepo) Upsert(ctx context.Context, lat, lon float64, c domain.Conditions) error {
	latCell, lonCell := Cell(lat, lon)
	forecast, err := encodeForecast(c.HourlyForecast)
	if err != nil {
		return err
	}
	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sky_conditions(lat_cell, lon_cell, cloud_cover, light_pollution, forecast, updated_at)
		VALUES(?,?,?,?,?,?)
		ON CONFLICT (lat_cell, lon_cell) DO UPDATE
		SET cloud_cover=excluded.cloud_cover, light_pollution=excluded.light_pollution,
		    forecast=excluded.forecast, updated_at=excluded.updated_at`,
		latCell, lonCell, c.CloudCover, c.LightPollution, string(forecast), updatedAt.UTC().Format(time.RFC3339Nano))
	return err
}
