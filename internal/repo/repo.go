// Package repo provides database repositories
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"go-nightsky/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Cell returns the 1° grid cell holding lat, lon.
func Cell(lat, lon float64) (int, int) {
	return int(math.Floor(lat)), int(math.Floor(lon))
}

func encodeForecast(f []domain.ForecastHour) (json.RawMessage, error) {
	if f == nil {
		f = []domain.ForecastHour{}
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode forecast: %w", err)
	}
	return b, nil
}

func decodeForecast(raw []byte) ([]domain.ForecastHour, error) {
	if len(raw) == 0 {
		return []domain.ForecastHour{}, nil
	}
	var f []domain.ForecastHour
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}
	return f, nil
}

// PgConditionsRepo handles observing conditions persistence in Postgres
type PgConditionsRepo struct {
	pool *pgxpool.Pool
}

// NewPgConditionsRepo creates a new Postgres conditions repository
func NewPgConditionsRepo(pool *pgxpool.Pool) *PgConditionsRepo {
	return &PgConditionsRepo{pool: pool}
}

// Lookup returns the conditions of the cell holding lat, lon, or nil when
// none are stored.
func (r *PgConditionsRepo) Lookup(ctx context.Context, lat, lon float64) (*domain.Conditions, error) {
	latCell, lonCell := Cell(lat, lon)
	row := r.pool.QueryRow(ctx,
		"SELECT cloud_cover, light_pollution, forecast, updated_at FROM sky_conditions WHERE lat_cell = $1 AND lon_cell = $2",
		latCell, lonCell)

	var c domain.Conditions
	var forecast json.RawMessage
	err := row.Scan(&c.CloudCover, &c.LightPollution, &forecast, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if c.HourlyForecast, err = decodeForecast(forecast); err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert stores c for the cell holding lat, lon
func (r *PgConditionsRepo) Upsert(ctx context.Context, lat, lon float64, c domain.Conditions) error {
	latCell, lonCell := Cell(lat, lon)
	forecast, err := encodeForecast(c.HourlyForecast)
	if err != nil {
		return err
	}
	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO sky_conditions(lat_cell, lon_cell, cloud_cover, light_pollution, forecast, updated_at)
		VALUES($1,$2,$3,$4,$5,$6)
		ON CONFLICT (lat_cell, lon_cell) DO UPDATE
		SET cloud_cover=EXCLUDED.cloud_cover, light_pollution=EXCLUDED.light_pollution,
		    forecast=EXCLUDED.forecast, updated_at=EXCLUDED.updated_at`,
		latCell, lonCell, c.CloudCover, c.LightPollution, forecast, updatedAt.UTC())
	return err
}

// Count counts stored cells
func (r *PgConditionsRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, "SELECT count(*) FROM sky_conditions").Scan(&count)
	return count, err
}

// InitDB initializes database tables
func InitDB(ctx context.Context, pool *pgxpool.Pool) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sky_conditions(
			lat_cell INTEGER NOT NULL,
			lon_cell INTEGER NOT NULL,
			cloud_cover INTEGER NOT NULL CHECK (cloud_cover BETWEEN 0 AND 100),
			light_pollution INTEGER NOT NULL CHECK (light_pollution BETWEEN 1 AND 9),
			forecast JSONB NOT NULL DEFAULT '[]',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (lat_cell, lon_cell)
		)`,
		`CREATE INDEX IF NOT EXISTS ix_sky_conditions_updated
		 ON sky_conditions(updated_at DESC)`,
	}

	for _, q := range queries {
		if _, err := pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
