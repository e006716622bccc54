package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go-nightsky/internal/domain"

	"cloudeng.io/errors"
)

// Observing conditions reported when no store is configured or it has no
// data for a location.
const (
	DefaultCloudCover     = 20
	DefaultLightPollution = 4
)

// ErrNoConditionsStore is returned when conditions are recorded without a
// configured store.
var ErrNoConditionsStore = fmt.Errorf("no conditions store configured")

// ConditionsRepo stores observing conditions. Lookup returns nil, nil when
// nothing is stored for the location.
type ConditionsRepo interface {
	Lookup(ctx context.Context, lat, lon float64) (*domain.Conditions, error)
	Upsert(ctx context.Context, lat, lon float64, c domain.Conditions) error
}

// ConditionsService resolves the observing conditions of a location
type ConditionsService struct {
	repo   ConditionsRepo
	logger *slog.Logger
	now    func() time.Time
}

// NewConditionsService creates a new conditions service. repo may be nil.
func NewConditionsService(repo ConditionsRepo, logger *slog.Logger) *ConditionsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConditionsService{repo: repo, logger: logger, now: time.Now}
}

// Current returns the conditions at obs, falling back to the defaults
// when the store has nothing or fails.
func (s *ConditionsService) Current(ctx context.Context, obs domain.Observer) domain.WeatherReport {
	fallback := domain.WeatherReport{
		CurrentCloudCover: DefaultCloudCover,
		LightPollution:    DefaultLightPollution,
		HourlyForecast:    []domain.ForecastHour{},
	}
	if s == nil || s.repo == nil {
		return fallback
	}
	c, err := s.repo.Lookup(ctx, obs.Latitude, obs.Longitude)
	if err != nil {
		s.logger.Warn("conditions lookup failed, using defaults",
			"lat", obs.Latitude, "lon", obs.Longitude, "error", err)
		return fallback
	}
	if c == nil {
		return fallback
	}
	forecast := c.HourlyForecast
	if forecast == nil {
		forecast = []domain.ForecastHour{}
	}
	return domain.WeatherReport{
		CurrentCloudCover: c.CloudCover,
		LightPollution:    c.LightPollution,
		HourlyForecast:    forecast,
	}
}

// Record validates report and stores it for the grid cell holding obs.
func (s *ConditionsService) Record(ctx context.Context, obs domain.Observer, report domain.WeatherReport) error {
	errs := errors.M{}
	if report.CurrentCloudCover < 0 || report.CurrentCloudCover > 100 {
		errs.Append(fmt.Errorf("currentCloudCover %d out of range [0, 100]", report.CurrentCloudCover))
	}
	if report.LightPollution < 1 || report.LightPollution > 9 {
		errs.Append(fmt.Errorf("lightPollution %d out of range [1, 9]", report.LightPollution))
	}
	for _, h := range report.HourlyForecast {
		if h.CloudCover < 0 || h.CloudCover > 100 {
			errs.Append(fmt.Errorf("hourlyForecast cloudCover %d at %s out of range [0, 100]",
				h.CloudCover, domain.FormatInstant(h.Time)))
		}
	}
	if err := errs.Err(); err != nil {
		return &ValidationError{Err: err}
	}
	if s == nil || s.repo == nil {
		return ErrNoConditionsStore
	}

	c := domain.Conditions{
		CloudCover:     report.CurrentCloudCover,
		LightPollution: report.LightPollution,
		HourlyForecast: report.HourlyForecast,
		UpdatedAt:      s.now().UTC(),
	}
	if err := s.repo.Upsert(ctx, obs.Latitude, obs.Longitude, c); err != nil {
		return fmt.Errorf("store conditions: %w", err)
	}
	s.logger.Info("conditions recorded",
		"lat", obs.Latitude, "lon", obs.Longitude,
		"cloud_cover", c.CloudCover, "light_pollution", c.LightPollution,
		"forecast_hours", len(c.HourlyForecast))
	return nil
}
