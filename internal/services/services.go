// Package services provides business logic
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go-nightsky/internal/cache"
	"go-nightsky/internal/domain"
	"go-nightsky/internal/ephemeris"
	"go-nightsky/internal/sky"
)

// DefaultCacheSize is the number of entries each result cache holds.
const DefaultCacheSize = 128

// SkyOptions tunes a SkyService.
type SkyOptions struct {
	CacheSize  int
	KeyFunc    cache.KeyFunc
	NightState int
	Clock      func() time.Time
}

// bodyReport is the cached per-body computation for one query.
type bodyReport struct {
	night   domain.NightWindow
	results []domain.BodyResult
}

// SkyService answers sky queries
type SkyService struct {
	eph        ephemeris.Ephemeris
	almanac    *sky.Almanac
	conditions *ConditionsService
	nightState int
	logger     *slog.Logger

	bodies    *cache.Cache[*bodyReport]
	twilight  *cache.Cache[[]domain.TwilightTransition]
	moonPhase *cache.Cache[float64]
}

// NewSkyService creates a new sky service
func NewSkyService(eph ephemeris.Ephemeris, conditions *ConditionsService, opts SkyOptions, logger *slog.Logger) (*SkyService, error) {
	if opts.CacheSize == 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	cacheOpts := []cache.Option{cache.WithLogger(logger)}
	if opts.KeyFunc != nil {
		cacheOpts = append(cacheOpts, cache.WithKeyFunc(opts.KeyFunc))
	}
	if opts.Clock != nil {
		cacheOpts = append(cacheOpts, cache.WithClock(opts.Clock))
	}

	s := &SkyService{
		eph:        eph,
		almanac:    sky.NewAlmanac(eph, logger),
		conditions: conditions,
		nightState: opts.NightState,
		logger:     logger,
	}
	var err error
	if s.bodies, err = cache.New[*bodyReport]("bodies", opts.CacheSize, cacheOpts...); err != nil {
		return nil, err
	}
	if s.twilight, err = cache.New[[]domain.TwilightTransition]("twilight", opts.CacheSize, cacheOpts...); err != nil {
		return nil, err
	}
	if s.moonPhase, err = cache.New[float64]("moonphase", opts.CacheSize, cacheOpts...); err != nil {
		return nil, err
	}
	return s, nil
}

// Calculate computes the sky report for q.
func (s *SkyService) Calculate(ctx context.Context, q Query) (*domain.CelestialResponse, error) {
	key := cache.Key{Latitude: q.Observer.Latitude, Longitude: q.Observer.Longitude, Instant: q.Instant}
	day := sky.CalendarDay(q.Instant)

	transitions, err := s.twilight.Get(key, func() ([]domain.TwilightTransition, error) {
		return s.almanac.Twilight(q.Observer, day), nil
	})
	if err != nil {
		return nil, err
	}

	report, err := s.bodies.Get(key, func() (*bodyReport, error) {
		return s.computeBodies(q, day, transitions)
	})
	if err != nil {
		return nil, err
	}

	phase, err := s.moonPhase.Get(key, func() (float64, error) {
		return s.eph.MoonPhaseAngle(q.Instant)
	})
	if err != nil {
		return nil, fmt.Errorf("moon phase: %w", err)
	}

	sunrise, sunset := s.almanac.SunriseSunset(q.Observer, day)
	weather := s.conditions.Current(ctx, q.Observer)

	return buildResponse(q, report, transitions, sunrise, sunset, phase, weather), nil
}

// CacheStats returns the counters of every result cache.
func (s *SkyService) CacheStats() []domain.CacheStats {
	return []domain.CacheStats{s.bodies.Stats(), s.twilight.Stats(), s.moonPhase.Stats()}
}

func (s *SkyService) computeBodies(q Query, day domain.TimeWindow, transitions []domain.TwilightTransition) (*bodyReport, error) {
	night := s.almanac.Night(q.Observer, day, transitions, s.nightState)
	results := make([]domain.BodyResult, 0, len(domain.TrackedBodies))
	for _, body := range domain.TrackedBodies {
		series, err := sky.SampleHourly(s.eph, body, q.Observer, night.TimeWindow)
		if err != nil {
			return nil, err
		}
		var summary domain.ViewingSummary
		if best, ok := sky.BestViewing(series); ok {
			t := best.Time
			summary.BestViewingTime = &t
		}
		summary.RiseTime, summary.SetTime = s.almanac.RiseSet(body, q.Observer, day, q.Instant)
		results = append(results, domain.BodyResult{Body: body, Series: series, Summary: summary})
	}
	s.logger.Debug("bodies computed",
		"lat", q.Observer.Latitude, "lon", q.Observer.Longitude,
		"night_start", domain.FormatInstant(night.Start), "night_end", domain.FormatInstant(night.End),
		"approximate", night.Approximate)
	return &bodyReport{night: night, results: results}, nil
}

func buildResponse(q Query, report *bodyReport, transitions []domain.TwilightTransition, sunrise, sunset *time.Time, phase float64, weather domain.WeatherReport) *domain.CelestialResponse {
	objects := make([]domain.ObjectReport, len(report.results))
	for i, r := range report.results {
		hourly := make([]domain.SampleReport, len(r.Series))
		for j, smp := range r.Series {
			hourly[j] = domain.SampleReport{
				Time:     domain.FormatInstant(smp.Time),
				Altitude: smp.Altitude,
				Azimuth:  smp.Azimuth,
			}
		}
		objects[i] = domain.ObjectReport{
			Name:       r.Body.String(),
			Category:   r.Body.Category(),
			HourlyData: hourly,
			AdditionalInfo: domain.SummaryReport{
				BestViewingTime: domain.FormatOptional(r.Summary.BestViewingTime),
				RiseTime:        domain.FormatOptional(r.Summary.RiseTime),
				SetTime:         domain.FormatOptional(r.Summary.SetTime),
			},
		}
	}

	var twilight []domain.TwilightReport
	if transitions != nil {
		twilight = make([]domain.TwilightReport, len(transitions))
		for i, tr := range transitions {
			twilight[i] = domain.TwilightReport{Time: domain.FormatInstant(tr.Time), State: tr.State}
		}
	}

	return &domain.CelestialResponse{
		Objects:          objects,
		Twilight:         twilight,
		Sunrise:          domain.FormatOptional(sunrise),
		Sunset:           domain.FormatOptional(sunset),
		MoonPhaseAngle:   phase,
		MoonPhaseName:    sky.MoonPhaseName(phase),
		MoonIllumination: sky.MoonIllumination(phase),
		NightStart:       domain.FormatInstant(report.night.Start),
		NightEnd:         domain.FormatInstant(report.night.End),
		NightApproximate: report.night.Approximate,
		Location: domain.LocationReport{
			Latitude:  q.Observer.Latitude,
			Longitude: q.Observer.Longitude,
		},
		Weather: weather,
	}
}
