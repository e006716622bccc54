// Package ephemeristest provides a synthetic ephemeris for tests.
package ephemeristest

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go-nightsky/internal/domain"
	"go-nightsky/internal/ephemeris"
)

// Stub is an ephemeris whose bodies follow sinusoids with a 24 hour period.
// By default the Sun peaks at 73° at 17:00 UTC and bottoms out at -27° at
// 05:00 UTC, which gives a true night between roughly 02:40 and 07:20 UTC.
// Every other body peaks 2.5 hours after the previous one and stays up for
// about 13 hours.
type Stub struct {
	// Altitude overrides the altitude model for a body, in degrees.
	Altitude func(body domain.Body, t time.Time) float64
	// MoonPhase is returned by MoonPhaseAngle.
	MoonPhase float64

	mu          sync.Mutex
	observeErr  error
	findErr     map[domain.Body]error
	twilightErr error

	observes atomic.Int64
	finds    atomic.Int64
}

// New returns a Stub with the default altitude model.
func New() *Stub {
	return &Stub{MoonPhase: 123.5, findErr: map[domain.Body]error{}}
}

// FailObserve makes every Observe call return err.
func (s *Stub) FailObserve(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observeErr = err
}

// FailRiseSet makes the rise/set search for body return err.
func (s *Stub) FailRiseSet(body domain.Body, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findErr[body] = err
}

// FailTwilight makes the twilight search return err.
func (s *Stub) FailTwilight(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.twilightErr = err
}

// Calls returns the number of Observe and FindDiscrete calls made.
func (s *Stub) Calls() int64 {
	return s.observes.Load() + s.finds.Load()
}

// DefaultAltitude is the stub's altitude model in degrees.
func DefaultAltitude(body domain.Body, t time.Time) float64 {
	h := float64(t.UTC().Hour()) + float64(t.UTC().Minute())/60 + float64(t.UTC().Second())/3600
	switch body {
	case domain.Sun:
		return 50*math.Cos(2*math.Pi*(h-17)/24) + 23
	default:
		peak := 2 + 2.5*float64(body)
		return 40*math.Cos(2*math.Pi*(h-peak)/24) + 5
	}
}

func (s *Stub) altitude(body domain.Body, t time.Time) float64 {
	if s.Altitude != nil {
		return s.Altitude(body, t)
	}
	return DefaultAltitude(body, t)
}

// Observe implements ephemeris.Engine.
func (s *Stub) Observe(body domain.Body, obs domain.Observer, t time.Time) (domain.Position, error) {
	s.observes.Add(1)
	s.mu.Lock()
	err := s.observeErr
	s.mu.Unlock()
	if err != nil {
		return domain.Position{}, err
	}
	h := float64(t.UTC().Hour())
	return domain.Position{
		Altitude: s.altitude(body, t),
		Azimuth:  math.Mod(15*h+10*float64(body), 360),
	}, nil
}

// FindDiscrete implements ephemeris.Engine.
func (s *Stub) FindDiscrete(start, end time.Time, p ephemeris.Predicate) ([]ephemeris.Event, error) {
	s.finds.Add(1)
	return ephemeris.FindDiscrete(start, end, p)
}

// MoonPhaseAngle implements ephemeris.Engine.
func (s *Stub) MoonPhaseAngle(time.Time) (float64, error) {
	return s.MoonPhase, nil
}

// RiseSet implements ephemeris.Predicates.
func (s *Stub) RiseSet(body domain.Body, _ domain.Observer) ephemeris.Predicate {
	s.mu.Lock()
	err := s.findErr[body]
	s.mu.Unlock()
	return ephemeris.Predicate{
		Step: 10 * time.Minute,
		Func: func(t time.Time) (int, error) {
			if err != nil {
				return 0, err
			}
			if s.altitude(body, t) >= 0 {
				return ephemeris.Rising, nil
			}
			return ephemeris.Setting, nil
		},
	}
}

// Twilight implements ephemeris.Predicates.
func (s *Stub) Twilight(domain.Observer) ephemeris.Predicate {
	s.mu.Lock()
	err := s.twilightErr
	s.mu.Unlock()
	return ephemeris.Predicate{
		Step: 10 * time.Minute,
		Func: func(t time.Time) (int, error) {
			if err != nil {
				return 0, err
			}
			return ephemeris.TwilightState(s.altitude(domain.Sun, t)), nil
		},
	}
}
