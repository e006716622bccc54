// Package ephemeris provides body positions, discrete event search and
// lunar phase for an observer on Earth.
package ephemeris

import (
	"errors"
	"time"

	"go-nightsky/internal/domain"
)

// Rise/set predicate states.
const (
	Setting = 0
	Rising  = 1
)

// Twilight predicate states, darkest first.
const (
	TwilightNight        = 0
	TwilightAstronomical = 1
	TwilightNautical     = 2
	TwilightCivil        = 3
	TwilightDay          = 4
)

// Sun altitudes in degrees bounding each twilight state.
const (
	SunriseAltitude      = -0.8333
	CivilAltitude        = -6.0
	NauticalAltitude     = -12.0
	AstronomicalAltitude = -18.0
)

var (
	// ErrDatasetMissing is returned when the ephemeris files cannot be found.
	ErrDatasetMissing = errors.New("ephemeris dataset missing")
	// ErrBodyNotLoaded is returned for a body whose series were not loaded.
	ErrBodyNotLoaded = errors.New("ephemeris body not loaded")
	// ErrNoConvergence is returned when a transition cannot be isolated.
	ErrNoConvergence = errors.New("discrete search did not converge")
)

// Predicate is a step function of time. Step must be shorter than the
// shortest interval between two changes of the function's value.
type Predicate struct {
	Func func(time.Time) (int, error)
	Step time.Duration
}

// Event is the instant a Predicate changes to State.
type Event struct {
	Time  time.Time
	State int
}

// Engine is the positional astronomy capability the sky computations need.
type Engine interface {
	// Observe returns the apparent altitude and azimuth of body.
	Observe(body domain.Body, obs domain.Observer, t time.Time) (domain.Position, error)
	// FindDiscrete returns, in time order, every change of p within [start, end].
	FindDiscrete(start, end time.Time, p Predicate) ([]Event, error)
	// MoonPhaseAngle returns the Moon's phase angle in degrees,
	// 0 new, 90 first quarter, 180 full, 270 last quarter.
	MoonPhaseAngle(t time.Time) (float64, error)
}

// Predicates builds the step functions searched by FindDiscrete.
type Predicates interface {
	// RiseSet is Rising while body is above the horizon, Setting otherwise.
	RiseSet(body domain.Body, obs domain.Observer) Predicate
	// Twilight classifies the sky as one of the Twilight states.
	Twilight(obs domain.Observer) Predicate
}

// Ephemeris combines the engine and its predicates.
type Ephemeris interface {
	Engine
	Predicates
}

// TwilightState classifies a geometric Sun altitude in degrees.
func TwilightState(sunAltitude float64) int {
	switch {
	case sunAltitude >= SunriseAltitude:
		return TwilightDay
	case sunAltitude >= CivilAltitude:
		return TwilightCivil
	case sunAltitude >= NauticalAltitude:
		return TwilightNautical
	case sunAltitude >= AstronomicalAltitude:
		return TwilightAstronomical
	default:
		return TwilightNight
	}
}
