// Package domain provides domain models for the application
package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// InstantLayout is the wire format for every instant the service emits.
const InstantLayout = "2006-01-02T15:04:05Z"

// ErrUnknownBody is returned for a body outside the supported set.
var ErrUnknownBody = errors.New("unknown body")

// Observer is a geographic position on the Earth's surface in degrees.
type Observer struct {
	Latitude  float64
	Longitude float64
}

// NewObserver validates and constructs an Observer.
func NewObserver(lat, lon float64) (Observer, error) {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return Observer{}, fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) || lon < -180 || lon > 180 {
		return Observer{}, fmt.Errorf("longitude %v out of range [-180, 180]", lon)
	}
	return Observer{Latitude: lat, Longitude: lon}, nil
}

// TimeWindow is a closed interval of UTC instants.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the window.
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains reports whether t lies within the window, inclusive.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// NightWindow is the resolved night for a calendar day.
type NightWindow struct {
	TimeWindow
	// Approximate is set when no true night exists and the whole
	// calendar day stands in for it.
	Approximate bool
}

// Category classifies a tracked body.
type Category string

const (
	CategoryPlanet Category = "Planet"
	CategoryMoon   Category = "Moon"
	CategoryStar   Category = "Star"
)

// Body identifies a solar system body.
type Body int

const (
	Sun Body = iota
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Moon
)

var bodyNames = map[Body]string{
	Sun:     "Sun",
	Mercury: "Mercury",
	Venus:   "Venus",
	Mars:    "Mars",
	Jupiter: "Jupiter",
	Saturn:  "Saturn",
	Uranus:  "Uranus",
	Neptune: "Neptune",
	Moon:    "Moon",
}

// TrackedBodies is the fixed set reported for every query, in response order.
var TrackedBodies = []Body{Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Moon}

func (b Body) String() string {
	if n, ok := bodyNames[b]; ok {
		return n
	}
	return fmt.Sprintf("Body(%d)", int(b))
}

// Category returns the body's classification.
func (b Body) Category() Category {
	switch b {
	case Moon:
		return CategoryMoon
	case Sun:
		return CategoryStar
	default:
		return CategoryPlanet
	}
}

// Position is an apparent horizontal position in degrees.
type Position struct {
	Altitude float64
	Azimuth  float64
}

// Sample is a single observation of a body.
type Sample struct {
	Time     time.Time
	Altitude float64
	Azimuth  float64
}

// HourlySeries is a time-ascending sequence of samples.
type HourlySeries []Sample

// ViewingSummary holds per-body derived facts.
type ViewingSummary struct {
	BestViewingTime *time.Time
	RiseTime        *time.Time
	SetTime         *time.Time
}

// BodyResult is the computed report for one body.
type BodyResult struct {
	Body    Body
	Series  HourlySeries
	Summary ViewingSummary
}

// TwilightTransition marks the instant the sky enters State.
type TwilightTransition struct {
	Time  time.Time
	State int
}

// Conditions describes observing conditions at a location.
type Conditions struct {
	CloudCover     int
	LightPollution int
	HourlyForecast []ForecastHour
	UpdatedAt      time.Time
}

// ForecastHour is a single forecast entry.
type ForecastHour struct {
	Time       time.Time `json:"time"`
	CloudCover int       `json:"cloudCover"`
}

// FormatInstant renders t in the service's wire format.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(InstantLayout)
}

// FormatOptional renders an optional instant, nil stays nil.
func FormatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatInstant(*t)
	return &s
}
