package domain

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestNewObserver(t *testing.T) {
	for _, tc := range []struct {
		lat, lon float64
		errPart  string
	}{
		{40.7, -74.0, ""},
		{-90, 180, ""},
		{90, -180, ""},
		{90.0001, 0, "latitude"},
		{-140, 0, "latitude"},
		{math.NaN(), 0, "latitude"},
		{0, 180.5, "longitude"},
		{0, math.Inf(-1), "longitude"},
	} {
		obs, err := NewObserver(tc.lat, tc.lon)
		if tc.errPart == "" {
			if err != nil {
				t.Errorf("NewObserver(%v, %v): %v", tc.lat, tc.lon, err)
				continue
			}
			if obs.Latitude != tc.lat || obs.Longitude != tc.lon {
				t.Errorf("NewObserver(%v, %v) = %+v", tc.lat, tc.lon, obs)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tc.errPart) {
			t.Errorf("NewObserver(%v, %v): got %v, want a %s error", tc.lat, tc.lon, err, tc.errPart)
		}
	}
}

func TestBodies(t *testing.T) {
	if got := len(TrackedBodies); got != 8 {
		t.Fatalf("tracked %d bodies, want 8", got)
	}
	if TrackedBodies[0] != Mercury || TrackedBodies[7] != Moon {
		t.Errorf("unexpected order %v", TrackedBodies)
	}
	for _, b := range TrackedBodies {
		if b == Sun {
			t.Errorf("Sun must not be tracked")
		}
	}
	if Moon.Category() != CategoryMoon || Sun.Category() != CategoryStar || Saturn.Category() != CategoryPlanet {
		t.Errorf("unexpected categories")
	}
	if Neptune.String() != "Neptune" || Body(42).String() != "Body(42)" {
		t.Errorf("unexpected names %q %q", Neptune, Body(42))
	}
}

func TestTimeWindow(t *testing.T) {
	start := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)
	w := TimeWindow{Start: start, End: start.Add(24 * time.Hour)}
	if w.Duration() != 24*time.Hour {
		t.Errorf("Duration = %v", w.Duration())
	}
	if !w.Contains(w.Start) || !w.Contains(w.End) || w.Contains(w.End.Add(time.Second)) {
		t.Errorf("Contains is not inclusive of both ends")
	}
}

func TestFormatInstant(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	ts := time.Date(2024, 6, 21, 18, 0, 0, 500, est)
	if got := FormatInstant(ts); got != "2024-06-21T23:00:00Z" {
		t.Errorf("FormatInstant = %q", got)
	}
	if FormatOptional(nil) != nil {
		t.Errorf("FormatOptional(nil) should be nil")
	}
	if got := FormatOptional(&ts); got == nil || *got != "2024-06-21T23:00:00Z" {
		t.Errorf("FormatOptional = %v", got)
	}
}
