package sky

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"go-nightsky/internal/domain"
	"go-nightsky/internal/ephemeris"
	"go-nightsky/internal/ephemeris/ephemeristest"
)

func rise(h, m int) ephemeris.Event {
	return ephemeris.Event{Time: at(h, m), State: ephemeris.Rising}
}

func set(h, m int) ephemeris.Event {
	return ephemeris.Event{Time: at(h, m), State: ephemeris.Setting}
}

func ptr(t time.Time) *time.Time { return &t }

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func TestSelectRiseSet(t *testing.T) {
	for _, tc := range []struct {
		name   string
		events []ephemeris.Event
		ref    time.Time
		rise   *time.Time
		set    *time.Time
	}{
		{
			name:   "bracketed",
			events: []ephemeris.Event{rise(6, 0), set(19, 0)},
			ref:    at(12, 0),
			rise:   ptr(at(6, 0)),
			set:    ptr(at(19, 0)),
		},
		{
			name:   "before the first rise",
			events: []ephemeris.Event{rise(6, 0), set(19, 0)},
			ref:    at(5, 0),
			set:    ptr(at(19, 0)),
		},
		{
			name:   "after the last set",
			events: []ephemeris.Event{rise(6, 0), set(19, 0)},
			ref:    at(22, 0),
			rise:   ptr(at(6, 0)),
		},
		{
			name:   "last rise wins",
			events: []ephemeris.Event{rise(0, 30), set(4, 0), rise(16, 0), set(23, 50)},
			ref:    at(22, 0),
			rise:   ptr(at(16, 0)),
			set:    ptr(at(23, 50)),
		},
		{
			name:   "set before rise in the day",
			events: []ephemeris.Event{set(4, 29), rise(15, 31)},
			ref:    at(22, 0),
			rise:   ptr(at(15, 31)),
		},
		{
			name:   "events at the reference instant",
			events: []ephemeris.Event{rise(22, 0), set(22, 0)},
			ref:    at(22, 0),
			rise:   ptr(at(22, 0)),
			set:    ptr(at(22, 0)),
		},
		{
			name: "no events",
			ref:  at(12, 0),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r, s := SelectRiseSet(tc.events, tc.ref)
			if !equalTime(r, tc.rise) {
				t.Errorf("rise %v, want %v", r, tc.rise)
			}
			if !equalTime(s, tc.set) {
				t.Errorf("set %v, want %v", s, tc.set)
			}
		})
	}
}

func TestSelectSunriseSunset(t *testing.T) {
	sr, ss := SelectSunriseSunset([]ephemeris.Event{set(0, 31), rise(9, 25), set(23, 59)})
	if !equalTime(sr, ptr(at(9, 25))) || !equalTime(ss, ptr(at(0, 31))) {
		t.Errorf("got %v, %v", sr, ss)
	}
	sr, ss = SelectSunriseSunset(nil)
	if sr != nil || ss != nil {
		t.Errorf("got %v, %v, want nil", sr, ss)
	}
}

func TestAlmanacRiseSet(t *testing.T) {
	stub := ephemeristest.New()
	a := NewAlmanac(stub, slog.New(slog.DiscardHandler))
	ref := at(22, 0)

	// The stub Moon peaks at 22:00 and is up for about 13 hours, so it set
	// early in the morning and rose in the afternoon.
	r, s := a.RiseSet(domain.Moon, observer, day, ref)
	if r == nil || !near(*r, at(15, 31), 2*time.Minute) {
		t.Errorf("rise %v, want about 15:31", r)
	}
	if s != nil {
		t.Errorf("set %v, want nil", s)
	}

	// Mercury peaks at 04:30 and sets at about 10:59.
	r, s = a.RiseSet(domain.Mercury, observer, day, at(6, 0))
	if r != nil {
		t.Errorf("rise %v, want nil", r)
	}
	if s == nil || !near(*s, at(10, 59), 2*time.Minute) {
		t.Errorf("set %v, want about 10:59", s)
	}

	stub.FailRiseSet(domain.Mercury, errors.New("no convergence"))
	r, s = a.RiseSet(domain.Mercury, observer, day, ref)
	if r != nil || s != nil {
		t.Errorf("failed search should degrade to nil, got %v, %v", r, s)
	}
	if r, _ := a.RiseSet(domain.Venus, observer, day, ref); r == nil {
		t.Error("other bodies should be unaffected")
	}
}

func TestAlmanacSunriseSunset(t *testing.T) {
	a := NewAlmanac(ephemeristest.New(), slog.New(slog.DiscardHandler))
	sr, ss := a.SunriseSunset(observer, day)
	if sr == nil || ss == nil {
		t.Fatalf("got %v, %v", sr, ss)
	}
	if !near(*sr, at(9, 10), 2*time.Minute) {
		t.Errorf("sunrise %v, want about 09:10", sr)
	}
	if !near(*ss, at(0, 50), 2*time.Minute) {
		t.Errorf("sunset %v, want about 00:50", ss)
	}
}
