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

var (
	observer = domain.Observer{Latitude: 40.0, Longitude: -74.0}
	day      = CalendarDay(time.Date(2024, 6, 21, 22, 0, 0, 0, time.UTC))
)

func at(h, m int) time.Time {
	return day.Start.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func near(a, b time.Time, tol time.Duration) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func TestCalendarDay(t *testing.T) {
	want := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)
	if got := CalendarDay(time.Date(2024, 6, 21, 22, 0, 0, 0, time.UTC)); !got.Start.Equal(want) || !got.End.Equal(want.Add(24*time.Hour)) {
		t.Errorf("got %v", got)
	}

	// 22:00 in New York is already the next day in UTC.
	ny := time.FixedZone("EDT", -4*3600)
	got := CalendarDay(time.Date(2024, 6, 21, 22, 0, 0, 0, ny))
	if !got.Start.Equal(want.AddDate(0, 0, 1)) {
		t.Errorf("got %v, want the UTC day after", got.Start)
	}
	if got.Start.Location() != time.UTC {
		t.Errorf("window not in UTC: %v", got.Start.Location())
	}
}

func TestResolveNight(t *testing.T) {
	tr := func(h, m, state int) domain.TwilightTransition {
		return domain.TwilightTransition{Time: at(h, m), State: state}
	}
	for _, tc := range []struct {
		name        string
		transitions []domain.TwilightTransition
		nightState  int
		want        domain.TimeWindow
		approximate bool
	}{
		{
			name: "mid latitude summer",
			transitions: []domain.TwilightTransition{
				tr(0, 31, 3), tr(1, 5, 2), tr(1, 48, 1), tr(2, 35, 0),
				tr(7, 34, 1), tr(8, 17, 2), tr(8, 51, 3), tr(9, 25, 4),
			},
			want: domain.TimeWindow{Start: at(2, 35), End: at(7, 34)},
		},
		{
			name: "no darkness",
			transitions: []domain.TwilightTransition{
				tr(0, 40, 3), tr(2, 10, 2), tr(3, 0, 3), tr(9, 12, 4),
			},
			want:        day,
			approximate: true,
		},
		{
			name:        "night never ends",
			transitions: []domain.TwilightTransition{tr(22, 0, 1), tr(23, 10, 0)},
			want:        day,
			approximate: true,
		},
		{
			name:        "no transitions",
			want:        day,
			approximate: true,
		},
		{
			name: "end is the first change out of night",
			transitions: []domain.TwilightTransition{
				tr(1, 0, 0), tr(4, 0, 0), tr(5, 0, 1), tr(21, 0, 0), tr(23, 0, 1),
			},
			want: domain.TimeWindow{Start: at(1, 0), End: at(5, 0)},
		},
		{
			name:        "reversed sentinel",
			transitions: []domain.TwilightTransition{tr(1, 0, 3), tr(2, 0, 4), tr(6, 0, 3)},
			nightState:  4,
			want:        domain.TimeWindow{Start: at(2, 0), End: at(6, 0)},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveNight(tc.transitions, day, tc.nightState)
			if !got.Start.Equal(tc.want.Start) || !got.End.Equal(tc.want.End) {
				t.Errorf("got [%v, %v], want [%v, %v]", got.Start, got.End, tc.want.Start, tc.want.End)
			}
			if got.Approximate != tc.approximate {
				t.Errorf("approximate %v, want %v", got.Approximate, tc.approximate)
			}
		})
	}
}

func TestAlmanacNight(t *testing.T) {
	a := NewAlmanac(ephemeristest.New(), slog.New(slog.DiscardHandler))

	transitions := a.Twilight(observer, day)
	if got, want := len(transitions), 8; got != want {
		t.Fatalf("got %d transitions, want %d", got, want)
	}
	for i, tr := range transitions {
		if tr.State < ephemeris.TwilightNight || tr.State > ephemeris.TwilightDay {
			t.Errorf("state %d out of range", tr.State)
		}
		if i > 0 && !transitions[i-1].Time.Before(tr.Time) {
			t.Errorf("transitions not strictly ordered at %d", i)
		}
	}

	night := a.Night(observer, day, transitions, ephemeris.TwilightNight)
	if night.Approximate {
		t.Fatal("expected a true night")
	}
	if !near(night.Start, at(2, 40), 2*time.Minute) || !near(night.End, at(7, 20), 2*time.Minute) {
		t.Errorf("night [%v, %v], want about [02:40, 07:20]", night.Start, night.End)
	}
}

func TestAlmanacTwilightFailure(t *testing.T) {
	stub := ephemeristest.New()
	stub.FailTwilight(errors.New("no convergence"))
	a := NewAlmanac(stub, slog.New(slog.DiscardHandler))

	transitions := a.Twilight(observer, day)
	if transitions != nil {
		t.Errorf("got %v, want nil", transitions)
	}
	night := a.Night(observer, day, transitions, ephemeris.TwilightNight)
	if !night.Approximate || night.TimeWindow != day {
		t.Errorf("got %+v, want the whole day", night)
	}
}
