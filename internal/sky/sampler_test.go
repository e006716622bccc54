package sky

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"go-nightsky/internal/domain"
	"go-nightsky/internal/ephemeris/ephemeristest"
)

func TestSampleCount(t *testing.T) {
	for _, tc := range []struct {
		d    time.Duration
		want int
	}{
		{0, 1},
		{59 * time.Minute, 1},
		{time.Hour, 2},
		{4*time.Hour + 59*time.Minute + 59*time.Second, 5},
		{5 * time.Hour, 6},
		{24 * time.Hour, 25},
		{-time.Minute, 0},
	} {
		w := domain.TimeWindow{Start: day.Start, End: day.Start.Add(tc.d)}
		if got := SampleCount(w); got != tc.want {
			t.Errorf("SampleCount(%v) = %d, want %d", tc.d, got, tc.want)
		}
	}
}

func TestSampleHourly(t *testing.T) {
	stub := ephemeristest.New()
	w := domain.TimeWindow{Start: at(2, 40), End: at(7, 20)}
	series, err := SampleHourly(stub, domain.Mars, observer, w)
	if err != nil {
		t.Fatalf("SampleHourly: %v", err)
	}
	if got, want := len(series), 5; got != want {
		t.Fatalf("got %d samples, want %d", got, want)
	}
	for i, s := range series {
		if want := w.Start.Add(time.Duration(i) * time.Hour); !s.Time.Equal(want) {
			t.Errorf("sample %d at %v, want %v", i, s.Time, want)
		}
		if !w.Contains(s.Time) {
			t.Errorf("sample %d at %v outside the window", i, s.Time)
		}
		if want := ephemeristest.DefaultAltitude(domain.Mars, s.Time); s.Altitude != want {
			t.Errorf("sample %d altitude %v, want %v", i, s.Altitude, want)
		}
	}

	whole := domain.TimeWindow{Start: at(1, 0), End: at(4, 0)}
	series, err = SampleHourly(stub, domain.Moon, observer, whole)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 4 || !series[3].Time.Equal(whole.End) {
		t.Errorf("whole hours should include both ends: %v", series)
	}
}

func TestSampleHourlyError(t *testing.T) {
	stub := ephemeristest.New()
	boom := errors.New("boom")
	stub.FailObserve(boom)
	_, err := SampleHourly(stub, domain.Venus, observer, day)
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want %v", err, boom)
	}
}

func TestBestViewing(t *testing.T) {
	sample := func(h int, alt float64) domain.Sample {
		return domain.Sample{Time: at(h, 0), Altitude: alt}
	}

	if _, ok := BestViewing(nil); ok {
		t.Error("empty series should have no best viewing")
	}

	best, ok := BestViewing(domain.HourlySeries{sample(0, -10), sample(1, 30), sample(2, 30), sample(3, 12)})
	if !ok || !best.Time.Equal(at(1, 0)) {
		t.Errorf("got %v, want the first of the tied samples", best.Time)
	}

	best, _ = BestViewing(domain.HourlySeries{sample(0, -80), sample(1, -85)})
	if !best.Time.Equal(at(0, 0)) {
		t.Errorf("got %v, want the highest sample even below the horizon", best.Time)
	}

	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 200; n++ {
		series := make(domain.HourlySeries, 1+rng.Intn(24))
		for i := range series {
			// Coarse altitudes make ties common.
			series[i] = sample(i, float64(rng.Intn(9)*10-40))
		}
		best, _ := BestViewing(series)
		for i, s := range series {
			if s.Altitude > best.Altitude {
				t.Fatalf("sample %d (%v) above best (%v)", i, s.Altitude, best.Altitude)
			}
			if s.Altitude == best.Altitude && s.Time.Before(best.Time) {
				t.Fatalf("earlier tied sample %d not chosen", i)
			}
		}
	}
}
