package sky

import (
	"fmt"
	"time"

	"go-nightsky/internal/domain"
	"go-nightsky/internal/ephemeris"
)

// SampleInterval is the spacing of an HourlySeries.
const SampleInterval = time.Hour

// SampleCount is the number of hourly samples that fit in w, both ends
// included when w spans a whole number of hours.
func SampleCount(w domain.TimeWindow) int {
	if w.End.Before(w.Start) {
		return 0
	}
	return int(w.Duration()/SampleInterval) + 1
}

// SampleHourly observes body at the start of w and every hour after it up
// to the end of w.
func SampleHourly(eng ephemeris.Engine, body domain.Body, obs domain.Observer, w domain.TimeWindow) (domain.HourlySeries, error) {
	n := SampleCount(w)
	series := make(domain.HourlySeries, 0, n)
	for i := 0; i < n; i++ {
		t := w.Start.Add(time.Duration(i) * SampleInterval)
		pos, err := eng.Observe(body, obs, t)
		if err != nil {
			return nil, fmt.Errorf("observe %v at %s: %w", body, domain.FormatInstant(t), err)
		}
		series = append(series, domain.Sample{Time: t, Altitude: pos.Altitude, Azimuth: pos.Azimuth})
	}
	return series, nil
}

// BestViewing returns the highest sample of series. Ties go to the
// earliest sample. ok is false for an empty series.
func BestViewing(series domain.HourlySeries) (best domain.Sample, ok bool) {
	for i, s := range series {
		if i == 0 || s.Altitude > best.Altitude {
			best = s
		}
	}
	return best, len(series) > 0
}
