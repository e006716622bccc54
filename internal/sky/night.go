// Package sky resolves the night, samples body positions through it and
// selects rise, set and twilight events around a query instant.
package sky

import (
	"log/slog"
	"time"

	"go-nightsky/internal/domain"
	"go-nightsky/internal/ephemeris"
)

// CalendarDay returns the UTC day [00:00, next 00:00) containing t.
func CalendarDay(t time.Time) domain.TimeWindow {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return domain.TimeWindow{Start: start, End: start.AddDate(0, 0, 1)}
}

// ResolveNight picks the night out of a day's twilight transitions. The
// night opens at the first transition into nightState and closes at the
// next transition out of it. When there is no such pair the whole day is
// returned, marked approximate.
func ResolveNight(transitions []domain.TwilightTransition, day domain.TimeWindow, nightState int) domain.NightWindow {
	for i, tr := range transitions {
		if tr.State != nightState {
			continue
		}
		for _, next := range transitions[i+1:] {
			if next.State != nightState {
				return domain.NightWindow{
					TimeWindow: domain.TimeWindow{Start: tr.Time, End: next.Time},
				}
			}
		}
		break
	}
	return domain.NightWindow{TimeWindow: day, Approximate: true}
}

// Almanac runs the event searches of a day against an ephemeris.
type Almanac struct {
	eph    ephemeris.Ephemeris
	logger *slog.Logger
}

// NewAlmanac creates an Almanac.
func NewAlmanac(eph ephemeris.Ephemeris, logger *slog.Logger) *Almanac {
	return &Almanac{eph: eph, logger: logger}
}

// Twilight returns the day's twilight transitions in time order. A failed
// search is logged and yields nil.
func (a *Almanac) Twilight(obs domain.Observer, day domain.TimeWindow) []domain.TwilightTransition {
	events, err := a.eph.FindDiscrete(day.Start, day.End, a.eph.Twilight(obs))
	if err != nil {
		a.logger.Warn("twilight search failed",
			"lat", obs.Latitude, "lon", obs.Longitude, "day", domain.FormatInstant(day.Start), "error", err)
		return nil
	}
	out := make([]domain.TwilightTransition, len(events))
	for i, ev := range events {
		out[i] = domain.TwilightTransition{Time: ev.Time, State: ev.State}
	}
	return out
}

// Night resolves the night of day from its twilight transitions and logs
// when it has to fall back to the whole day.
func (a *Almanac) Night(obs domain.Observer, day domain.TimeWindow, transitions []domain.TwilightTransition, nightState int) domain.NightWindow {
	night := ResolveNight(transitions, day, nightState)
	if night.Approximate {
		a.logger.Warn("no true night, using the whole day",
			"lat", obs.Latitude, "lon", obs.Longitude, "day", domain.FormatInstant(day.Start))
	}
	return night
}
