package sky

import (
	"time"

	"go-nightsky/internal/domain"
	"go-nightsky/internal/ephemeris"
)

// SelectRiseSet picks the last rise at or before ref and the first set at
// or after ref. Events must be in time order; either result may be nil.
func SelectRiseSet(events []ephemeris.Event, ref time.Time) (rise, set *time.Time) {
	for _, ev := range events {
		switch {
		case ev.State == ephemeris.Rising && !ev.Time.After(ref):
			t := ev.Time
			rise = &t
		case ev.State == ephemeris.Setting && !ev.Time.Before(ref) && set == nil:
			t := ev.Time
			set = &t
		}
	}
	return rise, set
}

// SelectSunriseSunset picks the first rise and the first set of the day.
func SelectSunriseSunset(events []ephemeris.Event) (sunrise, sunset *time.Time) {
	for _, ev := range events {
		t := ev.Time
		switch {
		case ev.State == ephemeris.Rising && sunrise == nil:
			sunrise = &t
		case ev.State == ephemeris.Setting && sunset == nil:
			sunset = &t
		}
	}
	return sunrise, sunset
}

// RiseSet finds body's rise and set within day around ref. A failed
// search is logged and both results are nil.
func (a *Almanac) RiseSet(body domain.Body, obs domain.Observer, day domain.TimeWindow, ref time.Time) (rise, set *time.Time) {
	events, err := a.eph.FindDiscrete(day.Start, day.End, a.eph.RiseSet(body, obs))
	if err != nil {
		a.logger.Warn("rise/set search failed",
			"body", body.String(), "lat", obs.Latitude, "lon", obs.Longitude, "error", err)
		return nil, nil
	}
	return SelectRiseSet(events, ref)
}

// SunriseSunset finds the first sunrise and sunset of day. A failed search
// is logged and both results are nil.
func (a *Almanac) SunriseSunset(obs domain.Observer, day domain.TimeWindow) (sunrise, sunset *time.Time) {
	events, err := a.eph.FindDiscrete(day.Start, day.End, a.eph.RiseSet(domain.Sun, obs))
	if err != nil {
		a.logger.Warn("sunrise/sunset search failed",
			"lat", obs.Latitude, "lon", obs.Longitude, "error", err)
		return nil, nil
	}
	return SelectSunriseSunset(events)
}
