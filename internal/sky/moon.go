package sky

import "math"

// MoonIllumination approximates the illuminated fraction of the Moon's
// disk from its phase angle in degrees.
func MoonIllumination(phaseAngle float64) float64 {
	return (1 - math.Cos(phaseAngle*math.Pi/180)) / 2
}

// MoonPhaseName names the phase for a phase angle in degrees.
func MoonPhaseName(phaseAngle float64) string {
	const (
		eps        = 0.01 // near 0 or 1
		quarterTol = 0.05 // fraction window around 0.5
	)
	f := MoonIllumination(phaseAngle)
	waxing := math.Mod(phaseAngle, 360) < 180

	switch {
	case f < eps:
		return "New Moon"
	case f > 1-eps:
		return "Full Moon"
	case math.Abs(f-0.5) < quarterTol:
		if waxing {
			return "First Quarter"
		}
		return "Last Quarter"
	case f < 0.5:
		if waxing {
			return "Waxing Crescent"
		}
		return "Waning Crescent"
	default:
		if waxing {
			return "Waxing Gibbous"
		}
		return "Waning Gibbous"
	}
}
