package sky

import (
	"math"
	"testing"
)

func TestMoonPhaseName(t *testing.T) {
	for _, tc := range []struct {
		angle float64
		want  string
	}{
		{0, "New Moon"},
		{359.5, "New Moon"},
		{45, "Waxing Crescent"},
		{90, "First Quarter"},
		{123.5, "Waxing Gibbous"},
		{180, "Full Moon"},
		{225, "Waning Gibbous"},
		{270, "Last Quarter"},
		{315, "Waning Crescent"},
	} {
		if got := MoonPhaseName(tc.angle); got != tc.want {
			t.Errorf("MoonPhaseName(%v) = %q, want %q", tc.angle, got, tc.want)
		}
	}
}

func TestMoonIllumination(t *testing.T) {
	for angle, want := range map[float64]float64{0: 0, 90: 0.5, 180: 1, 270: 0.5} {
		if got := MoonIllumination(angle); math.Abs(got-want) > 1e-9 {
			t.Errorf("MoonIllumination(%v) = %v, want %v", angle, got, want)
		}
	}
}
