package ephemeris

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-nightsky/internal/domain"

	"github.com/mooncaker816/learnmeeus/v3/base"
	"github.com/mooncaker816/learnmeeus/v3/coord"
	"github.com/mooncaker816/learnmeeus/v3/elliptic"
	"github.com/mooncaker816/learnmeeus/v3/julian"
	"github.com/mooncaker816/learnmeeus/v3/moonposition"
	"github.com/mooncaker816/learnmeeus/v3/nutation"
	pp "github.com/mooncaker816/learnmeeus/v3/planetposition"
	"github.com/mooncaker816/learnmeeus/v3/refraction"
	"github.com/mooncaker816/learnmeeus/v3/sidereal"
	"github.com/mooncaker816/learnmeeus/v3/solar"
	"github.com/soniakeys/unit"
	"golang.org/x/sync/errgroup"
)

// deltaT approximates TT-UT for the current decades.
const deltaT = 69200 * time.Millisecond

// Geometric altitudes of the body's centre at rise and set, in degrees.
// They fold in standard refraction and, for the Moon, its semidiameter.
const (
	planetHorizon = -0.5667
	moonHorizon   = -0.8333
)

const earthRadiusKm = 6378.14

// vsopFiles maps bodies to the planetposition index used to name their
// VSOP87B series file.
var vsopFiles = map[domain.Body]int{
	domain.Mercury: pp.Mercury,
	domain.Venus:   pp.Venus,
	domain.Mars:    pp.Mars,
	domain.Jupiter: pp.Jupiter,
	domain.Saturn:  pp.Saturn,
	domain.Uranus:  pp.Uranus,
	domain.Neptune: pp.Neptune,
}

// Meeus computes positions with the algorithms of Jean Meeus:
// VSOP87 for the planets, the ELP based lunar theory for the Moon and
// the low precision solar theory for the Sun. A Meeus is read only
// once loaded and safe for concurrent use.
type Meeus struct {
	earth   *pp.V87Planet
	planets map[domain.Body]*pp.V87Planet
	step    time.Duration
}

// LoadMeeus reads the VSOP87B series for the Earth and every tracked
// planet from dir. The files are read concurrently.
func LoadMeeus(ctx context.Context, dir string) (*Meeus, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatasetMissing, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDatasetMissing, dir)
	}

	var missing []string
	for _, f := range DatasetFiles(dir) {
		if _, err := os.Stat(f); err != nil {
			missing = append(missing, filepath.Base(f))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s lacks %s", ErrDatasetMissing, dir, strings.Join(missing, ", "))
	}

	bodies := make([]domain.Body, 0, len(vsopFiles))
	for _, b := range domain.TrackedBodies {
		if _, ok := vsopFiles[b]; ok {
			bodies = append(bodies, b)
		}
	}
	m := newMeeus()
	loaded := make([]*pp.V87Planet, len(bodies)+1)

	g, ctx := errgroup.WithContext(ctx)
	load := func(slot, index int) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := pp.LoadPlanetPath(index, dir)
			if err != nil {
				return fmt.Errorf("%w: planet %d in %s: %v", ErrDatasetMissing, index, dir, err)
			}
			loaded[slot] = p
			return nil
		})
	}
	load(0, pp.Earth)
	for i, b := range bodies {
		load(i+1, vsopFiles[b])
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m.earth = loaded[0]
	for i, b := range bodies {
		m.planets[b] = loaded[i+1]
	}
	return m, nil
}

// DatasetFiles lists the files LoadMeeus expects to find in dir.
func DatasetFiles(dir string) []string {
	exts := []string{"mer", "ven", "ear", "mar", "jup", "sat", "ura", "nep"}
	files := make([]string, len(exts))
	for i, e := range exts {
		files[i] = filepath.Join(dir, "VSOP87B."+e)
	}
	return files
}

func newMeeus() *Meeus {
	return &Meeus{
		planets: make(map[domain.Body]*pp.V87Planet, len(vsopFiles)),
		step:    DefaultStep,
	}
}

// Observe implements Engine.
func (m *Meeus) Observe(body domain.Body, obs domain.Observer, t time.Time) (domain.Position, error) {
	alt, az, err := m.topocentric(body, obs, t)
	if err != nil {
		return domain.Position{}, err
	}
	if alt > -1*math.Pi/180 {
		alt += refraction.Saemundsson(unit.Angle(alt)).Rad()
	}
	return domain.Position{
		Altitude: alt * 180 / math.Pi,
		Azimuth:  normalize360(az * 180 / math.Pi),
	}, nil
}

// FindDiscrete implements Engine.
func (m *Meeus) FindDiscrete(start, end time.Time, p Predicate) ([]Event, error) {
	return FindDiscrete(start, end, p)
}

// MoonPhaseAngle implements Engine. It is the difference of the apparent
// geocentric ecliptic longitudes of the Moon and the Sun.
func (m *Meeus) MoonPhaseAngle(t time.Time) (float64, error) {
	jde := julianEphemerisDay(t)
	λm, _, _ := moonposition.Position(jde)
	Δψ, _ := nutation.Nutation(jde)
	λs := solar.ApparentLongitude(base.J2000Century(jde))
	return normalize360((λm + Δψ - λs).Deg()), nil
}

// RiseSet implements Predicates.
func (m *Meeus) RiseSet(body domain.Body, obs domain.Observer) Predicate {
	horizon := planetHorizon
	switch body {
	case domain.Sun:
		horizon = SunriseAltitude
	case domain.Moon:
		horizon = moonHorizon
	}
	return Predicate{
		Step: m.step,
		Func: func(t time.Time) (int, error) {
			alt, _, err := m.topocentric(body, obs, t)
			if err != nil {
				return 0, err
			}
			if alt*180/math.Pi >= horizon {
				return Rising, nil
			}
			return Setting, nil
		},
	}
}

// Twilight implements Predicates.
func (m *Meeus) Twilight(obs domain.Observer) Predicate {
	return Predicate{
		Step: m.step,
		Func: func(t time.Time) (int, error) {
			alt, _, err := m.topocentric(domain.Sun, obs, t)
			if err != nil {
				return 0, err
			}
			return TwilightState(alt * 180 / math.Pi), nil
		},
	}
}

// topocentric returns the airless altitude and the azimuth, measured
// from north through east, in radians.
func (m *Meeus) topocentric(body domain.Body, obs domain.Observer, t time.Time) (alt, az float64, err error) {
	α, δ, dist, err := m.equatorial(body, t)
	if err != nil {
		return 0, 0, err
	}
	φ := obs.Latitude * math.Pi / 180
	θ0 := sidereal.Apparent(julian.TimeToJD(t)).Rad()
	H := θ0 + obs.Longitude*math.Pi/180 - α

	sφ, cφ := math.Sincos(φ)
	sδ, cδ := math.Sincos(δ)
	sH, cH := math.Sincos(H)
	alt = math.Asin(sφ*sδ + cφ*cδ*cH)
	az = math.Atan2(sH, cH*sφ-sδ/cδ*cφ) + math.Pi

	if dist > 0 {
		// Lunar parallax in altitude.
		alt -= math.Asin(earthRadiusKm/dist) * math.Cos(alt)
	}
	return alt, az, nil
}

// equatorial returns apparent right ascension and declination in radians
// and, for the Moon only, the geocentric distance in km.
func (m *Meeus) equatorial(body domain.Body, t time.Time) (α, δ, dist float64, err error) {
	jde := julianEphemerisDay(t)
	switch body {
	case domain.Sun:
		ra, dec := solar.ApparentEquatorial(jde)
		return ra.Rad(), dec.Rad(), 0, nil
	case domain.Moon:
		λ, β, Δ := moonposition.Position(jde)
		Δψ, Δε := nutation.Nutation(jde)
		ε := nutation.MeanObliquity(jde) + Δε
		ra, dec := coord.EclToEq(λ+Δψ, β, math.Sin(ε.Rad()), math.Cos(ε.Rad()))
		return ra.Rad(), dec.Rad(), Δ, nil
	}
	if _, ok := vsopFiles[body]; !ok {
		return 0, 0, 0, fmt.Errorf("%w: %v", domain.ErrUnknownBody, body)
	}
	p := m.planets[body]
	if p == nil || m.earth == nil {
		return 0, 0, 0, fmt.Errorf("%w: %v", ErrBodyNotLoaded, body)
	}
	ra, dec := elliptic.Position(p, m.earth, jde)
	return ra.Rad(), dec.Rad(), 0, nil
}

func julianEphemerisDay(t time.Time) float64 {
	return julian.TimeToJD(t) + deltaT.Seconds()/86400
}

func normalize360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
