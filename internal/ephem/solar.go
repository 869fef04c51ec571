package ephem

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"

	"github.com/litescript/ls-astromap/internal/angle"
	"github.com/litescript/ls-astromap/internal/astro"
)

// SunName is the body name used by SolarProvider.
const SunName = "Sun"

// SolarProvider computes the apparent equatorial position of the Sun from
// the low-precision solar theory (Meeus ch. 25), good to about 0.01°.
type SolarProvider struct{}

// Name returns "meeus-solar".
func (SolarProvider) Name() string { return "meeus-solar" }

// Bodies returns the Sun at t.
func (SolarProvider) Bodies(t time.Time) ([]astro.Body, error) {
	return []astro.Body{SunAt(t)}, nil
}

// SunAt returns the Sun's apparent position at t.
func SunAt(t time.Time) astro.Body {
	ra, dec := solar.ApparentEquatorial(julian.TimeToJD(t.UTC()))
	return astro.Body{
		Name: SunName,
		Coord: astro.Equatorial{
			RAdeg:  angle.Normalize(unit.Angle(ra).Deg()),
			DecDeg: dec.Deg(),
		},
	}
}
