// Package astro provides the coordinate types of the mapper and the
// closed-form spherical astronomy built on them: semi-diurnal arcs,
// event sidereal times and horizontal coordinates.
package astro

import (
	"errors"
	"fmt"
	"math"

	"github.com/litescript/ls-astromap/internal/angle"
)

// ErrInvalidCoordinate is wrapped by every coordinate validation failure.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Equatorial is a position on the celestial sphere.
type Equatorial struct {
	RAdeg  float64 // Right Ascension in degrees [0, 360)
	DecDeg float64 // Declination in degrees [-90, 90]
}

// Validate reports whether the coordinate is inside its documented range.
func (e Equatorial) Validate() error {
	switch {
	case math.IsNaN(e.RAdeg) || math.IsNaN(e.DecDeg):
		return fmt.Errorf("%w: NaN component (ra=%v, dec=%v)", ErrInvalidCoordinate, e.RAdeg, e.DecDeg)
	case e.RAdeg < 0 || e.RAdeg >= 360:
		return fmt.Errorf("%w: right ascension %.6f outside [0, 360)", ErrInvalidCoordinate, e.RAdeg)
	case e.DecDeg < -90 || e.DecDeg > 90:
		return fmt.Errorf("%w: declination %.6f outside [-90, 90]", ErrInvalidCoordinate, e.DecDeg)
	}
	return nil
}

// GeoLocation is a point on the Earth's surface.
type GeoLocation struct {
	LatDeg float64 // Latitude in degrees (north positive)
	LonDeg float64 // Longitude in degrees (east positive), [-180, 180]
}

// Validate reports whether the location is inside its documented range.
func (g GeoLocation) Validate() error {
	switch {
	case math.IsNaN(g.LatDeg) || math.IsNaN(g.LonDeg):
		return fmt.Errorf("%w: NaN component (lat=%v, lon=%v)", ErrInvalidCoordinate, g.LatDeg, g.LonDeg)
	case g.LatDeg < -90 || g.LatDeg > 90:
		return fmt.Errorf("%w: latitude %.6f outside [-90, 90]", ErrInvalidCoordinate, g.LatDeg)
	case g.LonDeg < -180 || g.LonDeg > 180:
		return fmt.Errorf("%w: longitude %.6f outside [-180, 180]", ErrInvalidCoordinate, g.LonDeg)
	}
	return nil
}

// Body is a named celestial body at one time snapshot.
type Body struct {
	Name  string
	Coord Equatorial
}

// Validate checks the name and coordinate of the body.
func (b Body) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("%w: body without a name", ErrInvalidCoordinate)
	}
	if err := b.Coord.Validate(); err != nil {
		return fmt.Errorf("body %q: %w", b.Name, err)
	}
	return nil
}

// Horizontal is a position relative to an observer's horizon.
type Horizontal struct {
	AltDeg float64 // Altitude in degrees (0=horizon, 90=zenith)
	AzDeg  float64 // Azimuth in degrees (0=N, 90=E, 180=S, 270=W)
}

// EquatorialToHorizontal converts a body's equatorial position to altitude
// and azimuth for an observer at latDeg whose local sidereal time is lstDeg.
func EquatorialToHorizontal(eq Equatorial, latDeg, lstDeg float64) Horizontal {
	ha := lstDeg - eq.RAdeg

	sinAlt := angle.Sin(eq.DecDeg)*angle.Sin(latDeg) +
		angle.Cos(eq.DecDeg)*angle.Cos(latDeg)*angle.Cos(ha)
	alt := angle.Asin(sinAlt)

	// Azimuth measured from north through east.
	y := -angle.Cos(eq.DecDeg) * angle.Sin(ha)
	x := angle.Sin(eq.DecDeg)*angle.Cos(latDeg) -
		angle.Cos(eq.DecDeg)*angle.Sin(latDeg)*angle.Cos(ha)
	az := angle.Normalize(angle.Atan2(y, x))

	return Horizontal{AltDeg: alt, AzDeg: az}
}
