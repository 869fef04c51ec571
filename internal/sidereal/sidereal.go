// Package sidereal relates clock time to the rotation of the sky: Julian
// dates, Greenwich and local sidereal time, and the hour-angle/longitude
// duality used to place lines on the map.
package sidereal

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	meeussidereal "github.com/soniakeys/meeus/v3/sidereal"

	"github.com/litescript/ls-astromap/internal/angle"
)

const (
	// J2000 is the Julian Date of the J2000.0 epoch.
	J2000 = 2451545.0

	// DaysPerCentury is the length of a Julian century in days.
	DaysPerCentury = 36525.0

	// DegreesPerDay is the mean rate of GMST in degrees per solar day.
	DegreesPerDay = 360.98564736629
)

// JulianDate returns the Julian Date of t (UTC).
func JulianDate(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// JulianCenturies returns Julian centuries since J2000.0.
func JulianCenturies(t time.Time) float64 {
	return (JulianDate(t) - J2000) / DaysPerCentury
}

// GMST returns Greenwich Mean Sidereal Time in degrees [0, 360).
//
// IAU 1982 cubic in Julian centuries T:
//
//	GMST = 280.46061837 + 360.98564736629*(JD-2451545) + 0.000387933*T² - T³/38710000
func GMST(t time.Time) float64 {
	return gmstFromJD(JulianDate(t))
}

func gmstFromJD(jd float64) float64 {
	T := (jd - J2000) / DaysPerCentury
	gmst := 280.46061837 +
		DegreesPerDay*(jd-J2000) +
		0.000387933*T*T -
		T*T*T/38710000.0
	return angle.Normalize(gmst)
}

// GAST returns Greenwich Apparent Sidereal Time in degrees [0, 360),
// i.e. GMST corrected for the equation of the equinoxes.
func GAST(t time.Time) float64 {
	st := meeussidereal.Apparent(JulianDate(t))
	return angle.Normalize(st.Angle().Deg())
}

// LMST returns Local Mean Sidereal Time in degrees for an east-positive
// longitude.
func LMST(t time.Time, lonDeg float64) float64 {
	return angle.Normalize(GMST(t) + lonDeg)
}

// LAST returns Local Apparent Sidereal Time in degrees.
func LAST(t time.Time, lonDeg float64) float64 {
	return angle.Normalize(GAST(t) + lonDeg)
}

// LongitudeForHourAngle returns the east-positive longitude in [-180, 180)
// at which a body with right ascension raDeg has hour angle haDeg, given
// Greenwich sidereal time gstDeg:
//
//	longitude = H + RA - GST
func LongitudeForHourAngle(haDeg, raDeg, gstDeg float64) float64 {
	return angle.NormalizeSymmetric(haDeg + raDeg - gstDeg)
}

// HourAngle returns the hour angle in [-180, 180) of a body with right
// ascension raDeg at local sidereal time lstDeg. Negative is east of the
// meridian (rising side).
func HourAngle(lstDeg, raDeg float64) float64 {
	return angle.NormalizeSymmetric(lstDeg - raDeg)
}

// Epoch is a single time snapshot with its Greenwich sidereal time
// precomputed, so the many per-latitude evaluations of the line and paran
// solvers do not repeat the Julian date conversion.
type Epoch struct {
	Time     time.Time
	JD       float64
	GST      float64 // degrees, mean or apparent depending on Apparent
	Apparent bool
}

// NewEpoch builds an Epoch for t. When apparent is true GST holds GAST,
// otherwise GMST.
func NewEpoch(t time.Time, apparent bool) Epoch {
	jd := JulianDate(t)
	e := Epoch{Time: t.UTC(), JD: jd, Apparent: apparent}
	if apparent {
		e.GST = GAST(t)
	} else {
		e.GST = gmstFromJD(jd)
	}
	return e
}

// LST returns local sidereal time at an east-positive longitude.
func (e Epoch) LST(lonDeg float64) float64 {
	return angle.Normalize(e.GST + lonDeg)
}

// LongitudeFor returns the longitude where a body at raDeg has hour angle haDeg.
func (e Epoch) LongitudeFor(haDeg, raDeg float64) float64 {
	return LongitudeForHourAngle(haDeg, raDeg, e.GST)
}

// TimeForLST returns the UT instant nearest to near at which the local mean
// sidereal time at lonDeg equals lstDeg. The result lies within half a
// sidereal day of near. ok is false if the Newton iteration fails.
func TimeForLST(near time.Time, lstDeg, lonDeg float64) (time.Time, bool) {
	jd0 := JulianDate(near)
	f := func(days float64) float64 {
		return angle.Diff(gmstFromJD(jd0+days)+lonDeg, lstDeg)
	}
	df := func(float64) float64 { return DegreesPerDay }

	guess := angle.Diff(lstDeg, LMST(near, lonDeg)) / DegreesPerDay
	res := angle.Newton(f, df, guess, 1e-10, 20)
	if !res.Found {
		return time.Time{}, false
	}

	offset := time.Duration(res.Root * 86400 * float64(time.Second))
	return near.UTC().Add(offset).Round(time.Millisecond), true
}
