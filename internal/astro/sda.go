package astro

import (
	"math"

	"github.com/soniakeys/meeus/v3/rise"
	"github.com/soniakeys/unit"

	"github.com/litescript/ls-astromap/internal/angle"
)

const (
	// PoleGuardDeg is the latitude beyond which the semi-diurnal arc is not
	// computed from the formula; tan(lat) diverges at the pole.
	PoleGuardDeg = 89.9

	// circumpolarEpsilon keeps |cos H| = 1 boundary cases out of acos.
	circumpolarEpsilon = 1e-10
)

// Standard horizon altitudes in degrees, for callers that want rise and set
// to include refraction rather than the geometric horizon (0).
var (
	StellarHorizon = unit.Angle(rise.Stdh0Stellar).Deg()
	SolarHorizon   = unit.Angle(rise.Stdh0Solar).Deg()
)

// SDAResult is the semi-diurnal arc of a body at one latitude.
//
// Exactly one of three states holds: the body rises and sets (both flags
// false, hour angles valid), it never sets, or it never rises.
type SDAResult struct {
	SDA           float64 // half the hour-angle span above the horizon, [0, 180]
	NeverRises    bool
	NeverSets     bool
	RiseHourAngle float64 // -SDA; valid only when RisesAndSets
	SetHourAngle  float64 // +SDA; valid only when RisesAndSets
}

// RisesAndSets reports whether the rise and set hour angles are defined.
func (r SDAResult) RisesAndSets() bool {
	return !r.NeverRises && !r.NeverSets
}

// SemiDiurnalArc computes the semi-diurnal arc against the geometric
// horizon: cos H = -tan(lat)·tan(dec).
func SemiDiurnalArc(latDeg, decDeg float64) SDAResult {
	if r, ok := poleGuard(latDeg, decDeg); ok {
		return r
	}
	return classify(-angle.Tan(latDeg) * angle.Tan(decDeg))
}

// SemiDiurnalArcAt computes the semi-diurnal arc against a horizon at
// altitude h0Deg:
//
//	cos H = (sin h0 - sin lat·sin dec) / (cos lat·cos dec)
//
// With h0Deg == 0 it is identical to SemiDiurnalArc.
func SemiDiurnalArcAt(latDeg, decDeg, h0Deg float64) SDAResult {
	if h0Deg == 0 {
		return SemiDiurnalArc(latDeg, decDeg)
	}
	if r, ok := poleGuard(latDeg, decDeg); ok {
		return r
	}
	den := angle.Cos(latDeg) * angle.Cos(decDeg)
	num := angle.Sin(h0Deg) - angle.Sin(latDeg)*angle.Sin(decDeg)
	if den == 0 {
		// Only reachable at dec = ±90; the body never crosses h0.
		if num > 0 {
			return SDAResult{NeverRises: true}
		}
		return SDAResult{SDA: 180, NeverSets: true}
	}
	return classify(num / den)
}

// poleGuard answers directly near the poles, where the sign agreement of
// latitude and declination decides the state.
func poleGuard(latDeg, decDeg float64) (SDAResult, bool) {
	if math.Abs(latDeg) <= PoleGuardDeg {
		return SDAResult{}, false
	}
	sameSign := (latDeg > 0 && decDeg > 0) || (latDeg < 0 && decDeg < 0)
	if sameSign {
		return SDAResult{SDA: 180, NeverSets: true}, true
	}
	return SDAResult{NeverRises: true}, true
}

func classify(cosH float64) SDAResult {
	switch {
	case cosH < -1+circumpolarEpsilon:
		return SDAResult{SDA: 180, NeverSets: true}
	case cosH > 1-circumpolarEpsilon:
		return SDAResult{NeverRises: true}
	}
	sda := angle.Acos(cosH)
	return SDAResult{
		SDA:           sda,
		RiseHourAngle: -sda,
		SetHourAngle:  sda,
	}
}

// CriticalLatitude is the latitude beyond which a body with declination
// decDeg stops rising and setting against the geometric horizon: 90-|dec|.
func CriticalLatitude(decDeg float64) float64 {
	return 90 - math.Abs(decDeg)
}
