// Package angle provides degree-based trigonometry, angle wrapping and the
// small numeric toolkit (root finders, interpolation, Gaussian kernel) shared
// by the line, paran and scoring packages.
//
// Every angle that leaves this module's numeric core is wrapped by Normalize
// or NormalizeSymmetric so there is exactly one wrapping convention.
package angle

import (
	"math"
)

const (
	// DegToRad converts degrees to radians.
	DegToRad = math.Pi / 180

	// RadToDeg converts radians to degrees.
	RadToDeg = 180 / math.Pi
)

// Sin returns the sine of an angle in degrees.
func Sin(deg float64) float64 {
	return math.Sin(deg * DegToRad)
}

// Cos returns the cosine of an angle in degrees.
func Cos(deg float64) float64 {
	return math.Cos(deg * DegToRad)
}

// Tan returns the tangent of an angle in degrees.
func Tan(deg float64) float64 {
	return math.Tan(deg * DegToRad)
}

// Asin returns the arcsine in degrees. The input is clamped to [-1, 1]
// so floating point overshoot never produces NaN.
func Asin(x float64) float64 {
	return math.Asin(clampUnit(x)) * RadToDeg
}

// Acos returns the arccosine in degrees, clamping the input to [-1, 1].
func Acos(x float64) float64 {
	return math.Acos(clampUnit(x)) * RadToDeg
}

// Atan2 returns the angle of (x, y) in degrees, in (-180, 180].
func Atan2(y, x float64) float64 {
	return math.Atan2(y, x) * RadToDeg
}

// Normalize wraps an angle into [0, 360).
func Normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// math.Mod of a tiny negative number plus 360 rounds to 360.
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// NormalizeSymmetric wraps an angle into [-180, 180).
func NormalizeSymmetric(deg float64) float64 {
	return Normalize(deg+180) - 180
}

// Diff returns the signed difference a-b wrapped into [-180, 180).
func Diff(a, b float64) float64 {
	return NormalizeSymmetric(a - b)
}

// Gaussian evaluates exp(-(x-mu)^2 / (2 sigma^2)). The peak value is 1.
// A non-positive sigma collapses the kernel to an indicator of x == mu.
func Gaussian(x, mu, sigma float64) float64 {
	if sigma <= 0 {
		if x == mu {
			return 1
		}
		return 0
	}
	d := x - mu
	return math.Exp(-(d * d) / (2 * sigma * sigma))
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clampUnit(x float64) float64 {
	return Clamp(x, -1, 1)
}
