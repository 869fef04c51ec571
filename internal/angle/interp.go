package angle

// Lerp interpolates linearly between a and b; t=0 gives a, t=1 gives b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Interpolate evaluates the straight line through (x0, y0) and (x1, y1) at x.
// Degenerate input (x0 == x1) returns y0.
func Interpolate(x0, y0, x1, y1, x float64) float64 {
	if x1 == x0 {
		return y0
	}
	return Lerp(y0, y1, (x-x0)/(x1-x0))
}

// Lagrange evaluates the Lagrange interpolating polynomial through the
// points (xs[i], ys[i]) at x. The slices must have equal, non-zero length
// and distinct xs; otherwise Lagrange returns 0.
func Lagrange(xs, ys []float64, x float64) float64 {
	if len(xs) == 0 || len(xs) != len(ys) {
		return 0
	}

	var sum float64
	for i := range xs {
		term := ys[i]
		for j := range xs {
			if i == j {
				continue
			}
			den := xs[i] - xs[j]
			if den == 0 {
				return 0
			}
			term *= (x - xs[j]) / den
		}
		sum += term
	}
	return sum
}

// Unwrap shifts each angle in degrees by a multiple of 360 so consecutive
// values never jump by more than 180. Useful before interpolating a
// sequence of longitudes that crosses the antimeridian.
func Unwrap(deg []float64) []float64 {
	if len(deg) == 0 {
		return nil
	}
	out := make([]float64, len(deg))
	out[0] = deg[0]
	for i := 1; i < len(deg); i++ {
		out[i] = out[i-1] + Diff(deg[i], deg[i-1])
	}
	return out
}
