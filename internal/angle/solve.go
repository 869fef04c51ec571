package angle

import (
	"math"
)

// Func is a scalar function of one variable.
type Func func(x float64) float64

// RootResult holds the output of a root search.
type RootResult struct {
	Root       float64 // best estimate; meaningful only when Found
	Found      bool    // false when the interval does not bracket a root
	Iterations int     // iterations spent
	Converged  bool    // true if the tolerance was reached within the budget
	Residual   float64 // f(Root)
}

// Bisect searches [a, b] for a root of f by bisection.
//
// If neither endpoint is within tol of zero and f(a)·f(b) > 0 the interval
// does not bracket a root and the result has Found=false. Running out of
// maxIter iterations returns the best estimate with Converged=false.
func Bisect(f Func, a, b, tol float64, maxIter int) RootResult {
	if a > b {
		a, b = b, a
	}
	fa, fb := f(a), f(b)

	if math.Abs(fa) <= tol {
		return RootResult{Root: a, Found: true, Converged: true, Residual: fa}
	}
	if math.Abs(fb) <= tol {
		return RootResult{Root: b, Found: true, Converged: true, Residual: fb}
	}
	if fa*fb > 0 {
		return RootResult{}
	}

	total := func(x float64) (float64, bool) { return f(x), true }
	return BisectPartial(total, a, fa, b, fb, tol, maxIter)
}

// PartialFunc is a function of one variable that may be undefined at some
// points.
type PartialFunc func(x float64) (float64, bool)

// BisectPartial narrows the bracket [a, b], whose defined endpoint values fa
// and fb have opposite signs, to a root of f.
//
// When a midpoint is undefined the quarter points are evaluated and whichever
// defined one keeps a sign-changing sub-bracket replaces an endpoint. With
// neither quarter point defined the bracket is abandoned (Found=false).
// Running out of maxIter iterations returns the best estimate with
// Converged=false.
func BisectPartial(f PartialFunc, a, fa, b, fb, tol float64, maxIter int) RootResult {
	if a > b {
		a, fa, b, fb = b, fb, a, fa
	}

	iter := 0
	for ; iter < maxIter && b-a > tol; iter++ {
		mid := a + (b-a)/2
		if fm, ok := f(mid); ok {
			if fm == 0 {
				return RootResult{Root: mid, Found: true, Iterations: iter + 1, Converged: true}
			}
			if (fm < 0) == (fa < 0) {
				a, fa = mid, fm
			} else {
				b, fb = mid, fm
			}
			continue
		}

		q1 := a + (b-a)/4
		if fq, ok := f(q1); ok {
			if (fq < 0) == (fa < 0) {
				a, fa = q1, fq
			} else {
				b, fb = q1, fq
			}
			continue
		}
		q3 := a + 3*(b-a)/4
		if fq, ok := f(q3); ok {
			if (fq < 0) == (fb < 0) {
				b, fb = q3, fq
			} else {
				a, fa = q3, fq
			}
			continue
		}
		return RootResult{Iterations: iter + 1}
	}

	r := RootResult{
		Root:       a + (b-a)/2,
		Found:      true,
		Iterations: iter,
		Converged:  b-a <= tol,
	}
	if fr, ok := f(r.Root); ok {
		r.Residual = fr
	} else if math.Abs(fa) <= math.Abs(fb) {
		r.Residual = fa
	} else {
		r.Residual = fb
	}
	return r
}

// Edge locates where f stops being defined between in, where it is defined,
// and out, where it is not. It returns the defined point nearest the edge,
// at most tol from it, and f there.
func Edge(f PartialFunc, in, out, tol float64, maxIter int) (x, fx float64, ok bool) {
	fx, ok = f(in)
	if !ok {
		return in, 0, false
	}
	x = in
	for i := 0; i < maxIter && math.Abs(out-x) > tol; i++ {
		mid := x + (out-x)/2
		if fm, defined := f(mid); defined {
			x, fx = mid, fm
		} else {
			out = mid
		}
	}
	return x, fx, true
}

// Newton searches for a root of f starting at x0 with Newton-Raphson.
//
// df may be nil, in which case a central difference is used. The search
// stops when a step is smaller than tol, and gives up (Found=false) if the
// derivative vanishes or the iterate stops being finite.
func Newton(f, df Func, x0, tol float64, maxIter int) RootResult {
	if df == nil {
		df = centralDifference(f, 1e-6)
	}

	x := x0
	for i := 1; i <= maxIter; i++ {
		fx := f(x)
		d := df(x)
		if d == 0 || math.IsNaN(d) {
			return RootResult{Root: x, Iterations: i, Residual: fx}
		}
		step := fx / d
		x -= step
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return RootResult{Iterations: i}
		}
		if math.Abs(step) <= tol {
			return RootResult{Root: x, Found: true, Iterations: i, Converged: true, Residual: f(x)}
		}
	}

	return RootResult{Root: x, Found: true, Iterations: maxIter, Residual: f(x)}
}

func centralDifference(f Func, h float64) Func {
	return func(x float64) float64 {
		return (f(x+h) - f(x-h)) / (2 * h)
	}
}
