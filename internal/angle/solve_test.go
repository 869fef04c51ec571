package angle

import (
	"math"
	"testing"
)

func TestBisect(t *testing.T) {
	tests := []struct {
		name      string
		f         Func
		a, b      float64
		wantFound bool
		wantRoot  float64
	}{
		{"linear", func(x float64) float64 { return x - 2 }, 0, 5, true, 2},
		{"cosine", func(x float64) float64 { return Cos(x) }, 0, 170, true, 90},
		{"reversed interval", func(x float64) float64 { return x*x - 4 }, 5, 0, true, 2},
		{"no bracket", func(x float64) float64 { return x*x + 1 }, -1, 1, false, 0},
		{"root at endpoint", func(x float64) float64 { return x - 3 }, 3, 10, true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Bisect(tt.f, tt.a, tt.b, 1e-9, 200)
			if res.Found != tt.wantFound {
				t.Fatalf("Found = %v, want %v", res.Found, tt.wantFound)
			}
			if !tt.wantFound {
				return
			}
			if !res.Converged {
				t.Errorf("Converged = false after %d iterations", res.Iterations)
			}
			if math.Abs(res.Root-tt.wantRoot) > 1e-6 {
				t.Errorf("Root = %v, want %v", res.Root, tt.wantRoot)
			}
		})
	}
}

func TestBisect_IterationBudget(t *testing.T) {
	res := Bisect(func(x float64) float64 { return x - 1.234567 }, 0, 100, 1e-12, 5)
	if !res.Found {
		t.Fatal("expected a bracketed root")
	}
	if res.Converged {
		t.Error("Converged = true with only 5 iterations for 1e-12 tolerance")
	}
	if res.Iterations != 5 {
		t.Errorf("Iterations = %d, want 5", res.Iterations)
	}
	if res.Root < 0 || res.Root > 100 {
		t.Errorf("Root = %v escaped the interval", res.Root)
	}
}

func TestNewton(t *testing.T) {
	f := func(x float64) float64 { return x*x - 2 }
	df := func(x float64) float64 { return 2 * x }

	res := Newton(f, df, 1, 1e-12, 50)
	if !res.Found || !res.Converged {
		t.Fatalf("Newton did not converge: %+v", res)
	}
	if math.Abs(res.Root-math.Sqrt2) > 1e-10 {
		t.Errorf("Root = %v, want %v", res.Root, math.Sqrt2)
	}

	// Numerical derivative path.
	res = Newton(f, nil, 1, 1e-10, 50)
	if math.Abs(res.Root-math.Sqrt2) > 1e-8 {
		t.Errorf("Root with numeric derivative = %v, want %v", res.Root, math.Sqrt2)
	}
}

func TestNewton_FlatDerivative(t *testing.T) {
	res := Newton(func(float64) float64 { return 1 }, func(float64) float64 { return 0 }, 0, 1e-9, 10)
	if res.Found {
		t.Errorf("Found = true for a function with zero derivative")
	}
}

func TestInterpolation(t *testing.T) {
	if got := Interpolate(0, 0, 10, 100, 2.5); got != 25 {
		t.Errorf("Interpolate = %v, want 25", got)
	}
	if got := Interpolate(1, 7, 1, 9, 5); got != 7 {
		t.Errorf("Interpolate degenerate = %v, want 7", got)
	}

	// A quadratic is reproduced exactly by a three point Lagrange fit.
	xs := []float64{0, 1, 3}
	ys := []float64{1, 2, 10} // y = x^2 + 1
	if got := Lagrange(xs, ys, 2); math.Abs(got-5) > 1e-12 {
		t.Errorf("Lagrange(2) = %v, want 5", got)
	}
	if got := Lagrange(xs, ys[:2], 2); got != 0 {
		t.Errorf("Lagrange with mismatched input = %v, want 0", got)
	}
}

func TestUnwrap(t *testing.T) {
	got := Unwrap([]float64{170, 179, -175, -160})
	want := []float64{170, 179, 185, 200}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("Unwrap[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBisectPartial(t *testing.T) {
	// Undefined on (1.1, 1.3); the root at 1.05 stays reachable.
	f := func(x float64) (float64, bool) {
		if x > 1.1 && x < 1.3 {
			return 0, false
		}
		return x - 1.05, true
	}
	res := BisectPartial(f, 0, -1.05, 2, 0.95, 1e-9, 100)
	if !res.Found || !res.Converged {
		t.Fatalf("BisectPartial() = %+v, want a converged root", res)
	}
	if math.Abs(res.Root-1.05) > 1e-8 {
		t.Errorf("Root = %v, want 1.05", res.Root)
	}

	// Reversed endpoints are accepted.
	if res := BisectPartial(f, 2, 0.95, 0, -1.05, 1e-9, 100); math.Abs(res.Root-1.05) > 1e-8 {
		t.Errorf("reversed Root = %v, want 1.05", res.Root)
	}

	hole := func(x float64) (float64, bool) { return x - 1, x <= 0.1 || x >= 1.9 }
	if res := BisectPartial(hole, 0, -1, 2, 1, 1e-9, 100); res.Found {
		t.Errorf("bracket with an undefined interior should be abandoned, got %+v", res)
	}
}

func TestEdge(t *testing.T) {
	f := func(x float64) (float64, bool) { return 2 * x, x <= 3.3 }

	tests := []struct {
		name    string
		in, out float64
		ok      bool
	}{
		{"edge above", 3, 4, true},
		{"start undefined", 3.5, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, fx, ok := Edge(f, tt.in, tt.out, 1e-9, 100)
			if ok != tt.ok {
				t.Fatalf("Edge() ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if x > 3.3 || 3.3-x > 1e-8 {
				t.Errorf("Edge() x = %v, want just below 3.3", x)
			}
			if fx != 2*x {
				t.Errorf("Edge() fx = %v, want %v", fx, 2*x)
			}
		})
	}

	g := func(x float64) (float64, bool) { return x, x >= -3.3 }
	if x, _, _ := Edge(g, -3, -4, 1e-9, 100); x < -3.3 || x+3.3 > 1e-8 {
		t.Errorf("Edge() below = %v, want just above -3.3", x)
	}
}
