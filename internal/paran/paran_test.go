package paran

import (
	"context"
	"math"
	"testing"

	"github.com/litescript/ls-astromap/internal/angle"
	"github.com/litescript/ls-astromap/internal/astro"
)

func body(name string, ra, dec float64) astro.Body {
	return astro.Body{Name: name, Coord: astro.Equatorial{RAdeg: ra, DecDeg: dec}}
}

func TestStrength(t *testing.T) {
	const orb = 1.0

	if got := Strength(0, orb); got != 1 {
		t.Errorf("Strength(0) = %v, want 1", got)
	}
	if got := Strength(orb, orb); got != 0 {
		t.Errorf("Strength(orb) = %v, want 0", got)
	}
	if got := Strength(5, orb); got != 0 {
		t.Errorf("Strength(5) = %v, want 0 (clamped)", got)
	}

	prev := 1.0
	for d := 0.05; d <= orb; d += 0.05 {
		s := Strength(d, orb)
		if s > prev {
			t.Errorf("Strength not decreasing at %v: %v > %v", d, s, prev)
		}
		if s != Strength(-d, orb) {
			t.Errorf("Strength(%v) != Strength(%v)", d, -d)
		}
		if s < 0 || s > 1 {
			t.Errorf("Strength(%v) = %v outside [0, 1]", d, s)
		}
		prev = s
	}

	if Strength(0, 0) != 1 || Strength(0.1, 0) != 0 {
		t.Error("zero orb should only accept an exact hit")
	}
}

func TestFindAllForPair_RiseVsCulminate(t *testing.T) {
	sun := body("Sun", 90, 23.44)
	other := body("Star", 350, 10)

	// Sun rises at LST 90-SDA; the star culminates at LST 350, so the paran
	// sits where SDA = 100°: tan(lat) = -cos(100°)/tan(23.44°).
	want := math.Atan(-angle.Cos(100)/angle.Tan(23.44)) * angle.RadToDeg

	pts := FindAllForPair(
		Selection{Body: sun, Event: astro.Rise},
		Selection{Body: other, Event: astro.Culminate},
		DefaultOptions(),
	)
	if len(pts) != 1 {
		t.Fatalf("got %d parans, want 1: %+v", len(pts), pts)
	}
	p := pts[0]
	if math.Abs(p.LatDeg-want) > 1e-5 {
		t.Errorf("LatDeg = %v, want %v", p.LatDeg, want)
	}
	if !p.Converged {
		t.Error("bisection did not converge")
	}
	if p.Strength < 0.999 {
		t.Errorf("Strength = %v, want ~1", p.Strength)
	}
	if p.BodyA != "Sun" || p.EventA != astro.Rise || p.BodyB != "Star" || p.EventB != astro.Culminate {
		t.Errorf("labels = %+v", p)
	}
	if math.Abs(angle.Diff(p.LST, 350)) > 1e-4 {
		t.Errorf("LST = %v, want 350", p.LST)
	}
}

func TestFindAllForPair_NearCircumpolarBoundary(t *testing.T) {
	sun := body("Sun", 90, 23.44)
	// Culminate exactly when the Sun rises at 66.4°N, just inside its
	// 66.56° critical latitude.
	ra := angle.Normalize(90 - astro.SemiDiurnalArc(66.4, 23.44).SDA)
	star := body("Star", ra, 0)

	pts := FindAllForPair(
		Selection{Body: sun, Event: astro.Rise},
		Selection{Body: star, Event: astro.Culminate},
		DefaultOptions(),
	)
	if len(pts) != 1 {
		t.Fatalf("got %d parans, want 1: %+v", len(pts), pts)
	}
	if math.Abs(pts[0].LatDeg-66.4) > 1e-4 {
		t.Errorf("LatDeg = %v, want 66.4", pts[0].LatDeg)
	}
}

func TestFindAllForPair_RootPastLastSample(t *testing.T) {
	sun := body("Sun", 90, 23.44)
	tests := []struct {
		name   string
		latDeg float64
	}{
		// The 66.75° and -66.75° samples are beyond the Sun's critical
		// latitude, so each root sits between the last defined sample and
		// the boundary.
		{"north", 66.53},
		{"south", -66.53},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ra := angle.Normalize(90 - astro.SemiDiurnalArc(tt.latDeg, 23.44).SDA)
			star := body("Star", ra, 0)

			pts := FindAllForPair(
				Selection{Body: sun, Event: astro.Rise},
				Selection{Body: star, Event: astro.Culminate},
				DefaultOptions(),
			)
			var found bool
			for _, p := range pts {
				if math.Abs(p.LatDeg-tt.latDeg) < 1e-4 {
					found = true
					if !p.Converged || p.Strength < 0.99 {
						t.Errorf("paran at %v: converged %v, strength %v", p.LatDeg, p.Converged, p.Strength)
					}
				}
			}
			if !found {
				t.Errorf("no paran near %v: %+v", tt.latDeg, pts)
			}
		})
	}
}

func TestFindRoots_EdgeOfDomain(t *testing.T) {
	tests := []struct {
		name string
		f    angle.PartialFunc
		want float64
	}{
		{"falling edge", func(lat float64) (float64, bool) {
			return lat - 40.6, lat <= 40.62
		}, 40.6},
		{"rising edge", func(lat float64) (float64, bool) {
			return lat + 40.6, lat >= -40.62
		}, -40.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roots := findRoots(tt.f, DefaultOptions())
			if len(roots) != 1 {
				t.Fatalf("got %d roots, want 1: %+v", len(roots), roots)
			}
			if math.Abs(roots[0].Root-tt.want) > 1e-5 || !roots[0].Converged {
				t.Errorf("root = %+v, want %v", roots[0], tt.want)
			}
		})
	}
}

func TestFindAllForPair_MeridianPairsSkipped(t *testing.T) {
	a := Selection{Body: body("A", 10, 10), Event: astro.Culminate}
	b := Selection{Body: body("B", 10, -30), Event: astro.AntiCulminate}
	if pts := FindAllForPair(a, b, DefaultOptions()); pts != nil {
		t.Errorf("meridian pair returned %v", pts)
	}
}

func TestFindAllForPair_NoRoot(t *testing.T) {
	// Equatorial bodies rise at a fixed LST at every latitude.
	a := Selection{Body: body("A", 10, 0), Event: astro.Rise}
	b := Selection{Body: body("B", 40, 0), Event: astro.Rise}
	if pts := FindAllForPair(a, b, DefaultOptions()); len(pts) != 0 {
		t.Errorf("got %d parans, want none", len(pts))
	}
}

func TestFindRoots_MultipleBrackets(t *testing.T) {
	// sin(lat·6°) has zeros every 30° of latitude.
	f := func(lat float64) (float64, bool) { return angle.Sin(lat * 6), true }
	opts := DefaultOptions()
	opts.SampleStep = 0.3 // keep samples off the exact zeros

	roots := findRoots(f, opts)
	want := []float64{-60, -30, 0, 30, 60}
	if len(roots) != len(want) {
		t.Fatalf("got %d roots, want %d: %+v", len(roots), len(want), roots)
	}
	for i, r := range roots {
		if math.Abs(r.Root-want[i]) > 1e-5 {
			t.Errorf("root %d = %v, want %v", i, r.Root, want[i])
		}
	}
}

func TestFindRoots_GapInsideBracket(t *testing.T) {
	tests := []struct {
		name       string
		gapLo      float64
		gapHi      float64
		wantRoots  int
		wantLatDeg float64
	}{
		{"quarter point rescues bracket", 30.1, 30.15, 1, 30.02},
		{"bracket abandoned", 30.03, 30.24, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := func(lat float64) (float64, bool) {
				if lat > tt.gapLo && lat < tt.gapHi {
					return 0, false
				}
				return lat - 30.02, true
			}
			roots := findRoots(f, DefaultOptions())
			if len(roots) != tt.wantRoots {
				t.Fatalf("got %d roots, want %d: %+v", len(roots), tt.wantRoots, roots)
			}
			if tt.wantRoots == 1 && math.Abs(roots[0].Root-tt.wantLatDeg) > 1e-5 {
				t.Errorf("root = %v, want %v", roots[0].Root, tt.wantLatDeg)
			}
		})
	}
}

func TestFindRoots_WrapIsNotARoot(t *testing.T) {
	f := func(lat float64) (float64, bool) {
		if lat < 10 {
			return 170, true
		}
		return -170, true
	}
	if roots := findRoots(f, DefaultOptions()); len(roots) != 0 {
		t.Errorf("wrap produced roots: %+v", roots)
	}
}

func TestFindRoots_IterationBudget(t *testing.T) {
	f := func(lat float64) (float64, bool) { return lat - 0.1, true }
	opts := DefaultOptions()
	opts.MaxIter = 3

	roots := findRoots(f, opts)
	if len(roots) != 1 {
		t.Fatalf("got %d roots, want 1", len(roots))
	}
	if roots[0].Converged {
		t.Error("3 iterations cannot reach 1e-6")
	}
	if math.Abs(roots[0].Root-0.1) > 0.25 {
		t.Errorf("best estimate %v too far from 0.1", roots[0].Root)
	}
}

func TestEventPairs(t *testing.T) {
	pairs := EventPairs()
	if len(pairs) != 12 {
		t.Fatalf("got %d event pairs, want 12", len(pairs))
	}
	for _, p := range pairs {
		if p[0].IsMeridian() && p[1].IsMeridian() {
			t.Errorf("meridian pair %v included", p)
		}
	}
}

func TestFindAll(t *testing.T) {
	bodies := []astro.Body{
		body("Sun", 90, 23.44),
		body("Moon", 210, -12),
		body("Jupiter", 330, 5),
	}

	pts, err := FindAll(context.Background(), bodies, Options{Workers: 2})
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(pts) == 0 {
		t.Fatal("expected parans")
	}

	order := map[string]int{"Sun": 0, "Moon": 1, "Jupiter": 2}
	for i, p := range pts {
		if p.BodyA == p.BodyB {
			t.Errorf("paran %d pairs %s with itself", i, p.BodyA)
		}
		if order[p.BodyA] >= order[p.BodyB] {
			t.Errorf("paran %d pair order %s/%s", i, p.BodyA, p.BodyB)
		}
		if p.LatDeg < -85 || p.LatDeg > 85 {
			t.Errorf("paran %d latitude %v outside search range", i, p.LatDeg)
		}
		if p.Strength < 0 || p.Strength > 1 {
			t.Errorf("paran %d strength %v", i, p.Strength)
		}
		if i > 0 {
			prev := pts[i-1]
			if order[prev.BodyA] > order[p.BodyA] ||
				(prev.BodyA == p.BodyA && order[prev.BodyB] > order[p.BodyB]) {
				t.Errorf("paran %d out of pair order", i)
			}
		}
	}

	again, err := FindAll(context.Background(), bodies, Options{Workers: 5})
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(again) != len(pts) {
		t.Fatalf("non-deterministic count: %d vs %d", len(again), len(pts))
	}
	for i := range pts {
		if pts[i] != again[i] {
			t.Errorf("paran %d differs between runs", i)
		}
	}
}

func TestFindAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FindAll(ctx, []astro.Body{body("A", 0, 10), body("B", 90, -10)}, DefaultOptions())
	if err == nil {
		t.Error("expected error from cancelled context")
	}
}
