package zenith

import (
	"math"
	"testing"
	"time"

	"github.com/litescript/ls-astromap/internal/astro"
	"github.com/litescript/ls-astromap/internal/sidereal"
)

func bodies() []astro.Body {
	return []astro.Body{
		{Name: "Sun", Coord: astro.Equatorial{RAdeg: 90, DecDeg: 20}},
		{Name: "Moon", Coord: astro.Equatorial{RAdeg: 200, DecDeg: 17}},
		{Name: "Saturn", Coord: astro.Equatorial{RAdeg: 350, DecDeg: -8}},
		{Name: "Pluto", Coord: astro.Equatorial{RAdeg: 300, DecDeg: 20}},
	}
}

func TestScore_ExactZenith(t *testing.T) {
	weights := map[string]float64{"Sun": 2.5, "Moon": 1, "Saturn": 1}

	total, contribs := Score(20, bodies(), weights, DefaultSigma)
	if len(contribs) != 3 {
		t.Fatalf("got %d contributions, want 3", len(contribs))
	}

	top := contribs[0]
	if top.Body != "Sun" {
		t.Fatalf("top contributor = %s, want Sun", top.Body)
	}
	if top.Distance != 0 {
		t.Errorf("Distance = %v, want 0", top.Distance)
	}
	if top.Value != 2.5 {
		t.Errorf("Value = %v, want 2.5 (1.0 × weight)", top.Value)
	}

	var sum float64
	for i, c := range contribs {
		sum += c.Value
		if i > 0 && c.Value > contribs[i-1].Value {
			t.Errorf("contributions not sorted at %d", i)
		}
	}
	if math.Abs(sum-total) > 1e-12 {
		t.Errorf("total %v != sum of contributions %v", total, sum)
	}
}

func TestScore_ZeroWeightSkipped(t *testing.T) {
	weights := map[string]float64{"Sun": 1, "Moon": 1, "Saturn": 1, "Pluto": 0}
	_, contribs := Score(20, bodies(), weights, DefaultSigma)
	for _, c := range contribs {
		if c.Body == "Pluto" {
			t.Error("zero-weight body appears in the breakdown")
		}
	}

	total, contribs := Score(20, bodies(), nil, DefaultSigma)
	if total != 0 || len(contribs) != 0 {
		t.Errorf("no weights: total=%v, %d contributions", total, len(contribs))
	}
}

func TestScore_GaussianFalloff(t *testing.T) {
	weights := map[string]float64{"Sun": 1}
	one := []astro.Body{bodies()[0]}

	atSigma, _ := Score(23, one, weights, 3)
	if want := math.Exp(-0.5); math.Abs(atSigma-want) > 1e-12 {
		t.Errorf("score at 1σ = %v, want %v", atSigma, want)
	}
	north, _ := Score(26, one, weights, 3)
	south, _ := Score(14, one, weights, 3)
	if math.Abs(north-south) > 1e-12 {
		t.Errorf("falloff not symmetric: %v vs %v", north, south)
	}
	def, _ := Score(23, one, weights, 0)
	if def != atSigma {
		t.Errorf("sigma 0 should fall back to DefaultSigma")
	}
}

func TestLines(t *testing.T) {
	epoch := sidereal.NewEpoch(time.Date(2025, 6, 21, 12, 0, 0, 0, time.UTC), false)
	weights := map[string]float64{"Sun": 1, "Moon": 0.5}

	lines := Lines(bodies(), weights, epoch)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	sun := lines[0]
	if sun.Body != "Sun" || sun.LatDeg != 20 || sun.Point.LatDeg != 20 {
		t.Errorf("Sun zenith line = %+v", sun)
	}

	// The body is overhead at its sub-body point.
	h := astro.EquatorialToHorizontal(bodies()[0].Coord, sun.Point.LatDeg, epoch.LST(sun.Point.LonDeg))
	if math.Abs(h.AltDeg-90) > 1e-5 {
		t.Errorf("altitude at sub-body point = %v, want 90", h.AltDeg)
	}
}
