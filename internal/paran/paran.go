// Package paran finds parans: latitudes at which two bodies reach two
// angular events at the same local sidereal time.
//
// The LST difference of the two events is a partial function of latitude.
// Rise and set stop existing beyond a body's critical latitude, so the
// search samples only defined points and bisects around gaps.
package paran

import (
	"context"
	"math"

	"github.com/litescript/ls-astromap/internal/angle"
	"github.com/litescript/ls-astromap/internal/astro"
	"github.com/litescript/ls-astromap/internal/workpool"
)

// wrapGuard rejects sign changes where either sample is this far from zero;
// those come from the ±180° wrap of the LST difference, not a root.
const wrapGuard = 90.0

// Options controls the paran search.
type Options struct {
	LatMin          float64 // search range, degrees
	LatMax          float64
	SampleStep      float64 // coarse sampling step, degrees
	Tolerance       float64 // bracket width at convergence, degrees
	MaxIter         int     // bisection budget per bracket
	MaxOrb          float64 // |Δ| at which strength reaches 0, degrees
	HorizonAltitude float64 // h0 for rise/set events
	Workers         int     // FindAll concurrency; 0 uses all CPUs
}

// DefaultOptions returns the standard search: ±85° sampled every 0.25°,
// bisected to 1e-6° within 100 iterations, with a 1° orb.
func DefaultOptions() Options {
	return Options{
		LatMin:     -85,
		LatMax:     85,
		SampleStep: 0.25,
		Tolerance:  1e-6,
		MaxIter:    100,
		MaxOrb:     1,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.LatMin == 0 && o.LatMax == 0 {
		o.LatMin, o.LatMax = d.LatMin, d.LatMax
	}
	if o.LatMin > o.LatMax {
		o.LatMin, o.LatMax = o.LatMax, o.LatMin
	}
	if o.SampleStep <= 0 {
		o.SampleStep = d.SampleStep
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.MaxIter <= 0 {
		o.MaxIter = d.MaxIter
	}
	if o.MaxOrb <= 0 {
		o.MaxOrb = d.MaxOrb
	}
	return o
}

// Selection is one side of a paran: a body and the event it reaches.
type Selection struct {
	Body  astro.Body
	Event astro.EventKind
}

// Point is a paran latitude.
type Point struct {
	BodyA      string
	EventA     astro.EventKind
	BodyB      string
	EventB     astro.EventKind
	LatDeg     float64
	Strength   float64 // 1 at exact coincidence, 0 at the orb
	Residual   float64 // LST difference at LatDeg, degrees
	LST        float64 // LST of event A at LatDeg, degrees
	Converged  bool
	Iterations int
}

// Strength maps an LST difference to [0, 1]: 1 at zero, falling linearly to
// 0 at ±maxOrb, clamped outside. A non-positive orb only accepts an exact hit.
func Strength(deltaDeg, maxOrb float64) float64 {
	if maxOrb <= 0 {
		if deltaDeg == 0 {
			return 1
		}
		return 0
	}
	return angle.Clamp(1-math.Abs(deltaDeg)/maxOrb, 0, 1)
}

// Delta returns the signed LST difference, in [-180, 180), between event
// A and event B at latDeg. ok is false if either event is impossible there.
func Delta(a, b Selection, latDeg, h0Deg float64) (float64, bool) {
	ea := astro.EventLSTAt(a.Body, latDeg, a.Event, h0Deg)
	if !ea.IsPossible {
		return 0, false
	}
	eb := astro.EventLSTAt(b.Body, latDeg, b.Event, h0Deg)
	if !eb.IsPossible {
		return 0, false
	}
	return angle.Diff(ea.LST, eb.LST), true
}

type sample struct {
	lat, d  float64
	defined bool
}

// findRoots scans f over the option range and returns one root per bracket,
// in increasing latitude. Where f becomes undefined between two samples the
// edge is located and a sample just inside it is added, so roots lying
// between the last regular sample and a circumpolar boundary are bracketed.
func findRoots(f angle.PartialFunc, opts Options) []angle.RootResult {
	n := int(math.Floor((opts.LatMax-opts.LatMin)/opts.SampleStep+1e-9)) + 1
	grid := make([]sample, n)
	for i := range grid {
		lat := opts.LatMin + float64(i)*opts.SampleStep
		d, ok := f(lat)
		grid[i] = sample{lat, d, ok}
	}

	var defined []sample
	for i, s := range grid {
		if i > 0 && s.defined && !grid[i-1].defined {
			if lat, d, ok := angle.Edge(f, s.lat, grid[i-1].lat, opts.Tolerance, opts.MaxIter); ok && lat != s.lat {
				defined = append(defined, sample{lat, d, true})
			}
		}
		if s.defined {
			defined = append(defined, s)
		}
		if i < n-1 && s.defined && !grid[i+1].defined {
			if lat, d, ok := angle.Edge(f, s.lat, grid[i+1].lat, opts.Tolerance, opts.MaxIter); ok && lat != s.lat {
				defined = append(defined, sample{lat, d, true})
			}
		}
	}

	var roots []angle.RootResult
	for i, s := range defined {
		if s.d == 0 {
			roots = append(roots, angle.RootResult{Root: s.lat, Found: true, Converged: true})
			continue
		}
		if i == len(defined)-1 {
			break
		}
		next := defined[i+1]
		if next.d == 0 || (s.d < 0) == (next.d < 0) {
			continue
		}
		if math.Abs(s.d) >= wrapGuard || math.Abs(next.d) >= wrapGuard {
			continue
		}
		if r := angle.BisectPartial(f, s.lat, s.d, next.lat, next.d, opts.Tolerance, opts.MaxIter); r.Found {
			roots = append(roots, r)
		}
	}
	return roots
}

// FindAllForPair returns every paran of selections a and b inside the
// search range, in increasing latitude. Two meridian events never form a
// paran since their LST difference does not depend on latitude.
func FindAllForPair(a, b Selection, opts Options) []Point {
	if a.Event.IsMeridian() && b.Event.IsMeridian() {
		return nil
	}
	opts = opts.withDefaults()

	f := func(lat float64) (float64, bool) {
		return Delta(a, b, lat, opts.HorizonAltitude)
	}

	roots := findRoots(f, opts)
	if len(roots) == 0 {
		return nil
	}

	points := make([]Point, 0, len(roots))
	for _, r := range roots {
		ea := astro.EventLSTAt(a.Body, r.Root, a.Event, opts.HorizonAltitude)
		points = append(points, Point{
			BodyA:      a.Body.Name,
			EventA:     a.Event,
			BodyB:      b.Body.Name,
			EventB:     b.Event,
			LatDeg:     r.Root,
			Strength:   Strength(r.Residual, opts.MaxOrb),
			Residual:   r.Residual,
			LST:        ea.LST,
			Converged:  r.Converged,
			Iterations: r.Iterations,
		})
	}
	return points
}

// EventPairs lists the event combinations searched for each body pair, in
// output order. Meridian/meridian combinations are excluded.
func EventPairs() [][2]astro.EventKind {
	var pairs [][2]astro.EventKind
	for _, ea := range astro.EventKinds {
		for _, eb := range astro.EventKinds {
			if ea.IsMeridian() && eb.IsMeridian() {
				continue
			}
			pairs = append(pairs, [2]astro.EventKind{ea, eb})
		}
	}
	return pairs
}

// FindAll searches every pair of distinct bodies and every event
// combination, one body pair per unit of work. Results are ordered by body
// pair (input order), then EventPairs order, then latitude.
func FindAll(ctx context.Context, bodies []astro.Body, opts Options) ([]Point, error) {
	type pair struct{ a, b int }
	var pairs []pair
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	events := EventPairs()
	perPair, err := workpool.Map(ctx, opts.Workers, len(pairs), func(k int) []Point {
		a, b := bodies[pairs[k].a], bodies[pairs[k].b]
		var pts []Point
		for _, ev := range events {
			pts = append(pts, FindAllForPair(
				Selection{Body: a, Event: ev[0]},
				Selection{Body: b, Event: ev[1]},
				opts,
			)...)
		}
		return pts
	})
	if err != nil {
		return nil, err
	}

	var points []Point
	for _, pts := range perPair {
		points = append(points, pts...)
	}
	return points, nil
}
