// Package zenith scores latitudes by how close each body passes to the
// zenith there, and derives the zenith lines themselves.
package zenith

import (
	"sort"

	"github.com/litescript/ls-astromap/internal/angle"
	"github.com/litescript/ls-astromap/internal/astro"
	"github.com/litescript/ls-astromap/internal/sidereal"
)

// DefaultSigma is the width of the Gaussian band in degrees of latitude.
const DefaultSigma = 3.0

// Contribution is one body's share of a zenith score.
type Contribution struct {
	Body     string
	DecDeg   float64
	Weight   float64
	Distance float64 // latitude - declination, degrees
	Value    float64 // Weight * gaussian(Distance)
}

// Score returns the weighted Gaussian band score of latDeg,
//
//	score = Σ weight·exp(-(lat-dec)² / 2σ²)
//
// and the per-body contributions sorted by decreasing value (ties by body
// name). Bodies with zero or missing weight are skipped entirely. A
// non-positive sigma falls back to DefaultSigma.
func Score(latDeg float64, bodies []astro.Body, weights map[string]float64, sigma float64) (float64, []Contribution) {
	if sigma <= 0 {
		sigma = DefaultSigma
	}

	var total float64
	contribs := make([]Contribution, 0, len(bodies))
	for _, b := range bodies {
		w := weights[b.Name]
		if w == 0 {
			continue
		}
		dist := latDeg - b.Coord.DecDeg
		v := w * angle.Gaussian(dist, 0, sigma)
		total += v
		contribs = append(contribs, Contribution{
			Body:     b.Name,
			DecDeg:   b.Coord.DecDeg,
			Weight:   w,
			Distance: dist,
			Value:    v,
		})
	}

	sort.SliceStable(contribs, func(i, j int) bool {
		if contribs[i].Value != contribs[j].Value {
			return contribs[i].Value > contribs[j].Value
		}
		return contribs[i].Body < contribs[j].Body
	})
	return total, contribs
}

// Line is a body's zenith band: the parallel of latitude equal to its
// declination, plus the one point where it is overhead at the snapshot.
type Line struct {
	Body   string
	LatDeg float64
	Weight float64
	Point  astro.GeoLocation // sub-body point
}

// Lines returns the zenith line of every body with non-zero weight, in
// input order.
func Lines(bodies []astro.Body, weights map[string]float64, epoch sidereal.Epoch) []Line {
	lines := make([]Line, 0, len(bodies))
	for _, b := range bodies {
		w := weights[b.Name]
		if w == 0 {
			continue
		}
		lines = append(lines, Line{
			Body:   b.Name,
			LatDeg: b.Coord.DecDeg,
			Weight: w,
			Point: astro.GeoLocation{
				LatDeg: b.Coord.DecDeg,
				LonDeg: epoch.LongitudeFor(0, b.Coord.RAdeg),
			},
		})
	}
	return lines
}
