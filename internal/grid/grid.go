// Package grid aggregates zenith bands, ACG lines and parans into a regular
// latitude/longitude scoring surface.
package grid

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/litescript/ls-astromap/internal/acg"
	"github.com/litescript/ls-astromap/internal/astro"
	"github.com/litescript/ls-astromap/internal/paran"
	"github.com/litescript/ls-astromap/internal/workpool"
	"github.com/litescript/ls-astromap/internal/zenith"
)

// ErrInvalidOptions is wrapped by every Options validation failure.
var ErrInvalidOptions = errors.New("invalid grid options")

// Options describes the grid and the orbs of its proximity signals.
// Latitude and longitude ranges are inclusive at both ends.
type Options struct {
	LatStep  float64
	LonStep  float64
	LatMin   float64
	LatMax   float64
	LonMin   float64
	LonMax   float64
	AcgOrb   float64 // degrees
	ParanOrb float64 // degrees of latitude
	Sigma    float64 // zenith band width
	Workers  int     // 0 uses all CPUs
}

// DefaultOptions returns a 5°×10° grid over ±85° latitude and the full
// longitude range, with a 2° line orb, a 1° paran orb and σ = 3°.
func DefaultOptions() Options {
	return Options{
		LatStep:  5,
		LonStep:  10,
		LatMin:   -85,
		LatMax:   85,
		LonMin:   -180,
		LonMax:   180,
		AcgOrb:   2,
		ParanOrb: 1,
		Sigma:    zenith.DefaultSigma,
	}
}

// WithDefaults replaces unset fields with their defaults. A field is unset
// when it is zero, so a zero orb or sigma cannot be requested; a range is
// unset when both of its bounds are zero.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.LatStep == 0 {
		o.LatStep = d.LatStep
	}
	if o.LonStep == 0 {
		o.LonStep = d.LonStep
	}
	if o.LatMin == 0 && o.LatMax == 0 {
		o.LatMin, o.LatMax = d.LatMin, d.LatMax
	}
	if o.LonMin == 0 && o.LonMax == 0 {
		o.LonMin, o.LonMax = d.LonMin, d.LonMax
	}
	if o.AcgOrb == 0 {
		o.AcgOrb = d.AcgOrb
	}
	if o.ParanOrb == 0 {
		o.ParanOrb = d.ParanOrb
	}
	if o.Sigma == 0 {
		o.Sigma = d.Sigma
	}
	return o
}

// Validate reports every problem with the options.
func (o Options) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidOptions}, args...)...))
	}

	for _, f := range []struct {
		name string
		v    float64
	}{
		{"lat step", o.LatStep}, {"lon step", o.LonStep},
		{"lat min", o.LatMin}, {"lat max", o.LatMax},
		{"lon min", o.LonMin}, {"lon max", o.LonMax},
		{"acg orb", o.AcgOrb}, {"paran orb", o.ParanOrb}, {"sigma", o.Sigma},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			bad("%s is not finite", f.name)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if o.LatStep <= 0 {
		bad("lat step %v must be positive", o.LatStep)
	}
	if o.LonStep <= 0 {
		bad("lon step %v must be positive", o.LonStep)
	}
	if o.LatMin < -90 || o.LatMax > 90 || o.LatMin > o.LatMax {
		bad("latitude range [%v, %v] not within [-90, 90]", o.LatMin, o.LatMax)
	}
	if o.LonMin < -180 || o.LonMax > 180 || o.LonMin > o.LonMax {
		bad("longitude range [%v, %v] not within [-180, 180]", o.LonMin, o.LonMax)
	}
	if o.AcgOrb < 0 {
		bad("acg orb %v is negative", o.AcgOrb)
	}
	if o.ParanOrb < 0 {
		bad("paran orb %v is negative", o.ParanOrb)
	}
	if o.Sigma < 0 {
		bad("sigma %v is negative", o.Sigma)
	}
	return errors.Join(errs...)
}

// Latitudes returns the row latitudes, LatMin first.
func (o Options) Latitudes() []float64 {
	return steps(o.LatMin, o.LatMax, o.LatStep)
}

// Longitudes returns the column longitudes, LonMin first.
func (o Options) Longitudes() []float64 {
	return steps(o.LonMin, o.LonMax, o.LonStep)
}

func steps(lo, hi, step float64) []float64 {
	if step <= 0 || lo > hi {
		return nil
	}
	n := int(math.Floor((hi-lo)/step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Factor names the signal that dominates a cell.
type Factor int

const (
	FactorZenith Factor = iota
	FactorAcg
	FactorParan
	FactorMixed // two or more signals tie at the maximum, including all zero
)

// String returns the factor name.
func (f Factor) String() string {
	switch f {
	case FactorZenith:
		return "zenith"
	case FactorAcg:
		return "acg"
	case FactorParan:
		return "paran"
	case FactorMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the factor by name.
func (f Factor) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Cell is one scored grid point. Score is the exact sum of the three
// component contributions.
type Cell struct {
	LatDeg       float64
	LonDeg       float64
	Score        float64
	Zenith       float64
	Acg          float64
	Paran        float64
	Dominant     Factor
	DominantBody string // empty for FactorMixed or when nothing contributes
}

// Inputs are the per-snapshot collections the grid scores against.
type Inputs struct {
	Bodies  []astro.Body
	Weights map[string]float64
	Lines   []acg.Line
	Parans  []paran.Point
}

// Compute scores every cell of the grid, one cell per unit of work. Cells
// are ordered by latitude, then longitude.
func Compute(ctx context.Context, in Inputs, opts Options) ([]Cell, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	lats, lons := opts.Latitudes(), opts.Longitudes()
	cols := len(lons)
	return workpool.Map(ctx, opts.Workers, len(lats)*cols, func(i int) Cell {
		return ScoreCell(astro.GeoLocation{LatDeg: lats[i/cols], LonDeg: lons[i%cols]}, in, opts)
	})
}

// ScoreCell computes the three signals at loc and classifies the result.
func ScoreCell(loc astro.GeoLocation, in Inputs, opts Options) Cell {
	cell := Cell{LatDeg: loc.LatDeg, LonDeg: loc.LonDeg}

	var zBody string
	var contribs []zenith.Contribution
	cell.Zenith, contribs = zenith.Score(loc.LatDeg, in.Bodies, in.Weights, opts.Sigma)
	if len(contribs) > 0 {
		zBody = contribs[0].Body
	}

	var aBody, pBody string
	cell.Acg, aBody = acgScore(loc, in, opts.AcgOrb)
	cell.Paran, pBody = paranScore(loc.LatDeg, in, opts.ParanOrb)

	cell.Score = cell.Zenith + cell.Acg + cell.Paran
	cell.Dominant = classify(cell.Zenith, cell.Acg, cell.Paran)

	switch cell.Dominant {
	case FactorZenith:
		cell.DominantBody = zBody
	case FactorAcg:
		cell.DominantBody = aBody
	case FactorParan:
		cell.DominantBody = pBody
	}
	return cell
}

// classify picks the single largest signal, or FactorMixed when the
// maximum is shared.
func classify(z, a, p float64) Factor {
	m := math.Max(z, math.Max(a, p))
	ties := 0
	factor := FactorMixed
	for f, v := range [...]float64{FactorZenith: z, FactorAcg: a, FactorParan: p} {
		if v == m {
			ties++
			factor = Factor(f)
		}
	}
	if ties > 1 {
		return FactorMixed
	}
	return factor
}

// falloff is the linear proximity weight: 1 on the target, 0 at the orb.
func falloff(d, orb float64) float64 {
	if orb <= 0 {
		if d == 0 {
			return 1
		}
		return 0
	}
	if d > orb {
		return 0
	}
	return 1 - d/orb
}

// acgScore returns the strongest weighted line proximity within orb and the
// body of that line.
func acgScore(loc astro.GeoLocation, in Inputs, orb float64) (float64, string) {
	var best float64
	var body string
	for _, l := range in.Lines {
		w := in.Weights[l.Body]
		if w == 0 {
			continue
		}
		d := l.Distance(loc)
		if d > orb {
			continue
		}
		if v := w * falloff(d, orb); v > best {
			best, body = v, l.Body
		}
	}
	return best, body
}

// paranScore scores the nearest paran within orb by latitude, weighted by
// the mean weight of its bodies and its strength, and returns the heavier
// of its bodies. Equally near parans are settled by the higher score.
func paranScore(latDeg float64, in Inputs, orb float64) (float64, string) {
	var best float64
	var body string
	nearest := math.Inf(1)
	for _, p := range in.Parans {
		d := math.Abs(latDeg - p.LatDeg)
		if d > orb || d > nearest {
			continue
		}
		wa, wb := in.Weights[p.BodyA], in.Weights[p.BodyB]
		v := (wa + wb) / 2 * p.Strength * falloff(d, orb)
		if d == nearest && v <= best {
			continue
		}
		nearest, best = d, v
		body = p.BodyA
		if wb > wa {
			body = p.BodyB
		}
	}
	return best, body
}
