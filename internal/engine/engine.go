// Package engine runs the full mapping pipeline for one time snapshot:
// lines, zenith bands, parans and the scoring grid.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/litescript/ls-astromap/internal/acg"
	"github.com/litescript/ls-astromap/internal/astro"
	"github.com/litescript/ls-astromap/internal/grid"
	"github.com/litescript/ls-astromap/internal/logging"
	"github.com/litescript/ls-astromap/internal/paran"
	"github.com/litescript/ls-astromap/internal/sidereal"
	"github.com/litescript/ls-astromap/internal/zenith"
)

// DefaultWeight applies to bodies without an explicit weight.
const DefaultWeight = 1.0

var (
	// ErrNoBodies is returned when an input has nothing to map.
	ErrNoBodies = errors.New("no bodies")

	// ErrInvalidWeight is wrapped when a weight is negative, NaN or infinite.
	ErrInvalidWeight = errors.New("invalid weight")

	// ErrDuplicateBody is wrapped when two bodies share a name.
	ErrDuplicateBody = errors.New("duplicate body")
)

// Input is one mapping request.
type Input struct {
	Time     time.Time
	Bodies   []astro.Body
	Weights  map[string]float64 // by body name; missing names get DefaultWeight
	Apparent bool               // use apparent instead of mean sidereal time
	Grid     grid.Options
	Lines    acg.Options
	Parans   paran.Options
	Workers  int // default for every stage that leaves Workers at 0
}

// Validate checks the input at the boundary so the numeric core can assume
// well-formed data. Every problem found is reported.
func (in Input) Validate() error {
	if len(in.Bodies) == 0 {
		return ErrNoBodies
	}

	var errs []error
	seen := make(map[string]bool, len(in.Bodies))
	for _, b := range in.Bodies {
		if err := b.Validate(); err != nil {
			errs = append(errs, err)
		}
		if seen[b.Name] {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateBody, b.Name))
		}
		seen[b.Name] = true
	}

	names := make([]string, 0, len(in.Weights))
	for name := range in.Weights {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w := in.Weights[name]
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			errs = append(errs, fmt.Errorf("%w: %q has weight %v", ErrInvalidWeight, name, w))
		}
	}

	if err := in.Grid.WithDefaults().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ResolvedWeights returns a weight for every body, filling in DefaultWeight.
func (in Input) ResolvedWeights() map[string]float64 {
	w := make(map[string]float64, len(in.Bodies))
	for _, b := range in.Bodies {
		if v, ok := in.Weights[b.Name]; ok {
			w[b.Name] = v
		} else {
			w[b.Name] = DefaultWeight
		}
	}
	return w
}

// Result is everything computed for one snapshot.
type Result struct {
	Time        time.Time
	GST         float64 // degrees
	Apparent    bool
	Bodies      []astro.Body
	Weights     map[string]float64
	Lines       []acg.Line
	ZenithLines []zenith.Line
	Parans      []paran.Point
	Grid        []grid.Cell
	GridOptions grid.Options
	Elapsed     time.Duration
}

// Compute validates in and runs every stage. Stages check ctx between their
// units of work; a cancelled run returns ctx.Err().
func Compute(ctx context.Context, in Input, logger *logging.Logger) (*Result, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	start := time.Now()
	epoch := sidereal.NewEpoch(in.Time, in.Apparent)
	weights := in.ResolvedWeights()
	log := logger.With("time", epoch.Time.Format(time.RFC3339))

	lineOpts := in.Lines
	if lineOpts.Workers == 0 {
		lineOpts.Workers = in.Workers
	}
	paranOpts := in.Parans
	if paranOpts.Workers == 0 {
		paranOpts.Workers = in.Workers
	}
	gridOpts := in.Grid.WithDefaults()
	if gridOpts.Workers == 0 {
		gridOpts.Workers = in.Workers
	}

	log.Debug("gst %.6f° (apparent=%v), %d bodies", epoch.GST, in.Apparent, len(in.Bodies))

	lines, err := acg.BuildAll(ctx, in.Bodies, epoch, lineOpts)
	if err != nil {
		return nil, fmt.Errorf("build lines: %w", err)
	}
	log.With("phase", "lines").Debug("%d lines", len(lines))

	parans, err := paran.FindAll(ctx, in.Bodies, paranOpts)
	if err != nil {
		return nil, fmt.Errorf("find parans: %w", err)
	}
	unconverged := 0
	for _, p := range parans {
		if !p.Converged {
			unconverged++
		}
	}
	if unconverged > 0 {
		log.With("phase", "parans").Warn("%d of %d parans did not converge", unconverged, len(parans))
	}
	log.With("phase", "parans").Debug("%d parans", len(parans))

	cells, err := grid.Compute(ctx, grid.Inputs{
		Bodies:  in.Bodies,
		Weights: weights,
		Lines:   lines,
		Parans:  parans,
	}, gridOpts)
	if err != nil {
		return nil, fmt.Errorf("score grid: %w", err)
	}

	res := &Result{
		Time:        epoch.Time,
		GST:         epoch.GST,
		Apparent:    in.Apparent,
		Bodies:      in.Bodies,
		Weights:     weights,
		Lines:       lines,
		ZenithLines: zenith.Lines(in.Bodies, weights, epoch),
		Parans:      parans,
		Grid:        cells,
		GridOptions: gridOpts,
		Elapsed:     time.Since(start),
	}
	log.Info("mapped %d bodies: %d lines, %d parans, %d cells in %v",
		len(in.Bodies), len(lines), len(parans), len(cells), res.Elapsed.Round(time.Millisecond))
	return res, nil
}

// Epoch returns the sidereal epoch the result was computed at.
func (r *Result) Epoch() sidereal.Epoch {
	return sidereal.NewEpoch(r.Time, r.Apparent)
}

// Dims returns the number of grid rows (latitudes) and columns (longitudes).
func (r *Result) Dims() (rows, cols int) {
	return len(r.GridOptions.Latitudes()), len(r.GridOptions.Longitudes())
}

// CellAt returns the cell at a row and column, counted from the south-west
// corner.
func (r *Result) CellAt(row, col int) (grid.Cell, bool) {
	rows, cols := r.Dims()
	if row < 0 || row >= rows || col < 0 || col >= cols {
		return grid.Cell{}, false
	}
	i := row*cols + col
	if i >= len(r.Grid) {
		return grid.Cell{}, false
	}
	return r.Grid[i], true
}

// MaxScore returns the highest cell score, or 0 for an empty grid.
func (r *Result) MaxScore() float64 {
	var m float64
	for _, c := range r.Grid {
		m = math.Max(m, c.Score)
	}
	return m
}

// TopCells returns up to n cells ordered by decreasing score; ties keep grid
// order.
func (r *Result) TopCells(n int) []grid.Cell {
	cells := make([]grid.Cell, len(r.Grid))
	copy(cells, r.Grid)
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].Score > cells[j].Score })
	if n >= 0 && n < len(cells) {
		cells = cells[:n]
	}
	return cells
}

// LinesFor returns the lines of one body.
func (r *Result) LinesFor(body string) []acg.Line {
	var out []acg.Line
	for _, l := range r.Lines {
		if l.Body == body {
			out = append(out, l)
		}
	}
	return out
}
