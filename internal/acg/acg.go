// Package acg builds astro-cartography lines: for one time snapshot, the
// places on Earth where a body culminates, anti-culminates, rises or sets.
package acg

import (
	"context"
	"math"
	"sort"

	"github.com/litescript/ls-astromap/internal/angle"
	"github.com/litescript/ls-astromap/internal/astro"
	"github.com/litescript/ls-astromap/internal/sidereal"
	"github.com/litescript/ls-astromap/internal/workpool"
)

// Kinds lists the line kinds in output order.
var Kinds = []astro.EventKind{astro.Culminate, astro.AntiCulminate, astro.Rise, astro.Set}

// Options controls line sampling.
type Options struct {
	LatStep         float64 // degrees between samples
	LatLimit        float64 // lines are sampled over [-LatLimit, +LatLimit]
	PoleBuffer      float64 // rise/set domains stop this far short of the critical latitude
	HorizonAltitude float64 // h0 for rise/set; 0 is the geometric horizon
	Workers         int     // BuildAll concurrency; 0 uses all CPUs
}

// DefaultOptions returns 0.5° sampling over ±89.5° with a 0.5° buffer.
func DefaultOptions() Options {
	return Options{
		LatStep:    0.5,
		LatLimit:   89.5,
		PoleBuffer: 0.5,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.LatStep <= 0 {
		o.LatStep = d.LatStep
	}
	if o.LatLimit <= 0 || o.LatLimit > 90 {
		o.LatLimit = d.LatLimit
	}
	if o.PoleBuffer <= 0 {
		o.PoleBuffer = d.PoleBuffer
	}
	return o
}

// Line is one ACG line. Points are ordered by increasing latitude.
type Line struct {
	Body          string
	Kind          astro.EventKind
	Points        []astro.GeoLocation
	IsCircumpolar bool // domain is narrower than the full sampling range
}

// IsVertical reports whether the line has constant longitude.
func (l Line) IsVertical() bool {
	return l.Kind.IsMeridian()
}

// LatRange returns the latitudes of the first and last point. ok is false
// for an empty line.
func (l Line) LatRange() (lo, hi float64, ok bool) {
	if len(l.Points) == 0 {
		return 0, 0, false
	}
	return l.Points[0].LatDeg, l.Points[len(l.Points)-1].LatDeg, true
}

// LongitudeAt returns the line's longitude at latDeg, interpolated through
// the three nearest samples. ok is false outside the sampled range.
func (l Line) LongitudeAt(latDeg float64) (float64, bool) {
	lo, hi, ok := l.LatRange()
	if !ok || latDeg < lo || latDeg > hi {
		return 0, false
	}
	if l.IsVertical() || len(l.Points) == 1 {
		return l.Points[0].LonDeg, true
	}

	i := sort.Search(len(l.Points), func(i int) bool { return l.Points[i].LatDeg >= latDeg })
	if i < len(l.Points) && l.Points[i].LatDeg == latDeg {
		return l.Points[i].LonDeg, true
	}

	// Points[i-1] and Points[i] bracket latDeg; add the nearer outer sample.
	start, end := i-1, i+1
	switch {
	case len(l.Points) < 3:
	case start == 0:
		end++
	case end == len(l.Points):
		start--
	case latDeg-l.Points[start-1].LatDeg < l.Points[end].LatDeg-latDeg:
		start--
	default:
		end++
	}

	xs := make([]float64, 0, 3)
	lons := make([]float64, 0, 3)
	for _, p := range l.Points[start:end] {
		xs = append(xs, p.LatDeg)
		lons = append(lons, p.LonDeg)
	}
	ys := angle.Unwrap(lons)
	return angle.NormalizeSymmetric(angle.Lagrange(xs, ys, latDeg)), true
}

// Distance returns the smallest planar distance in degrees from loc to any
// point of the line, with the longitude difference wrapped across the
// antimeridian. An empty line is infinitely far away.
func (l Line) Distance(loc astro.GeoLocation) float64 {
	best := math.Inf(1)
	for _, p := range l.Points {
		dLat := loc.LatDeg - p.LatDeg
		dLon := angle.Diff(loc.LonDeg, p.LonDeg)
		if d := math.Hypot(dLat, dLon); d < best {
			best = d
		}
	}
	return best
}

// sampleLatitudes returns lo, lo+step, ... up to hi inclusive.
func sampleLatitudes(lo, hi, step float64) []float64 {
	if lo > hi {
		return nil
	}
	n := int(math.Floor((hi-lo)/step+1e-9)) + 1
	lats := make([]float64, n)
	for i := range lats {
		lats[i] = lo + float64(i)*step
	}
	return lats
}

// CulminationLine returns the vertical MC (Culminate) or IC (AntiCulminate)
// line of body. Any other kind yields an empty line.
func CulminationLine(body astro.Body, epoch sidereal.Epoch, kind astro.EventKind, opts Options) Line {
	opts = opts.withDefaults()
	line := Line{Body: body.Name, Kind: kind}

	var ha float64
	switch kind {
	case astro.Culminate:
		ha = 0
	case astro.AntiCulminate:
		ha = 180
	default:
		return line
	}

	lon := epoch.LongitudeFor(ha, body.Coord.RAdeg)
	lats := sampleLatitudes(-opts.LatLimit, opts.LatLimit, opts.LatStep)
	line.Points = make([]astro.GeoLocation, len(lats))
	for i, lat := range lats {
		line.Points[i] = astro.GeoLocation{LatDeg: lat, LonDeg: lon}
	}
	return line
}

// RiseSetDomain returns the latitude range over which rise/set lines of a
// body with declination decDeg are sampled: up to the critical latitude
// minus the buffer on the same-sign side, the full range on the other.
func RiseSetDomain(decDeg float64, opts Options) (lo, hi float64) {
	opts = opts.withDefaults()
	lo, hi = -opts.LatLimit, opts.LatLimit
	edge := astro.CriticalLatitude(decDeg) - opts.PoleBuffer
	switch {
	case decDeg > 0:
		hi = math.Min(hi, edge)
	case decDeg < 0:
		lo = math.Max(lo, -edge)
	}
	return lo, hi
}

// RiseSetLine returns the Rise or Set curve of body. Latitudes where the
// event is impossible are skipped, so the line may be short or empty.
func RiseSetLine(body astro.Body, epoch sidereal.Epoch, kind astro.EventKind, opts Options) Line {
	opts = opts.withDefaults()
	line := Line{Body: body.Name, Kind: kind}
	if kind != astro.Rise && kind != astro.Set {
		return line
	}

	lo, hi := RiseSetDomain(body.Coord.DecDeg, opts)
	line.IsCircumpolar = lo > -opts.LatLimit || hi < opts.LatLimit

	for _, lat := range sampleLatitudes(lo, hi, opts.LatStep) {
		sda := astro.SemiDiurnalArcAt(lat, body.Coord.DecDeg, opts.HorizonAltitude)
		if !sda.RisesAndSets() {
			continue
		}
		ha := sda.RiseHourAngle
		if kind == astro.Set {
			ha = sda.SetHourAngle
		}
		line.Points = append(line.Points, astro.GeoLocation{
			LatDeg: lat,
			LonDeg: epoch.LongitudeFor(ha, body.Coord.RAdeg),
		})
	}
	return line
}

// LinesForBody returns the four lines of body in Kinds order.
func LinesForBody(body astro.Body, epoch sidereal.Epoch, opts Options) []Line {
	lines := make([]Line, 0, len(Kinds))
	for _, kind := range Kinds {
		if kind.IsMeridian() {
			lines = append(lines, CulminationLine(body, epoch, kind, opts))
		} else {
			lines = append(lines, RiseSetLine(body, epoch, kind, opts))
		}
	}
	return lines
}

// BuildAll computes the lines of every body concurrently, one body per unit
// of work. The result is ordered by body (input order) then Kinds.
func BuildAll(ctx context.Context, bodies []astro.Body, epoch sidereal.Epoch, opts Options) ([]Line, error) {
	perBody, err := workpool.Map(ctx, opts.Workers, len(bodies), func(i int) []Line {
		return LinesForBody(bodies[i], epoch, opts)
	})
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(bodies)*len(Kinds))
	for _, ls := range perBody {
		lines = append(lines, ls...)
	}
	return lines, nil
}
