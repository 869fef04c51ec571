package ephem

import (
	"fmt"
	"os"
	"time"

	"github.com/naoina/toml"
	"github.com/soniakeys/unit"

	"github.com/litescript/ls-astromap/internal/angle"
	"github.com/litescript/ls-astromap/internal/astro"
	"github.com/litescript/ls-astromap/internal/grid"
)

// Chart is a mapping request read from a TOML file:
//
//	time = 2025-06-21T02:42:00Z
//
//	[[body]]
//	name = "Sun"
//	ra   = 90.0
//	dec  = 23.44
//
//	[[body]]
//	name     = "Regulus"
//	ra_hours = 10.1395
//	dec      = 11.967
//
//	[weights]
//	Sun = 2.0
//
//	[grid]
//	lat_step = 10.0
//
// Numbers must be written as floats.
type Chart struct {
	Time    time.Time          `toml:"time"`
	Body    []ChartBody        `toml:"body"`
	Weights map[string]float64 `toml:"weights"`
	Grid    ChartGrid          `toml:"grid"`
}

// ChartBody is one [[body]] entry. RA may be given in degrees (ra) or
// hours (ra_hours); ra_hours wins when both are set.
type ChartBody struct {
	Name    string  `toml:"name"`
	RA      float64 `toml:"ra"`
	RAHours float64 `toml:"ra_hours"`
	Dec     float64 `toml:"dec"`
}

// ChartGrid is the optional [grid] table. Zero fields keep the defaults.
type ChartGrid struct {
	LatStep  float64 `toml:"lat_step"`
	LonStep  float64 `toml:"lon_step"`
	LatMin   float64 `toml:"lat_min"`
	LatMax   float64 `toml:"lat_max"`
	LonMin   float64 `toml:"lon_min"`
	LonMax   float64 `toml:"lon_max"`
	AcgOrb   float64 `toml:"acg_orb"`
	ParanOrb float64 `toml:"paran_orb"`
	Sigma    float64 `toml:"sigma"`
}

// Options converts the table to grid options; zero fields stay zero so
// grid.Options.WithDefaults can fill them.
func (g ChartGrid) Options() grid.Options {
	return grid.Options{
		LatStep:  g.LatStep,
		LonStep:  g.LonStep,
		LatMin:   g.LatMin,
		LatMax:   g.LatMax,
		LonMin:   g.LonMin,
		LonMax:   g.LonMax,
		AcgOrb:   g.AcgOrb,
		ParanOrb: g.ParanOrb,
		Sigma:    g.Sigma,
	}
}

// LoadChart reads and parses a chart file.
func LoadChart(path string) (*Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chart %s: %w", path, err)
	}
	c, err := ParseChart(data)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", path, err)
	}
	return c, nil
}

// ParseChart parses chart TOML and validates every body.
func ParseChart(data []byte) (*Chart, error) {
	var c Chart
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	for _, b := range c.bodies() {
		if err := b.Validate(); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func (c *Chart) bodies() []astro.Body {
	out := make([]astro.Body, 0, len(c.Body))
	for _, b := range c.Body {
		ra := b.RA
		if b.RAHours != 0 {
			ra = angle.Normalize(unit.Angle(unit.RAFromHour(b.RAHours)).Deg())
		}
		out = append(out, astro.Body{
			Name:  b.Name,
			Coord: astro.Equatorial{RAdeg: ra, DecDeg: b.Dec},
		})
	}
	return out
}

// Name returns "chart".
func (c *Chart) Name() string { return "chart" }

// Bodies returns the chart's bodies. The chart is a snapshot, so t is
// ignored.
func (c *Chart) Bodies(time.Time) ([]astro.Body, error) {
	return c.bodies(), nil
}
