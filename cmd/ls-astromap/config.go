package main

import (
	"flag"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/litescript/ls-astromap/internal/acg"
	"github.com/litescript/ls-astromap/internal/astro"
	"github.com/litescript/ls-astromap/internal/ephem"
	"github.com/litescript/ls-astromap/internal/grid"
	"github.com/litescript/ls-astromap/internal/paran"
)

// runConfig is everything a computation needs apart from the time.
type runConfig struct {
	at        time.Time
	providers []ephem.Provider
	weights   map[string]float64
	grid      grid.Options
	apparent  bool
	horizon   float64 // h0 for rise and set, degrees
	workers   int
}

// gridFlags holds the grid overrides registered on a flag set.
type gridFlags struct {
	latStep, lonStep float64
	latMin, latMax   float64
	lonMin, lonMax   float64
	acgOrb, paranOrb float64
	sigma            float64
}

func registerGridFlags(fs *flag.FlagSet) *gridFlags {
	d := grid.DefaultOptions()
	g := &gridFlags{}
	fs.Float64Var(&g.latStep, "lat-step", d.LatStep, "Grid latitude step (degrees)")
	fs.Float64Var(&g.lonStep, "lon-step", d.LonStep, "Grid longitude step (degrees)")
	fs.Float64Var(&g.latMin, "lat-min", d.LatMin, "Southernmost grid latitude")
	fs.Float64Var(&g.latMax, "lat-max", d.LatMax, "Northernmost grid latitude")
	fs.Float64Var(&g.lonMin, "lon-min", d.LonMin, "Westernmost grid longitude")
	fs.Float64Var(&g.lonMax, "lon-max", d.LonMax, "Easternmost grid longitude")
	fs.Float64Var(&g.acgOrb, "acg-orb", d.AcgOrb, "Line proximity orb (degrees, > 0)")
	fs.Float64Var(&g.paranOrb, "paran-orb", d.ParanOrb, "Paran latitude orb (degrees, > 0)")
	fs.Float64Var(&g.sigma, "sigma", d.Sigma, "Zenith band width (degrees, > 0)")
	return g
}

// apply copies the flags that were set on the command line over o.
func (g *gridFlags) apply(o grid.Options, set map[string]bool) grid.Options {
	overrides := []struct {
		name string
		dst  *float64
		val  float64
	}{
		{"lat-step", &o.LatStep, g.latStep},
		{"lon-step", &o.LonStep, g.lonStep},
		{"lat-min", &o.LatMin, g.latMin},
		{"lat-max", &o.LatMax, g.latMax},
		{"lon-min", &o.LonMin, g.lonMin},
		{"lon-max", &o.LonMax, g.lonMax},
		{"acg-orb", &o.AcgOrb, g.acgOrb},
		{"paran-orb", &o.ParanOrb, g.paranOrb},
		{"sigma", &o.Sigma, g.sigma},
	}
	for _, ov := range overrides {
		if set[ov.name] {
			*ov.dst = ov.val
		}
	}
	return o
}

func (g *gridFlags) value(name string) float64 {
	switch name {
	case "acg-orb":
		return g.acgOrb
	case "paran-orb":
		return g.paranOrb
	case "sigma":
		return g.sigma
	}
	return math.NaN()
}

// flagsSet returns the names of the flags given on the command line.
func flagsSet(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// buildConfig loads the chart, if any, and layers the command line over
// it. Chart grid values fill in under the flags; anything still unset takes
// the grid defaults.
func buildConfig(chartPath, timeStr string, gf *gridFlags, set map[string]bool) (*runConfig, error) {
	cfg := &runConfig{at: time.Now().UTC()}

	var chartGrid grid.Options
	if chartPath != "" {
		chart, err := ephem.LoadChart(chartPath)
		if err != nil {
			return nil, err
		}
		cfg.providers = append(cfg.providers, chart)
		cfg.weights = chart.Weights
		chartGrid = chart.Grid.Options()
		if !chart.Time.IsZero() {
			cfg.at = chart.Time.UTC()
		}
	}

	if timeStr != "" {
		t, err := time.Parse(time.RFC3339, timeStr)
		if err != nil {
			return nil, fmt.Errorf("-time: %w", err)
		}
		cfg.at = t.UTC()
	}

	// The engine treats a zero orb or sigma as unset, so an explicit 0
	// would silently become the default.
	for _, name := range []string{"acg-orb", "paran-orb", "sigma"} {
		if set[name] && gf.value(name) == 0 {
			return nil, fmt.Errorf("-%s must be positive; leave it out for the default", name)
		}
	}
	cfg.grid = gf.apply(chartGrid.WithDefaults(), set)
	if err := cfg.grid.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseLatLon parses "lat,lon" in decimal degrees.
func parseLatLon(s string) (astro.GeoLocation, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return astro.GeoLocation{}, fmt.Errorf("want lat,lon, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return astro.GeoLocation{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return astro.GeoLocation{}, fmt.Errorf("longitude: %w", err)
	}
	if lat < -90 || lat > 90 {
		return astro.GeoLocation{}, fmt.Errorf("latitude %v out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return astro.GeoLocation{}, fmt.Errorf("longitude %v out of range", lon)
	}
	return astro.GeoLocation{LatDeg: lat, LonDeg: lon}, nil
}

// parseHorizon maps a horizon name to its altitude in degrees. A plain
// number is taken as the altitude itself.
func parseHorizon(s string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "geometric":
		return 0, nil
	case "stellar":
		return astro.StellarHorizon, nil
	case "solar":
		return astro.SolarHorizon, nil
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("want geometric, stellar, solar or degrees, got %q", s)
	}
	if h < -5 || h > 5 {
		return 0, fmt.Errorf("horizon altitude %v outside [-5, 5]", h)
	}
	return h, nil
}

// lineOptions and paranOptions carry the horizon into the engine stages.
func (c *runConfig) lineOptions() acg.Options {
	opts := acg.DefaultOptions()
	opts.HorizonAltitude = c.horizon
	return opts
}

func (c *runConfig) paranOptions() paran.Options {
	opts := paran.DefaultOptions()
	opts.HorizonAltitude = c.horizon
	return opts
}
