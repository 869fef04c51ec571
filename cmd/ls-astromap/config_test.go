package main

import (
	"context"
	"errors"
	"flag"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/litescript/ls-astromap/internal/angle"
	"github.com/litescript/ls-astromap/internal/astro"
	"github.com/litescript/ls-astromap/internal/ephem"
	"github.com/litescript/ls-astromap/internal/grid"
	"github.com/litescript/ls-astromap/internal/logging"
)

const testChart = `
time = 2025-06-21T02:42:00Z

[[body]]
name = "Moon"
ra   = 215.3
dec  = -14.2

[weights]
Moon = 2.0

[grid]
lat_step = 10.0
lat_min  = -60.0
lat_max  = 60.0
`

func writeChart(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chart.toml")
	if err := os.WriteFile(path, []byte(testChart), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func parseFlags(t *testing.T, args ...string) (*gridFlags, map[string]bool) {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	gf := registerGridFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}
	return gf, flagsSet(fs)
}

func TestBuildConfig_ChartAndFlags(t *testing.T) {
	gf, set := parseFlags(t, "-lat-max", "70", "-sigma", "5")
	cfg, err := buildConfig(writeChart(t), "", gf, set)
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}

	if want := time.Date(2025, 6, 21, 2, 42, 0, 0, time.UTC); !cfg.at.Equal(want) {
		t.Errorf("at = %v, want chart time %v", cfg.at, want)
	}
	if cfg.weights["Moon"] != 2 {
		t.Errorf("weights = %v, want Moon=2", cfg.weights)
	}
	if len(cfg.providers) != 1 {
		t.Fatalf("providers = %d, want 1", len(cfg.providers))
	}

	d := grid.DefaultOptions()
	tests := []struct {
		name      string
		got, want float64
	}{
		{"LatStep from chart", cfg.grid.LatStep, 10},
		{"LatMin from chart", cfg.grid.LatMin, -60},
		{"LatMax from flag", cfg.grid.LatMax, 70},
		{"Sigma from flag", cfg.grid.Sigma, 5},
		{"LonStep default", cfg.grid.LonStep, d.LonStep},
		{"AcgOrb default", cfg.grid.AcgOrb, d.AcgOrb},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestBuildConfig_TimeFlag(t *testing.T) {
	gf, set := parseFlags(t)
	cfg, err := buildConfig(writeChart(t), "2025-12-21T12:00:00+02:00", gf, set)
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if want := time.Date(2025, 12, 21, 10, 0, 0, 0, time.UTC); !cfg.at.Equal(want) || cfg.at.Location() != time.UTC {
		t.Errorf("at = %v, want %v", cfg.at, want)
	}

	if _, err := buildConfig("", "yesterday", gf, set); err == nil {
		t.Error("bad -time should fail")
	}
}

func TestBuildConfig_Errors(t *testing.T) {
	gf, set := parseFlags(t, "-lat-min", "50", "-lat-max", "10")
	if _, err := buildConfig("", "", gf, set); !errors.Is(err, grid.ErrInvalidOptions) {
		t.Errorf("inverted latitude range: err = %v, want ErrInvalidOptions", err)
	}

	for _, name := range []string{"acg-orb", "paran-orb", "sigma"} {
		gf, set = parseFlags(t, "-"+name, "0")
		if _, err := buildConfig("", "", gf, set); err == nil {
			t.Errorf("-%s 0 should be rejected", name)
		}
	}

	gf, set = parseFlags(t)
	if _, err := buildConfig(filepath.Join(t.TempDir(), "missing.toml"), "", gf, set); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing chart: err = %v, want ErrNotExist", err)
	}
}

func TestParseLatLon(t *testing.T) {
	tests := []struct {
		in       string
		lat, lon float64
		wantErr  bool
	}{
		{"40.7,-74.0", 40.7, -74, false},
		{" -33.9 , 151.2 ", -33.9, 151.2, false},
		{"40.7", 0, 0, true},
		{"north,east", 0, 0, true},
		{"91,0", 0, 0, true},
		{"0,181", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			loc, err := parseLatLon(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLatLon(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && (loc.LatDeg != tt.lat || loc.LonDeg != tt.lon) {
				t.Errorf("parseLatLon(%q) = %+v, want %v,%v", tt.in, loc, tt.lat, tt.lon)
			}
		})
	}
}

func TestComputeFunc(t *testing.T) {
	gf, set := parseFlags(t, "-lat-step", "20", "-lon-step", "30")
	cfg, err := buildConfig(writeChart(t), "", gf, set)
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	cfg.providers = append(cfg.providers, ephem.SolarProvider{})

	compute := newComputeFunc(cfg, logging.Discard())
	res, err := compute(context.Background(), cfg.at)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(res.Bodies) != 2 {
		t.Errorf("bodies = %d, want Moon and Sun", len(res.Bodies))
	}
	if res.Weights["Moon"] != 2 || res.Weights[ephem.SunName] != 1 {
		t.Errorf("weights = %v", res.Weights)
	}
	if rows, cols := res.Dims(); rows != 7 || cols != 13 {
		t.Errorf("Dims() = %d, %d, want 7, 13", rows, cols)
	}
}

func TestParseHorizon(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"geometric", 0, false},
		{"", 0, false},
		{"Stellar", astro.StellarHorizon, false},
		{"solar", astro.SolarHorizon, false},
		{" -0.5 ", -0.5, false},
		{"civil", 0, true},
		{"-12", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseHorizon(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseHorizon(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseHorizon(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestComputeFunc_Horizon(t *testing.T) {
	riseAtEquator := func(horizon float64) float64 {
		t.Helper()
		gf, set := parseFlags(t, "-lat-step", "20", "-lon-step", "30")
		cfg, err := buildConfig(writeChart(t), "", gf, set)
		if err != nil {
			t.Fatalf("buildConfig: %v", err)
		}
		cfg.horizon = horizon
		if got := cfg.paranOptions().HorizonAltitude; got != horizon {
			t.Errorf("paran horizon = %v, want %v", got, horizon)
		}

		res, err := newComputeFunc(cfg, logging.Discard())(context.Background(), cfg.at)
		if err != nil {
			t.Fatalf("compute: %v", err)
		}
		for _, l := range res.LinesFor("Moon") {
			if l.Kind == astro.Rise {
				lon, ok := l.LongitudeAt(0)
				if !ok {
					t.Fatal("Moon rise line misses the equator")
				}
				return lon
			}
		}
		t.Fatal("no Moon rise line")
		return 0
	}

	geometric := riseAtEquator(0)
	solar := riseAtEquator(astro.SolarHorizon)
	// A lower horizon makes the body rise earlier, moving the rise line.
	if d := math.Abs(angle.Diff(geometric, solar)); d < 0.5 || d > 2 {
		t.Errorf("rise line moved %v° for the solar horizon, want about 0.8°", d)
	}
}
