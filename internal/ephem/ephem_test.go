package ephem

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/litescript/ls-astromap/internal/angle"
	"github.com/litescript/ls-astromap/internal/astro"
)

const chartTOML = `
time = 2025-06-21T02:42:00Z

[[body]]
name = "Sun"
ra   = 90.0
dec  = 23.44

[[body]]
name     = "Regulus"
ra_hours = 10.0
dec      = 11.967

[weights]
Sun = 2.5
Regulus = 0.0

[grid]
lat_step  = 10.0
lon_step  = 20.0
lat_min   = -80.0
lat_max   = 80.0
paran_orb = 0.5
`

func TestParseChart(t *testing.T) {
	c, err := ParseChart([]byte(chartTOML))
	if err != nil {
		t.Fatalf("ParseChart: %v", err)
	}

	want := time.Date(2025, 6, 21, 2, 42, 0, 0, time.UTC)
	if !c.Time.Equal(want) {
		t.Errorf("Time = %v, want %v", c.Time, want)
	}

	bodies, err := c.Bodies(time.Time{})
	if err != nil {
		t.Fatalf("Bodies: %v", err)
	}
	if len(bodies) != 2 {
		t.Fatalf("got %d bodies, want 2", len(bodies))
	}
	if bodies[0].Name != "Sun" || bodies[0].Coord.RAdeg != 90 || bodies[0].Coord.DecDeg != 23.44 {
		t.Errorf("Sun = %+v", bodies[0])
	}
	if math.Abs(bodies[1].Coord.RAdeg-150) > 1e-9 {
		t.Errorf("ra_hours 10 = %v°, want 150°", bodies[1].Coord.RAdeg)
	}

	if c.Weights["Sun"] != 2.5 {
		t.Errorf("Sun weight = %v", c.Weights["Sun"])
	}
	if w, ok := c.Weights["Regulus"]; !ok || w != 0 {
		t.Errorf("Regulus weight = %v, %v; want explicit 0", w, ok)
	}

	g := c.Grid.Options().WithDefaults()
	if g.LatStep != 10 || g.LonStep != 20 || g.LatMin != -80 || g.LatMax != 80 || g.ParanOrb != 0.5 {
		t.Errorf("grid options = %+v", g)
	}
	if g.AcgOrb != 2 || g.LonMin != -180 || g.LonMax != 180 {
		t.Errorf("unset grid options not defaulted: %+v", g)
	}
}

func TestParseChart_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"bad declination", "[[body]]\nname = \"X\"\nra = 10.0\ndec = 91.0\n", astro.ErrInvalidCoordinate},
		{"missing name", "[[body]]\nra = 10.0\ndec = 1.0\n", astro.ErrInvalidCoordinate},
		{"syntax", "[[body]\nname = ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChart([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.toml")
	if err := os.WriteFile(path, []byte(chartTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadChart(path)
	if err != nil {
		t.Fatalf("LoadChart: %v", err)
	}
	if len(c.Body) != 2 {
		t.Errorf("got %d bodies", len(c.Body))
	}

	if _, err := LoadChart(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestSunAt(t *testing.T) {
	tests := []struct {
		name    string
		time    time.Time
		wantRA  float64
		wantDec float64
	}{
		{"March equinox 2025", time.Date(2025, 3, 20, 9, 1, 0, 0, time.UTC), 0, 0},
		{"June solstice 2025", time.Date(2025, 6, 21, 2, 42, 0, 0, time.UTC), 90, 23.44},
		{"December solstice 2025", time.Date(2025, 12, 21, 15, 3, 0, 0, time.UTC), 270, -23.44},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sun := SunAt(tt.time)
			if sun.Name != SunName {
				t.Errorf("Name = %q", sun.Name)
			}
			if d := math.Abs(angle.Diff(sun.Coord.RAdeg, tt.wantRA)); d > 0.05 {
				t.Errorf("RA = %.4f, want %.2f", sun.Coord.RAdeg, tt.wantRA)
			}
			if d := math.Abs(sun.Coord.DecDeg - tt.wantDec); d > 0.05 {
				t.Errorf("Dec = %.4f, want %.2f", sun.Coord.DecDeg, tt.wantDec)
			}
			if err := sun.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestStarProvider(t *testing.T) {
	all, _ := StarProvider{}.Bodies(time.Time{})
	if len(all) != len(Stars()) {
		t.Errorf("unfiltered provider returned %d of %d stars", len(all), len(Stars()))
	}

	bright, _ := StarProvider{MaxMag: 1.0}.Bodies(time.Time{})
	for _, b := range bright {
		for _, s := range Stars() {
			if s.Name == b.Name && s.Mag > 1.0 {
				t.Errorf("%s (mag %v) passed the 1.0 limit", s.Name, s.Mag)
			}
		}
	}
	if len(bright) == 0 || len(bright) >= len(all) {
		t.Errorf("magnitude filter kept %d of %d", len(bright), len(all))
	}

	named, _ := StarProvider{Names: []string{"Regulus", "Spica", "Nope"}}.Bodies(time.Time{})
	if len(named) != 2 || named[0].Name != "Spica" || named[1].Name != "Regulus" {
		t.Errorf("named selection = %v", named)
	}
}

func TestStars_Catalog(t *testing.T) {
	seen := map[string]bool{}
	prev := math.Inf(-1)
	for _, s := range Stars() {
		if seen[s.Name] {
			t.Errorf("duplicate star %s", s.Name)
		}
		seen[s.Name] = true
		if err := (astro.Body{Name: s.Name, Coord: s.Coord}).Validate(); err != nil {
			t.Errorf("%s: %v", s.Name, err)
		}
		if s.Mag < prev {
			t.Errorf("%s out of magnitude order", s.Name)
		}
		prev = s.Mag
	}
}

func TestCombined(t *testing.T) {
	chart := Static{Label: "chart", List: []astro.Body{
		{Name: "Sun", Coord: astro.Equatorial{RAdeg: 1, DecDeg: 2}},
		{Name: "Moon", Coord: astro.Equatorial{RAdeg: 3, DecDeg: 4}},
	}}
	p := Combined{chart, SolarProvider{}, StarProvider{Names: []string{"Sirius"}}}

	bodies, err := p.Bodies(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Bodies: %v", err)
	}
	if len(bodies) != 3 {
		t.Fatalf("got %d bodies, want 3: %v", len(bodies), bodies)
	}
	if bodies[0].Coord.RAdeg != 1 {
		t.Error("first provider should win for a duplicate name")
	}
	if bodies[2].Name != "Sirius" {
		t.Errorf("bodies[2] = %s, want Sirius", bodies[2].Name)
	}
	if p.Name() != "combined(chart,meeus-solar,fixed-stars)" {
		t.Errorf("Name() = %q", p.Name())
	}
}
