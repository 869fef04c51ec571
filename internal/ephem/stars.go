package ephem

import (
	"time"

	"github.com/litescript/ls-astromap/internal/astro"
)

// Star is a cataloged fixed star.
type Star struct {
	Name  string
	Coord astro.Equatorial // J2000
	Mag   float64          // apparent visual magnitude (lower = brighter)
}

// StarProvider serves the fixed-star catalog as bodies. Precession is
// ignored; positions are J2000 at every t.
type StarProvider struct {
	MaxMag float64 // stars fainter than this are left out; 0 keeps all
	Names  []string
}

// Name returns "fixed-stars".
func (StarProvider) Name() string { return "fixed-stars" }

// Bodies returns the selected stars, brightest first. When Names is set
// only those stars are returned, in catalog order.
func (p StarProvider) Bodies(time.Time) ([]astro.Body, error) {
	want := make(map[string]bool, len(p.Names))
	for _, n := range p.Names {
		want[n] = true
	}

	var out []astro.Body
	for _, s := range Stars() {
		if p.MaxMag != 0 && s.Mag > p.MaxMag {
			continue
		}
		if len(want) > 0 && !want[s.Name] {
			continue
		}
		out = append(out, astro.Body{Name: s.Name, Coord: s.Coord})
	}
	return out, nil
}

// Stars returns the catalog ordered by magnitude, brightest first.
func Stars() []Star {
	out := make([]Star, len(fixedStars))
	copy(out, fixedStars)
	return out
}

func star(name string, ra, dec, mag float64) Star {
	return Star{Name: name, Coord: astro.Equatorial{RAdeg: ra, DecDeg: dec}, Mag: mag}
}

// fixedStars are the bright stars traditionally used for parans, from the
// Yale Bright Star Catalog.
var fixedStars = []Star{
	star("Sirius", 101.287, -16.716, -1.46),
	star("Canopus", 95.988, -52.696, -0.74),
	star("Arcturus", 213.915, 19.182, -0.05),
	star("Vega", 279.235, 38.784, 0.03),
	star("Capella", 79.172, 45.998, 0.08),
	star("Rigel", 78.634, -8.202, 0.13),
	star("Procyon", 114.826, 5.225, 0.34),
	star("Achernar", 24.429, -57.237, 0.46),
	star("Betelgeuse", 88.793, 7.407, 0.50),
	star("Altair", 297.696, 8.868, 0.76),
	star("Acrux", 186.650, -63.099, 0.76),
	star("Aldebaran", 68.980, 16.509, 0.85),
	star("Antares", 247.352, -26.432, 0.96),
	star("Spica", 201.298, -11.161, 0.97),
	star("Pollux", 116.329, 28.026, 1.14),
	star("Fomalhaut", 344.413, -29.622, 1.16),
	star("Deneb", 310.358, 45.280, 1.25),
	star("Regulus", 152.093, 11.967, 1.35),
	star("Castor", 113.650, 31.889, 1.58),
	star("Bellatrix", 81.283, 6.350, 1.64),
	star("Elnath", 81.573, 28.608, 1.65),
	star("Alnilam", 84.053, -1.202, 1.69),
	star("Alphard", 141.897, -8.659, 2.00),
	star("Hamal", 31.793, 23.463, 2.00),
	star("Polaris", 37.954, 89.264, 2.02),
	star("Menkent", 211.671, -36.370, 2.06),
	star("Alpheratz", 2.097, 29.091, 2.06),
	star("Rasalhague", 263.734, 12.560, 2.08),
	star("Algol", 47.042, 40.957, 2.12),
	star("Denebola", 177.265, 14.572, 2.13),
	star("Alphecca", 233.672, 26.715, 2.23),
	star("Scheat", 345.944, 28.083, 2.42),
	star("Markab", 346.190, 15.205, 2.49),
	star("Zubenelgenubi", 222.720, -16.042, 2.75),
	star("Vindemiatrix", 195.544, 10.959, 2.83),
	star("Alcyone", 56.871, 24.105, 2.87),
	star("Algorab", 187.466, -16.515, 2.95),
}
