package export

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	sexa "github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/unit"

	"github.com/litescript/ls-astromap/internal/engine"
	"github.com/litescript/ls-astromap/internal/paran"
	"github.com/litescript/ls-astromap/internal/sidereal"
)

// SummaryConfig limits the length of the summary sections.
type SummaryConfig struct {
	TopCells  int // 0 hides the section
	MaxParans int // 0 hides the section; negative prints all
}

// DefaultSummaryConfig returns the standard summary layout.
func DefaultSummaryConfig() SummaryConfig {
	return SummaryConfig{
		TopCells:  10,
		MaxParans: 20,
	}
}

// FormatRA formats a right ascension in degrees as hours, minutes and seconds.
func FormatRA(deg float64) string {
	return fmt.Sprint(sexa.FmtRA(unit.RA(unit.AngleFromDeg(deg))))
}

// FormatAngle formats an angle in degrees sexagesimally.
func FormatAngle(deg float64) string {
	return fmt.Sprint(sexa.FmtAngle(unit.AngleFromDeg(deg)))
}

// FormatLat formats a latitude as "41.50N".
func FormatLat(deg float64) string {
	if deg < 0 {
		return fmt.Sprintf("%.2fS", -deg)
	}
	return fmt.Sprintf("%.2fN", deg)
}

// FormatLon formats a longitude as "12.25E".
func FormatLon(deg float64) string {
	if deg < 0 {
		return fmt.Sprintf("%.2fW", -deg)
	}
	return fmt.Sprintf("%.2fE", deg)
}

// WriteSummaryTable writes a text summary of a result: bodies, the best
// cells and the strongest parans.
func WriteSummaryTable(w io.Writer, res *engine.Result, cfg SummaryConfig) {
	if res == nil {
		fmt.Fprintln(w, "No result")
		return
	}

	kind := "GMST"
	if res.Apparent {
		kind = "GAST"
	}
	fmt.Fprintf(w, "Astromap @ %s  %s %s\n", res.Time.Format(time.RFC3339), kind, FormatRA(res.GST))
	fmt.Fprintln(w, strings.Repeat("─", 90))

	// Bodies
	fmt.Fprintf(w, "%-14s %-16s %-16s %6s %10s %10s\n",
		"Body", "RA", "Dec", "Weight", "MC lon", "Zenith")
	fmt.Fprintln(w, strings.Repeat("─", 90))
	epoch := res.Epoch()
	for _, b := range res.Bodies {
		fmt.Fprintf(w, "%-14s %-16s %-16s %6.2f %10s %10s\n",
			truncateStr(b.Name, 14),
			FormatRA(b.Coord.RAdeg),
			FormatAngle(b.Coord.DecDeg),
			res.Weights[b.Name],
			FormatLon(epoch.LongitudeFor(0, b.Coord.RAdeg)),
			FormatLat(b.Coord.DecDeg),
		)
	}

	if cfg.TopCells > 0 {
		fmt.Fprintf(w, "\nTop %d locations\n", cfg.TopCells)
		fmt.Fprintln(w, strings.Repeat("─", 90))
		fmt.Fprintf(w, "%-8s %-9s %7s %7s %7s %7s %-7s %-14s\n",
			"Lat", "Lon", "Score", "Zenith", "ACG", "Paran", "Factor", "Body")
		for _, c := range res.TopCells(cfg.TopCells) {
			fmt.Fprintf(w, "%-8s %-9s %7.3f %7.3f %7.3f %7.3f %-7s %-14s\n",
				FormatLat(c.LatDeg),
				FormatLon(c.LonDeg),
				c.Score, c.Zenith, c.Acg, c.Paran,
				c.Dominant,
				truncateStr(c.DominantBody, 14),
			)
		}
	}

	if cfg.MaxParans != 0 {
		parans := strongestParans(res, cfg.MaxParans)
		fmt.Fprintf(w, "\nParans (%d of %d)\n", len(parans), len(res.Parans))
		fmt.Fprintln(w, strings.Repeat("─", 90))
		if len(parans) == 0 {
			fmt.Fprintln(w, "No parans")
		} else {
			fmt.Fprintf(w, "%-14s %-13s %-14s %-13s %-8s %6s %-8s\n",
				"Body A", "Event", "Body B", "Event", "Lat", "Str", "UT@0°")
			for _, p := range parans {
				ut := "--:--"
				if t, ok := sidereal.TimeForLST(res.Time, p.LST, 0); ok {
					ut = t.Format("15:04")
				}
				mark := ""
				if !p.Converged {
					mark = " (unconverged)"
				}
				fmt.Fprintf(w, "%-14s %-13s %-14s %-13s %-8s %5.0f%% %-8s%s\n",
					truncateStr(p.BodyA, 14), p.EventA,
					truncateStr(p.BodyB, 14), p.EventB,
					FormatLat(p.LatDeg),
					p.Strength*100,
					ut,
					mark,
				)
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d lines, %d parans, %d cells in %v\n",
		len(res.Lines), len(res.Parans), len(res.Grid), res.Elapsed.Round(time.Millisecond))
}

// strongestParans returns up to n parans by decreasing strength; ties keep
// result order. Negative n returns all of them.
func strongestParans(res *engine.Result, n int) []paran.Point {
	out := make([]paran.Point, len(res.Parans))
	copy(out, res.Parans)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Strength > out[j].Strength })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// truncateStr shortens s to maxLen, marking the cut with "..".
func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
