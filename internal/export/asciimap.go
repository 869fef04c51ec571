package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-astromap/internal/engine"
	"github.com/litescript/ls-astromap/internal/grid"
)

// shadeRamp maps normalized score to a character, weakest first.
const shadeRamp = " .:-=+*#%@"

// Glyph is one character of the map.
type Glyph struct {
	Rune   rune
	Level  float64 // cell score relative to the best cell, 0..1
	Factor grid.Factor
	Body   string // line body, or the cell's dominant body
	OnLine bool
}

// Raster lays the grid out north-up: row 0 is the northernmost latitude and
// column 0 the westernmost longitude. Cells crossed by a line show the line's
// event code (M, I, A, D); others are shaded by score.
func Raster(res *engine.Result) [][]Glyph {
	rows, cols := res.Dims()
	if rows == 0 || cols == 0 {
		return nil
	}
	maxScore := res.MaxScore()
	lats := res.GridOptions.Latitudes()

	out := make([][]Glyph, rows)
	for r := range out {
		row := rows - 1 - r
		out[r] = make([]Glyph, cols)
		for c := range out[r] {
			cell, _ := res.CellAt(row, c)
			g := Glyph{Factor: cell.Dominant, Body: cell.DominantBody}
			if maxScore > 0 {
				g.Level = cell.Score / maxScore
			}
			g.Rune = rune(shadeRamp[int(math.Round(g.Level*float64(len(shadeRamp)-1)))])
			out[r][c] = g
		}

		for _, l := range res.Lines {
			lon, ok := l.LongitudeAt(lats[row])
			if !ok {
				continue
			}
			c, ok := columnFor(res.GridOptions, lon)
			if !ok || out[r][c].OnLine {
				continue
			}
			out[r][c].Rune = rune(l.Kind.Short()[0])
			out[r][c].Body = l.Body
			out[r][c].OnLine = true
		}
	}
	return out
}

// columnFor returns the column nearest lon when lon lies within half a step
// of it, trying the longitude on both sides of the antimeridian.
func columnFor(o grid.Options, lon float64) (int, bool) {
	cols := len(o.Longitudes())
	for _, l := range [...]float64{lon, lon + 360, lon - 360} {
		c := int(math.Round((l - o.LonMin) / o.LonStep))
		if c < 0 || c >= cols {
			continue
		}
		if math.Abs(o.LonMin+float64(c)*o.LonStep-l) <= o.LonStep/2 {
			return c, true
		}
	}
	return 0, false
}

// ParanRows reports, per raster row, whether a paran latitude falls within
// half a latitude step of the row.
func ParanRows(res *engine.Result) []bool {
	lats := res.GridOptions.Latitudes()
	out := make([]bool, len(lats))
	half := res.GridOptions.LatStep / 2
	for r := range out {
		lat := lats[len(lats)-1-r]
		for _, p := range res.Parans {
			if math.Abs(p.LatDeg-lat) <= half {
				out[r] = true
				break
			}
		}
	}
	return out
}

// MapConfig controls map rendering.
type MapConfig struct {
	Color  bool // style cells with ANSI colors
	Legend bool
}

// DefaultMapConfig returns a plain map with a legend.
func DefaultMapConfig() MapConfig {
	return MapConfig{Legend: true}
}

var (
	mapLineStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231"))
	mapAxisStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	mapParanStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	mapFactorStyle = map[grid.Factor]lipgloss.Style{
		grid.FactorZenith: lipgloss.NewStyle().Foreground(lipgloss.Color("226")), // yellow
		grid.FactorAcg:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),  // blue
		grid.FactorParan:  lipgloss.NewStyle().Foreground(lipgloss.Color("213")), // pink
		grid.FactorMixed:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	}
)

// GlyphStyle returns the style a glyph is drawn with in color mode.
func GlyphStyle(g Glyph) lipgloss.Style {
	if g.OnLine {
		return mapLineStyle
	}
	return mapFactorStyle[g.Factor]
}

// WriteMap draws the scoring grid as an ASCII world map with lines overlaid.
func WriteMap(w io.Writer, res *engine.Result, cfg MapConfig) {
	if res == nil || len(res.Grid) == 0 {
		fmt.Fprintln(w, "No map")
		return
	}

	raster := Raster(res)
	parans := ParanRows(res)
	lats := res.GridOptions.Latitudes()
	cols := len(raster[0])

	style := func(s lipgloss.Style, text string) string {
		if !cfg.Color {
			return text
		}
		return s.Render(text)
	}

	fmt.Fprintf(w, "Astromap @ %s\n", res.Time.Format("2006-01-02 15:04 MST"))
	border := strings.Repeat("─", cols)
	fmt.Fprintf(w, "        ┌%s┐\n", border)
	for r, row := range raster {
		var b strings.Builder
		for _, g := range row {
			b.WriteString(style(GlyphStyle(g), string(g.Rune)))
		}
		gutter := ""
		if parans[r] {
			gutter = " " + style(mapParanStyle, "≈")
		}
		label := style(mapAxisStyle, fmt.Sprintf("%7s", FormatLat(lats[len(lats)-1-r])))
		fmt.Fprintf(w, "%s │%s│%s\n", label, b.String(), gutter)
	}
	fmt.Fprintf(w, "        └%s┘\n", border)

	lo, hi := FormatLon(res.GridOptions.LonMin), FormatLon(res.GridOptions.LonMax)
	pad := cols - len(lo) - len(hi)
	if pad < 1 {
		pad = 1
	}
	fmt.Fprintf(w, "         %s%s%s\n", lo, strings.Repeat(" ", pad), hi)

	if cfg.Legend {
		fmt.Fprintf(w, "\nM=MC  I=IC  A=rise  D=set  ≈=paran latitude  shade %q=low..high (max %.3f)\n",
			shadeRamp, res.MaxScore())
	}
}
