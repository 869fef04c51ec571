package ui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-astromap/internal/astro"
	"github.com/litescript/ls-astromap/internal/engine"
	"github.com/litescript/ls-astromap/internal/export"
	"github.com/litescript/ls-astromap/internal/grid"
	"github.com/litescript/ls-astromap/internal/zenith"
)

const (
	glyphHome = 'H'

	// Rows reserved below the map for the cell inspector
	inspectorHeight = 9
)

var (
	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))
	homeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46"))
	axisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	paranMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Render("≈")
)

// MapViewModel renders the scoring grid as a world map with a movable
// cursor and an inspector for the cell under it.
type MapViewModel struct {
	width  int
	height int

	res    *engine.Result
	raster [][]export.Glyph
	parans []bool

	// Cursor in raster coordinates: row 0 is north, col 0 is west
	row int
	col int

	home *astro.GeoLocation
}

// NewMapViewModel creates an empty map view.
func NewMapViewModel() MapViewModel {
	return MapViewModel{}
}

// SetSize updates the view dimensions.
func (m MapViewModel) SetSize(width, height int) MapViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData loads a new result. The cursor keeps its position when the grid
// shape is unchanged and jumps to the best cell otherwise.
func (m MapViewModel) UpdateData(res *engine.Result) MapViewModel {
	if res == nil {
		return m
	}
	sameShape := m.res != nil && len(m.raster) > 0
	if sameShape {
		r1, c1 := m.res.Dims()
		r2, c2 := res.Dims()
		sameShape = r1 == r2 && c1 == c2
	}

	m.res = res
	m.raster = export.Raster(res)
	m.parans = export.ParanRows(res)
	if !sameShape {
		m = m.jumpToBest()
	}
	return m
}

// SetHome marks the watched location on the map.
func (m MapViewModel) SetHome(loc astro.GeoLocation) MapViewModel {
	m.home = &loc
	return m
}

// Update handles cursor movement.
func (m MapViewModel) Update(msg tea.Msg) (MapViewModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.raster) == 0 {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		m.row--
	case "down", "j":
		m.row++
	case "left", "h":
		m.col--
	case "right", "l":
		m.col++
	case "pgup":
		m.row -= 5
	case "pgdown":
		m.row += 5
	case "g":
		m = m.jumpToBest()
	}
	m.row = clampInt(m.row, 0, len(m.raster)-1)
	m.col = clampInt(m.col, 0, len(m.raster[0])-1)
	return m, nil
}

// jumpToBest moves the cursor to the highest-scoring cell.
func (m MapViewModel) jumpToBest() MapViewModel {
	top := m.res.TopCells(1)
	if len(top) == 0 {
		return m
	}
	rows, cols := m.res.Dims()
	for i, c := range m.res.Grid {
		if c.LatDeg == top[0].LatDeg && c.LonDeg == top[0].LonDeg {
			m.row = rows - 1 - i/cols
			m.col = i % cols
			break
		}
	}
	return m
}

// Selected returns the cell under the cursor.
func (m MapViewModel) Selected() (grid.Cell, bool) {
	if m.res == nil {
		return grid.Cell{}, false
	}
	rows, _ := m.res.Dims()
	return m.res.CellAt(rows-1-m.row, m.col)
}

// homeCell returns the raster position nearest the home location.
func (m MapViewModel) homeCell() (row, col int, ok bool) {
	if m.home == nil || m.res == nil {
		return 0, 0, false
	}
	o := m.res.GridOptions
	rows, cols := m.res.Dims()
	r := int(math.Round((m.home.LatDeg - o.LatMin) / o.LatStep))
	c := int(math.Round((m.home.LonDeg - o.LonMin) / o.LonStep))
	if r < 0 || r >= rows || c < 0 || c >= cols {
		return 0, 0, false
	}
	return rows - 1 - r, c, true
}

// View renders the map and the inspector.
func (m MapViewModel) View() string {
	if m.res == nil || len(m.raster) == 0 {
		return "\n  No map yet\n"
	}

	var b strings.Builder
	b.WriteString(m.renderMap())
	b.WriteString("\n")
	b.WriteString(m.renderInspector())
	return b.String()
}

func (m MapViewModel) visibleRows() (first, last int) {
	n := len(m.raster)
	avail := m.height - inspectorHeight - 2
	if avail <= 0 || avail >= n {
		return 0, n
	}
	first = clampInt(m.row-avail/2, 0, n-avail)
	return first, first + avail
}

func (m MapViewModel) renderMap() string {
	lats := m.res.GridOptions.Latitudes()
	homeRow, homeCol, hasHome := m.homeCell()
	first, last := m.visibleRows()

	var b strings.Builder
	border := strings.Repeat("─", len(m.raster[0]))
	b.WriteString(axisStyle.Render("         ┌" + border + "┐"))
	b.WriteString("\n")
	for r := first; r < last; r++ {
		label := fmt.Sprintf("%8s", export.FormatLat(lats[len(lats)-1-r]))
		b.WriteString(axisStyle.Render(label + " │"))
		for c, g := range m.raster[r] {
			ch := string(g.Rune)
			switch {
			case r == m.row && c == m.col:
				b.WriteString(cursorStyle.Render(ch))
			case hasHome && r == homeRow && c == homeCol:
				b.WriteString(homeStyle.Render(string(glyphHome)))
			default:
				b.WriteString(export.GlyphStyle(g).Render(ch))
			}
		}
		b.WriteString(axisStyle.Render("│"))
		if m.parans[r] {
			b.WriteString(" " + paranMark)
		}
		b.WriteString("\n")
	}
	b.WriteString(axisStyle.Render("         └" + border + "┘"))
	return b.String()
}

func (m MapViewModel) renderInspector() string {
	cell, ok := m.Selected()
	if !ok {
		return ""
	}
	loc := astro.GeoLocation{LatDeg: cell.LatDeg, LonDeg: cell.LonDeg}

	var b strings.Builder
	dominant := cell.Dominant.String()
	if cell.DominantBody != "" {
		dominant += " (" + cell.DominantBody + ")"
	}
	b.WriteString(fmt.Sprintf("  %s %s   score %s   %s\n",
		labelStyle.Render(export.FormatLat(cell.LatDeg)),
		labelStyle.Render(export.FormatLon(cell.LonDeg)),
		labelStyle.Render(fmt.Sprintf("%.3f", cell.Score)),
		dominant))
	b.WriteString(fmt.Sprintf("  zenith %.3f   acg %.3f   paran %.3f\n", cell.Zenith, cell.Acg, cell.Paran))

	// Zenith breakdown
	_, contribs := zenith.Score(cell.LatDeg, m.res.Bodies, m.res.Weights, m.res.GridOptions.Sigma)
	var parts []string
	for i, c := range contribs {
		if i == 3 {
			break
		}
		parts = append(parts, fmt.Sprintf("%s %.2f (%.1f°)", c.Body, c.Value, c.Distance))
	}
	b.WriteString("  " + axisStyle.Render("Zenith:") + " " + orNone(parts) + "\n")

	// Nearest lines
	type near struct {
		name string
		d    float64
	}
	var lines []near
	for _, l := range m.res.Lines {
		if d := l.Distance(loc); d <= 3*m.res.GridOptions.AcgOrb {
			lines = append(lines, near{l.Body + " " + l.Kind.Short(), d})
		}
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].d < lines[j].d })
	parts = parts[:0]
	for i, l := range lines {
		if i == 4 {
			break
		}
		parts = append(parts, fmt.Sprintf("%s %.1f°", l.name, l.d))
	}
	b.WriteString("  " + axisStyle.Render("Lines: ") + " " + orNone(parts) + "\n")

	// Parans within orb
	parts = parts[:0]
	for _, p := range m.res.Parans {
		if d := p.LatDeg - cell.LatDeg; d < -m.res.GridOptions.ParanOrb || d > m.res.GridOptions.ParanOrb {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s/%s %s %.0f%%",
			p.BodyA, p.EventA.Short(), p.BodyB, p.EventB.Short(), p.Strength*100))
		if len(parts) == 3 {
			break
		}
	}
	b.WriteString("  " + axisStyle.Render("Parans:") + " " + orNone(parts) + "\n")
	return b.String()
}

func orNone(parts []string) string {
	if len(parts) == 0 {
		return axisStyle.Render("none")
	}
	return strings.Join(parts, ", ")
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
