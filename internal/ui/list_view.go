package ui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-astromap/internal/engine"
	"github.com/litescript/ls-astromap/internal/export"
)

// ListKind selects what a ListModel shows.
type ListKind int

const (
	ListLines ListKind = iota
	ListParans
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235"))
	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))
	dimRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// listRow is one rendered table row.
type listRow struct {
	text     string
	body     string
	strength float64 // parans only
	dim      bool
}

// ListModel is a scrollable table of lines or parans.
type ListModel struct {
	kind   ListKind
	width  int
	height int

	rows       []listRow
	cursor     int
	offset     int
	byStrength bool // parans sorted by strength instead of result order
}

// NewListModel creates an empty list.
func NewListModel(kind ListKind) ListModel {
	return ListModel{kind: kind}
}

// SetSize updates the view dimensions.
func (m ListModel) SetSize(width, height int) ListModel {
	m.width = width
	m.height = height
	return m.scrollToCursor()
}

// UpdateData rebuilds the rows from a result.
func (m ListModel) UpdateData(res *engine.Result) ListModel {
	if res == nil {
		return m
	}
	switch m.kind {
	case ListLines:
		m.rows = lineRows(res)
	case ListParans:
		m.rows = paranRows(res)
		if m.byStrength {
			m.sortByStrength()
		}
	}
	m.cursor = clampInt(m.cursor, 0, len(m.rows)-1)
	return m.scrollToCursor()
}

func lineRows(res *engine.Result) []listRow {
	rows := make([]listRow, 0, len(res.Lines))
	for _, l := range res.Lines {
		lo, hi, ok := l.LatRange()
		span := "      (never crosses the horizon)"
		if ok {
			span = fmt.Sprintf("%8s .. %-8s", export.FormatLat(lo), export.FormatLat(hi))
		}
		eq := "-"
		if lon, ok := l.LongitudeAt(0); ok {
			eq = export.FormatLon(lon)
		}
		note := ""
		if l.IsCircumpolar {
			note = "circumpolar"
		}
		rows = append(rows, listRow{
			text: fmt.Sprintf("%-14s %-3s %-13s %-22s %9s  %s",
				truncate(l.Body, 14), l.Kind.Short(), l.Kind, span, eq, note),
			body: l.Body,
			dim:  !ok,
		})
	}
	return rows
}

func paranRows(res *engine.Result) []listRow {
	rows := make([]listRow, 0, len(res.Parans))
	for _, p := range res.Parans {
		conv := ""
		if !p.Converged {
			conv = "unconverged"
		}
		rows = append(rows, listRow{
			text: fmt.Sprintf("%-14s %-3s %-14s %-3s %8s %5.0f%% %4d  %s",
				truncate(p.BodyA, 14), p.EventA.Short(),
				truncate(p.BodyB, 14), p.EventB.Short(),
				export.FormatLat(p.LatDeg), p.Strength*100, p.Iterations, conv),
			body:     p.BodyA,
			strength: p.Strength,
			dim:      !p.Converged,
		})
	}
	return rows
}

func (m *ListModel) sortByStrength() {
	sort.SliceStable(m.rows, func(i, j int) bool { return m.rows[i].strength > m.rows[j].strength })
}

// Update handles scrolling and sorting.
func (m ListModel) Update(msg tea.Msg) (ListModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		m.cursor--
	case "down", "j":
		m.cursor++
	case "pgup":
		m.cursor -= m.pageSize()
	case "pgdown":
		m.cursor += m.pageSize()
	case "home":
		m.cursor = 0
	case "end":
		m.cursor = len(m.rows) - 1
	case "s":
		if m.kind == ListParans && !m.byStrength {
			m.byStrength = true
			m.sortByStrength()
		}
	}
	m.cursor = clampInt(m.cursor, 0, len(m.rows)-1)
	return m.scrollToCursor(), nil
}

func (m ListModel) pageSize() int {
	if m.height <= 3 {
		return 10
	}
	return m.height - 3
}

func (m ListModel) scrollToCursor() ListModel {
	page := m.pageSize()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
	return m
}

// SelectedBody returns the body of the highlighted row.
func (m ListModel) SelectedBody() string {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return ""
	}
	return m.rows[m.cursor].body
}

// View renders the table.
func (m ListModel) View() string {
	var header, empty string
	switch m.kind {
	case ListLines:
		header = fmt.Sprintf("%-14s %-3s %-13s %-22s %9s  %s", "Body", "", "Event", "Latitudes", "Lon @ 0°", "")
		empty = "No lines"
	case ListParans:
		header = fmt.Sprintf("%-14s %-3s %-14s %-3s %8s %6s %4s", "Body A", "", "Body B", "", "Lat", "Str", "Iter")
		empty = "No parans"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	if len(m.rows) == 0 {
		b.WriteString(dimRowStyle.Render("  " + empty))
		b.WriteString("\n")
		return b.String()
	}

	end := m.offset + m.pageSize()
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		switch {
		case i == m.cursor:
			b.WriteString(selectedRowStyle.Render(r.text))
		case r.dim:
			b.WriteString(dimRowStyle.Render(r.text))
		default:
			b.WriteString(rowStyle.Render(r.text))
		}
		b.WriteString("\n")
	}
	b.WriteString(dimRowStyle.Render(fmt.Sprintf("  %d-%d of %d", m.offset+1, end, len(m.rows))))
	b.WriteString("\n")
	return b.String()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
