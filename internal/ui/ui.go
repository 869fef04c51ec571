// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-astromap/internal/astro"
	"github.com/litescript/ls-astromap/internal/engine"
	"github.com/litescript/ls-astromap/internal/export"
	"github.com/litescript/ls-astromap/internal/state"
	"github.com/litescript/ls-astromap/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewMap ViewMode = iota
	ViewLines
	ViewParans
	ViewEvents
)

// viewCount is the number of views reachable with tab.
const viewCount = 4

// ComputeFunc produces a result for a snapshot time.
type ComputeFunc func(ctx context.Context, t time.Time) (*engine.Result, error)

// Msg types for Bubble Tea
type (
	// AnimTickMsg drives the spinner while a computation runs.
	AnimTickMsg time.Time

	// ResultMsg signals a new result is stored in the state manager.
	ResultMsg struct {
		Snapshot state.Snapshot
	}

	// ErrorMsg signals a failed computation.
	ErrorMsg struct {
		Error error
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state   *state.Manager
	compute ComputeFunc

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	animTick  int
	computing bool
	at        time.Time // snapshot time currently shown or requested

	// Sub-models
	mapView MapViewModel
	lines   ListModel
	parans  ListModel

	snapshot state.Snapshot
}

// New creates a new root UI model. compute may be nil, in which case time
// stepping is disabled.
func New(stateMgr *state.Manager, compute ComputeFunc) Model {
	m := Model{
		state:    stateMgr,
		compute:  compute,
		viewMode: ViewMap,
		mapView:  NewMapViewModel(),
		lines:    NewListModel(ListLines),
		parans:   NewListModel(ListParans),
	}
	if home, ok := stateMgr.Home(); ok {
		m.mapView = m.mapView.SetHome(home)
	}
	return m.applySnapshot(stateMgr.Snapshot())
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.snapshot.Result == nil && m.compute != nil {
		return m.computeAt(time.Now().UTC())
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1":
			m.viewMode = ViewMap
		case "2":
			m.viewMode = ViewLines
		case "3":
			m.viewMode = ViewParans
		case "4":
			m.viewMode = ViewEvents
		case "tab":
			m.viewMode = (m.viewMode + 1) % viewCount

		case "]":
			cmds = append(cmds, m.step(1))
		case "[":
			cmds = append(cmds, m.step(-1))
		case "n":
			cmds = append(cmds, m.computeAt(time.Now().UTC()))

		case "H":
			if cell, ok := m.mapView.Selected(); ok {
				home := astro.GeoLocation{LatDeg: cell.LatDeg, LonDeg: cell.LonDeg}
				m.state.SetHome(home)
				m.mapView = m.mapView.SetHome(home)
				m.statusMsg = fmt.Sprintf("Watching %s %s", export.FormatLat(home.LatDeg), export.FormatLon(home.LonDeg))
			}

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Title, tabs and footer take 5 lines
		contentHeight := msg.Height - 5
		m.mapView = m.mapView.SetSize(msg.Width, contentHeight)
		m.lines = m.lines.SetSize(msg.Width, contentHeight)
		m.parans = m.parans.SetSize(msg.Width, contentHeight)

	case AnimTickMsg:
		if m.computing {
			m.animTick++
			cmds = append(cmds, animTickCmd())
		}

	case ResultMsg:
		m.computing = false
		m.statusMsg = ""
		m = m.applySnapshot(msg.Snapshot)

	case ErrorMsg:
		m.computing = false
		m.statusMsg = "Compute failed: " + msg.Error.Error()
		if m.snapshot.Result != nil {
			m.at = m.snapshot.Result.Time
		}

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewMap:
		m.mapView, cmd = m.mapView.Update(msg)
	case ViewLines:
		m.lines, cmd = m.lines.Update(msg)
	case ViewParans:
		m.parans, cmd = m.parans.Update(msg)
	}
	return cmd
}

func (m Model) applySnapshot(snap state.Snapshot) Model {
	m.snapshot = snap
	if snap.Result == nil {
		return m
	}
	m.at = snap.Result.Time
	m.mapView = m.mapView.UpdateData(snap.Result)
	m.lines = m.lines.UpdateData(snap.Result)
	m.parans = m.parans.UpdateData(snap.Result)
	return m
}

// step requests the snapshot n time steps away from the current one.
func (m *Model) step(n int) tea.Cmd {
	if m.at.IsZero() {
		return nil
	}
	return m.computeAt(m.at.Add(time.Duration(n) * m.state.TimeStep()))
}

// computeAt starts a background computation for t. Only one runs at a time.
func (m *Model) computeAt(t time.Time) tea.Cmd {
	if m.compute == nil || m.computing {
		return nil
	}
	m.computing = true
	m.at = t

	compute, mgr := m.compute, m.state
	run := func() tea.Msg {
		res, err := compute(context.Background(), t)
		mgr.Update(res, err)
		if err != nil {
			return ErrorMsg{Error: err}
		}
		return ResultMsg{Snapshot: mgr.Snapshot()}
	}
	return tea.Batch(run, animTickCmd())
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewMap:
		content = m.mapView.View()
	case ViewLines:
		content = m.lines.View()
	case ViewParans:
		content = m.parans.View()
	case ViewEvents:
		home := ""
		if h, ok := m.state.Home(); ok {
			home = export.FormatLat(h.LatDeg) + " " + export.FormatLon(h.LonDeg)
		}
		content = renderEvents(m.snapshot, home)
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	title := "  ls-astromap"
	var b strings.Builder
	runes := []rune(title)
	for col, r := range runes {
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(gradientColor(col, len(runes))))
		b.WriteString(style.Render(string(r)))
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf("  v%s", version.Version)))
	if !m.at.IsZero() {
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(m.at.Format("2006-01-02 15:04 MST")))
		b.WriteString(muted.Render(fmt.Sprintf("  step %s", m.state.TimeStep())))
	}
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	return b.String()
}

// gradientColor returns a hex color along a blue -> purple -> pink gradient.
func gradientColor(col, width int) string {
	x := float64(col) / float64(width)

	var r, g, b float64
	if x < 0.5 {
		t := x / 0.5
		r, g, b = 59+t*(139-59), 130+t*(92-130), 246
	} else {
		t := (x - 0.5) / 0.5
		r, g, b = 139+t*(236-139), 92+t*(72-92), 246+t*(153-246)
	}
	return fmt.Sprintf("#%02X%02X%02X", clampByte(r), clampByte(g), clampByte(b))
}

func clampByte(v float64) int {
	return clampInt(int(v), 0, 255)
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Map", "[2] Lines", "[3] Parans", "[4] Events"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

	var status string
	switch {
	case m.computing:
		status = accentStyle.Render(spinnerFrames[m.animTick%len(spinnerFrames)]) + dimStyle.Render(" computing...")
	case m.snapshot.LastError != nil:
		status = errorStyle.Render("ERROR: " + m.snapshot.LastError.Error())
	case m.snapshot.Result != nil:
		res := m.snapshot.Result
		status = dimStyle.Render(fmt.Sprintf("%d bodies, %d lines, %d parans (%s)",
			len(res.Bodies), len(res.Lines), len(res.Parans), res.Elapsed.Round(time.Millisecond)))
	default:
		status = dimStyle.Render("No result")
	}

	var help string
	switch m.viewMode {
	case ViewMap:
		help = "arrows/hjkl: move | g: best | H: watch cell | [ ]: step time | n: now"
	case ViewParans:
		help = "↑↓: scroll | s: sort by strength | [ ]: step time"
	default:
		help = "↑↓: scroll | tab: switch view | [ ]: step time"
	}

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + dimStyle.Render(help)
	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}
	return footer
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

// SendResult creates a command that sends a result message.
func SendResult(snapshot state.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return ResultMsg{Snapshot: snapshot}
	}
}
