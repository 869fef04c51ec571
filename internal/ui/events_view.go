package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/litescript/ls-astromap/internal/export"
	"github.com/litescript/ls-astromap/internal/state"
)

// maxEventRows is the number of events shown, newest first.
const maxEventRows = 15

// renderEvents renders the event log and the run history.
func renderEvents(snap state.Snapshot, home string) string {
	var b strings.Builder

	title := "Events"
	if home != "" {
		title += " at " + home
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-12s %-12s %-14s %-13s %s", title, "", "", "", "")))
	b.WriteString("\n")
	if len(snap.Events) == 0 {
		hint := "  No events"
		if home == "" {
			hint += " (press H on the map to watch a location)"
		}
		b.WriteString(dimRowStyle.Render(hint))
		b.WriteString("\n")
	}
	for i := len(snap.Events) - 1; i >= 0 && len(snap.Events)-i <= maxEventRows; i-- {
		b.WriteString(rowStyle.Render(formatEvent(snap.Events[i])))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-17s %6s %7s %8s %9s", "Snapshot", "Lines", "Parans", "Max", "Elapsed")))
	b.WriteString("\n")
	for i := len(snap.History) - 1; i >= 0; i-- {
		h := snap.History[i]
		b.WriteString(rowStyle.Render(fmt.Sprintf("%-17s %6d %7d %8.3f %9s",
			h.Time.Format("2006-01-02 15:04"), h.Lines, h.Parans, h.MaxScore, h.Elapsed.Round(time.Millisecond))))
		b.WriteString("\n")
	}
	return b.String()
}

func formatEvent(e state.Event) string {
	ts := e.Timestamp.Format("01-02 15:04")
	switch e.Type {
	case state.EventLineEnter:
		return fmt.Sprintf("%-12s %-12s %-14s %-13s %.1f°", ts, "line near", truncate(e.Body, 14), e.Kind, e.Distance)
	case state.EventLineLeave:
		return fmt.Sprintf("%-12s %-12s %-14s %-13s", ts, "line gone", truncate(e.Body, 14), e.Kind)
	case state.EventTopChanged:
		return fmt.Sprintf("%-12s %-12s %-14s %s %s", ts, "best moved", truncate(e.Body, 14),
			export.FormatLat(e.LatDeg), export.FormatLon(e.LonDeg))
	default:
		return fmt.Sprintf("%-12s %s", ts, e.Type)
	}
}
