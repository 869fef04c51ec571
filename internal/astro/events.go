package astro

import (
	"fmt"
	"strings"

	"github.com/litescript/ls-astromap/internal/angle"
)

// EventKind is one of the four angular events of a body's diurnal circle.
type EventKind int

const (
	Rise          EventKind = iota // crosses the eastern horizon
	Set                            // crosses the western horizon
	Culminate                      // upper meridian transit (MC)
	AntiCulminate                  // lower meridian transit (IC)
)

// EventKinds lists every event in canonical order.
var EventKinds = []EventKind{Rise, Set, Culminate, AntiCulminate}

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case Rise:
		return "rise"
	case Set:
		return "set"
	case Culminate:
		return "culminate"
	case AntiCulminate:
		return "anticulminate"
	default:
		return "unknown"
	}
}

// Short returns the conventional two-letter map label.
func (k EventKind) Short() string {
	switch k {
	case Rise:
		return "AS"
	case Set:
		return "DS"
	case Culminate:
		return "MC"
	case AntiCulminate:
		return "IC"
	default:
		return "??"
	}
}

// IsMeridian reports whether the event happens on the meridian, where its
// hour angle does not depend on latitude.
func (k EventKind) IsMeridian() bool {
	return k == Culminate || k == AntiCulminate
}

// ParseEventKind parses an event name or its two-letter label.
func ParseEventKind(s string) (EventKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rise", "as", "asc":
		return Rise, nil
	case "set", "ds", "dsc":
		return Set, nil
	case "culminate", "mc":
		return Culminate, nil
	case "anticulminate", "anti-culminate", "ic":
		return AntiCulminate, nil
	default:
		return 0, fmt.Errorf("unknown event %q", s)
	}
}

// CircumpolarState tags why a rise or set is impossible.
type CircumpolarState int

const (
	CircumpolarNone CircumpolarState = iota
	AlwaysAbove                      // never sets
	AlwaysBelow                      // never rises
)

// String returns the state name.
func (c CircumpolarState) String() string {
	switch c {
	case AlwaysAbove:
		return "always_above"
	case AlwaysBelow:
		return "always_below"
	default:
		return ""
	}
}

// EventTime is the local sidereal time at which a body reaches an event at
// a given latitude.
type EventTime struct {
	Body        string
	Event       EventKind
	LST         float64 // degrees [0, 360); meaningful only when IsPossible
	IsPossible  bool
	Circumpolar CircumpolarState
}

// EventLST returns when body reaches event at latDeg, against the geometric
// horizon. Culminate and AntiCulminate always succeed; Rise and Set are
// impossible where the body is circumpolar.
func EventLST(body Body, latDeg float64, event EventKind) EventTime {
	return EventLSTAt(body, latDeg, event, 0)
}

// EventLSTAt is EventLST against a horizon at altitude h0Deg.
func EventLSTAt(body Body, latDeg float64, event EventKind, h0Deg float64) EventTime {
	et := EventTime{Body: body.Name, Event: event}

	switch event {
	case Culminate:
		et.LST = angle.Normalize(body.Coord.RAdeg)
		et.IsPossible = true
	case AntiCulminate:
		et.LST = angle.Normalize(body.Coord.RAdeg + 180)
		et.IsPossible = true
	case Rise, Set:
		sda := SemiDiurnalArcAt(latDeg, body.Coord.DecDeg, h0Deg)
		switch {
		case sda.NeverSets:
			et.Circumpolar = AlwaysAbove
		case sda.NeverRises:
			et.Circumpolar = AlwaysBelow
		default:
			ha := sda.RiseHourAngle
			if event == Set {
				ha = sda.SetHourAngle
			}
			et.LST = angle.Normalize(body.Coord.RAdeg + ha)
			et.IsPossible = true
		}
	}

	return et
}
