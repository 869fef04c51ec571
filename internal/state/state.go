// Package state provides thread-safe state management for the application.
package state

import (
	"sync"
	"time"

	"github.com/litescript/ls-astromap/internal/astro"
	"github.com/litescript/ls-astromap/internal/engine"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventLineEnter  EventType = "LINE_ENTER"
	EventLineLeave  EventType = "LINE_LEAVE"
	EventTopChanged EventType = "TOP_CHANGED"
)

// Event is a change between two consecutive results, seen from the home
// location.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"` // snapshot time of the newer result
	Body      string    `json:"body"`
	Kind      string    `json:"kind,omitempty"`
	Distance  float64   `json:"distance,omitempty"`
	LatDeg    float64   `json:"lat,omitempty"`
	LonDeg    float64   `json:"lon,omitempty"`
}

// HistoryEntry summarizes one computed result.
type HistoryEntry struct {
	Time     time.Time // snapshot time
	RanAt    time.Time
	Elapsed  time.Duration
	Bodies   int
	Lines    int
	Parans   int
	MaxScore float64
}

// lineKey identifies a line across results.
type lineKey struct {
	body string
	kind astro.EventKind
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Current state
	current   *engine.Result
	lastRun   time.Time
	lastError error

	// Lines within the watch orb of home in the current result, in line order
	near     []lineKey
	nearDist map[lineKey]float64

	history       []HistoryEntry
	maxHistoryLen int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	// Configuration
	home     *astro.GeoLocation
	watchOrb float64
	timeStep time.Duration
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen int
	MaxEvents     int
	Home          *astro.GeoLocation // nil disables line events
	WatchOrb      float64            // degrees
	TimeStep      time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen: 48,
		MaxEvents:     50,
		WatchOrb:      5,
		TimeStep:      time.Hour,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	var home *astro.GeoLocation
	if cfg.Home != nil {
		h := *cfg.Home
		home = &h
	}
	return &Manager{
		maxHistoryLen: cfg.MaxHistoryLen,
		maxEvents:     maxEvents,
		events:        make([]Event, 0, maxEvents),
		home:          home,
		watchOrb:      cfg.WatchOrb,
		timeStep:      cfg.TimeStep,
		nearDist:      make(map[lineKey]float64),
	}
}

// Update atomically replaces the current result. A non-nil err is recorded
// and keeps the previous result.
func (m *Manager) Update(res *engine.Result, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastRun = time.Now()
	m.lastError = err

	if res == nil {
		return
	}

	m.detectEvents(res)
	m.current = res

	m.history = append(m.history, HistoryEntry{
		Time:     res.Time,
		RanAt:    m.lastRun,
		Elapsed:  res.Elapsed,
		Bodies:   len(res.Bodies),
		Lines:    len(res.Lines),
		Parans:   len(res.Parans),
		MaxScore: res.MaxScore(),
	})
	if m.maxHistoryLen > 0 && len(m.history) > m.maxHistoryLen {
		m.history = m.history[1:]
	}
}

// detectEvents compares a new result with the current one and logs lines
// that came within or left the watch orb of home, and moves of the best cell.
func (m *Manager) detectEvents(res *engine.Result) {
	if m.current != nil {
		prevTop, newTop := m.current.TopCells(1), res.TopCells(1)
		if len(prevTop) == 1 && len(newTop) == 1 &&
			(prevTop[0].LatDeg != newTop[0].LatDeg || prevTop[0].LonDeg != newTop[0].LonDeg) {
			m.addEvent(Event{
				Type:      EventTopChanged,
				Timestamp: res.Time,
				Body:      newTop[0].DominantBody,
				LatDeg:    newTop[0].LatDeg,
				LonDeg:    newTop[0].LonDeg,
			})
		}
	}

	if m.home == nil {
		return
	}

	var near []lineKey
	nearDist := make(map[lineKey]float64)
	for _, l := range res.Lines {
		d := l.Distance(*m.home)
		if d > m.watchOrb {
			continue
		}
		key := lineKey{body: l.Body, kind: l.Kind}
		near = append(near, key)
		nearDist[key] = d

		if _, was := m.nearDist[key]; !was {
			m.addEvent(Event{
				Type:      EventLineEnter,
				Timestamp: res.Time,
				Body:      l.Body,
				Kind:      l.Kind.String(),
				Distance:  d,
				LatDeg:    m.home.LatDeg,
				LonDeg:    m.home.LonDeg,
			})
		}
	}

	for _, key := range m.near {
		if _, still := nearDist[key]; !still {
			m.addEvent(Event{
				Type:      EventLineLeave,
				Timestamp: res.Time,
				Body:      key.body,
				Kind:      key.kind.String(),
				LatDeg:    m.home.LatDeg,
				LonDeg:    m.home.LonDeg,
			})
		}
	}

	m.near = near
	m.nearDist = nearDist
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Result    *engine.Result
	LastRun   time.Time
	LastError error
	Events    []Event
	History   []HistoryEntry
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := make([]HistoryEntry, len(m.history))
	copy(history, m.history)

	return Snapshot{
		Result:    m.current,
		LastRun:   m.lastRun,
		LastError: m.lastError,
		Events:    m.getEventsOrdered(),
		History:   history,
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		result[i] = m.events[(m.eventWriteAt+i)%m.maxEvents]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// Home returns the watched location, if any.
func (m *Manager) Home() (astro.GeoLocation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.home == nil {
		return astro.GeoLocation{}, false
	}
	return *m.home, true
}

// SetHome changes the watched location. Line events restart from the next
// update.
func (m *Manager) SetHome(loc astro.GeoLocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.home = &loc
	m.near = nil
	m.nearDist = make(map[lineKey]float64)
}

// TimeStep returns the snapshot step used when moving through time.
func (m *Manager) TimeStep() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timeStep
}

// SetTimeStep updates the time step.
func (m *Manager) SetTimeStep(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeStep = d
}

// HasData returns true once a result has been stored.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}
