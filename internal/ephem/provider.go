// Package ephem supplies body positions for a time snapshot: bodies read
// from a chart file, the Sun from a solar theory, and a fixed-star catalog.
package ephem

import (
	"fmt"
	"time"

	"github.com/litescript/ls-astromap/internal/astro"
)

// Provider defines the interface for body position sources.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// Bodies returns the positions of every body the provider knows at t.
	Bodies(t time.Time) ([]astro.Body, error)
}

// Static is a fixed list of bodies that does not depend on time.
type Static struct {
	Label string
	List  []astro.Body
}

// Name returns the label, or "static".
func (s Static) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

// Bodies returns a copy of the list.
func (s Static) Bodies(time.Time) ([]astro.Body, error) {
	out := make([]astro.Body, len(s.List))
	copy(out, s.List)
	return out, nil
}

// Combined queries several providers in order. When two providers return a
// body with the same name, the first one wins.
type Combined []Provider

// Name lists the member providers.
func (c Combined) Name() string {
	name := "combined("
	for i, p := range c {
		if i > 0 {
			name += ","
		}
		name += p.Name()
	}
	return name + ")"
}

// Bodies merges the bodies of every member.
func (c Combined) Bodies(t time.Time) ([]astro.Body, error) {
	var out []astro.Body
	seen := make(map[string]bool)
	for _, p := range c {
		bodies, err := p.Bodies(t)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name(), err)
		}
		for _, b := range bodies {
			if seen[b.Name] {
				continue
			}
			seen[b.Name] = true
			out = append(out, b)
		}
	}
	return out, nil
}
