// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Interactive map browser, time stepping, watched location events
// 0.2.0 - Paran bisection solver, scoring grid, JSON/summary/map exports
// 0.1.0 - Initial release: sidereal time, semi-diurnal arcs, ACG lines
