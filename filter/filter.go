// Package filter selects the readings that belong in an analysis run:
// readings taken in the right time frame, from the right plots.
package filter

import (
	"time"

	"github.com/mlfelice/spruce-tools/reading"
)

// Mode selects how a reading's timestamp is matched against a target
// sampling instant.
type Mode string

const (
	// ModeYear keeps readings from the target's calendar year.
	ModeYear Mode = "year"

	// ModeYearOnward keeps readings from the target's calendar year and
	// every later year.
	ModeYearOnward Mode = "year-onward"

	// ModeWindow keeps readings from the closed window
	// [target-lookback, target].
	ModeWindow Mode = "window"
)

// Valid reports whether m names a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeYear, ModeYearOnward, ModeWindow:
		return true
	}
	return false
}

// Temporal is the time half of the record filter. A timestamp matches when
// it matches any of the target sampling instants under the configured mode.
type Temporal struct {
	Mode     Mode
	Targets  []time.Time
	Lookback time.Duration // used by ModeWindow only
}

// MatchAt reports whether t matches the single target instant.
func (tp Temporal) MatchAt(t, target time.Time) bool {
	switch tp.Mode {
	case ModeYear:
		return t.Year() == target.Year()
	case ModeYearOnward:
		return t.Year() >= target.Year()
	case ModeWindow:
		start := target.Add(-tp.Lookback)
		return !t.Before(start) && !t.After(target)
	}
	return false
}

// Match reports whether t matches any target instant.
func (tp Temporal) Match(t time.Time) bool {
	for _, target := range tp.Targets {
		if tp.MatchAt(t, target) {
			return true
		}
	}
	return false
}

// Filter composes the temporal predicate with a plot allow-list. A reading
// passes only when both hold.
type Filter struct {
	Temporal Temporal
	Plots    []int
}

// MatchPlot reports whether plot is in the allow-list.
func (f Filter) MatchPlot(plot int) bool {
	for _, p := range f.Plots {
		if p == plot {
			return true
		}
	}
	return false
}

// Match reports whether the reading belongs in the analysis.
func (f Filter) Match(r reading.Reading) bool {
	return f.Temporal.Match(r.Timestamp) && f.MatchPlot(r.Plot)
}
