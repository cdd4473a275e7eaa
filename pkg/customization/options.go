// Package customization implements the TDCCH customization pipeline: turning
// a static CCH plus original edge PLFs into a shortcut graph whose arcs each
// carry bounds, a source list, and (while retained) a cached travel-time
// function. The pipeline runs respecting, bounds-only pre-customization,
// perfect pre-customization, main customization, and perfect
// post-customization in sequence.
package customization

import "time"

// Options controls the approximation/scheduling knobs of a customization
// run. The zero value is not valid; use DefaultOptions.
type Options struct {
	// ApproxThreshold is the cached-PLF point count above which a shortcut's
	// exact function is replaced by an Imai-Iri lower/upper corridor.
	ApproxThreshold int
	// ApproxTolerance bounds the corridor's vertical error, in seconds.
	ApproxTolerance float64
	// SortTriangles enables the locality heuristic of ordering triangle
	// merges by the sum of their two legs' lower bounds before folding them
	// in, which tends to settle on a tight bound earlier and skip more
	// candidates via Shortcut.MergeBounds's early-out.
	SortTriangles bool
	// Workers bounds how many goroutines process a wavefront batch
	// concurrently. Zero means GOMAXPROCS.
	Workers int
	// OnPhase, if set, is called after each pipeline phase completes with
	// the phase's name and how long it took. Customize uses this to let a
	// caller (cmd/customize, wiring pkg/opsserver's Hub) observe progress
	// without this package importing any HTTP or websocket concern.
	OnPhase func(phase string, elapsed time.Duration)
}

// DefaultOptions returns the knobs used by cmd/customize unless overridden.
func DefaultOptions() Options {
	return Options{
		ApproxThreshold: 1000,
		ApproxTolerance: 1.0,
		SortTriangles:   true,
	}
}
