// Package tdgraph holds the static inputs to customization: the original
// time-dependent graph (original edges with their periodic PLFs) and the
// static CCH (elimination tree, node rank, chordal-supergraph adjacency).
// It also implements the binary input/output formats: a directory of raw
// arrays for input, and a single checksummed file for the customized
// shortcut-graph output.
package tdgraph

import (
	"fmt"

	"github.com/tdcch/tdcch/pkg/plf"
)

// EdgeID identifies a directed original edge (index into Head/FirstIPP).
type EdgeID = uint32

// NodeID identifies a node, shared between the original graph and the CCH.
type NodeID = uint32

// DefaultPeriodMillis is the compile-time default period, 24h in
// milliseconds.
const DefaultPeriodMillis = 86_400_000

// TDGraph is the original directed time-dependent graph: a CSR adjacency
// plus, for every arc, a concatenated table of interpolation points
// (departure/travel time in milliseconds) describing that arc's periodic
// PLF.
type TDGraph struct {
	NumNodes uint32
	FirstOut []uint32 // len NumNodes+1
	Head     []uint32 // len NumArcs

	FirstIPP []uint32 // len NumArcs+1, offsets into IPPAt/IPPVal
	IPPAt    []uint32 // milliseconds, concatenated per arc
	IPPVal   []uint32 // milliseconds, concatenated per arc

	// PeriodMillis is the wrap period shared by every arc's PLF.
	PeriodMillis uint32

	// Lat/Lon are optional, only used by pkg/testgraph fixture generation
	// and external visualization; nil if absent from the input.
	Lat []float32
	Lon []float32
}

// NumArcs returns the number of directed arcs in the graph.
func (g *TDGraph) NumArcs() int { return len(g.Head) }

// Validate checks the CSR and IPP invariants classified as MalformedInput:
// monotone FirstOut/FirstIPP, in-range Head, and a valid
// periodic PLF (first departure 0, last departure period, matching
// endpoint values, FIFO) for every arc.
func (g *TDGraph) Validate() error {
	n := g.NumNodes
	if uint32(len(g.FirstOut)) != n+1 {
		return fmt.Errorf("tdgraph: FirstOut length %d, want %d", len(g.FirstOut), n+1)
	}
	for i := uint32(1); i <= n; i++ {
		if g.FirstOut[i] < g.FirstOut[i-1] {
			return fmt.Errorf("tdgraph: FirstOut not monotone at %d", i)
		}
	}
	m := g.FirstOut[n]
	if uint32(len(g.Head)) != m {
		return fmt.Errorf("tdgraph: Head length %d, want FirstOut[n]=%d", len(g.Head), m)
	}
	for i, h := range g.Head {
		if h >= n {
			return fmt.Errorf("tdgraph: Head[%d]=%d out of range [0,%d)", i, h, n)
		}
	}
	if uint32(len(g.FirstIPP)) != m+1 {
		return fmt.Errorf("tdgraph: FirstIPP length %d, want %d", len(g.FirstIPP), m+1)
	}
	for e := uint32(0); e < m; e++ {
		if g.FirstIPP[e+1] < g.FirstIPP[e] {
			return fmt.Errorf("tdgraph: FirstIPP not monotone at arc %d", e)
		}
		if _, err := g.PLFOf(e); err != nil {
			return fmt.Errorf("tdgraph: arc %d: %w", e, err)
		}
	}
	return nil
}

// PLFOf reconstructs arc e's periodic PLF in seconds from its millisecond
// interpolation points.
func (g *TDGraph) PLFOf(e EdgeID) (plf.PLF, error) {
	lo, hi := g.FirstIPP[e], g.FirstIPP[e+1]
	n := hi - lo
	if n == 0 {
		return plf.PLF{}, fmt.Errorf("arc has no interpolation points")
	}
	period := float64(g.PeriodMillis) / 1000.0
	if n == 1 {
		return plf.NewConstant(float64(g.IPPVal[lo])/1000.0, period), nil
	}
	points := make([]plf.TTFPoint, n)
	for i := uint32(0); i < n; i++ {
		points[i] = plf.TTFPoint{
			At:  float64(g.IPPAt[lo+i]) / 1000.0,
			Val: float64(g.IPPVal[lo+i]) / 1000.0,
		}
	}
	return plf.NewPeriodic(points, period)
}

// EdgeBetween returns the arc id of u->v, if present. Head entries within a
// node's CSR range are assumed sorted ascending, as pkg/testgraph's Grid
// and FromOSM produce them.
func (g *TDGraph) EdgeBetween(u, v NodeID) (EdgeID, bool) {
	lo, hi := g.FirstOut[u], g.FirstOut[u+1]
	for lo < hi {
		mid := (lo + hi) / 2
		h := g.Head[mid]
		switch {
		case h == v:
			return mid, true
		case h < v:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return 0, false
}
