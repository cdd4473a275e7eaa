package customization

import (
	"github.com/tdcch/tdcch/pkg/shortcut"
	"github.com/tdcch/tdcch/pkg/tdgraph"
)

// A CCH arc (v, w) with rank(v) < rank(w) carries two shortcuts: the upward
// one realizes travel v->w, the downward one w->v. Both directions can
// appear as a leg of either direction's lower triangle (an upward shortcut's
// triangle is down-leg-then-up-leg, a downward shortcut's is up-leg-then-
// down-leg), so Source.Down/Source.Up must be able to name an arc in either
// plane and have shortcut.Graph.Evaluate resolve it through one shared Arcs
// slice. NewGraph below is the one place that convention is established:
// arcs [0, NumArcs) are the upward plane, [NumArcs, 2*NumArcs) the downward
// plane, addressed by PlaneArc.
const (
	PlaneUp = iota
	PlaneDown
)

// NewGraph allocates a combined up/down shortcut graph sized for a static
// CCH with numArcs arcs: 2*numArcs slots total.
func NewGraph(numArcs int, period float64) *shortcut.Graph {
	return shortcut.NewGraph(2*numArcs, period)
}

// PlaneArc maps a CCH arc id and a direction to the combined graph's arc
// index.
func PlaneArc(numArcs int, a tdgraph.ArcID, plane int) shortcut.ArcID {
	if plane == PlaneDown {
		return shortcut.ArcID(numArcs) + shortcut.ArcID(a)
	}
	return shortcut.ArcID(a)
}

// directionPlane returns the plane that realizes travel from a node ranked
// rankFrom to one ranked rankTo across the single CCH arc connecting them:
// up when travelling towards higher rank, down otherwise.
func directionPlane(rankFrom, rankTo uint32) int {
	if rankFrom < rankTo {
		return PlaneUp
	}
	return PlaneDown
}
