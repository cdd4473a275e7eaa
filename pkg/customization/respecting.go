package customization

import (
	"github.com/tdcch/tdcch/pkg/shortcut"
	"github.com/tdcch/tdcch/pkg/tdgraph"
)

// Respect builds the initial combined shortcut graph for cch: every CCH arc
// (v, w) that has a direct original-edge counterpart in either direction
// gets that edge's exact PLF; every other plane starts unreachable, to be
// filled in by main customization.
func Respect(g *tdgraph.TDGraph, cch *tdgraph.StaticCCH) (*shortcut.Graph, error) {
	numArcs := cch.NumArcs()
	sg := NewGraph(numArcs, float64(g.PeriodMillis)/1000.0)

	for v := tdgraph.NodeID(0); v < cch.NumNodes; v++ {
		for a := cch.FirstOut[v]; a < cch.FirstOut[v+1]; a++ {
			w := cch.Head[a]

			if e, ok := g.EdgeBetween(v, w); ok {
				f, err := g.PLFOf(e)
				if err != nil {
					return nil, err
				}
				sg.Arcs[PlaneArc(numArcs, a, PlaneUp)] = shortcut.NewOriginalExact(shortcut.EdgeID(e), f)
			}
			if e, ok := g.EdgeBetween(w, v); ok {
				f, err := g.PLFOf(e)
				if err != nil {
					return nil, err
				}
				sg.Arcs[PlaneArc(numArcs, a, PlaneDown)] = shortcut.NewOriginalExact(shortcut.EdgeID(e), f)
			}
		}
	}
	return sg, nil
}
