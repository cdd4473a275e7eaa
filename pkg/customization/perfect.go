package customization

import (
	"github.com/tdcch/tdcch/pkg/shortcut"
	"github.com/tdcch/tdcch/pkg/tdgraph"
)

// neighborMap materializes a head -> CCH-arc-id mapping of v's neighbors in
// either direction, used by perfect customization's triangle enumeration so
// intermediate/upper triangle checks ("is m also a neighbor of v") are O(1).
func neighborMap(cch *tdgraph.StaticCCH, da *tdgraph.DownAdjacency, v tdgraph.NodeID) map[tdgraph.NodeID]tdgraph.ArcID {
	m := make(map[tdgraph.NodeID]tdgraph.ArcID, 8)
	for a := cch.FirstOut[v]; a < cch.FirstOut[v+1]; a++ {
		m[cch.Head[a]] = a
	}
	downArcs, downTails := da.Down(v)
	for i, x := range downTails {
		m[x] = downArcs[i]
	}
	return m
}

// PerfectPreCustomize tightens bounds, for each node in reverse elimination
// order, over all intermediate and upper triangles through it: for every
// neighbor n of the current node v, every one of n's upward neighbors m that
// is also a neighbor of v forms a triangle (v, n, m), relaxed in whichever
// of the four orientations rank dictates.
func PerfectPreCustomize(g *shortcut.Graph, cch *tdgraph.StaticCCH, da *tdgraph.DownAdjacency) {
	numArcs := cch.NumArcs()
	rank := func(v tdgraph.NodeID) uint32 { return cch.Rank[v] }

	for r := int(cch.NumNodes) - 1; r >= 0; r-- {
		v := cch.Perm[r]
		neighbors := neighborMap(cch, da, v)
		for n, arcVN := range neighbors {
			for a := cch.FirstOut[n]; a < cch.FirstOut[n+1]; a++ {
				m := cch.Head[a]
				if m == v {
					continue
				}
				arcVM, ok := neighbors[m]
				if !ok {
					continue
				}
				relaxBounds(g, numArcs, rank, arcVM, v, m, arcVN, n, a)
			}
		}
	}
}

// PerfectPostCustomize repeats PerfectPreCustomize's enumeration with full
// PLFs once main customization has populated every arc, then propagates the
// Required flag from the elimination-tree parent arcs (always needed by
// corridor search) down through every triangle leg that a still-required
// arc's sources actually reference, and disables everything left
// unreferenced.
func PerfectPostCustomize(g *shortcut.Graph, cch *tdgraph.StaticCCH, da *tdgraph.DownAdjacency, origPLF shortcut.OriginalPLFLookup) error {
	numArcs := cch.NumArcs()
	rank := func(v tdgraph.NodeID) uint32 { return cch.Rank[v] }

	for r := int(cch.NumNodes) - 1; r >= 0; r-- {
		v := cch.Perm[r]
		neighbors := neighborMap(cch, da, v)
		for n, arcVN := range neighbors {
			for a := cch.FirstOut[n]; a < cch.FirstOut[n+1]; a++ {
				m := cch.Head[a]
				if m == v {
					continue
				}
				arcVM, ok := neighbors[m]
				if !ok {
					continue
				}
				if err := relaxPLF(g, numArcs, rank, g.Period, arcVM, v, m, arcVN, n, a, origPLF); err != nil {
					return err
				}
			}
		}
	}

	markRequired(g, cch, da)

	for i := range g.Arcs {
		g.Arcs[i].FinalizeBounds()
		g.Arcs[i].DisableIfUnnecessary()
	}
	return nil
}

// markRequired flags the elimination-tree parent arcs as required (corridor
// search always walks them), then, processing nodes from highest to lowest
// rank, propagates required-ness onto any triangle leg a required arc's
// current sources reference — by the time node v is visited every arc that
// could require one of v's arcs has already been visited, since a triangle
// leg always has strictly smaller rank than the arc it realizes.
func markRequired(g *shortcut.Graph, cch *tdgraph.StaticCCH, da *tdgraph.DownAdjacency) {
	numArcs := cch.NumArcs()
	for v := tdgraph.NodeID(0); v < cch.NumNodes; v++ {
		p := cch.Parent[v]
		if p == tdgraph.NoNode {
			continue
		}
		a, ok := cch.ArcBetween(v, p)
		if !ok {
			continue
		}
		g.Arcs[PlaneArc(numArcs, a, PlaneUp)].Required = true
		g.Arcs[PlaneArc(numArcs, a, PlaneDown)].Required = true
	}

	// A triangle leg always has a strictly smaller arc-rank than the arc it
	// realizes; using the head's node rank as that arc-rank surrogate,
	// visiting arcs in descending order of their head's rank (by visiting
	// nodes p from highest to lowest rank and, for each, its down-arcs,
	// i.e. the arcs headed at p) guarantees every arc that could still mark
	// a given arc Required has already been visited.
	for r := int(cch.NumNodes) - 1; r >= 0; r-- {
		p := cch.Perm[r]
		arcs, _ := da.Down(p)
		for _, a := range arcs {
			for _, plane := range [2]int{PlaneUp, PlaneDown} {
				s := &g.Arcs[PlaneArc(numArcs, a, plane)]
				if !s.Required {
					continue
				}
				for _, iv := range s.Sources {
					if iv.Src.Kind != shortcut.KindTriangle {
						continue
					}
					g.Arcs[iv.Src.Down].Reenable()
					g.Arcs[iv.Src.Up].Reenable()
				}
			}
		}
	}
}
