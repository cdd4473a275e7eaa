package customization

import (
	"github.com/tdcch/tdcch/pkg/shortcut"
	"github.com/tdcch/tdcch/pkg/tdgraph"
)

// rankFunc looks up a node's elimination rank.
type rankFunc func(tdgraph.NodeID) uint32

// relaxBounds folds the bound-only contribution of the two-leg path
// a -> b -> c into the direct arc connecting a and c, in both directions,
// via Shortcut.MergeBounds. a, b, c are mutually distinct nodes all
// pairwise connected by a CCH arc (arcAC between a and c, arcAB between a
// and b, arcBC between b and c); which plane of each arc realizes which
// direction of travel is derived from rank alone, so the same code handles
// all four triangle orientations (up-up, up-down, down-up, down-down) used
// by perfect pre/post-customization as well as the lower-triangle case used
// by bounds-only pre-customization and main customization.
func relaxBounds(g *shortcut.Graph, numArcs int, rank rankFunc,
	arcAC tdgraph.ArcID, a, c tdgraph.NodeID,
	arcAB tdgraph.ArcID, b tdgraph.NodeID,
	arcBC tdgraph.ArcID) bool {

	rA, rB, rC := rank(a), rank(b), rank(c)
	legAB := PlaneArc(numArcs, arcAB, directionPlane(rA, rB))
	legBA := PlaneArc(numArcs, arcAB, directionPlane(rB, rA))
	legBC := PlaneArc(numArcs, arcBC, directionPlane(rB, rC))
	legCB := PlaneArc(numArcs, arcBC, directionPlane(rC, rB))

	ab, ba := &g.Arcs[legAB], &g.Arcs[legBA]
	bc, cb := &g.Arcs[legBC], &g.Arcs[legCB]

	ac := &g.Arcs[PlaneArc(numArcs, arcAC, directionPlane(rA, rC))]
	ca := &g.Arcs[PlaneArc(numArcs, arcAC, directionPlane(rC, rA))]

	improvedAC := ac.MergeBounds(ab.LowerBound, ab.UpperBound, bc.LowerBound, bc.UpperBound, shortcut.TriangleSource(legAB, legBC))
	improvedCA := ca.MergeBounds(cb.LowerBound, cb.UpperBound, ba.LowerBound, ba.UpperBound, shortcut.TriangleSource(legCB, legBA))
	return improvedAC || improvedCA
}

// relaxPLF is relaxBounds's full-function counterpart: it links and merges
// the two legs' functions into the direct arc, in both directions, via
// Shortcut.MergePLF — which falls back to origPLF-driven exact
// reconstruction for any leg whose cache holds only an approximated
// corridor. Both legs must already carry a cached ATTF; callers are
// responsible for only calling this once that precondition holds (main
// customization's ascending wavefront order guarantees it for the
// lower-triangle case; perfect post-customization runs after main
// customization has populated every required arc).
func relaxPLF(g *shortcut.Graph, numArcs int, rank rankFunc, period float64,
	arcAC tdgraph.ArcID, a, c tdgraph.NodeID,
	arcAB tdgraph.ArcID, b tdgraph.NodeID,
	arcBC tdgraph.ArcID, origPLF shortcut.OriginalPLFLookup) error {

	rA, rB, rC := rank(a), rank(b), rank(c)
	legAB := PlaneArc(numArcs, arcAB, directionPlane(rA, rB))
	legBA := PlaneArc(numArcs, arcAB, directionPlane(rB, rA))
	legBC := PlaneArc(numArcs, arcBC, directionPlane(rB, rC))
	legCB := PlaneArc(numArcs, arcBC, directionPlane(rC, rB))

	ab, ba := &g.Arcs[legAB], &g.Arcs[legBA]
	bc, cb := &g.Arcs[legBC], &g.Arcs[legCB]

	if ab.Cached != nil && bc.Cached != nil && !ab.IsUnreachable() && !bc.IsUnreachable() {
		legAC := PlaneArc(numArcs, arcAC, directionPlane(rA, rC))
		ac := &g.Arcs[legAC]
		if err := ac.MergePLF(g, legAC, legAB, legBC, ab, bc, shortcut.TriangleSource(legAB, legBC), period, origPLF); err != nil {
			return err
		}
	}
	if cb.Cached != nil && ba.Cached != nil && !cb.IsUnreachable() && !ba.IsUnreachable() {
		legCA := PlaneArc(numArcs, arcAC, directionPlane(rC, rA))
		ca := &g.Arcs[legCA]
		if err := ca.MergePLF(g, legCA, legCB, legBA, cb, ba, shortcut.TriangleSource(legCB, legBA), period, origPLF); err != nil {
			return err
		}
	}
	return nil
}

// lowerTriangleLegs enumerates, for CCH arc a = (v, w) with rank(v) <
// rank(w), every common down-neighbor x of v and w: a node with arc (x, v)
// and arc (x, w) both present, found by a linear merge of the two sorted
// down-neighborhoods of v and w.
func lowerTriangleLegs(da *tdgraph.DownAdjacency, v, w tdgraph.NodeID) (legsV, legsW []tdgraph.ArcID, mids []tdgraph.NodeID) {
	vArcs, vTails := da.Down(v)
	wArcs, wTails := da.Down(w)
	i, j := 0, 0
	for i < len(vTails) && j < len(wTails) {
		switch {
		case vTails[i] < wTails[j]:
			i++
		case vTails[i] > wTails[j]:
			j++
		default:
			legsV = append(legsV, vArcs[i])
			legsW = append(legsW, wArcs[j])
			mids = append(mids, vTails[i])
			i++
			j++
		}
	}
	return legsV, legsW, mids
}
