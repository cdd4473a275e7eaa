// Package corridor implements the elimination-tree corridor search: given a
// source and target node, it walks both upward in the static CCH's
// elimination tree to find meeting nodes and prune the set of shortcut arcs
// the later CATCHUp relax phase needs to consider, plus a per-node
// lower-bound-to-target estimate used as its A* potential.
package corridor

import (
	"fmt"
	"math"

	"github.com/tdcch/tdcch/pkg/customization"
	"github.com/tdcch/tdcch/pkg/shortcut"
	"github.com/tdcch/tdcch/pkg/tdgraph"
)

// State holds the reusable per-query working set of a corridor search: two
// independent bound-only sweeps (forward from the source, backward from the
// target) and the corridor they produce. A State is cheap to reuse across
// queries via Reset, which only touches the nodes and arcs a previous search
// actually visited.
//
// The forward sweep computes, for every node v it reaches, an admissible
// (lower, upper) bound on the travel time from s to v: it walks the CCH's
// upward arcs in ascending rank order, relaxing each tail's own arcs (a
// plain topological sweep, since every arc strictly increases rank).
//
// The backward sweep computes the same pair for v to t, but needs the
// opposite topological direction: reaching v from t means finding which
// lower-rank nodes v's own arcs are headed at — that's asking "who points
// at t" transitively, i.e. walking v's *down*-neighbors (tdgraph.DownAdjacency)
// using those arcs' up-plane bound (the original direction u->v), processing
// nodes in *descending* rank order so that every higher-rank contributor to
// a node is settled before that node is.
type State struct {
	cch     *tdgraph.StaticCCH
	da      *tdgraph.DownAdjacency
	numArcs int

	fwdLB, fwdUB []float64
	bwdLB, bwdUB []float64
	fwdTouched   []bool
	bwdTouched   []bool
	fwdPopped    []bool
	bwdPopped    []bool
	heap         rankHeap

	upRelevant         []bool
	downRelevant       []bool
	lowerBoundToTarget []float64

	touchedNodes []tdgraph.NodeID
	touchedArcs  []tdgraph.ArcID

	meeting    []tdgraph.NodeID
	upperBound float64
	reachable  bool
}

// NewState allocates a corridor search state sized for cch.
func NewState(cch *tdgraph.StaticCCH) *State {
	n := int(cch.NumNodes)
	numArcs := cch.NumArcs()
	st := &State{
		cch:                cch,
		da:                 tdgraph.BuildDownAdjacency(cch),
		numArcs:            numArcs,
		fwdLB:              make([]float64, n),
		fwdUB:              make([]float64, n),
		bwdLB:              make([]float64, n),
		bwdUB:              make([]float64, n),
		fwdTouched:         make([]bool, n),
		bwdTouched:         make([]bool, n),
		fwdPopped:          make([]bool, n),
		bwdPopped:          make([]bool, n),
		upRelevant:         make([]bool, numArcs),
		downRelevant:       make([]bool, numArcs),
		lowerBoundToTarget: make([]float64, n),
		touchedNodes:       make([]tdgraph.NodeID, 0, 128),
		touchedArcs:        make([]tdgraph.ArcID, 0, 128),
	}
	for i := range st.lowerBoundToTarget {
		st.lowerBoundToTarget[i] = math.Inf(1)
	}
	return st
}

// Reset clears only the nodes and arcs touched by the previous search.
func (st *State) Reset() {
	for _, v := range st.touchedNodes {
		st.fwdTouched[v] = false
		st.bwdTouched[v] = false
		st.fwdPopped[v] = false
		st.bwdPopped[v] = false
		st.lowerBoundToTarget[v] = math.Inf(1)
	}
	for _, a := range st.touchedArcs {
		st.upRelevant[a] = false
		st.downRelevant[a] = false
	}
	st.touchedNodes = st.touchedNodes[:0]
	st.touchedArcs = st.touchedArcs[:0]
	st.meeting = st.meeting[:0]
	st.heap.Reset()
	st.upperBound = math.Inf(1)
	st.reachable = false
}

// UpRelevant reports whether a's upward shortcut is on the corridor.
func (st *State) UpRelevant(a tdgraph.ArcID) bool { return st.upRelevant[a] }

// DownRelevant reports whether a's downward shortcut is on the corridor.
func (st *State) DownRelevant(a tdgraph.ArcID) bool { return st.downRelevant[a] }

// LowerBoundToTarget returns the A* potential at v: an admissible lower
// bound on the remaining travel time from v to the query's target. Nodes
// the backward sweep never reached return +Inf.
func (st *State) LowerBoundToTarget(v tdgraph.NodeID) float64 { return st.lowerBoundToTarget[v] }

// MeetingNodes returns the nodes visited by both sweeps whose combined
// lower bound did not exceed the final upper bound.
func (st *State) MeetingNodes() []tdgraph.NodeID { return st.meeting }

// UpperBound returns the tightest upper bound on the s-t travel time found
// during the search. +Inf if Find found no meeting node.
func (st *State) UpperBound() float64 { return st.upperBound }

func (st *State) touchNode(v tdgraph.NodeID) {
	if !st.fwdTouched[v] && !st.bwdTouched[v] {
		st.touchedNodes = append(st.touchedNodes, v)
	}
}

func (st *State) touchArc(a tdgraph.ArcID) {
	if !st.upRelevant[a] && !st.downRelevant[a] {
		st.touchedArcs = append(st.touchedArcs, a)
	}
}

// Find runs the bidirectional bound-only sweep from s to t and, if a
// meeting node is found, extracts the corridor. It returns false if s and t
// are not connected by any CCH path, surfaced as a plain negative result
// rather than an error.
func (st *State) Find(g *shortcut.Graph, s, t tdgraph.NodeID) (bool, error) {
	if s >= st.cch.NumNodes || t >= st.cch.NumNodes {
		return false, fmt.Errorf("corridor: node out of range")
	}
	st.Reset()

	st.fwdTouched[s] = true
	st.fwdLB[s], st.fwdUB[s] = 0, 0
	st.touchNode(s)
	st.heap.Push(s, st.cch.Rank[s])
	st.sweepForward(g)

	st.bwdTouched[t] = true
	st.bwdLB[t], st.bwdUB[t] = 0, 0
	st.touchNode(t)
	st.heap.Push(t, st.cch.NumNodes-1-st.cch.Rank[t])
	st.sweepBackward(g)

	ub := math.Inf(1)
	for _, v := range st.touchedNodes {
		if st.fwdTouched[v] && st.bwdTouched[v] {
			if cand := st.fwdUB[v] + st.bwdUB[v]; cand < ub {
				ub = cand
			}
		}
	}
	st.upperBound = ub
	if math.IsInf(ub, 1) {
		st.reachable = false
		return false, nil
	}

	for _, v := range st.touchedNodes {
		if st.fwdTouched[v] && st.bwdTouched[v] && st.fwdLB[v]+st.bwdLB[v] <= ub+1e-9 {
			st.meeting = append(st.meeting, v)
		}
	}

	st.extractCorridor(g, ub)
	st.reachable = true
	return true, nil
}

// sweepForward drains st.heap (seeded with s) processing nodes in ascending
// rank order: for each popped v, every upward CCH arc out of v is relaxed
// using its up-plane bound, extending the s->v bound to v's head.
func (st *State) sweepForward(g *shortcut.Graph) {
	for st.heap.Len() > 0 {
		v := st.heap.Pop()
		if st.fwdPopped[v] {
			continue
		}
		st.fwdPopped[v] = true

		for a := st.cch.FirstOut[v]; a < st.cch.FirstOut[v+1]; a++ {
			w := st.cch.Head[a]
			arc := &g.Arcs[customization.PlaneArc(st.numArcs, a, customization.PlaneUp)]
			if math.IsInf(arc.LowerBound, 1) {
				continue
			}
			st.touchArc(a)
			newLB := st.fwdLB[v] + arc.LowerBound
			newUB := st.fwdUB[v] + arc.UpperBound
			if !st.fwdTouched[w] {
				st.fwdTouched[w] = true
				st.touchNode(w)
				st.fwdLB[w], st.fwdUB[w] = newLB, newUB
				st.heap.Push(w, st.cch.Rank[w])
			} else {
				if newLB < st.fwdLB[w] {
					st.fwdLB[w] = newLB
				}
				if newUB < st.fwdUB[w] {
					st.fwdUB[w] = newUB
				}
			}
		}
	}
}

// sweepBackward drains st.heap (seeded with t, keyed by inverted rank so the
// same ascending min-heap pops in descending real-rank order): for each
// popped v, every down-neighbor u of v is relaxed using arc (u,v)'s
// up-plane bound (the physical direction u->v), extending the v->t bound
// down to u.
func (st *State) sweepBackward(g *shortcut.Graph) {
	for st.heap.Len() > 0 {
		v := st.heap.Pop()
		if st.bwdPopped[v] {
			continue
		}
		st.bwdPopped[v] = true

		arcs, tails := st.da.Down(v)
		for i, a := range arcs {
			u := tails[i]
			arc := &g.Arcs[customization.PlaneArc(st.numArcs, a, customization.PlaneUp)]
			if math.IsInf(arc.LowerBound, 1) {
				continue
			}
			st.touchArc(a)
			newLB := st.bwdLB[v] + arc.LowerBound
			newUB := st.bwdUB[v] + arc.UpperBound
			if !st.bwdTouched[u] {
				st.bwdTouched[u] = true
				st.touchNode(u)
				st.bwdLB[u], st.bwdUB[u] = newLB, newUB
				st.heap.Push(u, st.cch.NumNodes-1-st.cch.Rank[u])
			} else {
				if newLB < st.bwdLB[u] {
					st.bwdLB[u] = newLB
				}
				if newUB < st.bwdUB[u] {
					st.bwdUB[u] = newUB
				}
			}
		}
	}
}

// extractCorridor keeps exactly the arcs whose best-case combined distance —
// one side's finalized lower bound at one endpoint, the arc's own lower
// bound, and the other side's finalized lower bound at the other endpoint —
// still fits within the query's final upper bound; any arc failing that
// admissible test cannot lie on a near-optimal s-t path. The A* potential
// at every backward-reached node is simply its finalized backward lower
// bound, already the tightest admissible remaining-distance estimate the
// backward sweep computes.
func (st *State) extractCorridor(g *shortcut.Graph, ub float64) {
	for _, u := range st.touchedNodes {
		if !st.fwdTouched[u] {
			continue
		}
		for a := st.cch.FirstOut[u]; a < st.cch.FirstOut[u+1]; a++ {
			w := st.cch.Head[a]
			if !st.bwdTouched[w] {
				continue
			}
			arc := &g.Arcs[customization.PlaneArc(st.numArcs, a, customization.PlaneUp)]
			if st.fwdLB[u]+arc.LowerBound+st.bwdLB[w] <= ub+1e-9 {
				st.upRelevant[a] = true
			}
		}
	}

	for _, w := range st.touchedNodes {
		if !st.fwdTouched[w] {
			continue
		}
		arcs, tails := st.da.Down(w)
		for i, a := range arcs {
			u := tails[i]
			if !st.bwdTouched[u] {
				continue
			}
			arc := &g.Arcs[customization.PlaneArc(st.numArcs, a, customization.PlaneDown)]
			if st.fwdLB[w]+arc.LowerBound+st.bwdLB[u] <= ub+1e-9 {
				st.downRelevant[a] = true
			}
		}
	}

	for _, v := range st.touchedNodes {
		if st.bwdTouched[v] {
			st.lowerBoundToTarget[v] = st.bwdLB[v]
		}
	}
}
