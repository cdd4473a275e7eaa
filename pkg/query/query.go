// Package query implements the CATCHUp relax phase: a Dijkstra/A* forward
// search restricted to the corridor pkg/corridor found, evaluating
// shortcut PLFs lazily and only where bounds cannot prune.
package query

import (
	"fmt"
	"math"

	"github.com/tdcch/tdcch/pkg/corridor"
	"github.com/tdcch/tdcch/pkg/customization"
	"github.com/tdcch/tdcch/pkg/shortcut"
	"github.com/tdcch/tdcch/pkg/stats"
	"github.com/tdcch/tdcch/pkg/tdgraph"
)

// Options controls optional relax-phase behavior.
type Options struct {
	// StallOnDemand is kept in the options but the relax loop does not read
	// it: no node is ever stalled, and setting it leaves the search
	// unchanged. Off by default; the relax loop rechecks stale heap entries
	// against the current best distance before expanding them.
	StallOnDemand bool
}

// DefaultOptions returns the zero-value Options (stalling disabled).
func DefaultOptions() Options { return Options{} }

type parentEdge struct {
	from  tdgraph.NodeID
	arc   tdgraph.ArcID
	plane int
}

// State holds the reusable per-query working set of a CATCHUp query: a
// corridor.State for the bidirectional elimination-tree search plus the
// forward relax phase's own distance array, predecessor array and heap.
type State struct {
	cch     *tdgraph.StaticCCH
	da      *tdgraph.DownAdjacency
	numArcs int
	opts    Options

	corridor *corridor.State

	dist        []float64
	parent      []parentEdge
	parentValid []bool
	touched     []tdgraph.NodeID
	heap        arrivalHeap

	lastDeparture float64
}

// NewState allocates a query state sized for cch, building the down-adjacency
// index once (the relax phase needs it to walk a node's downward corridor
// continuations; customization already builds an equivalent index per
// customization run, but queries are served long after that index is gone).
func NewState(cch *tdgraph.StaticCCH) *State {
	n := int(cch.NumNodes)
	st := &State{
		cch:         cch,
		da:          tdgraph.BuildDownAdjacency(cch),
		numArcs:     cch.NumArcs(),
		opts:        DefaultOptions(),
		corridor:    corridor.NewState(cch),
		dist:        make([]float64, n),
		parent:      make([]parentEdge, n),
		parentValid: make([]bool, n),
		touched:     make([]tdgraph.NodeID, 0, 128),
	}
	for i := range st.dist {
		st.dist[i] = math.Inf(1)
	}
	return st
}

// SetOptions replaces the relax phase's options.
func (st *State) SetOptions(o Options) { st.opts = o }

func (st *State) reset() {
	for _, v := range st.touched {
		st.dist[v] = math.Inf(1)
		st.parentValid[v] = false
	}
	st.touched = st.touched[:0]
	st.heap.Reset()
}

func (st *State) touch(v tdgraph.NodeID) {
	if math.IsInf(st.dist[v], 1) {
		st.touched = append(st.touched, v)
	}
}

// Distance runs a full CATCHUp query from s to t at the given departure
// time, returning the optimal travel time. The second return is false if s
// and t are not connected, surfaced as a plain negative result rather than
// an error.
func (st *State) Distance(g *shortcut.Graph, cch *tdgraph.StaticCCH, s, t tdgraph.NodeID, departure float64, orig shortcut.OriginalLookup) (float64, bool, error) {
	if cch != st.cch {
		return 0, false, fmt.Errorf("query: state built for a different CCH than the one supplied")
	}
	ok, err := st.corridor.Find(g, s, t)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}

	st.reset()
	st.lastDeparture = departure

	st.touch(s)
	st.dist[s] = 0
	st.heap.Push(s, st.corridor.LowerBoundToTarget(s))

	const eps = 1e-9
	for st.heap.Len() > 0 {
		item := st.heap.Pop()
		v := item.node
		pot := st.corridor.LowerBoundToTarget(v)
		if math.IsInf(pot, 1) {
			continue
		}
		if item.priority > st.dist[v]+pot+eps {
			continue // stale heap entry, already improved since this was pushed
		}
		if v == t {
			break
		}
		st.relax(g, v, departure, orig)
	}

	stats.Global.QueriesServed.Inc()
	if math.IsInf(st.dist[t], 1) {
		return 0, false, nil
	}
	return st.dist[t], true, nil
}

// relax expands v: every upward CCH arc the corridor marked relevant, plus
// every downward corridor-survivor arc out of v (i.e. where v is the head),
// continuing the search back down toward lower rank.
func (st *State) relax(g *shortcut.Graph, v tdgraph.NodeID, departure float64, orig shortcut.OriginalLookup) {
	for a := st.cch.FirstOut[v]; a < st.cch.FirstOut[v+1]; a++ {
		if !st.corridor.UpRelevant(a) {
			continue
		}
		st.relaxArc(g, v, st.cch.Head[a], a, customization.PlaneUp, departure, orig)
	}

	downArcs, downTails := st.da.Down(v)
	for i, a := range downArcs {
		if !st.corridor.DownRelevant(a) {
			continue
		}
		st.relaxArc(g, v, downTails[i], a, customization.PlaneDown, departure, orig)
	}
}

func (st *State) relaxArc(g *shortcut.Graph, v, w tdgraph.NodeID, a tdgraph.ArcID, plane int, departure float64, orig shortcut.OriginalLookup) {
	pot := st.corridor.LowerBoundToTarget(w)
	if math.IsInf(pot, 1) {
		return
	}
	arcIdx := customization.PlaneArc(st.numArcs, a, plane)
	arc := &g.Arcs[arcIdx]
	if math.IsInf(arc.LowerBound, 1) {
		return
	}
	if st.dist[v]+arc.LowerBound >= st.dist[w] {
		return // cannot possibly improve, skip the (potentially recursive) evaluation
	}
	val := g.Evaluate(arcIdx, departure+st.dist[v], orig)
	nd := st.dist[v] + val
	if nd < st.dist[w] {
		st.touch(w)
		st.dist[w] = nd
		st.parent[w] = parentEdge{from: v, arc: a, plane: plane}
		st.parentValid[w] = true
		st.heap.Push(w, nd+pot)
	}
}

// Path reconstructs the sequence of original edges realizing the optimal
// s-t path found by the most recent Distance call, by walking the predecessor
// chain from t back to s and unpacking each shortcut arc at the departure
// time the search actually used it.
func (st *State) Path(g *shortcut.Graph, t tdgraph.NodeID, orig shortcut.OriginalLookup) []shortcut.EdgeID {
	type step struct {
		from  tdgraph.NodeID
		arc   tdgraph.ArcID
		plane int
	}
	var steps []step
	cur := t
	for st.parentValid[cur] {
		p := st.parent[cur]
		steps = append(steps, step{p.from, p.arc, p.plane})
		cur = p.from
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}

	var edges []shortcut.EdgeID
	for _, s := range steps {
		tAt := st.lastDeparture + st.dist[s.from]
		arcIdx := customization.PlaneArc(st.numArcs, s.arc, s.plane)
		edges = append(edges, g.UnpackAt(arcIdx, tAt, orig)...)
	}
	return edges
}
