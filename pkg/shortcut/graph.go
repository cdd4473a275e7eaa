package shortcut

import (
	"fmt"
	"math"

	"github.com/tdcch/tdcch/pkg/plf"
)

// maxUnpackDepth bounds recursive reconstruction. The strict rank-decrease
// invariant on triangle sources (Down and Up always have a smaller
// contraction rank than the arc they realize) makes the source graph a DAG,
// so recursion always terminates well under this bound; hitting it means
// the invariant was violated upstream and is reported as such rather than
// silently looping or overflowing the stack.
const maxUnpackDepth = 256

// OriginalLookup evaluates an input edge's own (possibly time-dependent)
// travel time at departure time t. The caller (pkg/tdgraph) supplies this;
// pkg/shortcut has no notion of the original graph's storage layout.
type OriginalLookup func(e EdgeID, t plf.Timestamp) plf.Weight

// OriginalPLFLookup returns an input edge's own exact periodic travel-time
// function. Unlike OriginalLookup's single-point evaluation, this is needed
// whenever a full function has to be rebuilt from scratch: reconstructing a
// shortcut's exact travel-time function requires the true original-edge
// PLFs at its leaves, not just point samples of them.
type OriginalPLFLookup func(e EdgeID) (plf.PLF, error)

// Graph is the mutable array of per-arc customization state indexed by
// ArcID, plus the shared wrap period every cached PLF and Sources list is
// defined over.
type Graph struct {
	Arcs   []Shortcut
	Period float64
}

// NewGraph allocates a graph of n unreachable arcs.
func NewGraph(n int, period float64) *Graph {
	arcs := make([]Shortcut, n)
	for i := range arcs {
		arcs[i] = NewUnreachable()
	}
	return &Graph{Arcs: arcs, Period: period}
}

// InvariantError reports a violated structural invariant discovered while
// reconstructing a shortcut's realized value, carrying enough context to
// diagnose it: violations must crash with diagnostic context, not fail
// silently.
type InvariantError struct {
	Arc   ArcID
	Depth int
	Msg   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("shortcut: invariant violated at arc %d (depth %d): %s", e.Arc, e.Depth, e.Msg)
}

// Evaluate returns the realized travel time of arc at departure time t,
// using the cached exact PLF when present and otherwise reconstructing it
// lazily by following the Sources list: an original edge is looked up
// directly, a triangle is resolved by evaluating its down-arc, then its
// up-arc at the shifted arrival time, and summing.
//
// Evaluate panics with an *InvariantError if the source graph is not a DAG
// (recursion depth exceeds maxUnpackDepth) or a NaN value is produced —
// both indicate upstream data or customization bugs, not ordinary runtime
// conditions, per the InvariantViolated error kind.
func (g *Graph) Evaluate(arc ArcID, t plf.Timestamp, orig OriginalLookup) plf.Weight {
	return g.evaluate(arc, t, orig, 0)
}

func (g *Graph) evaluate(arc ArcID, t plf.Timestamp, orig OriginalLookup, depth int) plf.Weight {
	if depth > maxUnpackDepth {
		panic(&InvariantError{Arc: arc, Depth: depth, Msg: "unpack recursion exceeded maxUnpackDepth; source graph is not a DAG"})
	}
	s := &g.Arcs[arc]
	if s.Cached != nil && s.Cached.Exact {
		v := s.Cached.ExactFn.Eval(t)
		if math.IsNaN(v) {
			panic(&InvariantError{Arc: arc, Depth: depth, Msg: "cached PLF evaluated to NaN"})
		}
		return v
	}

	src := s.Sources.At(t, g.Period)
	switch src.Kind {
	case KindNone:
		return math.Inf(1)
	case KindOriginalEdge:
		return orig(src.OriginalEdge, t)
	case KindTriangle:
		downVal := g.evaluate(src.Down, t, orig, depth+1)
		if math.IsInf(downVal, 1) {
			return math.Inf(1)
		}
		upVal := g.evaluate(src.Up, t+downVal, orig, depth+1)
		total := downVal + upVal
		if math.IsNaN(total) {
			panic(&InvariantError{Arc: arc, Depth: depth, Msg: "triangle sum produced NaN"})
		}
		return total
	default:
		panic(&InvariantError{Arc: arc, Depth: depth, Msg: fmt.Sprintf("unknown source kind %d", src.Kind)})
	}
}

// UnpackAt returns the sequence of original edges realizing arc at
// departure time t, in travel order.
func (g *Graph) UnpackAt(arc ArcID, t plf.Timestamp, orig OriginalLookup) []EdgeID {
	return g.unpackAt(arc, t, orig, 0)
}

func (g *Graph) unpackAt(arc ArcID, t plf.Timestamp, orig OriginalLookup, depth int) []EdgeID {
	if depth > maxUnpackDepth {
		panic(&InvariantError{Arc: arc, Depth: depth, Msg: "unpack recursion exceeded maxUnpackDepth; source graph is not a DAG"})
	}
	s := &g.Arcs[arc]
	src := s.Sources.At(t, g.Period)
	switch src.Kind {
	case KindOriginalEdge:
		return []EdgeID{src.OriginalEdge}
	case KindTriangle:
		downEdges := g.unpackAt(src.Down, t, orig, depth+1)
		downVal := g.evaluate(src.Down, t, orig, depth+1)
		upEdges := g.unpackAt(src.Up, t+downVal, orig, depth+1)
		return append(downEdges, upEdges...)
	default:
		panic(&InvariantError{Arc: arc, Depth: depth, Msg: "unpack reached an unrealizable (KindNone) arc"})
	}
}

// ReconstructExactTTF rebuilds arc's true travel-time function from scratch
// by descending through its Sources, ignoring whatever is currently cached
// (which may be an Imai-Iri approximation, not the exact function). It is
// the fallback MergePLF uses whenever a triangle leg is approximated, since
// linking or merging that leg's upper-corridor function as if it were exact
// would silently propagate the approximation error upward.
//
// An original edge contributes its own exact PLF; a triangle contributes
// the link of its down- and up-arc's own exact reconstructions. When a
// shortcut's Sources list has more than one validity interval (the merge
// that produced it had more than one witness crossing), each interval's
// source is reconstructed in full and then clipped to its governing
// sub-range before the pieces are stitched back into one periodic function.
func (g *Graph) ReconstructExactTTF(arc ArcID, origPLF OriginalPLFLookup) (plf.PLF, error) {
	return g.reconstructExactTTF(arc, origPLF, 0)
}

func (g *Graph) reconstructExactTTF(arc ArcID, origPLF OriginalPLFLookup, depth int) (plf.PLF, error) {
	if depth > maxUnpackDepth {
		return plf.PLF{}, &InvariantError{Arc: arc, Depth: depth, Msg: "reconstruct recursion exceeded maxUnpackDepth; source graph is not a DAG"}
	}
	s := &g.Arcs[arc]
	if plf.FuzzyEq(s.LowerBound, s.UpperBound) {
		return plf.NewConstant(s.LowerBound, g.Period), nil
	}
	switch len(s.Sources) {
	case 0:
		return plf.PLF{}, &InvariantError{Arc: arc, Depth: depth, Msg: "reconstruct reached an arc with no sources"}
	case 1:
		return g.reconstructSource(s.Sources[0].Src, origPLF, depth)
	default:
		return g.stitchSources(s.Sources, origPLF, depth)
	}
}

// reconstructSource reconstructs src's own exact function over the whole
// period, independent of any sub-range it happens to be valid over within
// its owning shortcut's Sources list.
func (g *Graph) reconstructSource(src Source, origPLF OriginalPLFLookup, depth int) (plf.PLF, error) {
	switch src.Kind {
	case KindOriginalEdge:
		f, err := origPLF(src.OriginalEdge)
		if err != nil {
			return plf.PLF{}, fmt.Errorf("shortcut: reconstruct original edge %d: %w", src.OriginalEdge, err)
		}
		return f, nil
	case KindTriangle:
		down, err := g.reconstructExactTTF(src.Down, origPLF, depth+1)
		if err != nil {
			return plf.PLF{}, err
		}
		up, err := g.reconstructExactTTF(src.Up, origPLF, depth+1)
		if err != nil {
			return plf.PLF{}, err
		}
		return plf.Link(down, up, g.Period), nil
	default:
		return plf.PLF{}, &InvariantError{Depth: depth, Msg: "reconstruct reached an unrealizable (KindNone) source"}
	}
}

// stitchSources reconstructs each interval's source in full, clips it to
// the sub-range that interval governs, and concatenates the pieces into one
// periodic function covering [0, Period).
func (g *Graph) stitchSources(sources Sources, origPLF OriginalPLFLookup, depth int) (plf.PLF, error) {
	var pts []plf.TTFPoint
	for i, iv := range sources {
		to := g.Period
		if i+1 < len(sources) {
			to = sources[i+1].From
		}
		full, err := g.reconstructSource(iv.Src, origPLF, depth)
		if err != nil {
			return plf.PLF{}, err
		}
		piece := full.PartialFn(iv.From, to)
		for _, p := range piece.Points {
			if len(pts) > 0 && plf.FuzzyEq(p.At, pts[len(pts)-1].At) {
				continue
			}
			pts = append(pts, p)
		}
	}
	r, err := plf.NewPeriodic(pts, g.Period)
	if err != nil {
		// Floating-point drift at the wrap boundary; force exact closure,
		// same fallback Link/Merge use.
		pts[0].Val = pts[len(pts)-1].Val
		r, err = plf.NewPeriodic(pts, g.Period)
		if err != nil {
			return plf.PLF{}, fmt.Errorf("shortcut: stitch reconstructed sources: %w", err)
		}
	}
	return r, nil
}
