package shortcut

import (
	"fmt"
	"math"
	"testing"

	"github.com/tdcch/tdcch/pkg/plf"
)

func TestSourcesAtWraps(t *testing.T) {
	s := Sources{
		{From: 0, Src: OriginalEdgeSource(1)},
		{From: 3600, Src: OriginalEdgeSource(2)},
		{From: 7200, Src: OriginalEdgeSource(3)},
	}
	cases := []struct {
		t    plf.Timestamp
		want EdgeID
	}{
		{0, 1}, {1800, 1}, {3600, 2}, {5000, 2}, {7200, 3}, {80000, 3}, {-1, 3},
	}
	for _, c := range cases {
		got := s.At(c.t, 86400)
		if got.Kind != KindOriginalEdge || got.OriginalEdge != c.want {
			t.Errorf("At(%v) = %v, want edge %d", c.t, got, c.want)
		}
	}
}

func TestSourcesValidate(t *testing.T) {
	good := Single(OriginalEdgeSource(1))
	if err := good.Validate(); err != nil {
		t.Errorf("unexpected error on valid Sources: %v", err)
	}
	bad := Sources{{From: 10, Src: OriginalEdgeSource(1)}}
	if err := bad.Validate(); err == nil {
		t.Error("expected error: first entry not at From=0")
	}
	badOrder := Sources{{From: 0, Src: OriginalEdgeSource(1)}, {From: 0, Src: OriginalEdgeSource(2)}}
	if err := badOrder.Validate(); err == nil {
		t.Error("expected error: non-increasing From values")
	}
}

func TestNewOriginalIsReachable(t *testing.T) {
	s := NewOriginal(5, 100, 150)
	if s.IsUnreachable() {
		t.Error("original-edge shortcut should be reachable")
	}
	if s.Sources.At(0, 86400).Kind != KindOriginalEdge {
		t.Error("expected KindOriginalEdge source")
	}
}

func TestMergeBoundsPrunesWorseCandidate(t *testing.T) {
	s := NewOriginal(1, 100, 100)
	improved := s.MergeBounds(500, 600, 500, 600, TriangleSource(0, 1))
	if improved {
		t.Error("candidate with worse lower bound than current upper bound should be pruned")
	}
	if s.UpperBound != 100 {
		t.Errorf("UpperBound should be unchanged, got %v", s.UpperBound)
	}
}

func TestMergeBoundsTightensUpper(t *testing.T) {
	s := NewUnreachable()
	improved := s.MergeBounds(40, 60, 30, 50, TriangleSource(2, 3))
	if !improved {
		t.Fatal("expected improvement from unreachable state")
	}
	if s.UpperBound != 110 {
		t.Errorf("UpperBound = %v, want 110", s.UpperBound)
	}
	if s.LowerBound != 70 {
		t.Errorf("LowerBound = %v, want 70", s.LowerBound)
	}
}

// noOrigPLF is a stand-in OriginalPLFLookup for tests whose shortcuts never
// need to reconstruct an original edge (every operand is either exact
// already or a triangle over exact legs).
func noOrigPLF(e EdgeID) (plf.PLF, error) {
	return plf.PLF{}, fmt.Errorf("unexpected original edge lookup for edge %d", e)
}

func TestMergePLFFirstCandidateBecomesCached(t *testing.T) {
	downPLF, _ := plf.NewPeriodic([]plf.TTFPoint{{At: 0, Val: 100}, {At: 86400, Val: 100}}, 86400)
	upPLF, _ := plf.NewPeriodic([]plf.TTFPoint{{At: 0, Val: 200}, {At: 86400, Val: 200}}, 86400)

	g := NewGraph(3, 86400)
	g.Arcs[0] = NewOriginalExact(1, downPLF)
	g.Arcs[1] = NewOriginalExact(2, upPLF)
	g.Arcs[2] = NewUnreachable()

	s := &g.Arcs[2]
	if err := s.MergePLF(g, 2, 0, 1, &g.Arcs[0], &g.Arcs[1], TriangleSource(0, 1), 86400, noOrigPLF); err != nil {
		t.Fatalf("MergePLF: %v", err)
	}

	if s.Cached == nil {
		t.Fatal("expected a cached PLF after first merge")
	}
	if got := s.Cached.ExactFn.Eval(0); !plf.FuzzyEq(got, 300) {
		t.Errorf("merged value = %v, want 300", got)
	}
	if s.Sources.At(0, 86400).Kind != KindTriangle {
		t.Error("expected KindTriangle source after merge")
	}
}

func TestMergePLFKeepsBetterOfTwoCandidates(t *testing.T) {
	downPLF, _ := plf.NewPeriodic([]plf.TTFPoint{{At: 0, Val: 100}, {At: 86400, Val: 100}}, 86400)
	upPLF, _ := plf.NewPeriodic([]plf.TTFPoint{{At: 0, Val: 200}, {At: 86400, Val: 200}}, 86400)
	worseDownPLF, _ := plf.NewPeriodic([]plf.TTFPoint{{At: 0, Val: 500}, {At: 86400, Val: 500}}, 86400)

	g := NewGraph(4, 86400)
	g.Arcs[0] = NewOriginalExact(1, downPLF)
	g.Arcs[1] = NewOriginalExact(2, upPLF)
	g.Arcs[2] = NewOriginalExact(3, worseDownPLF)
	g.Arcs[3] = NewUnreachable()

	s := &g.Arcs[3]
	if err := s.MergePLF(g, 3, 2, 1, &g.Arcs[2], &g.Arcs[1], TriangleSource(2, 1), 86400, noOrigPLF); err != nil { // 700
		t.Fatalf("MergePLF: %v", err)
	}
	if err := s.MergePLF(g, 3, 0, 1, &g.Arcs[0], &g.Arcs[1], TriangleSource(0, 1), 86400, noOrigPLF); err != nil { // 300, should win
		t.Fatalf("MergePLF: %v", err)
	}

	if got := s.Cached.ExactFn.Eval(0); !plf.FuzzyEq(got, 300) {
		t.Errorf("after merging both candidates, value = %v, want 300 (the better one)", got)
	}
}

// TestMergePLFReconstructsApproximatedLeg verifies MergePLF never folds an
// approximated leg's lossy upper corridor directly into a merge: the
// produced value must match the true (exact) function, not the inflated
// corridor bound.
func TestMergePLFReconstructsApproximatedLeg(t *testing.T) {
	pts := make([]plf.TTFPoint, 0, 9)
	for i := 0; i <= 8; i++ {
		v := 100.0
		if i%2 == 1 {
			v = 140.0
		}
		pts = append(pts, plf.TTFPoint{At: float64(i) * 10800, Val: v})
	}
	pts[0].Val = pts[len(pts)-1].Val
	downPLF, err := plf.NewPeriodic(pts, 86400)
	if err != nil {
		t.Fatalf("NewPeriodic: %v", err)
	}
	upPLF, _ := plf.NewPeriodic([]plf.TTFPoint{{At: 0, Val: 1000}, {At: 86400, Val: 1000}}, 86400)

	g := NewGraph(3, 86400)
	g.Arcs[0] = NewOriginalExact(1, downPLF)
	g.Arcs[0].Approximate(4, 50) // force an Imai-Iri corridor wide enough to be visibly lossy
	if g.Arcs[0].Cached.Exact {
		t.Fatal("test setup: expected the down leg to be approximated")
	}
	g.Arcs[1] = NewOriginalExact(2, upPLF)
	g.Arcs[2] = NewUnreachable()

	origPLF := func(e EdgeID) (plf.PLF, error) {
		if e == 1 {
			return downPLF, nil
		}
		return plf.PLF{}, fmt.Errorf("unexpected original edge %d", e)
	}

	s := &g.Arcs[2]
	if err := s.MergePLF(g, 2, 0, 1, &g.Arcs[0], &g.Arcs[1], TriangleSource(0, 1), 86400, origPLF); err != nil {
		t.Fatalf("MergePLF: %v", err)
	}

	for i, p := range pts {
		want := p.Val + 1000
		got := s.Cached.ExactFn.Eval(p.At)
		if !plf.FuzzyEq(got, want) {
			t.Errorf("breakpoint %d: merged value at t=%v = %v, want %v (exact, not the approximated corridor)", i, p.At, got, want)
		}
	}
}

func TestApproximateNoOpBelowThreshold(t *testing.T) {
	f, _ := plf.NewPeriodic([]plf.TTFPoint{{At: 0, Val: 100}, {At: 3600, Val: 200}, {At: 86400, Val: 100}}, 86400)
	s := NewOriginalExact(1, f)
	s.Approximate(1000, 5)
	if !s.Cached.Exact {
		t.Error("Approximate should be a no-op below the point-count threshold")
	}
}

func TestApproximateReplacesAboveThreshold(t *testing.T) {
	pts := make([]plf.TTFPoint, 0, 21)
	for i := 0; i <= 20; i++ {
		pts = append(pts, plf.TTFPoint{At: float64(i) * 4320, Val: 100 + float64(i%2)*10})
	}
	pts[0].Val = pts[len(pts)-1].Val
	f, err := plf.NewPeriodic(pts, 86400)
	if err != nil {
		t.Fatalf("NewPeriodic: %v", err)
	}
	s := NewOriginalExact(1, f)
	s.Approximate(5, 20)
	if s.Cached.Exact {
		t.Error("Approximate should replace the cached PLF once past threshold")
	}
}

func TestFinalizeBoundsTakesMax(t *testing.T) {
	f, _ := plf.NewPeriodic([]plf.TTFPoint{{At: 0, Val: 50}, {At: 86400, Val: 50}}, 86400)
	s := NewOriginalExact(1, f)
	s.LowerBound = 10 // a stale, overly pessimistic pre-customization bound
	s.FinalizeBounds()
	if s.LowerBound != 50 {
		t.Errorf("FinalizeBounds should raise LowerBound to the cached minimum: got %v, want 50", s.LowerBound)
	}
}

func TestFinalizeBoundsDropsDominatedArc(t *testing.T) {
	f, _ := plf.NewPeriodic([]plf.TTFPoint{{At: 0, Val: 500}, {At: 86400, Val: 500}}, 86400)
	s := NewOriginalExact(1, f)
	s.LowerBound = 10
	s.UpperBound = 100 // something else already beats this arc's true minimum of 500
	s.Required = true

	s.FinalizeBounds()

	if s.Required {
		t.Error("a shortcut dominated by its own upper bound must not remain required")
	}
	if len(s.Sources) != 1 || s.Sources[0].Src.Kind != KindNone {
		t.Errorf("Sources should be wiped to KindNone once dominated, got %v", s.Sources)
	}
	if !math.IsInf(s.LowerBound, 1) || !math.IsInf(s.UpperBound, 1) {
		t.Errorf("bounds should both be +Inf once dominated, got (%v, %v)", s.LowerBound, s.UpperBound)
	}
}

func TestDisableIfUnnecessarySkipsRequired(t *testing.T) {
	s := NewOriginal(1, 10, 10)
	s.Required = true
	s.DisableIfUnnecessary()
	if s.Disabled {
		t.Error("a required shortcut must not be disabled")
	}
}

func TestDisableIfUnnecessaryClearsState(t *testing.T) {
	s := NewOriginal(1, 10, 10)
	s.DisableIfUnnecessary()
	if !s.Disabled {
		t.Fatal("expected shortcut to be disabled")
	}
	if !s.IsUnreachable() {
		t.Error("disabled shortcut should report unreachable")
	}
}

func TestReenableMarksRequired(t *testing.T) {
	s := NewOriginal(1, 10, 10)
	s.DisableIfUnnecessary()
	s.Reenable()
	if s.Disabled {
		t.Error("Reenable should clear Disabled")
	}
	if !s.Required {
		t.Error("Reenable should set Required")
	}
}

func TestGraphEvaluateOriginalEdge(t *testing.T) {
	g := NewGraph(1, 86400)
	g.Arcs[0] = NewOriginal(7, 0, 0)
	lookup := func(e EdgeID, t plf.Timestamp) plf.Weight {
		if e != 7 {
			t.Fatalf("unexpected edge %d", e)
		}
		return 123
	}
	if got := g.Evaluate(0, 0, lookup); got != 123 {
		t.Errorf("Evaluate = %v, want 123", got)
	}
}

func TestGraphEvaluateTriangleSumsBothLegs(t *testing.T) {
	g := NewGraph(3, 86400)
	g.Arcs[0] = NewOriginal(1, 0, 0) // down, constant 50
	g.Arcs[1] = NewOriginal(2, 0, 0) // up, constant 80
	g.Arcs[2] = Shortcut{
		LowerBound: 130,
		UpperBound: 130,
		Sources:    Single(TriangleSource(0, 1)),
	}

	weights := map[EdgeID]plf.Weight{1: 50, 2: 80}
	lookup := func(e EdgeID, t plf.Timestamp) plf.Weight { return weights[e] }

	if got := g.Evaluate(2, 0, lookup); got != 130 {
		t.Errorf("Evaluate(triangle) = %v, want 130", got)
	}
}

func TestGraphEvaluateShiftsArrivalTimeThroughTriangle(t *testing.T) {
	g := NewGraph(3, 86400)
	downPLF, _ := plf.NewPeriodic([]plf.TTFPoint{{At: 0, Val: 1000}, {At: 86400, Val: 1000}}, 86400)
	down := NewOriginalExact(1, downPLF)
	g.Arcs[0] = down

	upPLF, _ := plf.NewPeriodic([]plf.TTFPoint{
		{At: 0, Val: 50}, {At: 2000, Val: 50}, {At: 3000, Val: 900}, {At: 4000, Val: 50}, {At: 86400, Val: 50},
	}, 86400)
	up := NewOriginalExact(2, upPLF)
	g.Arcs[1] = up

	g.Arcs[2] = Shortcut{
		LowerBound: 0,
		UpperBound: math.Inf(1),
		Sources:    Single(TriangleSource(0, 1)),
	}

	lookup := func(e EdgeID, t plf.Timestamp) plf.Weight { return 0 }
	// Departing at 2000: down delays 1000s, so up is evaluated at 3000,
	// landing on the spike.
	got := g.Evaluate(2, 2000, lookup)
	want := 1000 + 900.0
	if !plf.FuzzyEq(got, want) {
		t.Errorf("Evaluate = %v, want %v (spike should be hit via the shifted arrival time)", got, want)
	}
}

func TestGraphUnpackAtReturnsOriginalEdgesInOrder(t *testing.T) {
	g := NewGraph(3, 86400)
	g.Arcs[0] = NewOriginal(11, 0, 0)
	g.Arcs[1] = NewOriginal(22, 0, 0)
	g.Arcs[2] = Shortcut{Sources: Single(TriangleSource(0, 1))}

	lookup := func(e EdgeID, t plf.Timestamp) plf.Weight { return 10 }
	edges := g.UnpackAt(2, 0, lookup)
	if len(edges) != 2 || edges[0] != 11 || edges[1] != 22 {
		t.Errorf("UnpackAt = %v, want [11 22]", edges)
	}
}

func TestGraphEvaluateUnreachablePanicsOnNoneSourceUnpack(t *testing.T) {
	g := NewGraph(1, 86400)
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected UnpackAt on an unreachable arc to panic with InvariantError")
		}
	}()
	g.UnpackAt(0, 0, func(EdgeID, plf.Timestamp) plf.Weight { return 0 })
}
