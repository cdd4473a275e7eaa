package corridor

import (
	"testing"

	"github.com/tdcch/tdcch/pkg/customization"
	"github.com/tdcch/tdcch/pkg/tdgraph"
)

// triangleFixture mirrors pkg/customization's lower-triangle fixture: original
// directed edges node0->node1 (15s) and node1->node2 (20s), node1 eliminated
// first so its elimination creates the fill arc node0->node2 (35s).
//
//	arc0: node0 -> node2 (rank 1 -> rank 2, the fill arc)
//	arc1: node1 -> node0 (rank 0 -> rank 1)
//	arc2: node1 -> node2 (rank 0 -> rank 2)
func triangleFixture() (*tdgraph.TDGraph, *tdgraph.StaticCCH) {
	g := &tdgraph.TDGraph{
		NumNodes:     3,
		FirstOut:     []uint32{0, 1, 2, 2},
		Head:         []uint32{1, 2},
		FirstIPP:     []uint32{0, 2, 4},
		IPPAt:        []uint32{0, 86_400_000, 0, 86_400_000},
		IPPVal:       []uint32{15_000, 15_000, 20_000, 20_000},
		PeriodMillis: tdgraph.DefaultPeriodMillis,
	}
	cch := &tdgraph.StaticCCH{
		NumNodes: 3,
		Rank:     []uint32{1, 0, 2},
		Perm:     []uint32{1, 0, 2},
		Parent:   []uint32{2, 0, tdgraph.NoNode},
		FirstOut: []uint32{0, 1, 3, 3},
		Head:     []uint32{2, 0, 2},
	}
	return g, cch
}

func TestFindDirectArc(t *testing.T) {
	g, cch := triangleFixture()
	sg, err := customization.Customize(g, cch, customization.DefaultOptions())
	if err != nil {
		t.Fatalf("Customize: %v", err)
	}

	st := NewState(cch)
	ok, err := st.Find(sg, 0, 2)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !ok {
		t.Fatal("Find(0,2) reported unreachable, want reachable via the fill arc")
	}
	if st.UpperBound() != 35 {
		t.Errorf("UpperBound() = %v, want 35", st.UpperBound())
	}
}

// TestFindNonParentArc is the case a single-elimination-tree-parent walk
// gets wrong: node1's tree parent is node0, not node2, yet a direct CCH arc
// node1->node2 exists and is correctly customized to 20s. A corridor search
// that only ever follows the tree-parent pointer never examines that arc and
// wrongly reports s=node1,t=node2 as unreachable; relaxing every upward CCH
// arc out of a processed node (not just its tree-parent arc) is what this
// test pins down.
func TestFindNonParentArc(t *testing.T) {
	g, cch := triangleFixture()
	sg, err := customization.Customize(g, cch, customization.DefaultOptions())
	if err != nil {
		t.Fatalf("Customize: %v", err)
	}

	st := NewState(cch)
	ok, err := st.Find(sg, 1, 2)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !ok {
		t.Fatal("Find(1,2) reported unreachable, want reachable via the direct arc node1->node2")
	}
	if st.UpperBound() != 20 {
		t.Errorf("UpperBound() = %v, want 20 (the direct arc, not 15+35 via node0)", st.UpperBound())
	}

	arc2 := cch.NumArcs() - 1 // arc2: node1->node2, see triangleFixture
	if !st.UpRelevant(tdgraph.ArcID(arc2)) {
		t.Errorf("arc2 (node1->node2) should be marked UpRelevant")
	}
}

func TestFindUnreachable(t *testing.T) {
	g, cch := triangleFixture()
	sg, err := customization.Customize(g, cch, customization.DefaultOptions())
	if err != nil {
		t.Fatalf("Customize: %v", err)
	}

	st := NewState(cch)
	ok, err := st.Find(sg, 2, 0)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if ok {
		t.Fatalf("Find(2,0) reported reachable with bound %v, want unreachable (no backward edges in this fixture)", st.UpperBound())
	}
}

func TestFindOutOfRange(t *testing.T) {
	_, cch := triangleFixture()
	st := NewState(cch)
	if _, err := st.Find(nil, 0, 5); err == nil {
		t.Fatal("Find with out-of-range node should return an error")
	}
}

func TestStateReusableAcrossQueries(t *testing.T) {
	g, cch := triangleFixture()
	sg, err := customization.Customize(g, cch, customization.DefaultOptions())
	if err != nil {
		t.Fatalf("Customize: %v", err)
	}

	st := NewState(cch)
	if ok, err := st.Find(sg, 0, 2); err != nil || !ok {
		t.Fatalf("first Find: ok=%v err=%v", ok, err)
	}
	if ok, err := st.Find(sg, 1, 2); err != nil || !ok {
		t.Fatalf("second Find: ok=%v err=%v", ok, err)
	}
	if st.UpperBound() != 20 {
		t.Errorf("UpperBound() after reuse = %v, want 20", st.UpperBound())
	}
}
