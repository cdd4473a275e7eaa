package tdgraph

import (
	"reflect"
	"testing"
)

// square is a 4-cycle 0-1-2-3-0, stored as one directed arc per edge. The
// elimination order [0,1,2,3] forces exactly one fill edge, 1-3, when node 0
// is eliminated first.
func square() *TDGraph {
	return &TDGraph{
		NumNodes:     4,
		FirstOut:     []uint32{0, 1, 2, 3, 4},
		Head:         []uint32{1, 2, 3, 0},
		FirstIPP:     []uint32{0, 2, 4, 6, 8},
		IPPAt:        []uint32{0, 86_400_000, 0, 86_400_000, 0, 86_400_000, 0, 86_400_000},
		IPPVal:       []uint32{1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000},
		PeriodMillis: DefaultPeriodMillis,
	}
}

func TestBuildStaticCCHFillIn(t *testing.T) {
	g := square()
	perm := []uint32{0, 1, 2, 3}
	cch := BuildStaticCCH(g, perm)

	wantFirstOut := []uint32{0, 2, 4, 5, 5}
	if !reflect.DeepEqual(cch.FirstOut, wantFirstOut) {
		t.Errorf("FirstOut = %v, want %v", cch.FirstOut, wantFirstOut)
	}
	wantHead := []uint32{1, 3, 2, 3, 3}
	if !reflect.DeepEqual(cch.Head, wantHead) {
		t.Errorf("Head = %v, want %v", cch.Head, wantHead)
	}
	wantParent := []uint32{1, 2, 3, NoNode}
	if !reflect.DeepEqual(cch.Parent, wantParent) {
		t.Errorf("Parent = %v, want %v", cch.Parent, wantParent)
	}
	if err := cch.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestBuildStaticCCHDifferentOrderStillChordal(t *testing.T) {
	// A 4-cycle is never chordal on its own; eliminating any degree-2 node
	// whose neighbors aren't already adjacent forces exactly one fill edge,
	// regardless of which node goes first. Every order over this graph ends
	// up with 5 arcs (4 original + 1 fill), just wired differently.
	g := square()
	perm := []uint32{0, 2, 1, 3}
	cch := BuildStaticCCH(g, perm)
	if cch.NumArcs() != 5 {
		t.Errorf("NumArcs = %d, want 5", cch.NumArcs())
	}
	if err := cch.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestDownAdjacencyMatchesSlowDownNeighbors(t *testing.T) {
	g := square()
	cch := BuildStaticCCH(g, []uint32{0, 1, 2, 3})
	da := BuildDownAdjacency(cch)

	for v := NodeID(0); v < cch.NumNodes; v++ {
		slow := cch.DownNeighbors(v)
		arcs, _ := da.Down(v)
		if len(slow) != len(arcs) {
			t.Fatalf("node %d: DownNeighbors has %d, BuildDownAdjacency has %d", v, len(slow), len(arcs))
		}
		got := append([]ArcID(nil), arcs...)
		want := append([]ArcID(nil), slow...)
		less := func(s []ArcID) func(i, j int) bool { return func(i, j int) bool { return s[i] < s[j] } }
		sortSlice(got, less(got))
		sortSlice(want, less(want))
		if !reflect.DeepEqual(got, want) {
			t.Errorf("node %d: down arcs = %v, want %v", v, got, want)
		}
	}
}

func sortSlice(s []ArcID, less func(i, j int) bool) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
