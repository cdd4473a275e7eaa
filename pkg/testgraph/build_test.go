package testgraph

import "testing"

func TestBuildCCHProducesValidCCH(t *testing.T) {
	g := Grid(DefaultGridOptions(5, 5))
	cch := BuildCCH(g)
	if err := cch.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cch.NumNodes != g.NumNodes {
		t.Errorf("CCH NumNodes = %d, want %d", cch.NumNodes, g.NumNodes)
	}
}

func TestEliminationOrderIsPermutation(t *testing.T) {
	g := Grid(DefaultGridOptions(4, 6))
	adj := undirectedAdjacency(g)
	perm := EliminationOrder(int(g.NumNodes), adj)
	if len(perm) != int(g.NumNodes) {
		t.Fatalf("perm length = %d, want %d", len(perm), g.NumNodes)
	}
	seen := make([]bool, g.NumNodes)
	for _, v := range perm {
		if seen[v] {
			t.Fatalf("node %d appears twice in elimination order", v)
		}
		seen[v] = true
	}
}
