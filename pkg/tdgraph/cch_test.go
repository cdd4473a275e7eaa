package tdgraph

import "testing"

func lineCCH() *StaticCCH {
	// 0 -> 1 -> 2, rank == node id.
	return &StaticCCH{
		NumNodes: 3,
		Rank:     []uint32{0, 1, 2},
		Perm:     []uint32{0, 1, 2},
		Parent:   []uint32{1, 2, NoNode},
		FirstOut: []uint32{0, 1, 2, 2},
		Head:     []uint32{1, 2},
	}
}

func TestStaticCCHArcBetween(t *testing.T) {
	c := lineCCH()
	if a, ok := c.ArcBetween(0, 1); !ok || a != 0 {
		t.Errorf("ArcBetween(0,1) = (%d,%v), want (0,true)", a, ok)
	}
	if _, ok := c.ArcBetween(0, 2); ok {
		t.Error("ArcBetween(0,2) should not exist in a direct line CCH")
	}
}

func TestStaticCCHTail(t *testing.T) {
	c := lineCCH()
	if got := c.Tail(0); got != 0 {
		t.Errorf("Tail(0) = %d, want 0", got)
	}
	if got := c.Tail(1); got != 1 {
		t.Errorf("Tail(1) = %d, want 1", got)
	}
}

func TestStaticCCHValidateAccepts(t *testing.T) {
	if err := lineCCH().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestStaticCCHValidateRejectsBadPermutation(t *testing.T) {
	c := lineCCH()
	c.Perm = []uint32{0, 1, 1}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for Perm repeating a node")
	}
}

func TestStaticCCHValidateRejectsRankDecrease(t *testing.T) {
	c := lineCCH()
	c.Head[0] = 0 // arc 0 -> 0, does not increase rank
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for an arc that does not increase rank")
	}
}

func TestBuildDownAdjacency(t *testing.T) {
	c := lineCCH()
	da := BuildDownAdjacency(c)
	arcs, tails := da.Down(2)
	if len(arcs) != 1 || arcs[0] != 1 {
		t.Errorf("Down(2) arcs = %v, want [1]", arcs)
	}
	if len(tails) != 1 || tails[0] != 1 {
		t.Errorf("Down(2) tails = %v, want [1]", tails)
	}
	if arcs, _ := da.Down(0); len(arcs) != 0 {
		t.Errorf("Down(0) should have no down-neighbors, got %v", arcs)
	}
}
