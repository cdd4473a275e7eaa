package tdgraph

import "testing"

func threeNodeLine() *TDGraph {
	// 0 -> 1 -> 2, each arc a two-point constant PLF.
	return &TDGraph{
		NumNodes:     3,
		FirstOut:     []uint32{0, 1, 2, 2},
		Head:         []uint32{1, 2},
		FirstIPP:     []uint32{0, 2, 4},
		IPPAt:        []uint32{0, 86_400_000, 0, 86_400_000},
		IPPVal:       []uint32{10_000, 10_000, 20_000, 20_000},
		PeriodMillis: DefaultPeriodMillis,
	}
}

func TestTDGraphValidateAccepts(t *testing.T) {
	g := threeNodeLine()
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestTDGraphValidateRejectsBadHead(t *testing.T) {
	g := threeNodeLine()
	g.Head[0] = 99
	if err := g.Validate(); err == nil {
		t.Fatal("expected error for out-of-range Head")
	}
}

func TestTDGraphValidateRejectsNonMonotoneFirstOut(t *testing.T) {
	g := threeNodeLine()
	g.FirstOut[2] = 0
	if err := g.Validate(); err == nil {
		t.Fatal("expected error for non-monotone FirstOut")
	}
}

func TestPLFOfConstantArc(t *testing.T) {
	g := threeNodeLine()
	f, err := g.PLFOf(0)
	if err != nil {
		t.Fatalf("PLFOf: %v", err)
	}
	if !f.IsConstant() {
		t.Fatal("expected a constant PLF")
	}
	if got := f.Eval(3600); got != 10.0 {
		t.Errorf("Eval(3600) = %v, want 10", got)
	}
}

func TestPLFOfSingleIPP(t *testing.T) {
	g := &TDGraph{
		NumNodes:     2,
		FirstOut:     []uint32{0, 1, 1},
		Head:         []uint32{1},
		FirstIPP:     []uint32{0, 1},
		IPPAt:        []uint32{0},
		IPPVal:       []uint32{5_000},
		PeriodMillis: DefaultPeriodMillis,
	}
	f, err := g.PLFOf(0)
	if err != nil {
		t.Fatalf("PLFOf: %v", err)
	}
	if got := f.Eval(0); got != 5.0 {
		t.Errorf("Eval(0) = %v, want 5", got)
	}
	if got := f.Eval(43200); got != 5.0 {
		t.Errorf("Eval(43200) = %v, want 5", got)
	}
}

func TestEdgeBetween(t *testing.T) {
	g := threeNodeLine()
	if e, ok := g.EdgeBetween(0, 1); !ok || e != 0 {
		t.Errorf("EdgeBetween(0,1) = (%d,%v), want (0,true)", e, ok)
	}
	if e, ok := g.EdgeBetween(1, 2); !ok || e != 1 {
		t.Errorf("EdgeBetween(1,2) = (%d,%v), want (1,true)", e, ok)
	}
	if _, ok := g.EdgeBetween(0, 2); ok {
		t.Error("EdgeBetween(0,2) should not exist")
	}
}
