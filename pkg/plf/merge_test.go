package plf

import "testing"

func TestMergeIsPointwiseMinimum(t *testing.T) {
	f := mustPeriodic(t, []TTFPoint{
		{At: 0, Val: 100}, {At: 3600, Val: 500}, {At: 86400, Val: 100},
	}, 86400)
	g := mustPeriodic(t, []TTFPoint{
		{At: 0, Val: 300}, {At: 3600, Val: 100}, {At: 86400, Val: 300},
	}, 86400)

	m, _ := Merge(f, g)
	for _, tt := range []float64{0, 900, 1800, 2700, 3600, 43200} {
		want := minOf(f.Eval(tt), g.Eval(tt))
		if got := m.Eval(tt); !FuzzyEq(got, want) {
			t.Errorf("Merge.Eval(%v) = %v, want min = %v", tt, got, want)
		}
	}
}

func TestMergeWitnessesTrackCrossover(t *testing.T) {
	// f starts higher than g and crosses below it somewhere in (0, 3600).
	f := mustPeriodic(t, []TTFPoint{
		{At: 0, Val: 500}, {At: 3600, Val: 100}, {At: 86400, Val: 500},
	}, 86400)
	g := mustPeriodic(t, []TTFPoint{
		{At: 0, Val: 100}, {At: 3600, Val: 500}, {At: 86400, Val: 100},
	}, 86400)

	_, witnesses := Merge(f, g)
	if len(witnesses) < 2 {
		t.Fatalf("expected at least 2 witnesses (initial + crossover), got %d", len(witnesses))
	}
	if witnesses[0].FBetterAfter {
		t.Errorf("first witness should favor g (f starts higher)")
	}
	last := witnesses[len(witnesses)-1]
	if last.FBetterAfter {
		t.Errorf("final witness should favor g (g is lower again at the period end)")
	}
	crossover := witnesses[1].At
	if !(FuzzyLt(0, crossover) && FuzzyLt(crossover, 3600)) {
		t.Errorf("crossover witness at %v should lie strictly within (0, 3600)", crossover)
	}
}

func TestMergeOfIdenticalFunctionsHasNoExtraWitnesses(t *testing.T) {
	f := mustPeriodic(t, []TTFPoint{
		{At: 0, Val: 200}, {At: 3600, Val: 400}, {At: 86400, Val: 200},
	}, 86400)
	g := f.Clone()

	m, witnesses := Merge(f, g)
	if len(witnesses) != 1 {
		t.Errorf("identical functions should yield exactly one witness, got %d", len(witnesses))
	}
	for _, p := range f.Points {
		if got := m.Eval(p.At); !FuzzyEq(got, p.Val) {
			t.Errorf("Merge of identical functions changed value at %v: got %v want %v", p.At, got, p.Val)
		}
	}
}

func TestEdgeSourceAtMatchesWitnessIntervals(t *testing.T) {
	witnesses := []Witness{
		{At: 0, FBetterAfter: false},
		{At: 1800, FBetterAfter: true},
	}
	if EdgeSourceAt(witnesses, 0) != false {
		t.Error("at exactly the first witness, should report false")
	}
	if EdgeSourceAt(witnesses, 900) != false {
		t.Error("before the crossover, should still report false")
	}
	if EdgeSourceAt(witnesses, 1800) != true {
		t.Error("at the crossover point, should report true")
	}
	if EdgeSourceAt(witnesses, 50000) != true {
		t.Error("after the crossover, should report true")
	}
}

func TestMergeOutputSatisfiesFIFO(t *testing.T) {
	f := mustPeriodic(t, []TTFPoint{
		{At: 0, Val: 300}, {At: 1000, Val: 800}, {At: 2000, Val: 200}, {At: 86400, Val: 300},
	}, 86400)
	g := mustPeriodic(t, []TTFPoint{
		{At: 0, Val: 500}, {At: 1500, Val: 100}, {At: 3000, Val: 600}, {At: 86400, Val: 500},
	}, 86400)
	m, _ := Merge(f, g)
	if err := validateMonotoneFIFO(m.Points); err != nil {
		t.Errorf("merged function violates FIFO: %v", err)
	}
}
