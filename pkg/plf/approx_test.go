package plf

import "testing"

func noisyPeriodic(t *testing.T, n int, period float64) PLF {
	t.Helper()
	pts := make([]TTFPoint, 0, n+1)
	base := 100.0
	for i := 0; i <= n; i++ {
		at := period * float64(i) / float64(n)
		// Small bounded oscillation so the function stays FIFO: the slope of
		// the oscillation term is shallow compared to the 1.0 departure-time
		// slope it's riding on.
		val := base + 20*float64(i%3)
		pts = append(pts, TTFPoint{At: at, Val: val})
	}
	pts[0].Val = pts[n].Val
	f, err := NewPeriodic(pts, period)
	if err != nil {
		t.Fatalf("noisyPeriodic: %v", err)
	}
	return f
}

func TestApproximateBoundsContainOriginal(t *testing.T) {
	f := noisyPeriodic(t, 60, 86400)
	lower, upper := Approximate(f, 5)

	for _, p := range f.Points {
		lo := lower.Eval(p.At)
		hi := upper.Eval(p.At)
		if FuzzyLt(p.Val, lo) {
			t.Errorf("lower bound violated at %v: f=%v lower=%v", p.At, p.Val, lo)
		}
		if FuzzyLt(hi, p.Val) {
			t.Errorf("upper bound violated at %v: f=%v upper=%v", p.At, p.Val, hi)
		}
	}
}

func TestApproximateGapBoundedByTolerance(t *testing.T) {
	f := noisyPeriodic(t, 60, 86400)
	tolerance := 5.0
	lower, upper := Approximate(f, tolerance)

	for _, tt := range []float64{0, 1000, 43200, 80000} {
		gap := upper.Eval(tt) - lower.Eval(tt)
		if gap > 2*tolerance+Epsilon {
			t.Errorf("corridor gap at %v = %v, want <= %v", tt, gap, 2*tolerance)
		}
	}
}

func TestApproximateReducesPointCount(t *testing.T) {
	f := noisyPeriodic(t, 200, 86400)
	lower, upper := Approximate(f, 8)
	if len(lower.Points) >= len(f.Points) {
		t.Errorf("expected simplification to reduce point count: original=%d simplified=%d",
			len(f.Points), len(lower.Points))
	}
	if len(lower.Points) != len(upper.Points) {
		t.Errorf("lower/upper corridor should share the same breakpoints: %d vs %d",
			len(lower.Points), len(upper.Points))
	}
}

func TestApproximateOfFlatFunctionIsExact(t *testing.T) {
	f := NewConstant(150, 86400)
	lower, upper := Approximate(f, 10)
	if got := lower.Eval(0); !FuzzyEq(got, 140) {
		t.Errorf("lower of constant = %v, want 140", got)
	}
	if got := upper.Eval(0); !FuzzyEq(got, 160) {
		t.Errorf("upper of constant = %v, want 160", got)
	}
}

func TestATTFExactPassesThroughLowerUpper(t *testing.T) {
	f := mustPeriodic(t, []TTFPoint{
		{At: 0, Val: 100}, {At: 3600, Val: 300}, {At: 86400, Val: 100},
	}, 86400)
	a := NewExact(f)
	if !a.Exact {
		t.Fatal("NewExact should produce Exact=true")
	}
	if got := a.EvalLower(3600); !FuzzyEq(got, 300) {
		t.Errorf("EvalLower on exact ATTF = %v, want 300", got)
	}
	if got := a.EvalUpper(3600); !FuzzyEq(got, 300) {
		t.Errorf("EvalUpper on exact ATTF = %v, want 300", got)
	}
	if a.NumPoints() != len(f.Points) {
		t.Errorf("NumPoints on exact ATTF = %d, want %d", a.NumPoints(), len(f.Points))
	}
}

func TestATTFApproxReportsCombinedPointCount(t *testing.T) {
	lower := NewConstant(90, 86400)
	upper := NewConstant(110, 86400)
	a := NewApprox(lower, upper)
	if a.Exact {
		t.Fatal("NewApprox should produce Exact=false")
	}
	want := len(lower.Points) + len(upper.Points)
	if a.NumPoints() != want {
		t.Errorf("NumPoints on approx ATTF = %d, want %d", a.NumPoints(), want)
	}
}
