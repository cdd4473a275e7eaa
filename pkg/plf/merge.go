package plf

import "sort"

// Witness records, for a merge of two functions, the departure time at which
// the winning operand changes. FBetterAfter is true if f is the (weak)
// minimum on [At, next witness At).
type Witness struct {
	At           Timestamp
	FBetterAfter bool
}

// Merge computes the pointwise minimum of f and g, which must share the same
// Kind/Start/End domain, along with the list of witnesses describing which
// operand realizes the minimum over each sub-interval. The first witness is
// always at the domain start.
func Merge(f, g PLF) (PLF, []Witness) {
	ats := unionBreakpoints(f, g)

	var outPts []TTFPoint
	var witnesses []Witness
	var curWinnerIsF bool
	haveWinner := false

	winnerAt := func(fv, gv Weight, fallback bool) bool {
		if FuzzyLt(fv, gv) {
			return true
		}
		if FuzzyLt(gv, fv) {
			return false
		}
		return fallback
	}

	for i := 0; i < len(ats); i++ {
		t0 := ats[i]
		f0, g0 := f.evalInDomain(t0), g.evalInDomain(t0)

		if !haveWinner {
			curWinnerIsF = winnerAt(f0, g0, true)
			witnesses = append(witnesses, Witness{At: t0, FBetterAfter: curWinnerIsF})
			haveWinner = true
		}
		outPts = append(outPts, TTFPoint{At: t0, Val: minOf(f0, g0)})

		if i == len(ats)-1 {
			break
		}
		t1 := ats[i+1]
		f1, g1 := f.evalInDomain(t1), g.evalInDomain(t1)

		d0 := f0 - g0
		d1 := f1 - g1
		crosses := (d0 > Epsilon && d1 < -Epsilon) || (d0 < -Epsilon && d1 > Epsilon)
		if crosses {
			frac := d0 / (d0 - d1)
			tc := t0 + frac*(t1-t0)
			fc := f0 + frac*(f1-f0)
			outPts = append(outPts, TTFPoint{At: tc, Val: fc})
			newWinnerIsF := d1 < 0
			if newWinnerIsF != curWinnerIsF {
				witnesses = append(witnesses, Witness{At: tc, FBetterAfter: newWinnerIsF})
				curWinnerIsF = newWinnerIsF
			}
		} else {
			w := winnerAt(f1, g1, curWinnerIsF)
			if w != curWinnerIsF {
				witnesses = append(witnesses, Witness{At: t1, FBetterAfter: w})
				curWinnerIsF = w
			}
		}
	}

	outPts = dedupe(outPts)
	if f.Kind == Periodic {
		r, err := NewPeriodic(outPts, f.period())
		if err != nil {
			outPts[0].Val = outPts[len(outPts)-1].Val
			r, _ = NewPeriodic(outPts, f.period())
		}
		return r, witnesses
	}
	r, _ := NewPartial(outPts, f.Start, f.End)
	return r, witnesses
}

// EdgeSourceAt returns which operand realizes the minimum at departure time
// t, given the witness list produced by Merge. Witnesses must be non-empty
// and sorted by At (as Merge guarantees).
func EdgeSourceAt(witnesses []Witness, t Timestamp) bool {
	idx := sort.Search(len(witnesses), func(i int) bool { return witnesses[i].At > t })
	if idx == 0 {
		return witnesses[0].FBetterAfter
	}
	return witnesses[idx-1].FBetterAfter
}

func minOf(a, b Weight) Weight {
	if a < b {
		return a
	}
	return b
}

// unionBreakpoints returns the sorted, deduplicated union of f's and g's
// breakpoint At values, restricted to f's domain (f and g are assumed to
// share the same domain).
func unionBreakpoints(f, g PLF) []Timestamp {
	combined := make([]Timestamp, 0, len(f.Points)+len(g.Points))
	for _, p := range f.Points {
		combined = append(combined, p.At)
	}
	for _, p := range g.Points {
		if FuzzyLeq(f.Start, p.At) && FuzzyLeq(p.At, f.End) {
			combined = append(combined, p.At)
		}
	}
	sort.Float64s(combined)
	out := combined[:0:0]
	for i, at := range combined {
		if i > 0 && FuzzyEq(at, combined[i-1]) {
			continue
		}
		out = append(out, at)
	}
	return out
}
