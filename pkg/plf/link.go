package plf

import "sort"

// Link computes the min-plus convolution (f∘g)(t) = f(t) + g(t+f(t)), the
// travel time along the concatenation of an edge with function f followed by
// an edge with function g. period is the wrap period shared by f and g (g is
// assumed periodic with this period even if f is a partial function).
//
// The walk emits a breakpoint at every breakpoint of f, plus, within each f
// segment, a breakpoint for every g breakpoint whose value falls in the
// segment's arrival-time range (found by inverting the segment's linear
// arrival function t+f(t), which is non-decreasing by FIFO). This preserves
// FIFO on the output because t+f(t) is monotone and g is FIFO.
func Link(f, g PLF, period float64) PLF {
	pts := f.Points
	var out []TTFPoint

	emit := func(t, v Timestamp) {
		out = append(out, TTFPoint{At: t, Val: v})
	}

	for i := 0; i < len(pts); i++ {
		t0, f0 := pts[i].At, pts[i].Val
		a0 := t0 + f0
		emit(t0, f0+g.Eval(a0))

		if i == len(pts)-1 {
			break
		}
		t1, f1 := pts[i+1].At, pts[i+1].Val
		a1 := t1 + f1

		if FuzzyLt(a0, a1) {
			candidates := unrolledBreakpoints(g, a0, a1, period)
			sort.Float64s(candidates)
			for _, a := range candidates {
				frac := (a - a0) / (a1 - a0)
				t := t0 + frac*(t1-t0)
				fv := f0 + frac*(f1-f0)
				emit(t, fv+g.Eval(a))
			}
		}
	}

	out = mergeCollinear(dedupe(out))

	if f.Kind == Periodic {
		r, err := NewPeriodic(out, period)
		if err != nil {
			// Floating-point drift at the wrap boundary; force exact closure.
			out[0].Val = out[len(out)-1].Val
			r, _ = NewPeriodic(out, period)
		}
		return r
	}
	r, _ := NewPartial(out, f.Start, f.End)
	return r
}

// unrolledBreakpoints returns every breakpoint of g (unrolled across as many
// periods as necessary) whose At value lies strictly within (a0, a1).
func unrolledBreakpoints(g PLF, a0, a1, period float64) []Timestamp {
	var out []Timestamp
	if period <= 0 {
		for _, p := range g.Points {
			if FuzzyLt(a0, p.At) && FuzzyLt(p.At, a1) {
				out = append(out, p.At)
			}
		}
		return out
	}
	for _, p := range g.Points {
		base := p.At
		shifted := base - period*float64(int64((base-a0)/period))
		for shifted > a0 {
			shifted -= period
		}
		for at := shifted; at <= a1+Epsilon; at += period {
			if FuzzyLt(a0, at) && FuzzyLt(at, a1) {
				out = append(out, at)
			}
		}
	}
	return out
}

// mergeCollinear drops interior points that lie exactly on the line formed
// by their neighbors, keeping the point list minimal without changing the
// function.
func mergeCollinear(points []TTFPoint) []TTFPoint {
	if len(points) < 3 {
		return points
	}
	out := make([]TTFPoint, 0, len(points))
	out = append(out, points[0])
	for i := 1; i < len(points)-1; i++ {
		prev := out[len(out)-1]
		cur := points[i]
		next := points[i+1]
		if onLine(prev, cur, next) {
			continue
		}
		out = append(out, cur)
	}
	out = append(out, points[len(points)-1])
	return out
}

func onLine(a, b, c TTFPoint) bool {
	if FuzzyEq(c.At, a.At) {
		return false
	}
	frac := (b.At - a.At) / (c.At - a.At)
	expected := a.Val + frac*(c.Val-a.Val)
	return FuzzyEq(expected, b.Val)
}
