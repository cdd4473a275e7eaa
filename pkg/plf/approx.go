package plf

// Approximate computes a lower/upper PLF corridor around f such that
// lower(t) <= f(t) <= upper(t) everywhere and upper(t)-lower(t) <= 2*tolerance.
// It is used when a cached PLF grows past customization.Options.ApproxThreshold
// points: the corridor replaces the exact PLF, trading a bounded error for a
// point count independent of the number of merges that produced f.
//
// The corridor is built by running the classic cone-intersection (funnel)
// line-simplification sweep once to find a minimal polyline within
// tolerance of f, then shifting that polyline by -tolerance/+tolerance to
// get the lower/upper bound. Shifting by a constant preserves FIFO, since
// t+f(t) <= t'+f(t') implies t+f(t)+c <= t'+f(t')+c.
func Approximate(f PLF, tolerance float64) (lower, upper PLF) {
	if tolerance <= 0 || len(f.Points) <= 2 {
		return shiftPoints(f, -tolerance), shiftPoints(f, tolerance)
	}

	spine := funnelSimplify(f.Points, tolerance)
	lowerPts := make([]TTFPoint, len(spine))
	upperPts := make([]TTFPoint, len(spine))
	for i, p := range spine {
		lowerPts[i] = TTFPoint{At: p.At, Val: maxOf(p.Val-tolerance, 0)}
		upperPts[i] = TTFPoint{At: p.At, Val: p.Val + tolerance}
	}

	if f.Kind == Periodic {
		lowerPts[0].Val = lowerPts[len(lowerPts)-1].Val
		upperPts[0].Val = upperPts[len(upperPts)-1].Val
		l, _ := NewPeriodic(lowerPts, f.period())
		u, _ := NewPeriodic(upperPts, f.period())
		return l, u
	}
	l, _ := NewPartial(lowerPts, f.Start, f.End)
	u, _ := NewPartial(upperPts, f.Start, f.End)
	return l, u
}

func shiftPoints(f PLF, delta float64) PLF {
	pts := make([]TTFPoint, len(f.Points))
	for i, p := range f.Points {
		pts[i] = TTFPoint{At: p.At, Val: maxOf(p.Val+delta, 0)}
	}
	out := f
	out.Points = pts
	return out
}

func maxOf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// funnelSimplify finds a minimal-size polyline anchored at pts[0] and
// pts[len-1] such that every original point lies within [line-tol,
// line+tol] of the simplified line at the same departure time. This is the
// streaming cone-intersection algorithm: the cone of admissible slopes from
// the current anchor narrows as each new point is folded in, and a new
// anchor is opened at the last point still inside the cone when the cone
// would otherwise close.
func funnelSimplify(pts []TTFPoint, tolerance float64) []TTFPoint {
	if len(pts) <= 2 {
		out := make([]TTFPoint, len(pts))
		copy(out, pts)
		return out
	}

	out := []TTFPoint{pts[0]}
	anchor := pts[0]
	minSlope := negInf
	maxSlope := posInf
	lastInCone := 1

	for i := 1; i < len(pts); i++ {
		p := pts[i]
		dt := p.At - anchor.At
		slopeLow := (p.Val - tolerance - anchor.Val) / dt
		slopeHigh := (p.Val + tolerance - anchor.Val) / dt

		newMin := slopeLow
		if minSlope > newMin {
			newMin = minSlope
		}
		newMax := slopeHigh
		if maxSlope < newMax {
			newMax = maxSlope
		}

		if newMin > newMax+Epsilon {
			out = append(out, pts[lastInCone])
			anchor = pts[lastInCone]
			minSlope = negInf
			maxSlope = posInf
			i = lastInCone
			continue
		}
		minSlope, maxSlope = newMin, newMax
		lastInCone = i
	}
	out = append(out, pts[len(pts)-1])
	return out
}

const (
	posInf = 1e18
	negInf = -1e18
)
