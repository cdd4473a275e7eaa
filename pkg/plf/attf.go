package plf

// ATTF (approximated travel-time function) is the value cached on a
// shortcut: either the exact PLF, or an Approx lower/upper corridor once the
// exact function grows past the configured point-count threshold. A shortcut
// may also cache nothing at all (the zero value is not a valid ATTF; callers
// track "no cached PLF" separately, per the Shortcut type in pkg/shortcut).
type ATTF struct {
	Exact   bool
	ExactFn PLF
	LowerFn PLF
	UpperFn PLF
}

// NewExact wraps f as an exact ATTF.
func NewExact(f PLF) ATTF {
	return ATTF{Exact: true, ExactFn: f}
}

// NewApprox wraps a lower/upper corridor as an approximated ATTF.
func NewApprox(lower, upper PLF) ATTF {
	return ATTF{Exact: false, LowerFn: lower, UpperFn: upper}
}

// Lower returns the PLF bounding the ATTF from below (itself, if exact).
func (a ATTF) Lower() PLF {
	if a.Exact {
		return a.ExactFn
	}
	return a.LowerFn
}

// Upper returns the PLF bounding the ATTF from above (itself, if exact).
func (a ATTF) Upper() PLF {
	if a.Exact {
		return a.ExactFn
	}
	return a.UpperFn
}

// LowerBound returns the minimum value over the whole domain.
func (a ATTF) LowerBound() Weight {
	return a.Lower().LowerBound()
}

// UpperBound returns the maximum value over the whole domain.
func (a ATTF) UpperBound() Weight {
	return a.Upper().UpperBound()
}

// EvalLower evaluates the lower-bounding function at t.
func (a ATTF) EvalLower(t Timestamp) Weight {
	return a.Lower().Eval(t)
}

// EvalUpper evaluates the upper-bounding function at t.
func (a ATTF) EvalUpper(t Timestamp) Weight {
	return a.Upper().Eval(t)
}

// NumPoints reports the point count driving the approximation threshold
// decision: the exact function's point count, or the sum of both corridor
// functions' point counts once approximated.
func (a ATTF) NumPoints() int {
	if a.Exact {
		return len(a.ExactFn.Points)
	}
	return len(a.LowerFn.Points) + len(a.UpperFn.Points)
}
