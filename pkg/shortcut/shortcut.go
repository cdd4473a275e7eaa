package shortcut

import (
	"math"

	"github.com/tdcch/tdcch/pkg/plf"
	"github.com/tdcch/tdcch/pkg/stats"
)

// Shortcut is one CCH arc's customization state: its current lower/upper
// bound, an optional cached approximated travel-time function, the Sources
// list recording provenance, and the two customization-lifecycle flags used
// by perfect pre/post-customization (Required, Disabled).
type Shortcut struct {
	LowerBound plf.Weight
	UpperBound plf.Weight
	Cached     *plf.ATTF
	Sources    Sources
	Required   bool
	Disabled   bool
}

// NewUnreachable builds a shortcut with no realizable path: infinite bounds,
// a single KindNone source. This is the state of every CCH arc that is not
// backed by an original edge before customization discovers a triangle for
// it (or, after perfect customization, the state of an arc proven
// unnecessary).
func NewUnreachable() Shortcut {
	return Shortcut{
		LowerBound: math.Inf(1),
		UpperBound: math.Inf(1),
		Sources:    Single(NoneSource),
	}
}

// NewOriginal builds a shortcut directly realized by an input edge, given
// that edge's (possibly time-dependent) bounds.
func NewOriginal(e EdgeID, lower, upper plf.Weight) Shortcut {
	return Shortcut{
		LowerBound: lower,
		UpperBound: upper,
		Sources:    Single(OriginalEdgeSource(e)),
	}
}

// NewOriginalExact builds a shortcut directly realized by an input edge with
// a known exact PLF, caching it immediately (the "respecting" customization
// phase).
func NewOriginalExact(e EdgeID, f plf.PLF) Shortcut {
	attf := plf.NewExact(f)
	return Shortcut{
		LowerBound: f.LowerBound(),
		UpperBound: f.UpperBound(),
		Cached:     &attf,
		Sources:    Single(OriginalEdgeSource(e)),
	}
}

// IsUnreachable reports whether the shortcut currently has no realizable
// path (infinite bounds).
func (s *Shortcut) IsUnreachable() bool {
	return math.IsInf(s.LowerBound, 1)
}

// MergeBounds is the pre-customization primitive: it folds in a candidate
// triangle's bound-only contribution (down.UpperBound+up.UpperBound,
// down.LowerBound+up.LowerBound) without requiring either side to carry a
// cached PLF. It returns true if the candidate tightened the upper bound.
func (s *Shortcut) MergeBounds(downLower, downUpper, upLower, upUpper plf.Weight, src Source) bool {
	candLower := downLower + upLower
	candUpper := downUpper + upUpper

	if candLower > s.UpperBound {
		// Even in the best case this triangle can't beat what we already
		// have; skip it without touching bounds or provenance.
		return false
	}

	if candLower < s.LowerBound {
		s.LowerBound = candLower
	}
	improved := false
	if candUpper < s.UpperBound {
		s.UpperBound = candUpper
		improved = true
		if len(s.Sources) == 1 && s.Sources[0].Src.Kind == KindNone {
			s.Sources = Single(src)
		}
	}
	return improved
}

// effectiveFn returns arc's true travel-time function for use as a merge
// operand: the cached exact function when one is cached, or a from-scratch
// exact reconstruction when the cache holds only an approximated corridor
// (or nothing is cached at all yet). Folding a leg's lossy upper-corridor
// bound into a merge as if it were exact would let approximation error
// leak into every shortcut built on top of it, so any non-exact leg is
// always reconstructed in full first.
func effectiveFn(g *Graph, arc ArcID, origPLF OriginalPLFLookup) (plf.PLF, error) {
	s := &g.Arcs[arc]
	if s.Cached != nil && s.Cached.Exact {
		return s.Cached.ExactFn, nil
	}
	return g.ReconstructExactTTF(arc, origPLF)
}

// MergePLF is the main-customization primitive: it links down and up's
// exact functions into a candidate PLF realized by src, then folds that
// candidate into s via a pointwise minimum, updating Sources from the merge
// witnesses. down and up must both already carry customization state
// (callers customize in elimination-tree order, so by the time an arc is
// processed every arc with smaller rank already does). period is the
// shared wrap period. self, downArc and upArc identify s, down and up
// within g, needed to reconstruct an exact function on demand whenever a
// leg's cache holds only an approximated corridor.
func (s *Shortcut) MergePLF(g *Graph, self, downArc, upArc ArcID, down, up *Shortcut, src Source, period float64, origPLF OriginalPLFLookup) error {
	if down.LowerBound+up.LowerBound > s.UpperBound {
		return nil
	}

	downFn, err := effectiveFn(g, downArc, origPLF)
	if err != nil {
		return err
	}
	upFn, err := effectiveFn(g, upArc, origPLF)
	if err != nil {
		return err
	}

	candidatePLF := plf.Link(downFn, upFn, period)
	candidateSources := Single(src)
	stats.Global.MergesPerformed.Inc()
	stats.Global.IPPsStored.Add(int64(len(candidatePLF.Points)))

	if s.Cached == nil {
		exact := plf.NewExact(candidatePLF)
		s.Cached = &exact
		s.Sources = candidateSources
		s.LowerBound = candidatePLF.LowerBound()
		s.UpperBound = candidatePLF.UpperBound()
		return nil
	}

	selfFn, err := effectiveFn(g, self, origPLF)
	if err != nil {
		return err
	}

	merged, witnesses := plf.Merge(selfFn, candidatePLF)
	s.Sources = MergeSources(s.Sources, candidateSources, witnesses)
	exact := plf.NewExact(merged)
	s.Cached = &exact
	if merged.LowerBound() < s.LowerBound {
		s.LowerBound = merged.LowerBound()
	}
	if merged.UpperBound() < s.UpperBound {
		s.UpperBound = merged.UpperBound()
	}
	return nil
}

// Approximate replaces the cached exact PLF with an Imai-Iri corridor once
// its point count passes threshold, bounding the approximation error by
// tolerance. It is a no-op if nothing is cached or the function is already
// within threshold.
func (s *Shortcut) Approximate(threshold int, tolerance float64) {
	if s.Cached == nil || !s.Cached.Exact {
		return
	}
	if len(s.Cached.ExactFn.Points) <= threshold {
		return
	}
	lower, upper := plf.Approximate(s.Cached.ExactFn, tolerance)
	approx := plf.NewApprox(lower, upper)
	s.Cached = &approx
	stats.Global.Approximations.Inc()
}

// FinalizeBounds tightens the lower bound after the (possibly approximated)
// final PLF is known: the true minimum can only be larger than the
// pre-customization lower bound once exact/approximate values are in hand,
// never smaller. If the tightened lower bound now exceeds the upper bound,
// this arc can never be the real minimum of any path through it (something
// else already dominates it), so it is dropped from the required set
// entirely rather than left with a now-meaningless cache and Sources.
func (s *Shortcut) FinalizeBounds() {
	if s.Cached == nil {
		return
	}
	lb := s.Cached.LowerBound()
	if lb <= s.LowerBound {
		return
	}
	s.LowerBound = lb
	if plf.FuzzyLt(s.UpperBound, s.LowerBound) {
		s.Required = false
		s.Sources = Single(NoneSource)
		s.Cached = nil
		s.LowerBound = math.Inf(1)
		s.UpperBound = math.Inf(1)
	}
}

// ClearPLF drops the cached function to reclaim memory once a shortcut's
// exact value is no longer needed during the current phase (e.g. after
// perfect post-customization, before the graph is persisted with only
// bounds and provenance retained for on-demand reconstruction).
func (s *Shortcut) ClearPLF() {
	s.Cached = nil
}

// DisableIfUnnecessary marks a non-required shortcut as disabled, clearing
// its customization state. Used at the end of perfect post-customization:
// every arc that no parent link or surviving source references is disabled.
func (s *Shortcut) DisableIfUnnecessary() {
	if s.Required {
		return
	}
	s.Disabled = true
	s.Cached = nil
	s.Sources = Single(NoneSource)
	s.LowerBound = math.Inf(1)
	s.UpperBound = math.Inf(1)
}

// Reenable clears the Disabled flag (perfect post-customization can
// discover that a previously-elided arc is needed after all, e.g. as part
// of an elimination-tree corridor) and marks it Required.
func (s *Shortcut) Reenable() {
	s.Disabled = false
	s.Required = true
}
