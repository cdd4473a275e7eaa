// Package shortcut implements the CCH shortcut arc: its lower/upper bound,
// optional cached travel-time function, and the Sources list that records,
// for each sub-interval of the departure-time domain, which original edge or
// lower shortcut triangle currently realizes the minimum.
package shortcut

import (
	"fmt"
	"sort"

	"github.com/tdcch/tdcch/pkg/plf"
)

// EdgeID identifies an original (input) directed edge.
type EdgeID uint32

// ArcID identifies a CCH arc — an index into a Graph's Arcs slice.
type ArcID uint32

// NoArc is the sentinel ArcID meaning "absent".
const NoArc ArcID = 1<<32 - 1

// Kind distinguishes what realizes a shortcut over a sub-interval.
type Kind uint8

const (
	// KindNone means the shortcut is not realizable (no path) over the
	// interval; Eval on such an interval is +Inf.
	KindNone Kind = iota
	// KindOriginalEdge means an input edge directly realizes this shortcut.
	KindOriginalEdge
	// KindTriangle means a down-arc followed by an up-arc (both CCH arcs,
	// both with strictly smaller contraction rank than this arc's head)
	// realizes this shortcut: the lower triangle of the customization.
	KindTriangle
)

// Source identifies what realizes a shortcut at a given moment.
type Source struct {
	Kind         Kind
	OriginalEdge EdgeID // valid when Kind == KindOriginalEdge
	Down         ArcID  // valid when Kind == KindTriangle
	Up           ArcID  // valid when Kind == KindTriangle
}

// NoneSource is the zero-value "unrealizable" source.
var NoneSource = Source{Kind: KindNone}

// OriginalEdgeSource builds a source naming an input edge.
func OriginalEdgeSource(e EdgeID) Source {
	return Source{Kind: KindOriginalEdge, OriginalEdge: e}
}

// TriangleSource builds a source naming a down-arc/up-arc lower triangle.
func TriangleSource(down, up ArcID) Source {
	return Source{Kind: KindTriangle, Down: down, Up: up}
}

func (s Source) String() string {
	switch s.Kind {
	case KindNone:
		return "none"
	case KindOriginalEdge:
		return fmt.Sprintf("edge(%d)", s.OriginalEdge)
	case KindTriangle:
		return fmt.Sprintf("triangle(%d,%d)", s.Down, s.Up)
	default:
		return "invalid"
	}
}

// Interval is one entry of a Sources list: Source realizes the shortcut
// starting at departure time From (inclusive) up to, but not including, the
// next interval's From (wrapping at the period for the last interval).
type Interval struct {
	From plf.Timestamp
	Src  Source
}

// Sources is the ordered, period-wrapping validity list of an arc. Entries
// are sorted by From with the invariant Sources[0].From == 0.
type Sources []Interval

// Single returns a Sources list that realizes src over the whole period.
func Single(src Source) Sources {
	return Sources{{From: 0, Src: src}}
}

// At returns the Source governing departure time t.
func (s Sources) At(t plf.Timestamp, period float64) Source {
	if len(s) == 0 {
		return NoneSource
	}
	tw := wrapTime(t, period)
	idx := sort.Search(len(s), func(i int) bool { return s[i].From > tw })
	if idx == 0 {
		return s[len(s)-1].Src
	}
	return s[idx-1].Src
}

func wrapTime(t, period float64) float64 {
	if period <= 0 {
		return t
	}
	for t < 0 {
		t += period
	}
	for t >= period {
		t -= period
	}
	return t
}

// Validate checks the well-formedness invariant: non-empty, sorted strictly
// increasing From values, first entry at From == 0.
func (s Sources) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("shortcut: empty sources list")
	}
	if !plf.FuzzyEq(s[0].From, 0) {
		return fmt.Errorf("shortcut: sources[0].From = %v, want 0", s[0].From)
	}
	for i := 1; i < len(s); i++ {
		if !plf.FuzzyLt(s[i-1].From, s[i].From) {
			return fmt.Errorf("shortcut: sources not strictly increasing at %d: %v -> %v", i, s[i-1].From, s[i].From)
		}
	}
	return nil
}

// MergeSources combines base (the existing validity list) with candidate
// (covering the same period) using the witness list produced by plf.Merge:
// at each witness, the winner (true => base function "f" passed to
// plf.Merge, false => "g") determines which of base/candidate contributes its
// Source for the following interval.
func MergeSources(base, candidate Sources, witnesses []plf.Witness) Sources {
	if len(witnesses) == 0 {
		return base
	}
	out := make(Sources, 0, len(witnesses))
	for _, w := range witnesses {
		var src Source
		if w.FBetterAfter {
			src = base.At(w.At, 0)
		} else {
			src = candidate.At(w.At, 0)
		}
		if len(out) > 0 && out[len(out)-1].Src == src {
			continue
		}
		out = append(out, Interval{From: w.At, Src: src})
	}
	if len(out) == 0 || !plf.FuzzyEq(out[0].From, 0) {
		// witnesses[0].At is always the domain start in plf.Merge's output.
		if len(out) > 0 {
			out[0].From = 0
		}
	}
	return out
}
