package tdgraph

import "fmt"

// NoNode marks the absence of an elimination-tree parent (a root).
const NoNode uint32 = 1<<32 - 1

// StaticCCH is the metric-independent preprocessing output consumed by
// customization: the elimination tree (via Rank and Parent), and the
// chordal-supergraph upward adjacency shared by both CCH directions (an
// "upward" shortcut travels tail->head with rank(tail) < rank(head); a
// "downward" shortcut, stored at the same arc id, travels head->tail).
type StaticCCH struct {
	NumNodes uint32
	Rank     []uint32 // node -> rank (0 = eliminated first)
	Perm     []uint32 // rank -> node, the inverse of Rank; this is cch_perm

	// Parent is the elimination-tree parent of each node: its lowest-rank
	// upward neighbor in the chordal supergraph, or NoNode for a root.
	Parent []uint32

	FirstOut []uint32 // len NumNodes+1, CSR offsets into Head
	Head     []uint32 // len NumArcs, upward neighbor (higher rank than tail)
}

// ArcID indexes into a StaticCCH's Head array; the same id addresses the
// paired up/down shortcut planes in pkg/shortcut.Graph.
type ArcID = uint32

// NumArcs returns the number of CCH arcs (one per unordered chordal-
// supergraph edge).
func (c *StaticCCH) NumArcs() int { return len(c.Head) }

// ArcBetween returns the CCH arc id connecting lower-rank node u to
// higher-rank node w, if the chordal supergraph contains it.
func (c *StaticCCH) ArcBetween(u, w NodeID) (ArcID, bool) {
	lo, hi := c.FirstOut[u], c.FirstOut[u+1]
	for lo < hi {
		mid := (lo + hi) / 2
		h := c.Head[mid]
		switch {
		case h == w:
			return mid, true
		case h < w:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return 0, false
}

// Tail returns the lower-rank endpoint of arc a by scanning its CSR block.
// Customization code that iterates arc-by-arc already knows the tail from
// the outer loop; this is provided for code that only has an ArcID (e.g.
// diagnostics).
func (c *StaticCCH) Tail(a ArcID) NodeID {
	lo, hi := uint32(0), c.NumNodes
	for lo < hi {
		mid := (lo + hi) / 2
		if c.FirstOut[mid+1] <= a {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// DownNeighbors returns the arc ids of v's down-neighbors: the arcs (u, v)
// with rank(u) < rank(v), found by scanning every lower-rank node's CSR
// block. Customization instead precomputes this once per node via
// BuildDownAdjacency; this method is the reference (slow) definition used
// by tests.
func (c *StaticCCH) DownNeighbors(v NodeID) []ArcID {
	var out []ArcID
	for u := NodeID(0); u < c.NumNodes; u++ {
		if a, ok := c.ArcBetween(u, v); ok {
			out = append(out, a)
		}
	}
	return out
}

// DownAdjacency precomputes, for every node, the arc ids of its
// down-neighbors (arcs where this node is the head), needed for the
// down-neighborhood intersection in main customization's triangle
// enumeration.
type DownAdjacency struct {
	FirstDown []uint32 // len NumNodes+1
	DownArc   []ArcID  // arc id, indexed so DownArc[FirstDown[v]:FirstDown[v+1]] lists v's down-arcs
	DownTail  []uint32 // parallel to DownArc: the down-neighbor node id (tail of that arc)
}

// BuildDownAdjacency inverts the upward CSR once, in O(NumArcs).
func BuildDownAdjacency(c *StaticCCH) *DownAdjacency {
	degree := make([]uint32, c.NumNodes+1)
	for _, h := range c.Head {
		degree[h+1]++
	}
	for i := uint32(1); i <= c.NumNodes; i++ {
		degree[i] += degree[i-1]
	}
	firstDown := make([]uint32, c.NumNodes+1)
	copy(firstDown, degree)

	downArc := make([]ArcID, len(c.Head))
	downTail := make([]uint32, len(c.Head))
	cursor := make([]uint32, c.NumNodes)
	copy(cursor, degree[:c.NumNodes])

	for v := NodeID(0); v < c.NumNodes; v++ {
		for a := c.FirstOut[v]; a < c.FirstOut[v+1]; a++ {
			h := c.Head[a]
			pos := cursor[h]
			downArc[pos] = a
			downTail[pos] = v
			cursor[h]++
		}
	}
	return &DownAdjacency{FirstDown: firstDown, DownArc: downArc, DownTail: downTail}
}

// Down returns node v's down-arc ids and the corresponding down-neighbor
// node ids. Entries are produced in increasing down-neighbor node-id order;
// callers needing rank order should sort using the Rank array.
func (da *DownAdjacency) Down(v NodeID) (arcs []ArcID, tails []uint32) {
	lo, hi := da.FirstDown[v], da.FirstDown[v+1]
	return da.DownArc[lo:hi], da.DownTail[lo:hi]
}

// Validate checks the structural invariants required of the source DAG:
// Rank/Perm are mutually inverse permutations, and every arc goes from a
// lower to a strictly higher rank.
func (c *StaticCCH) Validate() error {
	if uint32(len(c.Rank)) != c.NumNodes || uint32(len(c.Perm)) != c.NumNodes {
		return fmt.Errorf("tdgraph: Rank/Perm length mismatch with NumNodes=%d", c.NumNodes)
	}
	seen := make([]bool, c.NumNodes)
	for r, v := range c.Perm {
		if v >= c.NumNodes {
			return fmt.Errorf("tdgraph: Perm[%d]=%d out of range", r, v)
		}
		if seen[v] {
			return fmt.Errorf("tdgraph: Perm is not a permutation, node %d repeated", v)
		}
		seen[v] = true
		if c.Rank[v] != uint32(r) {
			return fmt.Errorf("tdgraph: Rank[%d]=%d inconsistent with Perm[%d]=%d", v, c.Rank[v], r, v)
		}
	}
	for v := NodeID(0); v < c.NumNodes; v++ {
		for a := c.FirstOut[v]; a < c.FirstOut[v+1]; a++ {
			h := c.Head[a]
			if c.Rank[h] <= c.Rank[v] {
				return fmt.Errorf("tdgraph: arc %d->%d does not increase rank (%d -> %d)", v, h, c.Rank[v], c.Rank[h])
			}
		}
	}
	return nil
}
