package tdgraph

import "sort"

// BuildStaticCCH runs the elimination game (symbolic fill-in / perfect
// elimination simulation) over the original graph's undirected skeleton,
// given a node order perm (rank -> node, read from the input's cch_perm
// array), producing the chordal supergraph adjacency and elimination tree.
//
// This is the one piece of metric-independent CCH construction that the
// core still has to perform even though it is otherwise an external
// collaborator's concern: the input format hands over a node order, not a
// ready-made chordal supergraph, so something has to derive one. The
// algorithm is the
// textbook elimination game used for symbolic sparse Cholesky factorization
// and, equivalently, CCH construction: process nodes from rank 0 upward;
// when eliminating v, every pair of its still-uneliminated neighbors
// becomes mutually adjacent (a fill edge), and v's own upward neighborhood
// at the moment of elimination is its final set of CCH up-arcs.
func BuildStaticCCH(g *TDGraph, perm []uint32) *StaticCCH {
	n := g.NumNodes
	rank := make([]uint32, n)
	for r, v := range perm {
		rank[v] = uint32(r)
	}

	adj := make([]map[uint32]struct{}, n)
	for v := range adj {
		adj[v] = make(map[uint32]struct{})
	}
	for u := NodeID(0); u < n; u++ {
		for a := g.FirstOut[u]; a < g.FirstOut[u+1]; a++ {
			v := g.Head[a]
			if u == v {
				continue
			}
			adj[u][v] = struct{}{}
			adj[v][u] = struct{}{}
		}
	}

	upNeighbors := make([][]uint32, n)
	parent := make([]uint32, n)

	for r := uint32(0); r < n; r++ {
		v := perm[r]
		var ups []uint32
		for u := range adj[v] {
			if rank[u] > r {
				ups = append(ups, u)
			}
		}
		sort.Slice(ups, func(i, j int) bool { return rank[ups[i]] < rank[ups[j]] })

		for i := 0; i < len(ups); i++ {
			for j := i + 1; j < len(ups); j++ {
				a, b := ups[i], ups[j]
				adj[a][b] = struct{}{}
				adj[b][a] = struct{}{}
			}
		}

		upNeighbors[v] = ups
		if len(ups) > 0 {
			parent[v] = ups[0]
		} else {
			parent[v] = NoNode
		}
	}

	firstOut := make([]uint32, n+1)
	for v := NodeID(0); v < n; v++ {
		firstOut[v+1] = firstOut[v] + uint32(len(upNeighbors[v]))
	}
	head := make([]uint32, firstOut[n])
	for v := NodeID(0); v < n; v++ {
		ups := upNeighbors[v]
		sort.Slice(ups, func(i, j int) bool { return ups[i] < ups[j] })
		copy(head[firstOut[v]:firstOut[v+1]], ups)
	}

	return &StaticCCH{
		NumNodes: n,
		Rank:     rank,
		Perm:     append([]uint32(nil), perm...),
		Parent:   parent,
		FirstOut: firstOut,
		Head:     head,
	}
}
