package testgraph

import "github.com/tdcch/tdcch/pkg/tdgraph"

// undirectedAdjacency flattens a TDGraph's directed CSR into per-node
// undirected neighbor lists (a->b implies an undirected edge regardless of
// whether b->a also exists), the input EliminationOrder expects.
func undirectedAdjacency(g *tdgraph.TDGraph) [][]uint32 {
	adj := make([][]uint32, g.NumNodes)
	for v := uint32(0); v < g.NumNodes; v++ {
		for a := g.FirstOut[v]; a < g.FirstOut[v+1]; a++ {
			w := g.Head[a]
			adj[v] = append(adj[v], w)
			adj[w] = append(adj[w], v)
		}
	}
	return adj
}

// BuildCCH computes a min-edge-difference elimination order for g and the
// resulting static CCH, in one call — the fixture-generation counterpart
// to a production pipeline's separately-supplied, precomputed order.
func BuildCCH(g *tdgraph.TDGraph) *tdgraph.StaticCCH {
	perm := EliminationOrder(int(g.NumNodes), undirectedAdjacency(g))
	return tdgraph.BuildStaticCCH(g, perm)
}
