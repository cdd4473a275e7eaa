package customization

import "github.com/tdcch/tdcch/pkg/tdgraph"

// Wavefront computes a node-processing order for main customization, grouped
// into batches that can run concurrently. Processing a node needs every one
// of its down-neighbors (the arcs where it is the head) already finished,
// since those arcs supply the legs of its own upper-arc triangles; nothing
// else is shared between two nodes' upper-arc work, so this direct
// dependency is also sufficient, not just necessary.
//
// This stands in for the nested-dissection separator-tree schedule of a
// from-scratch CCH implementation: the input format here only carries a
// node order (cch_perm), not separator-cell boundaries, so batches are
// derived straight from the CCH arc dependency DAG via a Kahn's-algorithm
// wavefront instead. It is provably dependency-safe (two nodes in the same
// batch share no arc) and degrades gracefully to the same total work.
func Wavefront(cch *tdgraph.StaticCCH) [][]tdgraph.NodeID {
	n := cch.NumNodes
	pending := make([]uint32, n)
	da := tdgraph.BuildDownAdjacency(cch)
	for v := tdgraph.NodeID(0); v < n; v++ {
		arcs, _ := da.Down(v)
		pending[v] = uint32(len(arcs))
	}

	var batches [][]tdgraph.NodeID
	var ready []tdgraph.NodeID
	for v := tdgraph.NodeID(0); v < n; v++ {
		if pending[v] == 0 {
			ready = append(ready, v)
		}
	}
	processed := uint32(0)
	for len(ready) > 0 {
		batches = append(batches, ready)
		processed += uint32(len(ready))
		var next []tdgraph.NodeID
		for _, v := range ready {
			for a := cch.FirstOut[v]; a < cch.FirstOut[v+1]; a++ {
				w := cch.Head[a]
				pending[w]--
				if pending[w] == 0 {
					next = append(next, w)
				}
			}
		}
		ready = next
	}
	if processed != n {
		panic("customization: CCH arc dependency graph is not a DAG (rank invariant violated)")
	}
	return batches
}
