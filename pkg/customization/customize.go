package customization

import (
	"github.com/tdcch/tdcch/pkg/shortcut"
	"github.com/tdcch/tdcch/pkg/stats"
	"github.com/tdcch/tdcch/pkg/tdgraph"
	"golang.org/x/sync/errgroup"
)

// MainCustomize computes the full travel-time function of every CCH arc,
// node by node in wavefront order, by merging each arc's lower-triangle
// candidates via Shortcut::merge.
func MainCustomize(g *shortcut.Graph, cch *tdgraph.StaticCCH, da *tdgraph.DownAdjacency, batches [][]tdgraph.NodeID, opts Options, origPLF shortcut.OriginalPLFLookup) error {
	numArcs := cch.NumArcs()
	rank := func(v tdgraph.NodeID) uint32 { return cch.Rank[v] }

	for _, batch := range batches {
		eg := new(errgroup.Group)
		eg.SetLimit(workerLimit(opts))
		for _, v := range batch {
			v := v
			eg.Go(func() error {
				return mergeUpperArcs(g, numArcs, cch, da, rank, v, opts, origPLF)
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}
	}
	return nil
}

func mergeUpperArcs(g *shortcut.Graph, numArcs int, cch *tdgraph.StaticCCH, da *tdgraph.DownAdjacency, rank rankFunc, v tdgraph.NodeID, opts Options, origPLF shortcut.OriginalPLFLookup) error {
	for a := cch.FirstOut[v]; a < cch.FirstOut[v+1]; a++ {
		w := cch.Head[a]
		legsV, legsW, mids := lowerTriangleLegs(da, v, w)
		if opts.SortTriangles {
			sortByLowerBoundSum(g, numArcs, legsV, legsW, mids)
		}
		for i, x := range mids {
			if err := relaxPLF(g, numArcs, rank, g.Period, a, v, w, legsV[i], x, legsW[i], origPLF); err != nil {
				return err
			}
		}

		up := &g.Arcs[PlaneArc(numArcs, a, directionPlane(rank(v), rank(w)))]
		up.Approximate(opts.ApproxThreshold, opts.ApproxTolerance)
		up.FinalizeBounds()

		down := &g.Arcs[PlaneArc(numArcs, a, directionPlane(rank(w), rank(v)))]
		down.Approximate(opts.ApproxThreshold, opts.ApproxTolerance)
		down.FinalizeBounds()
	}
	stats.Global.NodesSettled.Inc()
	return nil
}
