package customization

import (
	"runtime"
	"sort"

	"github.com/tdcch/tdcch/pkg/shortcut"
	"github.com/tdcch/tdcch/pkg/tdgraph"
	"golang.org/x/sync/errgroup"
)

// BoundsOnlyPreCustomize relaxes every arc's bound pair via its lower
// triangles, node by node in wavefront (ascending-rank-respecting) order, to
// produce admissible lower bounds used for pruning throughout main
// customization.
func BoundsOnlyPreCustomize(g *shortcut.Graph, cch *tdgraph.StaticCCH, da *tdgraph.DownAdjacency, batches [][]tdgraph.NodeID, opts Options) error {
	numArcs := cch.NumArcs()
	rank := func(v tdgraph.NodeID) uint32 { return cch.Rank[v] }

	for _, batch := range batches {
		eg := new(errgroup.Group)
		eg.SetLimit(workerLimit(opts))
		for _, v := range batch {
			v := v
			eg.Go(func() error {
				relaxUpperArcBounds(g, numArcs, cch, da, rank, v, opts)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}
	}
	return nil
}

func relaxUpperArcBounds(g *shortcut.Graph, numArcs int, cch *tdgraph.StaticCCH, da *tdgraph.DownAdjacency, rank rankFunc, v tdgraph.NodeID, opts Options) {
	for a := cch.FirstOut[v]; a < cch.FirstOut[v+1]; a++ {
		w := cch.Head[a]
		legsV, legsW, mids := lowerTriangleLegs(da, v, w)
		if opts.SortTriangles {
			sortByLowerBoundSum(g, numArcs, legsV, legsW, mids)
		}
		for i, x := range mids {
			relaxBounds(g, numArcs, rank, a, v, w, legsV[i], x, legsW[i])
		}
		ac := &g.Arcs[PlaneArc(numArcs, a, directionPlane(rank(v), rank(w)))]
		ac.FinalizeBounds()
		ca := &g.Arcs[PlaneArc(numArcs, a, directionPlane(rank(w), rank(v)))]
		ca.FinalizeBounds()
	}
}

// sortByLowerBoundSum orders triangle candidates by the sum of their two
// legs' lower bounds, a locality heuristic that tends to settle on a tight
// bound earlier and lets later candidates skip via MergeBounds's early-out.
func sortByLowerBoundSum(g *shortcut.Graph, numArcs int, legsV, legsW []tdgraph.ArcID, mids []tdgraph.NodeID) {
	idx := make([]int, len(mids))
	for i := range idx {
		idx[i] = i
	}
	weight := func(i int) float64 {
		return g.Arcs[legsV[i]].LowerBound + g.Arcs[legsW[i]].LowerBound
	}
	sort.Slice(idx, func(i, j int) bool { return weight(idx[i]) < weight(idx[j]) })
	origLegsV := append([]tdgraph.ArcID(nil), legsV...)
	origLegsW := append([]tdgraph.ArcID(nil), legsW...)
	origMids := append([]tdgraph.NodeID(nil), mids...)
	for pos, i := range idx {
		legsV[pos] = origLegsV[i]
		legsW[pos] = origLegsW[i]
		mids[pos] = origMids[i]
	}
}

func workerLimit(opts Options) int {
	if opts.Workers > 0 {
		return opts.Workers
	}
	return runtime.GOMAXPROCS(0)
}
