package testgraph

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"

	tdosm "github.com/tdcch/tdcch/pkg/osm"
	"github.com/tdcch/tdcch/pkg/tdgraph"

	pkgosm "github.com/paulmach/osm"
)

// OSMOptions configures synthetic time-dependent fixture generation from an
// OSM extract.
type OSMOptions struct {
	BBox tdosm.BBox
	// SpeedMetersPerSec is the free-flow speed assumed for every edge;
	// real speed limits aren't modeled, since this is fixture generation,
	// not production ingestion.
	SpeedMetersPerSec float64
	// PeakCongestion is the multiplier applied during the two daily rush
	// hours to edges pseudo-random selection marks as arterial.
	PeakCongestion float64
	Seed           int64
}

// DefaultOSMOptions returns typical urban-arterial parameters.
func DefaultOSMOptions() OSMOptions {
	return OSMOptions{SpeedMetersPerSec: 11.1, PeakCongestion: 2.2, Seed: 7}
}

// FromOSM parses an OSM PBF extract into a synthetic time-dependent graph:
// the road network's topology and geometry come from the extract itself,
// but every edge's PLF is assigned by this package (peak-hour slowdown on a
// pseudo-random arterial subset), since OSM carries no time-dependent
// travel-time data.
func FromOSM(ctx context.Context, rs io.ReadSeeker, opts OSMOptions) (*tdgraph.TDGraph, error) {
	result, err := tdosm.Parse(ctx, rs, tdosm.ParseOptions{BBox: opts.BBox})
	if err != nil {
		return nil, fmt.Errorf("testgraph: parsing OSM extract: %w", err)
	}

	nodeIDs := make([]pkgosm.NodeID, 0, len(result.NodeLat))
	for id := range result.NodeLat {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Slice(nodeIDs, func(i, j int) bool { return nodeIDs[i] < nodeIDs[j] })
	index := make(map[pkgosm.NodeID]uint32, len(nodeIDs))
	for i, id := range nodeIDs {
		index[id] = uint32(i)
	}
	n := uint32(len(nodeIDs))

	type rawEdge struct {
		from, to uint32
		meters   float64
	}
	edges := make([]rawEdge, 0, len(result.Edges))
	for _, e := range result.Edges {
		from, ok1 := index[e.FromNodeID]
		to, ok2 := index[e.ToNodeID]
		if !ok1 || !ok2 || from == to {
			continue
		}
		edges = append(edges, rawEdge{from, to, float64(e.Weight) / 1000.0})
	}

	byFrom := make([][]rawEdge, n)
	for _, e := range edges {
		byFrom[e.from] = append(byFrom[e.from], e)
	}
	for v := range byFrom {
		sort.Slice(byFrom[v], func(i, j int) bool { return byFrom[v][i].to < byFrom[v][j].to })
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	g := &tdgraph.TDGraph{
		NumNodes:     n,
		FirstOut:     make([]uint32, n+1),
		PeriodMillis: tdgraph.DefaultPeriodMillis,
		Lat:          make([]float32, n),
		Lon:          make([]float32, n),
	}
	for i, id := range nodeIDs {
		g.Lat[i] = float32(result.NodeLat[id])
		g.Lon[i] = float32(result.NodeLon[id])
	}
	for v := uint32(0); v < n; v++ {
		g.FirstOut[v+1] = g.FirstOut[v] + uint32(len(byFrom[v]))
	}
	g.Head = make([]uint32, g.FirstOut[n])
	g.FirstIPP = make([]uint32, len(g.Head)+1)

	pos := uint32(0)
	for v := uint32(0); v < n; v++ {
		for _, e := range byFrom[v] {
			g.Head[pos] = e.to
			baseSeconds := e.meters / opts.SpeedMetersPerSec
			arterial := rng.Float64() < 0.25
			at, val := edgeIPPs(baseSeconds, opts.PeakCongestion, arterial)
			g.FirstIPP[pos+1] = g.FirstIPP[pos] + uint32(len(at))
			g.IPPAt = append(g.IPPAt, at...)
			g.IPPVal = append(g.IPPVal, val...)
			pos++
		}
	}
	return g, nil
}
