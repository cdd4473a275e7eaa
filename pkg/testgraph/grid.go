// Package testgraph builds small synthetic time-dependent graphs and their
// static CCHs for tests and benchmarks. Nothing here runs in the
// customization or query path; it exists purely to manufacture fixtures
// pkg/query's ground-truth comparisons and cmd/gentestdata can use.
package testgraph

import (
	"math/rand"

	"github.com/tdcch/tdcch/pkg/tdgraph"
)

// GridOptions controls a synthetic grid fixture.
type GridOptions struct {
	Rows, Cols int
	// EdgeLengthMeters is the base length of every grid edge, before any
	// peak-hour congestion is layered on.
	EdgeLengthMeters float64
	// SpeedMetersPerSec is the free-flow speed used to derive a base
	// travel time from EdgeLengthMeters.
	SpeedMetersPerSec float64
	// PeakCongestion is the multiplier applied to a random subset of
	// edges during the two daily rush-hour windows; 1 disables it.
	PeakCongestion float64
	// Seed makes edge congestion assignment reproducible.
	Seed int64
}

// DefaultGridOptions returns a modest urban-grid-like fixture: 30 m blocks,
// 40 km/h free flow, a 2.5x peak multiplier on about a third of edges.
func DefaultGridOptions(rows, cols int) GridOptions {
	return GridOptions{
		Rows:              rows,
		Cols:              cols,
		EdgeLengthMeters:  30,
		SpeedMetersPerSec: 11.1,
		PeakCongestion:    2.5,
		Seed:              1,
	}
}

// morningPeakStart, morningPeakEnd, eveningPeakStart, eveningPeakEnd are
// the rush-hour windows, in seconds since local midnight.
const (
	morningPeakStart = 7 * 3600
	morningPeakEnd   = 9 * 3600
	eveningPeakStart = 17 * 3600
	eveningPeakEnd   = 19 * 3600
)

// Grid builds a rows*cols 4-connected grid: every interior node has edges
// to its north/south/east/west neighbors, each direction a separate
// directed arc. About a third of edges (chosen pseudo-randomly from Seed)
// get a trapezoidal slowdown during the two daily peaks; the rest stay
// constant.
func Grid(opts GridOptions) *tdgraph.TDGraph {
	n := uint32(opts.Rows * opts.Cols)
	rng := rand.New(rand.NewSource(opts.Seed))
	baseSeconds := opts.EdgeLengthMeters / opts.SpeedMetersPerSec

	type rawEdge struct {
		from, to uint32
	}
	var edges []rawEdge
	idx := func(r, c int) uint32 { return uint32(r*opts.Cols + c) }
	for r := 0; r < opts.Rows; r++ {
		for c := 0; c < opts.Cols; c++ {
			u := idx(r, c)
			if c+1 < opts.Cols {
				v := idx(r, c+1)
				edges = append(edges, rawEdge{u, v}, rawEdge{v, u})
			}
			if r+1 < opts.Rows {
				v := idx(r+1, c)
				edges = append(edges, rawEdge{u, v}, rawEdge{v, u})
			}
		}
	}

	// Sort by (from, to) via a CSR-friendly bucket pass, since grid
	// construction above emits edges in u->v / v->u pairs, neither grouped
	// by tail nor head-sorted within a node.
	byFrom := make([][]uint32, n)
	congested := make([][]bool, n)
	for _, e := range edges {
		byFrom[e.from] = append(byFrom[e.from], e.to)
	}
	for u := range byFrom {
		heads := byFrom[u]
		for i := 1; i < len(heads); i++ {
			for j := i; j > 0 && heads[j-1] > heads[j]; j-- {
				heads[j-1], heads[j] = heads[j], heads[j-1]
			}
		}
		congested[u] = make([]bool, len(heads))
		for i := range congested[u] {
			congested[u][i] = rng.Float64() < 0.34
		}
	}

	g := &tdgraph.TDGraph{
		NumNodes:     n,
		FirstOut:     make([]uint32, n+1),
		PeriodMillis: tdgraph.DefaultPeriodMillis,
	}
	for v := uint32(0); v < n; v++ {
		g.FirstOut[v+1] = g.FirstOut[v] + uint32(len(byFrom[v]))
	}
	g.Head = make([]uint32, g.FirstOut[n])
	g.FirstIPP = make([]uint32, len(g.Head)+1)

	pos := uint32(0)
	for v := uint32(0); v < n; v++ {
		for i, h := range byFrom[v] {
			g.Head[pos] = h
			at, val := edgeIPPs(baseSeconds, opts.PeakCongestion, congested[v][i])
			g.FirstIPP[pos+1] = g.FirstIPP[pos] + uint32(len(at))
			g.IPPAt = append(g.IPPAt, at...)
			g.IPPVal = append(g.IPPVal, val...)
			pos++
		}
	}

	g.Lat = make([]float32, n)
	g.Lon = make([]float32, n)
	for r := 0; r < opts.Rows; r++ {
		for c := 0; c < opts.Cols; c++ {
			g.Lat[idx(r, c)] = float32(r) * float32(opts.EdgeLengthMeters) / 111_000
			g.Lon[idx(r, c)] = float32(c) * float32(opts.EdgeLengthMeters) / 111_000
		}
	}
	return g
}

// edgeIPPs builds one arc's periodic interpolation points, in milliseconds:
// a flat base travel time, or a trapezoidal bump during each rush hour if
// congested is set.
func edgeIPPs(baseSeconds, peak float64, congested bool) (at, val []uint32) {
	if !congested || peak <= 1 {
		return []uint32{0, tdgraph.DefaultPeriodMillis}, []uint32{secToMs(baseSeconds), secToMs(baseSeconds)}
	}
	peakVal := baseSeconds * peak
	at = []uint32{
		0,
		morningPeakStart * 1000,
		(morningPeakStart+morningPeakEnd)/2*1000 - 1,
		morningPeakEnd * 1000,
		eveningPeakStart * 1000,
		(eveningPeakStart+eveningPeakEnd)/2*1000 - 1,
		eveningPeakEnd * 1000,
		tdgraph.DefaultPeriodMillis,
	}
	val = []uint32{
		secToMs(baseSeconds),
		secToMs(baseSeconds),
		secToMs(peakVal),
		secToMs(baseSeconds),
		secToMs(baseSeconds),
		secToMs(peakVal),
		secToMs(baseSeconds),
		secToMs(baseSeconds),
	}
	return at, val
}

func secToMs(s float64) uint32 { return uint32(s * 1000) }
