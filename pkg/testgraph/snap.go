package testgraph

import (
	"math/rand"

	"github.com/tidwall/rtree"

	"github.com/tdcch/tdcch/pkg/geo"
	"github.com/tdcch/tdcch/pkg/tdgraph"
)

// Snapper answers nearest-node queries against a fixture's coordinates, for
// generating random but geographically plausible source/target pairs in
// ground-truth comparison tests.
type Snapper struct {
	tr   rtree.RTree
	lat  []float32
	lon  []float32
}

// NewSnapper indexes every node in g that carries a coordinate.
func NewSnapper(g *tdgraph.TDGraph) *Snapper {
	s := &Snapper{lat: g.Lat, lon: g.Lon}
	for v := uint32(0); v < g.NumNodes; v++ {
		if int(v) >= len(g.Lat) {
			break
		}
		point := [2]float64{float64(g.Lon[v]), float64(g.Lat[v])}
		s.tr.Insert(point, point, v)
	}
	return s
}

// Nearest returns the node id closest to (lat, lon) by great-circle
// distance, scanning the handful of candidates the rtree's bounding-box
// search returns rather than every node.
func (s *Snapper) Nearest(lat, lon float64) (uint32, bool) {
	best := uint32(0)
	bestDist := -1.0
	found := false

	// Expand the search box until at least one candidate is found; the
	// index is small enough (test fixtures only) that this never takes
	// more than a couple of expansions (the radius quadruples each step).
	for radius := 0.01; radius < 10 && !found; radius *= 4 {
		min := [2]float64{lon - radius, lat - radius}
		max := [2]float64{lon + radius, lat + radius}
		s.tr.Search(min, max, func(_, _ [2]float64, value any) bool {
			v := value.(uint32)
			d := geo.Haversine(lat, lon, float64(s.lat[v]), float64(s.lon[v]))
			if !found || d < bestDist {
				best, bestDist, found = v, d, true
			}
			return true
		})
	}
	return best, found
}

// RandomPair picks a pseudo-random source/target pair from g's indexed
// nodes, distinct and both present in the rtree index.
func (s *Snapper) RandomPair(rng *rand.Rand, n uint32) (source, target uint32) {
	source = uint32(rng.Intn(int(n)))
	target = uint32(rng.Intn(int(n)))
	for target == source && n > 1 {
		target = uint32(rng.Intn(int(n)))
	}
	return source, target
}
