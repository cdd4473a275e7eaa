// Package stats holds process-wide reporting counters: plain atomics updated
// with relaxed ordering, consumed only by the reporting side (pkg/opsserver).
// They never gate correctness; customization and queries would behave
// identically with this package deleted.
package stats

import "go.uber.org/atomic"

// Counters is a fixed set of process-wide counters. The zero value is ready
// to use; there is normally one package-level instance (Global).
type Counters struct {
	IPPsStored       atomic.Int64
	MergesPerformed  atomic.Int64
	Approximations   atomic.Int64
	NodesSettled     atomic.Int64
	QueriesServed    atomic.Int64
	CustomizationRun atomic.Int64
}

// Global is the counter set pkg/shortcut, pkg/customization and pkg/query
// update and pkg/opsserver reports.
var Global = &Counters{}

// Snapshot is a point-in-time, JSON-friendly copy of Counters.
type Snapshot struct {
	IPPsStored       int64 `json:"ipps_stored"`
	MergesPerformed  int64 `json:"merges_performed"`
	Approximations   int64 `json:"approximations"`
	NodesSettled     int64 `json:"nodes_settled"`
	QueriesServed    int64 `json:"queries_served"`
	CustomizationRun int64 `json:"customization_runs"`
}

// Snapshot reads every counter. Each load is independent, so concurrent
// increments can interleave with the read of a sibling field; that's fine
// for a reporting-only snapshot.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		IPPsStored:       c.IPPsStored.Load(),
		MergesPerformed:  c.MergesPerformed.Load(),
		Approximations:   c.Approximations.Load(),
		NodesSettled:     c.NodesSettled.Load(),
		QueriesServed:    c.QueriesServed.Load(),
		CustomizationRun: c.CustomizationRun.Load(),
	}
}

// Reset zeroes every counter. Intended for tests and for cmd/customize
// between independent runs in the same process (e.g. benchmarks).
func (c *Counters) Reset() {
	c.IPPsStored.Store(0)
	c.MergesPerformed.Store(0)
	c.Approximations.Store(0)
	c.NodesSettled.Store(0)
	c.QueriesServed.Store(0)
	c.CustomizationRun.Store(0)
}
