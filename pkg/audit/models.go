package audit

import "time"

// Record is one served CATCHUp query, as persisted by Store.Record.
type Record struct {
	ID          string
	Source      uint32
	Target      uint32
	DepartureMs float64
	DistanceMs  float64
	Reachable   bool
	Latency     time.Duration
	ServedAt    time.Time
}
