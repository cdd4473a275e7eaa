package stats

import "testing"

func TestSnapshotReflectsIncrements(t *testing.T) {
	c := &Counters{}
	c.IPPsStored.Add(3)
	c.MergesPerformed.Add(2)
	c.Approximations.Add(1)
	c.NodesSettled.Add(7)
	c.QueriesServed.Add(4)
	c.CustomizationRun.Add(1)

	snap := c.Snapshot()
	want := Snapshot{
		IPPsStored:       3,
		MergesPerformed:  2,
		Approximations:   1,
		NodesSettled:     7,
		QueriesServed:    4,
		CustomizationRun: 1,
	}
	if snap != want {
		t.Errorf("Snapshot() = %+v, want %+v", snap, want)
	}
}

func TestReset(t *testing.T) {
	c := &Counters{}
	c.MergesPerformed.Add(5)
	c.Reset()
	if got := c.Snapshot(); got != (Snapshot{}) {
		t.Errorf("Snapshot() after Reset = %+v, want zero value", got)
	}
}
