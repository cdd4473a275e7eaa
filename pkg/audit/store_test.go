package audit

import (
	"context"
	"os"
	"testing"
	"time"
)

// connectForTest skips the test unless AUDIT_TEST_DSN points at a reachable
// Postgres instance; there is no embedded/in-memory Postgres in this module.
func connectForTest(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("AUDIT_TEST_DSN")
	if dsn == "" {
		t.Skip("AUDIT_TEST_DSN not set, skipping Postgres-backed test")
	}
	ctx := context.Background()
	s, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.InitSchema(ctx); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	return s
}

func TestRecordRoundTrip(t *testing.T) {
	s := connectForTest(t)
	ctx := context.Background()

	id, err := s.Record(ctx, Record{
		Source:      1,
		Target:      2,
		DepartureMs: 3600000,
		DistanceMs:  1234.5,
		Reachable:   true,
		Latency:     250 * time.Microsecond,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id == "" {
		t.Fatal("Record returned empty id")
	}
}

func TestRecordUnreachable(t *testing.T) {
	s := connectForTest(t)
	ctx := context.Background()

	id, err := s.Record(ctx, Record{
		Source:      1,
		Target:      99,
		DepartureMs: 0,
		Reachable:   false,
		Latency:     10 * time.Microsecond,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id == "" {
		t.Fatal("Record returned empty id")
	}
}
