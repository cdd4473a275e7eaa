// Package audit is an optional Postgres sink for served CATCHUp queries:
// source, target, departure time, result and latency, each row keyed by a
// fresh UUID. Disabled unless a caller explicitly Connects a DSN; nothing
// else in this module depends on it.
package audit

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// Store persists query records to Postgres via a pooled connection.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a connection pool against dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("audit: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema creates the query_audit table if it does not already exist.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("audit: init schema: %w", err)
	}
	return nil
}

// Record persists one served query, assigning it a fresh UUID and returning
// that id. The insert runs in its own transaction since it's the only
// statement; callers that batch many queries per customization run should
// do their own batching above this method.
func (s *Store) Record(ctx context.Context, r Record) (string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("audit: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id := uuid.New().String()
	const insertSQL = `
		INSERT INTO query_audit
		(id, source_node, target_node, departure_ms, distance_ms, reachable, latency_us, served_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	servedAt := r.ServedAt
	if servedAt.IsZero() {
		servedAt = time.Now()
	}
	var distance *float64
	if r.Reachable {
		distance = &r.DistanceMs
	}
	_, err = tx.Exec(ctx, insertSQL,
		id, r.Source, r.Target, r.DepartureMs, distance, r.Reachable,
		r.Latency.Microseconds(), servedAt,
	)
	if err != nil {
		return "", fmt.Errorf("audit: insert: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("audit: commit: %w", err)
	}
	return id, nil
}
