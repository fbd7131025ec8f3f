// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

/*
Package postgres manages the PostgreSQL connection pool lifecycle.

It wraps pgxpool with production-ready defaults for connection limits and
health checks, and exposes a single constructor used by the composition root.
*/
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// # Pool Tuning

const (
	// defaultMaxConns caps concurrent connections to protect the database.
	defaultMaxConns = 25

	// defaultMinConns keeps warm connections ready to absorb bursts.
	defaultMinConns = 2

	// defaultMaxConnLifetime recycles connections to avoid stale server state.
	defaultMaxConnLifetime = 30 * time.Minute

	// defaultMaxConnIdleTime releases connections idle beyond this window.
	defaultMaxConnIdleTime = 5 * time.Minute

	// connectTimeout bounds the initial connect-and-ping handshake.
	connectTimeout = 10 * time.Second
)

/*
NewPool establishes a connection pool against the given PostgreSQL URL and
verifies connectivity with a ping before returning.

Parameters:
  - ctx: context.Context for the initial handshake
  - databaseURL: PostgreSQL connection string (postgres://...)

Returns:
  - *pgxpool.Pool: A ready-to-use connection pool
  - error: If the URL is malformed or the database is unreachable
*/
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {

	// ── 1. Parse and tune the pool configuration ──
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid database URL: %w", err)
	}

	poolConfig.MaxConns = defaultMaxConns
	poolConfig.MinConns = defaultMinConns
	poolConfig.MaxConnLifetime = defaultMaxConnLifetime
	poolConfig.MaxConnIdleTime = defaultMaxConnIdleTime

	// ── 2. Establish the pool ──
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	// ── 3. Verify connectivity before handing the pool to callers ──
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping failed: %w", err)
	}

	return pool, nil
}
