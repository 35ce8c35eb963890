// Package postgres owns the connection pool lifecycle.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soren0/counsel/db"
)

const pingTimeout = 5 * time.Second

// Connect runs pending migrations and opens a connection pool.
// The returned cleanup closes the pool.
func Connect(ctx context.Context, connURL string) (*pgxpool.Pool, func(), error) {
	if err := db.Migrate(connURL); err != nil {
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := Open(ctx, connURL)
	if err != nil {
		return nil, nil, err
	}

	return pool, pool.Close, nil
}

// Open creates a pool without touching the schema. Callers that manage
// migrations themselves (tests, the migrate command) use this directly.
func Open(ctx context.Context, connURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}
