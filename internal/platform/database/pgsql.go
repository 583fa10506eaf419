// Package database sets up and tears down the pgxpool.Pool used by the
// rest of the application.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/victorotene80/sirara-core/internal/ledgerctx"
)

// Options configures the connection pool beyond the bare DSN.
type Options struct {
	MaxConns int32
	// AcquireTimeout is applied as the pool's health-check period. It
	// does not bound how long an acquire waits for a free connection;
	// only the caller's context deadline does that.
	AcquireTimeout time.Duration
}

// NewPgxPool parses databaseURL, applies Options, opens the pool, and
// verifies connectivity with a Ping before returning.
func NewPgxPool(ctx context.Context, databaseURL string, opts Options) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config from URL: %w", err)
	}

	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.AcquireTimeout > 0 {
		config.HealthCheckPeriod = opts.AcquireTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	ledgerctx.FromContext(ctx).Info("connected to postgres", "max_conns", config.MaxConns)
	return pool, nil
}

// ClosePgxPool closes the pool if non-nil, logging on the background
// context since callers typically invoke this during shutdown after
// their own context has already been cancelled.
func ClosePgxPool(pool *pgxpool.Pool) {
	if pool == nil {
		return
	}
	pool.Close()
	ledgerctx.FromContext(context.Background()).Info("postgres connection pool closed")
}
