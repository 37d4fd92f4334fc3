// Package db owns the Postgres pool, schema migrations and the order store.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PoolOptions struct {
	MaxConns           int32
	MinConns           int32
	MaxConnIdleTime    time.Duration
	SlowQueryThreshold time.Duration
	Logger             *slog.Logger
}

// DefaultPoolOptions sizes the pool for a single storefront instance.
func DefaultPoolOptions(logger *slog.Logger) PoolOptions {
	return PoolOptions{
		MaxConns:           10,
		MinConns:           1,
		MaxConnIdleTime:    5 * time.Minute,
		SlowQueryThreshold: 250 * time.Millisecond,
		Logger:             logger,
	}
}

func Connect(ctx context.Context, databaseURL string, opts PoolOptions) (*pgxpool.Pool, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 && opts.MinConns <= cfg.MaxConns {
		cfg.MinConns = opts.MinConns
	}
	if opts.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}
	cfg.ConnConfig.Tracer = newQueryTracer(opts.Logger, opts.SlowQueryThreshold)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}
