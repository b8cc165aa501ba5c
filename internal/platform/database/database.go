// Package database opens the PostgreSQL pool used by the postgres document store.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

type options struct {
	maxConns     int32
	minConns     int32
	connLifetime time.Duration
	idleTime     time.Duration
	pingTimeout  time.Duration
}

// Option configures the pool.
type Option func(*options)

// WithMaxConns caps the number of open connections.
func WithMaxConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConns = int32(n)
		}
	}
}

// WithMinConns keeps n connections warm.
func WithMinConns(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.minConns = int32(n)
		}
	}
}

// WithPingTimeout bounds the startup connectivity check.
func WithPingTimeout(d time.Duration) Option {
	return func(o *options) { o.pingTimeout = d }
}

// ParseURL validates a PostgreSQL connection URL.
func ParseURL(url string) (*pgxpool.Config, error) {
	if url == "" {
		return nil, fmt.Errorf("database URL is empty")
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}
	return cfg, nil
}

// New creates a connection pool and verifies it with a ping. The document store
// issues one query per request, so the defaults are small.
func New(ctx context.Context, url string, opts ...Option) (*DB, error) {
	o := options{
		maxConns:     10,
		minConns:     1,
		connLifetime: 30 * time.Minute,
		idleTime:     5 * time.Minute,
		pingTimeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.minConns > o.maxConns {
		o.minConns = o.maxConns
	}

	cfg, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = o.maxConns
	cfg.MinConns = o.minConns
	cfg.MaxConnLifetime = o.connLifetime
	cfg.MaxConnIdleTime = o.idleTime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, o.pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close shuts down the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// HealthCheck verifies the database connection is alive.
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}
