// Package postgres persists game sessions in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/gospelrpg/internal/config"
)

// ErrSchemaMissing is returned by Health when the database answers but the
// session tables have not been migrated.
var ErrSchemaMissing = errors.New("session schema not migrated")

// sessionTables are the relations SessionRepository reads and writes.
var sessionTables = []string{"sessions", "party_members", "pool_items", "equipped_items"}

// Pool owns the connection pool that session storage runs on.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the database described by cfg.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &Pool{pool: pool}, nil
}

// Health checks within timeout that the database answers and that every
// session table exists.
//
// Postcondition: a missing table yields an error wrapping ErrSchemaMissing.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var missing []string
	err := p.pool.QueryRow(ctx,
		`SELECT coalesce(array_agg(t), '{}') FROM unnest($1::text[]) AS t
		 WHERE to_regclass(t) IS NULL`,
		sessionTables,
	).Scan(&missing)
	if err != nil {
		return fmt.Errorf("checking session schema: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrSchemaMissing, missing)
	}
	return nil
}

// Sessions returns a SessionRepository that shares this pool.
func (p *Pool) Sessions() *SessionRepository {
	return NewSessionRepository(p.pool)
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
