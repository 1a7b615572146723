// Package postgres provides the PostgreSQL slot backend using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/pokegen/internal/config"
)

// ErrSchemaMissing is returned by Open when the slots table has not been migrated.
var ErrSchemaMissing = errors.New("slots table missing; run cmd/migrate")

// Open connects a pool sized by cfg and returns a Slots that owns it.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a Slots whose database answered a ping and has the slots table,
// or a non-nil error with no pool left open. The caller must Close the result.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Slots, error) {
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
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := checkSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Slots{db: pool, owned: true}, nil
}

func checkSchema(ctx context.Context, db *pgxpool.Pool) error {
	var present bool
	err := db.QueryRow(ctx, `SELECT to_regclass('public.slots') IS NOT NULL`).Scan(&present)
	if err != nil {
		return fmt.Errorf("checking schema: %w", err)
	}
	if !present {
		return ErrSchemaMissing
	}
	return nil
}

// Ping checks that the database is reachable within timeout.
func (s *Slots) Ping(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.db.Ping(ctx)
}

// Close releases the pool when s owns it. Slots built with NewSlots leave the pool to the caller.
func (s *Slots) Close() {
	if s.owned {
		s.db.Close()
	}
}
