package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Slots stores key-value slots in the slots table.
type Slots struct {
	db    *pgxpool.Pool
	owned bool
}

// NewSlots creates a Slots backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with the slots table migrated.
// Postcondition: Close on the result leaves db open.
func NewSlots(db *pgxpool.Pool) *Slots {
	return &Slots{db: db}
}

// Get returns the value stored under key.
//
// Postcondition: ok is false and err nil when the key has never been written.
func (s *Slots) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(ctx, `SELECT value FROM slots WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("selecting slot %q: %w", key, err)
	}
	return value, true, nil
}

// Put upserts value under key.
func (s *Slots) Put(ctx context.Context, key, value string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO slots (key, value, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upserting slot %q: %w", key, err)
	}
	return nil
}
