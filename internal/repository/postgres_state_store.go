package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStateStore keeps guard state in the local_state table
// (see migrations/000001_create_local_state).
type PostgresStateStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStateStore creates a PostgresStateStore.
func NewPostgresStateStore(pool *pgxpool.Pool) *PostgresStateStore {
	return &PostgresStateStore{pool: pool}
}

func (s *PostgresStateStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM local_state WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select local_state: %w", err)
	}
	return value, true, nil
}

func (s *PostgresStateStore) Set(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO local_state (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	if err != nil {
		return fmt.Errorf("upsert local_state: %w", err)
	}
	return nil
}

func (s *PostgresStateStore) Remove(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM local_state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete local_state: %w", err)
	}
	return nil
}
