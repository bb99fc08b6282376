package repository

import (
	"context"
	"errors"
	"fmt"

	"dulce-kart/internal/kvstore"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// KVRepository is a kvstore.Store backed by the kv_store table.
type KVRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewKVRepository creates a new PostgreSQL-backed key-value store.
func NewKVRepository(pool *pgxpool.Pool, logger zerolog.Logger) *KVRepository {
	return &KVRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "kv").Logger(),
	}
}

// Get returns the value stored at key or kvstore.ErrNotFound.
func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, kvstore.ErrNotFound
		}
		r.logger.Error().Err(err).Str("key", key).Msg("failed to read key")
		return nil, fmt.Errorf("failed to read key: %w", err)
	}
	return value, nil
}

// Set upserts value at key. Concurrent writers to the same key resolve as
// last write wins.
func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.pool.Exec(ctx, query, key, value); err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to write key")
		return fmt.Errorf("failed to write key: %w", err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (r *KVRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to delete key")
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}
