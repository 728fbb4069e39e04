package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrKeyNotFound is returned when a requested key is not in the table.
var ErrKeyNotFound = errors.New("key not found")

// IsKeyNotFound returns true if the error is an ErrKeyNotFound error.
func IsKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

// Entry is one mirrored document.
type Entry struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// Repository stores mirrored channel documents keyed by document name.
type Repository interface {
	// Put inserts or replaces a document.
	Put(ctx context.Context, key string, value []byte) error

	// Get returns a document by key. Returns ErrKeyNotFound when absent.
	Get(ctx context.Context, key string) (*Entry, error)

	// Keys lists every stored key, ordered.
	Keys(ctx context.Context) ([]string, error)

	// UpdatedSince lists keys written at or after the given time.
	UpdatedSince(ctx context.Context, since time.Time) ([]string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository ensures the channel_kv table exists and returns a
// repository over it.
func NewRepository(ctx context.Context, pool *pgxpool.Pool) (Repository, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS channel_kv (
			key        TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("create channel_kv table: %w", err)
	}
	return &repository{pool: pool}, nil
}

func (r *repository) Put(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO channel_kv (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = EXCLUDED.updated_at
	`
	if _, err := r.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, key string) (*Entry, error) {
	query := `SELECT key, value, updated_at FROM channel_kv WHERE key = $1`

	var entry Entry
	err := r.pool.QueryRow(ctx, query, key).Scan(&entry.Key, &entry.Value, &entry.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", key, ErrKeyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return &entry, nil
}

func (r *repository) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT key FROM channel_kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("list keys: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (r *repository) UpdatedSince(ctx context.Context, since time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT key FROM channel_kv WHERE updated_at >= $1 ORDER BY key`, since)
	if err != nil {
		return nil, fmt.Errorf("list updated keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("list updated keys: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
