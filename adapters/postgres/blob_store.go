package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gotally/domain/core"
	"gotally/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// BlobStore implements ports.BlobStore on a PostgreSQL table
type BlobStore struct {
	db *sqlx.DB
}

// NewBlobStore wraps an existing connection; call EnsureSchema before use
func NewBlobStore(db *sqlx.DB) *BlobStore {
	return &BlobStore{db: db}
}

// Connect opens a connection to databaseURL and ensures the table exists
func Connect(ctx context.Context, databaseURL string) (*BlobStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := NewBlobStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// EnsureSchema runs the schema migrations
func (r *BlobStore) EnsureSchema(ctx context.Context) error {
	return migration.NewRunner().Run(ctx, r.db)
}

// Put saves or replaces the blob under key
func (r *BlobStore) Put(ctx context.Context, key string, data []byte) error {
	query := `
		INSERT INTO dashboard_blobs (key, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, key, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save blob %s: %w", key, err)
	}
	return nil
}

// Get retrieves the blob under key
func (r *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM dashboard_blobs WHERE key = $1`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrBlobNotFound, key)
		}
		return nil, fmt.Errorf("failed to get blob %s: %w", key, err)
	}
	return data, nil
}

// Delete removes the blob under key
func (r *BlobStore) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM dashboard_blobs WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key is stored
func (r *BlobStore) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM dashboard_blobs WHERE key = $1)`, key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check blob %s: %w", key, err)
	}
	return exists, nil
}

// List returns keys beginning with prefix in key order
func (r *BlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := r.db.SelectContext(ctx, &keys,
		`SELECT key FROM dashboard_blobs WHERE starts_with(key, $1) ORDER BY key`, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}
	return keys, nil
}

// Close closes the underlying connection pool
func (r *BlobStore) Close() error {
	return r.db.Close()
}
