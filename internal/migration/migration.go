package migration

import (
	"context"

	"gotally/internal/errors"

	"github.com/jmoiron/sqlx"
)

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in order. Every step is idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createBlobsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create dashboard_blobs table")
	}
	return nil
}

// createBlobsTable creates the key/value table backing the blob store
func (r *MigrationRunner) createBlobsTable(ctx context.Context, db *sqlx.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS dashboard_blobs (
			key        TEXT PRIMARY KEY,
			data       BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return errors.DatabaseError("create dashboard_blobs", err)
	}
	return nil
}
