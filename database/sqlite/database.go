// Package sqlite implements attachment and preference persistence on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/attachly"
	"github.com/sagarc03/attachly/prefs"

	_ "modernc.org/sqlite" // SQLite driver
)

// database provides SQLite database operations.
type database struct {
	db     *sql.DB
	tables attachly.Tables
}

// Connect opens a SQLite database at dsn.
// Tables should be validated before calling Connect.
func Connect(ctx context.Context, dsn string, tables attachly.Tables) (*database, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	return New(db, tables), nil
}

// New wraps an already opened *sql.DB.
func New(db *sql.DB, tables attachly.Tables) *database {
	return &database{
		db:     db,
		tables: tables,
	}
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate creates the attachment and preference tables if missing.
func (d *database) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.db, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *database) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

// Attachments returns the attachment metadata repo.
func (d *database) Attachments() attachly.AttachmentRepo {
	return &attachmentRepo{db: d.db, tableName: d.tables.Attachments}
}

// Preferences returns the per-user preference repo.
func (d *database) Preferences() prefs.ReadWriter {
	return &preferenceRepo{db: d.db, tableName: d.tables.Preferences}
}

// Close closes the database connection.
func (d *database) Close() error {
	return d.db.Close()
}
