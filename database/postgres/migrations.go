package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/attachly"
)

// Migrate creates every table and index. It is safe to run repeatedly.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables attachly.Tables) error {
	if err := createAttachmentsTable(ctx, pool, tables.Attachments); err != nil {
		return err
	}
	if err := createPreferencesTable(ctx, pool, tables.Preferences); err != nil {
		return err
	}
	return nil
}

// DropTables removes both tables.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables attachly.Tables) error {
	for _, name := range []string{tables.Preferences, tables.Attachments} {
		sql := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", pgx.Identifier{name}.Sanitize())
		if _, err := pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("drop table %s: %w", name, err)
		}
	}
	return nil
}

func createAttachmentsTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexNoteID := pgx.Identifier{fmt.Sprintf("idx_%s_note_id", tableName)}.Sanitize()
	indexUserID := pgx.Identifier{fmt.Sprintf("idx_%s_user_id", tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			note_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			file_path TEXT NOT NULL,
			file_type TEXT NOT NULL,
			file_size BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS %s ON %s (note_id);

		CREATE INDEX IF NOT EXISTS %s ON %s (user_id);
	`,
		quotedTable,
		indexNoteID, quotedTable,
		indexUserID, quotedTable,
	)

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create attachments table: %w", err)
	}
	return nil
}

func createPreferencesTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			user_id TEXT PRIMARY KEY,
			preferences JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, pgx.Identifier{tableName}.Sanitize())

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create preferences table: %w", err)
	}
	return nil
}
