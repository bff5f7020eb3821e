package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/attachly"
)

// quoteIdentifier safely quotes a SQLite identifier
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

type TableMigration struct {
	TableName string
	Up        func(ctx context.Context, db *sql.DB) error
	Down      func(ctx context.Context, db *sql.DB) error
}

func getTableMigrations(tables attachly.Tables) []TableMigration {
	return []TableMigration{
		{
			TableName: tables.Attachments,
			Up:        createAttachmentsTable(tables.Attachments),
			Down:      dropTable(tables.Attachments),
		},
		{
			TableName: tables.Preferences,
			Up:        createPreferencesTable(tables.Preferences),
			Down:      dropTable(tables.Preferences),
		},
	}
}

// Migrate runs every table migration. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *sql.DB, tables attachly.Tables) error {
	for _, migration := range getTableMigrations(tables) {
		if err := migration.Up(ctx, db); err != nil {
			return fmt.Errorf("migrate up %s: %w", migration.TableName, err)
		}
	}
	return nil
}

// DropTables drops every table in reverse migration order.
func DropTables(ctx context.Context, db *sql.DB, tables attachly.Tables) error {
	migrations := getTableMigrations(tables)

	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if err := migration.Down(ctx, db); err != nil {
			return fmt.Errorf("migrate down %s: %w", migration.TableName, err)
		}
	}

	return nil
}

func createAttachmentsTable(tableName string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		quotedTable := quoteIdentifier(tableName)

		createTableSQL := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT NOT NULL PRIMARY KEY,
				note_id TEXT NOT NULL,
				user_id TEXT NOT NULL,
				filename TEXT NOT NULL,
				file_path TEXT NOT NULL,
				file_type TEXT NOT NULL,
				file_size INTEGER NOT NULL,
				created_at TEXT NOT NULL
			)
		`, quotedTable)

		if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
			return fmt.Errorf("create table: %w", err)
		}

		for _, column := range []string{"note_id", "user_id"} {
			index := quoteIdentifier(fmt.Sprintf("idx_%s_%s", tableName, column))
			indexSQL := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (%s)`, index, quotedTable, column)
			if _, err := db.ExecContext(ctx, indexSQL); err != nil {
				return fmt.Errorf("create index %s: %w", column, err)
			}
		}

		return nil
	}
}

func createPreferencesTable(tableName string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		createTableSQL := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				user_id TEXT NOT NULL PRIMARY KEY,
				preferences TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)
		`, quoteIdentifier(tableName))

		if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
		return nil
	}
}

func dropTable(tableName string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdentifier(tableName))
		_, err := db.ExecContext(ctx, dropSQL)
		return err
	}
}
