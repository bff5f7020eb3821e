package database_test

import (
	"context"
	"testing"

	"github.com/sagarc03/attachly"
	"github.com/sagarc03/attachly/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig() database.Config {
	return database.Config{
		Type: "sqlite",
		DSN:  ":memory:",
		Tables: attachly.Tables{
			Attachments: "attachments",
			Preferences: "user_preferences",
		},
	}
}

func TestConnect_SQLite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.Connect(ctx, newTestConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.NoError(t, db.Ping(ctx))
}

func TestConnect_InvalidType(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig()
	cfg.Type = "mysql"

	_, err := database.Connect(context.Background(), cfg)
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestConnect_InvalidTables(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig()
	cfg.Tables.Preferences = "Bad-Name"

	_, err := database.Connect(context.Background(), cfg)
	assert.ErrorContains(t, err, "invalid table name")
}

func TestOpen_AutoMigrate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := newTestConfig()
	cfg.AutoMigrate = true

	db, err := database.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rec, err := db.Attachments().Insert(ctx, attachly.NewAttachment{
		NoteID:   "n1",
		UserID:   "u1",
		Filename: "a.txt",
		FilePath: "notes/u1/n1/1.txt",
		FileType: "text/plain",
		FileSize: 3,
	})
	require.NoError(t, err)

	got, err := db.Attachments().Get(ctx, rec.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", got.Filename)

	require.NoError(t, db.Preferences().SetPreferences(ctx, "u1", []byte(`{}`)))
}

func TestOpen_WithoutMigrateFailsValidation(t *testing.T) {
	t.Parallel()

	_, err := database.Open(context.Background(), newTestConfig())
	assert.ErrorContains(t, err, "validate sqlite schema")
}
