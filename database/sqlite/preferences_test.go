package sqlite_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sagarc03/attachly"
	"github.com/sagarc03/attachly/database/sqlite"
	"github.com/sagarc03/attachly/prefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferences_Missing(t *testing.T) {
	repo := setupTestDB(t).Preferences()

	_, err := repo.Preferences(context.Background(), "nobody")
	assert.ErrorIs(t, err, attachly.ErrNotFound)
}

func TestPreferences_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := setupTestDB(t).Preferences()

	require.NoError(t, repo.SetPreferences(ctx, "user-1", []byte(`{"theme":"dark"}`)))

	got, err := repo.Preferences(ctx, "user-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, string(got))

	require.NoError(t, repo.SetPreferences(ctx, "user-1", []byte(`{"theme":"light"}`)))

	got, err = repo.Preferences(ctx, "user-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"light"}`, string(got))
}

func TestPreferences_ResolverRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := setupTestDB(t).Preferences()

	resolver := prefs.NewResolver(repo)

	_, err := resolver.Resolve(ctx, "user-1")
	assert.ErrorIs(t, err, attachly.ErrConfigMissing)

	blob, err := prefs.Merge([]byte(`{"theme":"dark"}`), attachly.StorageConfig{
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: "secret",
		Region:          "us-east-1",
		BucketName:      "bkt",
		Endpoint:        "s3.example.com/",
		Enabled:         true,
	})
	require.NoError(t, err)
	require.NoError(t, repo.SetPreferences(ctx, "user-1", blob))

	cfg, err := resolver.Resolve(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com", cfg.Endpoint)
	assert.Equal(t, "bkt", cfg.BucketName)
}

func TestPreferences_DriverError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := sqlite.New(db, attachly.Tables{Attachments: "attachments", Preferences: "preferences"}).Preferences()
	dbDown := errors.New("db down")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT preferences FROM "preferences"`)).
		WithArgs("user-1").
		WillReturnError(dbDown)
	_, err = repo.Preferences(context.Background(), "user-1")
	assert.ErrorIs(t, err, dbDown)
	assert.NotErrorIs(t, err, attachly.ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "preferences"`)).WillReturnError(dbDown)
	err = repo.SetPreferences(context.Background(), "user-1", []byte(`{}`))
	assert.ErrorIs(t, err, dbDown)

	assert.NoError(t, mock.ExpectationsWereMet())
}
