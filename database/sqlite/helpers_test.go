package sqlite_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/sagarc03/attachly"
	"github.com/sagarc03/attachly/database/sqlite"
	"github.com/sagarc03/attachly/prefs"
	"github.com/stretchr/testify/require"
)

type testDB interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	Attachments() attachly.AttachmentRepo
	Preferences() prefs.ReadWriter
	Close() error
}

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

func newTestTables(t *testing.T) attachly.Tables {
	t.Helper()
	suffix := getRandomString(t)
	return attachly.Tables{
		Attachments: "attachments_" + suffix,
		Preferences: "preferences_" + suffix,
	}
}

// setupTestDB connects to a fresh in-memory database and migrates it.
func setupTestDB(t *testing.T) testDB {
	t.Helper()

	ctx := context.Background()

	db, err := sqlite.Connect(ctx, ":memory:", newTestTables(t))
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx), "failed to migrate")

	return db
}
