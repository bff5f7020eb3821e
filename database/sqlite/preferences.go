package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sagarc03/attachly"
)

type preferenceRepo struct {
	db        *sql.DB
	tableName string
}

func (r *preferenceRepo) Preferences(ctx context.Context, userID string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT preferences FROM %s WHERE user_id = ?`, quoteIdentifier(r.tableName)) //nolint:gosec // table name is validated

	var blob string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, attachly.ErrNotFound
		}
		return nil, fmt.Errorf("preferences: %w", err)
	}

	return []byte(blob), nil
}

func (r *preferenceRepo) SetPreferences(ctx context.Context, userID string, blob []byte) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (user_id, preferences, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			preferences = excluded.preferences,
			updated_at = excluded.updated_at`, quoteIdentifier(r.tableName))

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := r.db.ExecContext(ctx, query, userID, string(blob), now); err != nil {
		return fmt.Errorf("set preferences: %w", err)
	}

	return nil
}
