package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/attachly"
)

type preferenceRepo struct {
	pool      *pgxpool.Pool
	tableName string
}

func (r *preferenceRepo) Preferences(ctx context.Context, userID string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT preferences FROM %s WHERE user_id = $1`, pgx.Identifier{r.tableName}.Sanitize())

	var blob []byte
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&blob); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attachly.ErrNotFound
		}
		return nil, fmt.Errorf("preferences: %w", err)
	}

	return blob, nil
}

func (r *preferenceRepo) SetPreferences(ctx context.Context, userID string, blob []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, preferences)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET preferences = EXCLUDED.preferences,
			updated_at = NOW()
	`, pgx.Identifier{r.tableName}.Sanitize())

	if _, err := r.pool.Exec(ctx, query, userID, blob); err != nil {
		return fmt.Errorf("set preferences: %w", err)
	}

	return nil
}
