package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/attachly"
)

type attachmentRepo struct {
	pool      *pgxpool.Pool
	tableName string
}

func (r *attachmentRepo) Insert(ctx context.Context, entry attachly.NewAttachment) (attachly.AttachmentRecord, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (note_id, user_id, filename, file_path, file_type, file_size)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, note_id, user_id, filename, file_path, file_type, file_size, created_at
	`, pgx.Identifier{r.tableName}.Sanitize())

	var rec attachly.AttachmentRecord
	err := r.pool.QueryRow(ctx, query,
		entry.NoteID, entry.UserID, entry.Filename, entry.FilePath, entry.FileType, entry.FileSize,
	).Scan(
		&rec.ID, &rec.NoteID, &rec.UserID, &rec.Filename, &rec.FilePath, &rec.FileType, &rec.FileSize, &rec.CreatedAt,
	)
	if err != nil {
		return attachly.AttachmentRecord{}, fmt.Errorf("insert: %w", err)
	}

	return rec, nil
}

func (r *attachmentRepo) Get(ctx context.Context, id uuid.UUID, userID string) (attachly.AttachmentRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, note_id, user_id, filename, file_path, file_type, file_size, created_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, pgx.Identifier{r.tableName}.Sanitize())

	var rec attachly.AttachmentRecord
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&rec.ID, &rec.NoteID, &rec.UserID, &rec.Filename, &rec.FilePath, &rec.FileType, &rec.FileSize, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attachly.AttachmentRecord{}, attachly.ErrNotFound
		}
		return attachly.AttachmentRecord{}, fmt.Errorf("get: %w", err)
	}

	return rec, nil
}

func (r *attachmentRepo) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, pgx.Identifier{r.tableName}.Sanitize())

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete: %w", attachly.ErrNotFound)
	}

	return nil
}
