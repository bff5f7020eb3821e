package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/attachly"
)

type attachmentRepo struct {
	db        *sql.DB
	tableName string
}

func (r *attachmentRepo) Insert(ctx context.Context, entry attachly.NewAttachment) (attachly.AttachmentRecord, error) {
	id := uuid.New()
	now := time.Now().UTC()

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, note_id, user_id, filename, file_path, file_type, file_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, quoteIdentifier(r.tableName))

	_, err := r.db.ExecContext(ctx, query,
		id.String(), entry.NoteID, entry.UserID, entry.Filename, entry.FilePath,
		entry.FileType, entry.FileSize, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return attachly.AttachmentRecord{}, fmt.Errorf("insert: %w", err)
	}

	return attachly.AttachmentRecord{
		ID:        id,
		NoteID:    entry.NoteID,
		UserID:    entry.UserID,
		Filename:  entry.Filename,
		FilePath:  entry.FilePath,
		FileType:  entry.FileType,
		FileSize:  entry.FileSize,
		CreatedAt: now,
	}, nil
}

func (r *attachmentRepo) Get(ctx context.Context, id uuid.UUID, userID string) (attachly.AttachmentRecord, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, note_id, user_id, filename, file_path, file_type, file_size, created_at
		FROM %s
		WHERE id = ? AND user_id = ?`, quoteIdentifier(r.tableName))

	var rec attachly.AttachmentRecord
	var idStr, createdAt string

	err := r.db.QueryRowContext(ctx, query, id.String(), userID).Scan(
		&idStr, &rec.NoteID, &rec.UserID, &rec.Filename, &rec.FilePath,
		&rec.FileType, &rec.FileSize, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return attachly.AttachmentRecord{}, attachly.ErrNotFound
		}
		return attachly.AttachmentRecord{}, fmt.Errorf("get: %w", err)
	}

	rec.ID, err = uuid.Parse(idStr)
	if err != nil {
		return attachly.AttachmentRecord{}, fmt.Errorf("get: parse uuid: %w", err)
	}

	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return attachly.AttachmentRecord{}, fmt.Errorf("get: parse created_at: %w", err)
	}

	return rec, nil
}

func (r *attachmentRepo) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND user_id = ?`, quoteIdentifier(r.tableName)) //nolint:gosec // table name is validated

	result, err := r.db.ExecContext(ctx, query, id.String(), userID)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: rows affected: %w", err)
	}

	if rows == 0 {
		return attachly.ErrNotFound
	}

	return nil
}
