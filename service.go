package attachly

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AttachmentRepo defines the interface for attachment metadata persistence.
// Every lookup is scoped to the owning user.
type AttachmentRepo interface {
	// Insert stores a new attachment row and returns it with its ID and
	// creation time filled in.
	Insert(ctx context.Context, a NewAttachment) (AttachmentRecord, error)

	// Get returns the attachment with id owned by userID.
	// Returns ErrNotFound if no such row exists.
	Get(ctx context.Context, id uuid.UUID, userID string) (AttachmentRecord, error)

	// Delete removes the attachment with id owned by userID.
	// Returns ErrNotFound if no such row exists.
	Delete(ctx context.Context, id uuid.UUID, userID string) error
}

// ObjectStore defines the interface for object PUT and DELETE against a
// user's bucket. objectstore.Client is the production implementation.
type ObjectStore interface {
	// Upload streams size bytes from body to key and returns the key.
	// Non-2xx responses are reported as *StorageError.
	Upload(ctx context.Context, cfg StorageConfig, key, contentType string, body io.Reader, size int64) (string, error)

	// Delete removes key. A missing object is not an error.
	Delete(ctx context.Context, cfg StorageConfig, key string) error
}

// UploadRequest describes one file received from a caller.
type UploadRequest struct {
	NoteID      string
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// AttachmentService uploads objects and records their metadata, and removes both.
type AttachmentService struct {
	repo  AttachmentRepo
	store ObjectStore
	now   func() time.Time
}

// ServiceOption configures an AttachmentService.
type ServiceOption func(*AttachmentService)

// WithClock overrides the clock used for object key timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *AttachmentService) {
		s.now = now
	}
}

func NewAttachmentService(repo AttachmentRepo, store ObjectStore, opts ...ServiceOption) *AttachmentService {
	s := &AttachmentService{
		repo:  repo,
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload stores the file in the user's bucket and then records it.
//
// The method performs the following steps:
//  1. Validates noteID, filename and the 50 MiB size limit
//  2. Builds the object key notes/{userID}/{noteID}/{millis}{.ext}
//  3. Uploads the content through the ObjectStore
//  4. Inserts the attachment row
//
// Nothing is signed or sent when validation fails. If the insert fails the
// uploaded object is left in place and the error wraps ErrPersistence.
//
// Error types returned:
//   - *ValidationError (ErrInvalidInput): missing noteId or file, oversize file
//   - *StorageError (ErrStorage): the object store rejected the upload
//   - ErrPersistence: the attachment row could not be written
func (s *AttachmentService) Upload(ctx context.Context, userID string, cfg StorageConfig, req UploadRequest) (AttachmentRecord, error) {
	if err := ctx.Err(); err != nil {
		return AttachmentRecord{}, fmt.Errorf("upload attachment: %w", err)
	}

	if strings.TrimSpace(req.NoteID) == "" {
		return AttachmentRecord{}, fmt.Errorf("upload attachment: %w", NewValidationError("noteId is required"))
	}

	if req.Filename == "" || req.Content == nil {
		return AttachmentRecord{}, fmt.Errorf("upload attachment: %w", NewValidationError("No file provided"))
	}

	if req.Size > MaxUploadSize {
		return AttachmentRecord{}, fmt.Errorf("upload attachment: %w", NewValidationError("File size exceeds 50MB limit"))
	}

	key := BuildObjectKey(userID, req.NoteID, req.Filename, s.now())
	if !IsValidKey(key) {
		return AttachmentRecord{}, fmt.Errorf("upload attachment %s: %w", key, NewValidationError("Invalid attachment key"))
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := s.store.Upload(ctx, cfg, key, contentType, req.Content, req.Size); err != nil {
		return AttachmentRecord{}, fmt.Errorf("upload attachment %s: %w", key, err)
	}

	record, err := s.repo.Insert(ctx, NewAttachment{
		NoteID:   req.NoteID,
		UserID:   userID,
		Filename: req.Filename,
		FilePath: key,
		FileType: contentType,
		FileSize: req.Size,
	})
	if err != nil {
		slog.Warn("attachment row insert failed, object left in storage", "key", key, "error", err)
		return AttachmentRecord{}, fmt.Errorf("upload attachment %s: %w: %w", key, ErrPersistence, err)
	}

	return record, nil
}

// Delete removes the attachment's object and then its row.
//
// The row is looked up scoped to userID; a missing row returns ErrNotFound
// without contacting the object store. An object store failure is logged
// and does not prevent the row from being removed.
func (s *AttachmentService) Delete(ctx context.Context, userID string, cfg StorageConfig, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}

	record, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete attachment %s: %w", id, err)
	}

	if delErr := s.store.Delete(ctx, cfg, record.FilePath); delErr != nil {
		slog.Warn("object delete failed, removing attachment row anyway",
			"attachment_id", id, "key", record.FilePath, "error", delErr)
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("delete attachment %s: %w", id, err)
		}
		return fmt.Errorf("delete attachment %s: %w: %w", id, ErrPersistence, err)
	}

	return nil
}
