package clientcli

import (
	"time"

	"github.com/google/uuid"
)

// UploadOptions configures an upload operation.
type UploadOptions struct {
	NoteID      string
	LocalPath   string
	Filename    string // optional, defaults to the base name of LocalPath
	ContentType string // optional, auto-detect if empty
	Recursive   bool   // attach every file below LocalPath to NoteID
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath string    `json:"local_path"`
	ID        uuid.UUID `json:"id"`
	NoteID    string    `json:"note_id"`
	Filename  string    `json:"filename"`
	FilePath  string    `json:"file_path"`
	FileType  string    `json:"file_type"`
	Size      int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
	Err       error     `json:"-"` // nil on success
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	IDs []string
}

// DeleteResult represents the result of deleting a single attachment.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// serverAttachment mirrors the attachment record returned by the gateway.
type serverAttachment struct {
	ID        uuid.UUID `json:"id"`
	NoteID    string    `json:"note_id"`
	UserID    string    `json:"user_id"`
	Filename  string    `json:"filename"`
	FilePath  string    `json:"file_path"`
	FileType  string    `json:"file_type"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}

// serverError mirrors the gateway's JSON error body.
type serverError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type deleteRequest struct {
	AttachmentID string `json:"attachmentId"`
}

type deleteResponse struct {
	Success bool `json:"success"`
}
