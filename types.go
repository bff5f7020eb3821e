package attachly

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// MaxUploadSize is the largest file the gateway accepts (50 MiB).
const MaxUploadSize int64 = 50 * 1024 * 1024

// StorageConfig holds one user's object-store credentials.
// It is resolved fresh for every request and never cached.
type StorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	Endpoint        string
	Enabled         bool
}

// AttachmentRecord is the metadata row written after a successful upload.
// FilePath is the object key in the bucket.
type AttachmentRecord struct {
	ID        uuid.UUID `json:"id"`
	NoteID    string    `json:"note_id"`
	UserID    string    `json:"user_id"`
	Filename  string    `json:"filename"`
	FilePath  string    `json:"file_path"`
	FileType  string    `json:"file_type"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAttachment carries the fields needed to insert an AttachmentRecord.
type NewAttachment struct {
	NoteID   string
	UserID   string
	Filename string
	FilePath string
	FileType string
	FileSize int64
}

// SignedRequest is the output of the request signer: the absolute object
// URL and the headers that must accompany the request.
type SignedRequest struct {
	URL     string
	Headers map[string]string
}

// SigningContext exposes the intermediate values of one signing computation.
type SigningContext struct {
	Timestamp        string
	DateStamp        string
	CanonicalRequest string
	StringToSign     string
	SigningKey       []byte
	Signature        string
}

// Tables holds configurable table names for the gateway's relational data.
type Tables struct {
	Attachments string `mapstructure:"attachments"`
	Preferences string `mapstructure:"preferences"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Attachments == "" {
		return errors.New("validate tables: attachments table name cannot be empty")
	}

	if t.Preferences == "" {
		return errors.New("validate tables: preferences table name cannot be empty")
	}

	for _, name := range []string{t.Attachments, t.Preferences} {
		if !IsValidTableName(name) {
			return fmt.Errorf("validate tables: invalid table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", name)
		}
	}

	if t.Attachments == t.Preferences {
		return errors.New("validate tables: attachments and preferences must use different tables")
	}

	return nil
}
