// Package filesystem stores objects as files below a sandboxed root
// directory. Writes are atomic: content goes to a temp file that is synced
// and renamed into place. It backs the development object store.
package filesystem

import (
	"context"
	"crypto/md5" //nolint:gosec // S3 ETags are MD5 hex digests
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/attachly"
)

// Store provides file system storage operations.
type Store struct {
	root *os.Root
}

// SaveResult describes a completed Write.
type SaveResult struct {
	BytesWritten int64
	ETag         string
}

// Object is an open stored file. The caller must Close it.
type Object struct {
	io.ReadSeekCloser
	Size        int64
	ModTime     time.Time
	ContentType string
}

// New creates a Store rooted at root.
// The root provides sandboxed file operations preventing path traversal.
func New(root *os.Root) *Store {
	return &Store{root: root}
}

// Open returns a Store rooted at dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return New(root), nil
}

// Close releases the root directory handle.
func (s *Store) Close() error {
	return s.root.Close()
}

// Get opens a file for reading. Returns attachly.ErrNotFound if the file does not exist.
func (s *Store) Get(ctx context.Context, path string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, attachly.ErrNotFound
		}
		return nil, fmt.Errorf("open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	if info.IsDir() {
		_ = f.Close()
		return nil, attachly.ErrNotFound
	}

	return &Object{
		ReadSeekCloser: f,
		Size:           info.Size(),
		ModTime:        info.ModTime(),
		ContentType:    detectContentType(path),
	}, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically writes content to path, creating intermediate
// directories. An existing file is replaced. The ETag is the MD5 hex digest
// of the content, as S3 reports for single-part uploads.
func (s *Store) Write(ctx context.Context, path string, content io.Reader) (SaveResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return SaveResult{}, ctxErr
	}

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return SaveResult{}, fmt.Errorf("open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := md5.New() //nolint:gosec // see import
	written, err := io.Copy(io.MultiWriter(h, t), &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return SaveResult{}, fmt.Errorf("copy file contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return SaveResult{}, fmt.Errorf("sync written file: %w", err)
	}

	if destDir := filepath.Dir(path); destDir != "." {
		if err := s.root.MkdirAll(destDir, 0o755); err != nil {
			return SaveResult{}, fmt.Errorf("create intermediate directories: %w", err)
		}
	}

	if err := s.root.Rename(tmpFile, path); err != nil {
		return SaveResult{}, fmt.Errorf("rename file: %w", err)
	}

	success = true
	return SaveResult{BytesWritten: written, ETag: hex.EncodeToString(h.Sum(nil))}, nil
}

// Delete removes a file. Returns attachly.ErrNotFound if the file does not exist.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.root.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return attachly.ErrNotFound
		}
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func detectContentType(path string) string {
	if contentType := mime.TypeByExtension(filepath.Ext(path)); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
