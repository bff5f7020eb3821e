package http_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sagarc03/attachly"
	attachlyhttp "github.com/sagarc03/attachly/http"
	"github.com/stretchr/testify/assert"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()

	attachlyhttp.WriteError(rec, http.StatusBadRequest, "noteId is required")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"noteId is required"}`, rec.Body.String())
}

func TestWriteErrorDetails(t *testing.T) {
	rec := httptest.NewRecorder()

	attachlyhttp.WriteErrorDetails(rec, http.StatusInternalServerError, "Failed to upload file to storage", "500 Internal Server Error")

	assert.JSONEq(t, `{"error":"Failed to upload file to storage","details":"500 Internal Server Error"}`, rec.Body.String())
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		op         attachlyhttp.Operation
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "unauthorized",
			err:        fmt.Errorf("auth: %w", attachly.ErrUnauthorized),
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Unauthorized"}`,
		},
		{
			name:       "config missing",
			err:        fmt.Errorf("resolve: %w", attachly.ErrConfigMissing),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Object storage is not configured"}`,
		},
		{
			name:       "validation message",
			err:        fmt.Errorf("upload: %w", attachly.NewValidationError("File size exceeds 50MB limit")),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"File size exceeds 50MB limit"}`,
		},
		{
			name:       "bare invalid input",
			err:        attachly.ErrInvalidInput,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid request body"}`,
		},
		{
			name:       "not found",
			op:         attachlyhttp.OpDelete,
			err:        attachly.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Attachment not found"}`,
		},
		{
			name:       "transport failure",
			err:        &attachly.StorageError{Op: "upload", Err: errors.New("dial tcp: connection refused")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Failed to upload file to storage","details":"dial tcp: connection refused"}`,
		},
		{
			name:       "persistence on upload",
			op:         attachlyhttp.OpUpload,
			err:        attachly.ErrPersistence,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Failed to save attachment metadata"}`,
		},
		{
			name:       "persistence on delete",
			op:         attachlyhttp.OpDelete,
			err:        attachly.ErrPersistence,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Failed to delete attachment metadata"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			attachlyhttp.HandleError(rec, tt.op, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
