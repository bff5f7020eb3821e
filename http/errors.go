package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/attachly"
)

// Client-facing messages.
const (
	MsgUnauthorized         = "Unauthorized"
	MsgNotConfigured        = "Object storage is not configured"
	MsgNotFound             = "Attachment not found"
	MsgUploadFailed         = "Failed to upload file to storage"
	MsgSaveFailed           = "Failed to save attachment metadata"
	MsgDeleteFailed         = "Failed to delete attachment metadata"
	MsgInvalidBody          = "Invalid request body"
	MsgInternal             = "Internal server error"
	MsgAttachmentIDRequired = "attachmentId is required"
	MsgInvalidAttachmentID  = "Invalid attachmentId"
)

// Operation selects the persistence message written by HandleError.
type Operation int

const (
	OpUpload Operation = iota
	OpDelete
)

// HandleError writes the status and JSON body matching err.
func HandleError(w http.ResponseWriter, op Operation, err error) {
	var validation *attachly.ValidationError
	var storage *attachly.StorageError

	switch {
	case errors.Is(err, attachly.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, MsgUnauthorized)
	case errors.Is(err, attachly.ErrConfigMissing):
		WriteError(w, http.StatusBadRequest, MsgNotConfigured)
	case errors.As(err, &validation):
		WriteError(w, http.StatusBadRequest, validation.Message)
	case errors.Is(err, attachly.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, MsgInvalidBody)
	case errors.Is(err, attachly.ErrNotFound):
		WriteError(w, http.StatusNotFound, MsgNotFound)
	case errors.As(err, &storage):
		slog.Error("object storage request failed", "op", storage.Op, "status", storage.StatusCode, "error", err)
		WriteErrorDetails(w, http.StatusInternalServerError, MsgUploadFailed, storage.Details())
	case errors.Is(err, attachly.ErrPersistence):
		slog.Error("attachment metadata request failed", "error", err)
		if op == OpDelete {
			WriteError(w, http.StatusInternalServerError, MsgDeleteFailed)
			return
		}
		WriteError(w, http.StatusInternalServerError, MsgSaveFailed)
	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, MsgInternal)
	}
}
