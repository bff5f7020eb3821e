package attachly

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when authentication fails
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConfigMissing is returned when a user's storage config is missing, disabled or incomplete
	ErrConfigMissing = errors.New("storage config missing")
	// ErrStorage is matched by every *StorageError
	ErrStorage = errors.New("object storage error")
	// ErrPersistence is returned when attachment metadata cannot be written or removed
	ErrPersistence = errors.New("persistence error")
)

// ValidationError is an ErrInvalidInput carrying a message meant for the caller.
type ValidationError struct {
	Message string
}

// NewValidationError returns a *ValidationError with the given message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports whether target is ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// StorageError describes a failed call to the object store. StatusCode is 0
// when the request never produced a response.
type StorageError struct {
	Op         string
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *StorageError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s: %s", e.Op, e.Details())
}

// Details returns the raw diagnostic text reported to clients.
func (e *StorageError) Details() string {
	if e.StatusCode == 0 {
		if e.Err != nil {
			return e.Err.Error()
		}
		return ""
	}
	if e.Body == "" {
		return e.Status
	}
	return e.Status + ": " + e.Body
}

// Is reports whether target is ErrStorage.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
