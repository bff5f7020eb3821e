package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
	ErrInvalidProfile  = errors.New("invalid profile")
)

// Errors for configuration validation.
var (
	ErrTokenRequired  = errors.New("bearer token is required")
	ErrConfigRequired = errors.New("config is required")
)

// Errors for input validation.
var (
	ErrNoIDs          = errors.New("no attachment IDs provided")
	ErrEmptyPath      = errors.New("path is required")
	ErrNoteIDRequired = errors.New("note ID is required")
)
