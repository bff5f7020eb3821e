// Package prefs resolves a user's object-storage configuration from the
// JSON preference blob the notes application stores per user.
//
// The blob is parsed and validated at one boundary (Parse); everything past
// it works with a typed attachly.StorageConfig. Nothing is cached: every
// call to Resolve reads the store again.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sagarc03/attachly"
)

// Store reads a user's raw preference blob.
// It returns attachly.ErrNotFound when the user has no preferences.
type Store interface {
	Preferences(ctx context.Context, userID string) ([]byte, error)
}

// Writer replaces a user's raw preference blob.
type Writer interface {
	SetPreferences(ctx context.Context, userID string, blob []byte) error
}

// ReadWriter is implemented by the database backends.
type ReadWriter interface {
	Store
	Writer
}

type storageSettings struct {
	AccessKeyID     string `json:"accessKeyId" validate:"required"`
	SecretAccessKey string `json:"secretAccessKey" validate:"required"`
	Region          string `json:"region" validate:"required"`
	BucketName      string `json:"bucketName" validate:"required"`
	Endpoint        string `json:"endpoint" validate:"required"`
	Enabled         bool   `json:"enabled" validate:"required"`
}

type document struct {
	Storage *storageSettings `json:"storage" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Parse decodes blob into a StorageConfig. Whitespace-only fields count as
// missing and enabled must be true. All failures wrap attachly.ErrConfigMissing.
func Parse(blob []byte) (attachly.StorageConfig, error) {
	if len(blob) == 0 {
		return attachly.StorageConfig{}, fmt.Errorf("parse preferences: empty blob: %w", attachly.ErrConfigMissing)
	}

	var doc document
	if err := json.Unmarshal(blob, &doc); err != nil {
		return attachly.StorageConfig{}, fmt.Errorf("parse preferences: %w: %w", attachly.ErrConfigMissing, err)
	}

	if s := doc.Storage; s != nil {
		s.AccessKeyID = strings.TrimSpace(s.AccessKeyID)
		s.SecretAccessKey = strings.TrimSpace(s.SecretAccessKey)
		s.Region = strings.TrimSpace(s.Region)
		s.BucketName = strings.TrimSpace(s.BucketName)
		s.Endpoint = strings.TrimSpace(s.Endpoint)
	}

	if err := validate.Struct(doc); err != nil {
		return attachly.StorageConfig{}, fmt.Errorf("parse preferences: %w: %s", attachly.ErrConfigMissing, describe(err))
	}

	return attachly.StorageConfig{
		AccessKeyID:     doc.Storage.AccessKeyID,
		SecretAccessKey: doc.Storage.SecretAccessKey,
		Region:          doc.Storage.Region,
		BucketName:      doc.Storage.BucketName,
		Endpoint:        attachly.NormalizeEndpoint(doc.Storage.Endpoint),
		Enabled:         true,
	}, nil
}

// describe lists the failing fields by JSON name.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, fe.Namespace())
	}
	return "invalid " + strings.Join(names, ", ")
}

// Resolver builds a StorageConfig for a user on every request.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve reads and parses userID's preferences. A missing blob, or one that
// fails Parse, returns an error wrapping attachly.ErrConfigMissing; store
// failures are returned wrapped as-is.
func (r *Resolver) Resolve(ctx context.Context, userID string) (attachly.StorageConfig, error) {
	blob, err := r.store.Preferences(ctx, userID)
	if err != nil {
		if errors.Is(err, attachly.ErrNotFound) {
			return attachly.StorageConfig{}, fmt.Errorf("resolve storage config: %w", attachly.ErrConfigMissing)
		}
		return attachly.StorageConfig{}, fmt.Errorf("resolve storage config: %w", err)
	}

	cfg, err := Parse(blob)
	if err != nil {
		return attachly.StorageConfig{}, fmt.Errorf("resolve storage config: %w", err)
	}

	return cfg, nil
}

// Merge returns existing with its storage object replaced by cfg. Other
// top-level keys are preserved. existing may be empty.
func Merge(existing []byte, cfg attachly.StorageConfig) ([]byte, error) {
	doc := map[string]json.RawMessage{}
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &doc); err != nil {
			return nil, fmt.Errorf("merge preferences: %w", err)
		}
	}

	storage, err := json.Marshal(storageSettings{
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		Region:          cfg.Region,
		BucketName:      cfg.BucketName,
		Endpoint:        cfg.Endpoint,
		Enabled:         cfg.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("merge preferences: %w", err)
	}
	doc["storage"] = storage

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("merge preferences: %w", err)
	}
	return out, nil
}

// Mask returns cfg with all but the last four characters of the secret hidden.
func Mask(cfg attachly.StorageConfig) attachly.StorageConfig {
	secret := cfg.SecretAccessKey
	if len(secret) <= 4 {
		cfg.SecretAccessKey = strings.Repeat("*", len(secret))
		return cfg
	}
	cfg.SecretAccessKey = strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
	return cfg
}
