// Package devstore is a minimal S3-compatible object store for local
// development and end-to-end tests. It serves PUT, GET, HEAD and DELETE on
// /{bucket}/{key}, verifies header-signed SigV4 requests and keeps objects
// on disk below one directory per bucket.
package devstore

import (
	"encoding/xml"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sagarc03/attachly"
	"github.com/sagarc03/attachly/filesystem"
	"github.com/sagarc03/attachly/keybackend"
)

// Config holds devstore settings.
type Config struct {
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Storage string `mapstructure:"storage" validate:"required"`
	Region  string `mapstructure:"region" validate:"required"`

	Keys keybackend.Config `mapstructure:"keys"`
}

// Server serves the object API.
type Server struct {
	store    *filesystem.Store
	verifier *attachly.SignatureVerifier
}

// New creates a Server writing to store and accepting requests verified by verifier.
func New(store *filesystem.Store, verifier *attachly.SignatureVerifier) *Server {
	return &Server{store: store, verifier: verifier}
}

// Router returns the http.Handler for the object API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.authenticate)

	r.Put("/{bucket}/*", s.handlePut)
	r.Get("/{bucket}/*", s.handleGet)
	r.Head("/{bucket}/*", s.handleGet)
	r.Delete("/{bucket}/*", s.handleDelete)

	return r
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-amz-request-id", uuid.NewString())
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Go stores Host separately from Header
		headers := r.Header.Clone()
		headers.Set("Host", r.Host)

		// The signature covers the path as sent, not its decoded form
		accessKey, err := s.verifier.Verify(r.Method, r.URL.EscapedPath(), headers)
		if err != nil {
			slog.Debug("devstore request rejected", "method", r.Method, "path", r.URL.Path, "error", err)
			code := "SignatureDoesNotMatch"
			if strings.Contains(err.Error(), "invalid access key") {
				code = "InvalidAccessKeyId"
			}
			writeError(w, r, http.StatusForbidden, code, err.Error())
			return
		}

		slog.Debug("devstore request", "method", r.Method, "path", r.URL.Path, "access_key", accessKey)
		next.ServeHTTP(w, r)
	})
}

// objectPath returns "{bucket}/{key}" or false when either part is unusable.
// chi routes on the raw path when one is set, so the key is decoded here.
func objectPath(r *http.Request) (string, bool) {
	bucket := chi.URLParam(r, "bucket")
	key := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		decoded, err := url.PathUnescape(key)
		if err != nil {
			return "", false
		}
		key = decoded
	}
	if !isValidBucketName(bucket) || !attachly.IsValidKey(key) {
		return "", false
	}
	return bucket + "/" + key, true
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	path, ok := objectPath(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "InvalidArgument", "Invalid bucket or key")
		return
	}

	result, err := s.store.Write(r.Context(), path, r.Body)
	if err != nil {
		slog.Error("devstore write failed", "path", path, "error", err)
		writeError(w, r, http.StatusInternalServerError, "InternalError", "We encountered an internal error. Please try again.")
		return
	}

	if r.ContentLength >= 0 && result.BytesWritten != r.ContentLength {
		slog.Warn("devstore short write", "path", path, "want", r.ContentLength, "got", result.BytesWritten)
	}

	w.Header().Set("ETag", quoteETag(result.ETag))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	path, ok := objectPath(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "InvalidArgument", "Invalid bucket or key")
		return
	}

	obj, err := s.store.Get(r.Context(), path)
	if err != nil {
		if errors.Is(err, attachly.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "NoSuchKey", "The specified key does not exist.")
			return
		}
		slog.Error("devstore read failed", "path", path, "error", err)
		writeError(w, r, http.StatusInternalServerError, "InternalError", "We encountered an internal error. Please try again.")
		return
	}
	defer func() { _ = obj.Close() }()

	w.Header().Set("Content-Type", obj.ContentType)
	http.ServeContent(w, r, path, obj.ModTime, obj)
}

// handleDelete answers 204 whether or not the object existed, like S3.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	path, ok := objectPath(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "InvalidArgument", "Invalid bucket or key")
		return
	}

	if err := s.store.Delete(r.Context(), path); err != nil && !errors.Is(err, attachly.ErrNotFound) {
		slog.Error("devstore delete failed", "path", path, "error", err)
		writeError(w, r, http.StatusInternalServerError, "InternalError", "We encountered an internal error. Please try again.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type s3Error struct {
	XMLName   xml.Name `xml:"Error"`
	Code      string   `xml:"Code"`
	Message   string   `xml:"Message"`
	Resource  string   `xml:"Resource"`
	RequestID string   `xml:"RequestId"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_ = xml.NewEncoder(w).Encode(s3Error{
		Code:      code,
		Message:   message,
		Resource:  r.URL.Path,
		RequestID: w.Header().Get("x-amz-request-id"),
	})
}

func quoteETag(s string) string { return `"` + s + `"` }

// isValidBucketName applies the S3 naming rules: 3 to 63 characters of
// lowercase letters, digits, dots and hyphens, starting and ending with a
// letter or digit.
func isValidBucketName(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '.' {
			continue
		}
		return false
	}
	return isAlnum(name[0]) && isAlnum(name[len(name)-1])
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
