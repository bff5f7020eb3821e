package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/sagarc03/attachly"
	"github.com/sagarc03/attachly/identity"
	"github.com/sagarc03/attachly/metrics"
)

// multipartOverhead is the allowance for multipart framing and the noteId
// field on top of the file size limit.
const multipartOverhead int64 = 1 << 20

// maxMemory is passed to ParseMultipartForm; larger files spill to disk.
const maxMemory int64 = 32 << 20

type Service interface {
	Upload(ctx context.Context, userID string, cfg attachly.StorageConfig, req attachly.UploadRequest) (attachly.AttachmentRecord, error)
	Delete(ctx context.Context, userID string, cfg attachly.StorageConfig, id uuid.UUID) error
}

// ConfigResolver returns the caller's storage configuration.
type ConfigResolver interface {
	Resolve(ctx context.Context, userID string) (attachly.StorageConfig, error)
}

// HealthChecker is pinged by GET /healthz.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" validate:"gte=0"`
}

type HandlerConfig struct {
	Authenticator identity.Authenticator
	Resolver      ConfigResolver
	CORS          CORSConfig
	// MaxUploadSize caps the accepted file size. Zero means attachly.MaxUploadSize.
	MaxUploadSize int64
	// Health is optional; without it /healthz always reports ok.
	Health HealthChecker
	// Metrics is optional; when set, /metrics is served.
	Metrics *metrics.Metrics
}

// Handler serves the attachment gateway endpoint.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.MaxUploadSize <= 0 || cfg.MaxUploadSize > attachly.MaxUploadSize {
		cfg.MaxUploadSize = attachly.MaxUploadSize
	}
	return &Handler{
		config:  cfg,
		service: service,
	}
}

// Router returns an http.Handler with the gateway mounted at "/".
// Every method is accepted there; the request content type selects
// upload or delete.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	if h.config.Metrics != nil {
		r.Use(h.config.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", h.config.Metrics.Handler())
	}

	r.Get("/healthz", h.handleHealth)

	r.Group(func(r chi.Router) {
		if h.config.CORS.Enabled {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:     h.config.CORS.AllowedOrigins,
				AllowedMethods:     h.config.CORS.AllowedMethods,
				AllowedHeaders:     h.config.CORS.AllowedHeaders,
				ExposedHeaders:     h.config.CORS.ExposedHeaders,
				AllowCredentials:   h.config.CORS.AllowCredentials,
				MaxAge:             h.config.CORS.MaxAge,
				OptionsPassthrough: true,
			}))
		}
		r.Use(AuthMiddleware(h.config.Authenticator))
		r.HandleFunc("/", h.handleGateway)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.config.Health != nil {
		if err := h.config.Health.Ping(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			WriteError(w, http.StatusServiceUnavailable, "unhealthy")
			return
		}
	}
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleGateway(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, MsgUnauthorized)
		return
	}

	cfg, err := h.config.Resolver.Resolve(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, attachly.ErrConfigMissing) {
			slog.Error("resolve storage config", "user_id", userID, "error", err)
		}
		WriteError(w, http.StatusBadRequest, MsgNotConfigured)
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		h.handleUpload(w, r, userID, cfg)
		return
	}
	h.handleDelete(w, r, userID, cfg)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request, userID string, cfg attachly.StorageConfig) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusBadRequest, sizeLimitMessage(h.config.MaxUploadSize))
			return
		}
		WriteError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req := attachly.UploadRequest{
		NoteID: strings.TrimSpace(r.FormValue("noteId")),
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		WriteError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	default:
		defer func() { _ = file.Close() }()
		if header.Size > h.config.MaxUploadSize {
			WriteError(w, http.StatusBadRequest, sizeLimitMessage(h.config.MaxUploadSize))
			return
		}
		req.Filename = header.Filename
		req.ContentType = header.Header.Get("Content-Type")
		req.Size = header.Size
		req.Content = file
	}

	record, err := h.service.Upload(r.Context(), userID, cfg, req)
	if err != nil {
		HandleError(w, OpUpload, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, record)
}

type deleteRequest struct {
	AttachmentID string `json:"attachmentId"`
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, userID string, cfg attachly.StorageConfig) {
	var body deleteRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, multipartOverhead)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	if strings.TrimSpace(body.AttachmentID) == "" {
		WriteError(w, http.StatusBadRequest, MsgAttachmentIDRequired)
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(body.AttachmentID))
	if err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidAttachmentID)
		return
	}

	if err := h.service.Delete(r.Context(), userID, cfg, id); err != nil {
		HandleError(w, OpDelete, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func sizeLimitMessage(limit int64) string {
	if limit == attachly.MaxUploadSize {
		return "File size exceeds 50MB limit"
	}
	return fmt.Sprintf("File size exceeds %d byte limit", limit)
}
