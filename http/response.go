package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is returned by a completed delete.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, message string) {
	writeErrorResponse(w, code, ErrorResponse{Error: message})
}

// WriteErrorDetails writes a JSON error response carrying diagnostic details.
func WriteErrorDetails(w http.ResponseWriter, code int, message, details string) {
	writeErrorResponse(w, code, ErrorResponse{Error: message, Details: details})
}

func writeErrorResponse(w http.ResponseWriter, code int, resp ErrorResponse) {
	if err := WriteJSON(w, code, resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
