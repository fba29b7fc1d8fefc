package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"docchat/internal/contextutil"
	"docchat/internal/extractor"
	"docchat/internal/llm"
	"docchat/internal/storage"
	"docchat/internal/vectorstore"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// handleDomainError maps domain errors to HTTP status codes.
func handleDomainError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "request failed", "error", err)

	switch {
	case errors.Is(err, extractor.ErrUnsupportedFileType):
		writeError(w, http.StatusUnsupportedMediaType, "Unsupported file type")
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, vectorstore.ErrMissingUserID):
		writeError(w, http.StatusBadRequest, "User id is required")
	case errors.Is(err, llm.ErrProvider):
		writeError(w, http.StatusBadGateway, "Upstream model provider error")
	case errors.Is(err, vectorstore.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Vector store unavailable")
	default:
		writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}
