package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"docchat/internal/contextutil"
	"docchat/internal/storage"
)

// DocumentHandler handles HTTP requests for document lookups.
type DocumentHandler struct {
	documents storage.DocumentStore
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documents storage.DocumentStore) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// DocumentResponse represents one document in the registry.
type DocumentResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FolderID  string `json:"folder_id,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// ServeHTTP returns a document's registry record, including its ingestion
// status. The requesting user is taken from the user_id query parameter.
func (h *DocumentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	doc, err := h.documents.GetByID(ctx, id, userID)
	if err != nil {
		handleDomainError(ctx, w, err, "Failed to get document")
		return
	}

	writeJSON(ctx, w, http.StatusOK, DocumentResponse{
		ID:        doc.ID,
		Name:      doc.Name,
		FolderID:  doc.FolderID,
		Status:    doc.Status,
		CreatedAt: doc.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// VectorDeleter removes a document's chunks from the vector index.
type VectorDeleter interface {
	DeleteByFile(ctx context.Context, collection, fileID, userID string) error
}

// DeleteDocumentHandler handles HTTP requests for document deletion.
type DeleteDocumentHandler struct {
	documents  storage.DocumentStore
	vectors    VectorDeleter
	collection string
}

// NewDeleteDocumentHandler creates a new DeleteDocumentHandler.
func NewDeleteDocumentHandler(documents storage.DocumentStore, vectors VectorDeleter, collection string) *DeleteDocumentHandler {
	return &DeleteDocumentHandler{
		documents:  documents,
		vectors:    vectors,
		collection: collection,
	}
}

// ServeHTTP removes a document: its chunks leave the vector index first,
// then the registry row. If the vector deletion fails the registry row
// stays, so a retry can finish the cleanup.
func (h *DeleteDocumentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodDelete {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	if _, err := h.documents.GetByID(ctx, id, userID); err != nil {
		handleDomainError(ctx, w, err, "Failed to get document")
		return
	}

	if err := h.vectors.DeleteByFile(ctx, h.collection, id, userID); err != nil {
		handleDomainError(ctx, w, err, "Failed to delete document vectors")
		return
	}

	if err := h.documents.Delete(ctx, id, userID); err != nil {
		handleDomainError(ctx, w, err, "Failed to delete document")
		return
	}

	logger.InfoContext(ctx, "document deleted", "document_id", id)
	w.WriteHeader(http.StatusNoContent)
}
