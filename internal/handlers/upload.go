package handlers

import (
	"context"
	"io"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"docchat/internal/contextutil"
	"docchat/internal/extractor"
	"docchat/internal/ingest"
	"docchat/internal/storage"
)

// maxUploadBytes caps the multipart form size held in memory.
const maxUploadBytes = 32 << 20 // 32 MiB

// Ingestor runs document ingestion in the background.
type Ingestor interface {
	Run(ctx context.Context, doc ingest.Document) <-chan ingest.Outcome
}

// UploadHandler handles HTTP requests for document uploads.
type UploadHandler struct {
	documents storage.DocumentStore
	ingestor  Ingestor
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(documents storage.DocumentStore, ingestor Ingestor) *UploadHandler {
	return &UploadHandler{
		documents: documents,
		ingestor:  ingestor,
	}
}

// UploadResponse represents the HTTP response payload for an accepted upload.
type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

// ServeHTTP accepts a multipart document upload, registers it as pending and
// starts ingestion in the background. It replies 202 before ingestion
// finishes; the document's status reflects the eventual outcome.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	userID := r.FormValue("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	folderID := r.FormValue("folder_id")

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.WarnContext(ctx, "missing file field", "error", err)
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	ext := extractor.NormalizeExtension(filepath.Ext(header.Filename))
	if !extractor.Supported(ext) {
		logger.WarnContext(ctx, "unsupported file type", "filename", header.Filename, "extension", ext)
		writeError(w, http.StatusUnsupportedMediaType, "Unsupported file type")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read upload", "error", err)
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	doc := storage.DocumentRecord{
		ID:       uuid.NewString(),
		UserID:   userID,
		FolderID: folderID,
		Name:     header.Filename,
		Status:   storage.StatusPending,
	}
	if err := h.documents.Create(ctx, doc); err != nil {
		handleDomainError(ctx, w, err, "Failed to register document")
		return
	}

	// Ingestion outlives the request, so detach from the request context
	// before handing off.
	bgCtx := contextutil.WithLogger(context.WithoutCancel(ctx), logger)
	outcomes := h.ingestor.Run(bgCtx, ingest.Document{
		Bytes:      data,
		Extension:  ext,
		DocumentID: doc.ID,
		UserID:     userID,
		FolderID:   folderID,
	})
	go h.recordOutcome(bgCtx, outcomes)

	logger.InfoContext(ctx, "document accepted",
		"document_id", doc.ID,
		"filename", header.Filename,
		"size_bytes", len(data),
	)

	writeJSON(ctx, w, http.StatusAccepted, UploadResponse{
		DocumentID: doc.ID,
		Status:     doc.Status,
	})
}

// recordOutcome waits for the ingestion outcome and updates the document's
// status accordingly.
func (h *UploadHandler) recordOutcome(ctx context.Context, outcomes <-chan ingest.Outcome) {
	logger := contextutil.LoggerFromContext(ctx)

	outcome, ok := <-outcomes
	if !ok {
		return
	}

	status := storage.StatusProcessed
	if outcome.Err != nil {
		status = storage.StatusFailed
	}
	if err := h.documents.SetStatus(ctx, outcome.DocumentID, status); err != nil {
		logger.ErrorContext(ctx, "failed to update document status",
			"document_id", outcome.DocumentID,
			"status", status,
			"error", err,
		)
	}
}
