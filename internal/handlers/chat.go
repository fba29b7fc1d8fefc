package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"docchat/internal/chat"
	"docchat/internal/contextutil"
	"docchat/internal/llm"
	"docchat/internal/storage"
)

// Responder answers one grounded chat turn.
type Responder interface {
	Respond(ctx context.Context, req chat.Request) (chat.Response, error)
}

// ChatHandler handles HTTP requests for chat.
type ChatHandler struct {
	responder Responder
	messages  storage.MessageStore
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(responder Responder, messages storage.MessageStore) *ChatHandler {
	return &ChatHandler{
		responder: responder,
		messages:  messages,
	}
}

// ChatRequest represents the HTTP request payload for chat.
type ChatRequest struct {
	Messages       []llm.Message `json:"messages"`
	UserID         string        `json:"user_id"`
	FileID         string        `json:"file_id,omitempty"`
	FolderID       string        `json:"folder_id,omitempty"`
	FileIDs        []string      `json:"file_ids,omitempty"`
	ConversationID string        `json:"conversation_id,omitempty"`
	TopK           int           `json:"top_k,omitempty"`
}

// ChatResponse represents the HTTP response payload for chat.
type ChatResponse struct {
	Reply         string `json:"reply"`
	Grounded      bool   `json:"grounded"`
	FilesSearched int    `json:"files_searched"`
	FilesMatched  int    `json:"files_matched"`
}

// ServeHTTP handles HTTP requests for chat.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages is required")
		return
	}

	resp, err := h.responder.Respond(ctx, chat.Request{
		Messages: req.Messages,
		UserID:   req.UserID,
		Scope: chat.Scope{
			FileID:   req.FileID,
			FolderID: req.FolderID,
			FileIDs:  req.FileIDs,
		},
		TopK: req.TopK,
	})
	if err != nil {
		handleDomainError(ctx, w, err, "Failed to process chat request")
		return
	}

	if req.ConversationID != "" {
		h.persistTurn(ctx, req, resp.Reply)
	}

	writeJSON(ctx, w, http.StatusOK, ChatResponse{
		Reply:         resp.Reply,
		Grounded:      resp.Grounded,
		FilesSearched: resp.FilesSearched,
		FilesMatched:  resp.FilesMatched,
	})
}

// persistTurn appends the latest user message and the assistant reply to the
// conversation. Persistence failures are logged, not surfaced: the user
// already has the reply.
func (h *ChatHandler) persistTurn(ctx context.Context, req ChatRequest, reply string) {
	logger := contextutil.LoggerFromContext(ctx)

	seq, err := h.messages.CountByConversation(ctx, req.ConversationID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count conversation messages",
			"conversation_id", req.ConversationID, "error", err)
		return
	}

	var userContent string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			userContent = req.Messages[i].Content
			break
		}
	}

	records := []storage.MessageRecord{
		{
			ID:             uuid.NewString(),
			ConversationID: req.ConversationID,
			DocumentID:     req.FileID,
			UserID:         req.UserID,
			Role:           "user",
			Content:        userContent,
			Sequence:       seq,
		},
		{
			ID:             uuid.NewString(),
			ConversationID: req.ConversationID,
			DocumentID:     req.FileID,
			UserID:         req.UserID,
			Role:           "assistant",
			Content:        reply,
			Sequence:       seq + 1,
		},
	}
	for _, rec := range records {
		if err := h.messages.Append(ctx, rec); err != nil {
			logger.ErrorContext(ctx, "failed to persist message",
				"conversation_id", req.ConversationID,
				"role", rec.Role,
				"error", err,
			)
			return
		}
	}
}
