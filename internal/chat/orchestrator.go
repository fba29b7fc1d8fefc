// Package chat is the retrieval and grounding orchestrator: it retrieves
// the chunks most relevant to the latest user turn within the requested
// scope and grounds a chat completion on them.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docchat/internal/contextutil"
	"docchat/internal/llm"
	"docchat/internal/vectorstore"
)

// DefaultTopK is the per-file retrieval limit when the request does not
// specify one.
const DefaultTopK = 3

// FallbackReply is returned when the chat provider yields no content.
const FallbackReply = "I apologize, but I couldn't generate a response. Please try again."

const (
	chatMaxTokens   = 1000
	chatTemperature = 0.7
)

// Embedder converts texts into fixed-dimension vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// CompletionClient produces a chat completion for a full message list.
type CompletionClient interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Orchestrator grounds chat turns in retrieved document content.
type Orchestrator struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
	llmClient  CompletionClient
	logger     *slog.Logger
}

// NewOrchestrator creates a new grounding orchestrator.
func NewOrchestrator(embedder Embedder, store vectorstore.VectorStore, collection string, llmClient CompletionClient) *Orchestrator {
	return &Orchestrator{
		embedder:   embedder,
		store:      store,
		collection: collection,
		llmClient:  llmClient,
		logger:     slog.Default(),
	}
}

// Respond answers one chat turn. Retrieval failures degrade the turn to
// less (or no) grounding context; only a failing chat completion is fatal.
func (o *Orchestrator) Respond(ctx context.Context, req Request) (Response, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.UserID == "" {
		return Response{}, fmt.Errorf("user id is required")
	}
	if len(req.Messages) == 0 {
		return Response{}, fmt.Errorf("message history is empty")
	}

	contexts, searched, matched := o.retrieve(ctx, req)

	systemPrompt := o.systemPrompt(req.Scope.IsFolder(), contexts)
	messages := make([]llm.Message, 0, len(req.Messages)+1)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
	messages = append(messages, req.Messages...)

	reply, err := o.llmClient.ChatWithMessages(ctx, messages, llm.ChatParams{
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
	})
	if err != nil {
		logger.ErrorContext(ctx, "chat completion failed", "error", err)
		return Response{}, fmt.Errorf("failed to get chat completion: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		reply = FallbackReply
	}

	logger.InfoContext(ctx, "chat turn completed",
		"grounded", len(contexts) > 0,
		"files_searched", searched,
		"files_matched", matched,
		"reply_length", len(reply),
	)

	return Response{
		Reply:         reply,
		Grounded:      len(contexts) > 0,
		FilesSearched: searched,
		FilesMatched:  matched,
	}, nil
}

// retrieve collects grounding chunk texts for the latest user turn. It
// returns the accumulated texts plus how many target files were searched
// and how many yielded at least one hit. Every failure inside retrieval is
// logged and swallowed: a degraded turn beats a failed one.
func (o *Orchestrator) retrieve(ctx context.Context, req Request) (contexts []string, searched, matched int) {
	logger := contextutil.LoggerFromContext(ctx)

	lastUser := lastUserMessage(req.Messages)
	if lastUser == nil {
		logger.InfoContext(ctx, "no user message in history, skipping retrieval")
		return nil, 0, 0
	}

	targets := req.Scope.targetFileIDs()
	if len(targets) == 0 {
		// Scope cannot be determined: fail closed instead of widening the
		// filter to everything the user owns.
		logger.WarnContext(ctx, "no retrieval scope provided, skipping retrieval", "user_id", req.UserID)
		return nil, 0, 0
	}

	vectors, err := o.embedder.EmbedTexts(ctx, []string{lastUser.Content})
	if err != nil || len(vectors) == 0 {
		logger.ErrorContext(ctx, "failed to embed query, proceeding ungrounded", "error", err)
		return nil, 0, 0
	}
	queryVector := vectors[0]

	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	for _, fileID := range targets {
		searched++

		filter := vectorstore.Filter{
			FileID: fileID,
			UserID: req.UserID,
		}
		if req.Scope.IsFolder() {
			filter.FolderID = req.Scope.FolderID
		}

		results, err := o.store.Query(ctx, o.collection, queryVector, filter, topK)
		if err != nil {
			logger.WarnContext(ctx, "retrieval failed for file, continuing", "file_id", fileID, "error", err)
			continue
		}
		if len(results) == 0 {
			continue
		}

		matched++
		for _, result := range results {
			text, _ := result.Meta["text"].(string)
			if text == "" {
				continue
			}
			contexts = append(contexts, text)
		}
	}

	logger.InfoContext(ctx, "retrieval completed",
		"files_searched", searched,
		"files_matched", matched,
		"chunks", len(contexts),
	)
	return contexts, searched, matched
}

// targetFileIDs resolves the scope into the list of file ids to query.
func (s Scope) targetFileIDs() []string {
	if s.IsFolder() {
		return s.FileIDs
	}
	if s.FileID != "" {
		return []string{s.FileID}
	}
	return nil
}

// systemPrompt builds the grounded or ungrounded system message. The
// ungrounded variant explicitly tells the assistant no document content
// was found, so it hedges instead of answering as if it had sources.
func (o *Orchestrator) systemPrompt(isFolder bool, contexts []string) string {
	if len(contexts) == 0 {
		if isFolder {
			return "You are an assistant helping with documents in a folder. " +
				"I wasn't able to find specific information from the documents for this question. " +
				"This could be because the information isn't present or there are processing issues."
		}
		return "You are an assistant helping with a document. " +
			"I wasn't able to find specific information from the document for this question. " +
			"This could be because the information isn't present or there are processing issues."
	}

	block := make([]string, len(contexts))
	for i, text := range contexts {
		block[i] = fmt.Sprintf("[Context %d]: %s", i+1, text)
	}
	contextBlock := strings.Join(block, "\n\n")

	if isFolder {
		return fmt.Sprintf("You are an assistant helping with multiple documents in a folder. "+
			"Use the following information from the documents to answer questions:\n\n%s\n\n"+
			"Answer based on this document content. Be specific and reference the information when possible.",
			contextBlock)
	}
	return fmt.Sprintf("You are an assistant helping with a document. "+
		"Use the following information from the document to answer questions:\n\n%s\n\n"+
		"Answer based on this document content. Be specific and reference the information when possible.",
		contextBlock)
}

// lastUserMessage returns the most recent user-authored message, or nil.
func lastUserMessage(messages []llm.Message) *llm.Message {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return &messages[i]
		}
	}
	return nil
}
