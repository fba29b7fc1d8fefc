package chat

import "docchat/internal/llm"

// Scope is the retrieval boundary for one chat turn: a single file, or all
// files in a folder. When FolderID is set, FileIDs lists the folder's
// current member documents (folder membership is owned by the caller).
type Scope struct {
	FileID   string   `json:"file_id,omitempty"`
	FolderID string   `json:"folder_id,omitempty"`
	FileIDs  []string `json:"file_ids,omitempty"`
}

// IsFolder reports whether the scope targets a folder.
func (s Scope) IsFolder() bool {
	return s.FolderID != ""
}

// Request is one chat turn to ground and answer.
type Request struct {
	// Messages is the conversation history including the latest user turn.
	Messages []llm.Message
	// UserID is the requesting user; retrieval is always restricted to it.
	UserID string
	// Scope selects which documents ground the answer.
	Scope Scope
	// TopK is the per-file retrieval limit. Zero means the default (3).
	TopK int
}

// Response is the orchestrator's answer for one turn.
type Response struct {
	// Reply is the assistant's text.
	Reply string
	// Grounded reports whether retrieved document content backed the answer.
	Grounded bool
	// FilesSearched is how many target files were queried.
	FilesSearched int
	// FilesMatched is how many of them yielded at least one chunk.
	FilesMatched int
}
