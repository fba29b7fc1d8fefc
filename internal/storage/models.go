package storage

import "time"

// Document ingestion statuses.
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

// DocumentRecord is an uploaded document in the registry. Status tracks the
// ingestion outcome so a document that never made it into the vector index
// is visible as failed instead of silently appearing uploaded.
type DocumentRecord struct {
	ID        string // UUID, also the fileId on every vector chunk
	UserID    string
	FolderID  string // empty when the document is not in a folder
	Name      string // original filename
	Status    string
	CreatedAt time.Time
}

// MessageRecord is one persisted conversation message.
type MessageRecord struct {
	ID             string // UUID
	ConversationID string
	DocumentID     string // empty for folder-scoped conversations
	UserID         string
	Role           string // system, user or assistant
	Content        string
	Sequence       int // position within the conversation, starts at 0
	CreatedAt      time.Time
}
