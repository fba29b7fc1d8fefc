package storage

import (
	"context"
	"database/sql"
	"fmt"
)

//go:generate mockgen -source=message_repo.go -destination=mocks/mock_message_store.go -package=mocks

// MessageStore persists conversation history.
type MessageStore interface {
	Append(ctx context.Context, msg MessageRecord) error
	ListByConversation(ctx context.Context, conversationID, userID string) ([]MessageRecord, error)
	CountByConversation(ctx context.Context, conversationID string) (int, error)
}

// SQLMessageStore is the SQLite-backed MessageStore.
type SQLMessageStore struct {
	db *sql.DB
}

// NewMessageStore creates a message store backed by db.
func NewMessageStore(db *sql.DB) *SQLMessageStore {
	return &SQLMessageStore{db: db}
}

// Append inserts one message at the given sequence position. The unique
// (conversation_id, sequence) constraint rejects concurrent writers that
// raced to the same position.
func (s *SQLMessageStore) Append(ctx context.Context, msg MessageRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, document_id, user_id, role, content, sequence)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ConversationID, msg.DocumentID, msg.UserID, msg.Role, msg.Content, msg.Sequence,
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// ListByConversation returns a conversation's messages in sequence order.
func (s *SQLMessageStore) ListByConversation(ctx context.Context, conversationID, userID string) ([]MessageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, document_id, user_id, role, content, sequence, created_at
		 FROM messages WHERE conversation_id = ? AND user_id = ? ORDER BY sequence ASC`,
		conversationID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []MessageRecord
	for rows.Next() {
		var msg MessageRecord
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.DocumentID, &msg.UserID,
			&msg.Role, &msg.Content, &msg.Sequence, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return messages, nil
}

// CountByConversation returns how many messages a conversation holds, which
// is also the next free sequence number.
func (s *SQLMessageStore) CountByConversation(ctx context.Context, conversationID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`,
		conversationID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}
