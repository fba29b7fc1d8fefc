package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

//go:generate mockgen -source=document_repo.go -destination=mocks/mock_document_store.go -package=mocks

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// DocumentStore persists the document registry.
type DocumentStore interface {
	Create(ctx context.Context, doc DocumentRecord) error
	GetByID(ctx context.Context, id, userID string) (DocumentRecord, error)
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id, userID string) error
}

// SQLDocumentStore is the SQLite-backed DocumentStore.
type SQLDocumentStore struct {
	db *sql.DB
}

// NewDocumentStore creates a document store backed by db.
func NewDocumentStore(db *sql.DB) *SQLDocumentStore {
	return &SQLDocumentStore{db: db}
}

// Create inserts a new document record.
func (s *SQLDocumentStore) Create(ctx context.Context, doc DocumentRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, user_id, folder_id, name, status) VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.UserID, doc.FolderID, doc.Name, doc.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// GetByID fetches a document owned by userID. Documents of other users are
// indistinguishable from missing ones.
func (s *SQLDocumentStore) GetByID(ctx context.Context, id, userID string) (DocumentRecord, error) {
	var doc DocumentRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, folder_id, name, status, created_at FROM documents WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&doc.ID, &doc.UserID, &doc.FolderID, &doc.Name, &doc.Status, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return DocumentRecord{}, ErrNotFound
	}
	if err != nil {
		return DocumentRecord{}, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// Delete removes a document owned by userID from the registry.
func (s *SQLDocumentStore) Delete(ctx context.Context, id, userID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus updates a document's ingestion status.
func (s *SQLDocumentStore) SetStatus(ctx context.Context, id, status string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = ? WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
