package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks docchat/internal/vectorstore VectorStore

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the vector store backend cannot be
// reached or rejects the operation.
var ErrUnavailable = errors.New("vector store unavailable")

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a single similarity search hit.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// EnsureCollection creates the collection with the given vector size if it
	// does not exist, or validates the size if it does.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// Upsert inserts or updates points in the collection, idempotent by point ID.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Query returns up to topK nearest points by similarity, restricted to
	// points matching the filter, each annotated with metadata and score.
	Query(ctx context.Context, collection string, vector []float32, filter Filter, topK int) ([]SearchResult, error)

	// DeleteByFile removes every point belonging to the given document and
	// user. Used when the owning document is deleted.
	DeleteByFile(ctx context.Context, collection, fileID, userID string) error
}
