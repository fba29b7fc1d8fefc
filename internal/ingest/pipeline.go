// Package ingest drives a document through extraction, chunking, embedding
// and vector upsert, attaching ownership and position metadata to every
// stored chunk.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"docchat/internal/contextutil"
	"docchat/internal/extractor"
	"docchat/internal/llm"
	"docchat/internal/splitter"
	"docchat/internal/vectorstore"
)

const (
	// UpsertBatchSize caps points per upsert call to respect provider limits.
	UpsertBatchSize = 10
	// MetadataTextLimit bounds how much chunk text is persisted as
	// retrievable context. The full chunk is embedded; only this prefix is
	// stored, to bound storage and context-window cost.
	MetadataTextLimit = 1000
)

// ErrNoTextContent is returned when extraction succeeds but every page is
// blank; nothing is stored.
var ErrNoTextContent = errors.New("document contains no extractable text")

// Embedder converts texts into fixed-dimension vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Document is one upload handed to the pipeline. DocumentID and UserID are
// required; FolderID is set only when the document belongs to a folder at
// ingestion time.
type Document struct {
	Bytes      []byte
	Extension  string
	DocumentID string
	UserID     string
	FolderID   string
}

// Result reports what one ingestion run produced.
type Result struct {
	Pages   int
	Chunks  int
	Batches int
}

// Outcome is the terminal state of a detached ingestion run.
type Outcome struct {
	DocumentID string
	Result     Result
	Err        error
}

// Pipeline orchestrates extraction, chunking, embedding and vector upsert
// for one document at a time. It keeps no state between calls.
type Pipeline struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
	dimension  int
	splitter   splitter.Splitter
	logger     *slog.Logger
}

// NewPipeline creates a new ingestion pipeline. dimension is the configured
// embedding dimension every stored vector is validated against.
func NewPipeline(embedder Embedder, store vectorstore.VectorStore, collection string, dimension int) *Pipeline {
	return &Pipeline{
		embedder:   embedder,
		store:      store,
		collection: collection,
		dimension:  dimension,
		splitter:   splitter.New(splitter.DefaultChunkSize, splitter.DefaultChunkOverlap),
		logger:     slog.Default(),
	}
}

// pageChunk is one chunk with its position inside the document.
type pageChunk struct {
	page  int // 1-based source page
	index int // chunk index within the page, 0-based
	text  string
}

// Ingest processes one document to completion: validate extension, extract
// page texts, chunk, embed, and upsert in batches of UpsertBatchSize.
//
// A failure mid-run aborts the remaining batches and surfaces the error;
// batches already upserted are left in place (no rollback) and the caller
// decides whether to retry or flag the document as unprocessed.
func (p *Pipeline) Ingest(ctx context.Context, doc Document) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)
	var res Result

	if doc.DocumentID == "" {
		return res, fmt.Errorf("document id is required")
	}
	if doc.UserID == "" {
		return res, fmt.Errorf("user id is required")
	}
	if !extractor.Supported(doc.Extension) {
		return res, fmt.Errorf("%w: %q", extractor.ErrUnsupportedFileType, doc.Extension)
	}

	pages, err := extractor.Extract(doc.Bytes, doc.Extension)
	if err != nil {
		return res, fmt.Errorf("failed to extract text: %w", err)
	}
	res.Pages = len(pages)

	chunks := p.chunkPages(pages)
	if len(chunks) == 0 {
		return res, ErrNoTextContent
	}
	res.Chunks = len(chunks)

	logger.InfoContext(ctx, "ingesting document",
		"document_id", doc.DocumentID,
		"pages", res.Pages,
		"chunks", res.Chunks,
	)

	for start := 0; start < len(chunks); start += UpsertBatchSize {
		end := start + UpsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		points, err := p.buildPoints(ctx, doc, batch)
		if err != nil {
			return res, fmt.Errorf("batch %d: %w", res.Batches+1, err)
		}

		if err := p.store.Upsert(ctx, p.collection, points); err != nil {
			return res, fmt.Errorf("batch %d: failed to upsert: %w", res.Batches+1, err)
		}
		res.Batches++
	}

	logger.InfoContext(ctx, "ingested document",
		"document_id", doc.DocumentID,
		"chunks", res.Chunks,
		"batches", res.Batches,
	)
	return res, nil
}

// Run launches Ingest on its own goroutine and returns a buffered channel
// carrying the terminal outcome. The caller may observe the outcome after
// the triggering request has already returned, or abandon the channel; the
// run completes either way.
func (p *Pipeline) Run(ctx context.Context, doc Document) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		res, err := p.Ingest(ctx, doc)
		if err != nil {
			p.logger.Error("background ingestion failed", "document_id", doc.DocumentID, "error", err)
		}
		out <- Outcome{DocumentID: doc.DocumentID, Result: res, Err: err}
		close(out)
	}()
	return out
}

// chunkPages splits each non-blank page and assigns (page, chunkIndex)
// positions. Blank pages are skipped, not represented by empty chunks.
func (p *Pipeline) chunkPages(pages []string) []pageChunk {
	var chunks []pageChunk
	for pageIdx, pageText := range pages {
		for idx, text := range p.splitter.Split(pageText) {
			chunks = append(chunks, pageChunk{
				page:  pageIdx + 1,
				index: idx,
				text:  text,
			})
		}
	}
	return chunks
}

// buildPoints embeds one batch of chunks and assembles the vector points.
// Vector lengths are re-validated here so the dimension invariant holds for
// any injected Embedder, not just the validating HTTP client.
func (p *Pipeline) buildPoints(ctx context.Context, doc Document, batch []pageChunk) ([]vectorstore.Point, error) {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.text
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(batch) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(vectors))
	}

	points := make([]vectorstore.Point, len(batch))
	for i, c := range batch {
		if p.dimension > 0 && len(vectors[i]) != p.dimension {
			return nil, fmt.Errorf("%w: chunk page=%d index=%d has size %d, expected %d",
				llm.ErrDimensionMismatch, c.page, c.index, len(vectors[i]), p.dimension)
		}

		meta := map[string]any{
			"fileId": doc.DocumentID,
			"page":   c.page,
			"chunk":  c.index,
			"text":   truncateRunes(c.text, MetadataTextLimit),
			// userId is always present; empty is the explicit "no owner"
			// sentinel, never a null value (the index rejects nulls).
			"userId": doc.UserID,
		}
		// folderId is omitted entirely when absent so an unset folder stays
		// distinguishable from a folder chat scoped to an empty folder.
		if doc.FolderID != "" {
			meta["folderId"] = doc.FolderID
		}

		points[i] = vectorstore.Point{
			ID:   PointID(doc.DocumentID, c.page, c.index),
			Vec:  vectors[i],
			Meta: meta,
		}
	}

	return points, nil
}

// PointID derives the stable vector point ID for a chunk. It is a SHA1
// UUID over (documentID, page, chunkIndex), so re-ingesting the same
// document replaces its chunks in place instead of duplicating them, and
// chunks of different documents can never collide.
func PointID(documentID string, page, index int) string {
	key := fmt.Sprintf("%s-%d-%d", documentID, page, index)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

// truncateRunes returns at most limit runes of s.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
