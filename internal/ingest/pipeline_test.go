package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"docchat/internal/extractor"
	"docchat/internal/llm"
	"docchat/internal/vectorstore"
	"docchat/internal/vectorstore/mocks"
)

const testDimension = 8

// fakeEmbedder returns deterministic vectors of a configurable dimension and
// records how it was called.
type fakeEmbedder struct {
	dimension int
	calls     int
	failCall  int // 1-based call number to fail on, 0 means never
	batches   [][]string
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	f.batches = append(f.batches, texts)
	if f.failCall > 0 && f.calls == f.failCall {
		return nil, fmt.Errorf("%w: embedding backend down", llm.ErrProvider)
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, f.dimension)
		for j := range vec {
			vec[j] = float32(i)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// longText produces text the default splitter cuts into exactly wantChunks
// chunks: 5-char words, 1000-rune chunks, 800-rune stride.
func longText(wantChunks int) string {
	words := (1000 + 800*(wantChunks-1)) / 5
	return strings.Repeat("word ", words)
}

func TestIngest_UnsupportedExtensionFailsBeforeEmbedding(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockVectorStore(ctrl)
	embedder := &fakeEmbedder{dimension: testDimension}
	p := NewPipeline(embedder, store, "docs", testDimension)

	_, err := p.Ingest(context.Background(), Document{
		Bytes:      []byte("a,b,c\n1,2,3"),
		Extension:  "csv",
		DocumentID: "doc-1",
		UserID:     "user-1",
	})
	if !errors.Is(err, extractor.ErrUnsupportedFileType) {
		t.Errorf("Ingest() error = %v, want ErrUnsupportedFileType", err)
	}
	if embedder.calls != 0 {
		t.Errorf("embedder called %d times, want 0 (validation precedes embedding)", embedder.calls)
	}
}

func TestIngest_MissingIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockVectorStore(ctrl)
	p := NewPipeline(&fakeEmbedder{dimension: testDimension}, store, "docs", testDimension)

	tests := []struct {
		name string
		doc  Document
	}{
		{name: "no document id", doc: Document{Bytes: []byte("text"), Extension: "txt", UserID: "user-1"}},
		{name: "no user id", doc: Document{Bytes: []byte("text"), Extension: "txt", DocumentID: "doc-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.Ingest(context.Background(), tt.doc); err == nil {
				t.Error("Ingest() expected error")
			}
		})
	}
}

func TestIngest_NoTextContent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockVectorStore(ctrl)
	embedder := &fakeEmbedder{dimension: testDimension}
	p := NewPipeline(embedder, store, "docs", testDimension)

	_, err := p.Ingest(context.Background(), Document{
		Bytes:      []byte("   \n\n\t  "),
		Extension:  "txt",
		DocumentID: "doc-1",
		UserID:     "user-1",
	})
	if !errors.Is(err, ErrNoTextContent) {
		t.Errorf("Ingest() error = %v, want ErrNoTextContent", err)
	}
	if embedder.calls != 0 {
		t.Errorf("embedder called %d times, want 0", embedder.calls)
	}
}

func TestIngest_SingleBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockVectorStore(ctrl)
	embedder := &fakeEmbedder{dimension: testDimension}
	p := NewPipeline(embedder, store, "docs", testDimension)

	var upserted []vectorstore.Point
	store.EXPECT().
		Upsert(gomock.Any(), "docs", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, points []vectorstore.Point) error {
			upserted = points
			return nil
		})

	res, err := p.Ingest(context.Background(), Document{
		Bytes:      []byte("A short document about nothing in particular."),
		Extension:  "txt",
		DocumentID: "doc-1",
		UserID:     "user-1",
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if res.Pages != 1 || res.Chunks != 1 || res.Batches != 1 {
		t.Errorf("Ingest() result = %+v, want 1 page, 1 chunk, 1 batch", res)
	}
	if len(upserted) != 1 {
		t.Fatalf("upserted %d points, want 1", len(upserted))
	}

	point := upserted[0]
	if point.Meta["fileId"] != "doc-1" {
		t.Errorf("meta fileId = %v, want doc-1", point.Meta["fileId"])
	}
	if point.Meta["page"] != 1 {
		t.Errorf("meta page = %v, want 1", point.Meta["page"])
	}
	if point.Meta["chunk"] != 0 {
		t.Errorf("meta chunk = %v, want 0", point.Meta["chunk"])
	}
	if point.Meta["userId"] != "user-1" {
		t.Errorf("meta userId = %v, want user-1", point.Meta["userId"])
	}
	if point.Meta["text"] != "A short document about nothing in particular." {
		t.Errorf("meta text = %v", point.Meta["text"])
	}
	if _, ok := point.Meta["folderId"]; ok {
		t.Error("meta folderId present for a document outside any folder")
	}
	if point.ID != PointID("doc-1", 1, 0) {
		t.Errorf("point ID = %q, want derived ID", point.ID)
	}
}

func TestIngest_FolderIDInMetadata(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockVectorStore(ctrl)
	p := NewPipeline(&fakeEmbedder{dimension: testDimension}, store, "docs", testDimension)

	var upserted []vectorstore.Point
	store.EXPECT().
		Upsert(gomock.Any(), "docs", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, points []vectorstore.Point) error {
			upserted = points
			return nil
		})

	_, err := p.Ingest(context.Background(), Document{
		Bytes:      []byte("Folder member content."),
		Extension:  "txt",
		DocumentID: "doc-1",
		UserID:     "user-1",
		FolderID:   "folder-9",
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if upserted[0].Meta["folderId"] != "folder-9" {
		t.Errorf("meta folderId = %v, want folder-9", upserted[0].Meta["folderId"])
	}
}

func TestIngest_BatchesOfTen(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockVectorStore(ctrl)
	embedder := &fakeEmbedder{dimension: testDimension}
	p := NewPipeline(embedder, store, "docs", testDimension)

	var batchSizes []int
	store.EXPECT().
		Upsert(gomock.Any(), "docs", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, points []vectorstore.Point) error {
			batchSizes = append(batchSizes, len(points))
			return nil
		}).
		Times(3)

	res, err := p.Ingest(context.Background(), Document{
		Bytes:      []byte(longText(25)),
		Extension:  "txt",
		DocumentID: "doc-1",
		UserID:     "user-1",
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if res.Chunks != 25 {
		t.Fatalf("Ingest() chunks = %d, want 25", res.Chunks)
	}
	if res.Batches != 3 {
		t.Errorf("Ingest() batches = %d, want 3", res.Batches)
	}
	want := []int{10, 10, 5}
	if len(batchSizes) != len(want) {
		t.Fatalf("upsert batch sizes = %v, want %v", batchSizes, want)
	}
	for i := range want {
		if batchSizes[i] != want[i] {
			t.Errorf("batch %d size = %d, want %d", i, batchSizes[i], want[i])
		}
	}
}

func TestIngest_EmbedFailureAbortsRemainingBatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockVectorStore(ctrl)
	embedder := &fakeEmbedder{dimension: testDimension, failCall: 2}
	p := NewPipeline(embedder, store, "docs", testDimension)

	// Only the first batch reaches the store.
	store.EXPECT().
		Upsert(gomock.Any(), "docs", gomock.Any()).
		Return(nil).
		Times(1)

	res, err := p.Ingest(context.Background(), Document{
		Bytes:      []byte(longText(25)),
		Extension:  "txt",
		DocumentID: "doc-1",
		UserID:     "user-1",
	})
	if !errors.Is(err, llm.ErrProvider) {
		t.Errorf("Ingest() error = %v, want wrapped ErrProvider", err)
	}
	if res.Batches != 1 {
		t.Errorf("Ingest() batches = %d, want 1 (completed before failure)", res.Batches)
	}
	if embedder.calls != 2 {
		t.Errorf("embedder called %d times, want 2", embedder.calls)
	}
}

func TestIngest_DimensionMismatchBlocksUpsert(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockVectorStore(ctrl)
	// No Upsert expectation: a wrong-size vector must never reach the store.
	embedder := &fakeEmbedder{dimension: testDimension + 1}
	p := NewPipeline(embedder, store, "docs", testDimension)

	_, err := p.Ingest(context.Background(), Document{
		Bytes:      []byte("Some content to embed."),
		Extension:  "txt",
		DocumentID: "doc-1",
		UserID:     "user-1",
	})
	if !errors.Is(err, llm.ErrDimensionMismatch) {
		t.Errorf("Ingest() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestIngest_UpsertFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockVectorStore(ctrl)
	store.EXPECT().
		Upsert(gomock.Any(), "docs", gomock.Any()).
		Return(errors.New("qdrant unavailable"))

	p := NewPipeline(&fakeEmbedder{dimension: testDimension}, store, "docs", testDimension)
	_, err := p.Ingest(context.Background(), Document{
		Bytes:      []byte("Some content."),
		Extension:  "txt",
		DocumentID: "doc-1",
		UserID:     "user-1",
	})
	if err == nil || !strings.Contains(err.Error(), "batch 1") {
		t.Errorf("Ingest() error = %v, want batch-numbered upsert failure", err)
	}
}

func TestChunkPages_SkipsBlankPagesKeepsNumbering(t *testing.T) {
	p := NewPipeline(&fakeEmbedder{dimension: testDimension}, nil, "docs", testDimension)

	chunks := p.chunkPages([]string{"page one text", "", "page three text"})
	if len(chunks) != 2 {
		t.Fatalf("chunkPages() = %d chunks, want 2", len(chunks))
	}
	if chunks[0].page != 1 || chunks[0].index != 0 {
		t.Errorf("first chunk position = (%d,%d), want (1,0)", chunks[0].page, chunks[0].index)
	}
	if chunks[1].page != 3 || chunks[1].index != 0 {
		t.Errorf("second chunk position = (%d,%d), want (3,0): blank page must keep numbering", chunks[1].page, chunks[1].index)
	}
}

func TestPointID(t *testing.T) {
	a := PointID("doc-1", 1, 0)
	b := PointID("doc-1", 1, 0)
	if a != b {
		t.Errorf("PointID is not deterministic: %q vs %q", a, b)
	}

	if PointID("doc-1", 1, 0) == PointID("doc-1", 1, 1) {
		t.Error("PointID collides across chunk indexes")
	}
	if PointID("doc-1", 1, 0) == PointID("doc-2", 1, 0) {
		t.Error("PointID collides across documents")
	}

	// Qdrant point IDs must be UUIDs.
	if len(a) != 36 || strings.Count(a, "-") != 4 {
		t.Errorf("PointID %q is not a UUID", a)
	}
}

func TestRun_DeliversOutcome(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockVectorStore(ctrl)
	store.EXPECT().Upsert(gomock.Any(), "docs", gomock.Any()).Return(nil)

	p := NewPipeline(&fakeEmbedder{dimension: testDimension}, store, "docs", testDimension)
	outcomes := p.Run(context.Background(), Document{
		Bytes:      []byte("Background ingestion content."),
		Extension:  "txt",
		DocumentID: "doc-1",
		UserID:     "user-1",
	})

	outcome := <-outcomes
	if outcome.Err != nil {
		t.Fatalf("Run() outcome error = %v", outcome.Err)
	}
	if outcome.DocumentID != "doc-1" {
		t.Errorf("outcome document id = %q, want doc-1", outcome.DocumentID)
	}
	if outcome.Result.Chunks != 1 {
		t.Errorf("outcome chunks = %d, want 1", outcome.Result.Chunks)
	}

	if _, ok := <-outcomes; ok {
		t.Error("outcome channel should be closed after delivery")
	}
}

func TestRun_DeliversFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockVectorStore(ctrl)
	p := NewPipeline(&fakeEmbedder{dimension: testDimension}, store, "docs", testDimension)

	outcomes := p.Run(context.Background(), Document{
		Bytes:      []byte("irrelevant"),
		Extension:  "csv",
		DocumentID: "doc-1",
		UserID:     "user-1",
	})

	outcome := <-outcomes
	if !errors.Is(outcome.Err, extractor.ErrUnsupportedFileType) {
		t.Errorf("Run() outcome error = %v, want ErrUnsupportedFileType", outcome.Err)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("short", 10); got != "short" {
		t.Errorf("truncateRunes() = %q, want unchanged", got)
	}
	if got := truncateRunes("abcdef", 3); got != "abc" {
		t.Errorf("truncateRunes() = %q, want %q", got, "abc")
	}
	if got := truncateRunes("héllo", 2); got != "hé" {
		t.Errorf("truncateRunes() = %q, want rune-safe cut", got)
	}
}
