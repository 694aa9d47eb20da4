package sqlitevec

import (
	"context"
	"crypto/sha256"
	"errors"
	"os"
	"testing"

	"github.com/jhavlik/jobdesk/pkg/codec"
	"github.com/jhavlik/jobdesk/pkg/types"
)

// stubEmbedder returns fixed vectors from a lookup table, falling back to a
// deterministic hash-derived vector so identical texts always embed
// identically.
type stubEmbedder struct {
	dim        int
	vectors    map[string][]float32
	queryCalls int
}

func newStubEmbedder(dim int, vectors map[string][]float32) *stubEmbedder {
	return &stubEmbedder{dim: dim, vectors: vectors}
}

func (e *stubEmbedder) Name() string { return "stub" }

func (e *stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.embed(t)
	}
	return out, nil
}

func (e *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e.queryCalls++
	return e.embed(text), nil
}

func (e *stubEmbedder) Dimensions() int   { return e.dim }
func (e *stubEmbedder) MaxBatchSize() int { return 32 }
func (e *stubEmbedder) Close() error      { return nil }

func (e *stubEmbedder) embed(text string) []float32 {
	if v, ok := e.vectors[text]; ok {
		return v
	}
	h := sha256.Sum256([]byte(text))
	v := make([]float32, e.dim)
	for i := range v {
		v[i] = float32(h[i%len(h)])/255*2 - 1
	}
	return v
}

func newTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	store, err := New(Config{
		Path:     dir,
		Embedder: newStubEmbedder(8, nil),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return store
}

func TestRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "sqlitevec-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	store := newTestStore(t, tmpDir)

	texts := []string{"recruiter call summary", "take-home assignment notes", "salary research for backend roles"}
	ids, err := store.AddTexts(ctx, texts, []map[string]any{{"source": "notes"}})
	if err != nil {
		t.Fatalf("AddTexts failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("AddTexts returned %d ids, want 3", len(ids))
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Reopen from disk and query with one of the stored texts.
	reopened := newTestStore(t, tmpDir)
	defer reopened.Close()

	results, err := reopened.SimilaritySearchWithScore(ctx, "take-home assignment notes", 1)
	if err != nil {
		t.Fatalf("SimilaritySearchWithScore failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Document.Content != "take-home assignment notes" {
		t.Errorf("top result = %q, want the identical text", results[0].Document.Content)
	}
	if results[0].Score < 0.99 {
		t.Errorf("score = %v, want > 0.99 for an identical query", results[0].Score)
	}
}

func TestEmptyStoreSearch(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "sqlitevec-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	embedder := newStubEmbedder(8, nil)
	store, err := New(Config{Path: tmpDir, Embedder: embedder})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer store.Close()

	for _, k := range []int{1, 5, 100} {
		results, err := store.SimilaritySearchWithScore(ctx, "anything", k)
		if err != nil {
			t.Fatalf("search on empty store failed: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("k=%d: got %d results, want 0", k, len(results))
		}
	}
	if embedder.queryCalls != 0 {
		t.Errorf("empty store embedded the query %d times, want 0", embedder.queryCalls)
	}
}

func TestTieBreakInsertionOrder(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "sqlitevec-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	vecs := map[string][]float32{
		"first":  {1, 0, 0},
		"other":  {0, 1, 0},
		"second": {1, 0, 0},
		"query":  {1, 0, 0},
	}
	store, err := New(Config{Path: tmpDir, Embedder: newStubEmbedder(3, vecs)})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer store.Close()

	if _, err := store.AddTexts(ctx, []string{"first", "other", "second"}, nil); err != nil {
		t.Fatalf("AddTexts failed: %v", err)
	}

	results, err := store.SimilaritySearchWithScore(ctx, "query", 3)
	if err != nil {
		t.Fatalf("SimilaritySearchWithScore failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Document.Content != "first" || results[1].Document.Content != "second" {
		t.Errorf("equal scores broke insertion order: got %q then %q",
			results[0].Document.Content, results[1].Document.Content)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not in descending score order at %d", i)
		}
	}
}

func TestDeleteIdempotent(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "sqlitevec-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	store := newTestStore(t, tmpDir)
	defer store.Close()

	ids, err := store.AddTexts(ctx, []string{"a", "b", "c"}, nil)
	if err != nil {
		t.Fatalf("AddTexts failed: %v", err)
	}

	if err := store.Delete(ctx, []string{ids[0], "doc_999_0"}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, []string{ids[0]}); err != nil {
		t.Fatalf("repeated Delete failed: %v", err)
	}
	if err := store.Delete(ctx, nil); err != nil {
		t.Fatalf("Delete with no ids failed: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.DocumentCount != 2 {
		t.Errorf("DocumentCount = %d, want 2", stats.DocumentCount)
	}
	if stats.VectorCount != 2 {
		t.Errorf("VectorCount = %d, want 2", stats.VectorCount)
	}
	if stats.Status != "ready" {
		t.Errorf("Status = %q, want %q", stats.Status, "ready")
	}
}

func TestIDsNeverCollide(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "sqlitevec-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	store := newTestStore(t, tmpDir)

	seen := make(map[string]bool)
	record := func(ids []string) {
		t.Helper()
		for _, id := range ids {
			if seen[id] {
				t.Errorf("id %q issued twice", id)
			}
			seen[id] = true
		}
	}

	ids, err := store.AddTexts(ctx, []string{"a", "b", "c"}, nil)
	if err != nil {
		t.Fatalf("AddTexts failed: %v", err)
	}
	record(ids)

	if err := store.Delete(ctx, ids); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	store.Close()

	// The counter must survive deletion of every document and a reload.
	reopened := newTestStore(t, tmpDir)
	defer reopened.Close()

	more, err := reopened.AddTexts(ctx, []string{"d", "e"}, nil)
	if err != nil {
		t.Fatalf("AddTexts after reload failed: %v", err)
	}
	record(more)

	if len(seen) != 5 {
		t.Errorf("issued %d unique ids, want 5", len(seen))
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "sqlitevec-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	store := newTestStore(t, tmpDir)
	defer store.Close()

	_, err = store.AddTexts(ctx, []string{"note about initech"}, []map[string]any{
		{"source": "journal", "company": "initech"},
	})
	if err != nil {
		t.Fatalf("AddTexts failed: %v", err)
	}

	results, err := store.SimilaritySearchWithScore(ctx, "note about initech", 1)
	if err != nil {
		t.Fatalf("SimilaritySearchWithScore failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	doc := results[0].Document
	if doc.ID == "" {
		t.Error("result has no id")
	}
	if doc.Metadata["source"] != "journal" || doc.Metadata["company"] != "initech" {
		t.Errorf("metadata = %v, want custom keys preserved", doc.Metadata)
	}
	for _, key := range []string{"id", "text", "timestamp"} {
		if _, ok := doc.Metadata[key]; ok {
			t.Errorf("metadata leaked reserved key %q", key)
		}
	}
}

func TestDimensionMismatchFailsSearch(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "sqlitevec-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	embedder := newStubEmbedder(8, nil)
	store, err := New(Config{Path: tmpDir, Embedder: embedder})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer store.Close()

	if _, err := store.AddTexts(ctx, []string{"a"}, nil); err != nil {
		t.Fatalf("AddTexts failed: %v", err)
	}

	embedder.dim = 4
	_, err = store.SimilaritySearchWithScore(ctx, "query", 1)
	if !errors.Is(err, types.ErrDimensionMismatch) {
		t.Errorf("got error %v, want ErrDimensionMismatch", err)
	}
}

func TestInvalidK(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "sqlitevec-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	store := newTestStore(t, tmpDir)
	defer store.Close()

	if _, err := store.SimilaritySearchWithScore(context.Background(), "q", 0); err == nil {
		t.Error("k=0 did not fail")
	}
}

func TestRejectsPayloadCodec(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "sqlitevec-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	cdc, err := codec.NewAESGCM("passphrase")
	if err != nil {
		t.Fatalf("NewAESGCM failed: %v", err)
	}

	_, err = New(Config{Path: tmpDir, Embedder: newStubEmbedder(8, nil), Codec: cdc})
	if !errors.Is(err, types.ErrInvalidConfig) {
		t.Errorf("got error %v, want ErrInvalidConfig", err)
	}
}
