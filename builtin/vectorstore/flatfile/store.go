// Package flatfile implements VectorStore as a brute-force cosine scan over
// two flat files: a binary embeddings blob and a JSON metadata document,
// index-aligned in insertion order. Every query scans all stored vectors,
// which keeps recall exact at personal-collection scale.
package flatfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jhavlik/jobdesk/pkg/codec"
	"github.com/jhavlik/jobdesk/pkg/provider"
	"github.com/jhavlik/jobdesk/pkg/types"
	"github.com/jhavlik/jobdesk/pkg/vector"
)

const (
	vectorsFile  = "vectors.bin"
	metadataFile = "metadata.json"
)

// Config contains construction options for the flat-file store.
type Config struct {
	Path     string                     // Collection directory, created on first use
	Codec    codec.Codec                // nil means plain
	Strict   bool                       // Propagate undecodable state instead of starting empty
	Embedder provider.EmbeddingProvider // Required
}

// Store implements the VectorStore interface over two flat files.
//
// State is held in three index-aligned slices: vectors, their precomputed
// magnitudes, and the metadata records. Position i in each refers to the
// same stored document; every mutation must keep them the same length.
type Store struct {
	mu       sync.RWMutex
	path     string
	cdc      codec.Codec
	embedder provider.EmbeddingProvider

	vectors    [][]float32
	magnitudes []float32
	records    []map[string]any
	dimensions int // 0 until the first vector is stored
	nextSeq    int // monotonic id counter, seeded past loaded ids
}

var _ provider.VectorStore = (*Store)(nil)

// New opens the collection at cfg.Path, creating the directory and starting
// empty if no persisted state exists. Unreadable or undecodable state is
// logged and replaced by an empty collection unless cfg.Strict is set, in
// which case it is returned as an error.
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: store path is empty", types.ErrInvalidConfig)
	}
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("%w: embedding provider is required", types.ErrInvalidConfig)
	}
	cdc := cfg.Codec
	if cdc == nil {
		cdc = codec.NewPlain()
	}
	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	s := &Store{
		path:     cfg.Path,
		cdc:      cdc,
		embedder: cfg.Embedder,
	}
	if err := s.load(); err != nil {
		if cfg.Strict {
			return nil, err
		}
		slog.Warn("failed to load vector store state, starting empty",
			"path", cfg.Path, "codec", cdc.Name(), "error", err)
	}
	return s, nil
}

func (s *Store) vectorsPath() string {
	return filepath.Join(s.path, vectorsFile)
}

func (s *Store) metadataPath() string {
	return filepath.Join(s.path, metadataFile)
}

// load reads both artifacts and assigns the in-memory state only once both
// parse and align, so a failed load leaves the store empty rather than
// half-populated.
func (s *Store) load() error {
	vecBytes, vecErr := os.ReadFile(s.vectorsPath())
	metaBytes, metaErr := os.ReadFile(s.metadataPath())
	if os.IsNotExist(vecErr) && os.IsNotExist(metaErr) {
		return nil // fresh collection
	}
	if vecErr != nil {
		return fmt.Errorf("failed to read %s: %w", vectorsFile, vecErr)
	}
	if metaErr != nil {
		return fmt.Errorf("failed to read %s: %w", metadataFile, metaErr)
	}

	vecPlain, err := s.cdc.Decode(vecBytes)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", vectorsFile, err)
	}
	metaPlain, err := s.cdc.Decode(metaBytes)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", metadataFile, err)
	}

	vectors, dim, err := vector.DecodeEmbeddings(vecPlain)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", vectorsFile, err)
	}
	var records []map[string]any
	if err := json.Unmarshal(metaPlain, &records); err != nil {
		return fmt.Errorf("failed to parse %s: %w", metadataFile, err)
	}
	if len(vectors) != len(records) {
		return fmt.Errorf("store state misaligned: %d vectors vs %d metadata records", len(vectors), len(records))
	}

	magnitudes := make([]float32, len(vectors))
	for i, v := range vectors {
		magnitudes[i] = vector.Magnitude(v)
	}
	nextSeq := 0
	for _, rec := range records {
		if id, ok := rec[types.MetaKeyID].(string); ok {
			if n, ok := parseSeq(id); ok && n >= nextSeq {
				nextSeq = n + 1
			}
		}
	}

	s.vectors = vectors
	s.magnitudes = magnitudes
	s.records = records
	s.dimensions = dim
	s.nextSeq = nextSeq
	return nil
}

// save re-persists both artifacts. Payloads are encoded up front so an
// encoding failure cannot leave one file newer than the other; each file is
// then written via a temp file and rename.
func (s *Store) save() error {
	blob, err := vector.EncodeEmbeddings(s.vectors, s.dimensions)
	if err != nil {
		return fmt.Errorf("failed to encode vectors: %w", err)
	}
	vecBytes, err := s.cdc.Encode(blob)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", vectorsFile, err)
	}

	metaJSON, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	metaBytes, err := s.cdc.Encode(metaJSON)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", metadataFile, err)
	}

	if err := writeAtomic(s.vectorsPath(), vecBytes); err != nil {
		return fmt.Errorf("failed to write %s: %w", vectorsFile, err)
	}
	if err := writeAtomic(s.metadataPath(), metaBytes); err != nil {
		return fmt.Errorf("failed to write %s: %w", metadataFile, err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// nextID returns a fresh id embedding a monotonic sequence number, so ids
// never collide with live or previously deleted records.
func (s *Store) nextID(now time.Time) string {
	id := fmt.Sprintf("doc_%d_%d", s.nextSeq, now.Unix())
	s.nextSeq++
	return id
}

// parseSeq extracts the sequence number from ids of the form
// doc_<seq>_<unix>. Foreign id formats are ignored for counter seeding.
func parseSeq(id string) (int, bool) {
	parts := strings.Split(id, "_")
	if len(parts) != 3 || parts[0] != "doc" {
		return 0, false
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// AddTexts embeds the given texts and appends them to the collection,
// persisting both artifacts before returning the generated ids.
func (s *Store) AddTexts(ctx context.Context, texts []string, metadatas []map[string]any) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}
	if len(metadatas) > len(texts) {
		return nil, fmt.Errorf("metadata count %d exceeds text count %d", len(metadatas), len(texts))
	}

	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %d texts: %w", len(texts), err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding provider returned %d vectors for %d texts", len(embeddings), len(texts))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.dimensions
	for i, emb := range embeddings {
		if dim == 0 {
			dim = len(emb)
			continue
		}
		if len(emb) != dim {
			return nil, fmt.Errorf("%w: text %d embedded to %d dimensions, collection has %d",
				types.ErrDimensionMismatch, i, len(emb), dim)
		}
	}
	s.dimensions = dim

	now := time.Now()
	ids := make([]string, 0, len(texts))
	for i, text := range texts {
		rec := make(map[string]any)
		if i < len(metadatas) {
			for k, v := range metadatas[i] {
				rec[k] = v
			}
		}
		id := s.nextID(now)
		rec[types.MetaKeyID] = id
		rec[types.MetaKeyText] = text
		rec[types.MetaKeyTimestamp] = now.Format(time.RFC3339)

		s.vectors = append(s.vectors, embeddings[i])
		s.magnitudes = append(s.magnitudes, vector.Magnitude(embeddings[i]))
		s.records = append(s.records, rec)
		ids = append(ids, id)
	}

	if err := s.save(); err != nil {
		return nil, err
	}
	return ids, nil
}

// AddDocuments unzips documents into texts and metadata and delegates to
// AddTexts.
func (s *Store) AddDocuments(ctx context.Context, docs []types.Document) ([]string, error) {
	texts := make([]string, len(docs))
	metadatas := make([]map[string]any, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
		metadatas[i] = doc.Metadata
	}
	return s.AddTexts(ctx, texts, metadatas)
}

// SimilaritySearch returns the k most similar documents, best first.
func (s *Store) SimilaritySearch(ctx context.Context, query string, k int) ([]types.Document, error) {
	scored, err := s.SimilaritySearchWithScore(ctx, query, k)
	if err != nil {
		return nil, err
	}
	docs := make([]types.Document, len(scored))
	for i, sd := range scored {
		docs[i] = sd.Document
	}
	return docs, nil
}

// SimilaritySearchWithScore ranks every stored vector against the query by
// cosine similarity, descending, ties broken by insertion order. An empty
// collection yields an empty result without calling the embedding provider.
func (s *Store) SimilaritySearchWithScore(ctx context.Context, query string, k int) ([]types.ScoredDocument, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", k)
	}

	s.mu.RLock()
	empty := len(s.records) == 0
	s.mu.RUnlock()
	if empty {
		return []types.ScoredDocument{}, nil
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return []types.ScoredDocument{}, nil
	}
	if len(queryVec) != s.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, stored vectors have %d",
			types.ErrDimensionMismatch, len(queryVec), s.dimensions)
	}

	type scored struct {
		idx   int
		score float64
	}
	qmag := vector.Magnitude(queryVec)
	scores := make([]scored, len(s.vectors))
	for i, vec := range s.vectors {
		sim, err := vector.CosineSimilarityWithMagnitude(queryVec, vec, qmag, s.magnitudes[i])
		if err != nil {
			return nil, fmt.Errorf("failed to score record %d: %w", i, err)
		}
		scores[i] = scored{idx: i, score: sim}
	}

	// Stable sort over index order keeps equal scores in insertion order.
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})

	if k > len(scores) {
		k = len(scores)
	}
	results := make([]types.ScoredDocument, 0, k)
	for _, sc := range scores[:k] {
		results = append(results, types.ScoredDocument{
			Document: s.documentAt(sc.idx),
			Score:    sc.score,
		})
	}
	return results, nil
}

// documentAt converts the record at index i to its caller-facing form: the
// stored text as content, the id as a typed field, and the metadata map
// with the reserved bookkeeping keys stripped.
func (s *Store) documentAt(i int) types.Document {
	rec := s.records[i]
	text, _ := rec[types.MetaKeyText].(string)
	id, _ := rec[types.MetaKeyID].(string)

	var meta map[string]any
	for k, v := range rec {
		switch k {
		case types.MetaKeyID, types.MetaKeyText, types.MetaKeyTimestamp:
			continue
		}
		if meta == nil {
			meta = make(map[string]any)
		}
		meta[k] = v
	}
	return types.Document{ID: id, Content: text, Metadata: meta}
}

// Delete removes the records with the given ids, ignoring unknown ones, and
// re-persists both artifacts once for the whole batch. Deleting nothing
// leaves the files untouched.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	n := 0
	for i, rec := range s.records {
		id, _ := rec[types.MetaKeyID].(string)
		if drop[id] {
			continue
		}
		s.records[n] = s.records[i]
		s.vectors[n] = s.vectors[i]
		s.magnitudes[n] = s.magnitudes[i]
		n++
	}
	if n == len(s.records) {
		return nil
	}
	s.records = s.records[:n]
	s.vectors = s.vectors[:n]
	s.magnitudes = s.magnitudes[:n]

	return s.save()
}

// Stats reports the collection counts. A count mismatch between the two
// arrays indicates index desynchronization and is returned as an error.
func (s *Store) Stats(ctx context.Context) (types.CollectionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) != len(s.vectors) {
		return types.CollectionStats{}, fmt.Errorf("store state misaligned: %d metadata records vs %d vectors",
			len(s.records), len(s.vectors))
	}
	return types.CollectionStats{
		DocumentCount: len(s.records),
		VectorCount:   len(s.vectors),
		StorePath:     s.path,
		Status:        "ready",
	}, nil
}

// Close releases resources. The flat-file store holds no open handles.
func (s *Store) Close() error {
	return nil
}
