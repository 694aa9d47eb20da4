// Package sqlitevec implements VectorStore on SQLite with the sqlite-vec
// extension. Documents live in a regular table, embeddings in a vec0
// virtual table, and similarity queries run through vec_distance_cosine.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jhavlik/jobdesk/pkg/codec"
	"github.com/jhavlik/jobdesk/pkg/provider"
	"github.com/jhavlik/jobdesk/pkg/types"
	"github.com/jhavlik/jobdesk/pkg/vector"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

// DatabaseFile is the SQLite database filename inside the store directory.
const DatabaseFile = "vectors.db"

var (
	// Ensure sqlite-vec Auto() is called exactly once before any db connection
	vecAutoOnce sync.Once
)

// Config contains configuration for the sqlite-vec store.
type Config struct {
	// Path is the directory holding the database file.
	Path string

	// Embedder turns text into vectors on add and search.
	Embedder provider.EmbeddingProvider

	// Codec must be nil or plain. The database file is binary; payload
	// encoding is a flatfile concern.
	Codec codec.Codec
}

// Store implements the VectorStore interface using sqlite-vec.
type Store struct {
	mu sync.RWMutex

	db       *sql.DB
	path     string
	embedder provider.EmbeddingProvider

	dimensions int
	nextSeq    int
}

var _ provider.VectorStore = (*Store)(nil)

// New creates a sqlite-vec store in the given directory, creating the
// database and schema on first use.
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: store path is required", types.ErrInvalidConfig)
	}
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("%w: embedding provider is required", types.ErrInvalidConfig)
	}
	if cfg.Codec != nil && cfg.Codec.Name() != "plain" {
		return nil, fmt.Errorf("%w: sqlitevec does not support the %q codec", types.ErrInvalidConfig, cfg.Codec.Name())
	}

	// Register sqlite-vec extension before opening any database connection.
	// This must be called once before sql.Open() to ensure vec_* functions
	// are available.
	vecAutoOnce.Do(func() {
		sqlite_vec.Auto()
	})

	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	// WAL mode for concurrent reads, busy_timeout to wait for locks
	// instead of failing immediately.
	dbPath := filepath.Join(cfg.Path, DatabaseFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("SELECT vec_version()"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec extension not available: %w", err)
	}

	s := &Store{
		db:       db,
		path:     cfg.Path,
		embedder: cfg.Embedder,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if err := s.loadMeta(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load store state: %w", err)
	}

	return s, nil
}

// createSchema creates the document and meta tables.
func (s *Store) createSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS store_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			content TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			timestamp TEXT NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_documents_seq ON documents(seq)`)
	return err
}

// createVectorTable creates the vec0 virtual table for the given
// dimensions. Only called while the store holds no documents, so
// dropping a stale table is safe.
func (s *Store) createVectorTable(dimensions int) error {
	_, _ = s.db.Exec("DROP TABLE IF EXISTS document_embeddings")

	_, err := s.db.Exec(fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS document_embeddings USING vec0(
			doc_id TEXT PRIMARY KEY,
			embedding float[%d]
		)
	`, dimensions))
	if err != nil {
		return fmt.Errorf("failed to create vector table: %w", err)
	}
	return nil
}

// loadMeta restores dimensions and the id counter from the meta table.
func (s *Store) loadMeta() error {
	dims, err := s.getMeta("dimensions")
	if err != nil {
		return err
	}
	if dims != "" {
		n, err := strconv.Atoi(dims)
		if err != nil {
			return fmt.Errorf("invalid dimensions value %q: %w", dims, err)
		}
		s.dimensions = n
	}

	next, err := s.getMeta("next_seq")
	if err != nil {
		return err
	}
	s.nextSeq = 1
	if next != "" {
		n, err := strconv.Atoi(next)
		if err != nil {
			return fmt.Errorf("invalid next_seq value %q: %w", next, err)
		}
		s.nextSeq = n
	}
	return nil
}

func (s *Store) getMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM store_meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func setMetaTx(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec("INSERT OR REPLACE INTO store_meta (key, value) VALUES (?, ?)", key, value)
	return err
}

// AddTexts embeds the given texts and stores them in a single
// transaction. Returns the generated document ids in input order.
func (s *Store) AddTexts(ctx context.Context, texts []string, metadatas []map[string]any) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}
	if len(metadatas) > len(texts) {
		return nil, fmt.Errorf("received %d metadata entries for %d texts", len(metadatas), len(texts))
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %d texts: %w", len(texts), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding provider returned %d vectors for %d texts", len(vectors), len(texts))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dim := len(vectors[0])
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d", types.ErrDimensionMismatch, i, len(vec), dim)
		}
	}
	adopting := s.dimensions == 0
	if adopting {
		if err := s.createVectorTable(dim); err != nil {
			return nil, err
		}
	} else if dim != s.dimensions {
		return nil, fmt.Errorf("%w: got %d dimensions, store has %d", types.ErrDimensionMismatch, dim, s.dimensions)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	docStmt, err := tx.Prepare(`
		INSERT INTO documents (id, seq, content, metadata, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, err
	}
	defer docStmt.Close()

	embStmt, err := tx.Prepare(`
		INSERT INTO document_embeddings (doc_id, embedding)
		VALUES (?, ?)
	`)
	if err != nil {
		return nil, err
	}
	defer embStmt.Close()

	now := time.Now()
	timestamp := now.UTC().Format(time.RFC3339)
	seq := s.nextSeq
	ids := make([]string, 0, len(texts))

	for i, text := range texts {
		id := fmt.Sprintf("doc_%d_%d", seq, now.Unix())

		var custom map[string]any
		if i < len(metadatas) {
			custom = metadatas[i]
		}
		metaJSON, err := json.Marshal(custom)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata for %s: %w", id, err)
		}
		if custom == nil {
			metaJSON = []byte("{}")
		}

		if _, err := docStmt.Exec(id, seq, text, string(metaJSON), timestamp); err != nil {
			return nil, fmt.Errorf("failed to store document %s: %w", id, err)
		}
		if _, err := embStmt.Exec(id, floatsToBytes(vectors[i])); err != nil {
			return nil, fmt.Errorf("failed to store embedding for %s: %w", id, err)
		}

		ids = append(ids, id)
		seq++
	}

	if err := setMetaTx(tx, "next_seq", strconv.Itoa(seq)); err != nil {
		return nil, err
	}
	if adopting {
		if err := setMetaTx(tx, "dimensions", strconv.Itoa(dim)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	s.nextSeq = seq
	if adopting {
		s.dimensions = dim
	}
	return ids, nil
}

// AddDocuments stores documents, splitting content and metadata.
func (s *Store) AddDocuments(ctx context.Context, docs []types.Document) ([]string, error) {
	texts := make([]string, len(docs))
	metadatas := make([]map[string]any, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
		metadatas[i] = doc.Metadata
	}
	return s.AddTexts(ctx, texts, metadatas)
}

// SimilaritySearch returns the k most similar documents.
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

// SimilaritySearchWithScore returns the k most similar documents with
// cosine similarity scores, best first. Equal scores keep insertion
// order. An empty store returns an empty slice without embedding the
// query.
func (s *Store) SimilaritySearchWithScore(ctx context.Context, query string, k int) ([]types.ScoredDocument, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", k)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	if count == 0 {
		return []types.ScoredDocument{}, nil
	}

	qvec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.RLock()
	dim := s.dimensions
	s.mu.RUnlock()

	if len(qvec) != dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, stored vectors have %d", types.ErrDimensionMismatch, len(qvec), dim)
	}

	// A zero-norm query has similarity 0 to everything; return the
	// first k documents in insertion order rather than asking sqlite-vec
	// to order by an undefined distance.
	if vector.Magnitude(qvec) == 0 {
		return s.zeroScoreResults(ctx, k)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.content, d.metadata,
		       vec_distance_cosine(e.embedding, ?) AS distance
		FROM document_embeddings e
		JOIN documents d ON e.doc_id = d.id
		ORDER BY distance ASC, d.seq ASC
		LIMIT ?
	`, floatsToBytes(qvec), k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var results []types.ScoredDocument
	for rows.Next() {
		var (
			id       string
			content  string
			metaJSON string
			distance float64
		)
		if err := rows.Scan(&id, &content, &metaJSON, &distance); err != nil {
			return nil, err
		}

		doc, err := buildDocument(id, content, metaJSON)
		if err != nil {
			return nil, err
		}
		results = append(results, types.ScoredDocument{
			Document: doc,
			Score:    1.0 - distance,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	if results == nil {
		results = []types.ScoredDocument{}
	}
	return results, nil
}

// zeroScoreResults returns up to k documents in insertion order with
// score 0.
func (s *Store) zeroScoreResults(ctx context.Context, k int) ([]types.ScoredDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, metadata FROM documents ORDER BY seq ASC LIMIT ?
	`, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var results []types.ScoredDocument
	for rows.Next() {
		var id, content, metaJSON string
		if err := rows.Scan(&id, &content, &metaJSON); err != nil {
			return nil, err
		}
		doc, err := buildDocument(id, content, metaJSON)
		if err != nil {
			return nil, err
		}
		results = append(results, types.ScoredDocument{Document: doc, Score: 0})
	}
	return results, rows.Err()
}

// Delete removes documents by id in a single transaction. Unknown ids
// are ignored.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	in := strings.Join(placeholders, ",")

	if s.dimensions > 0 {
		if _, err := tx.ExecContext(ctx, "DELETE FROM document_embeddings WHERE doc_id IN ("+in+")", args...); err != nil {
			return fmt.Errorf("failed to delete embeddings: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id IN ("+in+")", args...); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}

	return tx.Commit()
}

// Stats reports document and vector counts. A mismatch between the two
// tables is an error.
func (s *Store) Stats(ctx context.Context) (types.CollectionStats, error) {
	var docCount int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&docCount); err != nil {
		return types.CollectionStats{}, fmt.Errorf("failed to count documents: %w", err)
	}

	vecCount := 0
	s.mu.RLock()
	hasVectors := s.dimensions > 0
	s.mu.RUnlock()
	if hasVectors {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM document_embeddings").Scan(&vecCount); err != nil {
			return types.CollectionStats{}, fmt.Errorf("failed to count embeddings: %w", err)
		}
	}

	if docCount != vecCount {
		return types.CollectionStats{}, fmt.Errorf("store state misaligned: %d documents, %d vectors", docCount, vecCount)
	}

	return types.CollectionStats{
		DocumentCount: docCount,
		VectorCount:   vecCount,
		StorePath:     s.path,
		Status:        "ready",
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// buildDocument converts a row into a Document, parsing the stored
// metadata JSON. Empty metadata maps come back as nil.
func buildDocument(id, content, metaJSON string) (types.Document, error) {
	var meta map[string]any
	if metaJSON != "" && metaJSON != "{}" {
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return types.Document{}, fmt.Errorf("failed to parse metadata for %s: %w", id, err)
		}
	}
	if len(meta) == 0 {
		meta = nil
	}
	return types.Document{
		ID:       id,
		Content:  content,
		Metadata: meta,
	}, nil
}

// floatsToBytes converts a float32 slice to bytes for sqlite-vec.
func floatsToBytes(floats []float32) []byte {
	bytes := make([]byte, len(floats)*4)
	for i, f := range floats {
		bits := math.Float32bits(f)
		bytes[i*4] = byte(bits)
		bytes[i*4+1] = byte(bits >> 8)
		bytes[i*4+2] = byte(bits >> 16)
		bytes[i*4+3] = byte(bits >> 24)
	}
	return bytes
}
