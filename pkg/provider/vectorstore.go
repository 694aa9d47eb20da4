package provider

import (
	"context"

	"github.com/jhavlik/jobdesk/pkg/types"
)

// VectorStore persists embedded documents and answers nearest-neighbor
// queries over them.
type VectorStore interface {
	// AddTexts embeds and stores the given texts. metadatas may be nil or
	// shorter than texts; texts beyond its length get no extra metadata.
	// Returns the generated ids in input order. An empty input is a no-op
	// that returns no ids and does not touch persistence.
	AddTexts(ctx context.Context, texts []string, metadatas []map[string]any) ([]string, error)

	// AddDocuments unzips documents into texts and metadata and delegates
	// to AddTexts.
	AddDocuments(ctx context.Context, docs []types.Document) ([]string, error)

	// SimilaritySearch returns the k stored documents most similar to the
	// query, best first. An empty collection yields an empty result; if k
	// exceeds the collection size, every document is returned.
	SimilaritySearch(ctx context.Context, query string, k int) ([]types.Document, error)

	// SimilaritySearchWithScore is SimilaritySearch with the cosine
	// similarity score attached to each result.
	SimilaritySearchWithScore(ctx context.Context, query string, k int) ([]types.ScoredDocument, error)

	// Delete removes the records with the given ids and re-persists once
	// for the whole batch. Unknown ids are ignored.
	Delete(ctx context.Context, ids []string) error

	// Stats reports the collection's document and vector counts.
	Stats(ctx context.Context) (types.CollectionStats, error)

	// Close releases any resources.
	Close() error
}

// VectorStoreConfig contains configuration for vector stores.
type VectorStoreConfig struct {
	Provider   string // "flatfile", "sqlitevec", "qdrant"
	Path       string // Store directory (flatfile) or database file (sqlitevec)
	Collection string // Collection name (qdrant)
	Endpoint   string // Server address (qdrant)
	Strict     bool   // Fail open instead of starting empty when persisted state cannot be decoded
}
