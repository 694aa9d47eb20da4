package provider

import (
	"github.com/jhavlik/jobdesk/pkg/types"
)

// ChunkingStrategy splits source documents into chunks for embedding.
type ChunkingStrategy interface {
	// Name returns the strategy name (e.g., "simple").
	Name() string

	// Chunk splits text into chunks. The source label is carried into
	// each chunk for provenance.
	Chunk(text, source string) ([]types.Chunk, error)

	// Close releases any resources.
	Close() error
}

// ChunkingConfig contains configuration for chunking strategies.
type ChunkingConfig struct {
	Strategy     string // "simple"
	MaxChunkSize int    // Max characters per chunk
	Overlap      int    // Characters carried over between adjacent chunks
}
