package host

import (
	"context"
	"fmt"

	"github.com/jhavlik/jobdesk/pkg/plugin/shared"
	"github.com/jhavlik/jobdesk/pkg/provider"
)

// EmbeddingAdapter adapts a plugin EmbeddingProvider to the provider.EmbeddingProvider interface.
type EmbeddingAdapter struct {
	plugin shared.EmbeddingProvider
}

// NewEmbeddingAdapter creates a new embedding adapter.
func NewEmbeddingAdapter(p shared.EmbeddingProvider) *EmbeddingAdapter {
	return &EmbeddingAdapter{plugin: p}
}

// Name returns the provider name.
func (a *EmbeddingAdapter) Name() string {
	return a.plugin.Name()
}

// EmbedDocuments generates embeddings for the given texts.
func (a *EmbeddingAdapter) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	// Check context before calling plugin
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return a.plugin.Embed(texts)
}

// EmbedQuery generates an embedding for a single query text.
func (a *EmbeddingAdapter) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	embeddings, err := a.plugin.Embed([]string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("plugin returned %d embeddings for a single query", len(embeddings))
	}
	return embeddings[0], nil
}

// Dimensions returns the embedding dimensions.
func (a *EmbeddingAdapter) Dimensions() int {
	return a.plugin.Dimensions()
}

// MaxBatchSize returns the maximum batch size.
func (a *EmbeddingAdapter) MaxBatchSize() int {
	return a.plugin.MaxBatchSize()
}

// Close closes the provider.
func (a *EmbeddingAdapter) Close() error {
	return a.plugin.Close()
}

// Ensure EmbeddingAdapter implements provider.EmbeddingProvider
var _ provider.EmbeddingProvider = (*EmbeddingAdapter)(nil)
