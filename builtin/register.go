// Package builtin registers all built-in providers with the default registry.
package builtin

import (
	ollamaChat "github.com/jhavlik/jobdesk/builtin/chat/ollama"
	openaiChat "github.com/jhavlik/jobdesk/builtin/chat/openai"
	simpleChunker "github.com/jhavlik/jobdesk/builtin/chunking/simple"
	ollamaEmbed "github.com/jhavlik/jobdesk/builtin/embedding/ollama"
	openaiEmbed "github.com/jhavlik/jobdesk/builtin/embedding/openai"
	"github.com/jhavlik/jobdesk/builtin/vectorstore/flatfile"
	"github.com/jhavlik/jobdesk/builtin/vectorstore/qdrant"
	"github.com/jhavlik/jobdesk/builtin/vectorstore/sqlitevec"
	"github.com/jhavlik/jobdesk/pkg/codec"
	"github.com/jhavlik/jobdesk/pkg/provider"
)

func init() {
	// Register embedding providers
	provider.RegisterEmbedding("ollama", func(cfg provider.EmbeddingConfig) (provider.EmbeddingProvider, error) {
		return ollamaEmbed.New(ollamaEmbed.Config{
			Endpoint:  cfg.Endpoint,
			Model:     cfg.Model,
			BatchSize: cfg.BatchSize,
		}), nil
	})

	provider.RegisterEmbedding("openai", func(cfg provider.EmbeddingConfig) (provider.EmbeddingProvider, error) {
		return openaiEmbed.New(openaiEmbed.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			BatchSize: cfg.BatchSize,
		}), nil
	})

	// Register chat providers
	provider.RegisterChat("ollama", func(cfg provider.ChatConfig) (provider.ChatProvider, error) {
		return ollamaChat.New(ollamaChat.Config{
			Endpoint:    cfg.Endpoint,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		}), nil
	})

	provider.RegisterChat("openai", func(cfg provider.ChatConfig) (provider.ChatProvider, error) {
		return openaiChat.New(openaiChat.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		}), nil
	})

	// Register chunking strategies
	provider.RegisterChunking("simple", func(cfg provider.ChunkingConfig) (provider.ChunkingStrategy, error) {
		return simpleChunker.New(simpleChunker.Config{
			MaxChunkSize: cfg.MaxChunkSize,
			Overlap:      cfg.Overlap,
		}), nil
	})

	// Register vector stores
	provider.RegisterVectorStore("flatfile", func(cfg provider.VectorStoreConfig, embedder provider.EmbeddingProvider, cdc codec.Codec) (provider.VectorStore, error) {
		return flatfile.New(flatfile.Config{
			Path:     cfg.Path,
			Codec:    cdc,
			Strict:   cfg.Strict,
			Embedder: embedder,
		})
	})

	provider.RegisterVectorStore("sqlitevec", func(cfg provider.VectorStoreConfig, embedder provider.EmbeddingProvider, cdc codec.Codec) (provider.VectorStore, error) {
		return sqlitevec.New(sqlitevec.Config{
			Path:     cfg.Path,
			Embedder: embedder,
			Codec:    cdc,
		})
	})

	provider.RegisterVectorStore("qdrant", func(cfg provider.VectorStoreConfig, embedder provider.EmbeddingProvider, cdc codec.Codec) (provider.VectorStore, error) {
		return qdrant.New(qdrant.Config{
			Endpoint:   cfg.Endpoint,
			Collection: cfg.Collection,
			Embedder:   embedder,
			Codec:      cdc,
		})
	})
}
