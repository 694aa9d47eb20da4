package provider

import (
	"context"
)

// ChatProvider generates text completions for the question-answering flow.
type ChatProvider interface {
	// Name returns the provider name (e.g., "ollama", "openai").
	Name() string

	// Chat sends a system prompt and a user prompt and returns the
	// generated reply.
	Chat(ctx context.Context, system, prompt string) (string, error)

	// Model returns the model name answers are generated with.
	Model() string

	// Close releases any resources.
	Close() error
}

// ChatConfig contains configuration for chat providers.
type ChatConfig struct {
	Provider    string  // "ollama", "openai"
	Model       string  // Model name
	Endpoint    string  // API endpoint (for Ollama)
	APIKey      string  // API key (for OpenAI)
	Temperature float32 // Sampling temperature
	MaxTokens   int     // Response token cap, 0 for provider default
}
