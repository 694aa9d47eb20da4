// Package openai implements ChatProvider using OpenAI's API.
package openai

import (
	"context"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"

	"github.com/jhavlik/jobdesk/pkg/provider"
)

// Default values
const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.3
)

// Config contains OpenAI chat provider configuration.
type Config struct {
	Model       string
	APIKey      string // If empty, uses OPENAI_API_KEY env var
	BaseURL     string // Optional: custom API endpoint
	Temperature float32
	MaxTokens   int
}

// Provider implements the ChatProvider interface for OpenAI.
type Provider struct {
	config Config
	client *openai.Client
}

// New creates a new OpenAI chat provider.
func New(cfg Config) *Provider {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Provider{
		config: cfg,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "openai"
}

// Model returns the configured model name.
func (p *Provider) Model() string {
	return p.config.Model
}

// Chat sends a system and user prompt and returns the generated reply.
func (p *Provider) Chat(ctx context.Context, system, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Messages:    messages,
		Temperature: p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Close releases resources.
func (p *Provider) Close() error {
	return nil
}

// Ensure Provider implements ChatProvider interface
var _ provider.ChatProvider = (*Provider)(nil)
