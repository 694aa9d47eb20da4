// Package ollama implements ChatProvider using Ollama's generate API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhavlik/jobdesk/pkg/provider"
)

// Default values
const (
	DefaultModel       = "llama3.2"
	DefaultEndpoint    = "http://localhost:11434"
	DefaultTemperature = 0.3
)

// Config contains Ollama chat provider configuration.
type Config struct {
	Model       string
	Endpoint    string
	Temperature float32
	MaxTokens   int
}

// Provider implements the ChatProvider interface using Ollama.
type Provider struct {
	config Config
	client *http.Client
}

// New creates a new Ollama chat provider.
func New(cfg Config) *Provider {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}

	return &Provider{
		config: cfg,
		client: &http.Client{
			Timeout: 120 * time.Second, // Generation can be slow
		},
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "ollama"
}

// Model returns the configured model name.
func (p *Provider) Model() string {
	return p.config.Model
}

// Chat sends a system and user prompt and returns the generated reply.
func (p *Provider) Chat(ctx context.Context, system, prompt string) (string, error) {
	options := map[string]any{
		"temperature": p.config.Temperature,
	}
	if p.config.MaxTokens > 0 {
		options["num_predict"] = p.config.MaxTokens
	}

	reqBody := map[string]any{
		"model":   p.config.Model,
		"prompt":  prompt,
		"stream":  false,
		"options": options,
	}
	if system != "" {
		reqBody["system"] = system
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.config.Endpoint+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Response, nil
}

// Close releases resources.
func (p *Provider) Close() error {
	return nil
}

// Ensure Provider implements ChatProvider interface
var _ provider.ChatProvider = (*Provider)(nil)
