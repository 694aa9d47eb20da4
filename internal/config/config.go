// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jhavlik/jobdesk/pkg/codec"
)

// Config represents the complete configuration.
type Config struct {
	Embedding   EmbeddingConfig   `mapstructure:"embedding" yaml:"embedding"`
	Chat        ChatConfig        `mapstructure:"chat" yaml:"chat"`
	Chunking    ChunkingConfig    `mapstructure:"chunking" yaml:"chunking"`
	VectorStore VectorStoreConfig `mapstructure:"vectorstore" yaml:"vectorstore"`
	Storage     StorageConfig     `mapstructure:"storage" yaml:"storage"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// EmbeddingConfig contains embedding provider configuration.
type EmbeddingConfig struct {
	Provider  string `mapstructure:"provider" yaml:"provider"`     // ollama, openai, plugin
	Model     string `mapstructure:"model" yaml:"model"`           // model name
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`     // API endpoint
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`       // API key
	BatchSize int    `mapstructure:"batch_size" yaml:"batch_size"` // documents per batch
	PluginDir string `mapstructure:"plugin_dir" yaml:"plugin_dir"` // plugin binaries (provider "plugin")
}

// ChatConfig contains chat provider configuration for the ask flow.
type ChatConfig struct {
	Provider    string  `mapstructure:"provider" yaml:"provider"`       // ollama, openai
	Model       string  `mapstructure:"model" yaml:"model"`             // model name
	Endpoint    string  `mapstructure:"endpoint" yaml:"endpoint"`       // API endpoint
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`         // API key
	Temperature float32 `mapstructure:"temperature" yaml:"temperature"` // sampling temperature
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`   // response cap, 0 = provider default
}

// ChunkingConfig contains chunking strategy configuration.
type ChunkingConfig struct {
	Strategy     string `mapstructure:"strategy" yaml:"strategy"`             // simple
	MaxChunkSize int    `mapstructure:"max_chunk_size" yaml:"max_chunk_size"` // max characters per chunk
	Overlap      int    `mapstructure:"overlap" yaml:"overlap"`               // characters carried between chunks
}

// VectorStoreConfig contains vector store configuration.
type VectorStoreConfig struct {
	Provider   string `mapstructure:"provider" yaml:"provider"`     // flatfile, sqlitevec, qdrant
	Collection string `mapstructure:"collection" yaml:"collection"` // collection name
	Endpoint   string `mapstructure:"endpoint" yaml:"endpoint"`     // qdrant host:port
}

// StorageConfig contains at-rest storage configuration shared by the vector
// store and the record stores.
type StorageConfig struct {
	User          string `mapstructure:"user" yaml:"user"`                     // default user id
	Encryption    string `mapstructure:"encryption" yaml:"encryption"`         // off, aes-gcm
	EncryptionKey string `mapstructure:"encryption_key" yaml:"encryption_key"` // passphrase for aes-gcm
	Strict        bool   `mapstructure:"strict" yaml:"strict"`                 // fail on undecodable state
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:  "ollama",
			Model:     "nomic-embed-text",
			Endpoint:  "http://localhost:11434",
			BatchSize: 32,
		},
		Chat: ChatConfig{
			Provider:    "ollama",
			Model:       "llama3.1",
			Endpoint:    "http://localhost:11434",
			Temperature: 0.3,
		},
		Chunking: ChunkingConfig{
			Strategy:     "simple",
			MaxChunkSize: 1200,
		},
		VectorStore: VectorStoreConfig{
			Provider:   "flatfile",
			Collection: "jobdesk",
			Endpoint:   "localhost:6334",
		},
		Storage: StorageConfig{
			User:       "default",
			Encryption: "off",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultBaseDir returns ~/.jobdesk, falling back to a relative .jobdesk
// when the home directory cannot be resolved.
func DefaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".jobdesk"
	}
	return filepath.Join(home, ".jobdesk")
}

// ConfigPath returns the path to config.yaml under the base directory.
func ConfigPath(baseDir string) string {
	return filepath.Join(baseDir, "config.yaml")
}

// PluginsDir returns the default plugin directory under the base directory.
func PluginsDir(baseDir string) string {
	return filepath.Join(baseDir, "plugins")
}

// Load loads configuration from file, falling back to defaults. Secrets
// missing from the file are taken from the environment, with .env files in
// the working and base directories loaded first.
func Load(baseDir string) (*Config, []string, error) {
	cfg := DefaultConfig()
	warnings := []string{}

	// Missing .env files are fine; set variables are never overwritten.
	godotenv.Load()
	godotenv.Load(filepath.Join(baseDir, ".env"))

	configPath := ConfigPath(baseDir)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		warnings = append(warnings, "No config file found, using defaults")
		applyEnv(cfg)
		return cfg, warnings, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnv(cfg)

	// Apply defaults for values the file left empty
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "ollama"
		warnings = append(warnings, "Using default embedding provider: ollama")
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "nomic-embed-text"
	}
	if cfg.Embedding.Endpoint == "" {
		cfg.Embedding.Endpoint = "http://localhost:11434"
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 32
	}

	if cfg.Chat.Provider == "" {
		cfg.Chat.Provider = "ollama"
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = "llama3.1"
	}
	if cfg.Chat.Endpoint == "" {
		cfg.Chat.Endpoint = "http://localhost:11434"
	}

	if cfg.Chunking.Strategy == "" {
		cfg.Chunking.Strategy = "simple"
	}
	if cfg.Chunking.MaxChunkSize == 0 {
		cfg.Chunking.MaxChunkSize = 1200
	}

	if cfg.VectorStore.Provider == "" {
		cfg.VectorStore.Provider = "flatfile"
		warnings = append(warnings, "Using default vector store: flatfile")
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "jobdesk"
	}
	if cfg.VectorStore.Endpoint == "" {
		cfg.VectorStore.Endpoint = "localhost:6334"
	}

	if cfg.Storage.User == "" {
		cfg.Storage.User = "default"
	}
	if cfg.Storage.Encryption == "" {
		cfg.Storage.Encryption = "off"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	return cfg, warnings, nil
}

// applyEnv fills secrets and endpoints that were not configured explicitly.
func applyEnv(cfg *Config) {
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Chat.APIKey == "" {
		cfg.Chat.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Storage.EncryptionKey == "" {
		cfg.Storage.EncryptionKey = os.Getenv("JOBDESK_ENCRYPTION_KEY")
	}
	if ep := os.Getenv("QDRANT_ENDPOINT"); ep != "" {
		if cfg.VectorStore.Endpoint == "" || cfg.VectorStore.Endpoint == "localhost:6334" {
			cfg.VectorStore.Endpoint = ep
		}
	}
}

// Save saves configuration to file.
func Save(baseDir string, cfg *Config) error {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(ConfigPath(baseDir))
	v.SetConfigType("yaml")

	v.Set("embedding", cfg.Embedding)
	v.Set("chat", cfg.Chat)
	v.Set("chunking", cfg.Chunking)
	v.Set("vectorstore", cfg.VectorStore)
	v.Set("storage", cfg.Storage)
	v.Set("logging", cfg.Logging)

	return v.WriteConfig()
}

// Validate validates the configuration.
func Validate(cfg *Config) []error {
	var errs []error

	validEmbeddingProviders := map[string]bool{
		"ollama": true, "openai": true, "plugin": true,
	}
	if !validEmbeddingProviders[cfg.Embedding.Provider] {
		errs = append(errs, fmt.Errorf("invalid embedding provider: %s", cfg.Embedding.Provider))
	}

	validChatProviders := map[string]bool{
		"ollama": true, "openai": true,
	}
	if !validChatProviders[cfg.Chat.Provider] {
		errs = append(errs, fmt.Errorf("invalid chat provider: %s", cfg.Chat.Provider))
	}

	validChunkingStrategies := map[string]bool{
		"simple": true,
	}
	if !validChunkingStrategies[cfg.Chunking.Strategy] {
		errs = append(errs, fmt.Errorf("invalid chunking strategy: %s", cfg.Chunking.Strategy))
	}

	validVectorStores := map[string]bool{
		"flatfile": true, "sqlitevec": true, "qdrant": true,
	}
	if !validVectorStores[cfg.VectorStore.Provider] {
		errs = append(errs, fmt.Errorf("invalid vector store: %s", cfg.VectorStore.Provider))
	}

	switch cfg.Storage.Encryption {
	case "", "off":
	case "aes-gcm":
		if cfg.Storage.EncryptionKey == "" {
			errs = append(errs, fmt.Errorf("encryption is aes-gcm but no encryption_key is set (or JOBDESK_ENCRYPTION_KEY)"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid encryption mode: %s (valid: off, aes-gcm)", cfg.Storage.Encryption))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if cfg.Logging.Level != "" && !validLogLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Errorf("invalid log level: %s", cfg.Logging.Level))
	}
	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if cfg.Logging.Format != "" && !validLogFormats[cfg.Logging.Format] {
		errs = append(errs, fmt.Errorf("invalid log format: %s", cfg.Logging.Format))
	}

	return errs
}

// Codec returns the payload codec for the configured encryption mode.
func (s StorageConfig) Codec() (codec.Codec, error) {
	name := s.Encryption
	if name == "" || name == "off" {
		name = "plain"
	}
	return codec.New(name, s.EncryptionKey)
}
