// Package wizard detects the local environment and recommends a working
// jobdesk configuration.
package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/jhavlik/jobdesk/internal/config"
	"github.com/jhavlik/jobdesk/internal/userdir"
)

const defaultOllamaEndpoint = "http://localhost:11434"

// Info contains everything Detect found out about the environment.
type Info struct {
	Ollama   OllamaInfo `json:"ollama"`
	OpenAI   OpenAIInfo `json:"openai"`
	System   SystemInfo `json:"system"`
	Profiles []string   `json:"profiles,omitempty"` // user profiles with existing data

	Existing    *config.Config `json:"existing_config,omitempty"`
	Recommended *config.Config `json:"recommended_config"`
	Reasoning   []string       `json:"reasoning,omitempty"`
}

// OllamaInfo contains Ollama detection results.
type OllamaInfo struct {
	Available bool        `json:"available"`
	Endpoint  string      `json:"endpoint"`
	Models    []ModelInfo `json:"models,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// ModelInfo describes one locally pulled Ollama model.
type ModelInfo struct {
	Name        string `json:"name"`
	Size        string `json:"size"`
	Type        string `json:"type"` // "embedding" or "chat"
	Recommended bool   `json:"recommended"`
}

// ModelNames returns the names of models of the given type, recommended
// models first.
func (o OllamaInfo) ModelNames(modelType string) []string {
	var recommended, rest []string
	for _, m := range o.Models {
		if m.Type != modelType {
			continue
		}
		if m.Recommended {
			recommended = append(recommended, m.Name)
		} else {
			rest = append(rest, m.Name)
		}
	}
	return append(recommended, rest...)
}

// OpenAIInfo contains OpenAI availability.
type OpenAIInfo struct {
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// SystemInfo contains basic host information.
type SystemInfo struct {
	OS           string `json:"os"`
	Arch         string `json:"arch"`
	CPUCores     int    `json:"cpu_cores"`
	TotalRAM     string `json:"total_ram,omitempty"`
	AvailableRAM string `json:"available_ram,omitempty"`
}

// Wizard handles environment detection and configuration recommendations.
type Wizard struct {
	baseDir string
}

// New creates a wizard for the given data directory.
func New(baseDir string) *Wizard {
	return &Wizard{baseDir: baseDir}
}

// Detect probes the environment and builds a recommended configuration.
func (w *Wizard) Detect(ctx context.Context) *Info {
	info := &Info{}

	// An existing config may point Ollama somewhere else.
	endpoint := defaultOllamaEndpoint
	if cfg, _, err := config.Load(w.baseDir); err == nil {
		if _, statErr := os.Stat(config.ConfigPath(w.baseDir)); statErr == nil {
			info.Existing = cfg
		}
		if cfg.Embedding.Provider == "ollama" && cfg.Embedding.Endpoint != "" {
			endpoint = cfg.Embedding.Endpoint
		}
	}

	info.Ollama = detectOllama(ctx, endpoint)
	info.OpenAI = detectOpenAI()
	info.System = detectSystem()
	info.Profiles = detectProfiles(w.baseDir)

	info.Recommended, info.Reasoning = recommend(info)

	return info
}

// detectOllama checks whether Ollama is running and lists its models.
func detectOllama(ctx context.Context, endpoint string) OllamaInfo {
	info := OllamaInfo{Endpoint: endpoint}

	client := &http.Client{Timeout: 5 * time.Second}
	req, _ := http.NewRequestWithContext(ctx, "GET", endpoint+"/api/version", nil)
	resp, err := client.Do(req)
	if err != nil {
		info.Error = "Ollama not running at " + endpoint
		return info
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		info.Error = fmt.Sprintf("Ollama returned status %d", resp.StatusCode)
		return info
	}

	info.Available = true

	req, _ = http.NewRequestWithContext(ctx, "GET", endpoint+"/api/tags", nil)
	resp, err = client.Do(req)
	if err == nil && resp.StatusCode == http.StatusOK {
		defer resp.Body.Close()

		var tagsResp struct {
			Models []struct {
				Name string `json:"name"`
				Size int64  `json:"size"`
			} `json:"models"`
		}

		if json.NewDecoder(resp.Body).Decode(&tagsResp) == nil {
			for _, m := range tagsResp.Models {
				info.Models = append(info.Models, ModelInfo{
					Name:        m.Name,
					Size:        formatBytes(m.Size),
					Type:        modelType(m.Name),
					Recommended: isRecommendedModel(m.Name),
				})
			}
			sort.Slice(info.Models, func(i, j int) bool {
				return info.Models[i].Name < info.Models[j].Name
			})
		}
	}

	return info
}

// detectOpenAI checks for an API key in the environment.
func detectOpenAI() OpenAIInfo {
	if os.Getenv("OPENAI_API_KEY") != "" {
		return OpenAIInfo{Available: true}
	}
	return OpenAIInfo{Error: "OPENAI_API_KEY not set"}
}

// detectSystem gets basic host information. RAM matters when choosing
// between local and hosted chat models.
func detectSystem() SystemInfo {
	info := SystemInfo{
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		CPUCores: runtime.NumCPU(),
	}

	switch runtime.GOOS {
	case "darwin":
		out, err := exec.Command("sysctl", "-n", "hw.memsize").Output()
		if err == nil {
			var memBytes int64
			if _, err := fmt.Sscanf(string(out), "%d", &memBytes); err == nil {
				info.TotalRAM = formatBytes(memBytes)
			}
		}
	case "linux":
		out, err := os.ReadFile("/proc/meminfo")
		if err == nil {
			for _, line := range strings.Split(string(out), "\n") {
				var kb int64
				if strings.HasPrefix(line, "MemTotal:") {
					if _, err := fmt.Sscanf(line, "MemTotal: %d kB", &kb); err == nil {
						info.TotalRAM = formatBytes(kb * 1024)
					}
				}
				if strings.HasPrefix(line, "MemAvailable:") {
					if _, err := fmt.Sscanf(line, "MemAvailable: %d kB", &kb); err == nil {
						info.AvailableRAM = formatBytes(kb * 1024)
					}
				}
			}
		}
	}

	return info
}

// detectProfiles lists user profiles that already have data on disk.
func detectProfiles(baseDir string) []string {
	entries, err := os.ReadDir(userdir.UsersRoot(baseDir))
	if err != nil {
		return nil
	}

	var profiles []string
	for _, e := range entries {
		if e.IsDir() {
			profiles = append(profiles, e.Name())
		}
	}
	return profiles
}

// recommend builds a configuration from what was detected, with notes on
// anything that still needs doing.
func recommend(info *Info) (*config.Config, []string) {
	cfg := config.DefaultConfig()
	var reasoning []string

	switch {
	case info.Ollama.Available:
		cfg.Embedding.Endpoint = info.Ollama.Endpoint
		cfg.Chat.Endpoint = info.Ollama.Endpoint

		if names := info.Ollama.ModelNames("embedding"); len(names) > 0 {
			cfg.Embedding.Model = names[0]
		} else {
			reasoning = append(reasoning, "Run: ollama pull "+cfg.Embedding.Model)
		}

		if names := info.Ollama.ModelNames("chat"); len(names) > 0 {
			cfg.Chat.Model = names[0]
		} else if info.OpenAI.Available {
			cfg.Chat.Provider = "openai"
			cfg.Chat.Model = "gpt-4o-mini"
			reasoning = append(reasoning, "No local chat model found, using OpenAI for answers")
		} else {
			reasoning = append(reasoning, "Run: ollama pull "+cfg.Chat.Model)
		}

	case info.OpenAI.Available:
		cfg.Embedding.Provider = "openai"
		cfg.Embedding.Model = "text-embedding-3-small"
		cfg.Embedding.Endpoint = ""
		cfg.Chat.Provider = "openai"
		cfg.Chat.Model = "gpt-4o-mini"
		cfg.Chat.Endpoint = ""
		reasoning = append(reasoning, "Ollama not running, using OpenAI")

	default:
		reasoning = append(reasoning,
			"WARNING: No embedding provider available. Install Ollama or set OPENAI_API_KEY")
	}

	if ep := os.Getenv("QDRANT_ENDPOINT"); ep != "" {
		cfg.VectorStore.Provider = "qdrant"
		cfg.VectorStore.Endpoint = ep
		reasoning = append(reasoning, "QDRANT_ENDPOINT set, using the Qdrant vector store")
	}

	if os.Getenv("JOBDESK_ENCRYPTION_KEY") != "" {
		cfg.Storage.Encryption = "aes-gcm"
		reasoning = append(reasoning, "JOBDESK_ENCRYPTION_KEY set, enabling aes-gcm encryption")
	}

	return cfg, reasoning
}

func modelType(name string) string {
	if strings.Contains(strings.ToLower(name), "embed") {
		return "embedding"
	}
	return "chat"
}

func isRecommendedModel(name string) bool {
	name = strings.ToLower(name)
	for _, r := range []string{"nomic-embed-text", "llama3"} {
		if strings.Contains(name, r) {
			return true
		}
	}
	return false
}

func formatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.0f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.0f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// ProbeResult contains the results of testing a configuration against
// the live environment.
type ProbeResult struct {
	Valid    bool                  `json:"valid"`
	Errors   []string              `json:"errors,omitempty"`
	Warnings []string              `json:"warnings,omitempty"`
	Tests    map[string]TestResult `json:"tests"`
}

// TestResult contains a single test result.
type TestResult struct {
	Status  string `json:"status"` // "ok" or "error"
	Message string `json:"message"`
}

// Probe validates a configuration and tests the providers it names.
func (w *Wizard) Probe(ctx context.Context, cfg *config.Config) *ProbeResult {
	result := &ProbeResult{
		Valid: true,
		Tests: make(map[string]TestResult),
	}

	for _, err := range config.Validate(cfg) {
		result.Errors = append(result.Errors, err.Error())
		result.Valid = false
	}

	if cfg.Embedding.Provider == "ollama" || cfg.Chat.Provider == "ollama" {
		endpoint := cfg.Embedding.Endpoint
		if cfg.Embedding.Provider != "ollama" {
			endpoint = cfg.Chat.Endpoint
		}

		if probeOllama(ctx, endpoint) {
			result.Tests["ollama_connection"] = TestResult{
				Status:  "ok",
				Message: "Connected to Ollama",
			}
		} else {
			result.Tests["ollama_connection"] = TestResult{
				Status:  "error",
				Message: "Cannot connect to Ollama at " + endpoint,
			}
			result.Valid = false
		}
	}

	if cfg.Embedding.Provider == "ollama" && result.Tests["ollama_connection"].Status == "ok" {
		result.Tests["embedding_model"] = probeOllamaModel(ctx, cfg.Embedding.Endpoint, cfg.Embedding.Model)
		if result.Tests["embedding_model"].Status != "ok" {
			result.Warnings = append(result.Warnings, "Embedding model not available")
		}
	}

	if cfg.Chat.Provider == "ollama" && result.Tests["ollama_connection"].Status == "ok" {
		result.Tests["chat_model"] = probeOllamaModel(ctx, cfg.Chat.Endpoint, cfg.Chat.Model)
		if result.Tests["chat_model"].Status != "ok" {
			result.Warnings = append(result.Warnings, "Chat model not available")
		}
	}

	if cfg.Embedding.Provider == "openai" || cfg.Chat.Provider == "openai" {
		key := cfg.Embedding.APIKey
		if key == "" {
			key = cfg.Chat.APIKey
		}
		if key != "" {
			result.Tests["openai_key"] = TestResult{Status: "ok", Message: "API key configured"}
		} else {
			result.Tests["openai_key"] = TestResult{
				Status:  "error",
				Message: "No API key. Set OPENAI_API_KEY or api_key in the config",
			}
			result.Valid = false
		}
	}

	return result
}

func probeOllama(ctx context.Context, endpoint string) bool {
	client := &http.Client{Timeout: 5 * time.Second}
	req, _ := http.NewRequestWithContext(ctx, "GET", endpoint+"/api/version", nil)
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// probeOllamaModel checks that a model is pulled via /api/show.
func probeOllamaModel(ctx context.Context, endpoint, model string) TestResult {
	body, _ := json.Marshal(map[string]any{"name": model})

	client := &http.Client{Timeout: 5 * time.Second}
	req, _ := http.NewRequestWithContext(ctx, "POST", endpoint+"/api/show", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		if resp != nil {
			resp.Body.Close()
		}
		return TestResult{
			Status:  "error",
			Message: fmt.Sprintf("Model %s not found. Run: ollama pull %s", model, model),
		}
	}
	resp.Body.Close()

	return TestResult{Status: "ok", Message: "Model " + model + " available"}
}

// FormatSummary returns a printable summary of the detected environment.
func FormatSummary(info *Info) string {
	var sb strings.Builder

	sb.WriteString("=== Environment ===\n")

	if info.Ollama.Available {
		sb.WriteString(fmt.Sprintf("Ollama: running at %s\n", info.Ollama.Endpoint))
		for _, m := range info.Ollama.Models {
			marker := "  "
			if m.Recommended {
				marker = "* "
			}
			sb.WriteString(fmt.Sprintf("  %s%s (%s, %s)\n", marker, m.Name, m.Type, m.Size))
		}
	} else {
		sb.WriteString("Ollama: not running\n")
		if info.Ollama.Error != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", info.Ollama.Error))
		}
	}

	if info.OpenAI.Available {
		sb.WriteString("OpenAI: API key configured\n")
	} else {
		sb.WriteString("OpenAI: not configured\n")
	}

	sb.WriteString(fmt.Sprintf("System: %s/%s, %d cores", info.System.OS, info.System.Arch, info.System.CPUCores))
	if info.System.TotalRAM != "" {
		sb.WriteString(fmt.Sprintf(", %s RAM", info.System.TotalRAM))
	}
	sb.WriteString("\n")

	if len(info.Profiles) > 0 {
		sb.WriteString(fmt.Sprintf("Profiles with data: %s\n", strings.Join(info.Profiles, ", ")))
	}

	if len(info.Reasoning) > 0 {
		sb.WriteString("\n=== Notes ===\n")
		for _, r := range info.Reasoning {
			sb.WriteString(fmt.Sprintf("- %s\n", r))
		}
	}

	return sb.String()
}

// FormatConfigSummary returns a printable summary of a configuration.
func FormatConfigSummary(cfg *config.Config) string {
	var sb strings.Builder

	sb.WriteString("=== Configuration ===\n")
	sb.WriteString(fmt.Sprintf("Embedding:    %s/%s\n", cfg.Embedding.Provider, cfg.Embedding.Model))
	sb.WriteString(fmt.Sprintf("Chat:         %s/%s\n", cfg.Chat.Provider, cfg.Chat.Model))
	sb.WriteString(fmt.Sprintf("Vector store: %s", cfg.VectorStore.Provider))
	if cfg.VectorStore.Provider == "qdrant" {
		sb.WriteString(fmt.Sprintf(" (%s)", cfg.VectorStore.Endpoint))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Encryption:   %s\n", cfg.Storage.Encryption))

	return sb.String()
}
