// jobdesk is a personal job-search assistant with a local knowledge base.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	_ "github.com/jhavlik/jobdesk/builtin"
	"github.com/jhavlik/jobdesk/internal/assistant"
	"github.com/jhavlik/jobdesk/internal/config"
	"github.com/jhavlik/jobdesk/internal/ingest"
	"github.com/jhavlik/jobdesk/internal/records"
	"github.com/jhavlik/jobdesk/internal/ui"
	"github.com/jhavlik/jobdesk/internal/userdir"
	"github.com/jhavlik/jobdesk/internal/wizard"
	"github.com/jhavlik/jobdesk/pkg/plugin/host"
	"github.com/jhavlik/jobdesk/pkg/plugin/shared"
	"github.com/jhavlik/jobdesk/pkg/provider"
	"github.com/jhavlik/jobdesk/pkg/types"
)

var (
	version   = "0.1.0"
	cfgFile   string
	dataDir   string
	userID    string
	logLevel  string
	logFormat string

	// pluginManager is set when the embedding provider comes from a
	// plugin; its subprocesses are killed by closePlugins.
	pluginManager *host.Manager
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "jobdesk",
	Short: "Personal job search assistant with a local knowledge base",
	Long: `jobdesk is a personal job search assistant that keeps everything on
your machine: a searchable knowledge base of your notes and documents,
a job application tracker, an interview question bank, and quick notes.

It supports:
- Multiple embedding providers (Ollama, OpenAI, plugins)
- Flat-file, SQLite (sqlite-vec) and Qdrant vector stores
- Retrieval-augmented answers from a local or remote chat model
- Optional AES-GCM encryption of everything written to disk`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jobdesk %s\n", version)
		fmt.Printf("Go version: %s\n", runtime.Version())
		fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration",
	Run: func(cmd *cobra.Command, args []string) {
		runConfigInit()
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Run: func(cmd *cobra.Command, args []string) {
		runConfigValidate()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		runConfigShow()
	},
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Detect the environment and write a working configuration",
	Long: `Probe the local environment (Ollama, OpenAI key, existing profiles),
recommend a configuration, and write it after confirmation. Providers
named by the configuration are tested before saving.`,
	Run: func(cmd *cobra.Command, args []string) {
		yes, _ := cmd.Flags().GetBool("yes")
		runSetup(yes)
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Add a document to the knowledge base",
	Long: `Chunk a text file and store it in the knowledge base.

Examples:
  jobdesk ingest notes/acme-research.md
  jobdesk ingest cv.txt --category resume
  jobdesk ingest offer.txt --source "acme offer 2026"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		category, _ := cmd.Flags().GetString("category")
		source, _ := cmd.Flags().GetString("source")
		runIngest(args[0], category, source)
	},
}

var rememberCmd = &cobra.Command{
	Use:   "remember <text>",
	Short: "Store a snippet of text in the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		source, _ := cmd.Flags().GetString("source")
		runRemember(strings.Join(args, " "), source)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the knowledge base",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		scores, _ := cmd.Flags().GetBool("scores")
		runSearch(args[0], limit, scores)
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question answered from the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		runAsk(strings.Join(args, " "), limit)
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget <id>...",
	Short: "Remove documents from the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runForget(args)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	Run: func(cmd *cobra.Command, args []string) {
		runStats()
	},
}

// Application tracker commands

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Track job applications",
}

var appsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Track a new application",
	Long: `Track a new job application. Missing company and role are asked
interactively; everything else comes from flags.

Examples:
  jobdesk apps add
  jobdesk apps add --company Acme --role "Platform Engineer" --location Prague
  jobdesk apps add --company Acme --role SRE --applied 2026-08-01`,
	Run: func(cmd *cobra.Command, args []string) {
		company, _ := cmd.Flags().GetString("company")
		role, _ := cmd.Flags().GetString("role")
		location, _ := cmd.Flags().GetString("location")
		salary, _ := cmd.Flags().GetString("salary")
		url, _ := cmd.Flags().GetString("url")
		notes, _ := cmd.Flags().GetString("notes")
		status, _ := cmd.Flags().GetString("status")
		applied, _ := cmd.Flags().GetString("applied")
		runAppsAdd(company, role, location, salary, url, notes, status, applied)
	},
}

var appsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked applications",
	Run: func(cmd *cobra.Command, args []string) {
		status, _ := cmd.Flags().GetString("status")
		company, _ := cmd.Flags().GetString("company")
		search, _ := cmd.Flags().GetString("search")
		sortBy, _ := cmd.Flags().GetString("sort")
		asc, _ := cmd.Flags().GetBool("asc")
		runAppsList(status, company, search, sortBy, asc)
	},
}

var appsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an application's status or add a note",
	Long: `Update an application. With --status the status changes and the
timeline gets a new event; with only --note a dated note is appended.
Without flags the new status is asked interactively.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		status, _ := cmd.Flags().GetString("status")
		note, _ := cmd.Flags().GetString("note")
		runAppsUpdate(args[0], status, note)
	},
}

var appsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a tracked application",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		runAppsDelete(args[0], force)
	},
}

var appsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show application pipeline statistics",
	Run: func(cmd *cobra.Command, args []string) {
		runAppsStats()
	},
}

// Interview bank commands

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Manage the interview question bank",
}

var interviewAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a question to the bank",
	Long: `Add an interview question with your prepared answer. The question
is also stored in the knowledge base so 'jobdesk ask' can retrieve it;
pass --kb=false to keep it out.`,
	Run: func(cmd *cobra.Command, args []string) {
		kb, _ := cmd.Flags().GetBool("kb")
		runInterviewAdd(kb)
	},
}

var interviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions with filters",
	Run: func(cmd *cobra.Command, args []string) {
		qType, _ := cmd.Flags().GetString("type")
		category, _ := cmd.Flags().GetString("category")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		company, _ := cmd.Flags().GetString("company")
		tag, _ := cmd.Flags().GetString("tag")
		minImportance, _ := cmd.Flags().GetInt("min-importance")
		unpracticed, _ := cmd.Flags().GetBool("unpracticed")
		sortBy, _ := cmd.Flags().GetString("sort")
		runInterviewList(qType, category, difficulty, company, tag, minImportance, unpracticed, sortBy)
	},
}

var interviewPracticeCmd = &cobra.Command{
	Use:   "practice [id]",
	Short: "Practice a question",
	Long: `Practice an interview question. Without an id a random unpracticed
question is picked, falling back to any question once all have been
practiced.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := ""
		if len(args) > 0 {
			id = args[0]
		}
		runInterviewPractice(id)
	},
}

var interviewStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show question bank statistics",
	Run: func(cmd *cobra.Command, args []string) {
		runInterviewStats()
	},
}

// Quick notes commands

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Keep quick notes (referral codes, links, phone numbers)",
}

var notesAddCmd = &cobra.Command{
	Use:   "add [label] [content]",
	Short: "Save a quick note",
	Args:  cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		label, content := "", ""
		if len(args) > 0 {
			label = args[0]
		}
		if len(args) > 1 {
			content = args[1]
		}
		runNotesAdd(label, content)
	},
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes grouped by label",
	Run: func(cmd *cobra.Command, args []string) {
		runNotesList()
	},
}

var notesSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search notes by label or content",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runNotesSearch(args[0])
	},
}

var notesCopyCmd = &cobra.Command{
	Use:   "copy <id>",
	Short: "Copy a note's content to the clipboard",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runNotesCopy(args[0])
	},
}

var notesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export notes as CSV",
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		runNotesExport(output)
	},
}

var notesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		runNotesDelete(args[0], force)
	},
}

// Plugin commands

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Plugin management",
}

var pluginListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available plugins",
	Run: func(cmd *cobra.Command, args []string) {
		runPluginList()
	},
}

var pluginLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Load an embedding plugin and run a test embedding",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runPluginLoad(args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: <data-dir>/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default: ~/.jobdesk)")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "profile to use (default from config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	setupCmd.Flags().BoolP("yes", "y", false, "accept the recommended configuration without prompting")

	ingestCmd.Flags().String("category", "", "category stored with every chunk")
	ingestCmd.Flags().String("source", "", "source label (default: file basename)")

	rememberCmd.Flags().String("source", "note", "source label stored with the text")

	searchCmd.Flags().IntP("limit", "l", 5, "maximum results")
	searchCmd.Flags().Bool("scores", false, "show similarity scores")

	askCmd.Flags().IntP("limit", "l", assistant.DefaultTopK, "documents to retrieve for context")

	appsAddCmd.Flags().String("company", "", "company name")
	appsAddCmd.Flags().String("role", "", "role or position")
	appsAddCmd.Flags().String("location", "", "location")
	appsAddCmd.Flags().String("salary", "", "salary or range")
	appsAddCmd.Flags().String("url", "", "job posting URL")
	appsAddCmd.Flags().String("notes", "", "free-form notes")
	appsAddCmd.Flags().String("status", "", "initial status (default: applied)")
	appsAddCmd.Flags().String("applied", "", "application date as YYYY-MM-DD (default: today)")

	appsListCmd.Flags().StringP("status", "s", "", "filter by status")
	appsListCmd.Flags().String("company", "", "filter by company substring")
	appsListCmd.Flags().String("search", "", "full-text search over company, role, notes, location")
	appsListCmd.Flags().String("sort", "applied_date", "sort by (applied_date, company, updated_at)")
	appsListCmd.Flags().Bool("asc", false, "sort ascending instead of newest first")

	appsUpdateCmd.Flags().StringP("status", "s", "", "new status")
	appsUpdateCmd.Flags().StringP("note", "n", "", "note for the timeline or the notes field")

	appsDeleteCmd.Flags().BoolP("force", "f", false, "delete without confirmation")

	appsCmd.AddCommand(appsAddCmd)
	appsCmd.AddCommand(appsListCmd)
	appsCmd.AddCommand(appsUpdateCmd)
	appsCmd.AddCommand(appsDeleteCmd)
	appsCmd.AddCommand(appsStatsCmd)

	interviewAddCmd.Flags().Bool("kb", true, "also store the question in the knowledge base")

	interviewListCmd.Flags().StringP("type", "t", "", "filter by type (behavioral, technical, system-design, case-study)")
	interviewListCmd.Flags().String("category", "", "filter by category")
	interviewListCmd.Flags().String("difficulty", "", "filter by difficulty (easy, medium, hard)")
	interviewListCmd.Flags().String("company", "", "filter by company")
	interviewListCmd.Flags().String("tag", "", "filter by tag")
	interviewListCmd.Flags().Int("min-importance", 0, "minimum importance (1-10)")
	interviewListCmd.Flags().Bool("unpracticed", false, "only questions never practiced")
	interviewListCmd.Flags().String("sort", "created", "sort by (created, practiced, count, confidence, question)")

	interviewCmd.AddCommand(interviewAddCmd)
	interviewCmd.AddCommand(interviewListCmd)
	interviewCmd.AddCommand(interviewPracticeCmd)
	interviewCmd.AddCommand(interviewStatsCmd)

	notesExportCmd.Flags().StringP("output", "o", "", "write CSV to file (default: stdout)")
	notesDeleteCmd.Flags().BoolP("force", "f", false, "delete without confirmation")

	notesCmd.AddCommand(notesAddCmd)
	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesSearchCmd)
	notesCmd.AddCommand(notesCopyCmd)
	notesCmd.AddCommand(notesExportCmd)
	notesCmd.AddCommand(notesDeleteCmd)

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	pluginCmd.AddCommand(pluginListCmd)
	pluginCmd.AddCommand(pluginLoadCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(rememberCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(forgetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(appsCmd)
	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(pluginCmd)
}

func setupLogging() {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if logFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// baseDir resolves the data directory from --config, --data-dir, or the
// default under the home directory, in that order.
func baseDir() string {
	if cfgFile != "" {
		return filepath.Dir(cfgFile)
	}
	if dataDir != "" {
		return dataDir
	}
	return config.DefaultBaseDir()
}

func loadConfig() (*config.Config, string) {
	base := baseDir()

	cfg, warnings, err := config.Load(base)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		slog.Warn(w)
	}
	return cfg, base
}

// effectiveUser is the --user flag when given, the configured user
// otherwise.
func effectiveUser(cfg *config.Config) string {
	if userID != "" {
		return userID
	}
	return cfg.Storage.User
}

// recordsConfig resolves the per-user records directory and codec.
func recordsConfig(cfg *config.Config, base string) records.Config {
	cdc, err := cfg.Storage.Codec()
	if err != nil {
		slog.Error("failed to create storage codec", "error", err)
		os.Exit(1)
	}
	return records.Config{
		Dir:    userdir.DataDir(base, effectiveUser(cfg)),
		Codec:  cdc,
		Strict: cfg.Storage.Strict,
	}
}

// createProviders creates the vector store, embedding provider, and
// chunker based on config.
func createProviders(cfg *config.Config, base string) (provider.VectorStore, provider.EmbeddingProvider, provider.ChunkingStrategy, error) {
	embedding, err := createEmbedding(cfg, base)
	if err != nil {
		return nil, nil, nil, err
	}

	cdc, err := cfg.Storage.Codec()
	if err != nil {
		return nil, nil, nil, err
	}

	user := effectiveUser(cfg)
	vsCfg := provider.VectorStoreConfig{
		Provider:   cfg.VectorStore.Provider,
		Collection: cfg.VectorStore.Collection,
		Endpoint:   cfg.VectorStore.Endpoint,
		Strict:     cfg.Storage.Strict,
	}
	if cfg.VectorStore.Provider == "qdrant" {
		vsCfg.Collection = userdir.CollectionName(cfg.VectorStore.Collection, user)
	} else {
		vsCfg.Path = userdir.VectorStoreDir(base, user, cfg.VectorStore.Collection)
	}

	store, err := provider.DefaultRegistry.CreateVectorStore(cfg.VectorStore.Provider, vsCfg, embedding, cdc)
	if err != nil {
		return nil, nil, nil, err
	}

	chunker, err := provider.DefaultRegistry.CreateChunking(cfg.Chunking.Strategy, provider.ChunkingConfig{
		Strategy:     cfg.Chunking.Strategy,
		MaxChunkSize: cfg.Chunking.MaxChunkSize,
		Overlap:      cfg.Chunking.Overlap,
	})
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}

	return store, embedding, chunker, nil
}

// createEmbedding creates the configured embedding provider. For the
// "plugin" provider the model name doubles as the plugin binary name.
func createEmbedding(cfg *config.Config, base string) (provider.EmbeddingProvider, error) {
	if cfg.Embedding.Provider == "plugin" {
		dir := cfg.Embedding.PluginDir
		if dir == "" {
			dir = config.PluginsDir(base)
		}
		pluginManager = host.NewManager(dir)
		loaded, err := pluginManager.LoadPlugin(cfg.Embedding.Model, shared.PluginTypeEmbedding)
		if err != nil {
			return nil, fmt.Errorf("failed to load embedding plugin %s: %w", cfg.Embedding.Model, err)
		}
		return host.NewEmbeddingAdapter(loaded.Embedding), nil
	}

	return provider.DefaultRegistry.CreateEmbedding(cfg.Embedding.Provider, provider.EmbeddingConfig{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		Endpoint:  cfg.Embedding.Endpoint,
		APIKey:    cfg.Embedding.APIKey,
		BatchSize: cfg.Embedding.BatchSize,
	})
}

func createChat(cfg *config.Config) (provider.ChatProvider, error) {
	return provider.DefaultRegistry.CreateChat(cfg.Chat.Provider, provider.ChatConfig{
		Provider:    cfg.Chat.Provider,
		Model:       cfg.Chat.Model,
		Endpoint:    cfg.Chat.Endpoint,
		APIKey:      cfg.Chat.APIKey,
		Temperature: cfg.Chat.Temperature,
		MaxTokens:   cfg.Chat.MaxTokens,
	})
}

func closePlugins() {
	if pluginManager != nil {
		pluginManager.UnloadAll()
	}
}

// Prompt helpers. A failed prompt (usually ctrl-c) aborts the command.

func exitOnPromptErr(err error) {
	if err != nil {
		os.Exit(1)
	}
}

func promptInput(msg string, required bool) string {
	answer, err := ui.Input(msg, required)
	exitOnPromptErr(err)
	return answer
}

func promptSelect(msg string, options []string) string {
	choice, err := ui.Select(msg, options)
	exitOnPromptErr(err)
	return choice
}

func promptMultiline(msg string) string {
	answer, err := ui.Multiline(msg)
	exitOnPromptErr(err)
	return answer
}

// splitCSV splits a comma-separated flag value, dropping empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func maskSecret(s string) string {
	if s == "" {
		return "unset"
	}
	return "set"
}

// Config command implementations

func runConfigInit() {
	base := baseDir()
	cfg := config.DefaultConfig()

	if err := config.Save(base, cfg); err != nil {
		slog.Error("failed to save config", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Created config at %s\n", config.ConfigPath(base))
}

func runConfigValidate() {
	base := baseDir()

	cfg, warnings, err := config.Load(base)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	for _, w := range warnings {
		fmt.Printf("Warning: %s\n", w)
	}

	errs := config.Validate(cfg)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Printf("Error: %v\n", e)
		}
		os.Exit(1)
	}

	fmt.Println("Configuration is valid")
}

func runConfigShow() {
	cfg, base := loadConfig()

	fmt.Printf("Config file: %s\n", config.ConfigPath(base))
	fmt.Printf("User: %s\n", effectiveUser(cfg))

	fmt.Println("\n=== Embedding ===")
	fmt.Printf("Provider:   %s\n", cfg.Embedding.Provider)
	fmt.Printf("Model:      %s\n", cfg.Embedding.Model)
	if cfg.Embedding.Endpoint != "" {
		fmt.Printf("Endpoint:   %s\n", cfg.Embedding.Endpoint)
	}
	fmt.Printf("Batch size: %d\n", cfg.Embedding.BatchSize)
	fmt.Printf("API key:    %s\n", maskSecret(cfg.Embedding.APIKey))

	fmt.Println("\n=== Chat ===")
	fmt.Printf("Provider:    %s\n", cfg.Chat.Provider)
	fmt.Printf("Model:       %s\n", cfg.Chat.Model)
	if cfg.Chat.Endpoint != "" {
		fmt.Printf("Endpoint:    %s\n", cfg.Chat.Endpoint)
	}
	fmt.Printf("Temperature: %.1f\n", cfg.Chat.Temperature)
	fmt.Printf("API key:     %s\n", maskSecret(cfg.Chat.APIKey))

	fmt.Println("\n=== Chunking ===")
	fmt.Printf("Strategy:       %s\n", cfg.Chunking.Strategy)
	fmt.Printf("Max chunk size: %d\n", cfg.Chunking.MaxChunkSize)
	fmt.Printf("Overlap:        %d\n", cfg.Chunking.Overlap)

	fmt.Println("\n=== Vector store ===")
	fmt.Printf("Provider:   %s\n", cfg.VectorStore.Provider)
	fmt.Printf("Collection: %s\n", cfg.VectorStore.Collection)
	if cfg.VectorStore.Endpoint != "" {
		fmt.Printf("Endpoint:   %s\n", cfg.VectorStore.Endpoint)
	}

	fmt.Println("\n=== Storage ===")
	fmt.Printf("Encryption: %s\n", cfg.Storage.Encryption)
	fmt.Printf("Key:        %s\n", maskSecret(cfg.Storage.EncryptionKey))
	fmt.Printf("Strict:     %v\n", cfg.Storage.Strict)

	fmt.Println("\n=== Logging ===")
	fmt.Printf("Level:  %s\n", cfg.Logging.Level)
	fmt.Printf("Format: %s\n", cfg.Logging.Format)
}

func runSetup(yes bool) {
	base := baseDir()
	w := wizard.New(base)
	ctx := context.Background()

	info := w.Detect(ctx)
	fmt.Print(wizard.FormatSummary(info))
	fmt.Println()

	if info.Existing != nil && !yes {
		ok, err := ui.Confirm(fmt.Sprintf("A config already exists at %s. Replace it?", config.ConfigPath(base)))
		exitOnPromptErr(err)
		if !ok {
			return
		}
	}

	cfg := info.Recommended
	if !yes {
		ok, err := ui.Confirm("Use the recommended configuration?")
		exitOnPromptErr(err)
		if !ok {
			cfg = customConfig(info)
		}
	}

	fmt.Println()
	fmt.Print(wizard.FormatConfigSummary(cfg))
	fmt.Println()

	probe := w.Probe(ctx, cfg)
	names := make([]string, 0, len(probe.Tests))
	for name := range probe.Tests {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		test := probe.Tests[name]
		if test.Status == "ok" {
			ui.ShowSuccess(test.Message)
		} else {
			ui.ShowWarning(test.Message)
		}
	}
	for _, e := range probe.Errors {
		ui.ShowError(e)
	}

	if !probe.Valid && !yes {
		ok, err := ui.Confirm("Some checks failed. Save anyway?")
		exitOnPromptErr(err)
		if !ok {
			return
		}
	}

	if err := config.Save(base, cfg); err != nil {
		slog.Error("failed to save config", "error", err)
		os.Exit(1)
	}
	ui.ShowSuccess(fmt.Sprintf("Saved %s", config.ConfigPath(base)))
}

// customConfig walks through the provider choices one by one.
func customConfig(info *wizard.Info) *config.Config {
	cfg := config.DefaultConfig()

	switch promptSelect("Embedding provider:", []string{"ollama", "openai", "plugin"}) {
	case "ollama":
		cfg.Embedding.Provider = "ollama"
		cfg.Embedding.Endpoint = info.Ollama.Endpoint
		if models := info.Ollama.ModelNames("embedding"); len(models) > 0 {
			cfg.Embedding.Model = promptSelect("Embedding model:", models)
		}
	case "openai":
		cfg.Embedding.Provider = "openai"
		cfg.Embedding.Model = promptSelect("Embedding model:", []string{"text-embedding-3-small", "text-embedding-3-large"})
		cfg.Embedding.Endpoint = ""
	case "plugin":
		cfg.Embedding.Provider = "plugin"
		cfg.Embedding.Model = promptInput("Plugin name:", true)
		cfg.Embedding.Endpoint = ""
	}

	switch promptSelect("Chat provider:", []string{"ollama", "openai"}) {
	case "ollama":
		cfg.Chat.Provider = "ollama"
		cfg.Chat.Endpoint = info.Ollama.Endpoint
		if models := info.Ollama.ModelNames("chat"); len(models) > 0 {
			cfg.Chat.Model = promptSelect("Chat model:", models)
		}
	case "openai":
		cfg.Chat.Provider = "openai"
		cfg.Chat.Model = promptSelect("Chat model:", []string{"gpt-4o-mini", "gpt-4o"})
		cfg.Chat.Endpoint = ""
	}

	cfg.VectorStore.Provider = promptSelect("Vector store:", []string{"flatfile", "sqlitevec", "qdrant"})
	if cfg.VectorStore.Provider == "qdrant" {
		cfg.VectorStore.Endpoint = promptInput("Qdrant endpoint (host:port):", true)
	}

	encrypt, err := ui.Confirm("Encrypt stored data (aes-gcm)?")
	exitOnPromptErr(err)
	if encrypt {
		cfg.Storage.Encryption = "aes-gcm"
		if os.Getenv("JOBDESK_ENCRYPTION_KEY") == "" {
			ui.ShowWarning("Set JOBDESK_ENCRYPTION_KEY before using encrypted storage")
		}
	}

	return cfg
}

// Knowledge base command implementations

func runIngest(path, category, source string) {
	cfg, base := loadConfig()

	store, embedding, chunker, err := createProviders(cfg, base)
	if err != nil {
		slog.Error("failed to create providers", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	defer embedding.Close()
	defer chunker.Close()
	defer closePlugins()

	ing, err := ingest.New(chunker, store)
	if err != nil {
		slog.Error("failed to create ingestor", "error", err)
		os.Exit(1)
	}

	var metadata map[string]any
	if category != "" {
		metadata = map[string]any{"category": category}
	}

	ctx := context.Background()
	var res ingest.Result
	if source != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Error("failed to read file", "path", path, "error", err)
			os.Exit(1)
		}
		res, err = ing.Text(ctx, string(data), source, metadata)
		if err != nil {
			slog.Error("ingest failed", "error", err)
			os.Exit(1)
		}
	} else {
		res, err = ing.File(ctx, path, metadata)
		if err != nil {
			slog.Error("ingest failed", "error", err)
			os.Exit(1)
		}
	}

	if res.Chunks == 0 {
		ui.ShowWarning(fmt.Sprintf("No text found in %s", path))
		return
	}

	ui.ShowSuccess(fmt.Sprintf("Ingested %s: %d chunk(s)", res.Source, res.Chunks))
	slog.Debug("stored chunks", "ids", res.IDs)
}

func runRemember(text, source string) {
	cfg, base := loadConfig()

	store, embedding, chunker, err := createProviders(cfg, base)
	if err != nil {
		slog.Error("failed to create providers", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	defer embedding.Close()
	defer chunker.Close()
	defer closePlugins()

	ids, err := store.AddTexts(context.Background(), []string{text}, []map[string]any{{"source": source}})
	if err != nil {
		slog.Error("failed to store text", "error", err)
		os.Exit(1)
	}
	if len(ids) == 0 {
		ui.ShowWarning("Nothing to remember")
		return
	}

	ui.ShowSuccess(fmt.Sprintf("Remembered (id %s)", ids[0]))
}

func runSearch(query string, limit int, scores bool) {
	cfg, base := loadConfig()

	store, embedding, chunker, err := createProviders(cfg, base)
	if err != nil {
		slog.Error("failed to create providers", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	defer embedding.Close()
	defer chunker.Close()
	defer closePlugins()

	ctx := context.Background()

	if scores {
		results, err := store.SimilaritySearchWithScore(ctx, query, limit)
		if err != nil {
			slog.Error("search failed", "error", err)
			os.Exit(1)
		}
		if len(results) == 0 {
			fmt.Println("No results found")
			return
		}
		for i, r := range results {
			fmt.Printf("\n=== Result %d (score: %.3f) ===\n", i+1, r.Score)
			printDocument(r.Document)
		}
		return
	}

	docs, err := store.SimilaritySearch(ctx, query, limit)
	if err != nil {
		slog.Error("search failed", "error", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		fmt.Println("No results found")
		return
	}
	for i, d := range docs {
		fmt.Printf("\n=== Result %d ===\n", i+1)
		printDocument(d)
	}
}

func printDocument(d types.Document) {
	fmt.Printf("ID: %s\n", d.ID)
	if src, ok := d.Metadata["source"].(string); ok && src != "" {
		fmt.Printf("Source: %s\n", src)
	}
	if cat, ok := d.Metadata["category"].(string); ok && cat != "" {
		fmt.Printf("Category: %s\n", cat)
	}
	fmt.Printf("\n%s\n", d.Content)
}

func runAsk(question string, limit int) {
	cfg, base := loadConfig()

	store, embedding, chunker, err := createProviders(cfg, base)
	if err != nil {
		slog.Error("failed to create providers", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	defer embedding.Close()
	defer chunker.Close()
	defer closePlugins()

	chat, err := createChat(cfg)
	if err != nil {
		slog.Error("failed to create chat provider", "error", err)
		os.Exit(1)
	}
	defer chat.Close()

	asst, err := assistant.New(store, chat)
	if err != nil {
		slog.Error("failed to create assistant", "error", err)
		os.Exit(1)
	}

	answer, err := asst.Ask(context.Background(), question, limit)
	if err != nil {
		slog.Error("ask failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("\n%s\n", answer.Text)

	if len(answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, s := range answer.Sources {
			label := s.Document.ID
			if src, ok := s.Document.Metadata["source"].(string); ok && src != "" {
				label = src
			}
			fmt.Printf("  [%.3f] %s\n", s.Score, label)
		}
	}
	slog.Debug("answered", "model", answer.Model)
}

func runForget(ids []string) {
	cfg, base := loadConfig()

	store, embedding, chunker, err := createProviders(cfg, base)
	if err != nil {
		slog.Error("failed to create providers", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	defer embedding.Close()
	defer chunker.Close()
	defer closePlugins()

	if err := store.Delete(context.Background(), ids); err != nil {
		slog.Error("failed to delete documents", "error", err)
		os.Exit(1)
	}

	ui.ShowSuccess(fmt.Sprintf("Forgot %d document(s)", len(ids)))
}

func runStats() {
	cfg, base := loadConfig()

	store, embedding, chunker, err := createProviders(cfg, base)
	if err != nil {
		slog.Error("failed to create providers", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	defer embedding.Close()
	defer chunker.Close()
	defer closePlugins()

	stats, err := store.Stats(context.Background())
	if err != nil {
		slog.Error("failed to get stats", "error", err)
		os.Exit(1)
	}

	fmt.Println("=== Knowledge Base ===")
	fmt.Printf("Documents: %d\n", stats.DocumentCount)
	fmt.Printf("Vectors:   %d\n", stats.VectorCount)
	if stats.StorePath != "" {
		fmt.Printf("Path:      %s\n", stats.StorePath)
	}
	if stats.CollectionName != "" {
		fmt.Printf("Collection: %s\n", stats.CollectionName)
	}
	fmt.Printf("Status:    %s\n", stats.Status)
}

// Application tracker implementations

func openApplications() *records.Applications {
	cfg, base := loadConfig()
	tracker, err := records.OpenApplications(recordsConfig(cfg, base))
	if err != nil {
		slog.Error("failed to open application tracker", "error", err)
		os.Exit(1)
	}
	return tracker
}

func runAppsAdd(company, role, location, salary, url, notes, status, applied string) {
	tracker := openApplications()

	if company == "" {
		company = promptInput("Company:", true)
	}
	if role == "" {
		role = promptInput("Role:", true)
	}

	var appliedAt time.Time
	if applied != "" {
		t, err := time.Parse("2006-01-02", applied)
		if err != nil {
			ui.ShowError(fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", applied))
			os.Exit(1)
		}
		appliedAt = t
	}

	app, err := tracker.Add(types.JobApplication{
		Company:     company,
		Role:        role,
		Status:      types.ApplicationStatus(status),
		Location:    location,
		Salary:      salary,
		URL:         url,
		Notes:       notes,
		AppliedDate: appliedAt,
	})
	if err != nil {
		ui.ShowError(err.Error())
		os.Exit(1)
	}

	ui.ShowSuccess(fmt.Sprintf("Tracking %s - %s", app.Company, app.Role))
	fmt.Printf("  id: %s\n", app.ID)
	fmt.Printf("  status: %s  applied: %s\n", ui.StatusLabel(app.Status), app.AppliedDate.Format("2006-01-02"))
}

func runAppsList(status, company, search, sortBy string, asc bool) {
	tracker := openApplications()

	var apps []types.JobApplication
	if search != "" {
		apps = tracker.Search(search)
	} else {
		apps = tracker.List(records.ListOptions{
			Status:    types.ApplicationStatus(status),
			Company:   company,
			SortBy:    sortBy,
			Ascending: asc,
		})
	}

	if len(apps) == 0 {
		fmt.Println("No applications found")
		return
	}

	for _, app := range apps {
		fmt.Printf("\n%s  %s - %s\n", ui.StatusLabel(app.Status), app.Company, app.Role)
		fmt.Printf("  id: %s\n", app.ID)
		fmt.Printf("  applied: %s  updated: %s\n",
			app.AppliedDate.Format("2006-01-02"), app.UpdatedAt.Format("2006-01-02"))
		if app.Location != "" {
			fmt.Printf("  location: %s\n", app.Location)
		}
		if app.Salary != "" {
			fmt.Printf("  salary: %s\n", app.Salary)
		}
		if app.URL != "" {
			fmt.Printf("  url: %s\n", app.URL)
		}
	}
	fmt.Printf("\n%d application(s)\n", len(apps))
}

func runAppsUpdate(id, status, note string) {
	tracker := openApplications()

	if status == "" && note == "" {
		st, err := ui.SelectStatus("New status:")
		exitOnPromptErr(err)
		note = promptInput("Note (optional):", false)
		status = string(st)
	}

	if status != "" {
		app, err := tracker.UpdateStatus(id, types.ApplicationStatus(status), note)
		if err != nil {
			ui.ShowError(err.Error())
			os.Exit(1)
		}
		ui.ShowSuccess(fmt.Sprintf("%s - %s is now %s", app.Company, app.Role, ui.StatusLabel(app.Status)))
		return
	}

	app, err := tracker.AddNote(id, note)
	if err != nil {
		ui.ShowError(err.Error())
		os.Exit(1)
	}
	ui.ShowSuccess(fmt.Sprintf("Added note to %s - %s", app.Company, app.Role))
}

func runAppsDelete(id string, force bool) {
	tracker := openApplications()

	if !force {
		app, err := tracker.Get(id)
		if err != nil {
			ui.ShowError(err.Error())
			os.Exit(1)
		}
		ok, err := ui.Confirm(fmt.Sprintf("Delete %s - %s?", app.Company, app.Role))
		exitOnPromptErr(err)
		if !ok {
			return
		}
	}

	if err := tracker.Delete(id); err != nil {
		ui.ShowError(err.Error())
		os.Exit(1)
	}
	ui.ShowSuccess("Application deleted")
}

func runAppsStats() {
	tracker := openApplications()
	stats := tracker.Stats()

	fmt.Println("=== Applications ===")
	fmt.Printf("Total:  %d\n", stats.Total)
	fmt.Printf("Active: %d\n", stats.Active)

	if stats.Total == 0 {
		return
	}

	fmt.Println("\nBy status:")
	for _, name := range ui.StatusOptions() {
		status := types.ApplicationStatus(name)
		if count := stats.ByStatus[status]; count > 0 {
			fmt.Printf("  %-12s %d\n", ui.StatusLabel(status), count)
		}
	}

	fmt.Printf("\nResponse rate: %.1f%%\n", stats.ResponseRate)
	if stats.AvgDaysToResponse > 0 {
		fmt.Printf("Avg days to response: %.1f\n", stats.AvgDaysToResponse)
	}

	if len(stats.TopCompanies) > 0 {
		fmt.Println("\nTop companies:")
		for _, c := range stats.TopCompanies {
			fmt.Printf("  %-20s %d\n", c.Company, c.Count)
		}
	}
}

// Interview bank implementations

func openInterviews() *records.Interviews {
	cfg, base := loadConfig()
	bank, err := records.OpenInterviews(recordsConfig(cfg, base))
	if err != nil {
		slog.Error("failed to open question bank", "error", err)
		os.Exit(1)
	}
	return bank
}

func runInterviewAdd(kb bool) {
	cfg, base := loadConfig()
	bank, err := records.OpenInterviews(recordsConfig(cfg, base))
	if err != nil {
		slog.Error("failed to open question bank", "error", err)
		os.Exit(1)
	}

	question := promptInput("Question:", true)
	qType := promptSelect("Type:", []string{"behavioral", "technical", "system-design", "case-study"})
	category := promptInput("Category (leadership, algorithms, ...):", false)
	difficulty := promptSelect("Difficulty:", []string{"easy", "medium", "hard"})
	companies := promptInput("Companies (comma-separated):", false)
	tags := promptInput("Tags (comma-separated):", false)
	answer := promptMultiline("Your answer:")
	confidence := parseScale(promptInput("Confidence 1-5 [3]:", false), 3, 1, 5)
	importance := parseScale(promptInput("Importance 1-10 [5]:", false), 5, 1, 10)

	saved, err := bank.Add(types.InterviewQuestion{
		Question:   question,
		Answer:     answer,
		Type:       types.QuestionType(qType),
		Category:   category,
		Difficulty: difficulty,
		Companies:  splitCSV(companies),
		Tags:       splitCSV(tags),
		Confidence: confidence,
		Importance: importance,
	})
	if err != nil {
		ui.ShowError(err.Error())
		os.Exit(1)
	}

	ui.ShowSuccess(fmt.Sprintf("Added question %s", saved.ID))

	if !kb {
		return
	}

	store, embedding, chunker, err := createProviders(cfg, base)
	if err != nil {
		ui.ShowWarning(fmt.Sprintf("Question saved, but not added to the knowledge base: %v", err))
		return
	}
	defer store.Close()
	defer embedding.Close()
	defer chunker.Close()
	defer closePlugins()

	ing, err := ingest.New(chunker, store)
	if err != nil {
		ui.ShowWarning(fmt.Sprintf("Question saved, but not added to the knowledge base: %v", err))
		return
	}
	if _, err := ing.Question(context.Background(), saved); err != nil {
		ui.ShowWarning(fmt.Sprintf("Question saved, but not added to the knowledge base: %v", err))
		return
	}
	ui.ShowSuccess("Added to knowledge base")
}

// parseScale parses a bounded integer answer, falling back to def when
// empty or out of range.
func parseScale(s string, def, min, max int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < min || n > max {
		return def
	}
	return n
}

func runInterviewList(qType, category, difficulty, company, tag string, minImportance int, unpracticed bool, sortBy string) {
	bank := openInterviews()

	questions := bank.List(records.QuestionListOptions{
		Type:          types.QuestionType(qType),
		Category:      category,
		Difficulty:    difficulty,
		Company:       company,
		Tag:           tag,
		MinImportance: minImportance,
		Unpracticed:   unpracticed,
		SortBy:        sortBy,
	})

	if len(questions) == 0 {
		fmt.Println("No questions found")
		return
	}

	for _, q := range questions {
		fmt.Printf("\n[%s] %s\n", q.Type, q.Question)
		fmt.Printf("  id: %s\n", q.ID)

		var details []string
		if q.Category != "" {
			details = append(details, "category: "+q.Category)
		}
		if q.Difficulty != "" {
			details = append(details, "difficulty: "+q.Difficulty)
		}
		if len(q.Companies) > 0 {
			details = append(details, "companies: "+strings.Join(q.Companies, ", "))
		}
		if len(q.Tags) > 0 {
			details = append(details, "tags: "+strings.Join(q.Tags, ", "))
		}
		if len(details) > 0 {
			fmt.Printf("  %s\n", strings.Join(details, "  "))
		}

		practice := fmt.Sprintf("practiced: %d", q.PracticeCount)
		if q.LastPracticed != nil {
			practice += "  last: " + q.LastPracticed.Format("2006-01-02")
		}
		if q.Confidence > 0 {
			practice += fmt.Sprintf("  confidence: %d/5", q.Confidence)
		}
		fmt.Printf("  %s\n", practice)
	}
	fmt.Printf("\n%d question(s)\n", len(questions))
}

func runInterviewPractice(id string) {
	bank := openInterviews()

	var q types.InterviewQuestion
	if id != "" {
		var err error
		q, err = bank.Get(id)
		if err != nil {
			ui.ShowError(err.Error())
			os.Exit(1)
		}
	} else {
		pool := bank.List(records.QuestionListOptions{Unpracticed: true})
		if len(pool) == 0 {
			pool = bank.List(records.QuestionListOptions{})
		}
		if len(pool) == 0 {
			fmt.Println("No questions in the bank. Add one with 'jobdesk interview add'.")
			return
		}
		q = pool[rand.Intn(len(pool))]
	}

	ui.Header(fmt.Sprintf("[%s] %s", q.Type, q.Question))
	if q.Category != "" || q.Difficulty != "" {
		fmt.Printf("category: %s  difficulty: %s\n", q.Category, q.Difficulty)
	}

	reveal, err := ui.Confirm("Reveal the answer?")
	exitOnPromptErr(err)
	if reveal {
		if q.Answer == "" {
			fmt.Println("\nNo answer recorded yet.")
		} else {
			fmt.Printf("\n%s\n", q.Answer)
		}
		if q.Notes != "" {
			fmt.Printf("\nNotes: %s\n", q.Notes)
		}
	}

	updated, err := bank.MarkPracticed(q.ID)
	if err != nil {
		ui.ShowError(err.Error())
		os.Exit(1)
	}

	if conf := promptInput("Confidence 1-5 (empty to keep):", false); strings.TrimSpace(conf) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(conf))
		if err != nil || n < 1 || n > 5 {
			ui.ShowWarning("Confidence must be 1-5, keeping previous value")
		} else {
			if _, err := bank.Update(q.ID, func(q *types.InterviewQuestion) { q.Confidence = n }); err != nil {
				ui.ShowError(err.Error())
				os.Exit(1)
			}
		}
	}

	ui.ShowSuccess(fmt.Sprintf("Practiced %d time(s)", updated.PracticeCount))
}

func runInterviewStats() {
	bank := openInterviews()
	stats := bank.Stats()

	fmt.Println("=== Question Bank ===")
	fmt.Printf("Questions: %d\n", stats.TotalQuestions)

	if stats.TotalQuestions == 0 {
		return
	}

	fmt.Printf("Practiced: %d (%.0f%%)\n", stats.Practiced, stats.PracticePercentage)
	if stats.AvgConfidence > 0 {
		fmt.Printf("Avg confidence: %.1f/5\n", stats.AvgConfidence)
	}

	fmt.Println("\nBy type:")
	for _, t := range []types.QuestionType{
		types.QuestionBehavioral, types.QuestionTechnical,
		types.QuestionSystemDesign, types.QuestionCaseStudy,
	} {
		if count := stats.ByType[t]; count > 0 {
			fmt.Printf("  %-14s %d\n", t, count)
		}
	}
}

// Quick notes implementations

func openNotes() *records.Notes {
	cfg, base := loadConfig()
	store, err := records.OpenNotes(recordsConfig(cfg, base))
	if err != nil {
		slog.Error("failed to open notes", "error", err)
		os.Exit(1)
	}
	return store
}

func runNotesAdd(label, content string) {
	store := openNotes()

	if label == "" {
		label = promptInput("Label:", true)
	}
	if content == "" {
		content = promptMultiline("Content:")
	}

	note, err := store.Add(label, content)
	if err != nil {
		ui.ShowError(err.Error())
		os.Exit(1)
	}
	ui.ShowSuccess(fmt.Sprintf("Saved %q (id %s)", note.Label, note.ID))
}

func runNotesList() {
	store := openNotes()

	notes := store.List()
	if len(notes) == 0 {
		fmt.Println("No notes saved")
		return
	}

	printNotes(notes)
	fmt.Printf("\n%d note(s)\n", len(notes))
}

func runNotesSearch(query string) {
	store := openNotes()

	notes := store.Search(query)
	if len(notes) == 0 {
		fmt.Println("No matching notes")
		return
	}
	printNotes(notes)
}

// printNotes prints notes grouped under their label headers. The input
// is expected in List order, labels together.
func printNotes(notes []types.QuickNote) {
	currentLabel := ""
	for _, n := range notes {
		if !strings.EqualFold(n.Label, currentLabel) {
			ui.Header(n.Label)
			currentLabel = n.Label
		}
		fmt.Printf("  %s\n", n.Content)
		fmt.Printf("    id: %s  added: %s\n", n.ID, n.CreatedAt.Format("2006-01-02"))
	}
}

func runNotesCopy(id string) {
	store := openNotes()

	note, err := store.Get(id)
	if err != nil {
		ui.ShowError(err.Error())
		os.Exit(1)
	}

	if err := ui.CopyToClipboard(note.Content); err != nil {
		ui.ShowError(err.Error())
		os.Exit(1)
	}
	ui.ShowSuccess(fmt.Sprintf("Copied %q to clipboard", note.Label))
}

func runNotesExport(output string) {
	store := openNotes()

	if output == "" || output == "-" {
		if err := store.ExportCSV(os.Stdout); err != nil {
			slog.Error("export failed", "error", err)
			os.Exit(1)
		}
		return
	}

	f, err := os.Create(output)
	if err != nil {
		slog.Error("failed to create file", "path", output, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := store.ExportCSV(f); err != nil {
		slog.Error("export failed", "error", err)
		os.Exit(1)
	}
	ui.ShowSuccess(fmt.Sprintf("Exported notes to %s", output))
}

func runNotesDelete(id string, force bool) {
	store := openNotes()

	if !force {
		note, err := store.Get(id)
		if err != nil {
			ui.ShowError(err.Error())
			os.Exit(1)
		}
		ok, err := ui.Confirm(fmt.Sprintf("Delete note %q?", note.Label))
		exitOnPromptErr(err)
		if !ok {
			return
		}
	}

	if err := store.Delete(id); err != nil {
		ui.ShowError(err.Error())
		os.Exit(1)
	}
	ui.ShowSuccess("Note deleted")
}

// Plugin implementations

func runPluginList() {
	cfg, base := loadConfig()

	pluginsDir := cfg.Embedding.PluginDir
	if pluginsDir == "" {
		pluginsDir = config.PluginsDir(base)
	}

	manager := host.NewManager(pluginsDir)

	available, err := manager.DiscoverPlugins()
	if err != nil {
		slog.Error("failed to discover plugins", "error", err)
		os.Exit(1)
	}

	fmt.Println("=== Available Plugins ===")
	fmt.Printf("Plugins directory: %s\n\n", pluginsDir)

	if len(available) == 0 {
		fmt.Println("No plugins found.")
		fmt.Println("\nTo install a plugin:")
		fmt.Println("  1. Build or download a plugin binary")
		fmt.Println("  2. Copy it to the plugins directory")
		fmt.Println("  3. Make it executable (chmod +x)")
		return
	}

	for _, name := range available {
		fmt.Printf("  - %s\n", name)
	}

	fmt.Println("\nTo load a plugin, use:")
	fmt.Println("  jobdesk plugin load <name>")
}

func runPluginLoad(name string) {
	cfg, base := loadConfig()

	pluginsDir := cfg.Embedding.PluginDir
	if pluginsDir == "" {
		pluginsDir = config.PluginsDir(base)
	}

	manager := host.NewManager(pluginsDir)
	defer manager.UnloadAll()

	loaded, err := manager.LoadPlugin(name, shared.PluginTypeEmbedding)
	if err != nil {
		slog.Error("failed to load plugin", "name", name, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Plugin loaded: %s\n", name)
	if loaded.Embedding != nil {
		fmt.Printf("  Name: %s\n", loaded.Embedding.Name())
		fmt.Printf("  Dimensions: %d\n", loaded.Embedding.Dimensions())
		fmt.Printf("  Max Batch Size: %d\n", loaded.Embedding.MaxBatchSize())

		fmt.Println("\nTesting embedding...")
		embeddings, err := loaded.Embedding.Embed([]string{"Hello, world!"})
		if err != nil {
			fmt.Printf("  Error: %v\n", err)
		} else {
			fmt.Printf("  Generated %d embedding(s) of dimension %d\n", len(embeddings), len(embeddings[0]))
		}
	}

	fmt.Println("\nPlugin test complete.")
}
