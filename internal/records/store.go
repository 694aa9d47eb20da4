// Package records implements the JSON record stores behind the application
// tracker, the interview question bank, and quick notes. Each store keeps its
// records in memory and persists the full set as one JSON array, passed
// through a codec so plain and encrypted files share the same read and write
// path.
package records

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jhavlik/jobdesk/pkg/codec"
	"github.com/jhavlik/jobdesk/pkg/types"
)

const (
	applicationsFile = "applications.json"
	questionsFile    = "questions.json"
	notesFile        = "notes.json"
)

// Config contains construction options shared by the record stores.
type Config struct {
	Dir    string      // Data directory, created on first use
	Codec  codec.Codec // nil means plain
	Strict bool        // Propagate undecodable state instead of starting empty
}

// fileStore holds the persistence plumbing shared by the record stores: one
// file, one codec, one recovery policy.
type fileStore struct {
	path   string
	cdc    codec.Codec
	strict bool
}

func openFileStore(cfg Config, name string) (*fileStore, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("%w: records directory is empty", types.ErrInvalidConfig)
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create records directory: %w", err)
	}
	cdc := cfg.Codec
	if cdc == nil {
		cdc = codec.NewPlain()
	}
	return &fileStore{
		path:   filepath.Join(cfg.Dir, name),
		cdc:    cdc,
		strict: cfg.Strict,
	}, nil
}

// loadRecords reads the store file and applies the recovery policy: a missing
// file is a fresh store, while unreadable or undecodable state is logged and
// replaced by an empty store unless strict mode is set.
func loadRecords[T any](f *fileStore) ([]T, error) {
	items, err := readRecords[T](f)
	if err != nil {
		if f.strict {
			return nil, err
		}
		slog.Warn("failed to load record store, starting empty",
			"path", f.path, "codec", f.cdc.Name(), "error", err)
		return nil, nil
	}
	return items, nil
}

func readRecords[T any](f *fileStore) ([]T, error) {
	name := filepath.Base(f.path)
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	plain, err := f.cdc.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	var items []T
	if err := json.Unmarshal(plain, &items); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return items, nil
}

// saveRecords re-persists the full record set through the codec, written via
// a temp file and rename. A nil slice is persisted as an empty array so the
// file never reads back as JSON null.
func saveRecords[T any](f *fileStore, items []T) error {
	name := filepath.Base(f.path)
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	encoded, err := f.cdc.Encode(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := writeAtomic(f.path, encoded); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
