package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhavlik/jobdesk/pkg/types"
)

// Notes manages quick reference notes in a single JSON file. Notes are
// grouped by label, and a label may hold any number of entries.
type Notes struct {
	mu    sync.RWMutex
	file  *fileStore
	items []types.QuickNote
}

// OpenNotes loads the quick notes from cfg.Dir, creating the directory and
// starting empty when no file exists yet.
func OpenNotes(cfg Config) (*Notes, error) {
	f, err := openFileStore(cfg, notesFile)
	if err != nil {
		return nil, err
	}
	items, err := loadRecords[types.QuickNote](f)
	if err != nil {
		return nil, err
	}
	return &Notes{file: f, items: items}, nil
}

// Add records a new note under the given label.
func (n *Notes) Add(label, content string) (types.QuickNote, error) {
	label = strings.TrimSpace(label)
	content = strings.TrimSpace(content)
	if label == "" || content == "" {
		return types.QuickNote{}, fmt.Errorf("label and content are required")
	}

	now := time.Now()
	note := types.QuickNote{
		ID:        uuid.NewString(),
		Label:     label,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.items = append(n.items, note)
	if err := saveRecords(n.file, n.items); err != nil {
		return types.QuickNote{}, err
	}
	return note, nil
}

// Get returns the note with the given id.
func (n *Notes) Get(id string) (types.QuickNote, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for i := range n.items {
		if n.items[i].ID == id {
			return n.items[i], nil
		}
	}
	return types.QuickNote{}, fmt.Errorf("%w: note %s", types.ErrNotFound, id)
}

// List returns all notes grouped by label: labels alphabetically, entries
// within a label oldest first.
func (n *Notes) List() []types.QuickNote {
	n.mu.RLock()
	results := make([]types.QuickNote, len(n.items))
	copy(results, n.items)
	n.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		li, lj := strings.ToLower(results[i].Label), strings.ToLower(results[j].Label)
		if li != lj {
			return li < lj
		}
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})
	return results
}

// Labels returns the distinct note labels, alphabetically.
func (n *Notes) Labels() []string {
	n.mu.RLock()
	seen := make(map[string]bool, len(n.items))
	labels := make([]string, 0, len(n.items))
	for i := range n.items {
		label := n.items[i].Label
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}
	n.mu.RUnlock()

	sort.Slice(labels, func(i, j int) bool {
		return strings.ToLower(labels[i]) < strings.ToLower(labels[j])
	})
	return labels
}

// Update rewrites the note's label and content. Empty arguments keep the
// current value.
func (n *Notes) Update(id, label, content string) (types.QuickNote, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i := range n.items {
		if n.items[i].ID != id {
			continue
		}
		if label = strings.TrimSpace(label); label != "" {
			n.items[i].Label = label
		}
		if content = strings.TrimSpace(content); content != "" {
			n.items[i].Content = content
		}
		n.items[i].UpdatedAt = time.Now()
		if err := saveRecords(n.file, n.items); err != nil {
			return types.QuickNote{}, err
		}
		return n.items[i], nil
	}
	return types.QuickNote{}, fmt.Errorf("%w: note %s", types.ErrNotFound, id)
}

// Delete removes the note with the given id.
func (n *Notes) Delete(id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i := range n.items {
		if n.items[i].ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return saveRecords(n.file, n.items)
		}
	}
	return fmt.Errorf("%w: note %s", types.ErrNotFound, id)
}

// Search returns the notes whose label or content contain the query,
// compared case-insensitively, in List order.
func (n *Notes) Search(query string) []types.QuickNote {
	q := strings.ToLower(query)
	matches := make([]types.QuickNote, 0)
	for _, note := range n.List() {
		if strings.Contains(strings.ToLower(note.Label), q) ||
			strings.Contains(strings.ToLower(note.Content), q) {
			matches = append(matches, note)
		}
	}
	return matches
}

// ExportCSV writes all notes to w as CSV with a Label,Content header, in
// List order.
func (n *Notes) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Label", "Content"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, note := range n.List() {
		if err := cw.Write([]string{note.Label, note.Content}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
