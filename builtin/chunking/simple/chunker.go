// Package simple implements a paragraph-based chunking strategy for
// plain text. Paragraphs are packed into chunks up to a size limit,
// with optional character overlap between adjacent chunks.
package simple

import (
	"strings"

	"github.com/jhavlik/jobdesk/pkg/provider"
	"github.com/jhavlik/jobdesk/pkg/types"
)

// Default values
const (
	DefaultMaxChunkSize = 1200 // maximum chars per chunk
	DefaultMinChunkSize = 80   // fragments below this are folded into the previous chunk
	DefaultOverlap      = 0    // chars carried over between adjacent chunks
)

// Config contains configuration for simple chunking.
type Config struct {
	MaxChunkSize int // Maximum chunk size in chars
	MinChunkSize int // Minimum chunk size in chars
	Overlap      int // Chars of trailing context repeated at the start of the next chunk
}

// Chunker implements a paragraph-based chunking strategy.
type Chunker struct {
	config Config
}

// New creates a new simple chunker.
func New(cfg Config) *Chunker {
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = DefaultMaxChunkSize
	}
	if cfg.MinChunkSize <= 0 {
		cfg.MinChunkSize = DefaultMinChunkSize
	}
	if cfg.MinChunkSize > cfg.MaxChunkSize {
		cfg.MinChunkSize = cfg.MaxChunkSize
	}
	// Overlap beyond half the chunk size would mostly repeat content.
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap > cfg.MaxChunkSize/2 {
		cfg.Overlap = cfg.MaxChunkSize / 2
	}
	return &Chunker{config: cfg}
}

// Name returns the strategy name.
func (c *Chunker) Name() string {
	return "simple"
}

// Chunk splits text into chunks on paragraph boundaries. Paragraphs are
// packed together until the size limit is reached; a single paragraph
// larger than the limit is hard-split on word boundaries. Fragments
// smaller than MinChunkSize are folded into the preceding chunk so no
// text is lost.
func (c *Chunker) Chunk(text, source string) ([]types.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	paragraphs := splitParagraphs(text)

	// Pack paragraphs into pieces up to MaxChunkSize. The separator
	// between merged paragraphs counts toward the budget.
	var pieces []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		pieces = append(pieces, strings.Join(current, "\n\n"))
		current = nil
		currentLen = 0
	}

	for _, para := range paragraphs {
		if len(para) > c.config.MaxChunkSize {
			flush()
			pieces = append(pieces, splitOversized(para, c.config.MaxChunkSize)...)
			continue
		}
		sep := 0
		if currentLen > 0 {
			sep = 2
		}
		if currentLen > 0 && currentLen+sep+len(para) > c.config.MaxChunkSize {
			flush()
			sep = 0
		}
		current = append(current, para)
		currentLen += sep + len(para)
	}
	flush()

	// Fold undersized pieces into their predecessor. A lone small text
	// still becomes a chunk of its own.
	var merged []string
	for _, p := range pieces {
		if len(merged) > 0 && len(p) < c.config.MinChunkSize {
			merged[len(merged)-1] += "\n\n" + p
			continue
		}
		merged = append(merged, p)
	}

	if c.config.Overlap > 0 {
		for i := len(merged) - 1; i >= 1; i-- {
			tail := overlapTail(merged[i-1], c.config.Overlap)
			if tail != "" {
				merged[i] = tail + "\n\n" + merged[i]
			}
		}
	}

	chunks := make([]types.Chunk, 0, len(merged))
	for i, content := range merged {
		chunks = append(chunks, types.Chunk{
			Content: content,
			Index:   i,
			Source:  source,
		})
	}
	return chunks, nil
}

// Close releases resources.
func (c *Chunker) Close() error {
	return nil
}

// splitParagraphs splits text into paragraphs on blank lines. Single
// newlines within a paragraph are preserved.
func splitParagraphs(text string) []string {
	norm := strings.ReplaceAll(text, "\r\n", "\n")

	var paras []string
	var cur []string

	emit := func() {
		if len(cur) == 0 {
			return
		}
		paras = append(paras, strings.TrimSpace(strings.Join(cur, "\n")))
		cur = nil
	}

	for _, line := range strings.Split(norm, "\n") {
		if strings.TrimSpace(line) == "" {
			emit()
			continue
		}
		cur = append(cur, line)
	}
	emit()
	return paras
}

// splitOversized hard-splits a paragraph that exceeds the size limit on
// word boundaries. Words longer than the limit are cut mid-word.
func splitOversized(para string, max int) []string {
	var out []string
	var cur strings.Builder

	for _, word := range strings.Fields(para) {
		for len(word) > max {
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
			out = append(out, word[:max])
			word = word[max:]
		}
		if word == "" {
			continue
		}
		sep := 0
		if cur.Len() > 0 {
			sep = 1
		}
		if cur.Len()+sep+len(word) > max {
			out = append(out, cur.String())
			cur.Reset()
			sep = 0
		}
		if sep > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// overlapTail returns the last n chars of s snapped forward to a word
// boundary, so the overlap never starts mid-word.
func overlapTail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return strings.TrimSpace(s)
	}
	cut := s[len(s)-n:]
	if i := strings.IndexAny(cut, " \t\n"); i >= 0 {
		cut = cut[i+1:]
	}
	return strings.TrimSpace(cut)
}

// Ensure Chunker implements ChunkingStrategy interface
var _ provider.ChunkingStrategy = (*Chunker)(nil)
