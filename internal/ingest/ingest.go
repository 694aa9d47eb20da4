// Package ingest turns source documents into embedded, searchable chunks.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jhavlik/jobdesk/pkg/provider"
	"github.com/jhavlik/jobdesk/pkg/types"
)

// Ingestor splits documents with a chunking strategy and stores the
// resulting chunks in a vector store.
type Ingestor struct {
	chunker provider.ChunkingStrategy
	store   provider.VectorStore
}

// New creates an Ingestor over the given chunker and store.
func New(chunker provider.ChunkingStrategy, store provider.VectorStore) (*Ingestor, error) {
	if chunker == nil {
		return nil, fmt.Errorf("chunker is nil")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store is nil")
	}
	return &Ingestor{chunker: chunker, store: store}, nil
}

// Result summarizes one ingested document.
type Result struct {
	Source string
	Chunks int
	IDs    []string
}

// Text chunks the given text and stores every chunk under the source
// label. The metadata map is copied onto each chunk, with source and
// chunk_index filled in per chunk.
func (ing *Ingestor) Text(ctx context.Context, text, source string, metadata map[string]any) (Result, error) {
	chunks, err := ing.chunker.Chunk(text, source)
	if err != nil {
		return Result{}, fmt.Errorf("failed to chunk %s: %w", source, err)
	}
	if len(chunks) == 0 {
		return Result{Source: source}, nil
	}

	texts := make([]string, len(chunks))
	metadatas := make([]map[string]any, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
		m := make(map[string]any, len(metadata)+2)
		for k, v := range metadata {
			m[k] = v
		}
		m["source"] = chunk.Source
		m["chunk_index"] = chunk.Index
		metadatas[i] = m
	}

	ids, err := ing.store.AddTexts(ctx, texts, metadatas)
	if err != nil {
		return Result{}, fmt.Errorf("failed to store chunks from %s: %w", source, err)
	}
	return Result{Source: source, Chunks: len(chunks), IDs: ids}, nil
}

// Question composes an interview question and its answer into a single
// searchable document and ingests it under the interview_question source,
// so the ask flow can retrieve prepared answers.
func (ing *Ingestor) Question(ctx context.Context, q types.InterviewQuestion) (Result, error) {
	answer := q.Answer
	if strings.TrimSpace(answer) == "" {
		answer = "No answer provided"
	}
	content := fmt.Sprintf("Interview Question: %s\n\nAnswer: %s\n\nType: %s\nCategory: %s\nCompanies: %s\nTags: %s",
		q.Question, answer, q.Type, q.Category,
		strings.Join(q.Companies, ", "), strings.Join(q.Tags, ", "))
	meta := map[string]any{
		"question_id": q.ID,
		"type":        string(q.Type),
		"category":    q.Category,
	}
	return ing.Text(ctx, content, "interview_question", meta)
}

// File reads a text file and ingests its contents. The source label is
// the file basename.
func (ing *Ingestor) File(ctx context.Context, path string, metadata map[string]any) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return Result{}, fmt.Errorf("%s is not valid UTF-8 text", path)
	}
	return ing.Text(ctx, string(data), filepath.Base(path), metadata)
}
