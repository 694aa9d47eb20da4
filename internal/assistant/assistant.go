// Package assistant implements the retrieval-augmented ask flow: nearest
// knowledge-base documents become the context a chat provider answers from.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhavlik/jobdesk/pkg/provider"
	"github.com/jhavlik/jobdesk/pkg/types"
)

// DefaultTopK is the number of documents retrieved when the caller does
// not ask for a specific count.
const DefaultTopK = 4

// systemPrompt pins the model to the retrieved context. Answers must come
// from the knowledge base, not from the model's general knowledge.
const systemPrompt = "You are a personal job search assistant. " +
	"Answer the questions based on the local knowledge base honestly. " +
	"When the context does not contain the answer, say the knowledge base " +
	"has no information about it instead of guessing."

const promptTemplate = "Context:\n%s\n\nQuestions:\n%s\n\nAnswers:"

// emptyContextNote stands in for the context block when retrieval finds
// nothing, so the model knows the base is empty rather than withheld.
const emptyContextNote = "(the knowledge base has no matching documents)"

// Assistant answers questions from the knowledge base.
type Assistant struct {
	store provider.VectorStore
	chat  provider.ChatProvider
}

// New creates an Assistant over the given store and chat provider.
func New(store provider.VectorStore, chat provider.ChatProvider) (*Assistant, error) {
	if store == nil {
		return nil, fmt.Errorf("vector store is nil")
	}
	if chat == nil {
		return nil, fmt.Errorf("chat provider is nil")
	}
	return &Assistant{store: store, chat: chat}, nil
}

// Ask retrieves the k most similar documents and has the chat provider
// answer the question from them. k < 1 falls back to DefaultTopK. The
// question is still asked when retrieval comes back empty; the context
// block then says so.
func (a *Assistant) Ask(ctx context.Context, question string, k int) (types.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return types.Answer{}, fmt.Errorf("question is empty")
	}
	if k < 1 {
		k = DefaultTopK
	}

	matches, err := a.store.SimilaritySearchWithScore(ctx, question, k)
	if err != nil {
		return types.Answer{}, fmt.Errorf("failed to search knowledge base: %w", err)
	}

	prompt := fmt.Sprintf(promptTemplate, contextBlock(matches), question)
	reply, err := a.chat.Chat(ctx, systemPrompt, prompt)
	if err != nil {
		return types.Answer{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	return types.Answer{
		Text:    strings.TrimSpace(reply),
		Sources: matches,
		Model:   a.chat.Model(),
	}, nil
}

// contextBlock joins the retrieved documents into the prompt's context
// section, separated so the model can tell documents apart.
func contextBlock(matches []types.ScoredDocument) string {
	if len(matches) == 0 {
		return emptyContextNote
	}
	parts := make([]string, len(matches))
	for i, m := range matches {
		parts[i] = m.Document.Content
	}
	return strings.Join(parts, "\n\n---\n\n")
}
