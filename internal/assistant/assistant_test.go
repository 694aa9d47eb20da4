package assistant

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jhavlik/jobdesk/pkg/types"
)

// scriptedStore returns canned search results and records the query.
type scriptedStore struct {
	results   []types.ScoredDocument
	failWith  error
	lastQuery string
	lastK     int
}

func (s *scriptedStore) AddTexts(ctx context.Context, texts []string, metadatas []map[string]any) ([]string, error) {
	return nil, nil
}

func (s *scriptedStore) AddDocuments(ctx context.Context, docs []types.Document) ([]string, error) {
	return nil, nil
}

func (s *scriptedStore) SimilaritySearch(ctx context.Context, query string, k int) ([]types.Document, error) {
	return nil, nil
}

func (s *scriptedStore) SimilaritySearchWithScore(ctx context.Context, query string, k int) ([]types.ScoredDocument, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.lastQuery = query
	s.lastK = k
	return s.results, nil
}

func (s *scriptedStore) Delete(ctx context.Context, ids []string) error { return nil }

func (s *scriptedStore) Stats(ctx context.Context) (types.CollectionStats, error) {
	return types.CollectionStats{}, nil
}

func (s *scriptedStore) Close() error { return nil }

// scriptedChat records the prompts it was given and replies with a fixed
// string.
type scriptedChat struct {
	reply      string
	failWith   error
	calls      int
	lastSystem string
	lastPrompt string
}

func (c *scriptedChat) Name() string  { return "scripted" }
func (c *scriptedChat) Model() string { return "test-model" }
func (c *scriptedChat) Close() error  { return nil }

func (c *scriptedChat) Chat(ctx context.Context, system, prompt string) (string, error) {
	if c.failWith != nil {
		return "", c.failWith
	}
	c.calls++
	c.lastSystem = system
	c.lastPrompt = prompt
	return c.reply, nil
}

func scored(content string, score float64) types.ScoredDocument {
	return types.ScoredDocument{
		Document: types.Document{Content: content},
		Score:    score,
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New(nil, &scriptedChat{}); err == nil {
		t.Error("expected error for nil store")
	}
	if _, err := New(&scriptedStore{}, nil); err == nil {
		t.Error("expected error for nil chat provider")
	}
}

func TestAskBuildsPromptFromRetrieval(t *testing.T) {
	store := &scriptedStore{results: []types.ScoredDocument{
		scored("I worked at Acme for three years on billing.", 0.91),
		scored("My notice period is two months.", 0.72),
	}}
	chat := &scriptedChat{reply: "  You worked at Acme on billing.\n"}

	asst, err := New(store, chat)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ans, err := asst.Ask(context.Background(), "Where did I work?", 2)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if ans.Text != "You worked at Acme on billing." {
		t.Errorf("Text = %q, want trimmed reply", ans.Text)
	}
	if len(ans.Sources) != 2 {
		t.Errorf("len(Sources) = %d, want 2", len(ans.Sources))
	}
	if ans.Model != "test-model" {
		t.Errorf("Model = %q, want test-model", ans.Model)
	}

	if store.lastQuery != "Where did I work?" || store.lastK != 2 {
		t.Errorf("search got (%q, %d)", store.lastQuery, store.lastK)
	}

	for _, want := range []string{
		"Context:",
		"Questions:",
		"Answers:",
		"Where did I work?",
		"I worked at Acme for three years on billing.",
		"My notice period is two months.",
		"\n\n---\n\n",
	} {
		if !strings.Contains(chat.lastPrompt, want) {
			t.Errorf("prompt missing %q\nprompt:\n%s", want, chat.lastPrompt)
		}
	}
	if !strings.Contains(chat.lastSystem, "knowledge base") {
		t.Errorf("system prompt = %q, want knowledge-base framing", chat.lastSystem)
	}
}

func TestAskEmptyRetrievalStillAsks(t *testing.T) {
	store := &scriptedStore{}
	chat := &scriptedChat{reply: "The knowledge base has no information about that."}

	asst, _ := New(store, chat)
	ans, err := asst.Ask(context.Background(), "What is my salary history?", 4)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if chat.calls != 1 {
		t.Fatalf("chat calls = %d, want 1", chat.calls)
	}
	if !strings.Contains(chat.lastPrompt, "no matching documents") {
		t.Errorf("prompt missing empty-context note:\n%s", chat.lastPrompt)
	}
	if len(ans.Sources) != 0 {
		t.Errorf("Sources = %v, want none", ans.Sources)
	}
}

func TestAskDefaultTopK(t *testing.T) {
	store := &scriptedStore{}
	chat := &scriptedChat{reply: "ok"}

	asst, _ := New(store, chat)
	if _, err := asst.Ask(context.Background(), "anything", 0); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if store.lastK != DefaultTopK {
		t.Errorf("k = %d, want default %d", store.lastK, DefaultTopK)
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	chat := &scriptedChat{reply: "ok"}
	asst, _ := New(&scriptedStore{}, chat)

	if _, err := asst.Ask(context.Background(), "   ", 3); err == nil {
		t.Fatal("expected error for empty question")
	}
	if chat.calls != 0 {
		t.Errorf("chat called %d times for empty question", chat.calls)
	}
}

func TestAskSearchError(t *testing.T) {
	store := &scriptedStore{failWith: fmt.Errorf("store offline")}
	asst, _ := New(store, &scriptedChat{reply: "ok"})

	_, err := asst.Ask(context.Background(), "anything", 3)
	if err == nil {
		t.Fatal("expected search error")
	}
	if !strings.Contains(err.Error(), "failed to search knowledge base") {
		t.Errorf("error = %v, want search wrap", err)
	}
}

func TestAskChatError(t *testing.T) {
	chat := &scriptedChat{failWith: fmt.Errorf("model unavailable")}
	asst, _ := New(&scriptedStore{}, chat)

	_, err := asst.Ask(context.Background(), "anything", 3)
	if err == nil {
		t.Fatal("expected chat error")
	}
	if !strings.Contains(err.Error(), "failed to generate answer") {
		t.Errorf("error = %v, want answer wrap", err)
	}
}
