package records

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jhavlik/jobdesk/pkg/types"
)

func newTestInterviews(t *testing.T) *Interviews {
	t.Helper()
	dir, err := os.MkdirTemp("", "interviews-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp failed: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	bank, err := OpenInterviews(Config{Dir: dir})
	if err != nil {
		t.Fatalf("OpenInterviews failed: %v", err)
	}
	return bank
}

func TestAddQuestion(t *testing.T) {
	bank := newTestInterviews(t)

	q, err := bank.Add(types.InterviewQuestion{Question: "Tell me about a conflict you resolved."})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if q.ID == "" {
		t.Error("Add returned empty id")
	}
	if q.Type != types.QuestionBehavioral {
		t.Errorf("Type = %q, want default %q", q.Type, types.QuestionBehavioral)
	}
	if q.CreatedAt.IsZero() || q.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped")
	}

	if _, err := bank.Add(types.InterviewQuestion{Question: "   "}); err == nil {
		t.Error("Add with blank question succeeded, want error")
	}
}

func TestQuestionFilters(t *testing.T) {
	bank := newTestInterviews(t)

	seed := []types.InterviewQuestion{
		{
			Question:   "How does a goroutine scheduler work?",
			Type:       types.QuestionTechnical,
			Category:   "concurrency",
			Difficulty: "hard",
			Importance: 9,
			Tags:       []string{"go", "runtime"},
			Companies:  []string{"Acme"},
		},
		{
			Question:   "Design a URL shortener.",
			Type:       types.QuestionSystemDesign,
			Category:   "design",
			Difficulty: "medium",
			Importance: 7,
			Tags:       []string{"scaling"},
			Companies:  []string{"Initech", "Acme"},
		},
		{
			Question:   "Describe a project you are proud of.",
			Type:       types.QuestionBehavioral,
			Category:   "story",
			Difficulty: "easy",
			Importance: 5,
		},
	}
	var ids []string
	for _, q := range seed {
		added, err := bank.Add(q)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		ids = append(ids, added.ID)
	}
	if _, err := bank.MarkPracticed(ids[0]); err != nil {
		t.Fatalf("MarkPracticed failed: %v", err)
	}

	cases := []struct {
		name string
		opts QuestionListOptions
		want int
	}{
		{"all", QuestionListOptions{}, 3},
		{"by type", QuestionListOptions{Type: types.QuestionTechnical}, 1},
		{"by category", QuestionListOptions{Category: "Design"}, 1},
		{"by difficulty", QuestionListOptions{Difficulty: "HARD"}, 1},
		{"by company", QuestionListOptions{Company: "acme"}, 2},
		{"by tag", QuestionListOptions{Tag: "GO"}, 1},
		{"by importance", QuestionListOptions{MinImportance: 7}, 2},
		{"unpracticed", QuestionListOptions{Unpracticed: true}, 2},
		{"combined", QuestionListOptions{Company: "acme", Unpracticed: true}, 1},
	}
	for _, tc := range cases {
		if got := bank.List(tc.opts); len(got) != tc.want {
			t.Errorf("%s: List returned %d, want %d", tc.name, len(got), tc.want)
		}
	}
}

func TestQuestionSorting(t *testing.T) {
	bank := newTestInterviews(t)

	older, err := bank.Add(types.InterviewQuestion{Question: "Beta question", Confidence: 4})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	newer, err := bank.Add(types.InterviewQuestion{Question: "Alpha question", Confidence: 2})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := bank.Update(older.ID, func(q *types.InterviewQuestion) {
		q.CreatedAt = time.Now().Add(-time.Hour)
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, err := bank.MarkPracticed(older.ID); err != nil {
		t.Fatalf("MarkPracticed failed: %v", err)
	}

	created := bank.List(QuestionListOptions{})
	if created[0].ID != newer.ID {
		t.Errorf("default sort put %q first, want the newest question", created[0].Question)
	}

	byConfidence := bank.List(QuestionListOptions{SortBy: "confidence"})
	if byConfidence[0].ID != newer.ID {
		t.Errorf("confidence sort put confidence %d first, want 2", byConfidence[0].Confidence)
	}

	byPracticed := bank.List(QuestionListOptions{SortBy: "practiced"})
	if byPracticed[0].ID != older.ID {
		t.Error("practiced sort did not put the practiced question first")
	}

	byCount := bank.List(QuestionListOptions{SortBy: "count"})
	if byCount[0].ID != older.ID {
		t.Error("count sort did not put the practiced question first")
	}

	byText := bank.List(QuestionListOptions{SortBy: "question"})
	if byText[0].ID != newer.ID {
		t.Errorf("question sort put %q first, want Alpha", byText[0].Question)
	}
}

func TestMarkPracticed(t *testing.T) {
	bank := newTestInterviews(t)

	q, err := bank.Add(types.InterviewQuestion{Question: "Explain channels."})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	practiced, err := bank.MarkPracticed(q.ID)
	if err != nil {
		t.Fatalf("MarkPracticed failed: %v", err)
	}
	if practiced.PracticeCount != 1 {
		t.Errorf("PracticeCount = %d, want 1", practiced.PracticeCount)
	}
	if practiced.LastPracticed == nil {
		t.Fatal("LastPracticed not stamped")
	}

	again, err := bank.MarkPracticed(q.ID)
	if err != nil {
		t.Fatalf("MarkPracticed failed: %v", err)
	}
	if again.PracticeCount != 2 {
		t.Errorf("PracticeCount = %d, want 2", again.PracticeCount)
	}

	if _, err := bank.MarkPracticed("missing"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("MarkPracticed(missing) error = %v, want ErrNotFound", err)
	}
}

func TestQuestionUpdatePreservesID(t *testing.T) {
	bank := newTestInterviews(t)

	q, err := bank.Add(types.InterviewQuestion{Question: "Explain interfaces."})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	updated, err := bank.Update(q.ID, func(iq *types.InterviewQuestion) {
		iq.ID = "hijacked"
		iq.Answer = "Method sets."
		iq.Confidence = 4
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ID != q.ID {
		t.Errorf("ID = %q, want %q", updated.ID, q.ID)
	}
	if updated.Answer != "Method sets." || updated.Confidence != 4 {
		t.Errorf("updated question = %+v, want mutated fields", updated)
	}
	if !updated.UpdatedAt.After(q.UpdatedAt) && !updated.UpdatedAt.Equal(q.UpdatedAt) {
		t.Error("UpdatedAt moved backwards")
	}
}

func TestDeleteQuestion(t *testing.T) {
	bank := newTestInterviews(t)

	q, err := bank.Add(types.InterviewQuestion{Question: "Explain slices."})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := bank.Delete(q.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := bank.Delete(q.ID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func TestInterviewStats(t *testing.T) {
	bank := newTestInterviews(t)

	seed := []types.InterviewQuestion{
		{Question: "Q1", Type: types.QuestionTechnical, Confidence: 2},
		{Question: "Q2", Type: types.QuestionTechnical, Confidence: 4},
		{Question: "Q3", Type: types.QuestionBehavioral},
		{Question: "Q4", Type: types.QuestionSystemDesign, Confidence: 3},
	}
	var ids []string
	for _, q := range seed {
		added, err := bank.Add(q)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		ids = append(ids, added.ID)
	}
	if _, err := bank.MarkPracticed(ids[0]); err != nil {
		t.Fatalf("MarkPracticed failed: %v", err)
	}

	stats := bank.Stats()
	if stats.TotalQuestions != 4 {
		t.Errorf("TotalQuestions = %d, want 4", stats.TotalQuestions)
	}
	if stats.Practiced != 1 {
		t.Errorf("Practiced = %d, want 1", stats.Practiced)
	}
	if stats.PracticePercentage != 25.0 {
		t.Errorf("PracticePercentage = %v, want 25.0", stats.PracticePercentage)
	}
	if stats.ByType[types.QuestionTechnical] != 2 || stats.ByType[types.QuestionBehavioral] != 1 {
		t.Errorf("ByType = %v, want technical:2 behavioral:1", stats.ByType)
	}
	if stats.AvgConfidence != 3.0 {
		t.Errorf("AvgConfidence = %v, want 3.0 over rated questions", stats.AvgConfidence)
	}
}

func TestInterviewStatsEmpty(t *testing.T) {
	bank := newTestInterviews(t)

	stats := bank.Stats()
	if stats.TotalQuestions != 0 || stats.PracticePercentage != 0 || stats.AvgConfidence != 0 {
		t.Errorf("empty stats = %+v, want zeros", stats)
	}
}

func TestQuestionsPersist(t *testing.T) {
	dir, err := os.MkdirTemp("", "interviews-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp failed: %v", err)
	}
	defer os.RemoveAll(dir)

	bank, err := OpenInterviews(Config{Dir: dir})
	if err != nil {
		t.Fatalf("OpenInterviews failed: %v", err)
	}
	q, err := bank.Add(types.InterviewQuestion{
		Question:  "Explain context cancellation.",
		Type:      types.QuestionTechnical,
		Tags:      []string{"go", "context"},
		Companies: []string{"Acme"},
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := bank.MarkPracticed(q.ID); err != nil {
		t.Fatalf("MarkPracticed failed: %v", err)
	}

	reopened, err := OpenInterviews(Config{Dir: dir})
	if err != nil {
		t.Fatalf("OpenInterviews reopen failed: %v", err)
	}
	got, err := reopened.Get(q.ID)
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got.Question != q.Question || got.PracticeCount != 1 || got.LastPracticed == nil {
		t.Errorf("reopened question = %+v, want persisted practice state", got)
	}
	if len(got.Tags) != 2 || !got.HasCompany("acme") {
		t.Errorf("reopened tags/companies = %v/%v, want preserved", got.Tags, got.Companies)
	}
}
