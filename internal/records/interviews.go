package records

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhavlik/jobdesk/pkg/types"
)

// Interviews manages the interview question bank in a single JSON file.
type Interviews struct {
	mu    sync.RWMutex
	file  *fileStore
	items []types.InterviewQuestion
}

// OpenInterviews loads the question bank from cfg.Dir, creating the
// directory and starting empty when no file exists yet.
func OpenInterviews(cfg Config) (*Interviews, error) {
	f, err := openFileStore(cfg, questionsFile)
	if err != nil {
		return nil, err
	}
	items, err := loadRecords[types.InterviewQuestion](f)
	if err != nil {
		return nil, err
	}
	return &Interviews{file: f, items: items}, nil
}

// QuestionListOptions filters and orders question listings. The zero value
// lists everything, newest first.
type QuestionListOptions struct {
	Type          types.QuestionType // Exact match when set
	Category      string             // Case-insensitive match when set
	Difficulty    string             // Case-insensitive match when set
	Company       string             // Question must name the company
	Tag           string             // Question must carry the tag
	MinImportance int                // Keep questions at or above this importance
	Unpracticed   bool               // Keep only questions never practiced

	// SortBy orders the result: "created" (default, newest first),
	// "practiced" (most recently practiced first, never-practiced last),
	// "count" (practice count descending), "confidence" (weakest first) or
	// "question" (alphabetical).
	SortBy string
}

// Add records a new question. The question text is required; the type
// defaults to behavioral.
func (b *Interviews) Add(q types.InterviewQuestion) (types.InterviewQuestion, error) {
	q.Question = strings.TrimSpace(q.Question)
	if q.Question == "" {
		return types.InterviewQuestion{}, fmt.Errorf("question text is required")
	}
	if q.Type == "" {
		q.Type = types.QuestionBehavioral
	}

	now := time.Now()
	q.ID = uuid.NewString()
	q.CreatedAt = now
	q.UpdatedAt = now

	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = append(b.items, q)
	if err := saveRecords(b.file, b.items); err != nil {
		return types.InterviewQuestion{}, err
	}
	return q, nil
}

// Get returns the question with the given id.
func (b *Interviews) Get(id string) (types.InterviewQuestion, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i := range b.items {
		if b.items[i].ID == id {
			return b.items[i], nil
		}
	}
	return types.InterviewQuestion{}, fmt.Errorf("%w: question %s", types.ErrNotFound, id)
}

// List returns the questions matching the given filters, ordered per opts.
// Unknown sort keys fall back to creation time.
func (b *Interviews) List(opts QuestionListOptions) []types.InterviewQuestion {
	b.mu.RLock()
	results := make([]types.InterviewQuestion, 0, len(b.items))
	for i := range b.items {
		q := b.items[i]
		if opts.Type != "" && q.Type != opts.Type {
			continue
		}
		if opts.Category != "" && !strings.EqualFold(q.Category, opts.Category) {
			continue
		}
		if opts.Difficulty != "" && !strings.EqualFold(q.Difficulty, opts.Difficulty) {
			continue
		}
		if opts.Company != "" && !q.HasCompany(opts.Company) {
			continue
		}
		if opts.Tag != "" && !q.HasTag(opts.Tag) {
			continue
		}
		if opts.MinImportance > 0 && q.Importance < opts.MinImportance {
			continue
		}
		if opts.Unpracticed && q.PracticeCount > 0 {
			continue
		}
		results = append(results, q)
	}
	b.mu.RUnlock()

	sortQuestions(results, opts.SortBy)
	return results
}

func sortQuestions(questions []types.InterviewQuestion, sortBy string) {
	var less func(x, y *types.InterviewQuestion) bool
	switch sortBy {
	case "practiced":
		less = func(x, y *types.InterviewQuestion) bool {
			if x.LastPracticed == nil {
				return false
			}
			if y.LastPracticed == nil {
				return true
			}
			return x.LastPracticed.After(*y.LastPracticed)
		}
	case "count":
		less = func(x, y *types.InterviewQuestion) bool {
			return x.PracticeCount > y.PracticeCount
		}
	case "confidence":
		less = func(x, y *types.InterviewQuestion) bool {
			return x.Confidence < y.Confidence
		}
	case "question":
		less = func(x, y *types.InterviewQuestion) bool {
			return strings.ToLower(x.Question) < strings.ToLower(y.Question)
		}
	default: // created
		less = func(x, y *types.InterviewQuestion) bool {
			return x.CreatedAt.After(y.CreatedAt)
		}
	}
	sort.SliceStable(questions, func(i, j int) bool {
		return less(&questions[i], &questions[j])
	})
}

// Update applies mutate to the question with the given id and persists the
// result. The id itself is preserved and UpdatedAt is stamped after the
// callback runs.
func (b *Interviews) Update(id string, mutate func(*types.InterviewQuestion)) (types.InterviewQuestion, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.items {
		if b.items[i].ID != id {
			continue
		}
		mutate(&b.items[i])
		b.items[i].ID = id
		b.items[i].UpdatedAt = time.Now()
		if err := saveRecords(b.file, b.items); err != nil {
			return types.InterviewQuestion{}, err
		}
		return b.items[i], nil
	}
	return types.InterviewQuestion{}, fmt.Errorf("%w: question %s", types.ErrNotFound, id)
}

// MarkPracticed increments the question's practice counter and stamps the
// practice time.
func (b *Interviews) MarkPracticed(id string) (types.InterviewQuestion, error) {
	now := time.Now()
	return b.Update(id, func(q *types.InterviewQuestion) {
		q.MarkPracticed(now)
	})
}

// Delete removes the question with the given id.
func (b *Interviews) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.items {
		if b.items[i].ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return saveRecords(b.file, b.items)
		}
	}
	return fmt.Errorf("%w: question %s", types.ErrNotFound, id)
}

// Stats summarizes the question bank. The average confidence covers only
// questions with a recorded confidence level.
func (b *Interviews) Stats() types.InterviewStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := types.InterviewStats{
		TotalQuestions: len(b.items),
		ByType:         make(map[types.QuestionType]int),
	}
	if stats.TotalQuestions == 0 {
		return stats
	}

	confidenceSum, confidenceCount := 0, 0
	for i := range b.items {
		q := &b.items[i]
		stats.ByType[q.Type]++
		if q.PracticeCount > 0 {
			stats.Practiced++
		}
		if q.Confidence > 0 {
			confidenceSum += q.Confidence
			confidenceCount++
		}
	}

	stats.PracticePercentage = float64(stats.Practiced) / float64(stats.TotalQuestions) * 100
	if confidenceCount > 0 {
		stats.AvgConfidence = float64(confidenceSum) / float64(confidenceCount)
	}
	return stats
}
