// Package types contains shared data types used across the jobdesk project.
package types

import (
	"strings"
	"time"
)

// Document represents a piece of text stored in the knowledge base.
type Document struct {
	ID       string         `json:"id,omitempty"` // Assigned by the store on insert
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ScoredDocument pairs a Document with its similarity score.
type ScoredDocument struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"` // Cosine similarity, higher is closer
}

// Reserved metadata keys managed by the vector store. User-supplied values
// under these keys are overwritten on insert and stripped from results.
const (
	MetaKeyID        = "id"
	MetaKeyText      = "text"
	MetaKeyTimestamp = "timestamp"
)

// CollectionStats describes the current state of a vector collection.
type CollectionStats struct {
	DocumentCount  int    `json:"document_count"`
	VectorCount    int    `json:"vector_count"`
	StorePath      string `json:"store_path,omitempty"`
	CollectionName string `json:"collection_name,omitempty"`
	Status         string `json:"status"` // "ready" once the store is loaded
}

// Chunk represents a piece of a source document produced by a chunker.
type Chunk struct {
	Content string // Chunk text
	Index   int    // Position within the source document (0-based)
	Source  string // Originating file or label
}

// Answer is the assistant's reply to a question, with the documents it drew on.
type Answer struct {
	Text    string           `json:"text"`
	Sources []ScoredDocument `json:"sources,omitempty"`
	Model   string           `json:"model,omitempty"`
}

// =============================================================================
// Job Application Types
// =============================================================================

// ApplicationStatus represents the stage of a job application.
type ApplicationStatus string

const (
	StatusApplied   ApplicationStatus = "applied"
	StatusScreening ApplicationStatus = "screening"
	StatusInterview ApplicationStatus = "interview"
	StatusOffer     ApplicationStatus = "offer"
	StatusAccepted  ApplicationStatus = "accepted"
	StatusRejected  ApplicationStatus = "rejected"
	StatusWithdrawn ApplicationStatus = "withdrawn"
)

// Terminal reports whether the status ends an application. Terminal
// applications do not count as active and do not block re-applying to the
// same company and role.
func (s ApplicationStatus) Terminal() bool {
	switch s {
	case StatusRejected, StatusWithdrawn, StatusAccepted:
		return true
	}
	return false
}

// Valid reports whether s is a known status value.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusApplied, StatusScreening, StatusInterview, StatusOffer,
		StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// TimelineEvent records a status change on an application.
type TimelineEvent struct {
	Date   time.Time         `json:"date"`
	Status ApplicationStatus `json:"status"`
	Note   string            `json:"note,omitempty"`
}

// JobApplication represents a single tracked job application.
type JobApplication struct {
	ID          string            `json:"id"`
	Company     string            `json:"company"`
	Role        string            `json:"role"`
	Status      ApplicationStatus `json:"status"`
	Location    string            `json:"location,omitempty"`
	URL         string            `json:"url,omitempty"`
	Salary      string            `json:"salary,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	AppliedDate time.Time         `json:"applied_date"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Timeline    []TimelineEvent   `json:"timeline,omitempty"`
}

// Active reports whether the application is still in play.
func (a *JobApplication) Active() bool {
	return !a.Status.Terminal()
}

// Matches reports whether the application targets the given company and role,
// compared case-insensitively.
func (a *JobApplication) Matches(company, role string) bool {
	return strings.EqualFold(a.Company, company) && strings.EqualFold(a.Role, role)
}

// CompanyCount pairs a company name with its application count.
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// ApplicationStats summarizes a set of applications.
type ApplicationStats struct {
	Total             int                       `json:"total"`
	Active            int                       `json:"active"`
	ByStatus          map[ApplicationStatus]int `json:"by_status"`
	ResponseRate      float64                   `json:"response_rate"`        // Percent of applications that moved past "applied"
	AvgDaysToResponse float64                   `json:"avg_days_to_response"` // Applied date to first status change
	TopCompanies      []CompanyCount            `json:"top_companies"`        // Up to five, most applications first
}

// =============================================================================
// Interview Preparation Types
// =============================================================================

// QuestionType categorizes interview questions.
type QuestionType string

const (
	QuestionBehavioral   QuestionType = "behavioral"
	QuestionTechnical    QuestionType = "technical"
	QuestionSystemDesign QuestionType = "system-design"
	QuestionCaseStudy    QuestionType = "case-study"
)

// InterviewQuestion represents a practice question in the interview bank.
type InterviewQuestion struct {
	ID            string       `json:"id"`
	Question      string       `json:"question"`
	Answer        string       `json:"answer,omitempty"`
	Type          QuestionType `json:"type"`
	Category      string       `json:"category,omitempty"` // Free-form grouping, e.g. "concurrency"
	Difficulty    string       `json:"difficulty,omitempty"`
	Importance    int          `json:"importance"` // 1-10
	Confidence    int          `json:"confidence"` // 1-5, self-assessed
	Tags          []string     `json:"tags,omitempty"`
	Companies     []string     `json:"companies,omitempty"`
	Notes         string       `json:"notes,omitempty"`
	PracticeCount int          `json:"practice_count"`
	LastPracticed *time.Time   `json:"last_practiced,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// MarkPracticed increments the practice counter and stamps the time.
func (q *InterviewQuestion) MarkPracticed(now time.Time) {
	q.PracticeCount++
	q.LastPracticed = &now
	q.UpdatedAt = now
}

// NeedsReview reports whether the question was never practiced or has not
// been practiced within the given window.
func (q *InterviewQuestion) NeedsReview(now time.Time, window time.Duration) bool {
	if q.LastPracticed == nil {
		return true
	}
	return now.Sub(*q.LastPracticed) > window
}

// HasTag reports whether the question carries the given tag.
func (q *InterviewQuestion) HasTag(tag string) bool {
	for _, t := range q.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// HasCompany reports whether the question is associated with the company.
func (q *InterviewQuestion) HasCompany(company string) bool {
	for _, c := range q.Companies {
		if strings.EqualFold(c, company) {
			return true
		}
	}
	return false
}

// InterviewStats summarizes the question bank.
type InterviewStats struct {
	TotalQuestions     int                  `json:"total_questions"`
	Practiced          int                  `json:"practiced"`
	PracticePercentage float64              `json:"practice_percentage"`
	ByType             map[QuestionType]int `json:"by_type"`
	AvgConfidence      float64              `json:"avg_confidence"`
}

// =============================================================================
// Quick Note Types
// =============================================================================

// QuickNote is a labeled snippet kept for fast reference, such as referral
// codes, profile links, or phone numbers. Multiple notes may share a label.
type QuickNote struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"` // Grouping category, e.g. "Referral Codes"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
