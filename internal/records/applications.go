package records

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhavlik/jobdesk/pkg/types"
)

// Applications tracks job applications in a single JSON file.
type Applications struct {
	mu    sync.RWMutex
	file  *fileStore
	items []types.JobApplication
}

// OpenApplications loads the application tracker from cfg.Dir, creating the
// directory and starting empty when no file exists yet.
func OpenApplications(cfg Config) (*Applications, error) {
	f, err := openFileStore(cfg, applicationsFile)
	if err != nil {
		return nil, err
	}
	items, err := loadRecords[types.JobApplication](f)
	if err != nil {
		return nil, err
	}
	return &Applications{file: f, items: items}, nil
}

// ListOptions filters and orders application listings. The zero value lists
// everything, newest application first.
type ListOptions struct {
	Status    types.ApplicationStatus // Exact match when set
	Company   string                  // Case-insensitive substring when set
	SortBy    string                  // "applied_date" (default), "company" or "updated_at"
	Ascending bool                    // Reverse the default newest-first order
}

// Add records a new application. Company and role are required; the status
// defaults to "applied" and the applied date to now. Adding a second
// application for a company and role that already has one in a non-terminal
// status is rejected with ErrDuplicate. The timeline is seeded with the
// initial status so later events mark the first response.
func (a *Applications) Add(app types.JobApplication) (types.JobApplication, error) {
	app.Company = strings.TrimSpace(app.Company)
	app.Role = strings.TrimSpace(app.Role)
	if app.Company == "" || app.Role == "" {
		return types.JobApplication{}, fmt.Errorf("company and role are required")
	}
	if app.Status == "" {
		app.Status = types.StatusApplied
	}
	if !app.Status.Valid() {
		return types.JobApplication{}, fmt.Errorf("unknown status %q", app.Status)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.items {
		existing := &a.items[i]
		if existing.Matches(app.Company, app.Role) && existing.Active() {
			return types.JobApplication{}, fmt.Errorf("%w: active application already exists for %s - %s",
				types.ErrDuplicate, app.Company, app.Role)
		}
	}

	now := time.Now()
	app.ID = uuid.NewString()
	if app.AppliedDate.IsZero() {
		app.AppliedDate = now
	}
	app.UpdatedAt = now
	app.Timeline = []types.TimelineEvent{{Date: app.AppliedDate, Status: app.Status}}

	a.items = append(a.items, app)
	if err := saveRecords(a.file, a.items); err != nil {
		return types.JobApplication{}, err
	}
	return app, nil
}

// Get returns the application with the given id.
func (a *Applications) Get(id string) (types.JobApplication, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for i := range a.items {
		if a.items[i].ID == id {
			return a.items[i], nil
		}
	}
	return types.JobApplication{}, fmt.Errorf("%w: application %s", types.ErrNotFound, id)
}

// List returns the applications matching the given filters, ordered per
// opts. Unknown sort keys fall back to the applied date.
func (a *Applications) List(opts ListOptions) []types.JobApplication {
	a.mu.RLock()
	results := make([]types.JobApplication, 0, len(a.items))
	for i := range a.items {
		app := a.items[i]
		if opts.Status != "" && app.Status != opts.Status {
			continue
		}
		if opts.Company != "" && !strings.Contains(strings.ToLower(app.Company), strings.ToLower(opts.Company)) {
			continue
		}
		results = append(results, app)
	}
	a.mu.RUnlock()

	sortApplications(results, opts.SortBy, opts.Ascending)
	return results
}

func sortApplications(apps []types.JobApplication, sortBy string, ascending bool) {
	var less func(x, y *types.JobApplication) bool
	switch sortBy {
	case "company":
		less = func(x, y *types.JobApplication) bool {
			return strings.ToLower(x.Company) < strings.ToLower(y.Company)
		}
	case "updated_at":
		less = func(x, y *types.JobApplication) bool {
			return x.UpdatedAt.Before(y.UpdatedAt)
		}
	default: // applied_date
		less = func(x, y *types.JobApplication) bool {
			return x.AppliedDate.Before(y.AppliedDate)
		}
	}
	sort.SliceStable(apps, func(i, j int) bool {
		if ascending {
			return less(&apps[i], &apps[j])
		}
		return less(&apps[j], &apps[i])
	})
}

// Update applies mutate to the application with the given id and persists
// the result. The id itself is preserved and UpdatedAt is stamped after the
// callback runs.
func (a *Applications) Update(id string, mutate func(*types.JobApplication)) (types.JobApplication, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.items {
		if a.items[i].ID != id {
			continue
		}
		mutate(&a.items[i])
		a.items[i].ID = id
		a.items[i].UpdatedAt = time.Now()
		if err := saveRecords(a.file, a.items); err != nil {
			return types.JobApplication{}, err
		}
		return a.items[i], nil
	}
	return types.JobApplication{}, fmt.Errorf("%w: application %s", types.ErrNotFound, id)
}

// UpdateStatus moves the application to a new status and appends the change
// to its timeline.
func (a *Applications) UpdateStatus(id string, status types.ApplicationStatus, note string) (types.JobApplication, error) {
	if !status.Valid() {
		return types.JobApplication{}, fmt.Errorf("unknown status %q", status)
	}
	return a.Update(id, func(app *types.JobApplication) {
		app.Status = status
		app.Timeline = append(app.Timeline, types.TimelineEvent{
			Date:   time.Now(),
			Status: status,
			Note:   note,
		})
	})
}

// AddNote appends a timestamped note line to the application's notes.
func (a *Applications) AddNote(id, note string) (types.JobApplication, error) {
	stamped := fmt.Sprintf("[%s] %s", time.Now().Format("2006-01-02 15:04"), note)
	return a.Update(id, func(app *types.JobApplication) {
		if app.Notes == "" {
			app.Notes = stamped
			return
		}
		app.Notes = app.Notes + "\n" + stamped
	})
}

// Delete removes the application with the given id.
func (a *Applications) Delete(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.items {
		if a.items[i].ID == id {
			a.items = append(a.items[:i], a.items[i+1:]...)
			return saveRecords(a.file, a.items)
		}
	}
	return fmt.Errorf("%w: application %s", types.ErrNotFound, id)
}

// Search returns the applications whose company, role, notes or location
// contain the query, compared case-insensitively, newest first.
func (a *Applications) Search(query string) []types.JobApplication {
	q := strings.ToLower(query)

	a.mu.RLock()
	results := make([]types.JobApplication, 0)
	for i := range a.items {
		app := a.items[i]
		if strings.Contains(strings.ToLower(app.Company), q) ||
			strings.Contains(strings.ToLower(app.Role), q) ||
			strings.Contains(strings.ToLower(app.Notes), q) ||
			strings.Contains(strings.ToLower(app.Location), q) {
			results = append(results, app)
		}
	}
	a.mu.RUnlock()

	sortApplications(results, "applied_date", false)
	return results
}

// Stats summarizes the tracked applications. The response rate counts
// applications that moved past "applied"; days to response measures the
// applied date to the first recorded status change.
func (a *Applications) Stats() types.ApplicationStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := types.ApplicationStats{
		Total:    len(a.items),
		ByStatus: make(map[types.ApplicationStatus]int),
	}
	if stats.Total == 0 {
		return stats
	}

	responded := 0
	var daysToResponse []float64
	companyCounts := make(map[string]int)
	for i := range a.items {
		app := &a.items[i]
		stats.ByStatus[app.Status]++
		companyCounts[app.Company]++
		if app.Active() {
			stats.Active++
		}
		if app.Status == types.StatusApplied {
			continue
		}
		responded++
		if len(app.Timeline) > 1 {
			days := app.Timeline[1].Date.Sub(app.AppliedDate).Hours() / 24
			daysToResponse = append(daysToResponse, math.Floor(days))
		}
	}

	stats.ResponseRate = round1(float64(responded) / float64(stats.Total) * 100)
	if len(daysToResponse) > 0 {
		var sum float64
		for _, d := range daysToResponse {
			sum += d
		}
		stats.AvgDaysToResponse = round1(sum / float64(len(daysToResponse)))
	}
	stats.TopCompanies = topCompanies(companyCounts, 5)
	return stats
}

// topCompanies returns up to limit companies ordered by application count,
// ties broken alphabetically.
func topCompanies(counts map[string]int, limit int) []types.CompanyCount {
	ranked := make([]types.CompanyCount, 0, len(counts))
	for company, count := range counts {
		ranked = append(ranked, types.CompanyCount{Company: company, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Company < ranked[j].Company
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
