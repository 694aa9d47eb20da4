package records

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jhavlik/jobdesk/pkg/types"
)

func newTestApplications(t *testing.T) *Applications {
	t.Helper()
	dir, err := os.MkdirTemp("", "applications-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp failed: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	apps, err := OpenApplications(Config{Dir: dir})
	if err != nil {
		t.Fatalf("OpenApplications failed: %v", err)
	}
	return apps
}

func TestAddApplication(t *testing.T) {
	apps := newTestApplications(t)

	app, err := apps.Add(types.JobApplication{Company: "Acme", Role: "Go Developer"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if app.ID == "" {
		t.Error("Add returned empty id")
	}
	if app.Status != types.StatusApplied {
		t.Errorf("Status = %q, want %q", app.Status, types.StatusApplied)
	}
	if app.AppliedDate.IsZero() {
		t.Error("AppliedDate not stamped")
	}
	if len(app.Timeline) != 1 || app.Timeline[0].Status != types.StatusApplied {
		t.Errorf("Timeline = %+v, want one applied event", app.Timeline)
	}
}

func TestAddApplicationRequiresCompanyAndRole(t *testing.T) {
	apps := newTestApplications(t)

	if _, err := apps.Add(types.JobApplication{Role: "Go Developer"}); err == nil {
		t.Error("Add without company succeeded, want error")
	}
	if _, err := apps.Add(types.JobApplication{Company: "Acme"}); err == nil {
		t.Error("Add without role succeeded, want error")
	}
	if _, err := apps.Add(types.JobApplication{Company: "Acme", Role: "Dev", Status: "ghosted"}); err == nil {
		t.Error("Add with unknown status succeeded, want error")
	}
}

func TestAddApplicationDuplicateGuard(t *testing.T) {
	apps := newTestApplications(t)

	first, err := apps.Add(types.JobApplication{Company: "Acme", Role: "Go Developer"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Same company and role in a different case is still a duplicate.
	_, err = apps.Add(types.JobApplication{Company: "ACME", Role: "go developer"})
	if !errors.Is(err, types.ErrDuplicate) {
		t.Fatalf("duplicate Add error = %v, want ErrDuplicate", err)
	}

	// A terminal status frees the company and role for a new application.
	if _, err := apps.UpdateStatus(first.ID, types.StatusRejected, ""); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if _, err := apps.Add(types.JobApplication{Company: "Acme", Role: "Go Developer"}); err != nil {
		t.Errorf("Add after rejection failed: %v", err)
	}
}

func TestGetApplicationNotFound(t *testing.T) {
	apps := newTestApplications(t)

	_, err := apps.Get("missing")
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
}

func TestListApplicationFilters(t *testing.T) {
	apps := newTestApplications(t)

	seed := []types.JobApplication{
		{Company: "Acme", Role: "Backend Engineer"},
		{Company: "Initech", Role: "Platform Engineer"},
		{Company: "Acme Cloud", Role: "SRE"},
	}
	for _, app := range seed {
		if _, err := apps.Add(app); err != nil {
			t.Fatalf("Add %s failed: %v", app.Company, err)
		}
	}
	if _, err := apps.Add(types.JobApplication{Company: "Hooli", Role: "Gopher"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	hooli := apps.List(ListOptions{Company: "hooli"})
	if len(hooli) != 1 {
		t.Fatalf("List(Company hooli) returned %d, want 1", len(hooli))
	}
	if _, err := apps.UpdateStatus(hooli[0].ID, types.StatusInterview, ""); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	if got := apps.List(ListOptions{}); len(got) != 4 {
		t.Errorf("List all returned %d, want 4", len(got))
	}
	if got := apps.List(ListOptions{Company: "acme"}); len(got) != 2 {
		t.Errorf("List(Company acme) returned %d, want 2", len(got))
	}
	if got := apps.List(ListOptions{Status: types.StatusInterview}); len(got) != 1 {
		t.Errorf("List(Status interview) returned %d, want 1", len(got))
	}
	if got := apps.List(ListOptions{Status: types.StatusOffer}); len(got) != 0 {
		t.Errorf("List(Status offer) returned %d, want 0", len(got))
	}
}

func TestListApplicationSorting(t *testing.T) {
	apps := newTestApplications(t)

	now := time.Now()
	seed := []types.JobApplication{
		{Company: "Beta", Role: "Dev", AppliedDate: now.Add(-48 * time.Hour)},
		{Company: "Alpha", Role: "Dev", AppliedDate: now.Add(-24 * time.Hour)},
		{Company: "Gamma", Role: "Dev", AppliedDate: now.Add(-72 * time.Hour)},
	}
	for _, app := range seed {
		if _, err := apps.Add(app); err != nil {
			t.Fatalf("Add %s failed: %v", app.Company, err)
		}
	}

	newest := apps.List(ListOptions{})
	if newest[0].Company != "Alpha" || newest[2].Company != "Gamma" {
		t.Errorf("default order = %s,%s,%s, want Alpha,Beta,Gamma",
			newest[0].Company, newest[1].Company, newest[2].Company)
	}

	oldest := apps.List(ListOptions{Ascending: true})
	if oldest[0].Company != "Gamma" {
		t.Errorf("ascending order starts with %s, want Gamma", oldest[0].Company)
	}

	byName := apps.List(ListOptions{SortBy: "company", Ascending: true})
	if byName[0].Company != "Alpha" || byName[2].Company != "Gamma" {
		t.Errorf("company order = %s,%s,%s, want Alpha,Beta,Gamma",
			byName[0].Company, byName[1].Company, byName[2].Company)
	}
}

func TestUpdateStatusAppendsTimeline(t *testing.T) {
	apps := newTestApplications(t)

	app, err := apps.Add(types.JobApplication{Company: "Acme", Role: "Go Developer"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	updated, err := apps.UpdateStatus(app.ID, types.StatusInterview, "phone screen booked")
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != types.StatusInterview {
		t.Errorf("Status = %q, want %q", updated.Status, types.StatusInterview)
	}
	if len(updated.Timeline) != 2 {
		t.Fatalf("Timeline has %d events, want 2", len(updated.Timeline))
	}
	last := updated.Timeline[1]
	if last.Status != types.StatusInterview || last.Note != "phone screen booked" {
		t.Errorf("last event = %+v, want interview with note", last)
	}

	if _, err := apps.UpdateStatus(app.ID, "ghosted", ""); err == nil {
		t.Error("UpdateStatus with unknown status succeeded, want error")
	}
}

func TestUpdatePreservesID(t *testing.T) {
	apps := newTestApplications(t)

	app, err := apps.Add(types.JobApplication{Company: "Acme", Role: "Go Developer"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	updated, err := apps.Update(app.ID, func(a *types.JobApplication) {
		a.ID = "hijacked"
		a.Salary = "120k"
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ID != app.ID {
		t.Errorf("ID = %q, want %q", updated.ID, app.ID)
	}
	if updated.Salary != "120k" {
		t.Errorf("Salary = %q, want %q", updated.Salary, "120k")
	}
}

func TestAddApplicationNote(t *testing.T) {
	apps := newTestApplications(t)

	app, err := apps.Add(types.JobApplication{Company: "Acme", Role: "Go Developer"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	first, err := apps.AddNote(app.ID, "sent follow-up email")
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	if !strings.HasPrefix(first.Notes, "[") || !strings.Contains(first.Notes, "sent follow-up email") {
		t.Errorf("Notes = %q, want timestamped note", first.Notes)
	}

	second, err := apps.AddNote(app.ID, "recruiter replied")
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	lines := strings.Split(second.Notes, "\n")
	if len(lines) != 2 {
		t.Fatalf("Notes has %d lines, want 2: %q", len(lines), second.Notes)
	}
	if !strings.Contains(lines[1], "recruiter replied") {
		t.Errorf("second line = %q, want the new note", lines[1])
	}
}

func TestDeleteApplication(t *testing.T) {
	apps := newTestApplications(t)

	app, err := apps.Add(types.JobApplication{Company: "Acme", Role: "Go Developer"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := apps.Delete(app.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := apps.Get(app.ID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}
	if err := apps.Delete(app.ID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func TestSearchApplications(t *testing.T) {
	apps := newTestApplications(t)

	seed := []types.JobApplication{
		{Company: "Acme", Role: "Go Developer", Location: "Prague"},
		{Company: "Initech", Role: "Platform Engineer", Location: "Remote"},
	}
	var ids []string
	for _, app := range seed {
		added, err := apps.Add(app)
		if err != nil {
			t.Fatalf("Add %s failed: %v", app.Company, err)
		}
		ids = append(ids, added.ID)
	}
	if _, err := apps.AddNote(ids[1], "referred by Dana"); err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}

	cases := []struct {
		query string
		want  int
	}{
		{"acme", 1},     // company
		{"platform", 1}, // role
		{"prague", 1},   // location
		{"dana", 1},     // notes
		{"e", 2},
		{"nothing-matches", 0},
	}
	for _, tc := range cases {
		if got := apps.Search(tc.query); len(got) != tc.want {
			t.Errorf("Search(%q) returned %d, want %d", tc.query, len(got), tc.want)
		}
	}
}

func TestApplicationStats(t *testing.T) {
	apps := newTestApplications(t)

	now := time.Now()

	// Two Acme applications; one responded after 3 days, one still waiting.
	responded, err := apps.Add(types.JobApplication{
		Company: "Acme", Role: "Go Developer", AppliedDate: now.Add(-72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := apps.UpdateStatus(responded.ID, types.StatusInterview, ""); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if _, err := apps.Add(types.JobApplication{Company: "Acme", Role: "SRE"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// One rejection after 5 days.
	rejected, err := apps.Add(types.JobApplication{
		Company: "Initech", Role: "Platform Engineer", AppliedDate: now.Add(-120 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := apps.UpdateStatus(rejected.ID, types.StatusRejected, ""); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	// One fresh application.
	if _, err := apps.Add(types.JobApplication{Company: "Hooli", Role: "Gopher"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	stats := apps.Stats()
	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	if stats.Active != 3 {
		t.Errorf("Active = %d, want 3", stats.Active)
	}
	if stats.ByStatus[types.StatusApplied] != 2 || stats.ByStatus[types.StatusInterview] != 1 ||
		stats.ByStatus[types.StatusRejected] != 1 {
		t.Errorf("ByStatus = %v, want applied:2 interview:1 rejected:1", stats.ByStatus)
	}
	if stats.ResponseRate != 50.0 {
		t.Errorf("ResponseRate = %v, want 50.0", stats.ResponseRate)
	}
	if stats.AvgDaysToResponse != 4.0 {
		t.Errorf("AvgDaysToResponse = %v, want 4.0", stats.AvgDaysToResponse)
	}
	if len(stats.TopCompanies) == 0 || stats.TopCompanies[0].Company != "Acme" || stats.TopCompanies[0].Count != 2 {
		t.Errorf("TopCompanies = %+v, want Acme first with 2", stats.TopCompanies)
	}
}

func TestApplicationStatsEmpty(t *testing.T) {
	apps := newTestApplications(t)

	stats := apps.Stats()
	if stats.Total != 0 || stats.Active != 0 || stats.ResponseRate != 0 || stats.AvgDaysToResponse != 0 {
		t.Errorf("empty stats = %+v, want zeros", stats)
	}
	if stats.ByStatus == nil {
		t.Error("ByStatus is nil, want empty map")
	}
}

func TestApplicationsPersist(t *testing.T) {
	dir, err := os.MkdirTemp("", "applications-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp failed: %v", err)
	}
	defer os.RemoveAll(dir)

	apps, err := OpenApplications(Config{Dir: dir})
	if err != nil {
		t.Fatalf("OpenApplications failed: %v", err)
	}
	app, err := apps.Add(types.JobApplication{Company: "Acme", Role: "Go Developer", URL: "https://acme.example/jobs/1"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := apps.UpdateStatus(app.ID, types.StatusScreening, "HR call"); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	reopened, err := OpenApplications(Config{Dir: dir})
	if err != nil {
		t.Fatalf("OpenApplications reopen failed: %v", err)
	}
	got, err := reopened.Get(app.ID)
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got.Company != "Acme" || got.URL != "https://acme.example/jobs/1" {
		t.Errorf("reopened application = %+v, want original fields", got)
	}
	if got.Status != types.StatusScreening || len(got.Timeline) != 2 {
		t.Errorf("reopened status/timeline = %q/%d events, want screening/2", got.Status, len(got.Timeline))
	}
}
