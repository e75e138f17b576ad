package sync

import (
	"testing"
	"time"

	"github.com/minhnd/timespent/internal/gitlab"
)

// page wraps project nodes into a single fetched page.
func page(projects ...*gitlab.Project) *gitlab.ProjectPage {
	return &gitlab.ProjectPage{Nodes: projects}
}

func project(id, name string, issues ...*gitlab.Issue) *gitlab.Project {
	return &gitlab.Project{
		ID:     id,
		Name:   name,
		Issues: &gitlab.IssueConnection{Nodes: issues},
	}
}

func issue(iid, title string, timelogs ...*gitlab.Timelog) *gitlab.Issue {
	return &gitlab.Issue{
		IID:      iid,
		Title:    title,
		Timelogs: &gitlab.TimelogConnection{Nodes: timelogs},
	}
}

func timelog(username string, spentAt string, seconds int64) *gitlab.Timelog {
	return &gitlab.Timelog{
		TimeSpent: seconds,
		SpentAt:   spentAt,
		User:      &gitlab.TimelogUser{Username: username},
	}
}

func TestExtractPage(t *testing.T) {
	p := page(project("gid://gitlab/Project/101", "backend",
		issue("12", "Fix login",
			timelog("me", "2026-03-10T09:00:00Z", 3600),
			timelog("someone-else", "2026-03-10T10:00:00Z", 1800),
			timelog("me", "2026-03-11T09:00:00Z", 900),
		),
	))

	entries := extractPage(p, "me", "me@example.com")

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	first := entries[0]
	if first.UserEmail != "me@example.com" {
		t.Errorf("UserEmail = %q, want %q", first.UserEmail, "me@example.com")
	}
	if first.ProjectID != 101 {
		t.Errorf("ProjectID = %d, want 101 (prefix not stripped?)", first.ProjectID)
	}
	if first.ProjectName != "backend" {
		t.Errorf("ProjectName = %q, want %q", first.ProjectName, "backend")
	}
	if first.IssueID != 12 {
		t.Errorf("IssueID = %d, want 12", first.IssueID)
	}
	if first.TimeSpent != 3600 {
		t.Errorf("TimeSpent = %d, want 3600", first.TimeSpent)
	}
	want := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if !first.SpentAt.Equal(want) {
		t.Errorf("SpentAt = %v, want %v", first.SpentAt, want)
	}
}

func TestExtractPageNeverIncludesOtherUsers(t *testing.T) {
	p := page(
		project("gid://gitlab/Project/1", "a",
			issue("1", "x", timelog("alice", "2026-01-01T00:00:00Z", 60)),
			issue("2", "y", timelog("bob", "2026-01-01T00:00:00Z", 60)),
		),
		project("gid://gitlab/Project/2", "b",
			issue("3", "z", timelog("carol", "2026-01-01T00:00:00Z", 60)),
		),
	)

	if entries := extractPage(p, "me", "me@example.com"); len(entries) != 0 {
		t.Errorf("got %d entries for a page with no matching timelogs, want 0", len(entries))
	}
}

func TestExtractPageToleratesMissingCollections(t *testing.T) {
	tests := []struct {
		name string
		page *gitlab.ProjectPage
	}{
		{"nil page", nil},
		{"no projects", &gitlab.ProjectPage{}},
		{"nil project node", page(nil)},
		{"project without issues", page(&gitlab.Project{ID: "gid://gitlab/Project/1"})},
		{"nil issue node", page(project("gid://gitlab/Project/1", "a", nil))},
		{"issue without timelogs", page(project("gid://gitlab/Project/1", "a", &gitlab.Issue{IID: "1"}))},
		{"nil timelog node", page(project("gid://gitlab/Project/1", "a", issue("1", "x", nil)))},
		{"timelog without user", page(project("gid://gitlab/Project/1", "a",
			issue("1", "x", &gitlab.Timelog{TimeSpent: 60, SpentAt: "2026-01-01T00:00:00Z"})))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if entries := extractPage(tt.page, "me", "me@example.com"); len(entries) != 0 {
				t.Errorf("got %d entries, want 0", len(entries))
			}
		})
	}
}

func TestExtractPageSkipsMalformedTimelogs(t *testing.T) {
	p := page(
		// Unparseable project id: all of its timelogs are skipped.
		project("gid://gitlab/Project/not-a-number", "weird",
			issue("1", "x", timelog("me", "2026-01-01T00:00:00Z", 60))),
		project("gid://gitlab/Project/2", "ok",
			// Unparseable issue iid.
			issue("abc", "y", timelog("me", "2026-01-01T00:00:00Z", 60)),
			issue("3", "z",
				timelog("me", "not-a-timestamp", 60),
				timelog("me", "2026-01-01T00:00:00Z", -120), // negative duration
				timelog("me", "2026-01-02T00:00:00Z", 60),
			),
		),
	)

	entries := extractPage(p, "me", "me@example.com")
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].IssueID != 3 || entries[0].TimeSpent != 60 {
		t.Errorf("wrong surviving entry: %+v", entries[0])
	}
}

func TestExtractPageIsRestartable(t *testing.T) {
	p := page(project("gid://gitlab/Project/1", "a",
		issue("1", "x", timelog("me", "2026-01-01T00:00:00Z", 60))))

	first := extractPage(p, "me", "me@example.com")
	second := extractPage(p, "me", "me@example.com")

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("got %d and %d entries, want 1 and 1", len(first), len(second))
	}
	if first[0] != second[0] {
		t.Errorf("re-derived entry differs: %+v vs %+v", first[0], second[0])
	}
}
