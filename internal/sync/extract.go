package sync

import (
	"strconv"
	"strings"
	"time"

	"github.com/minhnd/timespent/internal/gitlab"
	"github.com/minhnd/timespent/internal/store"
)

// projectIDPrefix is the GitLab global id prefix stripped from project ids.
const projectIDPrefix = "gid://gitlab/Project/"

// extractPage flattens one fetched page of nested project/issue/timelog
// nodes into time entries for the given user. It is a pure transformation:
// timelogs logged by other users are discarded, missing nested collections
// at any level are treated as empty, and individual timelogs that cannot
// be mapped (unparseable spent-at, negative duration, unparseable ids)
// are skipped without failing the page.
func extractPage(page *gitlab.ProjectPage, username, userEmail string) []store.TimeEntry {
	if page == nil {
		return nil
	}

	var entries []store.TimeEntry
	for _, project := range page.Nodes {
		if project == nil || project.Issues == nil {
			continue
		}

		projectID, err := parseProjectID(project.ID)
		if err != nil {
			continue
		}

		for _, issue := range project.Issues.Nodes {
			if issue == nil || issue.Timelogs == nil {
				continue
			}

			issueID, err := strconv.ParseInt(issue.IID, 10, 64)
			if err != nil {
				continue
			}

			for _, timelog := range issue.Timelogs.Nodes {
				if timelog == nil || timelog.User == nil || timelog.User.Username != username {
					continue
				}
				if timelog.TimeSpent < 0 {
					continue
				}

				spentAt, err := time.Parse(time.RFC3339, timelog.SpentAt)
				if err != nil {
					continue
				}

				entries = append(entries, store.TimeEntry{
					UserEmail:   userEmail,
					ProjectID:   projectID,
					ProjectName: project.Name,
					IssueID:     issueID,
					IssueTitle:  issue.Title,
					SpentAt:     spentAt,
					TimeSpent:   timelog.TimeSpent,
				})
			}
		}
	}

	return entries
}

// parseProjectID strips the GitLab global id prefix and parses the
// remainder as an integer project id.
func parseProjectID(gid string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(gid, projectIDPrefix), 10, 64)
}
