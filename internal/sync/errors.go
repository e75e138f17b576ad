package sync

import (
	"errors"
	"fmt"

	"github.com/minhnd/timespent/internal/gitlab"
)

// FormatError renders a sync failure as a user-facing message,
// distinguishing transport failures, API/GraphQL failures, and everything
// else.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var gqlErr *gitlab.GraphQLError
	var apiErr *gitlab.APIError

	switch {
	case gitlab.IsNetworkError(err):
		return fmt.Sprintf("connection error: %v", err)
	case errors.As(err, &gqlErr):
		return fmt.Sprintf("GitLab GraphQL error: %v", gqlErr)
	case errors.As(err, &apiErr):
		return fmt.Sprintf("GitLab API error (%s): %s", apiErr.Status, apiErr.Body)
	default:
		return err.Error()
	}
}
