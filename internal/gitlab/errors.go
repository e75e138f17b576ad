package gitlab

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// APIError is returned when the GitLab endpoint answers with a non-200 status.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitLab API error: %s - %s", e.Status, e.Body)
}

// GraphQLError is returned when the response carries a GraphQL errors array.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("GraphQL errors: %s", strings.Join(e.Messages, "; "))
}

// IsNetworkError reports whether err originates from the transport layer
// (connection refused, DNS failure, timeout) rather than from the API.
func IsNetworkError(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
