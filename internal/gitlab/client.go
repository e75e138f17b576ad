// Package gitlab provides a GraphQL client for GitLab timelog queries.
package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// pageSize is the "first N" cap applied at every nesting level of the
// timelog query. Projects, issues and timelogs are each capped at this
// size per call; issues or timelogs beyond the cap for a single parent
// node are not reachable without paginating that nested level, which
// this client does not do.
const pageSize = 100

const currentUserQuery = `
query {
  currentUser {
    id
    name
    username
    email
  }
}`

var timeSpentQuery = fmt.Sprintf(`
query GetTimeSpent($after: String) {
  projects(membership: true, first: %[1]d, after: $after) {
    nodes {
      id
      name
      fullPath
      issues(first: %[1]d) {
        nodes {
          id
          iid
          title
          webUrl
          state
          timeEstimate
          totalTimeSpent
          timelogs(first: %[1]d) {
            nodes {
              timeSpent
              spentAt
              user {
                username
                email
              }
            }
          }
          pageInfo {
            endCursor
            hasNextPage
          }
        }
      }
      pageInfo {
        endCursor
        hasNextPage
      }
    }
  }
}`, pageSize)

// Client is a GitLab GraphQL API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a GitLab client for the instance at baseURL (e.g.
// "https://gitlab.com") authenticated with a personal access token.
func New(ctx context.Context, baseURL, token string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(ctx, src)
	httpClient.Timeout = 30 * time.Second

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// graphQLRequest is the JSON body of a GraphQL POST.
type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// graphQLResponse is the standard GraphQL response envelope.
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// query posts a GraphQL query and unmarshals the data payload into out.
func (c *Client) query(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/graphql", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			messages[i] = e.Message
		}
		return &GraphQLError{Messages: messages}
	}

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("empty response from GitLab API")
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}

	return nil
}

// CurrentUser resolves the authenticated user's identity.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var data struct {
		CurrentUser *User `json:"currentUser"`
	}
	if err := c.query(ctx, currentUserQuery, nil, &data); err != nil {
		return nil, err
	}

	if data.CurrentUser == nil || data.CurrentUser.Username == "" {
		return nil, fmt.Errorf("could not get current user information")
	}

	return data.CurrentUser, nil
}

// TimeSpentPage fetches one page of the nested projects/issues/timelogs
// query. Pass an empty cursor for the first page; continue with the
// returned PageInfo.EndCursor while PageInfo.HasNextPage is true.
func (c *Client) TimeSpentPage(ctx context.Context, after string) (*ProjectPage, error) {
	variables := map[string]interface{}{"after": nil}
	if after != "" {
		variables["after"] = after
	}

	var data struct {
		Projects *ProjectPage `json:"projects"`
	}
	if err := c.query(ctx, timeSpentQuery, variables, &data); err != nil {
		return nil, err
	}

	// A well-formed response always carries the projects connection;
	// its absence means the response shape is unexpected.
	if data.Projects == nil {
		return nil, fmt.Errorf("invalid response from GitLab API: missing projects")
	}

	return data.Projects, nil
}
