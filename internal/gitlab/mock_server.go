package gitlab

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockServer provides a fake GitLab GraphQL API for testing.
type MockServer struct {
	*httptest.Server
	mu    sync.RWMutex
	user  *User
	pages []*ProjectPage

	// failStatus, when non-zero, makes every request answer with that
	// HTTP status instead of a GraphQL response.
	failStatus int
	// failPagesStatus is like failStatus but only applies to the
	// timelog page query, leaving currentUser working.
	failPagesStatus int
	// graphQLErrors, when set, are returned in the errors array of
	// every response.
	graphQLErrors []string

	queries int
}

// NewMockServer creates a mock GitLab GraphQL server.
func NewMockServer() *MockServer {
	m := &MockServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/graphql", m.handleGraphQL)

	m.Server = httptest.NewServer(mux)
	return m
}

// SetUser sets the user returned by the currentUser query.
func (m *MockServer) SetUser(user *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = user
}

// AddPage appends a page of project nodes. Pagination metadata is derived
// from the page list: every page but the last reports hasNextPage=true
// with a synthetic cursor.
func (m *MockServer) AddPage(projects ...*Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = append(m.pages, &ProjectPage{Nodes: projects})
}

// FailWith makes every subsequent request answer with the given HTTP status.
func (m *MockServer) FailWith(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failStatus = status
}

// FailPagesWith makes the timelog page query answer with the given HTTP
// status while currentUser keeps working.
func (m *MockServer) FailPagesWith(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPagesStatus = status
}

// FailWithGraphQLErrors makes every subsequent response carry the given
// GraphQL error messages.
func (m *MockServer) FailWithGraphQLErrors(messages ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.graphQLErrors = messages
}

// Queries returns the number of GraphQL requests served.
func (m *MockServer) Queries() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.queries
}

// Reset clears all configured state.
func (m *MockServer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	m.pages = nil
	m.failStatus = 0
	m.failPagesStatus = 0
	m.graphQLErrors = nil
	m.queries = 0
}

// cursorFor returns the synthetic continuation cursor for a page index.
func cursorFor(index int) string {
	return "cursor-" + string(rune('0'+index))
}

// pageIndex resolves a request cursor back to a page index.
func (m *MockServer) pageIndex(after string) int {
	if after == "" {
		return 0
	}
	for i := range m.pages {
		if cursorFor(i) == after {
			return i
		}
	}
	return len(m.pages)
}

func (m *MockServer) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Query     string `json:"query"`
		Variables struct {
			After *string `json:"after"`
		} `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.queries++
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.failStatus != 0 {
		http.Error(w, "mock failure", m.failStatus)
		return
	}

	if len(m.graphQLErrors) > 0 {
		writeGraphQLErrors(w, m.graphQLErrors)
		return
	}

	if strings.Contains(req.Query, "currentUser") {
		writeData(w, map[string]interface{}{"currentUser": m.user})
		return
	}

	if m.failPagesStatus != 0 {
		http.Error(w, "mock failure", m.failPagesStatus)
		return
	}

	after := ""
	if req.Variables.After != nil {
		after = *req.Variables.After
	}
	idx := m.pageIndex(after)

	page := &ProjectPage{Nodes: []*Project{}}
	if idx < len(m.pages) {
		page.Nodes = m.pages[idx].Nodes
		if idx < len(m.pages)-1 {
			page.PageInfo = PageInfo{EndCursor: cursorFor(idx + 1), HasNextPage: true}
		}
	}

	writeData(w, map[string]interface{}{"projects": page})
}

func writeData(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func writeGraphQLErrors(w http.ResponseWriter, messages []string) {
	errs := make([]map[string]string, len(messages))
	for i, msg := range messages {
		errs[i] = map[string]string{"message": msg}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"data": nil, "errors": errs})
}
