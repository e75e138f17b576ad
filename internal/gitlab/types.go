package gitlab

// User represents the authenticated GitLab user.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PageInfo carries GraphQL cursor pagination metadata.
type PageInfo struct {
	EndCursor   string `json:"endCursor"`
	HasNextPage bool   `json:"hasNextPage"`
}

// TimelogUser identifies the user who logged the time.
type TimelogUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Timelog represents one logged time record on an issue.
type Timelog struct {
	TimeSpent int64        `json:"timeSpent"` // seconds
	SpentAt   string       `json:"spentAt"`
	User      *TimelogUser `json:"user"`
}

// TimelogConnection is the nested timelogs collection of an issue.
type TimelogConnection struct {
	Nodes []*Timelog `json:"nodes"`
}

// Issue represents a GitLab issue with its timelogs.
type Issue struct {
	ID             string             `json:"id"`
	IID            string             `json:"iid"`
	Title          string             `json:"title"`
	WebURL         string             `json:"webUrl"`
	State          string             `json:"state"`
	TimeEstimate   int64              `json:"timeEstimate"`
	TotalTimeSpent int64              `json:"totalTimeSpent"`
	Timelogs       *TimelogConnection `json:"timelogs"`
}

// IssueConnection is the nested issues collection of a project.
type IssueConnection struct {
	Nodes    []*Issue `json:"nodes"`
	PageInfo PageInfo `json:"pageInfo"`
}

// Project represents a GitLab project node.
// The ID is a global id of the form "gid://gitlab/Project/123".
type Project struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	FullPath string           `json:"fullPath"`
	Issues   *IssueConnection `json:"issues"`
}

// ProjectPage is one page of the projects/issues/timelogs query.
type ProjectPage struct {
	Nodes    []*Project `json:"nodes"`
	PageInfo PageInfo   `json:"pageInfo"`
}
