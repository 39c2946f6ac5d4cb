package jira

// User is the profile returned by the "myself" resource.
type User struct {
	Name         string            `json:"name"`
	AccountID    string            `json:"accountId"`
	EmailAddress string            `json:"emailAddress"`
	DisplayName  string            `json:"displayName"`
	AvatarURLs   map[string]string `json:"avatarUrls"`
	TimeZone     string            `json:"timeZone"`
}

// SearchResult represents the top-level structure from the JIRA search API
type SearchResult struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

// Issue represents a single issue in the search result
type Issue struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Fields Fields `json:"fields"`
}

// Fields represents the inner fields of a JIRA issue
type Fields struct {
	Summary      string        `json:"summary"`
	Status       *Status       `json:"status,omitempty"`
	Assignee     *UserRef      `json:"assignee,omitempty"` // nullable
	Project      *Project      `json:"project,omitempty"`
	TimeTracking *TimeTracking `json:"timetracking,omitempty"`
}

// Status represents the status field of the issue
type Status struct {
	Name string `json:"name"`
}

// UserRef is a user as embedded in issue fields.
type UserRef struct {
	DisplayName string `json:"displayName"`
}

// Project is the project an issue belongs to.
type Project struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// TimeTracking holds the estimate fields of an issue.
type TimeTracking struct {
	OriginalEstimate         string `json:"originalEstimate"`
	RemainingEstimate        string `json:"remainingEstimate"`
	TimeSpent                string `json:"timeSpent"`
	OriginalEstimateSeconds  int64  `json:"originalEstimateSeconds"`
	RemainingEstimateSeconds int64  `json:"remainingEstimateSeconds"`
	TimeSpentSeconds         int64  `json:"timeSpentSeconds"`
}

// Transition is a workflow step available for an issue.
type Transition struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	To   *Status `json:"to,omitempty"`
}

// TransitionList is the body of the transitions resource.
type TransitionList struct {
	Transitions []Transition `json:"transitions"`
}

// Filter is a saved JQL filter.
type Filter struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	JQL  string `json:"jql"`
}

// Worklog is a posted worklog as returned by Jira.
type Worklog struct {
	ID               string `json:"id"`
	Started          string `json:"started"`
	TimeSpent        string `json:"timeSpent"`
	TimeSpentSeconds int64  `json:"timeSpentSeconds"`
	Comment          string `json:"comment"`
}

// Comment is a posted comment as returned by Jira.
type Comment struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

// Avatar is a downloaded avatar image.
type Avatar struct {
	URL         string
	ContentType string
	Data        []byte
}
