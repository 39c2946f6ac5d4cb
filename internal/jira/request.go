package jira

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// apiPrefix is the REST API root relative to the Jira base URL.
const apiPrefix = "rest/api/2/"

// startedLayout is the timestamp format Jira expects for worklog "started".
const startedLayout = "2006-01-02T15:04:05.000-0700"

// Request describes a single Jira REST call. It is immutable once built.
type Request struct {
	method string
	path   string // relative to the base URL, or absolute
	query  url.Values
	body   any
	accept string // Accept header, application/json when empty
}

// newRequest builds a Request, dropping empty query keys and values.
func newRequest(method, path string, query map[string]string, body any) Request {
	q := url.Values{}
	for k, v := range query {
		if k != "" && v != "" {
			q.Set(k, v)
		}
	}
	return Request{method: method, path: path, query: q, body: body}
}

// Method returns the HTTP method.
func (r Request) Method() string { return r.method }

// Path returns the resource path.
func (r Request) Path() string { return r.path }

// Query returns a copy of the query parameters.
func (r Request) Query() url.Values {
	out := url.Values{}
	for k, v := range r.query {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Body returns the JSON payload, or nil.
func (r Request) Body() any { return r.body }

// HasBody reports whether the request carries a payload.
func (r Request) HasBody() bool { return r.body != nil }

// String renders "METHOD path?query" for logs.
func (r Request) String() string {
	if len(r.query) == 0 {
		return r.method + " " + r.path
	}
	return r.method + " " + r.path + "?" + r.query.Encode()
}

// WorklogCommentPolicy controls where a worklog comment ends up.
type WorklogCommentPolicy int

const (
	// WorklogOnly posts the comment as part of the worklog.
	WorklogOnly WorklogCommentPolicy = iota
	// CommentOnly posts the worklog without comment and the comment separately.
	CommentOnly
	// WorklogAndComment posts the comment in the worklog and as a separate comment.
	WorklogAndComment
)

// ParseWorklogCommentPolicy parses "worklog", "comment" or "both". Empty means worklog.
func ParseWorklogCommentPolicy(s string) (WorklogCommentPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "worklog":
		return WorklogOnly, nil
	case "comment":
		return CommentOnly, nil
	case "both":
		return WorklogAndComment, nil
	default:
		return WorklogOnly, fmt.Errorf("unknown worklog comment policy %q", s)
	}
}

func (p WorklogCommentPolicy) String() string {
	switch p {
	case CommentOnly:
		return "comment"
	case WorklogAndComment:
		return "both"
	default:
		return "worklog"
	}
}

func (p WorklogCommentPolicy) commentInWorklog() bool { return p != CommentOnly }
func (p WorklogCommentPolicy) separateComment() bool  { return p != WorklogOnly }

// EstimateMethod controls how Jira adjusts the remaining estimate.
type EstimateMethod string

const (
	EstimateAuto   EstimateMethod = "auto"
	EstimateLeave  EstimateMethod = "leave"
	EstimateNew    EstimateMethod = "new"
	EstimateManual EstimateMethod = "manual"
)

// EstimateUpdate is the estimate policy applied to posted worklogs.
type EstimateUpdate struct {
	Method EstimateMethod
	Value  string // Jira time notation, required for new and manual
}

// SearchOptions holds the optional parameters of a JQL search.
type SearchOptions struct {
	Fields     []string
	StartAt    int
	MaxResults int
}

// RequestFactory builds Requests for Jira operations. All methods are pure.
type RequestFactory struct {
	CommentPolicy WorklogCommentPolicy
	Estimate      EstimateUpdate
}

// CreateAuthenticateRequest returns the request for the current user's profile.
func (f RequestFactory) CreateAuthenticateRequest() Request {
	return newRequest(http.MethodGet, apiPrefix+"myself", nil, nil)
}

// CreateSearchRequest returns a JQL search request.
func (f RequestFactory) CreateSearchRequest(jql string, opts SearchOptions) (Request, error) {
	if strings.TrimSpace(jql) == "" {
		return Request{}, invalidInput("missing JQL query")
	}

	query := map[string]string{
		"jql":    jql,
		"fields": strings.Join(opts.Fields, ","),
	}
	if opts.StartAt > 0 {
		query["startAt"] = strconv.Itoa(opts.StartAt)
	}
	if opts.MaxResults > 0 {
		query["maxResults"] = strconv.Itoa(opts.MaxResults)
	}
	return newRequest(http.MethodGet, apiPrefix+"search", query, nil), nil
}

// CreateIssueRequest returns a request for a single issue, optionally limited to fields.
func (f RequestFactory) CreateIssueRequest(issueKey string, fields ...string) (Request, error) {
	p, err := issuePath(issueKey, "")
	if err != nil {
		return Request{}, err
	}
	return newRequest(http.MethodGet, p, map[string]string{"fields": strings.Join(fields, ",")}, nil), nil
}

// CreateTransitionsRequest returns the request listing available transitions.
func (f RequestFactory) CreateTransitionsRequest(issueKey string) (Request, error) {
	p, err := issuePath(issueKey, "transitions")
	if err != nil {
		return Request{}, err
	}
	return newRequest(http.MethodGet, p, nil, nil), nil
}

// CreateDoTransitionRequest returns the request applying transitionID to the issue.
func (f RequestFactory) CreateDoTransitionRequest(issueKey, transitionID string) (Request, error) {
	p, err := issuePath(issueKey, "transitions")
	if err != nil {
		return Request{}, err
	}
	transitionID = strings.TrimSpace(transitionID)
	if transitionID == "" {
		return Request{}, invalidInput("missing transition id")
	}
	body := map[string]any{
		"transition": map[string]string{"id": transitionID},
	}
	return newRequest(http.MethodPost, p, nil, body), nil
}

// CreatePostWorklogRequest returns the worklog request. The comment is only
// included when the comment policy posts comments as part of the worklog.
func (f RequestFactory) CreatePostWorklogRequest(issueKey string, started time.Time, timeSpentSeconds int64, comment string) (Request, error) {
	p, err := issuePath(issueKey, "worklog")
	if err != nil {
		return Request{}, err
	}
	if timeSpentSeconds <= 0 {
		return Request{}, invalidInput("time spent must be > 0, got %d", timeSpentSeconds)
	}
	if started.IsZero() {
		return Request{}, invalidInput("missing worklog start time")
	}

	query, err := f.estimateQuery()
	if err != nil {
		return Request{}, err
	}

	body := map[string]any{
		"started":          started.Format(startedLayout),
		"timeSpentSeconds": timeSpentSeconds,
	}
	if c := strings.TrimSpace(comment); c != "" && f.CommentPolicy.commentInWorklog() {
		body["comment"] = c
	}
	return newRequest(http.MethodPost, p, query, body), nil
}

// CreatePostCommentRequest returns a request adding a comment to the issue.
func (f RequestFactory) CreatePostCommentRequest(issueKey, comment string) (Request, error) {
	p, err := issuePath(issueKey, "comment")
	if err != nil {
		return Request{}, err
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return Request{}, invalidInput("missing comment")
	}
	return newRequest(http.MethodPost, p, nil, map[string]string{"body": comment}), nil
}

// CreateWorklogRequests returns the worklog request followed by a comment
// request when the comment policy asks for one and the comment is not blank.
func (f RequestFactory) CreateWorklogRequests(issueKey string, started time.Time, timeSpentSeconds int64, comment string) ([]Request, error) {
	wl, err := f.CreatePostWorklogRequest(issueKey, started, timeSpentSeconds, comment)
	if err != nil {
		return nil, err
	}
	out := []Request{wl}
	if strings.TrimSpace(comment) == "" || !f.CommentPolicy.separateComment() {
		return out, nil
	}
	c, err := f.CreatePostCommentRequest(issueKey, comment)
	if err != nil {
		return nil, err
	}
	return append(out, c), nil
}

// CreateFavouriteFiltersRequest returns the request listing the user's favourite filters.
func (f RequestFactory) CreateFavouriteFiltersRequest() Request {
	return newRequest(http.MethodGet, apiPrefix+"filter/favourite", nil, nil)
}

// CreateAvatarImageRequest returns a request for an avatar image at an absolute URL.
func (f RequestFactory) CreateAvatarImageRequest(avatarURL string) (Request, error) {
	avatarURL = strings.TrimSpace(avatarURL)
	if avatarURL == "" {
		return Request{}, invalidInput("missing avatar URL")
	}
	u, err := url.Parse(avatarURL)
	if err != nil || !u.IsAbs() {
		return Request{}, invalidInput("avatar URL %q must be absolute", avatarURL)
	}
	r := newRequest(http.MethodGet, u.String(), nil, nil)
	r.accept = "image/*"
	return r, nil
}

// estimateQuery translates the estimate policy into worklog query parameters.
func (f RequestFactory) estimateQuery() (map[string]string, error) {
	method := EstimateMethod(strings.ToLower(strings.TrimSpace(string(f.Estimate.Method))))
	value := strings.TrimSpace(f.Estimate.Value)

	switch method {
	case "", EstimateAuto:
		return nil, nil
	case EstimateLeave:
		return map[string]string{"adjustEstimate": string(EstimateLeave)}, nil
	case EstimateNew:
		if value == "" {
			return nil, invalidInput("estimate method %q requires a value", method)
		}
		return map[string]string{"adjustEstimate": string(EstimateNew), "newEstimate": value}, nil
	case EstimateManual:
		if value == "" {
			return nil, invalidInput("estimate method %q requires a value", method)
		}
		return map[string]string{"adjustEstimate": string(EstimateManual), "reduceBy": value}, nil
	default:
		return nil, invalidInput("unknown estimate method %q", f.Estimate.Method)
	}
}

// issuePath returns the issue resource path, optionally with a sub-resource.
func issuePath(issueKey, sub string) (string, error) {
	issueKey = strings.TrimSpace(issueKey)
	if issueKey == "" {
		return "", invalidInput("missing issue key")
	}
	p := apiPrefix + "issue/" + url.PathEscape(issueKey)
	if sub != "" {
		p += "/" + sub
	}
	return p, nil
}
