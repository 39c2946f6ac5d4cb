package jira

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultAvatarSize is the avatar variant requested when none is given.
const DefaultAvatarSize = "48x48"

// API exposes typed Jira operations on top of a Requester.
type API struct {
	requester *Requester
	factory   RequestFactory
}

// NewAPI returns an API issuing requests built by factory through requester.
func NewAPI(requester *Requester, factory RequestFactory) *API {
	return &API{requester: requester, factory: factory}
}

// WithCredentials returns a copy of the API bound to c.
func (a *API) WithCredentials(c Credentials) *API {
	return &API{requester: a.requester.WithCredentials(c), factory: a.factory}
}

// Requester returns the underlying Requester.
func (a *API) Requester() *Requester { return a.requester }

// Factory returns the RequestFactory used to build requests.
func (a *API) Factory() RequestFactory { return a.factory }

// Myself returns the raw profile of the authenticated user.
func (a *API) Myself(ctx context.Context) (Value, error) {
	return a.requester.Do(ctx, a.factory.CreateAuthenticateRequest())
}

// Authenticate checks the credentials and returns the user's profile.
func (a *API) Authenticate(ctx context.Context) (User, error) {
	var u User
	if err := a.requester.DoInto(ctx, a.factory.CreateAuthenticateRequest(), &u); err != nil {
		return User{}, fmt.Errorf("authenticate: %w", err)
	}
	return u, nil
}

// AvatarURL returns the URL of the user's avatar in the given size.
func (a *API) AvatarURL(ctx context.Context, size string) (string, error) {
	if size == "" {
		size = DefaultAvatarSize
	}
	me, err := a.Myself(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch profile: %w", err)
	}
	u, err := me.StringAt("avatarUrls", size)
	if err != nil {
		return "", fmt.Errorf("avatar url: %w", err)
	}
	return u, nil
}

// LoadAvatar fetches the avatar URL and then the image in the background.
func (a *API) LoadAvatar(ctx context.Context, size string) *Future[Avatar] {
	return Go(ctx, func(ctx context.Context) (Avatar, error) {
		u, err := a.AvatarURL(ctx, size)
		if err != nil {
			return Avatar{}, err
		}
		req, err := a.factory.CreateAvatarImageRequest(u)
		if err != nil {
			return Avatar{}, err
		}
		data, contentType, err := a.requester.DoRaw(ctx, req)
		if err != nil {
			return Avatar{}, fmt.Errorf("load avatar image: %w", err)
		}
		return Avatar{URL: u, ContentType: contentType, Data: data}, nil
	})
}

// Search runs a JQL query.
func (a *API) Search(ctx context.Context, jql string, opts SearchOptions) (SearchResult, error) {
	req, err := a.factory.CreateSearchRequest(jql, opts)
	if err != nil {
		return SearchResult{}, err
	}
	var res SearchResult
	if err := a.requester.DoInto(ctx, req, &res); err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	return res, nil
}

// SearchAll follows startAt until every matching issue is collected.
// opts.MaxResults is the page size. Offsets advance from the requested
// startAt, and a page that adds no unseen issue ends the walk.
func (a *API) SearchAll(ctx context.Context, jql string, opts SearchOptions) (SearchResult, error) {
	var all SearchResult
	seen := map[string]struct{}{}
	for {
		page, err := a.Search(ctx, jql, opts)
		if err != nil {
			return SearchResult{}, err
		}
		all.Total = page.Total

		added := 0
		for _, is := range page.Issues {
			id := is.Key + "/" + is.ID
			if _, dup := seen[id]; dup && id != "/" {
				continue
			}
			seen[id] = struct{}{}
			all.Issues = append(all.Issues, is)
			added++
		}

		opts.StartAt += len(page.Issues)
		if added == 0 || len(all.Issues) >= page.Total {
			break
		}
	}
	all.MaxResults = len(all.Issues)
	return all, nil
}

// Issue returns a single issue limited to the given fields.
func (a *API) Issue(ctx context.Context, issueKey string, fields ...string) (Issue, error) {
	req, err := a.factory.CreateIssueRequest(issueKey, fields...)
	if err != nil {
		return Issue{}, err
	}
	var is Issue
	if err := a.requester.DoInto(ctx, req, &is); err != nil {
		return Issue{}, fmt.Errorf("issue %s: %w", issueKey, err)
	}
	return is, nil
}

// IssueSummary returns the summary of an issue.
func (a *API) IssueSummary(ctx context.Context, issueKey string) (string, error) {
	is, err := a.Issue(ctx, issueKey, "summary")
	if err != nil {
		return "", err
	}
	return is.Fields.Summary, nil
}

// TimeTracking returns the estimate fields of an issue.
func (a *API) TimeTracking(ctx context.Context, issueKey string) (TimeTracking, error) {
	is, err := a.Issue(ctx, issueKey, "timetracking")
	if err != nil {
		return TimeTracking{}, err
	}
	if is.Fields.TimeTracking == nil {
		return TimeTracking{}, nil
	}
	return *is.Fields.TimeTracking, nil
}

// FavouriteFilters returns the user's favourite filters.
func (a *API) FavouriteFilters(ctx context.Context) ([]Filter, error) {
	var filters []Filter
	if err := a.requester.DoInto(ctx, a.factory.CreateFavouriteFiltersRequest(), &filters); err != nil {
		return nil, fmt.Errorf("favourite filters: %w", err)
	}
	return filters, nil
}

// Transitions returns the transitions currently available for an issue.
func (a *API) Transitions(ctx context.Context, issueKey string) ([]Transition, error) {
	req, err := a.factory.CreateTransitionsRequest(issueKey)
	if err != nil {
		return nil, err
	}
	var list TransitionList
	if err := a.requester.DoInto(ctx, req, &list); err != nil {
		return nil, fmt.Errorf("transitions %s: %w", issueKey, err)
	}
	return list.Transitions, nil
}

// DoTransition applies a transition by id.
func (a *API) DoTransition(ctx context.Context, issueKey, transitionID string) error {
	req, err := a.factory.CreateDoTransitionRequest(issueKey, transitionID)
	if err != nil {
		return err
	}
	if err := a.requester.DoInto(ctx, req, nil); err != nil {
		return fmt.Errorf("transition %s: %w", issueKey, err)
	}
	return nil
}

// StartIssue applies the first of names (case-insensitive) that is available
// for the issue. ok is false when none of them is available.
func (a *API) StartIssue(ctx context.Context, issueKey string, names []string) (t Transition, ok bool, err error) {
	available, err := a.Transitions(ctx, issueKey)
	if err != nil {
		return Transition{}, false, err
	}

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		for _, tr := range available {
			if !strings.EqualFold(tr.Name, name) {
				continue
			}
			if err := a.DoTransition(ctx, issueKey, tr.ID); err != nil {
				return Transition{}, false, err
			}
			return tr, true, nil
		}
	}
	return Transition{}, false, nil
}

// PostWorklog posts the worklog and, depending on the comment policy, a
// separate comment. The returned Comment is zero when none was posted.
func (a *API) PostWorklog(ctx context.Context, issueKey string, started time.Time, spent time.Duration, comment string) (Worklog, Comment, error) {
	reqs, err := a.factory.CreateWorklogRequests(issueKey, started, int64(spent/time.Second), comment)
	if err != nil {
		return Worklog{}, Comment{}, err
	}

	var wl Worklog
	if err := a.requester.DoInto(ctx, reqs[0], &wl); err != nil {
		return Worklog{}, Comment{}, fmt.Errorf("post worklog %s: %w", issueKey, err)
	}
	if len(reqs) == 1 {
		return wl, Comment{}, nil
	}

	var c Comment
	if err := a.requester.DoInto(ctx, reqs[1], &c); err != nil {
		return wl, Comment{}, fmt.Errorf("post comment %s: %w", issueKey, err)
	}
	return wl, c, nil
}

// PostComment adds a comment to an issue.
func (a *API) PostComment(ctx context.Context, issueKey, comment string) (Comment, error) {
	req, err := a.factory.CreatePostCommentRequest(issueKey, comment)
	if err != nil {
		return Comment{}, err
	}
	var c Comment
	if err := a.requester.DoInto(ctx, req, &c); err != nil {
		return Comment{}, fmt.Errorf("post comment %s: %w", issueKey, err)
	}
	return c, nil
}
