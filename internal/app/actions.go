package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gi8lino/stopwatch/internal/config"
	"github.com/gi8lino/stopwatch/internal/flag"
	"github.com/gi8lino/stopwatch/internal/jira"
)

// result is the outcome of an action, rendered by template name.
type result struct {
	template string
	data     any
}

// actions dispatches one CLI action against the Jira API.
type actions struct {
	api      *jira.API
	flags    flag.Config
	settings config.Settings // resolved, with overrides
	stored   config.Settings // as read from disk
	logger   *slog.Logger
}

func (a *actions) run(ctx context.Context) (result, error) {
	switch a.flags.Action {
	case flag.ActionAuth:
		return a.auth(ctx)
	case flag.ActionAvatar:
		return a.avatar(ctx)
	case flag.ActionSearch:
		return a.search(ctx)
	case flag.ActionIssue:
		return a.issue(ctx)
	case flag.ActionTransitions:
		return a.transitions(ctx)
	case flag.ActionTransition:
		return a.transition(ctx)
	case flag.ActionStart:
		return a.start(ctx)
	case flag.ActionWorklog:
		return a.worklog(ctx)
	case flag.ActionComment:
		return a.comment(ctx)
	case flag.ActionFilters:
		return a.filters(ctx)
	default:
		return result{}, fmt.Errorf("unknown action %q", a.flags.Action)
	}
}

func (a *actions) auth(ctx context.Context) (result, error) {
	u, err := a.api.Authenticate(ctx)
	if err != nil {
		return result{}, err
	}
	a.logger.Info("authenticated", "user", u.Name, "displayName", u.DisplayName)
	return result{template: "auth", data: u}, nil
}

// avatar loads the avatar in the background and stores its URL in the settings file.
func (a *actions) avatar(ctx context.Context) (result, error) {
	f := a.api.LoadAvatar(ctx, a.flags.AvatarSize)
	defer f.Cancel()

	av, err := f.Await(ctx)
	if err != nil {
		return result{}, err
	}

	if av.URL != a.stored.JiraAvatarURL {
		s := a.stored
		s.JiraAvatarURL = av.URL
		if err := config.SaveSettings(a.flags.Settings, s); err != nil {
			a.logger.Warn("failed to save avatar url", "path", a.flags.Settings, "error", err)
		} else {
			a.logger.Debug("saved avatar url", "path", a.flags.Settings, "url", av.URL)
		}
	}

	return result{template: "avatar", data: map[string]any{
		"URL":         av.URL,
		"ContentType": av.ContentType,
		"Size":        len(av.Data),
	}}, nil
}

func (a *actions) search(ctx context.Context) (result, error) {
	opts := jira.SearchOptions{
		Fields:     []string{"summary", "status", "assignee"},
		MaxResults: a.flags.MaxResults,
	}
	search := a.api.Search
	if a.flags.All {
		search = a.api.SearchAll
	}

	res, err := search(ctx, a.flags.JQL, opts)
	if err != nil {
		return result{}, err
	}
	a.logger.Debug("search done", "jql", a.flags.JQL, "total", res.Total, "returned", len(res.Issues))
	return result{template: "search", data: res}, nil
}

func (a *actions) issue(ctx context.Context) (result, error) {
	issue, err := a.api.Issue(ctx, a.flags.Issue, "summary", "status", "assignee", "project", "timetracking")
	if err != nil {
		return result{}, err
	}
	return result{template: "issue", data: issue}, nil
}

func (a *actions) transitions(ctx context.Context) (result, error) {
	trs, err := a.api.Transitions(ctx, a.flags.Issue)
	if err != nil {
		return result{}, err
	}
	return result{template: "transitions", data: trs}, nil
}

// transition applies a transition given by id or by name.
func (a *actions) transition(ctx context.Context) (result, error) {
	target := strings.TrimSpace(a.flags.Transition)

	if isNumeric(target) {
		if err := a.api.DoTransition(ctx, a.flags.Issue, target); err != nil {
			return result{}, err
		}
	} else {
		tr, ok, err := a.api.StartIssue(ctx, a.flags.Issue, []string{target})
		if err != nil {
			return result{}, err
		}
		if !ok {
			return result{}, fmt.Errorf("transition %q not available for %s", target, a.flags.Issue)
		}
		target = tr.Name
	}

	a.logger.Info("transition applied", "issue", a.flags.Issue, "transition", target)
	return result{template: "transition", data: map[string]any{
		"Issue":      a.flags.Issue,
		"Transition": target,
	}}, nil
}

// start applies the first available configured start transition.
func (a *actions) start(ctx context.Context) (result, error) {
	names := a.settings.StartTransitions
	if a.flags.Transition != "" {
		names = []string{a.flags.Transition}
	}
	if len(names) == 0 {
		return result{}, fmt.Errorf("no start transitions configured")
	}

	tr, ok, err := a.api.StartIssue(ctx, a.flags.Issue, names)
	if err != nil {
		return result{}, err
	}
	if ok {
		a.logger.Info("issue started", "issue", a.flags.Issue, "transition", tr.Name)
	} else {
		a.logger.Warn("no start transition available", "issue", a.flags.Issue, "names", names)
	}

	return result{template: "start", data: map[string]any{
		"Issue":      a.flags.Issue,
		"OK":         ok,
		"Transition": tr,
		"Names":      names,
	}}, nil
}

// worklog posts the tracked time. Without --started the work is assumed to end now.
func (a *actions) worklog(ctx context.Context) (result, error) {
	started := a.flags.Started
	if started.IsZero() {
		started = time.Now().Add(-a.flags.Time)
	}

	wl, c, err := a.api.PostWorklog(ctx, a.flags.Issue, started, a.flags.Time, a.flags.Comment)
	if err != nil {
		return result{}, err
	}
	a.logger.Info("worklog posted",
		"issue", a.flags.Issue,
		"time", jira.FormatJiraTime(a.flags.Time),
		"policy", a.settings.RequestFactory().CommentPolicy,
	)

	return result{template: "worklog", data: map[string]any{
		"Issue":   a.flags.Issue,
		"Worklog": wl,
		"Comment": c,
	}}, nil
}

func (a *actions) comment(ctx context.Context) (result, error) {
	c, err := a.api.PostComment(ctx, a.flags.Issue, a.flags.Comment)
	if err != nil {
		return result{}, err
	}
	return result{template: "comment", data: map[string]any{
		"Issue":   a.flags.Issue,
		"Comment": c,
	}}, nil
}

func (a *actions) filters(ctx context.Context) (result, error) {
	fs, err := a.api.FavouriteFilters(ctx)
	if err != nil {
		return result{}, err
	}
	return result{template: "filters", data: fs}, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
