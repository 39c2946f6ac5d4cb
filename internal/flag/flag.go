package flag

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/containeroo/tinyflags"
	"github.com/gi8lino/stopwatch/internal/jira"
	"github.com/gi8lino/stopwatch/internal/logging"
)

// Action names one CLI operation.
type Action string

const (
	ActionAuth        Action = "auth"
	ActionAvatar      Action = "avatar"
	ActionSearch      Action = "search"
	ActionIssue       Action = "issue"
	ActionTransitions Action = "transitions"
	ActionTransition  Action = "transition"
	ActionStart       Action = "start"
	ActionWorklog     Action = "worklog"
	ActionComment     Action = "comment"
	ActionFilters     Action = "filters"
)

// OutputFormat selects how results are printed.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// Config aggregates CLI flags after parsing.
type Config struct {
	Settings string // Path to the settings file
	Action   Action

	// Overrides for values in the settings file; empty means unset.
	JiraBaseURL       string
	JiraUsername      string
	JiraToken         string
	JiraTimeout       time.Duration
	JiraSkipTLSVerify bool
	PostAs            string

	Issue      string
	JQL        string
	MaxResults int
	All        bool // Follow search pages until every issue is fetched
	Time       time.Duration // Parsed from Jira notation ("1h 30m")
	Started    time.Time     // Zero means now
	Comment    string
	Transition string
	AvatarSize string

	Output    OutputFormat
	Debug     bool
	LogFormat logging.LogFormat
}

// DefaultSettingsPath returns the per-user settings file location.
func DefaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "stopwatch.yaml"
	}
	return filepath.Join(dir, "stopwatch", "settings.yaml")
}

// ParseArgs parses CLI args into Config.
func ParseArgs(version string, args []string, out io.Writer, getEnv func(string) string) (Config, error) {
	var cfg Config
	tf := tinyflags.NewFlagSet("stopwatch", tinyflags.ContinueOnError)
	tf.Version(version)
	tf.SetGetEnvFn(getEnv)
	tf.EnvPrefix("STOPWATCH")
	tf.SetOutput(out)

	tf.StringVar(&cfg.Settings, "settings", DefaultSettingsPath(), "Path to settings file").
		Placeholder("PATH").
		Value()

	action := tf.String("action", string(ActionAuth), "Action to run").
		Choices(
			string(ActionAuth),
			string(ActionAvatar),
			string(ActionSearch),
			string(ActionIssue),
			string(ActionTransitions),
			string(ActionTransition),
			string(ActionStart),
			string(ActionWorklog),
			string(ActionComment),
			string(ActionFilters),
		).
		Short("a").
		Value()

	// Jira
	tf.StringVar(&cfg.JiraBaseURL, "jira-base-url", "", "Jira base URL (overrides settings)").
		Finalize(strings.TrimSpace).
		Placeholder("URL").
		Value()
	tf.StringVar(&cfg.JiraUsername, "jira-username", "", "Jira username (overrides settings)").Value()
	tf.StringVar(&cfg.JiraToken, "jira-token", "", "Jira API token or reference like env:VAR (overrides settings)").
		Placeholder("TOKEN").
		Value()
	timeout := tf.Duration("jira-timeout", 0, "Jira request timeout (overrides settings)").Value()
	tf.BoolVar(&cfg.JiraSkipTLSVerify, "jira-skip-tls-verify", false, "Skip TLS certificate verification").Value()
	tf.StringVar(&cfg.PostAs, "post-as", "", "Where to post the worklog comment: worklog, comment or both (overrides settings)").
		Finalize(func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }).
		Value()

	// Action arguments
	tf.StringVar(&cfg.Issue, "issue", "", "Issue key, e.g. PROJ-123").
		Finalize(func(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }).
		Short("i").
		Value()
	tf.StringVar(&cfg.JQL, "jql", "", "JQL query for search").Value()
	maxResults := tf.Int("max-results", 50, "Maximum number of search results (page size with --all)").Value()
	tf.BoolVar(&cfg.All, "all", false, "Fetch all search result pages").Value()
	spent := tf.String("time", "", "Time spent in Jira notation, e.g. \"1h 30m\"").
		Short("t").
		Placeholder("TIME").
		Value()
	started := tf.String("started", "", "Worklog start time (RFC3339); defaults to now").
		Placeholder("TIMESTAMP").
		Value()
	tf.StringVar(&cfg.Comment, "comment", "", "Comment for worklog or comment actions").Short("m").Value()
	tf.StringVar(&cfg.Transition, "transition", "", "Transition id or name").Value()
	tf.StringVar(&cfg.AvatarSize, "avatar-size", jira.DefaultAvatarSize, "Avatar size key").Value()

	// Output
	output := tf.String("output", string(OutputText), "Output format").Choices(string(OutputText), string(OutputJSON)).Short("o").Value()
	tf.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging").Value()
	logFormat := tf.String("log-format", "text", "Log format").Choices("text", "json").Short("l").Value()

	if err := tf.Parse(args); err != nil {
		return Config{}, err
	}

	// Post-parse
	cfg.Action = Action(*action)
	cfg.JiraTimeout = *timeout
	cfg.MaxResults = *maxResults
	cfg.Output = OutputFormat(*output)
	cfg.LogFormat = logging.LogFormat(*logFormat)

	if s := strings.TrimSpace(*spent); s != "" {
		d, err := jira.ParseJiraTime(s)
		if err != nil {
			return Config{}, fmt.Errorf("invalid value for flag --time: %w", err)
		}
		cfg.Time = d
	}
	if s := strings.TrimSpace(*started); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return Config{}, fmt.Errorf("invalid value for flag --started: %w", err)
		}
		cfg.Started = ts
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// validate checks cross-flag requirements of the selected action.
func validate(cfg Config) error {
	var errs []error

	if cfg.JiraTimeout < 0 {
		errs = append(errs, errors.New("invalid value for flag --jira-timeout: timeout must be >= 0"))
	}
	if cfg.MaxResults < 0 {
		errs = append(errs, errors.New("invalid value for flag --max-results: must be >= 0"))
	}
	if cfg.PostAs != "" {
		if _, err := jira.ParseWorklogCommentPolicy(cfg.PostAs); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for flag --post-as: %w", err))
		}
	}

	switch cfg.Action {
	case ActionIssue, ActionTransitions, ActionTransition, ActionStart, ActionWorklog, ActionComment:
		if cfg.Issue == "" {
			errs = append(errs, fmt.Errorf("action %q requires --issue", cfg.Action))
		}
	}

	switch cfg.Action {
	case ActionSearch:
		if strings.TrimSpace(cfg.JQL) == "" {
			errs = append(errs, errors.New(`action "search" requires --jql`))
		}
	case ActionTransition:
		if strings.TrimSpace(cfg.Transition) == "" {
			errs = append(errs, errors.New(`action "transition" requires --transition`))
		}
	case ActionWorklog:
		if cfg.Time <= 0 {
			errs = append(errs, errors.New(`action "worklog" requires --time`))
		}
	case ActionComment:
		if strings.TrimSpace(cfg.Comment) == "" {
			errs = append(errs, errors.New(`action "comment" requires --comment`))
		}
	}

	return errors.Join(errs...)
}
