package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gi8lino/stopwatch/internal/config"
	"github.com/gi8lino/stopwatch/internal/flag"
	"github.com/gi8lino/stopwatch/internal/jira"
	"github.com/gi8lino/stopwatch/internal/logging"
	"github.com/gi8lino/stopwatch/internal/templates"
	"github.com/gi8lino/stopwatch/internal/utils"

	"github.com/containeroo/tinyflags"
)

// Run executes one stopwatch action. Results are written to out, logs to logOut.
func Run(ctx context.Context, version, commit string, args []string, out, logOut io.Writer, getEnv func(string) string) error {
	// Create a new context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Parse command-line flags
	flags, err := flag.ParseArgs(version, args, out, getEnv)
	if err != nil {
		if tinyflags.IsHelpRequested(err) || tinyflags.IsVersionRequested(err) {
			fmt.Fprint(out, err.Error()) // nolint:errcheck
			return nil
		}
		return fmt.Errorf("parsing error: %w", err)
	}

	// Setup logger
	logger := logging.SetupLogger(flags.LogFormat, flags.Debug, logOut)
	logger.Debug("Starting stopwatch",
		"version", version,
		"commit", commit,
		"action", flags.Action,
	)

	// Load settings; the file copy is what gets written back
	stored, err := config.LoadSettings(flags.Settings)
	if err != nil {
		return fmt.Errorf("loading settings error: %w", err)
	}

	settings, err := applyOverrides(stored, flags).ResolveCredentials()
	if err != nil {
		return fmt.Errorf("resolving credentials error: %w", err)
	}

	if err := config.ValidateSettings(settings); err != nil {
		return fmt.Errorf("validating settings error: %w", err)
	}

	auth := jira.ResolveAuth(settings.Username, settings.PrivateAPIToken)
	logger.Debug("jira auth",
		"method", auth.Method(),
		"header", utils.ObfuscateHeader(utils.GetAuthorizationHeader(auth)),
	)

	// Setup jira api
	requester := jira.NewRequester(settings.ClientFactory(), jira.StaticCredentials(settings.Credentials()))
	api := jira.NewAPI(requester, settings.RequestFactory())

	tmpl, err := templates.ParseOutputTemplates(templates.TemplateFuncMap())
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	a := &actions{
		api:      api,
		flags:    flags,
		settings: settings,
		stored:   stored,
		logger:   logger,
	}
	res, err := a.run(ctx)
	if err != nil {
		class := jira.Classify(err)
		logger.Error("action failed",
			"action", flags.Action,
			"class", class,
			"error", err,
		)
		return fmt.Errorf("%s: %s: %w", flags.Action, describe(flags.Action, class, err), err)
	}

	if flags.Output == flag.OutputJSON {
		return templates.RenderJSON(out, res.data)
	}
	return templates.Render(out, tmpl, res.template, res.data)
}

// applyOverrides returns s with the non-empty flag values applied.
func applyOverrides(s config.Settings, f flag.Config) config.Settings {
	if f.JiraBaseURL != "" {
		s.JiraBaseURL = f.JiraBaseURL
	}
	if f.JiraUsername != "" {
		s.Username = f.JiraUsername
	}
	if f.JiraToken != "" {
		s.PrivateAPIToken = f.JiraToken
	}
	if f.JiraTimeout > 0 {
		s.Timeout = f.JiraTimeout
	}
	if f.JiraSkipTLSVerify {
		s.SkipTLSVerify = true
	}
	if f.PostAs != "" {
		s.PostWorklogComment = f.PostAs
	}
	return s
}
