// Command mockjira serves canned Jira REST responses for trying stopwatch
// without a Jira server.
package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/containeroo/tinyflags"
	"github.com/gi8lino/stopwatch/internal/logging"
	"github.com/gi8lino/stopwatch/internal/mockjira"
	"github.com/gi8lino/stopwatch/internal/server"
)

var Version = "dev"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err) // nolint:errcheck
		os.Exit(1)
	}
}

// options holds the parsed flags.
type options struct {
	config    string
	prefix    string
	port      int
	debug     bool
	logFormat logging.LogFormat
}

func parseArgs(args []string, out io.Writer, getEnv func(string) string) (options, error) {
	var opts options
	tf := tinyflags.NewFlagSet("mockjira", tinyflags.ContinueOnError)
	tf.Version(Version)
	tf.SetGetEnvFn(getEnv)
	tf.EnvPrefix("MOCKJIRA")
	tf.SetOutput(out)

	tf.StringVar(&opts.config, "config", "", "Path to mock config (empty = built-in Jira data)").Placeholder("PATH").Value()
	tf.StringVar(&opts.prefix, "prefix", "", "Context path, e.g. /jira (overrides config)").
		Finalize(server.NormalizeRoutePrefix).
		Placeholder("PATH").
		Value()
	port := tf.Int("port", -1, "Listen port, 0 picks a free port (overrides config)").Value()
	tf.BoolVar(&opts.debug, "debug", false, "Log every request").Value()
	logFormat := tf.String("log-format", "text", "Log format").Choices("text", "json").Short("l").Value()

	if err := tf.Parse(args); err != nil {
		return options{}, err
	}
	opts.port = *port
	opts.logFormat = logging.LogFormat(*logFormat)
	return opts, nil
}

// load returns the configuration and data set selected by opts.
func load(opts options) (mockjira.Config, fs.FS, error) {
	if opts.config == "" {
		return mockjira.Default()
	}

	cfg, err := mockjira.LoadConfig(opts.config)
	if err != nil {
		return mockjira.Config{}, nil, fmt.Errorf("config error: %w", err)
	}
	// relative data dirs are resolved against the config file
	if !filepath.IsAbs(cfg.DataDir) {
		cfg.DataDir = filepath.Join(filepath.Dir(opts.config), cfg.DataDir)
	}
	return cfg, os.DirFS(cfg.DataDir), nil
}

func run(ctx context.Context, args []string, out io.Writer, getEnv func(string) string) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts, err := parseArgs(args, out, getEnv)
	if err != nil {
		if tinyflags.IsHelpRequested(err) || tinyflags.IsVersionRequested(err) {
			fmt.Fprint(out, err.Error()) // nolint:errcheck
			return nil
		}
		return fmt.Errorf("parsing error: %w", err)
	}

	logger := logging.SetupLogger(opts.logFormat, opts.debug, out)

	cfg, data, err := load(opts)
	if err != nil {
		return err
	}
	if opts.prefix != "" {
		cfg.Prefix = opts.prefix
	}
	cfg.Prefix = server.NormalizeRoutePrefix(cfg.Prefix)
	if opts.port >= 0 {
		cfg.Port = opts.port
	}

	handler, err := mockjira.NewHandler(cfg, data, logger)
	if err != nil {
		return fmt.Errorf("route error: %w", err)
	}

	router := server.NewRouter(handler, cfg.Prefix, logger, opts.debug)
	logger.Info("Mock Jira ready",
		"baseURL", "http://localhost:"+strconv.Itoa(cfg.Port)+cfg.Prefix,
		"username", cfg.Username,
		"routes", len(cfg.Routes),
	)
	return server.RunHTTPServer(ctx, router, ":"+strconv.Itoa(cfg.Port), logger)
}
