package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/containeroo/resolver"
	"github.com/gi8lino/stopwatch/internal/jira"
	"gopkg.in/yaml.v3"
)

// Default values for unset settings
const (
	defaultPostWorklogComment = "worklog"
	defaultEstimateMethod     = string(jira.EstimateAuto)
	defaultTimeout            = jira.DefaultTimeout
)

// LoadSettings loads the settings from the given path. A missing file yields defaults.
func LoadSettings(path string) (Settings, error) {
	s := Settings{}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			setDefaults(&s)
			return s, nil
		}
		return s, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("invalid settings: %w", err)
	}

	setDefaults(&s)
	return s, nil
}

// SaveSettings writes s to path, creating parent directories as needed.
func SaveSettings(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil { // holds the API token
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// ValidateSettings checks the consistency of the settings.
func ValidateSettings(s Settings) error {
	var errs []string

	if strings.TrimSpace(s.JiraBaseURL) == "" {
		errs = append(errs, "jiraBaseUrl is required")
	} else if _, err := jira.ParseBaseURL(s.JiraBaseURL); err != nil {
		errs = append(errs, fmt.Sprintf("jiraBaseUrl: %v", err))
	}

	if _, err := jira.ParseWorklogCommentPolicy(s.PostWorklogComment); err != nil {
		errs = append(errs, fmt.Sprintf("postWorklogComment: %v", err))
	}

	switch method := jira.EstimateMethod(strings.ToLower(s.Estimate.Method)); method {
	case "", jira.EstimateAuto, jira.EstimateLeave:
	case jira.EstimateNew, jira.EstimateManual:
		if strings.TrimSpace(s.Estimate.Value) == "" {
			errs = append(errs, fmt.Sprintf("estimate.value is required for method %q", method))
		} else if _, err := jira.ParseJiraTime(s.Estimate.Value); err != nil {
			errs = append(errs, fmt.Sprintf("estimate.value: %v", err))
		}
	default:
		errs = append(errs, fmt.Sprintf("estimate.method %q must be one of auto, leave, new, manual", s.Estimate.Method))
	}

	if s.Timeout < 0 {
		errs = append(errs, "timeout must be >= 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("settings validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ResolveCredentials resolves references like "env:VAR" or "file:/path"
// in the username and token. Plain values are kept verbatim; resolved
// references only lose a trailing line break.
func (s Settings) ResolveCredentials() (Settings, error) {
	user, err := resolveCredential(s.Username)
	if err != nil {
		return s, fmt.Errorf("resolve username: %w", err)
	}
	token, err := resolveCredential(s.PrivateAPIToken)
	if err != nil {
		return s, fmt.Errorf("resolve privateApiToken: %w", err)
	}
	s.Username = user
	s.PrivateAPIToken = token
	return s, nil
}

func resolveCredential(raw string) (string, error) {
	v, err := resolver.ResolveVariable(raw)
	if err != nil {
		return "", err
	}
	if v != raw {
		v = strings.TrimRight(v, "\r\n")
	}
	return v, nil
}

// Credentials returns the values the request core reads per call.
func (s Settings) Credentials() jira.Credentials {
	return jira.Credentials{
		BaseURL:  s.JiraBaseURL,
		Username: s.Username,
		APIToken: s.PrivateAPIToken,
	}
}

// RequestFactory returns a RequestFactory configured with the posting policies.
// Call ValidateSettings first; invalid policies fall back to defaults.
func (s Settings) RequestFactory() jira.RequestFactory {
	policy, _ := jira.ParseWorklogCommentPolicy(s.PostWorklogComment)
	return jira.RequestFactory{
		CommentPolicy: policy,
		Estimate: jira.EstimateUpdate{
			Method: jira.EstimateMethod(strings.ToLower(s.Estimate.Method)),
			Value:  s.Estimate.Value,
		},
	}
}

// ClientFactory returns the client factory for the configured transport options.
func (s Settings) ClientFactory() jira.HTTPClientFactory {
	return jira.HTTPClientFactory{
		Timeout:       s.Timeout,
		SkipTLSVerify: s.SkipTLSVerify,
	}
}

// setDefaults fills in missing fields with default values.
func setDefaults(s *Settings) {
	setDefault(&s.PostWorklogComment, defaultPostWorklogComment)
	setDefault(&s.Estimate.Method, defaultEstimateMethod)
	if s.Timeout == 0 {
		s.Timeout = defaultTimeout
	}
}

// setDefault assigns dst to val only if *dst is empty.
func setDefault(dst *string, val string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = val
	}
}
