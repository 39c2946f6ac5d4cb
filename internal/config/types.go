package config

import "time"

// Settings is the persisted user configuration.
type Settings struct {
	JiraBaseURL     string `yaml:"jiraBaseUrl"`
	Username        string `yaml:"username"`
	PrivateAPIToken string `yaml:"privateApiToken"` // may be a reference such as env:JIRA_TOKEN

	PostWorklogComment string   `yaml:"postWorklogComment,omitempty"` // worklog | comment | both
	Estimate           Estimate `yaml:"estimate,omitempty"`
	StartTransitions   []string `yaml:"startTransitions,omitempty"`

	JiraAvatarURL string `yaml:"jiraAvatarUrl,omitempty"`

	Timeout       time.Duration `yaml:"timeout,omitempty"`
	SkipTLSVerify bool          `yaml:"skipTLSVerify,omitempty"`
}

// Estimate controls how remaining estimates are adjusted on worklog posting.
type Estimate struct {
	Method string `yaml:"method,omitempty"` // auto | leave | new | manual
	Value  string `yaml:"value,omitempty"`  // Jira time, e.g. "2h"
}
