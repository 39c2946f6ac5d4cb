package jira_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gi8lino/stopwatch/internal/jira"
)

// newTestRequester returns a Requester pointed at srv with fixed credentials.
func newTestRequester(t *testing.T, srv *httptest.Server) *jira.Requester {
	t.Helper()

	return jira.NewRequester(
		jira.HTTPClientFactory{},
		jira.StaticCredentials(jira.Credentials{
			BaseURL:  srv.URL,
			Username: "user",
			APIToken: "token",
		}),
	)
}
