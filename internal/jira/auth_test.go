package jira_test

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gi8lino/stopwatch/internal/jira"
	"github.com/gi8lino/stopwatch/internal/testutils"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBasicAuth(t *testing.T) {
	t.Parallel()

	t.Run("sets basic auth header", func(t *testing.T) {
		t.Parallel()

		req, _ := http.NewRequest("GET", "https://example.com", nil)
		auth := jira.NewBasicAuth("user@example.com", "token123")

		auth.Apply(req)

		username, password, ok := req.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "user@example.com", username)
		assert.Equal(t, "token123", password)
		assert.Equal(t, jira.AuthBasic, auth.Method())
	})

	t.Run("keeps surrounding whitespace", func(t *testing.T) {
		t.Parallel()

		req, _ := http.NewRequest("GET", "https://example.com", nil)
		jira.NewBasicAuth("bob", " s3cr3t ").Apply(req)

		assert.Equal(t, "Basic Ym9iOiBzM2NyM3Qg", req.Header.Get("Authorization"))
		assert.Equal(t, jira.AuthBasic, auth.Method())
	})
}

func TestNoAuth(t *testing.T) {
	t.Parallel()

	t.Run("removes authorization header", func(t *testing.T) {
		t.Parallel()

		req, _ := http.NewRequest("GET", "https://example.com", nil)
		req.Header.Set("Authorization", "Basic stale")

		jira.NoAuth().Apply(req)

		assert.Empty(t, req.Header.Get("Authorization"))
	})

	t.Run("zero value behaves like none", func(t *testing.T) {
		t.Parallel()

		var auth jira.Authenticator
		assert.Equal(t, jira.AuthNone, auth.Method())
	})
}

func TestResolveAuth(t *testing.T) {
	t.Parallel()

	t.Run("returns basic auth when username and token are provided", func(t *testing.T) {
		t.Parallel()

		auth := jira.ResolveAuth("me@example.com", "secret")
		assert.Equal(t, jira.AuthBasic, auth.Method())

		req, _ := http.NewRequest("GET", "https://example.com", nil)
		auth.Apply(req)
		user, pass, ok := req.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "me@example.com", user)
		assert.Equal(t, "secret", pass)
	})

	t.Run("returns basic auth when only token is provided", func(t *testing.T) {
		t.Parallel()

		auth := jira.ResolveAuth("", "secret")
		assert.Equal(t, jira.AuthBasic, auth.Method())
	})

	t.Run("returns none when no credentials provided", func(t *testing.T) {
		t.Parallel()

		auth := jira.ResolveAuth("  ", "")
		assert.Equal(t, jira.AuthNone, auth.Method())
	})
}

func TestBasicAuthHeaderProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("every call carries exactly the configured username and token", prop.ForAll(
		func(username, token string) bool {
			var header string
			factory := jira.HTTPClientFactory{
				Transport: testutils.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
					header = r.Header.Get("Authorization")
					return &http.Response{
						StatusCode: http.StatusOK,
						Header:     http.Header{},
						Body:       io.NopCloser(strings.NewReader(`{}`)),
					}, nil
				}),
			}
			requester := jira.NewRequester(factory, jira.StaticCredentials(jira.Credentials{
				BaseURL:  "https://jira.example.com",
				Username: username,
				APIToken: token,
			}))

			if _, err := requester.Do(context.Background(), jira.RequestFactory{}.CreateAuthenticateRequest()); err != nil {
				return false
			}
			if strings.TrimSpace(username) == "" && strings.TrimSpace(token) == "" {
				return header == ""
			}
			want := "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+token))
			return header == want
		},
		gen.AnyString(),
		gen.AnyString().Map(func(s string) string { return " " + s + "\t" }),
	))

	properties.TestingRun(t)
}
