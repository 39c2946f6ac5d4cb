package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gi8lino/stopwatch/internal/app"
	"github.com/gi8lino/stopwatch/internal/config"
	"github.com/gi8lino/stopwatch/internal/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jiraStub records requests and answers the endpoints used by the actions.
type jiraStub struct {
	mu     sync.Mutex
	calls  []string
	bodies map[string]string
}

func (j *jiraStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	key := r.Method + " " + r.URL.Path

	j.mu.Lock()
	j.calls = append(j.calls, key)
	if j.bodies == nil {
		j.bodies = map[string]string{}
	}
	j.bodies[key] = string(b)
	j.mu.Unlock()

	if user, pass, ok := r.BasicAuth(); (!ok || user != "jdoe" || pass != "secret") && r.URL.Path != "/avatar.png" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch key {
	case "GET /rest/api/2/myself":
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":        "jdoe",
			"displayName": "Jane Doe",
			"avatarUrls":  map[string]string{"48x48": "http://" + r.Host + "/avatar.png"},
		})
	case "GET /avatar.png":
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("PNG"))
	case "GET /rest/api/2/search":
		_, _ = w.Write([]byte(`{"total":1,"issues":[{"key":"TEST-1","fields":{"summary":"Fix it"}}]}`))
	case "GET /rest/api/2/issue/TEST-1/transitions":
		_, _ = w.Write([]byte(`{"transitions":[{"id":"11","name":"To Do"},{"id":"21","name":"In Progress"}]}`))
	case "POST /rest/api/2/issue/TEST-1/transitions":
		w.WriteHeader(http.StatusNoContent)
	case "POST /rest/api/2/issue/TEST-1/worklog":
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"100","started":"2024-03-01T09:30:00.000+0000","timeSpentSeconds":5400}`))
	case "POST /rest/api/2/issue/TEST-1/comment":
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"200","body":"done"}`))
	case "GET /rest/api/2/filter/favourite":
		_, _ = w.Write([]byte(`[{"id":"10000","name":"Mine","jql":"assignee = currentUser()"}]`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (j *jiraStub) seen() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.calls...)
}

// setup starts a Jira stub and writes a settings file pointing at it.
func setup(t *testing.T, extra string) (*jiraStub, string) {
	t.Helper()

	stub := &jiraStub{}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "settings.yaml")
	testutils.MustWriteFile(t, path, "jiraBaseUrl: "+srv.URL+"\nusername: jdoe\nprivateApiToken: secret\n"+extra)
	return stub, path
}

func TestRun(t *testing.T) {
	t.Parallel()

	dummyEnv := func(string) string { return "" }

	run := func(t *testing.T, args ...string) (string, string, error) {
		t.Helper()

		ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
		defer cancel()

		var out, logs bytes.Buffer
		err := app.Run(ctx, "v1", "deadbeef", args, &out, &logs, dummyEnv)
		return out.String(), logs.String(), err
	}

	t.Run("auth", func(t *testing.T) {
		t.Parallel()

		_, path := setup(t, "")
		out, logs, err := run(t, "--settings="+path, "--action=auth")
		require.NoError(t, err)
		assert.Equal(t, "Authenticated as Jane Doe (jdoe)\n", out)
		assert.Contains(t, logs, "authenticated")
	})

	t.Run("auth with json output", func(t *testing.T) {
		t.Parallel()

		_, path := setup(t, "")
		out, _, err := run(t, "--settings="+path, "--action=auth", "--output=json")
		require.NoError(t, err)

		var u map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &u))
		assert.Equal(t, "Jane Doe", u["displayName"])
	})

	t.Run("debug logs obfuscated auth header", func(t *testing.T) {
		t.Parallel()

		_, path := setup(t, "")
		_, logs, err := run(t, "--settings="+path, "--action=auth", "--debug")
		require.NoError(t, err)
		assert.Contains(t, logs, "method=Basic")
		assert.NotContains(t, logs, "amRvZTpzZWNyZXQ=") // base64("jdoe:secret")
	})

	t.Run("unauthorized", func(t *testing.T) {
		t.Parallel()

		_, path := setup(t, "")
		_, logs, err := run(t, "--settings="+path, "--action=auth", "--jira-token=wrong")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth: authentication failed, check username and API token")
		assert.Contains(t, logs, "class=unauthorized")
	})

	t.Run("avatar saves url to settings", func(t *testing.T) {
		t.Parallel()

		stub, path := setup(t, "")
		out, _, err := run(t, "--settings="+path, "--action=avatar")
		require.NoError(t, err)
		assert.Contains(t, out, "/avatar.png (image/png, 3 bytes)")
		assert.Equal(t, []string{"GET /rest/api/2/myself", "GET /avatar.png"}, stub.seen())

		s, err := config.LoadSettings(path)
		require.NoError(t, err)
		assert.Contains(t, s.JiraAvatarURL, "/avatar.png")
		assert.Equal(t, "secret", s.PrivateAPIToken)
	})

	t.Run("avatar failure keeps generic message", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "settings.yaml")
		testutils.MustWriteFile(t, path, "jiraBaseUrl: http://127.0.0.1:1\n")

		_, logs, err := run(t, "--settings="+path, "--action=avatar", "--jira-timeout=1s")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not connect to Jira to load the avatar (could not connect to Jira)")
		assert.Contains(t, logs, "class=transport")
	})

	t.Run("search", func(t *testing.T) {
		t.Parallel()

		_, path := setup(t, "")
		out, _, err := run(t, "--settings="+path, "--action=search", "--jql=project = TEST")
		require.NoError(t, err)
		assert.Contains(t, out, "TEST-1")
		assert.Contains(t, out, "1 of 1 issues")
	})

	t.Run("start uses configured transitions", func(t *testing.T) {
		t.Parallel()

		stub, path := setup(t, "startTransitions:\n  - Doing\n  - In Progress\n")
		out, _, err := run(t, "--settings="+path, "--action=start", "--issue=TEST-1")
		require.NoError(t, err)
		assert.Equal(t, "TEST-1: started via \"In Progress\"\n", out)
		assert.Equal(t, []string{
			"GET /rest/api/2/issue/TEST-1/transitions",
			"POST /rest/api/2/issue/TEST-1/transitions",
		}, stub.seen())
	})

	t.Run("start without configured transitions", func(t *testing.T) {
		t.Parallel()

		_, path := setup(t, "")
		_, _, err := run(t, "--settings="+path, "--action=start", "--issue=TEST-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no start transitions configured")
	})

	t.Run("transition by id", func(t *testing.T) {
		t.Parallel()

		stub, path := setup(t, "")
		out, _, err := run(t, "--settings="+path, "--action=transition", "--issue=TEST-1", "--transition=21")
		require.NoError(t, err)
		assert.Equal(t, "TEST-1: transition 21 applied\n", out)
		assert.Equal(t, []string{"POST /rest/api/2/issue/TEST-1/transitions"}, stub.seen())
	})

	t.Run("transition by unknown name", func(t *testing.T) {
		t.Parallel()

		_, path := setup(t, "")
		_, _, err := run(t, "--settings="+path, "--action=transition", "--issue=TEST-1", "--transition=Done")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `transition "Done" not available for TEST-1`)
	})

	t.Run("worklog with separate comment", func(t *testing.T) {
		t.Parallel()

		stub, path := setup(t, "postWorklogComment: comment\n")
		out, _, err := run(t,
			"--settings="+path,
			"--action=worklog",
			"--issue=TEST-1",
			"--time=1h 30m",
			"--started=2024-03-01T09:30:00Z",
			"--comment=done",
		)
		require.NoError(t, err)
		assert.Equal(t, "TEST-1: logged 1h 30m started 2024-03-01 09:30 (worklog 100)\nTEST-1: comment 200 added\n", out)
		assert.Equal(t, []string{
			"POST /rest/api/2/issue/TEST-1/worklog",
			"POST /rest/api/2/issue/TEST-1/comment",
		}, stub.seen())

		stub.mu.Lock()
		defer stub.mu.Unlock()
		assert.JSONEq(t,
			`{"started":"2024-03-01T09:30:00.000+0000","timeSpentSeconds":5400}`,
			stub.bodies["POST /rest/api/2/issue/TEST-1/worklog"],
		)
	})

	t.Run("filters", func(t *testing.T) {
		t.Parallel()

		_, path := setup(t, "")
		out, _, err := run(t, "--settings="+path, "--action=filters")
		require.NoError(t, err)
		assert.Equal(t, "10000\tMine\tassignee = currentUser()\n", out)
	})

	t.Run("missing base url fails validation", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "settings.yaml")
		_, _, err := run(t, "--settings="+path, "--action=auth")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validating settings error")
		assert.Contains(t, err.Error(), "jiraBaseUrl is required")
	})

	t.Run("invalid settings file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "settings.yaml")
		testutils.MustWriteFile(t, path, "jiraBaseUrl: [")
		_, _, err := run(t, "--settings="+path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading settings error")
	})

	t.Run("help requested prints usage and returns nil", func(t *testing.T) {
		t.Parallel()

		out, _, err := run(t, "--help")
		require.NoError(t, err)
		assert.Contains(t, out, "Usage")
	})

	t.Run("version requested prints version and returns nil", func(t *testing.T) {
		t.Parallel()

		var out, logs bytes.Buffer
		err := app.Run(t.Context(), "v9.8.7", "cafebabe", []string{"--version"}, &out, &logs, dummyEnv)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "v9.8.7")
	})

	t.Run("unknown flag surfaces parsing error", func(t *testing.T) {
		t.Parallel()

		_, _, err := run(t, "--totally-unknown")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing error")
	})
}
