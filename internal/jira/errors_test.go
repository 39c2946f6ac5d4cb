package jira_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gi8lino/stopwatch/internal/jira"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		err  error
		want jira.ErrorClass
	}{
		"nil":             {nil, jira.ClassNone},
		"invalid input":   {fmt.Errorf("build: %w", jira.ErrInvalidRequestInput), jira.ClassInvalidInput},
		"invalid base":    {fmt.Errorf("%w: empty", jira.ErrInvalidBaseURL), jira.ClassInvalidBaseURL},
		"unauthorized":    {&jira.APIError{StatusCode: 401}, jira.ClassUnauthorized},
		"forbidden":       {fmt.Errorf("x: %w", &jira.APIError{StatusCode: 403}), jira.ClassUnauthorized},
		"not found":       {&jira.APIError{StatusCode: 404}, jira.ClassAPI},
		"transport":       {&jira.TransportError{Err: errors.New("refused")}, jira.ClassTransport},
		"deserialization": {&jira.DeserializationError{Err: errors.New("bad")}, jira.ClassDeserialization},
		"cancelled":       {fmt.Errorf("avatar: %w", context.Canceled), jira.ClassTransport},
		"deadline":        {context.DeadlineExceeded, jira.ClassTransport},
		"other":           {errors.New("boom"), jira.ClassUnknown},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, jira.Classify(tc.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	t.Run("api error trims long bodies", func(t *testing.T) {
		t.Parallel()

		err := &jira.APIError{StatusCode: 500, Body: []byte(strings.Repeat("x", 5000))}
		assert.True(t, strings.HasPrefix(err.Error(), "jira error 500: xxx"))
		assert.Less(t, len(err.Error()), 2100)
	})

	t.Run("transport error unwraps", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("connection refused")
		err := &jira.TransportError{Err: cause}
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "transport error: connection refused", err.Error())
	})

	t.Run("deserialization error with key", func(t *testing.T) {
		t.Parallel()

		err := &jira.DeserializationError{Key: "avatarUrls", Err: errors.New("missing key")}
		assert.Equal(t, `deserialize "avatarUrls": missing key`, err.Error())
	})
}
