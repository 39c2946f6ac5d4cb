package app

import (
	"errors"
	"fmt"

	"github.com/gi8lino/stopwatch/internal/flag"
	"github.com/gi8lino/stopwatch/internal/jira"
)

// describe turns an error class into a message for the user.
func describe(action flag.Action, class jira.ErrorClass, err error) string {
	// The avatar action keeps its generic message; the class goes into the hint.
	if action == flag.ActionAvatar {
		return "could not connect to Jira to load the avatar (" + hint(class, err) + ")"
	}
	return hint(class, err)
}

func hint(class jira.ErrorClass, err error) string {
	switch class {
	case jira.ClassInvalidInput:
		return "invalid input"
	case jira.ClassInvalidBaseURL:
		return "invalid Jira base URL"
	case jira.ClassUnauthorized:
		return "authentication failed, check username and API token"
	case jira.ClassAPI:
		var apiErr *jira.APIError
		if errors.As(err, &apiErr) {
			return fmt.Sprintf("Jira rejected the request with status %d", apiErr.StatusCode)
		}
		return "Jira rejected the request"
	case jira.ClassTransport:
		return "could not connect to Jira"
	case jira.ClassDeserialization:
		return "unexpected response from Jira"
	default:
		return "unexpected error"
	}
}
