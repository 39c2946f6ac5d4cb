package jira

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequestInput is returned when a request cannot be built from the given input.
	ErrInvalidRequestInput = errors.New("invalid request input")
	// ErrInvalidBaseURL is returned when the Jira base URL is empty or malformed.
	ErrInvalidBaseURL = errors.New("invalid base URL")
)

// maxErrorBody limits how much of an upstream body ends up in error messages.
const maxErrorBody = 2048

// APIError is returned when Jira answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jira error %d: %s", e.StatusCode, string(trim(e.Body, maxErrorBody)))
}

// TransportError is returned when the request never produced a response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "transport error: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// DeserializationError is returned when a body is not valid JSON or lacks an expected key.
type DeserializationError struct {
	Key string // empty when the whole body failed to parse
	Err error
}

func (e *DeserializationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("deserialize %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("deserialize: %v", e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// ErrorClass is a coarse classification of errors returned by this package.
type ErrorClass string

const (
	ClassNone            ErrorClass = ""
	ClassInvalidInput    ErrorClass = "invalid-input"
	ClassInvalidBaseURL  ErrorClass = "invalid-base-url"
	ClassUnauthorized    ErrorClass = "unauthorized"
	ClassAPI             ErrorClass = "api"
	ClassTransport       ErrorClass = "transport"
	ClassDeserialization ErrorClass = "deserialization"
	ClassUnknown         ErrorClass = "unknown"
)

// Classify maps err onto an ErrorClass.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassNone
	}

	var (
		apiErr   *APIError
		transErr *TransportError
		decErr   *DeserializationError
	)
	switch {
	case errors.Is(err, ErrInvalidRequestInput):
		return ClassInvalidInput
	case errors.Is(err, ErrInvalidBaseURL):
		return ClassInvalidBaseURL
	case errors.As(err, &apiErr):
		if apiErr.StatusCode == 401 || apiErr.StatusCode == 403 {
			return ClassUnauthorized
		}
		return ClassAPI
	case errors.As(err, &transErr),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return ClassTransport
	case errors.As(err, &decErr):
		return ClassDeserialization
	default:
		return ClassUnknown
	}
}

// invalidInput wraps ErrInvalidRequestInput with a reason.
func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequestInput, fmt.Sprintf(format, args...))
}

// trim returns at most n bytes from b.
func trim(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
