package jira

import (
	"net/http"
	"strings"
)

// AuthMethod names an authentication variant.
type AuthMethod string

const (
	AuthNone  AuthMethod = "None"
	AuthBasic AuthMethod = "Basic"
)

// Authenticator attaches credentials to an outgoing request.
// The zero value sends no credentials.
type Authenticator struct {
	method   AuthMethod
	username string
	token    string
}

// NoAuth returns an Authenticator that leaves requests untouched.
func NoAuth() Authenticator { return Authenticator{method: AuthNone} }

// NewBasicAuth returns an Authenticator for HTTP Basic with username and API token.
// Both values are sent exactly as given.
func NewBasicAuth(username, token string) Authenticator {
	return Authenticator{
		method:   AuthBasic,
		username: username,
		token:    token,
	}
}

// ResolveAuth picks the Authenticator for the given credentials.
// Basic is used as soon as either a username or a token is present.
func ResolveAuth(username, token string) Authenticator {
	if strings.TrimSpace(username) == "" && strings.TrimSpace(token) == "" {
		return NoAuth()
	}
	return NewBasicAuth(username, token)
}

// Method reports the variant of a.
func (a Authenticator) Method() AuthMethod {
	if a.method == "" {
		return AuthNone
	}
	return a.method
}

// Apply sets the Authorization header on r.
func (a Authenticator) Apply(r *http.Request) {
	switch a.Method() {
	case AuthBasic:
		r.SetBasicAuth(a.username, a.token)
	default:
		r.Header.Del("Authorization")
	}
}
