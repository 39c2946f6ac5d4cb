package utils

import (
	"net/http"
	"strings"

	"github.com/gi8lino/stopwatch/internal/jira"
)

// ObfuscateHeader returns an obfuscated Authorization header,
// showing only the auth scheme, first 2 and last 2 characters of the token.
// All middle characters are replaced with '*', preserving original token length.
// Example: "Basic dZ*********X1"
func ObfuscateHeader(auth string) string {
	if auth == "" {
		return ""
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 {
		return "[invalid header]"
	}

	scheme := parts[0]
	token := strings.TrimSpace(parts[1])
	n := len(token)

	if n <= 4 {
		return scheme + " " + strings.Repeat("*", n)
	}

	return scheme + " " + token[:2] + strings.Repeat("*", n-4) + token[n-2:]
}

// GetAuthorizationHeader returns the "Authorization" header value that the
// authenticator would set on a request.
func GetAuthorizationHeader(auth jira.Authenticator) string {
	req, _ := http.NewRequest(http.MethodGet, "https://dummy", nil)
	auth.Apply(req)
	return req.Header.Get("Authorization")
}
