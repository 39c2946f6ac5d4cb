package jira

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ClientFactory produces clients bound to a base URL and an Authenticator.
type ClientFactory interface {
	NewClient(baseURL string, auth Authenticator) (*Client, error)
}

// HTTPClientFactory is the default ClientFactory.
type HTTPClientFactory struct {
	Timeout       time.Duration     // per-request cap, DefaultTimeout when zero
	SkipTLSVerify bool              // disable certificate verification
	Transport     http.RoundTripper // overrides the built transport, mainly for tests
}

// NewClient validates baseURL and returns a ready client. Nothing is sent over the network.
func (f HTTPClientFactory) NewClient(baseURL string, auth Authenticator) (*Client, error) {
	base, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	rt := f.Transport
	if rt == nil {
		rt = newHTTPTransport(f.SkipTLSVerify)
	}

	return &Client{
		base: base,
		http: newHTTPClient(rt, f.Timeout),
		auth: auth,
	}, nil
}

// ParseBaseURL validates a Jira base URL and normalizes it to end with a slash,
// so relative API paths resolve below any context path.
func ParseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidBaseURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidBaseURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidBaseURL, raw)
	}

	u.RawQuery = ""
	u.Fragment = ""
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		if u.RawPath != "" {
			u.RawPath += "/"
		}
	}
	return u, nil
}

// Client is bound to one base URL and one Authenticator. It is meant to
// serve a single call and be closed afterwards.
type Client struct {
	base *url.URL
	http *http.Client
	auth Authenticator
}

// BaseURL returns a copy of the normalized base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// Authenticator returns the authenticator bound to the client.
func (c *Client) Authenticator() Authenticator { return c.auth }

// Do sends r as is.
func (c *Client) Do(r *http.Request) (*http.Response, error) {
	return c.http.Do(r)
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// resolve composes the absolute URL for req: base + path + query.
func (c *Client) resolve(req Request) (*url.URL, error) {
	ref, err := url.Parse(req.path)
	if err != nil {
		return nil, invalidInput("parse path %q: %v", req.path, err)
	}

	u := ref
	if !ref.IsAbs() {
		u = c.base.ResolveReference(ref)
	}

	if len(req.query) > 0 {
		q := u.Query()
		for k, vs := range req.query {
			q[k] = append([]string(nil), vs...)
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

// sameOrigin reports whether u points at the client's Jira host.
func (c *Client) sameOrigin(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, c.base.Scheme) && strings.EqualFold(u.Host, c.base.Host)
}
