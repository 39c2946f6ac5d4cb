package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Credentials are the values read from settings for a single call.
type Credentials struct {
	BaseURL  string
	Username string
	APIToken string
}

// CredentialsFunc returns the current credentials. It is called once per request.
type CredentialsFunc func() Credentials

// StaticCredentials returns a CredentialsFunc that always yields c.
func StaticCredentials(c Credentials) CredentialsFunc {
	return func() Credentials { return c }
}

// Requester executes Requests against freshly built clients.
type Requester struct {
	clients ClientFactory
	creds   CredentialsFunc
}

// NewRequester returns a Requester reading credentials through creds.
func NewRequester(clients ClientFactory, creds CredentialsFunc) *Requester {
	if clients == nil {
		clients = HTTPClientFactory{}
	}
	if creds == nil {
		creds = StaticCredentials(Credentials{})
	}
	return &Requester{clients: clients, creds: creds}
}

// WithCredentials returns a Requester bound to c instead of the settings,
// e.g. to verify values that have not been saved yet.
func (r *Requester) WithCredentials(c Credentials) *Requester {
	return &Requester{clients: r.clients, creds: StaticCredentials(c)}
}

// Do executes req and parses the response body into a Value.
func (r *Requester) Do(ctx context.Context, req Request) (Value, error) {
	raw, _, err := r.execute(ctx, req)
	if err != nil {
		return Value{}, err
	}
	return ParseValue(raw)
}

// DoInto executes req and unmarshals the response body into out.
// An empty body leaves out untouched.
func (r *Requester) DoInto(ctx context.Context, req Request, out any) error {
	raw, _, err := r.execute(ctx, req)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DeserializationError{Err: err}
	}
	return nil
}

// DoRaw executes req and returns the undecoded body and its content type.
func (r *Requester) DoRaw(ctx context.Context, req Request) ([]byte, string, error) {
	return r.execute(ctx, req)
}

// Go runs Do asynchronously. Cancel the returned Future to abandon the call.
func (r *Requester) Go(ctx context.Context, req Request) *Future[Value] {
	return Go(ctx, func(ctx context.Context) (Value, error) {
		return r.Do(ctx, req)
	})
}

// execute performs one authenticated round trip and classifies failures.
func (r *Requester) execute(ctx context.Context, req Request) (body []byte, contentType string, err error) {
	creds := r.creds()

	client, err := r.clients.NewClient(creds.BaseURL, ResolveAuth(creds.Username, creds.APIToken))
	if err != nil {
		return nil, "", err
	}
	defer client.Close()

	httpReq, err := newHTTPRequest(ctx, client, req)
	if err != nil {
		return nil, "", err
	}

	res, err := client.Do(httpReq)
	if err != nil {
		return nil, "", &TransportError{Err: err}
	}
	defer res.Body.Close() // nolint:errcheck

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, "", &APIError{StatusCode: res.StatusCode, Body: raw}
	}
	return raw, res.Header.Get("Content-Type"), nil
}

// newHTTPRequest composes the URL, encodes the body and attaches auth.
func newHTTPRequest(ctx context.Context, client *Client, req Request) (*http.Request, error) {
	u, err := client.resolve(req)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if req.HasBody() {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return nil, invalidInput("marshal body: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	method := req.method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, invalidInput("create request: %v", err)
	}

	accept := req.accept
	if accept == "" {
		accept = "application/json"
	}
	httpReq.Header.Set("Accept", accept)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	// credentials only go to the Jira host itself
	if client.sameOrigin(u) {
		client.Authenticator().Apply(httpReq)
	}
	return httpReq, nil
}
