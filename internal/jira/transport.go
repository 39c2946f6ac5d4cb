package jira

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// DefaultTimeout caps a single request end to end.
const DefaultTimeout = 15 * time.Second

// newHTTPTransport returns a Transport for one-shot clients with optional TLS skipping.
func newHTTPTransport(skipInsecure bool) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,

		// every call gets its own client, nothing to pool
		DisableKeepAlives: true,

		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: skipInsecure, // NOTE: intended for self-signed test servers only
		},

		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// newHTTPClient builds an http.Client with the given transport and request timeout.
func newHTTPClient(rt http.RoundTripper, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: rt,
	}
}
