package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// NewRouter mounts api under prefix next to a health endpoint.
// With debug enabled every request is logged.
func NewRouter(api http.Handler, prefix string, logger *slog.Logger, debug bool) http.Handler {
	root := http.NewServeMux()

	// Health checks (no logging)
	root.Handle("GET /healthz", healthz())
	root.Handle("POST /healthz", healthz())

	var h http.Handler = api
	if debug {
		h = logRequests(h, logger)
	}
	root.Handle("/", h)

	return mountUnderPrefix(root, prefix)
}

// healthz handles the /healthz endpoint.
func healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok")) // nolint:errcheck
	}
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests logs method, path, query, redacted headers and status.
func logRequests(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"headers", redact(r.Header),
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// redact returns a copy of h with credentials masked.
func redact(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vv := range h {
		if strings.EqualFold(k, "Authorization") || strings.EqualFold(k, "Cookie") {
			out[k] = []string{"<redacted>"}
			continue
		}
		out[k] = vv
	}
	return out
}
