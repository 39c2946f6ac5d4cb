package mockjira

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"
)

// NewHandler returns a handler serving the configured routes from data.
func NewHandler(cfg Config, data fs.FS, logger *slog.Logger) (http.Handler, error) {
	mux := http.NewServeMux()
	seen := make(map[string]bool, len(cfg.Routes))

	for i := range cfg.Routes {
		rt := cfg.Routes[i]
		pattern := rt.Method + " " + rt.Path
		if seen[pattern] {
			return nil, fmt.Errorf("duplicate route %q", pattern)
		}
		seen[pattern] = true

		var h http.Handler = routeHandler(cfg, data, rt)
		if cfg.Username != "" && !rt.Anonymous {
			h = requireBasicAuth(cfg.Username, cfg.Token, h)
		}
		mux.Handle(pattern, h)
		logger.Debug("route mounted", "method", rt.Method, "path", rt.Path)
	}

	return mux, nil
}

// requireBasicAuth rejects requests without the configured credentials the way Jira does.
func requireBasicAuth(username, token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), []byte(token)) != 1 {
			writeJSON(w, http.StatusUnauthorized, []byte(`{"errorMessages":["You are not authenticated. Authentication required to perform this operation."],"errors":{}}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// routeHandler processes one request for a configured route.
func routeHandler(cfg Config, data fs.FS, rt Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.RandomDelay {
			applyRandomDelay(200, 1000)
		}

		if strings.EqualFold(rt.Select.From, "none") {
			w.WriteHeader(rt.Status)
			return
		}

		token, err := selectDataToken(r, rt.Select)
		if err != nil {
			http.Error(w, "selection error: "+err.Error(), http.StatusBadRequest)
			return
		}

		var fileName string
		if strings.EqualFold(rt.Select.From, "static") {
			fileName = rt.Select.Static
		} else {
			fileName = fmt.Sprintf(rt.Select.FileTemplate, token)
		}

		raw, err := fs.ReadFile(data, path.Clean(fileName))
		if err != nil {
			writeJSON(w, http.StatusNotFound, []byte(`{"errorMessages":["Issue does not exist or you do not have permission to see it."],"errors":{}}`))
			return
		}

		if rt.Template {
			if raw, err = renderData(fileName, raw, r, cfg.Prefix); err != nil {
				http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
				return
			}
		}

		if ext := path.Ext(fileName); ext != ".json" {
			ct := mime.TypeByExtension(ext)
			if ct == "" {
				ct = "application/octet-stream"
			}
			w.Header().Set("Content-Type", ct)
			w.WriteHeader(rt.Status)
			_, _ = w.Write(raw)
			return
		}

		if rt.Paginate == nil {
			writeJSON(w, rt.Status, raw)
			return
		}

		payload, items, isArray, err := decodeForPagination(raw, rt.ItemsField)
		if err != nil {
			http.Error(w, "invalid mock JSON: "+err.Error(), http.StatusInternalServerError)
			return
		}

		start, limit := resolveReqPaging(r, *rt.Paginate)
		page, err := buildPaginatedPage(payload, items, isArray, rt.ItemsField, *rt.Paginate, start, limit)
		if err != nil {
			http.Error(w, "paginate error: "+err.Error(), http.StatusInternalServerError)
			return
		}

		b, _ := json.Marshal(page)
		writeJSON(w, rt.Status, b)
	}
}

// selectDataToken extracts the file token according to the route's Select config.
func selectDataToken(r *http.Request, s *Select) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s.From)) {
	case "static":
		return s.Static, nil

	case "path":
		return applyRegex(r.PathValue(s.Key), s.Regex)

	case "query":
		return applyRegex(r.URL.Query().Get(s.Key), s.Regex)

	case "header":
		return applyRegex(r.Header.Get(s.Key), s.Regex)

	case "body":
		if r.Body == nil {
			return "", errors.New("empty body")
		}
		b, _ := io.ReadAll(r.Body)
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			return "", fmt.Errorf("invalid JSON body: %w", err)
		}
		raw, _ := m[s.Key].(string)
		return applyRegex(raw, s.Regex)

	default:
		return "", fmt.Errorf("unsupported select.from=%q", s.From)
	}
}

// applyRegex returns the first capture group if regex is provided, otherwise the raw value.
func applyRegex(s, re string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("empty selection value")
	}
	if strings.TrimSpace(re) == "" {
		return s, nil
	}
	rx, err := regexp.Compile(re)
	if err != nil {
		return "", fmt.Errorf("bad regex: %w", err)
	}
	m := rx.FindStringSubmatch(s)
	if len(m) < 2 {
		return "", errors.New("no regex capture match")
	}
	return m[1], nil
}

// writeJSON writes a JSON response with status and bytes.
func writeJSON(w http.ResponseWriter, status int, raw []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

// applyRandomDelay sleeps for a random duration between minMs and maxMs.
func applyRandomDelay(minMs, maxMs int) {
	if maxMs <= minMs {
		maxMs = minMs + 1
	}
	time.Sleep(time.Duration(rand.IntN(maxMs-minMs)+minMs) * time.Millisecond)
}
