package mockjira

import (
	"bytes"
	"net/http"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// renderData executes a data file as template. BaseURL is the address the
// client used to reach the mock, including the prefix.
func renderData(name string, raw []byte, r *http.Request, prefix string) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(string(raw))
	if err != nil {
		return nil, err
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]any{
		"BaseURL": scheme + "://" + r.Host + prefix,
		"Key":     r.PathValue("key"),
		"Query":   r.URL.Query(),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
