package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"text/template"
)

//go:embed output/*.tmpl
var outputFS embed.FS

// ParseOutputTemplates parses the built-in action output templates.
func ParseOutputTemplates(funcMap template.FuncMap) (*template.Template, error) {
	return ParseTemplates(outputFS, "output/*.tmpl", funcMap)
}

// ParseTemplates parses all templates in fsys matching pattern.
func ParseTemplates(fsys fs.FS, pattern string, funcMap template.FuncMap) (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("parse templates %q: %w", pattern, err)
	}
	return tmpl, nil
}
