package templates

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"
)

// RenderError describes a failure while rendering output.
type RenderError struct {
	Type    string
	Message string
	Detail  string
}

// NewRenderError returns a RenderError.
func NewRenderError(typ, msg, detail string) *RenderError {
	return &RenderError{Type: typ, Message: msg, Detail: detail}
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
}

// Render executes the named template with data into w.
func Render(w io.Writer, tmpl *template.Template, name string, data any) error {
	if tmpl.Lookup(name) == nil {
		return NewRenderError("template", "unknown template", name)
	}
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		return NewRenderError("template", "failed to render "+name, err.Error())
	}
	return nil
}

// RenderJSON writes data as indented JSON into w.
func RenderJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return NewRenderError("json", "failed to encode output", err.Error())
	}
	return nil
}
