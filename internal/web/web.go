// Package web holds the embedded HTML templates for the browser pages.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses every embedded page. Page templates are named after their
// file, e.g. "nth_node.html", and share the header/footer defined in layout.html.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// MustTemplates is Templates for wiring code that cannot recover from a broken
// build.
func MustTemplates() *template.Template {
	return template.Must(Templates())
}
