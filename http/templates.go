package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	loginTemplate   = template.Must(template.ParseFS(templateFS, "templates/login.html"))
	listingTemplate = template.Must(template.ParseFS(templateFS, "templates/listing.html"))
)

// renderHTML executes tmpl before writing anything, so a template failure
// still produces a clean 500.
func renderHTML(w http.ResponseWriter, code int, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.Error("failed to render template", "template", tmpl.Name(), "error", err)
		WriteText(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("failed to write response body", "error", err)
	}
}
