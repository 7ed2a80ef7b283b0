package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/minihttp/minihttp"
)

// WriteText writes a plain-text response.
func WriteText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	if _, err := io.WriteString(w, body); err != nil {
		slog.Debug("failed to write response body", "error", err)
	}
}

// HandleError writes the response for an error raised while serving a
// request. Missing files produce a bodiless 404 so NotFoundFallback renders it.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, minihttp.ErrNotFound):
		writeBareNotFound(w)
	case errors.Is(err, minihttp.ErrInvalidInput):
		WriteText(w, http.StatusBadRequest, "Bad request.")
	case errors.Is(err, context.Canceled):
		// client went away; nobody is reading the response
		slog.Debug("request canceled", "path", r.URL.Path)
	default:
		slog.Error("request error", "path", r.URL.Path, "error", err)
		WriteText(w, http.StatusInternalServerError, "Internal server error.")
	}
}
