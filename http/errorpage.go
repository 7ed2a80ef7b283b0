package http

import (
	"io"
	"net/http"
)

const notFoundBody = "404 Not Found"

const forbiddenBody = "Access to this resource is forbidden."

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Del("Content-Length")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, notFoundBody)
}

// writeBareNotFound sets a 404 status without a body. NotFoundFallback fills
// in the body.
func writeBareNotFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
}
