package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/minihttp/minihttp"
	"github.com/minihttp/minihttp/metrics"
)

// CanonicalPathMiddleware makes sure everything after it sees the same path
// the file source will resolve. Paths with empty, "." or ".." segments are
// redirected (301) to their cleaned form, query preserved. Paths that cannot
// name a file get a bare 404.
func CanonicalPathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		canonical, ok := minihttp.CanonicalPath(r.URL.Path)
		if !ok {
			writeBareNotFound(w)
			return
		}

		if canonical != r.URL.Path {
			target := minihttp.EscapePath(canonical)
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			slog.Debug("non-canonical path", "path", r.URL.Path, "target", target)
			http.Redirect(w, r, target, http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// PathFilterMiddleware rejects requests whose path matches the filter with a
// 403. Both the raw and the cleaned path are checked. A nil filter lets
// everything through.
func PathFilterMiddleware(filter *minihttp.PathFilter) func(http.Handler) http.Handler {
	if filter == nil || filter.Len() == 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isBlocked(filter, r.URL.Path) {
				slog.Info("path blocked", "path", r.URL.Path, "remote", r.RemoteAddr)
				metrics.RecordPathBlocked()
				WriteText(w, http.StatusForbidden, forbiddenBody)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isBlocked(filter *minihttp.PathFilter, p string) bool {
	if filter.Evaluate(p) == minihttp.Block {
		return true
	}
	canonical, ok := minihttp.CanonicalPath(p)
	return ok && canonical != p && filter.Evaluate(canonical) == minihttp.Block
}

// authGate enforces AuthPolicy on every request that reaches it.
type authGate struct {
	policy  minihttp.AuthPolicy
	cookies sessionCookies
	now     func() time.Time
}

func (g *authGate) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := g.now()

		sess, sessErr := g.cookies.read(r, now)
		res := g.policy.Authorize(r.URL.Path, sess, sessErr, now)

		if res.Destroy {
			g.cookies.destroy(w, r, res.Reason)
		}

		if res.Decision == minihttp.AuthChallenge {
			slog.Info("auth challenge", "path", r.URL.Path, "reason", res.Reason)
			metrics.RecordAuthChallenge(challengeReason(res.Reason))
			http.Redirect(w, r, minihttp.LoginRedirect(r.URL.EscapedPath(), r.URL.RawQuery), http.StatusFound)
			return
		}

		if res.Session != nil {
			if err := g.cookies.write(w, r, *res.Session, now); err != nil {
				HandleError(w, r, err)
				return
			}
			r = r.WithContext(withSession(r.Context(), res.Session))
		}

		next.ServeHTTP(w, r)
	})
}

// current returns the session of r if it is valid right now.
func (g *authGate) current(r *http.Request, now time.Time) *minihttp.Session {
	sess, err := g.cookies.read(r, now)
	if err != nil || sess == nil {
		return nil
	}
	if err := sess.Validate(g.policy.Credentials, g.policy.Identity, now); err != nil {
		return nil
	}
	return sess
}

// NotFoundFallback gives bodiless 404 responses a plain-text body. Responses
// with any other status, or 404s that already carry a body, pass through.
func NotFoundFallback(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nw := &notFoundWriter{ResponseWriter: w}
		next.ServeHTTP(nw, r)

		if nw.pending {
			writeNotFound(w)
		}
	})
}

// notFoundWriter holds back a 404 status until it knows whether a body follows.
type notFoundWriter struct {
	http.ResponseWriter
	wroteHeader bool
	pending     bool
}

func (w *notFoundWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	if code == http.StatusNotFound {
		w.pending = true
		return
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *notFoundWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.pending {
		if len(b) == 0 {
			return 0, nil
		}
		w.pending = false
		w.ResponseWriter.WriteHeader(http.StatusNotFound)
	}
	return w.ResponseWriter.Write(b)
}

func (w *notFoundWriter) Flush() {
	if w.pending {
		return
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *notFoundWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// RequestLogger logs every request at debug level and records request metrics
// labelled with the matched route pattern.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		metrics.RecordHTTPRequest(r.Method, route, status, duration)
		slog.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", duration,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
