package http

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/didip/tollbooth/v8"
	"github.com/didip/tollbooth/v8/limiter"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/minihttp/minihttp"
	"github.com/minihttp/minihttp/filesystem"
	"github.com/minihttp/minihttp/metrics"
	"github.com/minihttp/minihttp/session"
)

// FileSource is the collaborator that resolves request paths to files and
// directories. Paths are slash separated and relative to the served root,
// with "." naming the root. minihttp.ErrNotFound signals a missing path.
type FileSource interface {
	Stat(ctx context.Context, path string) (minihttp.DirectoryEntry, error)
	ListDirectory(ctx context.Context, path string) ([]minihttp.DirectoryEntry, error)
	Open(ctx context.Context, path string) (io.ReadSeekCloser, minihttp.DirectoryEntry, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" validate:"min=0"`
}

// AuthConfig enables the login gate.
type AuthConfig struct {
	Credentials minihttp.Credentials
	Identity    minihttp.ServerIdentity
	Codec       *session.Codec
	CookieName  string
	// LoginRateLimit is the allowed login submissions per second and remote
	// address. Zero disables throttling.
	LoginRateLimit float64
	// Now defaults to time.Now.
	Now func() time.Time
}

type HandlerConfig struct {
	DirectoryBrowser bool
	PathFilter       *minihttp.PathFilter
	Auth             *AuthConfig // nil disables the login gate
	CORS             CORSConfig
	MetricsPath      string // empty disables the metrics endpoint
}

// Handler serves files and directory listings behind the path filter and the
// login gate.
type Handler struct {
	config HandlerConfig
	files  FileSource
	gate   *authGate
}

// NewHandler creates a new Handler with the given configuration and file source.
func NewHandler(config *HandlerConfig, files FileSource) *Handler {
	h := &Handler{
		config: *config,
		files:  files,
	}

	if auth := config.Auth; auth != nil {
		now := auth.Now
		if now == nil {
			now = time.Now
		}
		name := auth.CookieName
		if name == "" {
			name = DefaultCookieName
		}
		h.gate = &authGate{
			policy:  minihttp.AuthPolicy{Credentials: auth.Credentials, Identity: auth.Identity},
			cookies: sessionCookies{name: name, codec: auth.Codec},
			now:     now,
		}
	}

	return h
}

// Router returns an http.Handler with the full request pipeline:
// NotFoundFallback, then the path filter (raw and cleaned path), path
// canonicalization and the login gate, then the login endpoints, metrics and
// file serving.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)
	r.Use(NotFoundFallback)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeBareNotFound(w)
	})

	r.Group(func(r chi.Router) {
		r.Use(PathFilterMiddleware(h.config.PathFilter))
		r.Use(CanonicalPathMiddleware)

		if h.gate != nil {
			r.Use(h.gate.middleware)

			r.Get(minihttp.LoginPath, h.gate.handleLoginForm)
			r.Method(http.MethodPost, minihttp.LoginPath, h.loginSubmitHandler())
			r.Get(minihttp.LogoutPath, h.gate.handleLogout)
		}

		if h.config.MetricsPath != "" {
			r.Method(http.MethodGet, h.config.MetricsPath, metrics.Handler())
		}

		r.Get("/*", h.handleServe)
		r.Head("/*", h.handleServe)
	})

	return r
}

func (h *Handler) loginSubmitHandler() http.Handler {
	rate := h.config.Auth.LoginRateLimit
	if rate <= 0 {
		return http.HandlerFunc(h.gate.handleLoginSubmit)
	}

	lmt := tollbooth.NewLimiter(rate, nil)
	lmt.SetIPLookup(limiter.IPLookup{Name: "RemoteAddr"})
	lmt.SetBurst(int(math.Ceil(rate)))
	lmt.SetMessage("Too many login attempts, please try again later.")
	lmt.SetMessageContentType("text/plain; charset=utf-8")
	lmt.SetOnLimitReached(loginRateLimited)

	return tollbooth.LimitFuncHandler(lmt, h.gate.handleLoginSubmit)
}

func (h *Handler) handleServe(w http.ResponseWriter, r *http.Request) {
	rel, ok := minihttp.CleanRelPath(r.URL.Path)
	if !ok {
		writeBareNotFound(w)
		return
	}

	entry, err := h.files.Stat(r.Context(), rel)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	if entry.IsDir {
		if !h.config.DirectoryBrowser {
			writeBareNotFound(w)
			return
		}
		if !strings.HasSuffix(r.URL.Path, "/") {
			target := r.URL.EscapedPath() + "/"
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, target, http.StatusMovedPermanently)
			return
		}
		h.renderListing(w, r, rel)
		return
	}

	if strings.HasSuffix(r.URL.Path, "/") {
		writeBareNotFound(w)
		return
	}

	content, entry, err := h.files.Open(r.Context(), rel)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	defer func() {
		if closeErr := content.Close(); closeErr != nil {
			slog.Warn("failed to close file", "path", rel, "err", closeErr)
		}
	}()

	w.Header().Set("Content-Type", filesystem.DetectContentType(entry.Name))
	http.ServeContent(w, r, entry.Name, entry.LastModified, content)
}
