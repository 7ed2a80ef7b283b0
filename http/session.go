package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/minihttp/minihttp"
	"github.com/minihttp/minihttp/metrics"
	"github.com/minihttp/minihttp/session"
)

// DefaultCookieName is the session cookie name used when none is configured.
const DefaultCookieName = "MiniAuth"

type sessionKey struct{}

// SessionFromContext returns the validated session of the current request,
// or nil when the request is anonymous.
func SessionFromContext(ctx context.Context) *minihttp.Session {
	s, _ := ctx.Value(sessionKey{}).(*minihttp.Session)
	return s
}

func withSession(ctx context.Context, s *minihttp.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// sessionCookies reads and writes the session cookie.
type sessionCookies struct {
	name  string
	codec *session.Codec
}

// read decodes the session cookie of r. It returns (nil, nil) when no cookie
// is attached and a non-nil error when one is attached but unusable.
func (c sessionCookies) read(r *http.Request, now time.Time) (*minihttp.Session, error) {
	cookie, err := r.Cookie(c.name)
	if errors.Is(err, http.ErrNoCookie) {
		return nil, nil
	}
	if err != nil {
		return nil, minihttp.ErrInvalidSession
	}

	s, err := c.codec.Decode(cookie.Value, now)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c sessionCookies) attached(r *http.Request) bool {
	_, err := r.Cookie(c.name)
	return err == nil
}

func (c sessionCookies) write(w http.ResponseWriter, r *http.Request, s minihttp.Session, now time.Time) error {
	token, err := c.codec.Encode(s)
	if err != nil {
		return err
	}

	maxAge := max(1, int(c.codec.MaxAge(s, now)/time.Second))

	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  now.Add(time.Duration(maxAge) * time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// clear removes the session cookie from the client. Clearing a cookie that
// does not exist is harmless.
func (c sessionCookies) clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c sessionCookies) destroy(w http.ResponseWriter, r *http.Request, reason error) {
	c.clear(w, r)
	metrics.RecordSessionDestroyed()
	slog.Debug("session destroyed", "path", r.URL.Path, "reason", reason)
}

func challengeReason(err error) string {
	switch {
	case errors.Is(err, minihttp.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, minihttp.ErrStaleSession):
		return "stale"
	case errors.Is(err, minihttp.ErrSessionExpired):
		return "expired"
	default:
		return "invalid"
	}
}
