package minihttp

import (
	"net/url"
	"time"
)

const (
	// LoginPath is the endpoint serving the login form.
	LoginPath = "/login"
	// LogoutPath is the endpoint destroying the session.
	LogoutPath = "/logout"
	// ReturnURLParam is the query parameter carrying the post-login target.
	ReturnURLParam = "returnUrl"
)

// AuthDecision is the outcome of AuthPolicy.Authorize.
type AuthDecision int

const (
	AuthPass AuthDecision = iota
	AuthChallenge
)

func (d AuthDecision) String() string {
	if d == AuthChallenge {
		return "challenge"
	}
	return "pass"
}

// AuthResult describes what the transport must do with a request.
type AuthResult struct {
	Decision AuthDecision
	// Session is the renewed session on pass. It is nil for challenges and
	// for requests to the login/logout endpoints.
	Session *Session
	// Destroy is set when an attached session must be removed from the client.
	Destroy bool
	// Reason explains a challenge.
	Reason error
}

// AuthPolicy decides whether requests may reach the file data.
type AuthPolicy struct {
	Credentials Credentials
	Identity    ServerIdentity
}

// Authorize evaluates one request.
//
// sess is the session attached to the request, or nil when there is none.
// sessErr is non-nil when the client presented a session artifact that could
// not be decoded or verified; such a session is treated as attached but
// invalid.
func (p AuthPolicy) Authorize(requestPath string, sess *Session, sessErr error, now time.Time) AuthResult {
	if IsAuthEndpoint(requestPath) {
		return AuthResult{Decision: AuthPass}
	}

	if sessErr != nil {
		return AuthResult{Decision: AuthChallenge, Destroy: true, Reason: sessErr}
	}

	if sess == nil {
		return AuthResult{Decision: AuthChallenge, Reason: ErrUnauthenticated}
	}

	if err := sess.Validate(p.Credentials, p.Identity, now); err != nil {
		return AuthResult{Decision: AuthChallenge, Destroy: true, Reason: err}
	}

	renewed := sess.Renew(now)
	return AuthResult{Decision: AuthPass, Session: &renewed}
}

// IsAuthEndpoint reports whether requestPath is exactly the login or logout
// endpoint. Nothing below them is exempt, so "/login/x" and "/LOGIN" are
// gated like any other path.
func IsAuthEndpoint(requestPath string) bool {
	return requestPath == LoginPath || requestPath == LogoutPath
}

// LoginRedirect builds the login URL for a challenged request, carrying the
// original path and query as a percent-encoded returnUrl.
func LoginRedirect(requestPath, rawQuery string) string {
	target := requestPath
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return LoginPath + "?" + ReturnURLParam + "=" + url.QueryEscape(target)
}

// ReturnURL extracts the post-login target from a query, defaulting to "/".
// The value is not checked for being same-origin.
func ReturnURL(q url.Values) string {
	if v := q.Get(ReturnURLParam); v != "" {
		return v
	}
	return "/"
}
