package minihttp

import (
	"crypto/subtle"
	"time"
)

const (
	// DefaultSessionTimeout is the sliding idle window of a session.
	DefaultSessionTimeout = 60 * time.Minute
	// DefaultSessionLifetime is the absolute lifetime of a session from login.
	DefaultSessionLifetime = 8 * time.Hour
)

// Credentials is the single identity allowed to log in, plus the session
// timing that applies to it. Immutable after load.
type Credentials struct {
	Username string
	Password string
	// Timeout is the sliding idle window; every authenticated request renews it.
	Timeout time.Duration
	// Lifetime is the absolute session duration counted from login.
	Lifetime time.Duration
}

// Authenticate checks a submitted username/password pair. The match is exact
// and case-sensitive, and an unconfigured (empty) username never matches.
// The returned error does not say which of the two fields was wrong.
func (c Credentials) Authenticate(username, password string) error {
	if c.Username == "" {
		return ErrInvalidCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}

// IdleTimeout returns Timeout, or DefaultSessionTimeout when unset.
func (c Credentials) IdleTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultSessionTimeout
	}
	return c.Timeout
}

// SessionLifetime returns Lifetime, or DefaultSessionLifetime when unset.
func (c Credentials) SessionLifetime() time.Duration {
	if c.Lifetime <= 0 {
		return DefaultSessionLifetime
	}
	return c.Lifetime
}
