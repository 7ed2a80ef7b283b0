package minihttp

import (
	"fmt"
	"time"
)

// Session is the proof of a successful login. It is bound to the
// ServerIdentity of the process that issued it.
//
// A session has two deadlines: the absolute ExpiresAt fixed at login, and a
// sliding idle deadline of RenewedAt plus the configured timeout.
type Session struct {
	Username  string
	ServerID  ServerIdentity
	IssuedAt  time.Time
	RenewedAt time.Time
	ExpiresAt time.Time
}

// NewSession creates a session for username issued under identity at now.
func NewSession(username string, identity ServerIdentity, now time.Time, lifetime time.Duration) Session {
	return Session{
		Username:  username,
		ServerID:  identity,
		IssuedAt:  now,
		RenewedAt: now,
		ExpiresAt: now.Add(lifetime),
	}
}

// Validate checks the session against the configured credentials, the running
// server identity and the clock.
func (s Session) Validate(creds Credentials, identity ServerIdentity, now time.Time) error {
	if s.Username == "" || s.Username != creds.Username {
		return fmt.Errorf("validate session: user %q: %w", s.Username, ErrInvalidSession)
	}

	if s.ServerID != identity {
		return fmt.Errorf("validate session: issued by %q: %w", s.ServerID, ErrStaleSession)
	}

	if !now.Before(s.ExpiresAt) {
		return fmt.Errorf("validate session: lifetime ended: %w", ErrSessionExpired)
	}

	if !now.Before(s.IdleDeadline(creds.IdleTimeout())) {
		return fmt.Errorf("validate session: idle timeout: %w", ErrSessionExpired)
	}

	return nil
}

// Renew returns a copy of the session with its idle window restarted at now.
func (s Session) Renew(now time.Time) Session {
	s.RenewedAt = now
	return s
}

// IdleDeadline is the moment the session expires if no request renews it.
// It never extends past ExpiresAt.
func (s Session) IdleDeadline(timeout time.Duration) time.Time {
	d := s.RenewedAt.Add(timeout)
	if d.After(s.ExpiresAt) {
		return s.ExpiresAt
	}
	return d
}
