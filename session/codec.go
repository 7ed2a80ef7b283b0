// Package session encodes sessions into signed tokens carried by the session
// cookie. Tokens are HS256 JWTs signed with a per-process secret, so nothing
// about a session is stored on the server.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/minihttp/minihttp"
)

// Claims is the token payload. Subject holds the username and ExpiresAt the
// sliding deadline; Absolute is the hard end of the session.
type Claims struct {
	ServerID  string           `json:"srv"`
	RenewedAt *jwt.NumericDate `json:"rnw"`
	Absolute  *jwt.NumericDate `json:"abs"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens.
type Codec struct {
	secret []byte
	idle   time.Duration
}

// NewCodec creates a codec. idle is the sliding window written into the
// token's exp claim; a non-positive value uses minihttp.DefaultSessionTimeout.
func NewCodec(secret []byte, idle time.Duration) (*Codec, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("new session codec: empty secret: %w", minihttp.ErrInvalidConfig)
	}
	if idle <= 0 {
		idle = minihttp.DefaultSessionTimeout
	}
	return &Codec{secret: secret, idle: idle}, nil
}

// Encode signs s into a token.
func (c *Codec) Encode(s minihttp.Session) (string, error) {
	claims := Claims{
		ServerID:  s.ServerID.String(),
		RenewedAt: jwt.NewNumericDate(s.RenewedAt),
		Absolute:  jwt.NewNumericDate(s.ExpiresAt),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.Username,
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.IdleDeadline(c.idle)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	return signed, nil
}

// Decode verifies token and returns the session it carries. Tokens past their
// exp claim fail with minihttp.ErrSessionExpired; every other failure is
// minihttp.ErrInvalidSession.
func (c *Codec) Decode(token string, now time.Time) (minihttp.Session, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return minihttp.Session{}, fmt.Errorf("decode session: %w", minihttp.ErrSessionExpired)
		}
		return minihttp.Session{}, fmt.Errorf("decode session: %w: %w", minihttp.ErrInvalidSession, err)
	}

	if claims.Subject == "" || claims.IssuedAt == nil || claims.RenewedAt == nil || claims.Absolute == nil {
		return minihttp.Session{}, fmt.Errorf("decode session: missing claims: %w", minihttp.ErrInvalidSession)
	}

	return minihttp.Session{
		Username:  claims.Subject,
		ServerID:  minihttp.ServerIdentity(claims.ServerID),
		IssuedAt:  claims.IssuedAt.Time,
		RenewedAt: claims.RenewedAt.Time,
		ExpiresAt: claims.Absolute.Time,
	}, nil
}

// MaxAge is how long a client should keep the cookie carrying s.
func (c *Codec) MaxAge(s minihttp.Session, now time.Time) time.Duration {
	return max(0, s.IdleDeadline(c.idle).Sub(now))
}
