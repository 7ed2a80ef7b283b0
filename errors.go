package minihttp

import "errors"

var (
	// ErrNotFound is returned when a file or directory does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when a request path cannot be served
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConfig is returned when configuration is malformed or incomplete
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrUnauthenticated is returned when no session is attached to a request
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrStaleSession is returned when a session was issued by another server instance
	ErrStaleSession = errors.New("stale session")
	// ErrSessionExpired is returned when a session is past its idle or absolute deadline
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidSession is returned when a session is malformed or belongs to another user
	ErrInvalidSession = errors.New("invalid session")
	// ErrInvalidCredentials is returned when a login attempt fails
	ErrInvalidCredentials = errors.New("invalid credentials")
)
