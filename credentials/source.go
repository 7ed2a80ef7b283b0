// Package credentials resolves the single login identity from configuration.
package credentials

import (
	"fmt"
	"time"

	"github.com/minihttp/minihttp"
)

// Source describes where the credentials come from.
type Source struct {
	Inline   Pair   // Username/password given directly in config
	File     string // Path to a JSON file holding a Pair
	Timeout  time.Duration
	Lifetime time.Duration
}

// Resolve builds the credentials from inline config and the file (if
// specified). Non-empty file fields take precedence over inline ones.
// A missing username is an error: a gate without an identity would lock
// everyone out.
func Resolve(src Source) (minihttp.Credentials, error) {
	p := src.Inline

	if src.File != "" {
		fromFile, err := LoadFromFile(src.File)
		if err != nil {
			return minihttp.Credentials{}, err
		}
		if fromFile.Username != "" {
			p.Username = fromFile.Username
		}
		if fromFile.Password != "" {
			p.Password = fromFile.Password
		}
	}

	if p.Username == "" {
		return minihttp.Credentials{}, fmt.Errorf("resolve credentials: username is required: %w", minihttp.ErrInvalidConfig)
	}

	return minihttp.Credentials{
		Username: p.Username,
		Password: p.Password,
		Timeout:  src.Timeout,
		Lifetime: src.Lifetime,
	}, nil
}
