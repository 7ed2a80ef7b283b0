// Package config provides configuration loading and validation for minihttp.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (MINIHTTP_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with MINIHTTP_ prefix:
//   - server.port → MINIHTTP_SERVER_PORT
//   - use_basic_auth → MINIHTTP_USE_BASIC_AUTH
//   - basic_auth.password → MINIHTTP_BASIC_AUTH_PASSWORD
//
// # Configuration Structure
//
// The Config struct contains:
//   - UseDirectoryBrowser, UsePathFilter, UseBasicAuth: feature toggles
//   - PathFilter: denylist regular expressions, matched case-insensitively
//   - BasicAuth: credentials, session timeouts, cookie name, login throttling
//   - Server: listen port and timeouts
//   - Storage: served directory and dotfile visibility
//   - CORS: cross-origin resource sharing settings
//   - Metrics: Prometheus endpoint
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags and a few cross-field checks:
//   - Port must be 1-65535
//   - Log level must be debug, info, warn, or error
//   - Every path filter pattern must compile when the path filter is enabled
//   - A username or credentials file is required when basic auth is enabled
//
// Failures wrap minihttp.ErrInvalidConfig.
package config
