package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/minihttp/minihttp"
	"github.com/minihttp/minihttp/config"
	"github.com/minihttp/minihttp/credentials"
	"github.com/minihttp/minihttp/filesystem"
	minihttphttp "github.com/minihttp/minihttp/http"
	"github.com/minihttp/minihttp/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the minihttp server. This is also what runs when no subcommand is given.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	storagePath := cfg.Storage.Path
	if err = os.MkdirAll(storagePath, 0o750); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}

	root, err := os.OpenRoot(storagePath)
	if err != nil {
		return fmt.Errorf("open storage root: %w", err)
	}
	defer func() { _ = root.Close() }()

	identity := minihttp.NewServerIdentity()

	handlerConfig, err := buildHandlerConfig(cfg, identity)
	if err != nil {
		return err
	}

	files := filesystem.NewFileStorage(root, cfg.Storage.AllowDotFiles)
	handler := minihttphttp.NewHandler(handlerConfig, files)

	server := newHTTPServer(cfg.Server, handler.Router())
	addr := server.Addr

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
	}()

	slog.Info("starting server",
		"addr", addr,
		"root", storagePath,
		"server_id", identity,
		"directory_browser", cfg.UseDirectoryBrowser,
		"path_filter", cfg.UsePathFilter,
		"basic_auth", cfg.UseBasicAuth,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// newHTTPServer applies the configured timeouts. WriteTimeout defaults to
// zero so large downloads are not cut off; slow clients are bounded by
// ReadHeaderTimeout and IdleTimeout instead.
func newHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// buildHandlerConfig turns the loaded configuration into handler settings.
// Sessions are bound to identity, so a restart signs everyone out.
func buildHandlerConfig(cfg *config.Config, identity minihttp.ServerIdentity) (*minihttphttp.HandlerConfig, error) {
	filter, err := cfg.CompilePathFilter()
	if err != nil {
		return nil, fmt.Errorf("compile path filter: %w", err)
	}

	handlerConfig := &minihttphttp.HandlerConfig{
		DirectoryBrowser: cfg.UseDirectoryBrowser,
		PathFilter:       filter,
		CORS:             cfg.CORS,
	}
	if cfg.Metrics.Enabled {
		handlerConfig.MetricsPath = cfg.Metrics.Path
	}

	if !cfg.UseBasicAuth {
		return handlerConfig, nil
	}

	creds, err := credentials.Resolve(cfg.BasicAuth.Source())
	if err != nil {
		return nil, fmt.Errorf("resolve credentials: %w", err)
	}

	codec, err := session.NewCodec(sessionSecret(cfg.BasicAuth.SessionSecret), creds.IdleTimeout())
	if err != nil {
		return nil, fmt.Errorf("create session codec: %w", err)
	}

	handlerConfig.Auth = &minihttphttp.AuthConfig{
		Credentials:    creds,
		Identity:       identity,
		Codec:          codec,
		CookieName:     cfg.BasicAuth.CookieName,
		LoginRateLimit: cfg.BasicAuth.LoginRateLimit,
	}

	return handlerConfig, nil
}

// sessionSecret returns the configured signing secret, or a fresh random one.
func sessionSecret(configured string) []byte {
	if configured != "" {
		return []byte(configured)
	}
	return []byte(uuid.NewString() + uuid.NewString())
}
