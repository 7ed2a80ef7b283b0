package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/minihttp/minihttp/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "minihttp",
	Short:   "Static file server with directory listings and a login gate",
	Long: `minihttp serves a directory over HTTP. It can render paginated
directory listings, hide paths matching a denylist, and put everything
behind a single-user login form.

Running minihttp without a subcommand starts the server.`,
	PersistentPreRunE: loadConfig,
	RunE:              runServe,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("storage-path", "", "directory to serve (default: ./wwwroot, env: MINIHTTP_STORAGE_PATH)")
	rootCmd.PersistentFlags().Int("port", 0, "HTTP server port (default: 8080, env: MINIHTTP_SERVER_PORT)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: MINIHTTP_LOG_LEVEL)")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	var files []string
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		files = []string{path}
	}

	cfg, err := config.Load(files, cmd.Flags())
	if err != nil {
		return err
	}

	setupLogging(cfg)
	cmd.SetContext(config.WithContext(cmd.Context(), cfg))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
