package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/minihttp/minihttp"
	"github.com/minihttp/minihttp/credentials"
	minihttphttp "github.com/minihttp/minihttp/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for minihttp.
type Config struct {
	Env                 string                  `mapstructure:"env"`
	UseDirectoryBrowser bool                    `mapstructure:"use_directory_browser"`
	UsePathFilter       bool                    `mapstructure:"use_path_filter"`
	UseBasicAuth        bool                    `mapstructure:"use_basic_auth"`
	PathFilter          []string                `mapstructure:"path_filter"`
	BasicAuth           BasicAuthConfig         `mapstructure:"basic_auth"`
	Server              ServerConfig            `mapstructure:"server"`
	Storage             StorageConfig           `mapstructure:"storage"`
	CORS                minihttphttp.CORSConfig `mapstructure:"cors"`
	Metrics             MetricsConfig           `mapstructure:"metrics"`
	Log                 LogConfig               `mapstructure:"log"`
}

// BasicAuthConfig holds the login gate configuration.
type BasicAuthConfig struct {
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	File            string        `mapstructure:"file"` // JSON file with username/password
	TimeoutMinutes  int           `mapstructure:"timeout_minutes" validate:"min=1"`
	SessionLifetime time.Duration `mapstructure:"session_lifetime" validate:"gt=0"`
	SessionSecret   string        `mapstructure:"session_secret"` // random per process when empty
	CookieName      string        `mapstructure:"cookie_name" validate:"required"`
	LoginRateLimit  float64       `mapstructure:"login_rate_limit" validate:"min=0"` // per second; 0 disables
}

// Source describes where the login credentials come from.
func (c BasicAuthConfig) Source() credentials.Source {
	return credentials.Source{
		Inline:   credentials.Pair{Username: c.Username, Password: c.Password},
		File:     c.File,
		Timeout:  time.Duration(c.TimeoutMinutes) * time.Minute,
		Lifetime: c.SessionLifetime,
	}
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"min=0"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" validate:"min=0"` // 0 lets long downloads finish
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" validate:"min=0"`
}

// StorageConfig holds file storage configuration.
type StorageConfig struct {
	Path          string `mapstructure:"path" validate:"required"`
	AllowDotFiles bool   `mapstructure:"allow_dot_files"`
}

// MetricsConfig holds Prometheus endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"omitempty,startswith=/"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// CompilePathFilter returns the compiled denylist, or nil when the path
// filter is disabled.
func (c *Config) CompilePathFilter() (*minihttp.PathFilter, error) {
	if !c.UsePathFilter {
		return nil, nil
	}
	return minihttp.NewPathFilter(c.PathFilter)
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"storage-path": "storage.path",
	"port":         "server.port",
	"log-level":    "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance. Every key
// needs a default so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("use_directory_browser", true)
	v.SetDefault("use_path_filter", false)
	v.SetDefault("use_basic_auth", false)
	v.SetDefault("path_filter", []string{})

	v.SetDefault("basic_auth.username", "")
	v.SetDefault("basic_auth.password", "")
	v.SetDefault("basic_auth.file", "")
	v.SetDefault("basic_auth.timeout_minutes", 60)
	v.SetDefault("basic_auth.session_lifetime", "8h")
	v.SetDefault("basic_auth.session_secret", "")
	v.SetDefault("basic_auth.cookie_name", minihttphttp.DefaultCookieName)
	v.SetDefault("basic_auth.login_rate_limit", 0)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_header_timeout", "10s")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "0s")
	v.SetDefault("server.idle_timeout", "120s")

	v.SetDefault("storage.path", "./wwwroot")
	v.SetDefault("storage.allow_dot_files", false)

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "HEAD", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{})
	v.SetDefault("cors.exposed_headers", []string{})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("MINIHTTP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w: %w", minihttp.ErrInvalidConfig, err)
	}

	// 7. Checks struct tags cannot express
	if err := cfg.check(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) check() error {
	if _, err := c.CompilePathFilter(); err != nil {
		return err
	}

	if c.UseBasicAuth && c.BasicAuth.Username == "" && c.BasicAuth.File == "" {
		return fmt.Errorf("basic_auth.username or basic_auth.file is required when use_basic_auth is set: %w", minihttp.ErrInvalidConfig)
	}

	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return fmt.Errorf("metrics.path is required when metrics are enabled: %w", minihttp.ErrInvalidConfig)
	}

	return nil
}
