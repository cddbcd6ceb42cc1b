// Package config loads the service configuration from TOML files and
// LECTERN_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/lectern/internal/auth"
	"github.com/JaimeStill/lectern/pkg/database"
	"github.com/JaimeStill/lectern/pkg/storage"
	"github.com/JaimeStill/lectern/pkg/telemetry"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvLecternEnv             = "LECTERN_ENV"
	EnvLecternConfigDir       = "LECTERN_CONFIG_DIR"
	EnvLecternShutdownTimeout = "LECTERN_SHUTDOWN_TIMEOUT"
	EnvLecternVersion         = "LECTERN_VERSION"
	EnvLecternLogLevel        = "LECTERN_LOG_LEVEL"
)

// DatabaseEnv names the LECTERN_DB_* overrides; cmd/migrate reuses it.
var DatabaseEnv = &database.Env{
	Host:            "LECTERN_DB_HOST",
	Port:            "LECTERN_DB_PORT",
	Name:            "LECTERN_DB_NAME",
	User:            "LECTERN_DB_USER",
	Password:        "LECTERN_DB_PASSWORD",
	SSLMode:         "LECTERN_DB_SSL_MODE",
	ApplicationName: "LECTERN_DB_APPLICATION_NAME",
	MaxOpenConns:    "LECTERN_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "LECTERN_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "LECTERN_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "LECTERN_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "LECTERN_STORAGE_PROVIDER",
	ContainerName:    "LECTERN_STORAGE_CONTAINER_NAME",
	ConnectionString: "LECTERN_STORAGE_CONNECTION_STRING",
	AccountURL:       "LECTERN_STORAGE_ACCOUNT_URL",
	PublicBaseURL:    "LECTERN_STORAGE_PUBLIC_BASE_URL",
	CacheControl:     "LECTERN_STORAGE_CACHE_CONTROL",
	Path:             "LECTERN_STORAGE_PATH",
	MaxListSize:      "LECTERN_STORAGE_MAX_LIST_SIZE",
}

var authEnv = &auth.Env{
	Username:       "LECTERN_AUTH_USERNAME",
	Password:       "LECTERN_AUTH_PASSWORD",
	Secret:         "LECTERN_AUTH_SECRET",
	Issuer:         "LECTERN_AUTH_ISSUER",
	TokenTTL:       "LECTERN_AUTH_TOKEN_TTL",
	TokenHeader:    "LECTERN_AUTH_TOKEN_HEADER",
	LoginRateLimit: "LECTERN_AUTH_LOGIN_RATE_LIMIT",
	OIDCIssuer:     "LECTERN_AUTH_OIDC_ISSUER",
	OIDCClientID:   "LECTERN_AUTH_OIDC_CLIENT_ID",
}

var telemetryEnv = &telemetry.Env{
	Enabled:      "LECTERN_TRACING_ENABLED",
	ServiceName:  "LECTERN_TRACING_SERVICE_NAME",
	Endpoint:     "LECTERN_TRACING_ENDPOINT",
	Insecure:     "LECTERN_TRACING_INSECURE",
	SamplingRate: "LECTERN_TRACING_SAMPLING_RATE",
}

// Config is the root configuration for the Lectern service.
type Config struct {
	Server          ServerConfig     `toml:"server"`
	Database        database.Config  `toml:"database"`
	Storage         storage.Config   `toml:"storage"`
	API             APIConfig        `toml:"api"`
	Auth            auth.Config      `toml:"auth"`
	Tracing         telemetry.Config `toml:"tracing"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
	LogLevel        string           `toml:"log_level"`
}

// Env returns the LECTERN_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvLecternEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}
	dir := os.Getenv(EnvLecternConfigDir)

	base := joinDir(dir, BaseConfigFile)
	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(dir); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Tracing.Merge(&overlay.Tracing)
}

// Finalize applies defaults, environment overrides, and validation to every sub-config.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(DatabaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Tracing.Finalize(telemetryEnv); err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvLecternShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvLecternVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvLecternLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(dir string) string {
	if env := os.Getenv(EnvLecternEnv); env != "" {
		path := joinDir(dir, fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func joinDir(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + string(os.PathSeparator) + name
}
