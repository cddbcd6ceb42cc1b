package auth

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultTokenHeader is the fallback header that may carry a raw token.
const DefaultTokenHeader = "X-Auth-Token"

// Config holds the admin credential pair and token signing parameters.
// OIDCIssuer and OIDCClientID enable acceptance of tokens from an external
// identity provider alongside locally issued ones.
type Config struct {
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	Secret         string `toml:"secret"`
	Issuer         string `toml:"issuer"`
	TokenTTL       string `toml:"token_ttl"`
	TokenHeader    string `toml:"token_header"`
	LoginRateLimit int    `toml:"login_rate_limit"`
	OIDCIssuer     string `toml:"oidc_issuer"`
	OIDCClientID   string `toml:"oidc_client_id"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Username       string
	Password       string
	Secret         string
	Issuer         string
	TokenTTL       string
	TokenHeader    string
	LoginRateLimit string
	OIDCIssuer     string
	OIDCClientID   string
}

// TokenTTLDuration returns TokenTTL as a time.Duration.
func (c *Config) TokenTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TokenTTL)
	return d
}

// OIDCEnabled reports whether an external identity provider is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuer != ""
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Username != "" {
		c.Username = overlay.Username
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.Secret != "" {
		c.Secret = overlay.Secret
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.TokenTTL != "" {
		c.TokenTTL = overlay.TokenTTL
	}
	if overlay.TokenHeader != "" {
		c.TokenHeader = overlay.TokenHeader
	}
	if overlay.LoginRateLimit != 0 {
		c.LoginRateLimit = overlay.LoginRateLimit
	}
	if overlay.OIDCIssuer != "" {
		c.OIDCIssuer = overlay.OIDCIssuer
	}
	if overlay.OIDCClientID != "" {
		c.OIDCClientID = overlay.OIDCClientID
	}
}

func (c *Config) loadDefaults() {
	if c.Issuer == "" {
		c.Issuer = "lectern"
	}
	if c.TokenTTL == "" {
		c.TokenTTL = "1h"
	}
	if c.TokenHeader == "" {
		c.TokenHeader = DefaultTokenHeader
	}
	if c.LoginRateLimit == 0 {
		c.LoginRateLimit = 10
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.Username, &c.Username)
	set(env.Password, &c.Password)
	set(env.Secret, &c.Secret)
	set(env.Issuer, &c.Issuer)
	set(env.TokenTTL, &c.TokenTTL)
	set(env.TokenHeader, &c.TokenHeader)
	set(env.OIDCIssuer, &c.OIDCIssuer)
	set(env.OIDCClientID, &c.OIDCClientID)

	if env.LoginRateLimit != "" {
		if v := os.Getenv(env.LoginRateLimit); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.LoginRateLimit = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Username == "" {
		return fmt.Errorf("username required")
	}
	if c.Password == "" {
		return fmt.Errorf("password required")
	}
	if len(c.Secret) < 32 {
		return fmt.Errorf("secret must be at least 32 bytes")
	}
	ttl, err := time.ParseDuration(c.TokenTTL)
	if err != nil {
		return fmt.Errorf("invalid token_ttl: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	if c.LoginRateLimit < 0 {
		return fmt.Errorf("login_rate_limit must not be negative")
	}
	if c.OIDCIssuer != "" && c.OIDCClientID == "" {
		return fmt.Errorf("oidc_client_id required when oidc_issuer is set")
	}
	return nil
}
