package telemetry

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds trace export settings. Tracing is a no-op unless Enabled.
type Config struct {
	Enabled      bool    `toml:"enabled"`
	ServiceName  string  `toml:"service_name"`
	Endpoint     string  `toml:"endpoint"`
	Insecure     bool    `toml:"insecure"`
	SamplingRate float64 `toml:"sampling_rate"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled      string
	ServiceName  string
	Endpoint     string
	Insecure     string
	SamplingRate string
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
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.ServiceName != "" {
		c.ServiceName = overlay.ServiceName
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.Insecure {
		c.Insecure = true
	}
	if overlay.SamplingRate != 0 {
		c.SamplingRate = overlay.SamplingRate
	}
}

func (c *Config) loadDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "lectern"
	}
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SamplingRate == 0 {
		c.SamplingRate = 1.0
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v, err := strconv.ParseBool(os.Getenv(env.Enabled)); err == nil {
			c.Enabled = v
		}
	}
	if env.ServiceName != "" {
		if v := os.Getenv(env.ServiceName); v != "" {
			c.ServiceName = v
		}
	}
	if env.Endpoint != "" {
		if v := os.Getenv(env.Endpoint); v != "" {
			c.Endpoint = v
		}
	}
	if env.Insecure != "" {
		if v, err := strconv.ParseBool(os.Getenv(env.Insecure)); err == nil {
			c.Insecure = v
		}
	}
	if env.SamplingRate != "" {
		if v, err := strconv.ParseFloat(os.Getenv(env.SamplingRate), 64); err == nil {
			c.SamplingRate = v
		}
	}
}

func (c *Config) validate() error {
	if c.SamplingRate < 0 || c.SamplingRate > 1 {
		return fmt.Errorf("sampling_rate must be between 0 and 1, got %v", c.SamplingRate)
	}
	if c.Enabled && c.Endpoint == "" {
		return fmt.Errorf("endpoint required when tracing is enabled")
	}
	return nil
}
