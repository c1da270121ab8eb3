package toolkit

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config controls how the pdftk binary is invoked.
type Config struct {
	// Binary is the pdftk executable name or path. Default: "pdftk"
	Binary string `toml:"binary"`

	// Timeout bounds each invocation. Default: "60s"
	Timeout string `toml:"timeout"`

	// Flatten bakes filled values into page content. Default: true
	Flatten *bool `toml:"flatten"`

	// NeedAppearances asks viewers to regenerate field appearances. Default: true
	NeedAppearances *bool `toml:"need_appearances"`
}

// Env maps environment variable names for toolkit configuration.
type Env struct {
	Binary          string
	Timeout         string
	Flatten         string
	NeedAppearances string
}

func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// FillOptions returns the configured form-fill flags. Valid after Finalize.
func (c *Config) FillOptions() FillOptions {
	return FillOptions{
		Flatten:         c.Flatten == nil || *c.Flatten,
		NeedAppearances: c.NeedAppearances == nil || *c.NeedAppearances,
	}
}

func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	return c.validate()
}

func (c *Config) Merge(overlay *Config) {
	if overlay.Binary != "" {
		c.Binary = overlay.Binary
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Flatten != nil {
		c.Flatten = overlay.Flatten
	}
	if overlay.NeedAppearances != nil {
		c.NeedAppearances = overlay.NeedAppearances
	}
}

func (c *Config) loadDefaults() {
	if c.Binary == "" {
		c.Binary = "pdftk"
	}
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if c.Flatten == nil {
		c.Flatten = boolPtr(true)
	}
	if c.NeedAppearances == nil {
		c.NeedAppearances = boolPtr(true)
	}
}

func (c *Config) loadEnv(env *Env) error {
	if env.Binary != "" {
		if v := os.Getenv(env.Binary); v != "" {
			c.Binary = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.Flatten != "" {
		if v := os.Getenv(env.Flatten); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", env.Flatten, err)
			}
			c.Flatten = &b
		}
	}
	if env.NeedAppearances != "" {
		if v := os.Getenv(env.NeedAppearances); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", env.NeedAppearances, err)
			}
			c.NeedAppearances = &b
		}
	}
	return nil
}

func (c *Config) validate() error {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
