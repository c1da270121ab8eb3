package editor

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreBadger   = "badger"
)

// Config controls session persistence, expiry and edit application.
type Config struct {
	// Store selects the session backend: file, postgres or badger. Default: "file"
	Store string `toml:"store"`

	// TTL is how long a session lives after its last write. Default: "24h"
	TTL string `toml:"ttl"`

	// ReapSchedule is the cron spec for expiring sessions. Default: "@every 15m"
	ReapSchedule string `toml:"reap_schedule"`

	// BadgerPath is the badger data directory. Default: "<storage>/sessions.badger"
	BadgerPath string `toml:"badger_path"`

	// BatchEdits applies all form-field edits in one fill. Default: true
	BatchEdits *bool `toml:"batch_edits"`
}

// Env maps environment variable names for session configuration.
type Env struct {
	Store        string
	TTL          string
	ReapSchedule string
	BadgerPath   string
	BatchEdits   string
}

func (c *Config) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// Batch reports whether edits are applied in a single fill.
func (c *Config) Batch() bool {
	return c.BatchEdits == nil || *c.BatchEdits
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
	if overlay.Store != "" {
		c.Store = overlay.Store
	}
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
	if overlay.ReapSchedule != "" {
		c.ReapSchedule = overlay.ReapSchedule
	}
	if overlay.BadgerPath != "" {
		c.BadgerPath = overlay.BadgerPath
	}
	if overlay.BatchEdits != nil {
		c.BatchEdits = overlay.BatchEdits
	}
}

func (c *Config) loadDefaults() {
	if c.Store == "" {
		c.Store = StoreFile
	}
	if c.TTL == "" {
		c.TTL = "24h"
	}
	if c.ReapSchedule == "" {
		c.ReapSchedule = "@every 15m"
	}
	if c.BatchEdits == nil {
		batch := true
		c.BatchEdits = &batch
	}
}

func (c *Config) loadEnv(env *Env) error {
	if env.Store != "" {
		if v := os.Getenv(env.Store); v != "" {
			c.Store = v
		}
	}
	if env.TTL != "" {
		if v := os.Getenv(env.TTL); v != "" {
			c.TTL = v
		}
	}
	if env.ReapSchedule != "" {
		if v := os.Getenv(env.ReapSchedule); v != "" {
			c.ReapSchedule = v
		}
	}
	if env.BadgerPath != "" {
		if v := os.Getenv(env.BadgerPath); v != "" {
			c.BadgerPath = v
		}
	}
	if env.BatchEdits != "" {
		if v := os.Getenv(env.BatchEdits); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", env.BatchEdits, err)
			}
			c.BatchEdits = &b
		}
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreFile, StorePostgres, StoreBadger:
	default:
		return fmt.Errorf("unsupported store %q", c.Store)
	}

	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return fmt.Errorf("invalid ttl: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	if _, err := cron.ParseStandard(c.ReapSchedule); err != nil {
		return fmt.Errorf("invalid reap_schedule: %w", err)
	}
	return nil
}
