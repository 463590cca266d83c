package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Realtime.URL == "" {
		return errors.New("realtime.url is required")
	}
	u, err := url.Parse(c.Realtime.URL)
	if err != nil {
		return fmt.Errorf("realtime.url is not a valid URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("realtime.url must use ws or wss scheme, got %q", u.Scheme)
	}

	if c.Realtime.MaxAttempts < 0 {
		return errors.New("realtime.max_attempts must be >= 0")
	}
	if c.Realtime.BaseDelay < 0 {
		return errors.New("realtime.base_delay must be >= 0")
	}
	if c.Realtime.HeartbeatInterval <= 0 {
		return errors.New("realtime.heartbeat_interval must be > 0")
	}

	if c.Feed.RecentLimit < 1 {
		return errors.New("feed.recent_limit must be >= 1")
	}

	// Database is optional; validate only when persistence is enabled.
	if c.Database.Host != "" {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	return nil
}
