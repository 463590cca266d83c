package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseDelay         = 3 * time.Second
	DefaultMaxAttempts       = 5
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultWriteTimeout      = 5 * time.Second
	DefaultHandshakeTimeout  = 10 * time.Second
	DefaultRecentLimit       = 100
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
	DefaultHealthPort        = 8080
	DefaultHealthPath        = "/healthz"
)

func (c *Config) applyDefaults() {
	// Realtime defaults
	if c.Realtime.BaseDelay == 0 {
		c.Realtime.BaseDelay = DefaultBaseDelay
	}
	if c.Realtime.MaxAttempts == 0 {
		c.Realtime.MaxAttempts = DefaultMaxAttempts
	}
	if c.Realtime.HeartbeatInterval == 0 {
		c.Realtime.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.Realtime.WriteTimeout == 0 {
		c.Realtime.WriteTimeout = DefaultWriteTimeout
	}
	if c.Realtime.HandshakeTimeout == 0 {
		c.Realtime.HandshakeTimeout = DefaultHandshakeTimeout
	}

	// Feed defaults
	if c.Feed.RecentLimit == 0 {
		c.Feed.RecentLimit = DefaultRecentLimit
	}

	// Database defaults (only meaningful when a host is configured)
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
	if c.Health.Path == "" {
		c.Health.Path = DefaultHealthPath
	}
}
