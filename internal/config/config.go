package config

import "time"

// Config is the root configuration for the realtime client.
type Config struct {
	Realtime RealtimeConfig `yaml:"realtime"`
	Feed     FeedConfig     `yaml:"feed"`
	Database DBConfig       `yaml:"database"`
	Health   HealthConfig   `yaml:"health"`
}

// RealtimeConfig holds Connection Supervisor settings.
type RealtimeConfig struct {
	URL               string        `yaml:"url"`
	BaseDelay         time.Duration `yaml:"base_delay"`
	MaxAttempts       int           `yaml:"max_attempts"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	HandshakeTimeout  time.Duration `yaml:"handshake_timeout"`
	AutoConnect       *bool         `yaml:"auto_connect"` // nil = default (on)
}

// FeedConfig holds notification feed settings.
type FeedConfig struct {
	Channels    []string `yaml:"channels"`
	RecentLimit int      `yaml:"recent_limit"`
}

// DBConfig holds the optional Postgres connection for persisting
// notifications. An empty host disables persistence.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// AutoConnectEnabled reports whether the client should connect as soon as
// a credential is available.
func (r RealtimeConfig) AutoConnectEnabled() bool {
	return r.AutoConnect == nil || *r.AutoConnect
}
