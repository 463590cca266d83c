package realtime

import (
	"time"
)

// Reserved envelope types. Everything else is application-defined and
// passed through opaque.
const (
	TypePing        = "ping"
	TypePong        = "pong"
	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"
)

// Status is the connection lifecycle state.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusReconnecting
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// State is a point-in-time snapshot of the supervisor.
type State struct {
	Status           Status
	ReconnectAttempt int       // Reset to 0 on every successful connect
	LastConnectedAt  time.Time // Zero if never connected
	LastError        string    // Empty if no error recorded
}

// CredentialProvider supplies the current auth token. The token is
// re-read fresh on every connect attempt, never cached across attempts.
type CredentialProvider interface {
	// Token returns the current credential and whether one is available.
	Token() (string, bool)
}

// FrameSink receives every raw inbound frame from the transport.
type FrameSink interface {
	HandleFrame(data []byte)
}

// channelFrame is the wire form of subscribe/unsubscribe signaling.
type channelFrame struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

// Config configures the Connection Supervisor.
type Config struct {
	URL               string        // WebSocket URL of the push gateway
	BaseDelay         time.Duration // Base reconnect delay (doubles per attempt, no jitter)
	MaxAttempts       int           // Reconnect attempts before giving up
	HeartbeatInterval time.Duration // Interval between ping envelopes while connected
	WriteTimeout      time.Duration // Write deadline for sends
	HandshakeTimeout  time.Duration // Dial handshake timeout
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseDelay:         3 * time.Second,
		MaxAttempts:       5,
		HeartbeatInterval: 30 * time.Second,
		WriteTimeout:      5 * time.Second,
		HandshakeTimeout:  10 * time.Second,
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.BaseDelay == 0 {
		c.BaseDelay = def.BaseDelay
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = def.HeartbeatInterval
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
}
