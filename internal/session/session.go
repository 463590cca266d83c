package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pulsedesk/realtime/internal/realtime"
)

// Store holds the current auth token. It implements
// realtime.CredentialProvider; the supervisor re-reads it on every
// connect attempt.
type Store struct {
	mu    sync.RWMutex
	token string
}

// NewStore creates an empty credential store.
func NewStore() *Store {
	return &Store{}
}

// SetToken replaces the current credential.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Clear removes the current credential.
func (s *Store) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// Token returns the current credential and whether one is available.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Client is the slice of the supervisor the lifecycle glue drives.
type Client interface {
	Connect(ctx context.Context)
	Disconnect()
	State() realtime.State
}

// Lifecycle reacts to credential availability and application visibility.
// It is a recovery heuristic on top of the supervisor's own state
// machine; it never touches the attempt counter directly.
type Lifecycle struct {
	client      Client
	store       *Store
	autoConnect bool
	logger      *slog.Logger
}

// NewLifecycle creates the lifecycle glue. With autoConnect set, gaining
// a credential connects immediately.
func NewLifecycle(client Client, store *Store, autoConnect bool, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lifecycle{
		client:      client,
		store:       store,
		autoConnect: autoConnect,
		logger:      logger,
	}
}

// TokenAcquired records a fresh credential, connecting when autoConnect
// is enabled.
func (l *Lifecycle) TokenAcquired(ctx context.Context, token string) {
	l.store.SetToken(token)
	if l.autoConnect {
		l.client.Connect(ctx)
	}
}

// TokenLost clears the credential and disconnects. Session logout must
// never leave a connection retrying with a dead token.
func (l *Lifecycle) TokenLost() {
	l.store.Clear()
	l.logger.Info("session credential lost, disconnecting")
	l.client.Disconnect()
}

// Visible reconnects immediately when the application regains foreground
// visibility, rather than waiting out a pending backoff delay.
func (l *Lifecycle) Visible(ctx context.Context) {
	if l.client.State().Status == realtime.StatusConnected {
		return
	}
	l.logger.Debug("application visible, connecting")
	l.client.Connect(ctx)
}
