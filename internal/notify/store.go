package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pulsedesk/realtime/internal/dispatch"
)

// StoreConfig configures the notification feed.
type StoreConfig struct {
	Channels    []string // Channels to (re)subscribe on every connect
	RecentLimit int      // Max entries kept in the recent ring
}

// Store is the notification feed. Register HandleEnvelope as the
// dispatcher handler and HandleConnect as the supervisor's connect
// callback.
type Store struct {
	cfg      StoreConfig
	sub      Subscriber
	recorder Recorder // nil disables persistence
	logger   *slog.Logger

	mu     sync.Mutex
	recent []Notification // Newest first, capped at RecentLimit
	unread int
}

// NewStore creates a notification feed.
func NewStore(cfg StoreConfig, sub Subscriber, recorder Recorder, logger *slog.Logger) *Store {
	if cfg.RecentLimit < 1 {
		cfg.RecentLimit = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		cfg:      cfg,
		sub:      sub,
		recorder: recorder,
		logger:   logger,
	}
}

// HandleConnect re-issues the feed's channel subscriptions. The
// supervisor delivers subscription intent only, so whatever the server
// forgot across the disconnect is re-declared here on every connect.
func (s *Store) HandleConnect() {
	for _, ch := range s.cfg.Channels {
		s.sub.Subscribe(ch)
	}
	if len(s.cfg.Channels) > 0 {
		s.logger.Debug("channels subscribed", "count", len(s.cfg.Channels))
	}
}

// HandleEnvelope classifies one application envelope into the feed.
// Unknown event types are ignored.
func (s *Store) HandleEnvelope(env dispatch.Envelope) {
	switch env.Type {
	case TypeNotification:
		var wire notificationWire
		if err := json.Unmarshal(env.Raw, &wire); err != nil {
			s.logger.Warn("bad notification payload", "error", err)
			return
		}
		s.add(Notification{
			Type:     env.Type,
			Category: wire.Payload.Category,
			Title:    wire.Payload.Title,
			Body:     wire.Payload.Body,
			Payload:  env.Raw,
		})

	case TypeMessage:
		var wire messageWire
		if err := json.Unmarshal(env.Raw, &wire); err != nil {
			s.logger.Warn("bad message payload", "error", err)
			return
		}
		s.add(Notification{
			Type:     env.Type,
			Category: "messages",
			Title:    "New message from " + wire.Payload.Sender,
			Body:     wire.Payload.Preview,
			Payload:  env.Raw,
		})

	case TypeConversationUpdate:
		// Conversation state changes refresh the page that owns them;
		// they do not produce a feed entry.
		s.logger.Debug("conversation update received")

	default:
		s.logger.Debug("ignoring event type", "type", env.Type)
	}
}

// add appends a notification to the feed and persists it.
func (s *Store) add(n Notification) {
	n.ID = uuid.New()
	n.ReceivedAt = time.Now()

	s.mu.Lock()
	s.recent = append([]Notification{n}, s.recent...)
	if len(s.recent) > s.cfg.RecentLimit {
		s.recent = s.recent[:s.cfg.RecentLimit]
	}
	s.unread++
	s.mu.Unlock()

	if s.recorder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.recorder.Record(ctx, n); err != nil {
			s.logger.Warn("failed to persist notification", "id", n.ID, "error", err)
		}
	}
}

// Unread returns the number of notifications received since the last
// MarkAllRead.
func (s *Store) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// MarkAllRead clears the unread counter and marks recent entries read.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unread = 0
	for i := range s.recent {
		s.recent[i].Read = true
	}
}

// Recent returns a copy of the recent notifications, newest first.
func (s *Store) Recent() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.recent))
	copy(out, s.recent)
	return out
}
