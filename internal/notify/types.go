package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types produced by the push gateway for the dashboard.
const (
	TypeNotification       = "notification"
	TypeMessage            = "message"
	TypeConversationUpdate = "conversation_update"
)

// Notification is one entry in the in-app feed.
type Notification struct {
	ID         uuid.UUID
	Type       string // Originating event type
	Category   string // security, billing, team, messages, integrations, updates
	Title      string
	Body       string
	Payload    json.RawMessage // Full original frame
	ReceivedAt time.Time
	Read       bool
}

// Recorder persists notifications. Persistence failures are logged and
// never block the feed.
type Recorder interface {
	Record(ctx context.Context, n Notification) error
}

// Subscriber is the slice of the supervisor the feed uses to re-issue
// its channel subscriptions after a reconnect.
type Subscriber interface {
	Subscribe(channel string)
}

// notificationWire is the payload of a notification event.
type notificationWire struct {
	Payload struct {
		Category string `json:"category"`
		Title    string `json:"title"`
		Body     string `json:"body"`
	} `json:"payload"`
}

// messageWire is the payload of a message event.
type messageWire struct {
	Payload struct {
		ConversationID string `json:"conversation_id"`
		Sender         string `json:"sender"`
		Preview        string `json:"preview"`
	} `json:"payload"`
}
