package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/pulsedesk/realtime/internal/dispatch"
)

// fakeSubscriber records subscribe calls.
type fakeSubscriber struct {
	channels []string
}

func (f *fakeSubscriber) Subscribe(channel string) {
	f.channels = append(f.channels, channel)
}

// memRecorder keeps recorded notifications in memory.
type memRecorder struct {
	mu       sync.Mutex
	recorded []Notification
	fail     bool
}

func (m *memRecorder) Record(ctx context.Context, n Notification) error {
	if m.fail {
		return fmt.Errorf("recorder unavailable")
	}
	m.mu.Lock()
	m.recorded = append(m.recorded, n)
	m.mu.Unlock()
	return nil
}

func envelope(s string) dispatch.Envelope {
	return dispatch.Envelope{Type: typeOf(s), Raw: []byte(s)}
}

func typeOf(s string) string {
	switch {
	case strings.Contains(s, `"type":"notification"`):
		return TypeNotification
	case strings.Contains(s, `"type":"message"`):
		return TypeMessage
	case strings.Contains(s, `"type":"conversation_update"`):
		return TypeConversationUpdate
	default:
		return "unknown"
	}
}

func TestStore_NotificationEvent(t *testing.T) {
	rec := &memRecorder{}
	store := NewStore(StoreConfig{RecentLimit: 10}, &fakeSubscriber{}, rec, nil)

	store.HandleEnvelope(envelope(
		`{"type":"notification","payload":{"category":"billing","title":"Payment failed","body":"Card declined"}}`,
	))

	recent := store.Recent()
	if len(recent) != 1 {
		t.Fatalf("Recent() returned %d entries, want 1", len(recent))
	}
	n := recent[0]
	if n.Category != "billing" || n.Title != "Payment failed" || n.Body != "Card declined" {
		t.Errorf("notification = %+v", n)
	}
	if n.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("notification has no ID")
	}
	if store.Unread() != 1 {
		t.Errorf("Unread = %d, want 1", store.Unread())
	}
	if len(rec.recorded) != 1 {
		t.Errorf("recorder saw %d entries, want 1", len(rec.recorded))
	}
}

func TestStore_MessageEventSynthesizesEntry(t *testing.T) {
	store := NewStore(StoreConfig{RecentLimit: 10}, &fakeSubscriber{}, nil, nil)

	store.HandleEnvelope(envelope(
		`{"type":"message","payload":{"conversation_id":"c-1","sender":"Ada","preview":"hey there"}}`,
	))

	recent := store.Recent()
	if len(recent) != 1 {
		t.Fatalf("Recent() returned %d entries, want 1", len(recent))
	}
	if recent[0].Title != "New message from Ada" {
		t.Errorf("Title = %q", recent[0].Title)
	}
	if recent[0].Category != "messages" {
		t.Errorf("Category = %q, want %q", recent[0].Category, "messages")
	}
}

func TestStore_IgnoresUnknownAndUpdateEvents(t *testing.T) {
	store := NewStore(StoreConfig{RecentLimit: 10}, &fakeSubscriber{}, nil, nil)

	store.HandleEnvelope(envelope(`{"type":"conversation_update","payload":{"id":"c-1"}}`))
	store.HandleEnvelope(envelope(`{"type":"unknown","payload":{}}`))

	if got := len(store.Recent()); got != 0 {
		t.Errorf("Recent() has %d entries, want 0", got)
	}
	if store.Unread() != 0 {
		t.Errorf("Unread = %d, want 0", store.Unread())
	}
}

func TestStore_RecentRingCapped(t *testing.T) {
	store := NewStore(StoreConfig{RecentLimit: 3}, &fakeSubscriber{}, nil, nil)

	for i := 0; i < 5; i++ {
		store.HandleEnvelope(envelope(fmt.Sprintf(
			`{"type":"notification","payload":{"title":"n-%d"}}`, i,
		)))
	}

	recent := store.Recent()
	if len(recent) != 3 {
		t.Fatalf("Recent() returned %d entries, want 3", len(recent))
	}
	// Newest first.
	if recent[0].Title != "n-4" || recent[2].Title != "n-2" {
		t.Errorf("ring order = [%s %s %s]", recent[0].Title, recent[1].Title, recent[2].Title)
	}
	if store.Unread() != 5 {
		t.Errorf("Unread = %d, want 5 (cap applies to the ring, not the counter)", store.Unread())
	}
}

func TestStore_MarkAllRead(t *testing.T) {
	store := NewStore(StoreConfig{RecentLimit: 10}, &fakeSubscriber{}, nil, nil)

	store.HandleEnvelope(envelope(`{"type":"notification","payload":{"title":"a"}}`))
	store.HandleEnvelope(envelope(`{"type":"notification","payload":{"title":"b"}}`))

	store.MarkAllRead()

	if store.Unread() != 0 {
		t.Errorf("Unread = %d, want 0", store.Unread())
	}
	for _, n := range store.Recent() {
		if !n.Read {
			t.Errorf("notification %q still unread", n.Title)
		}
	}
}

func TestStore_RecorderFailureDoesNotBlockFeed(t *testing.T) {
	rec := &memRecorder{fail: true}
	store := NewStore(StoreConfig{RecentLimit: 10}, &fakeSubscriber{}, rec, nil)

	store.HandleEnvelope(envelope(`{"type":"notification","payload":{"title":"a"}}`))

	if got := len(store.Recent()); got != 1 {
		t.Errorf("Recent() has %d entries, want 1 despite recorder failure", got)
	}
}

func TestStore_HandleConnectReplaysSubscriptions(t *testing.T) {
	sub := &fakeSubscriber{}
	store := NewStore(StoreConfig{
		Channels:    []string{"notifications", "conversations"},
		RecentLimit: 10,
	}, sub, nil, nil)

	// Every connect re-declares the full channel set.
	store.HandleConnect()
	store.HandleConnect()

	want := []string{"notifications", "conversations", "notifications", "conversations"}
	if len(sub.channels) != len(want) {
		t.Fatalf("subscribed %d times, want %d", len(sub.channels), len(want))
	}
	for i, ch := range want {
		if sub.channels[i] != ch {
			t.Errorf("subscription %d = %q, want %q", i, sub.channels[i], ch)
		}
	}
}
