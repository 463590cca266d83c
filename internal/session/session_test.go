package session

import (
	"context"
	"testing"

	"github.com/pulsedesk/realtime/internal/realtime"
)

// fakeClient records lifecycle calls and serves a canned state.
type fakeClient struct {
	state       realtime.State
	connects    int
	disconnects int
}

func (f *fakeClient) Connect(ctx context.Context) { f.connects++ }
func (f *fakeClient) Disconnect()                 { f.disconnects++ }
func (f *fakeClient) State() realtime.State       { return f.state }

func TestStore_TokenLifecycle(t *testing.T) {
	s := NewStore()

	if _, ok := s.Token(); ok {
		t.Error("empty store reported a credential")
	}

	s.SetToken("abc")
	tok, ok := s.Token()
	if !ok || tok != "abc" {
		t.Errorf("Token() = %q, %v, want %q, true", tok, ok, "abc")
	}

	s.Clear()
	if _, ok := s.Token(); ok {
		t.Error("cleared store still reported a credential")
	}
}

func TestLifecycle_TokenAcquiredAutoConnects(t *testing.T) {
	client := &fakeClient{}
	store := NewStore()
	l := NewLifecycle(client, store, true, nil)

	l.TokenAcquired(context.Background(), "abc")

	if client.connects != 1 {
		t.Errorf("connects = %d, want 1", client.connects)
	}
	if tok, _ := store.Token(); tok != "abc" {
		t.Errorf("store token = %q, want %q", tok, "abc")
	}
}

func TestLifecycle_TokenAcquiredWithoutAutoConnect(t *testing.T) {
	client := &fakeClient{}
	l := NewLifecycle(client, NewStore(), false, nil)

	l.TokenAcquired(context.Background(), "abc")

	if client.connects != 0 {
		t.Errorf("connects = %d, want 0", client.connects)
	}
}

func TestLifecycle_TokenLostDisconnects(t *testing.T) {
	client := &fakeClient{}
	store := NewStore()
	store.SetToken("abc")
	l := NewLifecycle(client, store, true, nil)

	l.TokenLost()

	if client.disconnects != 1 {
		t.Errorf("disconnects = %d, want 1", client.disconnects)
	}
	if _, ok := store.Token(); ok {
		t.Error("credential still present after TokenLost")
	}
}

func TestLifecycle_VisibleConnectsWhenNotConnected(t *testing.T) {
	tests := []struct {
		name         string
		status       realtime.Status
		wantConnects int
	}{
		{"disconnected", realtime.StatusDisconnected, 1},
		{"reconnecting", realtime.StatusReconnecting, 1},
		{"connected", realtime.StatusConnected, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{state: realtime.State{Status: tt.status}}
			l := NewLifecycle(client, NewStore(), true, nil)

			l.Visible(context.Background())

			if client.connects != tt.wantConnects {
				t.Errorf("connects = %d, want %d", client.connects, tt.wantConnects)
			}
		})
	}
}
