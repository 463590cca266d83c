package dispatch

import (
	"testing"
)

func TestDispatcher_RoutesApplicationEnvelopes(t *testing.T) {
	d := NewDispatcher(nil)

	var got []Envelope
	d.Handle(func(env Envelope) {
		got = append(got, env)
	})

	frame := []byte(`{"type":"notification","payload":{"title":"hi"}}`)
	d.HandleFrame(frame)

	if len(got) != 1 {
		t.Fatalf("handler called %d times, want 1", len(got))
	}
	if got[0].Type != "notification" {
		t.Errorf("Type = %q, want %q", got[0].Type, "notification")
	}
	if string(got[0].Raw) != string(frame) {
		t.Errorf("Raw = %q, want untouched frame", got[0].Raw)
	}

	stats := d.Stats()
	if stats.Received != 1 || stats.Dispatched != 1 {
		t.Errorf("stats = %+v, want 1 received / 1 dispatched", stats)
	}
}

func TestDispatcher_DropsControlFrames(t *testing.T) {
	d := NewDispatcher(nil)

	calls := 0
	d.Handle(func(Envelope) { calls++ })

	d.HandleFrame([]byte(`{"type":"pong"}`))
	d.HandleFrame([]byte(`{"type":"ping"}`))

	if calls != 0 {
		t.Errorf("handler called %d times for control frames, want 0", calls)
	}
	if got := d.Stats().ControlDropped; got != 2 {
		t.Errorf("ControlDropped = %d, want 2", got)
	}
}

func TestDispatcher_DropsMalformedFrames(t *testing.T) {
	d := NewDispatcher(nil)

	calls := 0
	d.Handle(func(Envelope) { calls++ })

	frames := [][]byte{
		[]byte(`not json at all`),
		[]byte(`{"type":`),
		[]byte(`{"payload":{"title":"missing type"}}`),
		[]byte(``),
	}
	for _, f := range frames {
		d.HandleFrame(f) // Must not panic
	}

	if calls != 0 {
		t.Errorf("handler called %d times for malformed frames, want 0", calls)
	}
	stats := d.Stats()
	if stats.ParseErrors != int64(len(frames)) {
		t.Errorf("ParseErrors = %d, want %d", stats.ParseErrors, len(frames))
	}
	if stats.Dispatched != 0 {
		t.Errorf("Dispatched = %d, want 0", stats.Dispatched)
	}
}

func TestDispatcher_NoHandlerRegistered(t *testing.T) {
	d := NewDispatcher(nil)

	// Must not panic without a handler.
	d.HandleFrame([]byte(`{"type":"status_change"}`))

	if got := d.Stats().Dispatched; got != 1 {
		t.Errorf("Dispatched = %d, want 1", got)
	}
}
