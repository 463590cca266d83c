package dispatch

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Envelope is a tagged frame from the push gateway, discriminated by its
// type field. Raw carries the full frame for consumer-side decoding.
type Envelope struct {
	Type string
	Raw  json.RawMessage
}

// Handler consumes dispatched envelopes. The classifier does not fan out
// to multiple named handlers; branching on Envelope.Type belongs to the
// consumer.
type Handler func(Envelope)

// Stats contains classifier counters.
type Stats struct {
	Received       int64
	Dispatched     int64
	ParseErrors    int64
	ControlDropped int64
}

// Dispatcher parses and routes inbound frames.
type Dispatcher struct {
	logger  *slog.Logger
	handler Handler

	mu             sync.Mutex
	received       int64
	dispatched     int64
	parseErrors    int64
	controlDropped int64
}

// NewDispatcher creates a new classifier.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// Handle registers the handler for application envelopes.
func (d *Dispatcher) Handle(fn Handler) {
	d.handler = fn
}

// HandleFrame classifies one raw frame. A frame that fails to parse, or
// parses without a type, is dropped without propagating an error.
func (d *Dispatcher) HandleFrame(data []byte) {
	d.mu.Lock()
	d.received++
	d.mu.Unlock()

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil || head.Type == "" {
		d.logger.Warn("dropping malformed frame", "error", err)
		d.mu.Lock()
		d.parseErrors++
		d.mu.Unlock()
		return
	}

	// Liveness bookkeeping stays internal; consumers never see it.
	if head.Type == "ping" || head.Type == "pong" {
		d.mu.Lock()
		d.controlDropped++
		d.mu.Unlock()
		return
	}

	if d.handler != nil {
		d.handler(Envelope{Type: head.Type, Raw: data})
	}

	d.mu.Lock()
	d.dispatched++
	d.mu.Unlock()
}

// Stats returns current classifier counters.
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Stats{
		Received:       d.received,
		Dispatched:     d.dispatched,
		ParseErrors:    d.parseErrors,
		ControlDropped: d.controlDropped,
	}
}
