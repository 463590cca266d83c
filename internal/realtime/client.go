package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// pingFrame is the client→server liveness probe.
var pingFrame = []byte(`{"type":"ping"}`)

// Client is the Connection Supervisor. It owns the physical WebSocket
// connection, the retry timer, and the heartbeat ticker; no other
// component touches them.
type Client struct {
	cfg    Config
	creds  CredentialProvider
	logger *slog.Logger
	dialer *websocket.Dialer

	// Callbacks; register before Connect.
	sink         FrameSink
	onConnect    func()
	onDisconnect func()

	// Write serialization
	writeMu sync.Mutex

	// State, guarded by mu
	mu              sync.Mutex
	ctx             context.Context
	status          Status
	attempt         int
	lastConnectedAt time.Time
	lastError       string
	conn            *websocket.Conn
	gen             uint64 // Connection generation; stale goroutines compare against it
	retryTimer      *time.Timer
	heartbeatStop   chan struct{}
	queue           *fifo
}

// NewClient creates a new Connection Supervisor. The credential is read
// from creds fresh on every connect attempt.
func NewClient(cfg Config, creds CredentialProvider, logger *slog.Logger) *Client {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		cfg:    cfg,
		creds:  creds,
		logger: logger.With("client_id", uuid.NewString()[:8]),
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		queue: newFIFO(),
	}
}

// OnFrame registers the sink that receives every raw inbound frame.
func (c *Client) OnFrame(sink FrameSink) {
	c.sink = sink
}

// OnConnect registers a callback invoked after each successful connect,
// once the outbound queue has drained.
func (c *Client) OnConnect(fn func()) {
	c.onConnect = fn
}

// OnDisconnect registers a callback invoked on every transition out of a
// live or pending connection.
func (c *Client) OnDisconnect(fn func()) {
	c.onDisconnect = fn
}

// State returns a snapshot of the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Status:           c.status,
		ReconnectAttempt: c.attempt,
		LastConnectedAt:  c.lastConnectedAt,
		LastError:        c.lastError,
	}
}

// QueueLen returns the number of outbound messages awaiting a connection.
func (c *Client) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.len()
}

// Connect initiates a connection attempt. It is a no-op when no credential
// is available or an attempt is already in flight, and returns without
// waiting for the handshake. Calling Connect while a retry timer is
// pending cancels the timer and dials immediately; the attempt counter is
// not reset.
func (c *Client) Connect(ctx context.Context) {
	c.mu.Lock()

	if c.status == StatusConnecting || c.status == StatusConnected {
		c.mu.Unlock()
		return
	}

	token, ok := c.creds.Token()
	if !ok {
		c.logger.Debug("connect skipped, no credential")
		c.mu.Unlock()
		return
	}

	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}

	if ctx != nil {
		c.ctx = ctx
	} else if c.ctx == nil {
		c.ctx = context.Background()
	}

	c.dialLocked(token)
	c.mu.Unlock()
}

// Disconnect closes the connection with a normal-closure code and forces
// the disconnected state. The retry timer and heartbeat are cleared
// before the transport closes, so no automatic reconnect can escape an
// explicit disconnect. Queued outbound messages are retained.
func (c *Client) Disconnect() {
	c.mu.Lock()

	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	c.stopHeartbeatLocked()

	// Orphan any in-flight dial or read loop.
	c.gen++

	conn := c.conn
	c.conn = nil
	prev := c.status
	c.status = StatusDisconnected
	c.mu.Unlock()

	if conn != nil {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		conn.Close()
	}

	if prev != StatusDisconnected {
		c.logger.Info("disconnected")
		if c.onDisconnect != nil {
			c.onDisconnect()
		}
	}
}

// Send serializes v and writes it to the transport when connected, or
// appends it to the outbound queue otherwise. Queuing is the expected
// behavior while offline, not a failure; the only error returned is a
// serialization failure.
func (c *Client) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.sendRaw(data)
	return nil
}

// Subscribe emits a subscribe control frame for the channel. The frame
// queues like any other message while disconnected; the supervisor does
// not remember the channel set, so replaying subscriptions after a
// reconnect is the consumer's job via OnConnect.
func (c *Client) Subscribe(channel string) {
	data, _ := json.Marshal(channelFrame{Type: TypeSubscribe, Channel: channel})
	c.sendRaw(data)
}

// Unsubscribe emits an unsubscribe control frame for the channel.
func (c *Client) Unsubscribe(channel string) {
	data, _ := json.Marshal(channelFrame{Type: TypeUnsubscribe, Channel: channel})
	c.sendRaw(data)
}

// sendRaw writes immediately when the transport is open, queueing
// otherwise. A failed write re-queues the message; the read loop observes
// the broken transport and drives the close transition.
func (c *Client) sendRaw(data []byte) {
	c.mu.Lock()
	conn := c.conn
	if c.status != StatusConnected || conn == nil {
		c.queue.push(data)
		queued := c.queue.len()
		c.mu.Unlock()
		c.logger.Debug("message queued", "queued", queued)
		return
	}
	c.mu.Unlock()

	if err := c.write(conn, data); err != nil {
		c.logger.Warn("write failed, queueing message", "error", err)
		c.mu.Lock()
		c.queue.push(data)
		c.mu.Unlock()
	}
}

// write serializes writes on the shared transport handle.
func (c *Client) write(conn *websocket.Conn, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// retryDelay returns the backoff before the given reconnect attempt:
// BaseDelay × 2^attempt, no jitter.
func (c *Client) retryDelay(attempt int) time.Duration {
	return c.cfg.BaseDelay << attempt
}

// dialLocked starts an asynchronous connect attempt. Caller holds mu.
func (c *Client) dialLocked(token string) {
	c.status = StatusConnecting
	c.gen++
	gen := c.gen
	ctx := c.ctx

	go c.dial(ctx, gen, token)
}

// dial performs the handshake and hands the connection to the supervisor.
func (c *Client) dial(ctx context.Context, gen uint64, token string) {
	target, err := connectURL(c.cfg.URL, token)
	if err != nil {
		// Construction failure: recorded, never retried, never thrown.
		c.mu.Lock()
		if gen != c.gen {
			c.mu.Unlock()
			return
		}
		c.status = StatusDisconnected
		c.lastError = err.Error()
		c.mu.Unlock()
		c.logger.Error("invalid connection target", "error", err)
		if c.onDisconnect != nil {
			c.onDisconnect()
		}
		return
	}

	conn, _, err := c.dialer.DialContext(ctx, target, nil)
	if err != nil {
		c.closed(gen, false, err)
		return
	}

	c.mu.Lock()
	if gen != c.gen {
		// Superseded by Disconnect while dialing.
		c.mu.Unlock()
		conn.Close()
		return
	}

	c.conn = conn
	c.status = StatusConnected
	c.attempt = 0
	c.lastConnectedAt = time.Now()
	c.lastError = ""
	c.heartbeatStop = make(chan struct{})
	stop := c.heartbeatStop
	c.mu.Unlock()

	c.logger.Info("connected", "url", c.cfg.URL)

	// Flush queued messages before the connect callback observes the
	// connection.
	c.drain(conn)

	if c.onConnect != nil {
		c.onConnect()
	}

	go c.readLoop(conn, gen)
	go c.heartbeatLoop(conn, stop)
}

// connectURL appends the credential to the gateway URL as a query
// parameter.
func connectURL(raw, token string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// drain flushes the outbound queue strictly in FIFO order, stopping and
// leaving the remainder queued if the transport fails mid-drain. Entries
// are removed only after a successful write.
func (c *Client) drain(conn *websocket.Conn) {
	for {
		c.mu.Lock()
		data, ok := c.queue.peek()
		c.mu.Unlock()
		if !ok {
			return
		}

		if err := c.write(conn, data); err != nil {
			c.logger.Warn("drain interrupted", "error", err, "queued", c.QueueLen())
			return
		}

		c.mu.Lock()
		c.queue.pop()
		c.mu.Unlock()
	}
}

// readLoop reads inbound frames and forwards them to the sink until the
// transport closes.
func (c *Client) readLoop(conn *websocket.Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			normal := websocket.IsCloseError(err, websocket.CloseNormalClosure)
			c.closed(gen, normal, err)
			return
		}

		if c.sink != nil {
			c.sink.HandleFrame(data)
		}
	}
}

// closed handles a transport close or failed connect attempt. A normal
// closure never schedules a retry; any other close retries with
// exponential backoff until MaxAttempts is exhausted.
func (c *Client) closed(gen uint64, normal bool, err error) {
	c.mu.Lock()
	if gen != c.gen {
		// A newer connection or an explicit Disconnect owns the state.
		c.mu.Unlock()
		return
	}

	c.stopHeartbeatLocked()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	if err != nil && !normal {
		c.lastError = err.Error()
	}

	switch {
	case normal:
		c.status = StatusDisconnected
		c.mu.Unlock()
		c.logger.Info("connection closed", "error", err)

	case c.attempt < c.cfg.MaxAttempts:
		c.status = StatusReconnecting
		delay := c.retryDelay(c.attempt)
		c.attempt++
		attempt := c.attempt
		c.retryTimer = time.AfterFunc(delay, c.retry)
		c.mu.Unlock()
		c.logger.Warn("connection lost, scheduling reconnect",
			"error", err,
			"attempt", attempt,
			"delay", delay,
		)

	default:
		c.status = StatusDisconnected
		if c.lastError == "" {
			c.lastError = "reconnect attempts exhausted"
		}
		c.mu.Unlock()
		c.logger.Error("reconnect attempts exhausted, giving up",
			"attempts", c.cfg.MaxAttempts,
			"error", err,
		)
	}

	if c.onDisconnect != nil {
		c.onDisconnect()
	}
}

// retry fires from the backoff timer and re-dials.
func (c *Client) retry() {
	c.mu.Lock()
	if c.status != StatusReconnecting {
		// Disconnect won the race with the timer.
		c.mu.Unlock()
		return
	}
	c.retryTimer = nil

	token, ok := c.creds.Token()
	if !ok {
		// Session ended while waiting; stop retrying.
		c.status = StatusDisconnected
		c.lastError = "credential unavailable"
		c.mu.Unlock()
		c.logger.Info("reconnect abandoned, no credential")
		return
	}

	c.dialLocked(token)
	c.mu.Unlock()
}

// heartbeatLoop sends a ping envelope every HeartbeatInterval for as long
// as the given connection is the live one. The tick re-checks the handle
// so a ping is never written into a superseded connection.
func (c *Client) heartbeatLoop(conn *websocket.Conn, stop chan struct{}) {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			open := c.conn == conn && c.status == StatusConnected
			c.mu.Unlock()

			if !open {
				return
			}
			if err := c.write(conn, pingFrame); err != nil {
				c.logger.Debug("heartbeat write failed", "error", err)
			}
		}
	}
}

// stopHeartbeatLocked stops the heartbeat goroutine. Caller holds mu.
func (c *Client) stopHeartbeatLocked() {
	if c.heartbeatStop != nil {
		close(c.heartbeatStop)
		c.heartbeatStop = nil
	}
}
