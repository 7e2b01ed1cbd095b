// Package socket owns the single persistent connection to the chat
// backend. Everything else talks to the wire through it: the router
// registers a message listener, projections send through it, and the UI
// watches connectivity transitions.
package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/geekhirusha/chatapp/internal/wire"
)

// State is the connection lifecycle state.
type State string

const (
	StateConnecting State = "CONNECTING"
	StateOpen       State = "OPEN"
	StateClosed     State = "CLOSED"
)

const (
	writeWait        = 10 * time.Second
	handshakeTimeout = 10 * time.Second
	maxFrameSize     = 1 << 20
)

// ReconnectPolicy controls redial after the socket drops. The default is
// manual: the connection stays CLOSED until a consumer calls Connect
// again, typically because a screen re-requested data. Auto enables
// exponential backoff with jitter, capped at MaxRetries attempts.
type ReconnectPolicy struct {
	Auto       bool
	Initial    time.Duration
	Max        time.Duration
	MaxRetries int
}

// Options configures a connection.
type Options struct {
	URL          string
	PingInterval time.Duration
	Reconnect    ReconnectPolicy
}

// Conn is the connection manager. At most one live websocket exists at a
// time; Connect is idempotent while a dial is in flight or established.
type Conn struct {
	mu    sync.Mutex
	state State
	ws    *websocket.Conn
	gen   int // increments per established connection; guards stale loop callbacks
	down  bool

	writeMu sync.Mutex

	listenerMu sync.RWMutex
	msgSubs    map[int]func([]byte)
	connSubs   map[int]func(State)
	nextSub    int

	opts   Options
	logger *zap.Logger
	cancel context.CancelFunc
}

// New creates a connection manager. No dial happens until Connect.
func New(opts Options, logger *zap.Logger) *Conn {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 60 * time.Second
	}
	return &Conn{
		state:    StateClosed,
		msgSubs:  make(map[int]func([]byte)),
		connSubs: make(map[int]func(State)),
		opts:     opts,
		logger:   logger,
	}
}

// Endpoint builds the websocket URL for a signed-in user.
func Endpoint(base string, userID int) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("userId", strconv.Itoa(userID))
	u.RawQuery = q.Encode()
	return u.String()
}

// State returns the current connection state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetEndpoint changes the dial URL used by the next Connect. The
// endpoint carries the signed-in user id, so sign-in and sign-out
// retarget the connection here before dialing.
func (c *Conn) SetEndpoint(url string) {
	c.mu.Lock()
	c.opts.URL = url
	c.mu.Unlock()
}

// Connect establishes the websocket. Idempotent: if the connection is
// already OPEN or a dial is in flight, it returns immediately.
func (c *Conn) Connect() error {
	c.mu.Lock()
	if c.state == StateOpen || c.state == StateConnecting {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.down = false
	endpoint := c.opts.URL
	c.mu.Unlock()
	c.notify(StateConnecting)

	dialer := &websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	ws, _, err := dialer.Dial(endpoint, nil)
	if err != nil {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		c.notify(StateClosed)
		return fmt.Errorf("dial %s: %w", endpoint, err)
	}
	ws.SetReadLimit(maxFrameSize)

	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.ws = ws
	c.state = StateOpen
	c.gen++
	gen := c.gen
	c.cancel = cancel
	c.mu.Unlock()

	c.logger.Info("socket connected", zap.String("url", endpoint))
	c.notify(StateOpen)

	go c.readLoop(ws, gen)
	go c.heartbeat(ctx)
	return nil
}

// Close tears the connection down and disables auto-reconnect until the
// next Connect.
func (c *Conn) Close() {
	c.mu.Lock()
	c.down = true
	ws := c.ws
	cancel := c.cancel
	alreadyClosed := c.state == StateClosed
	c.state = StateClosed
	c.ws = nil
	c.gen++
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if ws != nil {
		c.writeMu.Lock()
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		_ = ws.Close()
	}
	if !alreadyClosed {
		c.logger.Info("socket closed")
		c.notify(StateClosed)
	}
}

// Send marshals v and transmits it as one text frame. When the socket is
// not OPEN the envelope is logged and dropped; callers never crash on a
// closed connection.
func (c *Conn) Send(v any) {
	c.mu.Lock()
	ws := c.ws
	open := c.state == StateOpen
	c.mu.Unlock()

	if !open || ws == nil {
		c.logger.Warn("send dropped: socket not open")
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("send dropped: marshal failed", zap.Error(err))
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error("set write deadline", zap.Error(err))
		return
	}
	if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
		c.logger.Error("socket write failed", zap.Error(err))
	}
}

// OnMessage registers a listener for raw inbound frames. Returns an
// unregistration function.
func (c *Conn) OnMessage(fn func(raw []byte)) func() {
	c.listenerMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.msgSubs[id] = fn
	c.listenerMu.Unlock()
	return func() {
		c.listenerMu.Lock()
		delete(c.msgSubs, id)
		c.listenerMu.Unlock()
	}
}

// OnConnectivityChange registers a listener for state transitions.
// Returns an unregistration function.
func (c *Conn) OnConnectivityChange(fn func(State)) func() {
	c.listenerMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.connSubs[id] = fn
	c.listenerMu.Unlock()
	return func() {
		c.listenerMu.Lock()
		delete(c.connSubs, id)
		c.listenerMu.Unlock()
	}
}

func (c *Conn) notify(s State) {
	c.listenerMu.RLock()
	listeners := make([]func(State), 0, len(c.connSubs))
	for _, fn := range c.connSubs {
		listeners = append(listeners, fn)
	}
	c.listenerMu.RUnlock()
	for _, fn := range listeners {
		fn(s)
	}
}

// readLoop delivers inbound frames to message listeners until the
// transport errors out. Listener callbacks run on this goroutine, so
// inbound delivery order matches transport order.
func (c *Conn) readLoop(ws *websocket.Conn, gen int) {
	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			c.handleDisconnect(gen, err)
			return
		}

		c.listenerMu.RLock()
		listeners := make([]func([]byte), 0, len(c.msgSubs))
		for _, fn := range c.msgSubs {
			listeners = append(listeners, fn)
		}
		c.listenerMu.RUnlock()
		for _, fn := range listeners {
			fn(raw)
		}
	}
}

// heartbeat sends an application-level ping envelope while the socket is
// open, so idle intermediaries keep the connection alive. The backend
// never answers; this is purely keep-alive.
func (c *Conn) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Send(wire.Outbound(wire.TypePing, nil))
		case <-ctx.Done():
			return
		}
	}
}

func (c *Conn) handleDisconnect(gen int, cause error) {
	c.mu.Lock()
	if c.gen != gen || c.state == StateClosed {
		// A newer connection replaced this one, or Close already ran.
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	ws := c.ws
	c.ws = nil
	cancel := c.cancel
	down := c.down
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if ws != nil {
		_ = ws.Close()
	}
	c.logger.Warn("socket disconnected", zap.Error(cause))
	c.notify(StateClosed)

	if c.opts.Reconnect.Auto && !down {
		go c.redial()
	}
}

// redial retries Connect with exponential backoff and jitter until it
// succeeds, the retry budget runs out, or Close is called.
func (c *Conn) redial() {
	backoff := c.opts.Reconnect.Initial
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	maxBackoff := c.opts.Reconnect.Max
	if maxBackoff <= 0 {
		maxBackoff = 30 * time.Second
	}
	retries := c.opts.Reconnect.MaxRetries
	if retries <= 0 {
		retries = 10
	}

	for attempt := 1; attempt <= retries; attempt++ {
		c.mu.Lock()
		down := c.down
		c.mu.Unlock()
		if down {
			return
		}

		sleep := backoff + time.Duration(rand.Int63n(int64(backoff/2)+1))
		time.Sleep(sleep)

		if err := c.Connect(); err == nil {
			return
		}
		c.logger.Warn("reconnect attempt failed", zap.Int("attempt", attempt))

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	c.logger.Error("reconnect gave up", zap.Int("attempts", retries))
}
