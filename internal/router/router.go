// Package router demultiplexes inbound envelopes by their type tag and
// fans them out to subscribed projections. The type string is the only
// routing key; there is no request/response correlation on the wire, so
// subscribers must never assume the next frame answers their last
// request.
package router

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/geekhirusha/chatapp/internal/wire"
)

// Sender transmits an outbound envelope. Implemented by socket.Conn.
type Sender interface {
	Send(v any)
}

// Handler receives the raw payload of a matching inbound envelope.
type Handler func(payload json.RawMessage)

// MessageSource is the inbound side of the connection manager.
type MessageSource interface {
	OnMessage(fn func(raw []byte)) func()
}

// Router routes inbound frames to type subscribers and builds outbound
// frames for the connection manager.
type Router struct {
	mu   sync.RWMutex
	subs map[string]map[int]Handler
	next int

	sender Sender
	logger *zap.Logger
}

// New creates a router that sends outbound envelopes through sender.
func New(sender Sender, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		subs:   make(map[string]map[int]Handler),
		sender: sender,
		logger: logger,
	}
}

// Attach registers the dispatch loop on the message source. Returns the
// detach function.
func (r *Router) Attach(src MessageSource) func() {
	return src.OnMessage(r.Dispatch)
}

// Subscribe registers handler for every inbound envelope of msgType.
// Multiple handlers may subscribe to the same type; all are invoked in
// unspecified order. Returns an unsubscribe function.
func (r *Router) Subscribe(msgType string, handler Handler) func() {
	r.mu.Lock()
	id := r.next
	r.next++
	if r.subs[msgType] == nil {
		r.subs[msgType] = make(map[int]Handler)
	}
	r.subs[msgType][id] = handler
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs[msgType], id)
		r.mu.Unlock()
	}
}

// Publish builds an outbound envelope from msgType and the extra fields
// and forwards it to the sender.
func (r *Router) Publish(msgType string, fields map[string]any) {
	r.sender.Send(wire.Outbound(msgType, fields))
}

// Dispatch parses one raw inbound frame and delivers its payload to
// every subscriber of its type. Malformed frames are logged and dropped;
// unrecognized types are dropped silently so newer backends do not break
// older clients. Dispatch never panics the read loop.
func (r *Router) Dispatch(raw []byte) {
	env, err := wire.ParseEnvelope(raw)
	if err != nil {
		r.logger.Warn("dropping malformed frame", zap.Error(err))
		return
	}

	r.mu.RLock()
	handlers := make([]Handler, 0, len(r.subs[env.Type]))
	for _, h := range r.subs[env.Type] {
		handlers = append(handlers, h)
	}
	r.mu.RUnlock()

	// Zero subscribers is a no-op: either nobody cares about this type
	// yet, or a screen unmounted before its response arrived.
	for _, h := range handlers {
		h(env.Payload)
	}
}
