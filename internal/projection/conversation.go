package projection

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/geekhirusha/chatapp/internal/bus"
	"github.com/geekhirusha/chatapp/internal/router"
	"github.com/geekhirusha/chatapp/internal/session"
	"github.com/geekhirusha/chatapp/internal/wire"
)

// Conversation mirrors the message thread with one friend. The chat id
// always names the counterparty, never the signed-in user, which is
// what makes sender classification a pure id comparison.
type Conversation struct {
	chatID int

	life   *lifecycle
	sess   session.Reader
	router *router.Router
	bus    *bus.Bus
	logger *zap.Logger
	unsubs []func()

	mu       sync.RWMutex
	messages []wire.Message // newest first
	friend   *wire.User
}

// NewConversation creates the projection for the thread with chatID.
func NewConversation(chatID int, sess session.Reader, rt *router.Router, b *bus.Bus, logger *zap.Logger) *Conversation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Conversation{
		chatID: chatID,
		life:   newLifecycle("conversation", b),
		sess:   sess,
		router: rt,
		bus:    b,
		logger: logger,
	}
}

// Start subscribes to message pushes for the lifetime of the open thread.
func (p *Conversation) Start() {
	p.unsubs = append(p.unsubs,
		p.router.Subscribe(wire.TypeChatMessage, p.onMessage),
	)
}

// Stop detaches the projection. Called when the thread closes.
func (p *Conversation) Stop() {
	for _, unsub := range p.unsubs {
		unsub()
	}
	p.unsubs = nil
}

// ChatID returns the counterparty's user id.
func (p *Conversation) ChatID() int { return p.chatID }

// Phase reports where the projection is in its request cycle.
func (p *Conversation) Phase() Phase { return p.life.phase() }

// Send transmits text to the counterparty. Whitespace-only input is a
// no-op. There is no optimistic echo: the message appears in the thread
// when the server pushes it back, stamped with its authoritative
// timestamp and delivery status.
func (p *Conversation) Send(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if _, ok := p.sess.UserID(); !ok {
		return
	}
	p.router.Publish(wire.TypeSendChatMessage, map[string]any{
		"to":          p.chatID,
		"message":     text,
		"clientMsgId": uuid.NewString(),
	})
}

// IsMe reports whether msg was sent by the signed-in user. Any message
// in this thread whose sender is not the counterparty is ours.
func (p *Conversation) IsMe(msg wire.Message) bool {
	return msg.From.ID != p.chatID
}

// Messages returns a copy of the thread, newest first.
func (p *Conversation) Messages() []wire.Message {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]wire.Message, len(p.messages))
	copy(out, p.messages)
	return out
}

// Friend returns the counterparty's most recent user record, nil until
// they have sent something while the thread was open.
func (p *Conversation) Friend() *wire.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.friend == nil {
		return nil
	}
	f := *p.friend
	return &f
}

func (p *Conversation) onMessage(payload json.RawMessage) {
	var msg wire.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		p.logger.Warn("dropping malformed chat_message payload", zap.Error(err))
		return
	}

	// A frame belongs to this thread iff the counterparty is on either
	// end. Everything else is some other conversation's traffic.
	if msg.From.ID != p.chatID && msg.To.ID != p.chatID {
		return
	}

	p.mu.Lock()
	p.messages = append([]wire.Message{msg}, p.messages...)
	if msg.From.ID == p.chatID {
		// The sender record rides along with every inbound message, so
		// it doubles as a presence update for the counterparty.
		from := msg.From
		p.friend = &from
	}
	p.mu.Unlock()

	if err := p.life.transition(Populated); err != nil {
		p.logger.Warn("conversation phase", zap.Error(err))
	}
	p.bus.Publish(bus.E(bus.KindConversationMessage, p.chatID))
}
