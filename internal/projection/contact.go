package projection

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/geekhirusha/chatapp/internal/bus"
	"github.com/geekhirusha/chatapp/internal/router"
	"github.com/geekhirusha/chatapp/internal/session"
	"github.com/geekhirusha/chatapp/internal/wire"
)

// ContactSaver submits new contacts and surfaces the server's verdict.
// It keeps no snapshot: the outcome is a transient notice for the UI,
// and an accepted contact shows up through the next roster push.
type ContactSaver struct {
	sess   session.Reader
	router *router.Router
	bus    *bus.Bus
	logger *zap.Logger
	unsubs []func()
}

// NewContactSaver creates the contact saver.
func NewContactSaver(sess session.Reader, rt *router.Router, b *bus.Bus, logger *zap.Logger) *ContactSaver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactSaver{
		sess:   sess,
		router: rt,
		bus:    b,
		logger: logger,
	}
}

// Start subscribes to save acknowledgements.
func (p *ContactSaver) Start() {
	p.unsubs = append(p.unsubs,
		p.router.Subscribe(wire.TypeContactSaveAck, p.onAck),
	)
}

// Stop detaches the saver.
func (p *ContactSaver) Stop() {
	for _, unsub := range p.unsubs {
		unsub()
	}
	p.unsubs = nil
}

// Save submits user as a new contact. Fire-and-forget: the outcome
// arrives later as an acknowledgement frame.
func (p *ContactSaver) Save(user wire.User) {
	if _, ok := p.sess.UserID(); !ok {
		return
	}
	p.router.Publish(wire.TypeSaveNewContact, map[string]any{
		"user": user,
	})
}

func (p *ContactSaver) onAck(payload json.RawMessage) {
	var ack wire.ContactSaveAck
	if err := json.Unmarshal(payload, &ack); err != nil {
		p.logger.Warn("dropping malformed contact ack payload", zap.Error(err))
		return
	}
	p.bus.Publish(bus.E(bus.KindContactSaved, ack))
}
