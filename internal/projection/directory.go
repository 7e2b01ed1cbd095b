package projection

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/geekhirusha/chatapp/internal/bus"
	"github.com/geekhirusha/chatapp/internal/router"
	"github.com/geekhirusha/chatapp/internal/session"
	"github.com/geekhirusha/chatapp/internal/socket"
	"github.com/geekhirusha/chatapp/internal/wire"
)

// Directory mirrors the full user roster, used for starting new chats.
type Directory struct {
	life   *lifecycle
	sess   session.Reader
	router *router.Router
	bus    *bus.Bus
	conn   Connectivity
	logger *zap.Logger
	unsubs []func()

	mu    sync.RWMutex
	users []wire.User
}

// NewDirectory creates the directory projection.
func NewDirectory(sess session.Reader, rt *router.Router, b *bus.Bus, conn Connectivity, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{
		life:   newLifecycle("directory", b),
		sess:   sess,
		router: rt,
		bus:    b,
		conn:   conn,
		logger: logger,
	}
}

// Start subscribes to roster pushes and connectivity transitions, and
// issues the initial request if the socket is already open.
func (p *Directory) Start() {
	p.unsubs = append(p.unsubs,
		p.router.Subscribe(wire.TypeAllUsers, p.onAllUsers),
		p.conn.OnConnectivityChange(func(s socket.State) {
			if s == socket.StateOpen {
				p.Refresh()
			}
		}),
	)
	if p.conn.State() == socket.StateOpen {
		p.Refresh()
	}
}

// Stop detaches the projection.
func (p *Directory) Stop() {
	for _, unsub := range p.unsubs {
		unsub()
	}
	p.unsubs = nil
}

// Phase reports where the projection is in its request cycle.
func (p *Directory) Phase() Phase { return p.life.phase() }

// Refresh requests the roster. Also the focus hook for the directory
// screen.
func (p *Directory) Refresh() {
	if _, ok := p.sess.UserID(); !ok {
		return
	}
	if err := p.life.transition(Requested); err != nil {
		p.logger.Warn("directory refresh skipped", zap.Error(err))
		return
	}
	p.router.Publish(wire.TypeGetAllUsers, nil)
}

func (p *Directory) onAllUsers(payload json.RawMessage) {
	var users []wire.User
	if err := json.Unmarshal(payload, &users); err != nil {
		p.logger.Warn("dropping malformed all_users payload", zap.Error(err))
		return
	}

	p.mu.Lock()
	p.users = users
	p.mu.Unlock()

	if err := p.life.transition(Populated); err != nil {
		p.logger.Warn("directory phase", zap.Error(err))
	}
	p.bus.Publish(bus.E(bus.KindDirectoryUpdated, len(users)))
}

// View returns the roster rows matching filter, name ascending. The
// filter matches case-insensitively against the display name or the
// phone number; empty filter matches everything.
func (p *Directory) View(filter string) []wire.User {
	p.mu.RLock()
	snapshot := make([]wire.User, len(p.users))
	copy(snapshot, p.users)
	p.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(filter))
	rows := snapshot[:0]
	for _, u := range snapshot {
		name := strings.ToLower(displayName(u))
		phone := u.CountryCode + u.ContactNo
		if needle == "" ||
			strings.Contains(name, needle) ||
			strings.Contains(phone, needle) {
			rows = append(rows, u)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(displayName(rows[i])) < strings.ToLower(displayName(rows[j]))
	})
	return rows
}

func displayName(u wire.User) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
