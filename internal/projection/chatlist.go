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

// ChatList mirrors the server's friend list: one row per friend with
// the last message exchanged. The server recomputes the whole list on
// every mutation and pushes it; the projection replaces its snapshot
// wholesale on each push.
type ChatList struct {
	life    *lifecycle
	sess    session.Reader
	router  *router.Router
	bus     *bus.Bus
	conn    Connectivity
	logger  *zap.Logger
	unsubs  []func()

	mu    sync.RWMutex
	chats []wire.ChatSummary
}

// NewChatList creates the chat list projection.
func NewChatList(sess session.Reader, rt *router.Router, b *bus.Bus, conn Connectivity, logger *zap.Logger) *ChatList {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatList{
		life:   newLifecycle("chatlist", b),
		sess:   sess,
		router: rt,
		bus:    b,
		conn:   conn,
		logger: logger,
	}
}

// Start subscribes to friend list pushes and connectivity transitions,
// and issues the initial request if the socket is already open.
func (p *ChatList) Start() {
	p.unsubs = append(p.unsubs,
		p.router.Subscribe(wire.TypeFriendList, p.onFriendList),
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

// Stop detaches the projection from the router and connection manager.
func (p *ChatList) Stop() {
	for _, unsub := range p.unsubs {
		unsub()
	}
	p.unsubs = nil
}

// Phase reports where the projection is in its request cycle.
func (p *ChatList) Phase() Phase { return p.life.phase() }

// Refresh requests the current friend list. Also called when the chat
// list screen regains focus, so the view catches up on anything missed
// while it was not watching. Unauthenticated sessions request nothing.
func (p *ChatList) Refresh() {
	if _, ok := p.sess.UserID(); !ok {
		return
	}
	if err := p.life.transition(Requested); err != nil {
		p.logger.Warn("chatlist refresh skipped", zap.Error(err))
		return
	}
	p.router.Publish(wire.TypeGetChatList, nil)
}

// DeleteChat asks the server to remove the conversation with friendID.
// No local mutation happens here: the server answers with a fresh
// friend_list push and the snapshot follows it.
func (p *ChatList) DeleteChat(friendID int) {
	userID, ok := p.sess.UserID()
	if !ok {
		return
	}
	p.router.Publish(wire.TypeDeleteChat, map[string]any{
		"userId":   userID,
		"friendId": friendID,
	})
}

// ClearMessages asks the server to drop the message history with
// friendID, keeping the chat row itself. Same fire-and-forget contract
// as DeleteChat.
func (p *ChatList) ClearMessages(friendID int) {
	userID, ok := p.sess.UserID()
	if !ok {
		return
	}
	p.router.Publish(wire.TypeClearMessages, map[string]any{
		"userId":   userID,
		"friendId": friendID,
	})
}

func (p *ChatList) onFriendList(payload json.RawMessage) {
	var chats []wire.ChatSummary
	if err := json.Unmarshal(payload, &chats); err != nil {
		p.logger.Warn("dropping malformed friend_list payload", zap.Error(err))
		return
	}

	p.mu.Lock()
	p.chats = chats
	p.mu.Unlock()

	if err := p.life.transition(Populated); err != nil {
		p.logger.Warn("chatlist phase", zap.Error(err))
	}
	p.bus.Publish(bus.E(bus.KindChatListUpdated, len(chats)))
}

// View returns the rows matching search, newest conversation first.
// The search matches case-insensitively against the friend name or the
// last message text; empty search matches everything. The result is a
// copy; the snapshot itself is never handed out.
func (p *ChatList) View(search string) []wire.ChatSummary {
	p.mu.RLock()
	snapshot := make([]wire.ChatSummary, len(p.chats))
	copy(snapshot, p.chats)
	p.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	rows := snapshot[:0]
	for _, c := range snapshot {
		if needle == "" ||
			strings.Contains(strings.ToLower(c.FriendName), needle) ||
			strings.Contains(strings.ToLower(c.LastMessage), needle) {
			rows = append(rows, c)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return wire.ParseTime(rows[i].LastTimestamp).After(wire.ParseTime(rows[j].LastTimestamp))
	})
	return rows
}
