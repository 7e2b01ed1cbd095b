package projection

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/geekhirusha/chatapp/internal/bus"
	"github.com/geekhirusha/chatapp/internal/router"
	"github.com/geekhirusha/chatapp/internal/session"
	"github.com/geekhirusha/chatapp/internal/socket"
	"github.com/geekhirusha/chatapp/internal/upload"
	"github.com/geekhirusha/chatapp/internal/wire"
)

// Uploader is the profile image side-channel. Implemented by
// upload.Client.
type Uploader interface {
	ProfileImage(ctx context.Context, userID int, imagePath string) (*upload.Result, error)
}

// Profile mirrors the signed-in user's own record. The fetch request
// goes out as "set_user_profile"; the verb is wrong but it is what the
// backend dispatches on, so it stays.
type Profile struct {
	life     *lifecycle
	sess     session.Reader
	router   *router.Router
	bus      *bus.Bus
	conn     Connectivity
	uploader Uploader
	logger   *zap.Logger
	unsubs   []func()

	mu   sync.RWMutex
	user *wire.User
}

// NewProfile creates the profile projection.
func NewProfile(sess session.Reader, rt *router.Router, b *bus.Bus, conn Connectivity, uploader Uploader, logger *zap.Logger) *Profile {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profile{
		life:     newLifecycle("profile", b),
		sess:     sess,
		router:   rt,
		bus:      b,
		conn:     conn,
		uploader: uploader,
		logger:   logger,
	}
}

// Start subscribes to profile pushes and connectivity transitions, and
// issues the initial request if the socket is already open.
func (p *Profile) Start() {
	p.unsubs = append(p.unsubs,
		p.router.Subscribe(wire.TypeUserProfile, p.onProfile),
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
func (p *Profile) Stop() {
	for _, unsub := range p.unsubs {
		unsub()
	}
	p.unsubs = nil
}

// Phase reports where the projection is in its request cycle.
func (p *Profile) Phase() Phase { return p.life.phase() }

// Refresh requests the signed-in user's record. Also the focus hook for
// the profile screen.
func (p *Profile) Refresh() {
	if _, ok := p.sess.UserID(); !ok {
		return
	}
	if err := p.life.transition(Requested); err != nil {
		p.logger.Warn("profile refresh skipped", zap.Error(err))
		return
	}
	p.router.Publish(wire.TypeSetUserProfile, nil)
}

// User returns a copy of the current profile snapshot, nil before the
// first push.
func (p *Profile) User() *wire.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.user == nil {
		return nil
	}
	u := *p.user
	return &u
}

// UploadImage sends the image at path through the HTTP side-channel.
// On acceptance the profile, chat list, and directory are all re-requested
// so every view showing the avatar converges on the new image. On
// rejection nothing is re-requested: the locally chosen image stands
// until the user picks another.
func (p *Profile) UploadImage(ctx context.Context, path string) (*upload.Result, error) {
	userID, ok := p.sess.UserID()
	if !ok {
		return nil, ErrNotSignedIn
	}

	result, err := p.uploader.ProfileImage(ctx, userID, path)
	if err != nil {
		return nil, err
	}
	if result.Status {
		p.router.Publish(wire.TypeSetUserProfile, nil)
		p.router.Publish(wire.TypeGetChatList, nil)
		p.router.Publish(wire.TypeGetAllUsers, nil)
	}
	return result, nil
}

func (p *Profile) onProfile(payload json.RawMessage) {
	var user wire.User
	if err := json.Unmarshal(payload, &user); err != nil {
		p.logger.Warn("dropping malformed user_profile payload", zap.Error(err))
		return
	}

	p.mu.Lock()
	p.user = &user
	p.mu.Unlock()

	if err := p.life.transition(Populated); err != nil {
		p.logger.Warn("profile phase", zap.Error(err))
	}
	p.bus.Publish(bus.E(bus.KindProfileUpdated, user.ID))
}
