// Package app composes the client: config, logging, prefs store,
// session, socket, router, and the view-state projections, wired as an
// fx module shared by the TUI and chatctl binaries.
package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/geekhirusha/chatapp/internal/bus"
	"github.com/geekhirusha/chatapp/internal/config"
	"github.com/geekhirusha/chatapp/internal/imageurl"
	"github.com/geekhirusha/chatapp/internal/lock"
	"github.com/geekhirusha/chatapp/internal/logging"
	"github.com/geekhirusha/chatapp/internal/projection"
	"github.com/geekhirusha/chatapp/internal/router"
	"github.com/geekhirusha/chatapp/internal/session"
	"github.com/geekhirusha/chatapp/internal/socket"
	"github.com/geekhirusha/chatapp/internal/store"
	"github.com/geekhirusha/chatapp/internal/theme"
	"github.com/geekhirusha/chatapp/internal/upload"
)

// Params holds per-binary composition switches.
type Params struct {
	// ConfigPath overrides ~/.chatapp/config.toml; empty uses the default.
	ConfigPath string
	// Console mirrors logs to stderr. The TUI keeps it off because
	// stderr output corrupts the screen.
	Console bool
	// SkipLock disables the single-instance lock, for short-lived
	// chatctl invocations that only read prefs.
	SkipLock bool
}

// Projections bundles the app-lifetime projections. Conversation
// projections are created per open thread by the UI instead.
type Projections struct {
	ChatList  *projection.ChatList
	Profile   *projection.Profile
	Directory *projection.Directory
	Contacts  *projection.ContactSaver
}

// Module returns the fx module composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("app",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideSession,
			provideTheme,
			provideConn,
			provideRouter,
			provideResolver,
			provideUploader,
			provideProjections,
			NewClient,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	path := p.ConfigPath
	if path == "" {
		path = session.ConfigPath()
	}
	return config.Resolve(path)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if p.Console {
		return logging.New(session.LogPath(), "")
	}
	return logging.FileOnly(session.LogPath(), "")
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if p.SkipLock {
		return nil, nil
	}
	if err := session.EnsureDir(); err != nil {
		return nil, err
	}
	l, err := lock.Acquire(session.LockPath())
	if err != nil {
		return nil, err
	}
	logger.Info("instance lock acquired", zap.String("path", session.LockPath()))
	return l, nil
}

func provideStore(logger *zap.Logger) (*store.DB, error) {
	if err := session.EnsureDir(); err != nil {
		return nil, err
	}
	db, err := store.Open(session.DBPath())
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	}
	return db, nil
}

func provideSession(db *store.DB) (*session.Manager, error) {
	return session.NewManager(db)
}

func provideTheme(db *store.DB) *theme.Manager {
	return theme.NewManager(db)
}

func provideConn(cfg *config.Config, logger *zap.Logger) *socket.Conn {
	return socket.New(socket.Options{
		URL:          cfg.ServerURL,
		PingInterval: cfg.PingInterval(),
		Reconnect:    reconnectPolicy(cfg),
	}, logger)
}

func reconnectPolicy(cfg *config.Config) socket.ReconnectPolicy {
	return socket.ReconnectPolicy{
		Auto:       cfg.AutoReconnect,
		Initial:    cfg.ReconnectInitial(),
		Max:        cfg.ReconnectMax(),
		MaxRetries: cfg.ReconnectMaxRetries,
	}
}

func provideRouter(conn *socket.Conn, logger *zap.Logger) *router.Router {
	return router.New(conn, logger)
}

func provideResolver(cfg *config.Config) imageurl.Resolver {
	return imageurl.Resolver{BaseURL: cfg.APIBaseURL, MountPath: cfg.BackendMount}
}

func provideUploader(cfg *config.Config, logger *zap.Logger) *upload.Client {
	return upload.New(cfg.APIBaseURL, cfg.BackendMount, logger)
}

func provideProjections(sess *session.Manager, rt *router.Router, b *bus.Bus, conn *socket.Conn, uploader *upload.Client, logger *zap.Logger) *Projections {
	return &Projections{
		ChatList:  projection.NewChatList(sess, rt, b, conn, logger),
		Profile:   projection.NewProfile(sess, rt, b, conn, uploader, logger),
		Directory: projection.NewDirectory(sess, rt, b, conn, logger),
		Contacts:  projection.NewContactSaver(sess, rt, b, logger),
	}
}

func registerLifecycle(lc fx.Lifecycle, client *Client, projections *Projections, rt *router.Router, conn *socket.Conn, b *bus.Bus, lk *lock.Lock, logger *zap.Logger) {
	var detach func()
	var unwatch func()
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			detach = rt.Attach(conn)

			// Mirror connectivity onto the bus so the UI consumes one
			// event stream instead of a second listener registry.
			unwatch = conn.OnConnectivityChange(func(s socket.State) {
				b.Publish(bus.E(bus.KindConnState, s))
			})

			projections.ChatList.Start()
			projections.Profile.Start()
			projections.Directory.Start()
			projections.Contacts.Start()

			// A stored identity means the user signed in last run;
			// reconnect without asking again.
			if client.SignedIn() {
				go func() {
					if err := client.Connect(); err != nil {
						logger.Warn("initial connect failed", zap.Error(err))
					}
				}()
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			projections.Contacts.Stop()
			projections.Directory.Stop()
			projections.Profile.Stop()
			projections.ChatList.Stop()
			if unwatch != nil {
				unwatch()
			}
			if detach != nil {
				detach()
			}
			conn.Close()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("client stopped")
			return nil
		},
	})
}
