package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/geekhirusha/chatapp/internal/config"
	"github.com/geekhirusha/chatapp/internal/session"
	"github.com/geekhirusha/chatapp/internal/socket"
)

// Client orchestrates identity and connectivity: it owns the mapping
// from the signed-in user to the socket endpoint, so sign-in, sign-out,
// and reconnect all go through it.
type Client struct {
	cfg    *config.Config
	conn   *socket.Conn
	sess   *session.Manager
	logger *zap.Logger
}

// NewClient creates the orchestrator.
func NewClient(cfg *config.Config, conn *socket.Conn, sess *session.Manager, logger *zap.Logger) *Client {
	return &Client{cfg: cfg, conn: conn, sess: sess, logger: logger}
}

// SignedIn reports whether a persisted identity exists.
func (c *Client) SignedIn() bool {
	_, ok := c.sess.UserID()
	return ok
}

// Session exposes the session reader for screens.
func (c *Client) Session() session.Reader { return c.sess }

// SignIn persists the identity and dials the socket as that user.
func (c *Client) SignIn(userID int, displayName string) error {
	if err := c.sess.SignIn(userID, displayName); err != nil {
		return err
	}
	return c.Connect()
}

// SignOut closes the socket and clears the persisted identity.
func (c *Client) SignOut() error {
	c.conn.Close()
	return c.sess.SignOut()
}

// Connect dials the socket as the signed-in user.
func (c *Client) Connect() error {
	userID, ok := c.sess.UserID()
	if !ok {
		return fmt.Errorf("connect: not signed in")
	}
	c.conn.SetEndpoint(socket.Endpoint(c.cfg.ServerURL, userID))
	return c.conn.Connect()
}

// Connectivity returns the current socket state for the status bar.
func (c *Client) Connectivity() socket.State { return c.conn.State() }
