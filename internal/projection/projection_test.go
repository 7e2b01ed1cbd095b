package projection

import (
	"encoding/json"
	"testing"

	"github.com/geekhirusha/chatapp/internal/bus"
	"github.com/geekhirusha/chatapp/internal/router"
	"github.com/geekhirusha/chatapp/internal/socket"
)

// fakeSession is a session reader with a fixed identity.
type fakeSession struct {
	id  int
	set bool
}

func (s fakeSession) UserID() (int, bool) { return s.id, s.set }
func (s fakeSession) DisplayName() string { return "" }

var signedIn = fakeSession{id: 7, set: true}
var signedOut = fakeSession{}

// fakeConn is a connectivity source tests drive by hand.
type fakeConn struct {
	state     socket.State
	listeners []func(socket.State)
}

func (c *fakeConn) State() socket.State { return c.state }

func (c *fakeConn) OnConnectivityChange(fn func(socket.State)) func() {
	c.listeners = append(c.listeners, fn)
	return func() {}
}

func (c *fakeConn) open() {
	c.state = socket.StateOpen
	for _, fn := range c.listeners {
		fn(socket.StateOpen)
	}
}

// recordingSender captures every outbound envelope as a map.
type recordingSender struct {
	sent []map[string]any
}

func (s *recordingSender) Send(v any) {
	env, ok := v.(map[string]any)
	if !ok {
		panic("sender received a non-envelope value")
	}
	s.sent = append(s.sent, env)
}

func (s *recordingSender) typesSent() []string {
	var types []string
	for _, env := range s.sent {
		t, _ := env["type"].(string)
		types = append(types, t)
	}
	return types
}

// fixture wires a real router over a recording sender so tests can
// inject inbound frames with dispatch and inspect outbound traffic.
type fixture struct {
	router *router.Router
	sender *recordingSender
	bus    *bus.Bus
	conn   *fakeConn
}

func newFixture() *fixture {
	sender := &recordingSender{}
	return &fixture{
		router: router.New(sender, nil),
		sender: sender,
		bus:    bus.New(),
		conn:   &fakeConn{state: socket.StateClosed},
	}
}

func (f *fixture) dispatch(t *testing.T, msgType string, payload any) {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"type": msgType, "payload": payload})
	if err != nil {
		t.Fatal(err)
	}
	f.router.Dispatch(raw)
}
