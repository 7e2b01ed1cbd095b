package socket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// wsServer starts a test websocket endpoint; handler runs per connection.
func wsServer(t *testing.T, handler func(ws *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		handler(ws)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestConnectIdempotent(t *testing.T) {
	var accepted atomic.Int32
	url := wsServer(t, func(ws *websocket.Conn) {
		accepted.Add(1)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	})

	c := New(Options{URL: url}, nil)
	defer c.Close()

	var opens atomic.Int32
	unsub := c.OnConnectivityChange(func(s State) {
		if s == StateOpen {
			opens.Add(1)
		}
	})
	defer unsub()

	if err := c.Connect(); err != nil {
		t.Fatal(err)
	}
	if err := c.Connect(); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)
	if got := accepted.Load(); got != 1 {
		t.Errorf("server accepted %d connections, want 1", got)
	}
	if got := opens.Load(); got != 1 {
		t.Errorf("got %d open notifications, want 1", got)
	}
	if c.State() != StateOpen {
		t.Errorf("state = %s, want OPEN", c.State())
	}
}

func TestSendWhenClosedDoesNotCrash(t *testing.T) {
	c := New(Options{URL: "ws://localhost:1"}, nil)
	c.Send(map[string]any{"type": "get_chat_list"})
	if c.State() != StateClosed {
		t.Errorf("state = %s, want CLOSED", c.State())
	}
}

func TestSendDeliversOneFrame(t *testing.T) {
	frames := make(chan []byte, 1)
	url := wsServer(t, func(ws *websocket.Conn) {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return
		}
		frames <- raw
	})

	c := New(Options{URL: url}, nil)
	defer c.Close()
	if err := c.Connect(); err != nil {
		t.Fatal(err)
	}

	c.Send(map[string]any{"type": "delete_chat", "userId": 1, "friendId": 2})

	select {
	case raw := <-frames:
		var env map[string]any
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatal(err)
		}
		if env["type"] != "delete_chat" || env["friendId"] != float64(2) {
			t.Errorf("frame = %v", env)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for frame")
	}
}

func TestHeartbeatSendsPing(t *testing.T) {
	frames := make(chan []byte, 4)
	url := wsServer(t, func(ws *websocket.Conn) {
		for {
			_, raw, err := ws.ReadMessage()
			if err != nil {
				return
			}
			frames <- raw
		}
	})

	c := New(Options{URL: url, PingInterval: 50 * time.Millisecond}, nil)
	defer c.Close()
	if err := c.Connect(); err != nil {
		t.Fatal(err)
	}

	select {
	case raw := <-frames:
		var env map[string]any
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatal(err)
		}
		if env["type"] != "ping" {
			t.Errorf("frame type = %v, want ping", env["type"])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for heartbeat")
	}
}

func TestInboundDeliveryAndUnsubscribe(t *testing.T) {
	url := wsServer(t, func(ws *websocket.Conn) {
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"friend_list","payload":[]}`))
		time.Sleep(50 * time.Millisecond)
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"friend_list","payload":[]}`))
		time.Sleep(100 * time.Millisecond)
		_ = ws.Close()
	})

	c := New(Options{URL: url}, nil)
	defer c.Close()

	got := make(chan []byte, 4)
	unsub := c.OnMessage(func(raw []byte) { got <- raw })

	if err := c.Connect(); err != nil {
		t.Fatal(err)
	}

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for first frame")
	}

	unsub()
	time.Sleep(150 * time.Millisecond)
	select {
	case <-got:
		t.Error("received frame after unsubscribe")
	default:
	}
}

func TestServerCloseTransitionsToClosed(t *testing.T) {
	url := wsServer(t, func(ws *websocket.Conn) {
		_ = ws.Close()
	})

	c := New(Options{URL: url}, nil)
	closed := make(chan struct{}, 1)
	c.OnConnectivityChange(func(s State) {
		if s == StateClosed {
			select {
			case closed <- struct{}{}:
			default:
			}
		}
	})

	if err := c.Connect(); err != nil {
		t.Fatal(err)
	}

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for closed notification")
	}
	if c.State() != StateClosed {
		t.Errorf("state = %s, want CLOSED", c.State())
	}
}

func TestManualPolicyDoesNotRedial(t *testing.T) {
	var accepted atomic.Int32
	url := wsServer(t, func(ws *websocket.Conn) {
		accepted.Add(1)
		_ = ws.Close()
	})

	c := New(Options{URL: url}, nil)
	defer c.Close()
	if err := c.Connect(); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := accepted.Load(); got != 1 {
		t.Errorf("server accepted %d connections, want 1 (no auto-reconnect)", got)
	}
}

func TestAutoReconnectRedials(t *testing.T) {
	var accepted atomic.Int32
	url := wsServer(t, func(ws *websocket.Conn) {
		if accepted.Add(1) == 1 {
			_ = ws.Close()
			return
		}
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	})

	c := New(Options{
		URL: url,
		Reconnect: ReconnectPolicy{
			Auto:       true,
			Initial:    20 * time.Millisecond,
			Max:        100 * time.Millisecond,
			MaxRetries: 5,
		},
	}, nil)
	defer c.Close()

	if err := c.Connect(); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if accepted.Load() >= 2 && c.State() == StateOpen {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("no reconnect: accepted=%d state=%s", accepted.Load(), c.State())
}

func TestEndpoint(t *testing.T) {
	got := Endpoint("ws://localhost:8080/ChatApp-Backend/chat", 42)
	if got != "ws://localhost:8080/ChatApp-Backend/chat?userId=42" {
		t.Errorf("endpoint = %q", got)
	}
}
