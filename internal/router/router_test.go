package router

import (
	"encoding/json"
	"testing"

	"github.com/geekhirusha/chatapp/internal/wire"
)

// recordingSender captures outbound envelopes.
type recordingSender struct {
	sent []any
}

func (s *recordingSender) Send(v any) { s.sent = append(s.sent, v) }

func TestSubscribeAndDispatch(t *testing.T) {
	r := New(&recordingSender{}, nil)

	var got json.RawMessage
	r.Subscribe(wire.TypeFriendList, func(payload json.RawMessage) {
		got = payload
	})

	r.Dispatch([]byte(`{"type":"friend_list","payload":[{"friendId":1}]}`))

	if got == nil {
		t.Fatal("handler not invoked")
	}
	var chats []wire.ChatSummary
	if err := json.Unmarshal(got, &chats); err != nil {
		t.Fatal(err)
	}
	if len(chats) != 1 || chats[0].FriendID != 1 {
		t.Errorf("chats = %+v", chats)
	}
}

func TestUnrecognizedTypeDropped(t *testing.T) {
	r := New(&recordingSender{}, nil)

	invoked := false
	r.Subscribe(wire.TypeFriendList, func(json.RawMessage) { invoked = true })

	r.Dispatch([]byte(`{"type":"unknown_future_type","payload":{}}`))

	if invoked {
		t.Error("handler invoked for unrelated type")
	}
}

func TestMalformedFramesDropped(t *testing.T) {
	r := New(&recordingSender{}, nil)
	r.Subscribe(wire.TypeFriendList, func(json.RawMessage) {
		t.Error("handler invoked for malformed frame")
	})

	// Neither of these may panic or stop later dispatches.
	r.Dispatch([]byte("not json at all"))
	r.Dispatch([]byte(`{"payload":{}}`))

	delivered := false
	r.Subscribe(wire.TypeUserProfile, func(json.RawMessage) { delivered = true })
	r.Dispatch([]byte(`{"type":"user_profile","payload":{}}`))
	if !delivered {
		t.Error("dispatch loop did not survive malformed frames")
	}
}

func TestMultipleHandlersSameType(t *testing.T) {
	r := New(&recordingSender{}, nil)

	count := 0
	r.Subscribe(wire.TypeFriendList, func(json.RawMessage) { count++ })
	r.Subscribe(wire.TypeFriendList, func(json.RawMessage) { count++ })

	r.Dispatch([]byte(`{"type":"friend_list","payload":[]}`))

	if count != 2 {
		t.Errorf("invoked %d handlers, want 2", count)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	r := New(&recordingSender{}, nil)

	count := 0
	unsub := r.Subscribe(wire.TypeFriendList, func(json.RawMessage) { count++ })

	r.Dispatch([]byte(`{"type":"friend_list","payload":[]}`))
	unsub()
	r.Dispatch([]byte(`{"type":"friend_list","payload":[]}`))

	if count != 1 {
		t.Errorf("invoked %d times, want 1", count)
	}
}

func TestZeroSubscriberDeliveryIsNoOp(t *testing.T) {
	r := New(&recordingSender{}, nil)
	// Must not panic with nobody listening.
	r.Dispatch([]byte(`{"type":"friend_list","payload":[]}`))
}

func TestPublishBuildsEnvelope(t *testing.T) {
	sender := &recordingSender{}
	r := New(sender, nil)

	r.Publish(wire.TypeDeleteChat, map[string]any{"userId": 1, "friendId": 2})

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d envelopes, want 1", len(sender.sent))
	}
	env, ok := sender.sent[0].(map[string]any)
	if !ok {
		t.Fatalf("envelope type = %T", sender.sent[0])
	}
	if env["type"] != "delete_chat" || env["userId"] != 1 || env["friendId"] != 2 {
		t.Errorf("envelope = %v", env)
	}
}

func TestPublishBareType(t *testing.T) {
	sender := &recordingSender{}
	r := New(sender, nil)

	r.Publish(wire.TypeGetChatList, nil)

	env := sender.sent[0].(map[string]any)
	if len(env) != 1 || env["type"] != "get_chat_list" {
		t.Errorf("envelope = %v", env)
	}
}
