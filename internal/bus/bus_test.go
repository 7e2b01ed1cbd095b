package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("chatlist.", 10)
	defer unsub()

	b.Publish(E(KindChatListUpdated, 3))

	select {
	case evt := <-ch:
		if evt.Kind != KindChatListUpdated {
			t.Errorf("got kind %q, want %q", evt.Kind, KindChatListUpdated)
		}
		if evt.Payload.(int) != 3 {
			t.Errorf("payload = %v, want 3", evt.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("conversation.", 10)
	defer unsub()

	b.Publish(E(KindChatListUpdated, nil))
	b.Publish(E(KindConversationMessage, nil))

	select {
	case evt := <-ch:
		if evt.Kind != KindConversationMessage {
			t.Errorf("got kind %q, want %q", evt.Kind, KindConversationMessage)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	// Ensure the chatlist event was not delivered.
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected: no more events.
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("profile.", 10)
	unsub()

	b.Publish(E(KindProfileUpdated, nil))

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected.
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("contact.", 1)
	defer unsub()

	// Fill buffer.
	b.Publish(E(KindContactSaved, "first"))
	// This should be dropped (non-blocking).
	b.Publish(E(KindContactSaved, "second"))

	evt := <-ch
	if evt.Payload.(string) != "first" {
		t.Errorf("got %v, want first", evt.Payload)
	}
}
