package projection

import (
	"testing"
	"time"

	"github.com/geekhirusha/chatapp/internal/bus"
	"github.com/geekhirusha/chatapp/internal/wire"
)

func TestContactSaveEnvelope(t *testing.T) {
	f := newFixture()
	p := NewContactSaver(signedIn, f.router, f.bus, nil)
	p.Start()
	defer p.Stop()

	p.Save(wire.User{FirstName: "Kasun", LastName: "Jay", CountryCode: "+94", ContactNo: "733333333"})

	if len(f.sender.sent) != 1 {
		t.Fatalf("sent %d envelopes, want 1", len(f.sender.sent))
	}
	env := f.sender.sent[0]
	if env["type"] != wire.TypeSaveNewContact {
		t.Errorf("type = %v", env["type"])
	}
	u, ok := env["user"].(wire.User)
	if !ok || u.FirstName != "Kasun" {
		t.Errorf("user field = %v", env["user"])
	}
}

func TestContactAckSurfacedOnBus(t *testing.T) {
	f := newFixture()
	p := NewContactSaver(signedIn, f.router, f.bus, nil)
	p.Start()
	defer p.Stop()

	ch, unsub := f.bus.Subscribe("contact.", 4)
	defer unsub()

	f.dispatch(t, wire.TypeContactSaveAck, map[string]any{
		"responseStatus": false,
		"message":        "contact already exists",
	})

	select {
	case evt := <-ch:
		if evt.Kind != bus.KindContactSaved {
			t.Errorf("kind = %s", evt.Kind)
		}
		ack, ok := evt.Payload.(wire.ContactSaveAck)
		if !ok || ack.ResponseStatus || ack.Message != "contact already exists" {
			t.Errorf("payload = %+v", evt.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no contact.saved event")
	}
}

func TestContactSaveRequiresSession(t *testing.T) {
	f := newFixture()
	p := NewContactSaver(signedOut, f.router, f.bus, nil)
	p.Start()
	defer p.Stop()

	p.Save(wire.User{FirstName: "Kasun"})

	if len(f.sender.sent) != 0 {
		t.Errorf("signed-out save sent %v", f.sender.typesSent())
	}
}
