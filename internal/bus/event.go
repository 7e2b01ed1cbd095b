package bus

import "time"

// Event kinds published by the client. Projections publish under their
// own namespace after reconciling a server push; the TUI subscribes to
// whatever namespaces it renders.
const (
	KindConnState           = "conn.state_changed"
	KindChatListUpdated     = "chatlist.updated"
	KindConversationMessage = "conversation.message"
	KindProfileUpdated      = "profile.updated"
	KindDirectoryUpdated    = "directory.updated"
	KindContactSaved        = "contact.saved"
	KindProjectionState     = "projection.state_changed"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// E builds an event stamped with the current time.
func E(kind string, payload any) Event {
	return Event{Kind: kind, Timestamp: time.Now(), Payload: payload}
}
