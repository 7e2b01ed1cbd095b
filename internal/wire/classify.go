package wire

import "encoding/json"

// Frame is a classified inbound envelope. The variant set is closed:
// every recognized type has a concrete struct, and anything else becomes
// Unknown rather than being silently coerced.
type Frame interface {
	isFrame()
}

// FriendListFrame carries the authoritative chat list snapshot.
type FriendListFrame struct {
	Chats []ChatSummary
}

// UserProfileFrame carries the signed-in user's profile snapshot.
type UserProfileFrame struct {
	Profile User
}

// ChatMessageFrame carries one pushed chat turn.
type ChatMessageFrame struct {
	Message Message
}

// AllUsersFrame carries the user directory snapshot.
type AllUsersFrame struct {
	Users []User
}

// ContactSaveAckFrame carries the save-contact acknowledgement.
type ContactSaveAckFrame struct {
	Ack ContactSaveAck
}

// UnknownFrame preserves a frame the client does not recognize. New
// server types must be tolerated, not crashed on.
type UnknownFrame struct {
	RawType    string
	RawPayload json.RawMessage
}

func (FriendListFrame) isFrame()     {}
func (UserProfileFrame) isFrame()    {}
func (ChatMessageFrame) isFrame()    {}
func (AllUsersFrame) isFrame()       {}
func (ContactSaveAckFrame) isFrame() {}
func (UnknownFrame) isFrame()        {}

// Classify decodes an envelope into its typed variant. A payload that
// fails to decode for a recognized type is reported as an error so the
// caller can log and drop the frame.
func Classify(env *Envelope) (Frame, error) {
	switch env.Type {
	case TypeFriendList:
		var chats []ChatSummary
		if err := json.Unmarshal(env.Payload, &chats); err != nil {
			return nil, err
		}
		return FriendListFrame{Chats: chats}, nil
	case TypeUserProfile:
		var u User
		if err := json.Unmarshal(env.Payload, &u); err != nil {
			return nil, err
		}
		return UserProfileFrame{Profile: u}, nil
	case TypeChatMessage:
		var m Message
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return nil, err
		}
		return ChatMessageFrame{Message: m}, nil
	case TypeAllUsers:
		var users []User
		if err := json.Unmarshal(env.Payload, &users); err != nil {
			return nil, err
		}
		return AllUsersFrame{Users: users}, nil
	case TypeContactSaveAck:
		var ack ContactSaveAck
		if err := json.Unmarshal(env.Payload, &ack); err != nil {
			return nil, err
		}
		return ContactSaveAckFrame{Ack: ack}, nil
	default:
		return UnknownFrame{RawType: env.Type, RawPayload: env.Payload}, nil
	}
}
