// Package wire defines the envelope protocol spoken over the chat
// socket. Every frame is a JSON object tagged by "type": outbound frames
// flatten their payload fields next to the tag, inbound frames carry a
// "payload" member whose shape is determined by the tag.
package wire

import "time"

// Outbound envelope types.
const (
	TypeGetChatList     = "get_chat_list"
	TypeDeleteChat      = "delete_chat"
	TypeClearMessages   = "clear_messages"
	TypeSetUserProfile  = "set_user_profile" // fetches the profile; the verb is a backend naming wart
	TypeGetAllUsers     = "get_all_users"
	TypeSaveNewContact  = "save_new_contact"
	TypeSendChatMessage = "send_chat_message"
	TypePing            = "ping"
)

// Inbound envelope types.
const (
	TypeFriendList     = "friend_list"
	TypeUserProfile    = "user_profile"
	TypeChatMessage    = "chat_message"
	TypeAllUsers       = "all_users"
	TypeContactSaveAck = "new_contact_response_text"
)

// Presence value meaning the user is connected right now. Anything else
// in User.Status is treated as offline, with UpdatedAt as last-seen.
const StatusOnline = "ONLINE"

// Message delivery states. Only upward movement (SENT -> DELIVERED ->
// READ) is meaningful; the client never regresses a status.
const (
	DeliverySent      = "SENT"
	DeliveryDelivered = "DELIVERED"
	DeliveryRead      = "READ"
)

// User is a backend user record, used both for the signed-in profile
// and for directory entries.
type User struct {
	ID           int    `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	CountryCode  string `json:"countryCode"`
	ContactNo    string `json:"contactNo"`
	ProfileImage string `json:"profileImage"`
	Status       string `json:"status"`
	UpdatedAt    string `json:"updatedAt"`
}

// ChatSummary is one row of the chat list: a friend plus the last
// message exchanged with them.
type ChatSummary struct {
	FriendID      int     `json:"friendId"`
	FriendName    string  `json:"friendName"`
	ProfileImage  *string `json:"profileImage"`
	LastMessage   string  `json:"lastMessage"`
	LastTimestamp string  `json:"lastTimestamp"`
	UnreadCount   int     `json:"unreadCount"`
}

// Message is one chat turn pushed by the backend.
type Message struct {
	From      User   `json:"from"`
	To        User   `json:"to"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
	Status    string `json:"status"`
}

// ContactSaveAck acknowledges a save_new_contact request.
type ContactSaveAck struct {
	ResponseStatus bool   `json:"responseStatus"`
	Message        string `json:"message"`
}

// timeLayouts are the timestamp shapes the backend has been seen to
// emit: RFC3339 and bare LocalDateTime strings with and without
// fractional seconds.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseTime parses a backend timestamp string. Unparseable input yields
// the zero time, which sorts last in a descending order.
func ParseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
