package models

import "time"

// Client -> server events.
const (
	EventSendDirectMessage = "sendDirectMessage"
	EventTyping            = "typing"
	EventStopTyping        = "stopTyping"
	EventMarkAsRead        = "markAsRead"
)

// Server -> client events.
const (
	EventNewMessage        = "newMessage"
	EventNewNotification   = "newNotification"
	EventUserTyping        = "userTyping"
	EventUserStoppedTyping = "userStoppedTyping"
	EventMessageRead       = "messageRead"
	EventUserStatusUpdate  = "userStatusUpdate"
	EventError             = "error"
)

// Presence states carried by userStatusUpdate.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// WireEvent is the single frame shape exchanged over the websocket, in both
// directions. Unused fields are omitted on the wire.
type WireEvent struct {
	Event string `json:"event"`

	// sendDirectMessage / markAsRead
	MessageID  string `json:"message_id,omitempty"`
	ReceiverID string `json:"receiver_id,omitempty"`
	SenderID   string `json:"sender_id,omitempty"`
	Text       string `json:"text,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`

	// newMessage / messageRead
	Message *Message `json:"message,omitempty"`
	ReadBy  []string `json:"read_by,omitempty"`

	// newNotification
	Notification *Notification `json:"notification,omitempty"`

	// userStatusUpdate
	UserID   string     `json:"user_id,omitempty"`
	Status   string     `json:"status,omitempty"`
	LastSeen *time.Time `json:"last_seen,omitempty"`

	// error
	ErrorMessage string `json:"error_message,omitempty"`
}
