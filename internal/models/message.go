package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // pq.StringArray for the read-by set
	"gorm.io/gorm"
)

// Message is a direct chat message between two users. Content is immutable
// once created; only the ReadBy set grows.
type Message struct {
	ID         string `gorm:"primaryKey" json:"id"`
	SenderID   string `gorm:"not null;index" json:"sender_id"`
	ReceiverID string `gorm:"not null;index" json:"receiver_id"`

	// At least one of Text / ImageURL must be present.
	Text     string `gorm:"type:text" json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Type     string `gorm:"default:text" json:"type"`

	// ReadBy holds user ids that have read the message. The sender is
	// appended at creation, the receiver on read receipt. Never shrinks.
	ReadBy pq.StringArray `gorm:"type:text[]" json:"read_by"`

	CreatedAt time.Time `json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// HasContent reports whether the message carries text or an image.
func (m *Message) HasContent() bool {
	return m.Text != "" || m.ImageURL != ""
}

// ReadByUser reports whether userID is already in the read-by set.
func (m *Message) ReadByUser(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Conversation summarizes the latest exchange with one partner, as returned
// by the conversation-grouping query.
type Conversation struct {
	PartnerID   string    `json:"partner_id"`
	LastMessage string    `json:"last_message"`
	LastAt      time.Time `json:"last_at"`
	UnreadCount int64     `json:"unread_count"`
}
