package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types. The set is closed but extensible.
const (
	NotificationAcknowledgment = "acknowledgment"
	NotificationStatusChange   = "status_change"
	NotificationPriorityChange = "priority_change"
	NotificationComment        = "comment"
	NotificationAdminComment   = "admin_comment"
)

// Notification is a persisted, user-targeted message describing a
// report-related event.
type Notification struct {
	ID       string `gorm:"primaryKey" json:"id"`
	UserID   string `gorm:"not null;index" json:"user_id"`
	ReportID string `gorm:"not null;index" json:"report_id"`
	Type     string `gorm:"not null" json:"type"`
	Message  string `gorm:"type:text;not null" json:"message"`

	// StatusData optionally carries a structured status-change payload,
	// serialized as JSON. Nullable from the start.
	StatusData *string `gorm:"type:text" json:"status_data,omitempty"`

	IsRead bool `gorm:"not null;default:false" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
	// ExpiresAt bounds the retention window. Active queries filter on it;
	// the background sweep only reclaims rows that queries already ignore.
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return
}

// StatusChangeData is the structured payload attached to status_change and
// priority_change notifications.
type StatusChangeData struct {
	PreviousStatus   string `json:"previous_status,omitempty"`
	NewStatus        string `json:"new_status,omitempty"`
	PreviousPriority string `json:"previous_priority,omitempty"`
	NewPriority      string `json:"new_priority,omitempty"`
}

// ValidNotificationType reports whether t is one of the known types.
func ValidNotificationType(t string) bool {
	switch t {
	case NotificationAcknowledgment, NotificationStatusChange,
		NotificationPriorityChange, NotificationComment, NotificationAdminComment:
		return true
	}
	return false
}
