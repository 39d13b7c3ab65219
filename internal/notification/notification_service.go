// Package notification creates, queries, and retires the persisted
// notifications that report and task mutations leave behind for users.
package notification

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"campusfix/backend/internal/apperr"
	"campusfix/backend/internal/config"
	"campusfix/backend/internal/models"
	"campusfix/backend/internal/storage"
)

// Service handles the business logic for notifications.
type Service struct {
	Storage storage.Storage
}

// NewService creates a new notification service.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// Create persists a notification. All of userID, reportID, ntype, and a
// non-empty trimmed message are mandatory; violations are a hard failure and
// nothing is persisted. Callers performing a primary mutation must treat the
// returned error as ignorable (log and discard).
func (s *Service) Create(userID, reportID, ntype, message string, statusData *models.StatusChangeData) (*models.Notification, error) {
	message = strings.TrimSpace(message)
	if userID == "" || reportID == "" || ntype == "" || message == "" {
		return nil, apperr.Validation("Notification requires user, report, type and a non-empty message")
	}
	if !models.ValidNotificationType(ntype) {
		return nil, apperr.Validation("Unknown notification type: %s", ntype)
	}

	n := &models.Notification{
		UserID:    userID,
		ReportID:  reportID,
		Type:      ntype,
		Message:   message,
		ExpiresAt: time.Now().Add(config.NotificationRetention),
	}

	if statusData != nil {
		raw, err := json.Marshal(statusData)
		if err != nil {
			return nil, err
		}
		payload := string(raw)
		n.StatusData = &payload
	}

	if err := s.Storage.SaveNotification(n); err != nil {
		return nil, err
	}
	return n, nil
}

// ListForUser returns the user's active notifications, newest first.
func (s *Service) ListForUser(userID string) ([]models.Notification, error) {
	return s.Storage.ListNotificationsForUser(userID, time.Now())
}

// ListUnreadForUser returns the user's active unread notifications, newest first.
func (s *Service) ListUnreadForUser(userID string) ([]models.Notification, error) {
	return s.Storage.ListUnreadNotificationsForUser(userID, time.Now())
}

// CountUnread returns the number of active unread notifications.
func (s *Service) CountUnread(userID string) (int64, error) {
	return s.Storage.CountUnreadNotifications(userID, time.Now())
}

// MarkRead flips the read flag. Only the owning user may do so. Marking an
// already-read notification is a no-op, not an error.
func (s *Service) MarkRead(notificationID, requesterID string) (*models.Notification, error) {
	n, err := s.Storage.GetNotificationByID(notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != requesterID {
		return nil, apperr.Forbidden("Notifications can only be marked read by their owner")
	}
	if n.IsRead {
		return n, nil
	}

	n.IsRead = true
	if err := s.Storage.SaveNotification(n); err != nil {
		return nil, err
	}
	return n, nil
}

// PurgeExpired removes rows past their retention window once.
func (s *Service) PurgeExpired() (int64, error) {
	return s.Storage.PurgeExpiredNotifications(time.Now())
}

// RunSweeper periodically purges expired notifications. The sweep is an
// advisory optimization: every active query filters by expiry on its own, so
// nothing depends on the sweep's timing.
func (s *Service) RunSweeper(stop <-chan struct{}) {
	ticker := time.NewTicker(config.NotificationSweepTick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			purged, err := s.PurgeExpired()
			if err != nil {
				log.Printf("ERROR: Notification sweep failed: %v", err)
				continue
			}
			if purged > 0 {
				log.Printf("Notification sweep removed %d expired rows", purged)
			}
		case <-stop:
			return
		}
	}
}
