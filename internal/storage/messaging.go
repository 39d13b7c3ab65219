package storage

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"campusfix/backend/internal/apperr"
	"campusfix/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const unreadCacheTTL = 30 * time.Second

// --- Notifications ---

// SaveNotification creates or updates a notification and drops the cached
// unread count for its owner.
func (s *Service) SaveNotification(n *models.Notification) error {
	if err := s.DB.Save(n).Error; err != nil {
		log.Printf("ERROR: Failed to save notification for user %s: %v", n.UserID, err)
		return err
	}
	s.invalidateUnreadCache(n.UserID)
	return nil
}

func (s *Service) GetNotificationByID(id string) (*models.Notification, error) {
	var n models.Notification
	err := s.DB.First(&n, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Notification not found")
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNotificationsForUser returns active notifications newest-first. The
// expiry filter is authoritative; the purge sweep only reclaims rows this
// query already ignores.
func (s *Service) ListNotificationsForUser(userID string, now time.Time) ([]models.Notification, error) {
	var out []models.Notification
	err := s.DB.Where("user_id = ? AND expires_at > ?", userID, now).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

func (s *Service) ListUnreadNotificationsForUser(userID string, now time.Time) ([]models.Notification, error) {
	var out []models.Notification
	err := s.DB.Where("user_id = ? AND is_read = false AND expires_at > ?", userID, now).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// CountUnreadNotifications is cache-aside on Redis with a short TTL; the DB
// count is the source of truth.
func (s *Service) CountUnreadNotifications(userID string, now time.Time) (int64, error) {
	key := "unread_ntf:" + userID
	if s.Redis != nil {
		if cached, err := s.Redis.Get(s.Ctx, key).Result(); err == nil {
			if count, convErr := strconv.ParseInt(cached, 10, 64); convErr == nil {
				return count, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("WARNING: Redis unread-count read failed: %v", err)
		}
	}

	var count int64
	err := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false AND expires_at > ?", userID, now).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	if s.Redis != nil {
		s.Redis.Set(s.Ctx, key, count, unreadCacheTTL)
	}
	return count, nil
}

func (s *Service) invalidateUnreadCache(userID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(s.Ctx, "unread_ntf:"+userID).Err(); err != nil {
		log.Printf("WARNING: Failed to invalidate unread cache for %s: %v", userID, err)
	}
}

// PurgeExpiredNotifications deletes rows past their retention window and
// returns how many were removed.
func (s *Service) PurgeExpiredNotifications(now time.Time) (int64, error) {
	res := s.DB.Where("expires_at <= ?", now).Delete(&models.Notification{})
	if res.Error != nil {
		log.Printf("ERROR: Failed to purge expired notifications: %v", res.Error)
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// --- Messages ---

// SaveMessage creates or updates a direct message.
func (s *Service) SaveMessage(msg *models.Message) error {
	if err := s.DB.Save(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message from %s: %v", msg.SenderID, err)
		return err
	}
	return nil
}

func (s *Service) GetMessageByID(id string) (*models.Message, error) {
	var msg models.Message
	err := s.DB.First(&msg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Message not found")
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListConversation returns the full exchange between two users, oldest first.
func (s *Service) ListConversation(userA, userB string) ([]models.Message, error) {
	var out []models.Message
	err := s.DB.Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userA, userB, userB, userA,
	).Order("created_at asc").Find(&out).Error
	return out, err
}

// ListConversations groups the user's messages by partner, picking the most
// recent message of each pair via DISTINCT ON, then merges in per-partner
// unread counts from a second aggregate query.
func (s *Service) ListConversations(userID string) ([]models.Conversation, error) {
	rawSQL := `
        SELECT DISTINCT ON (partner_id)
            CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS partner_id,
            COALESCE(NULLIF(text, ''), image_url) AS last_message,
            created_at AS last_at
        FROM messages
        WHERE sender_id = ? OR receiver_id = ?
        ORDER BY partner_id, created_at DESC
    `

	var conversations []models.Conversation
	if err := s.DB.Raw(rawSQL, userID, userID, userID).Scan(&conversations).Error; err != nil {
		log.Printf("ERROR: Failed to list conversations for %s: %v", userID, err)
		return nil, err
	}

	unreadSQL := `
        SELECT sender_id AS partner_id, COUNT(*) AS unread_count
        FROM messages
        WHERE receiver_id = ? AND NOT (? = ANY(read_by))
        GROUP BY sender_id
    `

	var unread []struct {
		PartnerID   string
		UnreadCount int64
	}
	if err := s.DB.Raw(unreadSQL, userID, userID).Scan(&unread).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(unread))
	for _, u := range unread {
		counts[u.PartnerID] = u.UnreadCount
	}
	for i := range conversations {
		conversations[i].UnreadCount = counts[conversations[i].PartnerID]
	}

	return conversations, nil
}

// --- Last seen ---

// SetLastSeen records the disconnect timestamp in Redis so "offline since"
// survives a process restart even though presence itself is in-memory.
func (s *Service) SetLastSeen(userID string, t time.Time) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Set(s.Ctx, "lastseen:"+userID, t.Unix(), 0).Err()
}

// GetLastSeen returns the stored disconnect timestamp, or nil when the user
// has never disconnected cleanly.
func (s *Service) GetLastSeen(userID string) (*time.Time, error) {
	if s.Redis == nil {
		return nil, nil
	}
	val, err := s.Redis.Get(s.Ctx, "lastseen:"+userID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	unix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt lastseen value for %s: %w", userID, err)
	}
	t := time.Unix(unix, 0)
	return &t, nil
}
