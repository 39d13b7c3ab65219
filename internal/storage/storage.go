package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"campusfix/backend/internal/apperr"
	"campusfix/backend/internal/config"
	"campusfix/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage is the persistence contract consumed by the services and the
// realtime relay. Implemented by Service (gorm + redis) and mocked in tests.
type Storage interface {
	// Users
	CreateUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	FindAdmin() (*models.User, error)
	UpdateUserRole(email, role string) error

	// Reports
	SaveReport(report *models.Report) error
	GetReportByID(id string) (*models.Report, error)
	ListReports() ([]models.Report, error)
	ListReportsByStatus(status string) ([]models.Report, error)
	ListReportsByUser(userID string) ([]models.Report, error)
	DeleteReportCascade(reportID string) error
	ReserveReportCode(code int) (bool, error)
	ReleaseReportCode(code int) error
	AddReportComment(comment *models.ReportComment) error

	// Tasks
	SaveTask(task *models.AdminTask) error
	GetTaskByID(id string) (*models.AdminTask, error)
	ListTasksByStatus(status string) ([]models.AdminTask, error)
	ListTasksByAssignee(adminID string) ([]models.AdminTask, error)
	ListOverdueTasks(now time.Time) ([]models.AdminTask, error)
	AddTaskNote(note *models.TaskNote) error

	// Notifications
	SaveNotification(n *models.Notification) error
	GetNotificationByID(id string) (*models.Notification, error)
	ListNotificationsForUser(userID string, now time.Time) ([]models.Notification, error)
	ListUnreadNotificationsForUser(userID string, now time.Time) ([]models.Notification, error)
	CountUnreadNotifications(userID string, now time.Time) (int64, error)
	PurgeExpiredNotifications(now time.Time) (int64, error)

	// Messages
	SaveMessage(msg *models.Message) error
	GetMessageByID(id string) (*models.Message, error)
	ListConversation(userA, userB string) ([]models.Message, error)
	ListConversations(userID string) ([]models.Conversation, error)

	// Presence fringes
	SetLastSeen(userID string, t time.Time) error
	GetLastSeen(userID string) (*time.Time, error)
}

// Service implements Storage on PostgreSQL (gorm) and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// --- Users ---

func (s *Service) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAdmin returns any user carrying the admin role. Used for the
// new-report acknowledgment notification.
func (s *Service) FindAdmin() (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "role = ?", models.RoleAdmin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("No admin user registered")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) UpdateUserRole(email, role string) error {
	res := s.DB.Model(&models.User{}).Where("email = ?", email).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

// --- Reports ---

// SaveReport creates or updates a report. Racing saves on the same row are
// last-write-wins; there is no version column.
func (s *Service) SaveReport(report *models.Report) error {
	if err := s.DB.Save(report).Error; err != nil {
		log.Printf("ERROR: Failed to save report %s: %v", report.ID, err)
		return err
	}
	return nil
}

func (s *Service) GetReportByID(id string) (*models.Report, error) {
	var report models.Report
	err := s.DB.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc")
	}).First(&report, "id = ?", id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Report not found")
	}
	if err != nil {
		log.Printf("ERROR: Failed to get report %s: %v", id, err)
		return nil, err
	}
	return &report, nil
}

func (s *Service) ListReports() ([]models.Report, error) {
	var reports []models.Report
	err := s.DB.Order("created_at desc").Find(&reports).Error
	return reports, err
}

func (s *Service) ListReportsByStatus(status string) ([]models.Report, error) {
	var reports []models.Report
	err := s.DB.Where("status = ?", status).Order("created_at desc").Find(&reports).Error
	return reports, err
}

func (s *Service) ListReportsByUser(userID string) ([]models.Report, error) {
	var reports []models.Report
	err := s.DB.Where("created_by_id = ?", userID).Order("created_at desc").Find(&reports).Error
	return reports, err
}

// DeleteReportCascade removes a report together with its comments, tasks,
// task notes, and notifications, and frees its short code for reuse.
func (s *Service) DeleteReportCascade(reportID string) error {
	var code int
	if err := s.DB.Model(&models.Report{}).Where("id = ?", reportID).Pluck("code", &code).Error; err != nil {
		return err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var taskIDs []string
		if err := tx.Model(&models.AdminTask{}).
			Where("report_id = ?", reportID).
			Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskNote{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("report_id = ?", reportID).Delete(&models.AdminTask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("report_id = ?", reportID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("report_id = ?", reportID).Delete(&models.ReportComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Report{}, "id = ?", reportID).Error
	})
	if err != nil {
		return err
	}

	if relErr := s.ReleaseReportCode(code); relErr != nil {
		log.Printf("WARNING: Failed to release code %d of deleted report %s: %v", code, reportID, relErr)
	}
	return nil
}

// ReserveReportCode claims a 4-digit short code. Redis SETNX arbitrates
// racing creations; the unique index on reports.code is the backstop. When
// Redis is unavailable the DB existence check decides alone. The reservation
// carries a short TTL so codes from crashed creations free themselves.
func (s *Service) ReserveReportCode(code int) (bool, error) {
	key := fmt.Sprintf("reportcode:%d", code)
	if s.Redis != nil {
		ok, err := s.Redis.SetNX(s.Ctx, key, "1", config.ReportCodeReserveTTL).Result()
		if err == nil && !ok {
			return false, nil
		}
		if err != nil {
			log.Printf("WARNING: Redis code reservation failed, falling back to DB check: %v", err)
		}
	}

	var count int64
	if err := s.DB.Model(&models.Report{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

// ReleaseReportCode frees a code reservation when the report never committed
// or was deleted, so the code returns to the pool immediately instead of
// waiting out the TTL.
func (s *Service) ReleaseReportCode(code int) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Del(s.Ctx, fmt.Sprintf("reportcode:%d", code)).Err()
}

func (s *Service) AddReportComment(comment *models.ReportComment) error {
	if err := s.DB.Create(comment).Error; err != nil {
		log.Printf("ERROR: Failed to save comment for report %s: %v", comment.ReportID, err)
		return err
	}
	return nil
}

// --- Tasks ---

func (s *Service) SaveTask(task *models.AdminTask) error {
	if err := s.DB.Save(task).Error; err != nil {
		log.Printf("ERROR: Failed to save task for report %s: %v", task.ReportID, err)
		return err
	}
	return nil
}

func (s *Service) GetTaskByID(id string) (*models.AdminTask, error) {
	var task models.AdminTask
	err := s.DB.Preload("Notes", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc")
	}).First(&task, "id = ?", id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Task not found")
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *Service) ListTasksByStatus(status string) ([]models.AdminTask, error) {
	var tasks []models.AdminTask
	err := s.DB.Where("status = ?", status).Order("created_at desc").Find(&tasks).Error
	return tasks, err
}

func (s *Service) ListTasksByAssignee(adminID string) ([]models.AdminTask, error) {
	var tasks []models.AdminTask
	err := s.DB.Where("assigned_to_id = ?", adminID).Order("created_at desc").Find(&tasks).Error
	return tasks, err
}

// ListOverdueTasks returns tasks whose due date has passed and that are not
// yet Completed.
func (s *Service) ListOverdueTasks(now time.Time) ([]models.AdminTask, error) {
	var tasks []models.AdminTask
	err := s.DB.Where("due_date IS NOT NULL AND due_date < ? AND status <> ?", now, models.TaskStatusCompleted).
		Order("due_date asc").
		Find(&tasks).Error
	return tasks, err
}

func (s *Service) AddTaskNote(note *models.TaskNote) error {
	return s.DB.Create(note).Error
}
