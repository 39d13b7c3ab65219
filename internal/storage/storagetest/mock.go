// Package storagetest provides a testify mock of storage.Storage shared by
// the service and relay tests.
package storagetest

import (
	"time"

	"campusfix/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

// --- Users ---

func (m *MockStorage) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) FindAdmin() (*models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) UpdateUserRole(email, role string) error {
	args := m.Called(email, role)
	return args.Error(0)
}

// --- Reports ---

func (m *MockStorage) SaveReport(report *models.Report) error {
	args := m.Called(report)
	return args.Error(0)
}

func (m *MockStorage) GetReportByID(id string) (*models.Report, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockStorage) ListReports() ([]models.Report, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Report), args.Error(1)
}

func (m *MockStorage) ListReportsByStatus(status string) ([]models.Report, error) {
	args := m.Called(status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Report), args.Error(1)
}

func (m *MockStorage) ListReportsByUser(userID string) ([]models.Report, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Report), args.Error(1)
}

func (m *MockStorage) DeleteReportCascade(reportID string) error {
	args := m.Called(reportID)
	return args.Error(0)
}

func (m *MockStorage) ReserveReportCode(code int) (bool, error) {
	args := m.Called(code)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ReleaseReportCode(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockStorage) AddReportComment(comment *models.ReportComment) error {
	args := m.Called(comment)
	return args.Error(0)
}

// --- Tasks ---

func (m *MockStorage) SaveTask(task *models.AdminTask) error {
	args := m.Called(task)
	return args.Error(0)
}

func (m *MockStorage) GetTaskByID(id string) (*models.AdminTask, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminTask), args.Error(1)
}

func (m *MockStorage) ListTasksByStatus(status string) ([]models.AdminTask, error) {
	args := m.Called(status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdminTask), args.Error(1)
}

func (m *MockStorage) ListTasksByAssignee(adminID string) ([]models.AdminTask, error) {
	args := m.Called(adminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdminTask), args.Error(1)
}

func (m *MockStorage) ListOverdueTasks(now time.Time) ([]models.AdminTask, error) {
	args := m.Called(now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdminTask), args.Error(1)
}

func (m *MockStorage) AddTaskNote(note *models.TaskNote) error {
	args := m.Called(note)
	return args.Error(0)
}

// --- Notifications ---

func (m *MockStorage) SaveNotification(n *models.Notification) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *MockStorage) GetNotificationByID(id string) (*models.Notification, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockStorage) ListNotificationsForUser(userID string, now time.Time) ([]models.Notification, error) {
	args := m.Called(userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockStorage) ListUnreadNotificationsForUser(userID string, now time.Time) ([]models.Notification, error) {
	args := m.Called(userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockStorage) CountUnreadNotifications(userID string, now time.Time) (int64, error) {
	args := m.Called(userID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) PurgeExpiredNotifications(now time.Time) (int64, error) {
	args := m.Called(now)
	return args.Get(0).(int64), args.Error(1)
}

// --- Messages ---

func (m *MockStorage) SaveMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) GetMessageByID(id string) (*models.Message, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockStorage) ListConversation(userA, userB string) ([]models.Message, error) {
	args := m.Called(userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) ListConversations(userID string) ([]models.Conversation, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Conversation), args.Error(1)
}

// --- Last seen ---

func (m *MockStorage) SetLastSeen(userID string, t time.Time) error {
	args := m.Called(userID, t)
	return args.Error(0)
}

func (m *MockStorage) GetLastSeen(userID string) (*time.Time, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}
