package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task statuses. The task machine is independent of the report machine;
// Completed is the trigger that forces the parent report to Resolved.
const (
	TaskStatusToDo       = "To_Do"
	TaskStatusInProgress = "In_Progress"
	TaskStatusDraft      = "Draft"
	TaskStatusCompleted  = "Completed"
)

// Task priority is a three-value superset of the two-value report priority.
const TaskPriorityMedium = "Medium"

// AdminTask is a work item derived from an accepted report.
type AdminTask struct {
	ID           string `gorm:"primaryKey" json:"id"`
	ReportID     string `gorm:"not null;index" json:"report_id"`
	AssignedToID string `gorm:"not null;index" json:"assigned_to"`
	CreatedByID  string `gorm:"not null" json:"created_by"`

	Priority string `gorm:"not null;default:Medium" json:"priority"`
	Status   string `gorm:"not null;default:To_Do;index" json:"status"`

	DueDate *time.Time `json:"due_date,omitempty"`

	Notes []TaskNote `gorm:"foreignKey:TaskID" json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *AdminTask) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}

// TaskNote is a timestamped free-text entry on a task, append-only.
type TaskNote struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	TaskID    string    `gorm:"not null;index" json:"task_id"`
	AuthorID  string    `gorm:"not null" json:"author_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (n *TaskNote) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return
}

// ValidTaskStatus reports whether s is one of the closed task status set.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusDraft, TaskStatusCompleted:
		return true
	}
	return false
}

// TaskPriorityFromReport maps the two-value report priority onto the
// three-value task scale: High->High, Low->Low, anything else->Medium.
func TaskPriorityFromReport(reportPriority string) string {
	switch reportPriority {
	case PriorityHigh:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	default:
		return TaskPriorityMedium
	}
}
