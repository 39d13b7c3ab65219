// Package task tracks the work items admins derive from accepted reports.
// The task status machine is independent of the report machine except at one
// point: Completed forces the parent report to Resolved.
package task

import (
	"strings"
	"time"

	"campusfix/backend/internal/apperr"
	"campusfix/backend/internal/models"
	"campusfix/backend/internal/storage"
)

// ReportResolver is the single hook back into the report lifecycle engine,
// invoked when a task reaches Completed.
type ReportResolver interface {
	ResolveFromTask(reportID, adminID string) error
}

// Service handles the business logic for admin tasks.
type Service struct {
	Storage  storage.Storage
	Resolver ReportResolver
}

// NewService creates a new task service.
func NewService(s storage.Storage, resolver ReportResolver) *Service {
	return &Service{Storage: s, Resolver: resolver}
}

// Get returns a task with its notes.
func (s *Service) Get(taskID string) (*models.AdminTask, error) {
	return s.Storage.GetTaskByID(taskID)
}

// ListByStatus returns tasks in the given status.
func (s *Service) ListByStatus(status string) ([]models.AdminTask, error) {
	if !models.ValidTaskStatus(status) {
		return nil, apperr.Validation("Unknown task status: %s", status)
	}
	return s.Storage.ListTasksByStatus(status)
}

// ListByAssignee returns the tasks assigned to one admin.
func (s *Service) ListByAssignee(adminID string) ([]models.AdminTask, error) {
	return s.Storage.ListTasksByAssignee(adminID)
}

// ListOverdue returns tasks past their due date that are not Completed.
func (s *Service) ListOverdue() ([]models.AdminTask, error) {
	return s.Storage.ListOverdueTasks(time.Now())
}

// AppendNote adds a timestamped free-text entry. Notes are append-only.
func (s *Service) AppendNote(taskID, authorID, text string) (*models.TaskNote, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("Note text cannot be empty")
	}
	if _, err := s.Storage.GetTaskByID(taskID); err != nil {
		return nil, err
	}

	note := &models.TaskNote{
		TaskID:   taskID,
		AuthorID: authorID,
		Text:     text,
	}
	if err := s.Storage.AddTaskNote(note); err != nil {
		return nil, err
	}
	return note, nil
}

// UpdateStatus moves a task through its own machine. The Completed
// transition additionally resolves the parent report; that cross-entity rule
// lives here because this is the only place the transition happens.
func (s *Service) UpdateStatus(taskID, adminID, status string) (*models.AdminTask, error) {
	if !models.ValidTaskStatus(status) {
		return nil, apperr.Validation("Unknown task status: %s", status)
	}

	task, err := s.Storage.GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task.Status == models.TaskStatusCompleted && status != models.TaskStatusCompleted {
		return nil, apperr.InvalidState("Completed tasks cannot be reopened")
	}

	justCompleted := status == models.TaskStatusCompleted && task.Status != models.TaskStatusCompleted
	task.Status = status
	if err := s.Storage.SaveTask(task); err != nil {
		return nil, err
	}

	if justCompleted {
		if err := s.Resolver.ResolveFromTask(task.ReportID, adminID); err != nil {
			return nil, err
		}
	}

	return task, nil
}
