// Package report owns the report lifecycle: creation, the
// Pending -> In_Progress -> Resolved/Cancelled state machine, and the task
// and notification side effects each transition triggers.
package report

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"campusfix/backend/internal/apperr"
	"campusfix/backend/internal/config"
	"campusfix/backend/internal/models"
	"campusfix/backend/internal/notification"
	"campusfix/backend/internal/storage"
)

// Pusher delivers a freshly persisted notification to the owner's open
// realtime connection, if any. Best-effort.
type Pusher interface {
	PushNotification(userID string, n *models.Notification)
}

// Alerter fans a new report out to an external admin alert channel.
// Best-effort.
type Alerter interface {
	ReportCreated(r *models.Report)
}

// Service is the report lifecycle engine.
type Service struct {
	Storage       storage.Storage
	Notifications *notification.Service

	// Pusher and Alerter are optional side-effect sinks; nil disables them.
	Pusher  Pusher
	Alerter Alerter
}

// NewService creates a new report lifecycle service.
func NewService(s storage.Storage, n *notification.Service) *Service {
	return &Service{Storage: s, Notifications: n}
}

// CreateReportInput carries the creator-supplied report attributes.
type CreateReportInput struct {
	Building    string `json:"building" binding:"required"`
	Floor       string `json:"floor"`
	Room        string `json:"room"`
	Category    string `json:"category" binding:"required"`
	Description string `json:"description" binding:"required"`
	PhotoURL    string `json:"photo_url"`
	Priority    string `json:"priority"`
}

// UpdateReportInput is the allow-list of fields the creator may patch while
// the report is still Pending. Nil fields are left untouched.
type UpdateReportInput struct {
	Building    *string `json:"building"`
	Floor       *string `json:"floor"`
	Room        *string `json:"room"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	PhotoURL    *string `json:"photo_url"`
	Priority    *string `json:"priority"`
}

// TaskDetails describes the work item spawned when a report moves to
// In_Progress.
type TaskDetails struct {
	AssignedTo string     `json:"assigned_to"`
	DueDate    *time.Time `json:"due_date"`
}

// UpdateStatusInput carries an admin's status/priority mutation.
type UpdateStatusInput struct {
	Status             string       `json:"status"`
	Priority           string       `json:"priority"`
	Remarks            string       `json:"remarks"`
	ResolutionPhotoURL string       `json:"resolution_photo_url"`
	TaskDetails        *TaskDetails `json:"task_details"`
}

// CreateReport validates the payload, assigns a collision-checked 4-digit
// code, persists the report at Pending, and acknowledges an admin. The
// acknowledgment is best-effort: its failure never fails the creation.
func (s *Service) CreateReport(creatorID string, in CreateReportInput) (*models.Report, error) {
	if strings.TrimSpace(in.Building) == "" {
		return nil, apperr.Validation("Building is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, apperr.Validation("Description is required")
	}
	if !models.ValidCategory(in.Category) {
		return nil, apperr.Validation("Unknown category: %s", in.Category)
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityLow
	}
	if !models.ValidPriority(priority) {
		return nil, apperr.Validation("Priority must be Low or High")
	}

	code, err := s.allocateCode()
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		Code:        code,
		Building:    in.Building,
		Floor:       in.Floor,
		Room:        in.Room,
		Category:    in.Category,
		Description: in.Description,
		PhotoURL:    in.PhotoURL,
		Priority:    priority,
		Status:      models.ReportStatusPending,
		CreatedByID: creatorID,
	}

	if err := s.Storage.SaveReport(report); err != nil {
		if relErr := s.Storage.ReleaseReportCode(code); relErr != nil {
			log.Printf("WARNING: Failed to release unused report code %d: %v", code, relErr)
		}
		return nil, err
	}

	s.attemptAcknowledge(report)
	if s.Alerter != nil {
		s.Alerter.ReportCreated(report)
	}

	return report, nil
}

// UpdateReport applies a creator patch to a still-Pending report.
func (s *Service) UpdateReport(reportID, requesterID string, patch UpdateReportInput) (*models.Report, error) {
	report, err := s.Storage.GetReportByID(reportID)
	if err != nil {
		return nil, err
	}
	if report.CreatedByID != requesterID {
		return nil, apperr.Forbidden("Only the report creator can edit it")
	}
	if report.Status != models.ReportStatusPending {
		return nil, apperr.InvalidState("Only pending reports can be edited")
	}

	if patch.Building != nil {
		report.Building = *patch.Building
	}
	if patch.Floor != nil {
		report.Floor = *patch.Floor
	}
	if patch.Room != nil {
		report.Room = *patch.Room
	}
	if patch.Category != nil {
		if !models.ValidCategory(*patch.Category) {
			return nil, apperr.Validation("Unknown category: %s", *patch.Category)
		}
		report.Category = *patch.Category
	}
	if patch.Description != nil {
		if strings.TrimSpace(*patch.Description) == "" {
			return nil, apperr.Validation("Description cannot be empty")
		}
		report.Description = *patch.Description
	}
	if patch.PhotoURL != nil {
		report.PhotoURL = *patch.PhotoURL
	}
	if patch.Priority != nil {
		if !models.ValidPriority(*patch.Priority) {
			return nil, apperr.Validation("Priority must be Low or High")
		}
		report.Priority = *patch.Priority
	}

	if err := s.Storage.SaveReport(report); err != nil {
		return nil, err
	}
	return report, nil
}

// DeleteReport removes a report and everything hanging off it. Admins may
// delete any report; the creator only their own, and only while Pending.
func (s *Service) DeleteReport(reportID, requesterID, requesterRole string) error {
	report, err := s.Storage.GetReportByID(reportID)
	if err != nil {
		return err
	}

	if requesterRole != models.RoleAdmin {
		if report.CreatedByID != requesterID {
			return apperr.Forbidden("Only the report creator or an admin can delete a report")
		}
		if report.Status != models.ReportStatusPending {
			return apperr.InvalidState("Only pending reports can be deleted")
		}
	}

	return s.Storage.DeleteReportCascade(reportID)
}

// AcceptReport moves a Pending report to In_Progress under the accepting
// admin, spawning its task and notifying the creator. The notification is
// best-effort and never reverts the task or report writes.
func (s *Service) AcceptReport(reportID, adminID string) (*models.Report, error) {
	report, err := s.Storage.GetReportByID(reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != models.ReportStatusPending {
		return nil, apperr.InvalidState("Only pending reports can be accepted")
	}

	task := &models.AdminTask{
		ReportID:     report.ID,
		AssignedToID: adminID,
		CreatedByID:  adminID,
		Priority:     models.TaskPriorityFromReport(report.Priority),
		Status:       models.TaskStatusToDo,
	}
	if err := s.Storage.SaveTask(task); err != nil {
		return nil, err
	}

	now := time.Now()
	previous := report.Status
	report.Status = models.ReportStatusInProgress
	report.AssignedAdminID = &adminID
	report.AssignedAt = &now
	if err := s.Storage.SaveReport(report); err != nil {
		return nil, err
	}

	s.attemptNotify(report.CreatedByID, report.ID, models.NotificationStatusChange,
		fmt.Sprintf("Report #%04d has been accepted and is now in progress", report.Code),
		&models.StatusChangeData{PreviousStatus: previous, NewStatus: report.Status})

	return report, nil
}

// UpdateReportStatus applies an admin status/priority change, spawning a task
// when the report enters In_Progress, and notifies the creator best-effort.
func (s *Service) UpdateReportStatus(reportID, adminID string, in UpdateStatusInput) (*models.Report, error) {
	if in.Status == "" && in.Priority == "" {
		return nil, apperr.Validation("Nothing to update: provide status or priority")
	}
	if in.Status != "" && !models.ValidReportStatus(in.Status) {
		return nil, apperr.Validation("Unknown status: %s", in.Status)
	}
	if in.Priority != "" && !models.ValidPriority(in.Priority) {
		return nil, apperr.Validation("Priority must be Low or High")
	}

	report, err := s.Storage.GetReportByID(reportID)
	if err != nil {
		return nil, err
	}

	previousStatus := report.Status
	previousPriority := report.Priority
	statusChanged := in.Status != "" && in.Status != report.Status
	priorityChanged := in.Priority != "" && in.Priority != report.Priority

	// Terminal reports admit no mutations at all; a status change out of a
	// terminal state fails the transition check below.
	if report.IsTerminal() && !statusChanged {
		return nil, apperr.InvalidState("Report is %s and can no longer be updated", report.Status)
	}

	if statusChanged {
		if !canTransition(report.Status, in.Status) {
			return nil, apperr.InvalidState("Cannot move report from %s to %s", report.Status, in.Status)
		}
		if in.Status == models.ReportStatusInProgress {
			if in.TaskDetails == nil || in.TaskDetails.AssignedTo == "" {
				return nil, apperr.Validation("Moving a report to In_Progress requires task details with an assignee")
			}
			task := &models.AdminTask{
				ReportID:     report.ID,
				AssignedToID: in.TaskDetails.AssignedTo,
				CreatedByID:  adminID,
				Priority:     models.TaskPriorityFromReport(report.Priority),
				Status:       models.TaskStatusToDo,
				DueDate:      in.TaskDetails.DueDate,
			}
			if err := s.Storage.SaveTask(task); err != nil {
				return nil, err
			}

			now := time.Now()
			assignee := in.TaskDetails.AssignedTo
			report.AssignedAdminID = &assignee
			report.AssignedAt = &now
		}
		report.Status = in.Status
		if in.Status == models.ReportStatusResolved && report.ResolvedAt == nil {
			now := time.Now()
			report.ResolvedAt = &now
		}
	}
	if priorityChanged {
		report.Priority = in.Priority
	}
	if in.Remarks != "" {
		report.Remarks = in.Remarks
	}
	if in.ResolutionPhotoURL != "" {
		report.ResolutionPhotoURL = in.ResolutionPhotoURL
	}

	if err := s.Storage.SaveReport(report); err != nil {
		return nil, err
	}

	if statusChanged || priorityChanged {
		message, ntype := composeChangeMessage(report, previousStatus, previousPriority, statusChanged, priorityChanged)
		s.attemptNotify(report.CreatedByID, report.ID, ntype, message, &models.StatusChangeData{
			PreviousStatus:   previousStatus,
			NewStatus:        report.Status,
			PreviousPriority: previousPriority,
			NewPriority:      report.Priority,
		})
	}

	return report, nil
}

// AddComment appends a comment and, when the author is not the creator,
// notifies the creator with a bounded preview.
func (s *Service) AddComment(reportID, authorID, text, photoURL string) (*models.ReportComment, error) {
	if strings.TrimSpace(text) == "" && photoURL == "" {
		return nil, apperr.Validation("Comment requires text or a photo")
	}

	report, err := s.Storage.GetReportByID(reportID)
	if err != nil {
		return nil, err
	}

	comment := &models.ReportComment{
		ReportID: report.ID,
		AuthorID: authorID,
		Text:     text,
		PhotoURL: photoURL,
	}
	if err := s.Storage.AddReportComment(comment); err != nil {
		return nil, err
	}

	if authorID != report.CreatedByID {
		ntype := models.NotificationComment
		if author, err := s.Storage.GetUserByID(authorID); err == nil && author.IsAdmin() {
			ntype = models.NotificationAdminComment
		}
		s.attemptNotify(report.CreatedByID, report.ID, ntype,
			fmt.Sprintf("New comment on report #%04d: %s", report.Code, preview(text)), nil)
	}

	return comment, nil
}

// ResolveFromTask is invoked by the task subsystem when a task reaches
// Completed: the parent report is forced to Resolved and its resolved
// timestamp stamped exactly once.
func (s *Service) ResolveFromTask(reportID, adminID string) error {
	report, err := s.Storage.GetReportByID(reportID)
	if err != nil {
		return err
	}
	if report.Status == models.ReportStatusResolved {
		return nil
	}
	if report.Status == models.ReportStatusCancelled {
		return apperr.InvalidState("Cannot resolve a cancelled report")
	}

	previous := report.Status
	report.Status = models.ReportStatusResolved
	if report.ResolvedAt == nil {
		now := time.Now()
		report.ResolvedAt = &now
	}
	if err := s.Storage.SaveReport(report); err != nil {
		return err
	}

	s.attemptNotify(report.CreatedByID, report.ID, models.NotificationStatusChange,
		fmt.Sprintf("Report #%04d has been resolved", report.Code),
		&models.StatusChangeData{PreviousStatus: previous, NewStatus: report.Status})

	return nil
}

// canTransition encodes the forward-only state machine. Same-state writes
// are allowed so priority-only updates pass through.
func canTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case models.ReportStatusPending:
		return to == models.ReportStatusInProgress
	case models.ReportStatusInProgress:
		return to == models.ReportStatusResolved || to == models.ReportStatusCancelled
	}
	return false
}

// attemptAcknowledge notifies any admin about a new report. Log-and-discard.
func (s *Service) attemptAcknowledge(report *models.Report) {
	admin, err := s.Storage.FindAdmin()
	if err != nil {
		log.Printf("WARNING: No admin to acknowledge report %s: %v", report.ID, err)
		return
	}
	s.attemptNotify(admin.ID, report.ID, models.NotificationAcknowledgment,
		fmt.Sprintf("New %s report #%04d in %s: %s", report.Category, report.Code, report.Building, preview(report.Description)),
		nil)
}

// attemptNotify persists a notification and pushes it to an open connection.
// Failures are logged and discarded; they must never unwind the primary
// mutation that triggered them.
func (s *Service) attemptNotify(userID, reportID, ntype, message string, data *models.StatusChangeData) {
	n, err := s.Notifications.Create(userID, reportID, ntype, message, data)
	if err != nil {
		log.Printf("ERROR: Failed to notify user %s about report %s: %v", userID, reportID, err)
		return
	}
	if s.Pusher != nil {
		s.Pusher.PushNotification(userID, n)
	}
}

func composeChangeMessage(report *models.Report, prevStatus, prevPriority string, statusChanged, priorityChanged bool) (string, string) {
	switch {
	case statusChanged && priorityChanged:
		return fmt.Sprintf("Report #%04d status changed from %s to %s and priority from %s to %s",
			report.Code, prevStatus, report.Status, prevPriority, report.Priority), models.NotificationStatusChange
	case statusChanged:
		return fmt.Sprintf("Report #%04d status changed from %s to %s",
			report.Code, prevStatus, report.Status), models.NotificationStatusChange
	default:
		return fmt.Sprintf("Report #%04d priority changed from %s to %s",
			report.Code, prevPriority, report.Priority), models.NotificationPriorityChange
	}
}

// preview bounds text embedded in notification messages, appending an
// ellipsis marker when truncated.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= config.PreviewLength {
		return text
	}
	return string(runes[:config.PreviewLength]) + "..."
}

// allocateCode draws random 4-digit codes until one is free.
func (s *Service) allocateCode() (int, error) {
	for i := 0; i < config.ReportCodeAttempts; i++ {
		code := config.ReportCodeMin + rand.Intn(config.ReportCodeMax-config.ReportCodeMin+1)
		free, err := s.Storage.ReserveReportCode(code)
		if err != nil {
			return 0, err
		}
		if free {
			return code, nil
		}
	}
	return 0, apperr.Upstream("Could not allocate a free report code")
}
