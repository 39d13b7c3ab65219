package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report statuses. A report starts at Pending and only ever moves forward:
// Pending -> In_Progress -> Resolved | Cancelled.
const (
	ReportStatusPending    = "Pending"
	ReportStatusInProgress = "In_Progress"
	ReportStatusResolved   = "Resolved"
	ReportStatusCancelled  = "Cancelled"
)

// Report priorities.
const (
	PriorityLow  = "Low"
	PriorityHigh = "High"
)

// ReportCategories is the closed set of accepted issue categories.
var ReportCategories = []string{
	"Electrical",
	"Plumbing",
	"HVAC",
	"Structural",
	"Furniture",
	"Cleaning",
	"Other",
}

// Report represents a filed facility issue and its lifecycle state.
type Report struct {
	ID string `gorm:"primaryKey" json:"id"`
	// Code is a short 4-digit human-facing number, collision-checked at creation.
	Code int `gorm:"uniqueIndex" json:"code"`

	Building    string `gorm:"not null" json:"building"`
	Floor       string `json:"floor"`
	Room        string `json:"room"`
	Category    string `gorm:"not null" json:"category"`
	Description string `gorm:"type:text;not null" json:"description"`
	PhotoURL    string `json:"photo_url,omitempty"`

	Priority string `gorm:"not null;default:Low" json:"priority"`
	Status   string `gorm:"not null;default:Pending;index" json:"status"`

	CreatedByID     string  `gorm:"not null;index" json:"created_by"`
	AssignedAdminID *string `gorm:"index" json:"assigned_admin,omitempty"`

	// Remarks and ResolutionPhotoURL are set by the admin closing the report.
	Remarks            string `gorm:"type:text" json:"remarks,omitempty"`
	ResolutionPhotoURL string `json:"resolution_photo_url,omitempty"`

	Comments []ReportComment `gorm:"foreignKey:ReportID" json:"comments,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	AssignedAt *time.Time `json:"assigned_at,omitempty"`
	// ResolvedAt is stamped exactly once, at the transition into Resolved.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

// IsTerminal reports whether the status admits no further transitions.
func (r *Report) IsTerminal() bool {
	return r.Status == ReportStatusResolved || r.Status == ReportStatusCancelled
}

// ReportComment is an append-only comment on a report.
type ReportComment struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ReportID  string    `gorm:"not null;index" json:"report_id"`
	AuthorID  string    `gorm:"not null" json:"author_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *ReportComment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// ValidReportStatus reports whether s is one of the closed status set.
func ValidReportStatus(s string) bool {
	switch s {
	case ReportStatusPending, ReportStatusInProgress, ReportStatusResolved, ReportStatusCancelled:
		return true
	}
	return false
}

// ValidPriority reports whether p is Low or High.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityHigh
}

// ValidCategory reports whether c belongs to the closed category set.
func ValidCategory(c string) bool {
	for _, known := range ReportCategories {
		if c == known {
			return true
		}
	}
	return false
}
