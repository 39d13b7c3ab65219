package handler

import (
	"net/http"

	"campusfix/backend/internal/apperr"
	"campusfix/backend/internal/models"
	"campusfix/backend/internal/report"

	"github.com/gin-gonic/gin"
)

// CreateReport files a new facility issue for the caller.
func (h *Handler) CreateReport(c *gin.Context) {
	var in report.CreateReportInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.Validation("Building, category and description are required"))
		return
	}

	created, err := h.Reports.CreateReport(callerID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, created)
}

// ListReports returns reports filtered by the caller's role: admins see
// everything (optionally narrowed by ?status=), students see their own.
func (h *Handler) ListReports(c *gin.Context) {
	if callerRole(c) != models.RoleAdmin {
		reports, err := h.Storage.ListReportsByUser(callerID(c))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, http.StatusOK, reports)
		return
	}

	if status := c.Query("status"); status != "" {
		if !models.ValidReportStatus(status) {
			fail(c, apperr.Validation("Unknown status: %s", status))
			return
		}
		reports, err := h.Storage.ListReportsByStatus(status)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, http.StatusOK, reports)
		return
	}

	reports, err := h.Storage.ListReports()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, reports)
}

// GetReport returns one report with its comments. Students may only fetch
// their own reports.
func (h *Handler) GetReport(c *gin.Context) {
	r, err := h.Storage.GetReportByID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if callerRole(c) != models.RoleAdmin && r.CreatedByID != callerID(c) {
		fail(c, apperr.Forbidden("You can only view your own reports"))
		return
	}
	ok(c, http.StatusOK, r)
}

// UpdateReport lets the creator patch a still-Pending report.
func (h *Handler) UpdateReport(c *gin.Context) {
	var patch report.UpdateReportInput
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, apperr.Validation("Malformed report patch"))
		return
	}

	updated, err := h.Reports.UpdateReport(c.Param("id"), callerID(c), patch)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

// DeleteReport removes a report and cascades to its tasks and notifications.
func (h *Handler) DeleteReport(c *gin.Context) {
	if err := h.Reports.DeleteReport(c.Param("id"), callerID(c), callerRole(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"deleted": true})
}

// AcceptReport moves a Pending report to In_Progress under the calling admin.
func (h *Handler) AcceptReport(c *gin.Context) {
	accepted, err := h.Reports.AcceptReport(c.Param("id"), callerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, accepted)
}

// UpdateReportStatus applies an admin status/priority change.
func (h *Handler) UpdateReportStatus(c *gin.Context) {
	var in report.UpdateStatusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.Validation("Malformed status update"))
		return
	}

	updated, err := h.Reports.UpdateReportStatus(c.Param("id"), callerID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

type commentRequest struct {
	Text     string `json:"text"`
	PhotoURL string `json:"photo_url"`
}

// AddComment appends a comment to a report.
func (h *Handler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("Malformed comment"))
		return
	}

	comment, err := h.Reports.AddComment(c.Param("id"), callerID(c), req.Text, req.PhotoURL)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, comment)
}
