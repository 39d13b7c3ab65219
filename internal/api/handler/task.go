package handler

import (
	"net/http"

	"campusfix/backend/internal/apperr"

	"github.com/gin-gonic/gin"
)

// ListTasks filters tasks by ?status=, ?assignee=, or ?overdue=true. Without
// filters it returns the calling admin's own tasks.
func (h *Handler) ListTasks(c *gin.Context) {
	switch {
	case c.Query("overdue") == "true":
		tasks, err := h.Tasks.ListOverdue()
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, http.StatusOK, tasks)
	case c.Query("status") != "":
		tasks, err := h.Tasks.ListByStatus(c.Query("status"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, http.StatusOK, tasks)
	case c.Query("assignee") != "":
		tasks, err := h.Tasks.ListByAssignee(c.Query("assignee"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, http.StatusOK, tasks)
	default:
		tasks, err := h.Tasks.ListByAssignee(callerID(c))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, http.StatusOK, tasks)
	}
}

// GetTask returns one task with its notes.
func (h *Handler) GetTask(c *gin.Context) {
	task, err := h.Tasks.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, task)
}

type taskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateTaskStatus moves a task through its machine; Completed resolves the
// parent report.
func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	var req taskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("Status is required"))
		return
	}

	task, err := h.Tasks.UpdateStatus(c.Param("id"), callerID(c), req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, task)
}

type taskNoteRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddTaskNote appends a free-text note to a task.
func (h *Handler) AddTaskNote(c *gin.Context) {
	var req taskNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("Note text is required"))
		return
	}

	note, err := h.Tasks.AppendNote(c.Param("id"), callerID(c), req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, note)
}
