package handler

import (
	"errors"
	"log"
	"net/http"

	"campusfix/backend/internal/apperr"
	"campusfix/backend/internal/auth"
	"campusfix/backend/internal/filestore"
	"campusfix/backend/internal/notification"
	"campusfix/backend/internal/presence"
	"campusfix/backend/internal/relay"
	"campusfix/backend/internal/report"
	"campusfix/backend/internal/storage"
	"campusfix/backend/internal/task"

	"github.com/gin-gonic/gin"
)

// Handler wires the HTTP surface to the services and the realtime hub.
type Handler struct {
	Hub           *relay.RelayService
	Auth          *auth.Service
	Storage       storage.Storage
	Reports       *report.Service
	Tasks         *task.Service
	Notifications *notification.Service
	Files         *filestore.Store
	Presence      *presence.Registry
}

func NewHandler(
	hub *relay.RelayService,
	authSvc *auth.Service,
	store storage.Storage,
	reports *report.Service,
	tasks *task.Service,
	notifications *notification.Service,
	files *filestore.Store,
	reg *presence.Registry,
) *Handler {
	return &Handler{
		Hub:           hub,
		Auth:          authSvc,
		Storage:       store,
		Reports:       reports,
		Tasks:         tasks,
		Notifications: notifications,
		Files:         files,
		Presence:      reg,
	}
}

// ok writes the success envelope.
func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// fail maps a service error onto the failure envelope and an HTTP status.
// Unexpected errors become a generic 500 with internals elided outside
// development mode.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrInvalidState):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrUpstream):
		status = http.StatusBadGateway
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("ERROR: Unexpected handler error: %v", err)
		message = "Internal server error"
		if gin.Mode() == gin.DebugMode {
			message = err.Error()
		}
	}

	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
