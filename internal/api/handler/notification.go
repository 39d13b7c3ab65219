package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListNotifications returns the caller's active notifications newest-first;
// ?unread=true narrows to unread ones.
func (h *Handler) ListNotifications(c *gin.Context) {
	var err error
	var notifications interface{}

	if c.Query("unread") == "true" {
		notifications, err = h.Notifications.ListUnreadForUser(callerID(c))
	} else {
		notifications, err = h.Notifications.ListForUser(callerID(c))
	}
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, notifications)
}

// UnreadNotificationCount returns the caller's unread count.
func (h *Handler) UnreadNotificationCount(c *gin.Context) {
	count, err := h.Notifications.CountUnread(callerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"count": count})
}

// MarkNotificationRead flips the read flag on the caller's notification.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	n, err := h.Notifications.MarkRead(c.Param("id"), callerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, n)
}
