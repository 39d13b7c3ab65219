package handler

import (
	"strings"

	"campusfix/backend/internal/apperr"
	"campusfix/backend/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

// bearerToken extracts the raw token from the Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(header, "Bearer "), true
}

// RequireAuth verifies the bearer credential and stashes the identity in the
// gin context for downstream handlers.
func (h *Handler) RequireAuth(c *gin.Context) {
	raw, found := bearerToken(c)
	if !found {
		fail(c, apperr.Unauthorized("Authorization token missing"))
		return
	}

	identity, err := h.Auth.VerifyToken(raw)
	if err != nil {
		fail(c, err)
		return
	}

	c.Set(ctxUserID, identity.UserID)
	c.Set(ctxRole, identity.Role)
	c.Next()
}

// RequireAdmin gates admin-only routes. Must run after RequireAuth.
func (h *Handler) RequireAdmin(c *gin.Context) {
	if c.GetString(ctxRole) != models.RoleAdmin {
		fail(c, apperr.Forbidden("Admin role required"))
		return
	}
	c.Next()
}

func callerID(c *gin.Context) string   { return c.GetString(ctxUserID) }
func callerRole(c *gin.Context) string { return c.GetString(ctxRole) }
