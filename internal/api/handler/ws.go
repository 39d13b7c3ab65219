package handler

import (
	"net/http"

	"campusfix/backend/internal/apperr"
	"campusfix/backend/internal/models"
	"campusfix/backend/internal/relay"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket authenticates the handshake and upgrades the connection.
// The credential is verified synchronously before the upgrade; a missing or
// invalid token rejects the connection outright.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	raw, found := bearerToken(c)
	if !found {
		// Browsers cannot set headers on websocket connects.
		raw = c.Query("token")
	}
	if raw == "" {
		fail(c, apperr.Unauthorized("Authorization token missing"))
		return
	}

	identity, err := h.Auth.VerifyToken(raw)
	if err != nil {
		fail(c, err)
		return
	}

	user, err := h.Storage.GetUserByID(identity.UserID)
	if err != nil {
		fail(c, apperr.Unauthorized("Unknown user"))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		fail(c, apperr.Upstream("Failed to upgrade connection"))
		return
	}

	client := &relay.WSClient{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
		Conn:   conn,
		Hub:    h.Hub,
		Send:   make(chan models.WireEvent, 256),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
