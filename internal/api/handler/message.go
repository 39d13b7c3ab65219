package handler

import (
	"net/http"

	"campusfix/backend/internal/apperr"
	"campusfix/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type sendMessageRequest struct {
	Text     string `json:"text"`
	ImageURL string `json:"image_url"`
}

// SendMessage persists a direct message to the user named in the path. The
// realtime delivery happens separately: the client relays the returned
// message id over the socket.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("Malformed message"))
		return
	}
	if req.Text == "" && req.ImageURL == "" {
		fail(c, apperr.Validation("Message requires text or an image"))
		return
	}

	receiver, err := h.Storage.GetUserByID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	msg := &models.Message{
		SenderID:   callerID(c),
		ReceiverID: receiver.ID,
		Text:       req.Text,
		ImageURL:   req.ImageURL,
		Type:       "text",
		ReadBy:     []string{callerID(c)},
	}
	if req.ImageURL != "" {
		msg.Type = "image"
	}

	if err := h.Storage.SaveMessage(msg); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, msg)
}

// GetConversation returns the exchange with the user named in the path,
// oldest first, along with the partner's presence state.
func (h *Handler) GetConversation(c *gin.Context) {
	partnerID := c.Param("id")

	messages, err := h.Storage.ListConversation(callerID(c), partnerID)
	if err != nil {
		fail(c, err)
		return
	}

	online := h.Presence.IsOnline(partnerID)
	var lastSeen interface{}
	if !online {
		if t, err := h.Storage.GetLastSeen(partnerID); err == nil && t != nil {
			lastSeen = t
		}
	}

	ok(c, http.StatusOK, gin.H{
		"messages":  messages,
		"online":    online,
		"last_seen": lastSeen,
	})
}

// ListConversations returns the caller's conversation summaries with unread
// counts.
func (h *Handler) ListConversations(c *gin.Context) {
	conversations, err := h.Storage.ListConversations(callerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, conversations)
}
