package handler

import (
	"io"
	"net/http"

	"campusfix/backend/internal/apperr"
	"campusfix/backend/internal/config"

	"github.com/gin-gonic/gin"
)

// Upload accepts a multipart photo, validates it against the allow-list and
// size cap, and returns its URL. An upload failure never touches state the
// caller has already committed elsewhere.
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		fail(c, apperr.Validation("A file field is required"))
		return
	}
	if fileHeader.Size > config.MaxUploadBytes {
		fail(c, apperr.Validation("Uploaded file exceeds the 5MB limit"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		fail(c, apperr.Upstream("Failed to read uploaded file"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, config.MaxUploadBytes+1))
	if err != nil {
		fail(c, apperr.Upstream("Failed to read uploaded file"))
		return
	}

	url, err := h.Files.Save(data, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"url": url})
}
