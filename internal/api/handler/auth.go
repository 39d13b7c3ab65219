package handler

import (
	"net/http"

	"campusfix/backend/internal/apperr"
	"campusfix/backend/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a student account and returns a bearer token.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("Name, email and a password of at least 8 characters are required"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(c, err)
		return
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
	}
	if err := h.Storage.CreateUser(user); err != nil {
		fail(c, apperr.Validation("Email is already registered"))
		return
	}

	token, err := h.Auth.IssueToken(user.ID, user.Role)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login verifies credentials and returns a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("Email and password are required"))
		return
	}

	user, err := h.Storage.GetUserByEmail(req.Email)
	if err != nil {
		fail(c, apperr.Unauthorized("Invalid email or password"))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		fail(c, apperr.Unauthorized("Invalid email or password"))
		return
	}

	token, err := h.Auth.IssueToken(user.ID, user.Role)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{"token": token, "user": user})
}
