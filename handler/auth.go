package handler

import (
	"net/http"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/config"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/middleware"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/pkg/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	config *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{config: cfg}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Company   string `json:"company,omitempty"`
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user := h.config.FindUser(req.Username)
	if user == nil || !passwordMatches(user, req.Password) {
		logger.Warn(c.Request.Context(), "login rejected", "username", req.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, expiresAt, err := middleware.GenerateToken(*user, &h.config.Auth)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to sign token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00"),
		UserID:    user.ID,
		Username:  user.Username,
		Company:   user.Company,
	})
}

func passwordMatches(user *config.User, password string) bool {
	if user.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
	}
	return user.Password != "" && user.Password == password
}

// GetCurrentUser returns the current user info
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id":  middleware.GetUserID(c),
		"username": middleware.GetUsername(c),
		"company":  middleware.GetCompany(c),
	})
}
