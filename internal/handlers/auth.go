package handlers

import (
	"net/http"

	"github.com/alimgiray/reviewdesk/internal/services"
	"github.com/alimgiray/reviewdesk/pkg/logger"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// StartDeviceFlow requests a device code pair for the user to authorize
func (h *AuthHandler) StartDeviceFlow(c *gin.Context) {
	auth, err := h.authService.StartAuthentication(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("Failed to start device flow")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to start GitHub authentication"})
		return
	}

	c.JSON(http.StatusOK, auth)
}

type pollRequest struct {
	DeviceCode string `json:"deviceCode" binding:"required"`
}

// PollDeviceFlow attempts one device-code exchange. A pending authorization
// answers 202 so the caller knows to poll again.
func (h *AuthHandler) PollDeviceFlow(c *gin.Context) {
	var req pollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deviceCode is required"})
		return
	}

	done, err := h.authService.CompleteAuthentication(c.Request.Context(), req.DeviceCode)
	if err != nil {
		logger.WithError(err).Error("Device flow exchange failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "GitHub authentication failed"})
		return
	}
	if !done {
		c.JSON(http.StatusAccepted, gin.H{"status": "pending"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "authenticated",
		"user":   h.authService.CurrentUser(),
	})
}

// Status reports the current session
func (h *AuthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"authenticated": h.authService.IsAuthenticated(),
		"user":          h.authService.CurrentUser(),
	})
}

// SignOut drops the session and persisted credentials
func (h *AuthHandler) SignOut(c *gin.Context) {
	h.authService.SignOut()
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}
