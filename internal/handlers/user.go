package handlers

import (
	"net/http"

	"github.com/alimgiray/reviewdesk/internal/services"
	"github.com/alimgiray/reviewdesk/pkg/logger"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Get returns one user by login, falling back to the API when unknown locally
func (h *UserHandler) Get(c *gin.Context) {
	login := c.Param("login")

	user, err := h.userService.GetUserByLogin(c.Request.Context(), login)
	if err != nil {
		logger.WithError(err).Errorf("Failed to get user %s", login)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}
