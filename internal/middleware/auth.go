package middleware

import (
	"net/http"

	"github.com/alimgiray/reviewdesk/internal/services"
	"github.com/gin-gonic/gin"
)

// AuthRequired rejects requests arriving before a GitHub session exists
func AuthRequired(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authService.IsAuthenticated() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated with GitHub"})
			c.Abort()
			return
		}
		c.Next()
	}
}
