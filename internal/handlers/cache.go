package handlers

import (
	"net/http"

	"github.com/alimgiray/reviewdesk/internal/services"
	"github.com/alimgiray/reviewdesk/pkg/logger"
	"github.com/gin-gonic/gin"
)

type CacheHandler struct {
	cacheService *services.CacheService
}

func NewCacheHandler(cacheService *services.CacheService) *CacheHandler {
	return &CacheHandler{cacheService: cacheService}
}

// Statistics reports total and expired entry counts
func (h *CacheHandler) Statistics(c *gin.Context) {
	stats, err := h.cacheService.Statistics()
	if err != nil {
		logger.WithError(err).Error("Failed to read cache statistics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read cache statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Clear empties the cache table. Authentication is key-scoped in the same
// table, so the sealed token goes with it and the session must be restored
// on the next start.
func (h *CacheHandler) Clear(c *gin.Context) {
	if pattern := c.Query("pattern"); pattern != "" {
		removed, err := h.cacheService.RemoveByPattern(pattern)
		if err != nil {
			logger.WithError(err).Errorf("Failed to remove cache entries matching %q", pattern)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove cache entries"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": removed})
		return
	}

	if err := h.cacheService.Clear(); err != nil {
		logger.WithError(err).Error("Failed to clear cache")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cache"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
