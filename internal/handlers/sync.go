package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/alimgiray/reviewdesk/internal/services"
	"github.com/alimgiray/reviewdesk/pkg/logger"
	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	syncService *services.SyncService
}

func NewSyncHandler(syncService *services.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// SyncRepositories triggers a repository sync; `?force=true` bypasses the
// freshness window.
func (h *SyncHandler) SyncRepositories(c *gin.Context) {
	force := c.Query("force") == "true"

	result, err := h.syncService.SyncRepositories(c.Request.Context(), force)
	h.respond(c, result, err)
}

// SyncPullRequests triggers a pull request sync for one repository
func (h *SyncHandler) SyncPullRequests(c *gin.Context) {
	repositoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repository id"})
		return
	}
	force := c.Query("force") == "true"

	result, syncErr := h.syncService.SyncPullRequests(c.Request.Context(), repositoryID, force)
	h.respond(c, result, syncErr)
}

// SyncComments triggers a comment and review sync for one pull request
func (h *SyncHandler) SyncComments(c *gin.Context) {
	pullRequestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pull request id"})
		return
	}
	force := c.Query("force") == "true"

	result, syncErr := h.syncService.SyncComments(c.Request.Context(), pullRequestID, force)
	h.respond(c, result, syncErr)
}

// Status reports whether a sync is running, along with the latest progress
// event of each sync kind.
func (h *SyncHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"inProgress": h.syncService.IsSyncInProgress(),
		"operations": h.syncService.ProgressSnapshot(),
	})
}

func (h *SyncHandler) respond(c *gin.Context, result interface{}, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, services.ErrSyncInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "result": result})
	case errors.Is(err, services.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		logger.WithError(err).Error("Sync failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "result": result})
	}
}
