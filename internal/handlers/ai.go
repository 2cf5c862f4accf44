package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/alimgiray/reviewdesk/internal/services"
	"github.com/alimgiray/reviewdesk/pkg/logger"
	"github.com/gin-gonic/gin"
)

type AIHandler struct {
	aiService          *services.AIService
	pullRequestService *services.PullRequestService
	commentService     *services.CommentService
}

func NewAIHandler(
	aiService *services.AIService,
	pullRequestService *services.PullRequestService,
	commentService *services.CommentService,
) *AIHandler {
	return &AIHandler{
		aiService:          aiService,
		pullRequestService: pullRequestService,
		commentService:     commentService,
	}
}

// SuggestReview returns a review suggestion for a pull request
func (h *AIHandler) SuggestReview(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pull request id"})
		return
	}

	pr, err := h.pullRequestService.GetPullRequestByID(id)
	if err != nil {
		logger.WithError(err).Errorf("Failed to get pull request %d", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get pull request"})
		return
	}
	if pr == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pull request not found"})
		return
	}

	suggestion, err := h.aiService.SuggestReview(pr)
	if err != nil {
		if errors.Is(err, services.ErrAIDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		logger.WithError(err).Error("AI suggestion failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI suggestion failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestion": suggestion})
}

// SummarizeThread returns a summary of a pull request's comments
func (h *AIHandler) SummarizeThread(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pull request id"})
		return
	}

	comments, err := h.commentService.GetCommentsByPullRequestID(id)
	if err != nil {
		logger.WithError(err).Errorf("Failed to load comments for pull request %d", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load comments"})
		return
	}

	summary, err := h.aiService.SummarizeComments(comments)
	if err != nil {
		if errors.Is(err, services.ErrAIDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		logger.WithError(err).Error("AI summary failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI summary failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
