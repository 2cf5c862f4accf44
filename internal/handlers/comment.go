package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/alimgiray/reviewdesk/internal/services"
	"github.com/alimgiray/reviewdesk/pkg/logger"
	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// ListForPullRequest returns the comments of one pull request
func (h *CommentHandler) ListForPullRequest(c *gin.Context) {
	pullRequestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pull request id"})
		return
	}

	comments, err := h.commentService.GetCommentsByPullRequestID(pullRequestID)
	if err != nil {
		logger.WithError(err).Errorf("Failed to list comments for pull request %d", pullRequestID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list comments"})
		return
	}
	c.JSON(http.StatusOK, comments)
}

// Get returns one comment by id; unknown ids answer 404
func (h *CommentHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}

	comment, err := h.commentService.GetCommentByID(id)
	if err != nil {
		logger.WithError(err).Errorf("Failed to get comment %d", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get comment"})
		return
	}
	if comment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Thread returns the direct replies to a comment
func (h *CommentHandler) Thread(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}

	replies, err := h.commentService.GetThread(id)
	if err != nil {
		logger.WithError(err).Errorf("Failed to load thread for comment %d", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load thread"})
		return
	}
	c.JSON(http.StatusOK, replies)
}

// Search matches comments by body substring
func (h *CommentHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	comments, err := h.commentService.SearchComments(q)
	if err != nil {
		logger.WithError(err).Errorf("Comment search failed for %q", q)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "comment search failed"})
		return
	}
	c.JSON(http.StatusOK, comments)
}

// Duplicate is a known-unsupported operation that answers 501 instead of
// silently succeeding.
func (h *CommentHandler) Duplicate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}

	if _, err := h.commentService.DuplicateComment(id); err != nil {
		if errors.Is(err, services.ErrNotImplemented) {
			c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
			return
		}
		logger.WithError(err).Errorf("Failed to duplicate comment %d", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to duplicate comment"})
	}
}
