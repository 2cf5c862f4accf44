package handlers

import (
	"net/http"
	"strconv"

	"github.com/alimgiray/reviewdesk/internal/services"
	"github.com/alimgiray/reviewdesk/pkg/logger"
	"github.com/gin-gonic/gin"
)

type PullRequestHandler struct {
	pullRequestService *services.PullRequestService
	reviewService      *services.ReviewService
}

func NewPullRequestHandler(pullRequestService *services.PullRequestService, reviewService *services.ReviewService) *PullRequestHandler {
	return &PullRequestHandler{
		pullRequestService: pullRequestService,
		reviewService:      reviewService,
	}
}

// ListForRepository returns the pull requests of one repository, optionally
// filtered by substring via `?q=`.
func (h *PullRequestHandler) ListForRepository(c *gin.Context) {
	repositoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repository id"})
		return
	}

	if q := c.Query("q"); q != "" {
		prs, err := h.pullRequestService.SearchPullRequests(repositoryID, q)
		if err != nil {
			logger.WithError(err).Errorf("Pull request search failed for repository %d", repositoryID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "pull request search failed"})
			return
		}
		c.JSON(http.StatusOK, prs)
		return
	}

	prs, err := h.pullRequestService.GetPullRequests(c.Request.Context(), repositoryID)
	if err != nil {
		logger.WithError(err).Errorf("Failed to list pull requests for repository %d", repositoryID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list pull requests"})
		return
	}
	c.JSON(http.StatusOK, prs)
}

// GetByNumber returns one pull request by repository and number, refreshing
// it from the API when missing locally
func (h *PullRequestHandler) GetByNumber(c *gin.Context) {
	repositoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repository id"})
		return
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pull request number"})
		return
	}

	pr, err := h.pullRequestService.GetPullRequestByNumber(c.Request.Context(), repositoryID, number)
	if err != nil {
		logger.WithError(err).Errorf("Failed to get pull request %d#%d", repositoryID, number)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get pull request"})
		return
	}
	if pr == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pull request not found"})
		return
	}
	c.JSON(http.StatusOK, pr)
}

// Get returns one pull request by id; unknown ids answer 404
func (h *PullRequestHandler) Get(c *gin.Context) {
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
	c.JSON(http.StatusOK, pr)
}

// Reviews returns the reviews of one pull request
func (h *PullRequestHandler) Reviews(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pull request id"})
		return
	}

	reviews, err := h.reviewService.GetReviewsByPullRequestID(id)
	if err != nil {
		logger.WithError(err).Errorf("Failed to list reviews for pull request %d", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reviews"})
		return
	}
	c.JSON(http.StatusOK, reviews)
}
