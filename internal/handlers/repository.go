package handlers

import (
	"net/http"
	"strconv"

	"github.com/alimgiray/reviewdesk/internal/services"
	"github.com/alimgiray/reviewdesk/pkg/logger"
	"github.com/gin-gonic/gin"
)

type RepositoryHandler struct {
	repositoryService *services.RepositoryService
}

func NewRepositoryHandler(repositoryService *services.RepositoryService) *RepositoryHandler {
	return &RepositoryHandler{repositoryService: repositoryService}
}

// List returns the known repositories
func (h *RepositoryHandler) List(c *gin.Context) {
	repos, err := h.repositoryService.GetRepositories(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("Failed to list repositories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list repositories"})
		return
	}
	c.JSON(http.StatusOK, repos)
}

// Get returns one repository by id; unknown ids answer 404
func (h *RepositoryHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repository id"})
		return
	}

	repo, err := h.repositoryService.GetRepositoryByID(id)
	if err != nil {
		logger.WithError(err).Errorf("Failed to get repository %d", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get repository"})
		return
	}
	if repo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "repository not found"})
		return
	}
	c.JSON(http.StatusOK, repo)
}

// GetByFullName returns one repository by owner and name, falling back to
// the API when unknown locally
func (h *RepositoryHandler) GetByFullName(c *gin.Context) {
	owner := c.Param("owner")
	name := c.Param("name")

	repo, err := h.repositoryService.GetRepositoryByFullName(c.Request.Context(), owner, name)
	if err != nil {
		logger.WithError(err).Errorf("Failed to get repository %s/%s", owner, name)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get repository"})
		return
	}
	if repo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "repository not found"})
		return
	}
	c.JSON(http.StatusOK, repo)
}

// Search matches repositories by substring
func (h *RepositoryHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	repos, err := h.repositoryService.SearchRepositories(c.Request.Context(), q)
	if err != nil {
		logger.WithError(err).Errorf("Repository search failed for %q", q)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "repository search failed"})
		return
	}
	c.JSON(http.StatusOK, repos)
}

// Delete removes a repository and its pull requests, reviews and comments
func (h *RepositoryHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repository id"})
		return
	}

	if err := h.repositoryService.DeleteRepository(id); err != nil {
		logger.WithError(err).Errorf("Failed to delete repository %d", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete repository"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
