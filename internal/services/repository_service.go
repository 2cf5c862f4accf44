package services

import (
	"context"
	"fmt"
	"time"

	githubclient "github.com/alimgiray/reviewdesk/internal/github"
	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/alimgiray/reviewdesk/internal/repositories"
	"github.com/alimgiray/reviewdesk/pkg/logger"
)

// Cache lifetimes per entity, shortest for the most volatile
const (
	repositoryTTL  = 30 * time.Minute
	pullRequestTTL = 15 * time.Minute
	commentTTL     = 10 * time.Minute
	searchTTL      = 5 * time.Minute
)

// RepositoryService reads repositories cache-first: the cache table, then the
// local domain table, then the GitHub API when a token is available. Fetched
// results are written back with a fixed lifetime.
type RepositoryService struct {
	repoRepo     *repositories.RepositoryRepository
	client       *githubclient.Client
	cacheService *CacheService
	authService  *AuthService
	pageSize     int
}

func NewRepositoryService(
	repoRepo *repositories.RepositoryRepository,
	client *githubclient.Client,
	cacheService *CacheService,
	authService *AuthService,
	pageSize int,
) *RepositoryService {
	return &RepositoryService{
		repoRepo:     repoRepo,
		client:       client,
		cacheService: cacheService,
		authService:  authService,
		pageSize:     pageSize,
	}
}

// GetRepositories returns the authenticated user's repositories
func (s *RepositoryService) GetRepositories(ctx context.Context) ([]*models.Repository, error) {
	var cached []*models.Repository
	if s.cacheService.GetJSON("repositories_all", &cached) {
		return cached, nil
	}

	local, err := s.repoRepo.GetAll()
	if err != nil {
		return nil, err
	}
	if len(local) > 0 || !s.authService.IsAuthenticated() {
		return local, nil
	}

	ghRepos, err := s.client.ListUserRepositories(ctx, s.pageSize)
	if err != nil {
		return nil, err
	}

	repos := make([]*models.Repository, 0, len(ghRepos))
	for _, ghRepo := range ghRepos {
		repo := githubclient.MapRepository(ghRepo)
		if err := s.repoRepo.Upsert(repo); err != nil {
			return nil, fmt.Errorf("failed to store repository %s: %w", repo.FullName, err)
		}
		repos = append(repos, repo)
	}

	if err := s.cacheService.SetJSON("repositories_all", repos, repositoryTTL); err != nil {
		logger.WithError(err).Warn("Failed to cache repository list")
	}
	return repos, nil
}

// GetRepositoryByID returns one repository, or nil when unknown
func (s *RepositoryService) GetRepositoryByID(id int64) (*models.Repository, error) {
	key := fmt.Sprintf("repository_%d", id)

	var cached models.Repository
	if s.cacheService.GetJSON(key, &cached) {
		return &cached, nil
	}

	repo, err := s.repoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, nil
	}

	if err := s.cacheService.SetJSON(key, repo, repositoryTTL); err != nil {
		logger.WithError(err).Warnf("Failed to cache repository %d", id)
	}
	return repo, nil
}

// GetRepositoryByFullName returns one repository by owner/name, falling back
// to the API. Not-found maps to nil, not an error.
func (s *RepositoryService) GetRepositoryByFullName(ctx context.Context, owner, name string) (*models.Repository, error) {
	fullName := owner + "/" + name
	key := "repository_name_" + fullName

	var cached models.Repository
	if s.cacheService.GetJSON(key, &cached) {
		return &cached, nil
	}

	repo, err := s.repoRepo.GetByFullName(fullName)
	if err != nil {
		return nil, err
	}
	if repo == nil && s.authService.IsAuthenticated() {
		ghRepo, err := s.client.GetRepository(ctx, owner, name)
		if err != nil {
			return nil, err
		}
		if ghRepo == nil {
			return nil, nil
		}
		repo = githubclient.MapRepository(ghRepo)
		if err := s.repoRepo.Upsert(repo); err != nil {
			return nil, fmt.Errorf("failed to store repository %s: %w", fullName, err)
		}
	}
	if repo == nil {
		return nil, nil
	}

	if err := s.cacheService.SetJSON(key, repo, repositoryTTL); err != nil {
		logger.WithError(err).Warnf("Failed to cache repository %s", fullName)
	}
	return repo, nil
}

// SearchRepositories matches q as a substring locally, reaching out to the
// GitHub search API only when nothing local matches. Search results carry the
// shortest cache lifetime.
func (s *RepositoryService) SearchRepositories(ctx context.Context, q string) ([]*models.Repository, error) {
	key := "repository_search_" + q

	var cached []*models.Repository
	if s.cacheService.GetJSON(key, &cached) {
		return cached, nil
	}

	repos, err := s.repoRepo.Search(q)
	if err != nil {
		return nil, err
	}

	if len(repos) == 0 && s.authService.IsAuthenticated() {
		ghRepos, err := s.client.SearchRepositories(ctx, q, s.pageSize)
		if err != nil {
			return nil, err
		}
		for _, ghRepo := range ghRepos {
			repo := githubclient.MapRepository(ghRepo)
			if err := s.repoRepo.Upsert(repo); err != nil {
				return nil, fmt.Errorf("failed to store repository %s: %w", repo.FullName, err)
			}
			repos = append(repos, repo)
		}
	}

	if err := s.cacheService.SetJSON(key, repos, searchTTL); err != nil {
		logger.WithError(err).Warnf("Failed to cache search results for %q", q)
	}
	return repos, nil
}

// DeleteRepository removes a repository and everything under it
func (s *RepositoryService) DeleteRepository(id int64) error {
	if err := s.repoRepo.Delete(id); err != nil {
		return err
	}
	if _, err := s.cacheService.RemoveByPattern(fmt.Sprintf("repository_%d*", id)); err != nil {
		logger.WithError(err).Warnf("Failed to invalidate cache for repository %d", id)
	}
	if err := s.cacheService.Remove("repositories_all"); err != nil {
		logger.WithError(err).Warn("Failed to invalidate repository list cache")
	}
	return nil
}
