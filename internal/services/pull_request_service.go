package services

import (
	"context"
	"fmt"

	githubclient "github.com/alimgiray/reviewdesk/internal/github"
	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/alimgiray/reviewdesk/internal/repositories"
	"github.com/alimgiray/reviewdesk/pkg/logger"
)

// PullRequestService reads pull requests cache-first with the domain table
// and the API behind it.
type PullRequestService struct {
	pullRequestRepo *repositories.PullRequestRepository
	repoRepo        *repositories.RepositoryRepository
	client          *githubclient.Client
	cacheService    *CacheService
	authService     *AuthService
	pageSize        int
}

func NewPullRequestService(
	pullRequestRepo *repositories.PullRequestRepository,
	repoRepo *repositories.RepositoryRepository,
	client *githubclient.Client,
	cacheService *CacheService,
	authService *AuthService,
	pageSize int,
) *PullRequestService {
	return &PullRequestService{
		pullRequestRepo: pullRequestRepo,
		repoRepo:        repoRepo,
		client:          client,
		cacheService:    cacheService,
		authService:     authService,
		pageSize:        pageSize,
	}
}

// GetPullRequests returns the pull requests of a repository
func (s *PullRequestService) GetPullRequests(ctx context.Context, repositoryID int64) ([]*models.PullRequest, error) {
	key := fmt.Sprintf("pullrequests_list_%d", repositoryID)

	var cached []*models.PullRequest
	if s.cacheService.GetJSON(key, &cached) {
		return cached, nil
	}

	local, err := s.pullRequestRepo.GetByRepositoryID(repositoryID)
	if err != nil {
		return nil, err
	}
	if len(local) > 0 || !s.authService.IsAuthenticated() {
		return local, nil
	}

	repo, err := s.repoRepo.GetByID(repositoryID)
	if err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, nil
	}
	owner, name := repo.OwnerAndName()
	if owner == "" {
		return nil, fmt.Errorf("repository %d has malformed full name %q", repositoryID, repo.FullName)
	}

	ghPRs, err := s.client.ListPullRequests(ctx, owner, name, "all", s.pageSize)
	if err != nil {
		return nil, err
	}

	prs := make([]*models.PullRequest, 0, len(ghPRs))
	for _, ghPR := range ghPRs {
		pr := githubclient.MapPullRequest(ghPR, repositoryID)
		if err := s.pullRequestRepo.Upsert(pr); err != nil {
			return nil, fmt.Errorf("failed to store pull request #%d: %w", pr.Number, err)
		}
		prs = append(prs, pr)
	}

	if err := s.cacheService.SetJSON(key, prs, pullRequestTTL); err != nil {
		logger.WithError(err).Warnf("Failed to cache pull requests for repository %d", repositoryID)
	}
	return prs, nil
}

// GetPullRequestByID returns one pull request, or nil when unknown
func (s *PullRequestService) GetPullRequestByID(id int64) (*models.PullRequest, error) {
	key := fmt.Sprintf("pullrequest_%d", id)

	var cached models.PullRequest
	if s.cacheService.GetJSON(key, &cached) {
		return &cached, nil
	}

	pr, err := s.pullRequestRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return nil, nil
	}

	if err := s.cacheService.SetJSON(key, pr, pullRequestTTL); err != nil {
		logger.WithError(err).Warnf("Failed to cache pull request %d", id)
	}
	return pr, nil
}

// GetPullRequestByNumber returns one pull request by repository and number,
// refreshing it from the API when missing locally.
func (s *PullRequestService) GetPullRequestByNumber(ctx context.Context, repositoryID int64, number int) (*models.PullRequest, error) {
	pr, err := s.pullRequestRepo.GetByRepositoryAndNumber(repositoryID, number)
	if err != nil {
		return nil, err
	}
	if pr != nil || !s.authService.IsAuthenticated() {
		return pr, nil
	}

	repo, err := s.repoRepo.GetByID(repositoryID)
	if err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, nil
	}
	owner, name := repo.OwnerAndName()
	if owner == "" {
		return nil, fmt.Errorf("repository %d has malformed full name %q", repositoryID, repo.FullName)
	}

	ghPR, err := s.client.GetPullRequest(ctx, owner, name, number)
	if err != nil {
		return nil, err
	}
	if ghPR == nil {
		return nil, nil
	}

	pr = githubclient.MapPullRequest(ghPR, repositoryID)
	if err := s.pullRequestRepo.Upsert(pr); err != nil {
		return nil, fmt.Errorf("failed to store pull request #%d: %w", number, err)
	}
	return pr, nil
}

// SearchPullRequests matches q as a substring of title or body
func (s *PullRequestService) SearchPullRequests(repositoryID int64, q string) ([]*models.PullRequest, error) {
	return s.pullRequestRepo.Search(repositoryID, q)
}

func (s *PullRequestService) UpsertPullRequest(pr *models.PullRequest) error {
	return s.pullRequestRepo.Upsert(pr)
}
