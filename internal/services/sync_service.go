package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	githubclient "github.com/alimgiray/reviewdesk/internal/github"
	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/alimgiray/reviewdesk/internal/repositories"
	"github.com/alimgiray/reviewdesk/pkg/config"
	"github.com/alimgiray/reviewdesk/pkg/logger"
	gogithub "github.com/google/go-github/v57/github"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// githubAPI is the slice of the client wrapper the sync pipeline touches,
// narrowed so tests can substitute a fake.
type githubAPI interface {
	ListUserRepositories(ctx context.Context, pageSize int) ([]*gogithub.Repository, error)
	ListPullRequests(ctx context.Context, owner, repo, state string, pageSize int) ([]*gogithub.PullRequest, error)
	ListIssueComments(ctx context.Context, owner, repo string, number, pageSize int) ([]*gogithub.IssueComment, error)
	ListReviewComments(ctx context.Context, owner, repo string, number, pageSize int) ([]*gogithub.PullRequestComment, error)
	ListReviews(ctx context.Context, owner, repo string, number, pageSize int) ([]*gogithub.PullRequestReview, error)
}

const progressBufferSize = 16

// SyncService pulls repositories, pull requests and comments from GitHub into
// the local store. One sync runs at a time across all kinds: the guard is an
// atomic state token, and a request arriving while another sync runs is
// refused, not queued. Unless forced, a sync inside its freshness window is
// skipped without touching the API.
type SyncService struct {
	api             githubAPI
	authService     *AuthService
	cacheService    *CacheService
	userRepo        *repositories.UserRepository
	repoRepo        *repositories.RepositoryRepository
	pullRequestRepo *repositories.PullRequestRepository
	reviewRepo      *repositories.ReviewRepository
	commentRepo     *repositories.CommentRepository
	policy          config.SyncConfig

	inProgress atomic.Bool

	mu          sync.Mutex
	subscribers map[int]chan models.SyncProgress
	nextSubID   int
	latest      map[models.SyncKind]models.SyncProgress
}

func NewSyncService(
	api githubAPI,
	authService *AuthService,
	cacheService *CacheService,
	userRepo *repositories.UserRepository,
	repoRepo *repositories.RepositoryRepository,
	pullRequestRepo *repositories.PullRequestRepository,
	reviewRepo *repositories.ReviewRepository,
	commentRepo *repositories.CommentRepository,
	policy config.SyncConfig,
) *SyncService {
	return &SyncService{
		api:             api,
		authService:     authService,
		cacheService:    cacheService,
		userRepo:        userRepo,
		repoRepo:        repoRepo,
		pullRequestRepo: pullRequestRepo,
		reviewRepo:      reviewRepo,
		commentRepo:     commentRepo,
		policy:          policy,
		subscribers:     map[int]chan models.SyncProgress{},
		latest:          map[models.SyncKind]models.SyncProgress{},
	}
}

// IsSyncInProgress reports whether any sync kind is currently running
func (s *SyncService) IsSyncInProgress() bool {
	return s.inProgress.Load()
}

// tryBeginSync atomically claims the global sync slot
func (s *SyncService) tryBeginSync() bool {
	return s.inProgress.CompareAndSwap(false, true)
}

func (s *SyncService) endSync() {
	s.inProgress.Store(false)
}

// Subscribe registers a progress listener. Each subscriber gets a bounded
// channel; updates to a full channel are dropped, since progress is advisory.
// The returned func unsubscribes and closes the channel.
func (s *SyncService) Subscribe() (<-chan models.SyncProgress, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan models.SyncProgress, progressBufferSize)
	s.subscribers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if ch, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(ch)
		}
	}
}

func (s *SyncService) publish(operationID string, kind models.SyncKind, percent int, message string) {
	update := models.SyncProgress{
		OperationID: operationID,
		Kind:        kind,
		Percent:     percent,
		Message:     message,
		Timestamp:   time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[kind] = update
	for _, ch := range s.subscribers {
		select {
		case ch <- update:
		default:
		}
	}
}

// ProgressSnapshot returns the most recent progress event of each sync kind,
// ordered by kind. Kinds that never ran are absent.
func (s *SyncService) ProgressSnapshot() []models.SyncProgress {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]models.SyncProgress, 0, len(s.latest))
	for _, update := range s.latest {
		snapshot = append(snapshot, update)
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].Kind < snapshot[j].Kind })
	return snapshot
}

// isFresh reports whether the operation ran inside its freshness window
func (s *SyncService) isFresh(operationKey string, window time.Duration) bool {
	lastSync := s.cacheService.GetTime("last_sync_" + operationKey)
	if lastSync.IsZero() {
		return false
	}
	return time.Since(lastSync) < window
}

func (s *SyncService) markSynced(operationKey string) {
	if err := s.cacheService.SetTime("last_sync_"+operationKey, time.Now()); err != nil {
		logger.WithError(err).Warnf("Failed to record last sync time for %s", operationKey)
	}
}

// SyncRepositories pulls every repository of the authenticated user
func (s *SyncService) SyncRepositories(ctx context.Context, force bool) (*models.SyncResult, error) {
	return s.run(ctx, models.SyncKindRepositories, models.SyncOperationKey(models.SyncKindRepositories, 0),
		s.policy.RepositoryFreshness, force, s.syncRepositories)
}

// SyncPullRequests pulls every pull request of one repository
func (s *SyncService) SyncPullRequests(ctx context.Context, repositoryID int64, force bool) (*models.SyncResult, error) {
	return s.run(ctx, models.SyncKindPullRequests, models.SyncOperationKey(models.SyncKindPullRequests, repositoryID),
		s.policy.PullRequestFreshness, force, func(ctx context.Context, opID string) (int, error) {
			return s.syncPullRequests(ctx, opID, repositoryID)
		})
}

// SyncComments pulls the reviews and comments of one pull request
func (s *SyncService) SyncComments(ctx context.Context, pullRequestID int64, force bool) (*models.SyncResult, error) {
	return s.run(ctx, models.SyncKindComments, models.SyncOperationKey(models.SyncKindComments, pullRequestID),
		s.policy.CommentFreshness, force, func(ctx context.Context, opID string) (int, error) {
			return s.syncComments(ctx, opID, pullRequestID)
		})
}

// run wraps a sync body with the guard, freshness check, progress events and
// error reporting shared by every sync kind. The guard is cleared on every
// path; items written before a failure or cancellation stay committed.
func (s *SyncService) run(
	ctx context.Context,
	kind models.SyncKind,
	operationKey string,
	window time.Duration,
	force bool,
	body func(ctx context.Context, operationID string) (int, error),
) (*models.SyncResult, error) {
	result := &models.SyncResult{Kind: kind, StartedAt: time.Now()}

	if !s.authService.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	if !s.tryBeginSync() {
		logger.Warnf("Sync %s refused: another sync is in progress", operationKey)
		result.Skipped = true
		result.FinishedAt = time.Now()
		return result, ErrSyncInProgress
	}
	defer s.endSync()

	if !force && s.isFresh(operationKey, window) {
		logger.Infof("Sync %s skipped: still fresh", operationKey)
		result.Skipped = true
		result.FinishedAt = time.Now()
		return result, nil
	}

	operationID := uuid.New().String()
	synced, err := body(ctx, operationID)
	result.ItemsSynced = synced
	result.FinishedAt = time.Now()
	if err != nil {
		logger.WithFields(logrus.Fields{"operation": operationKey, "synced": synced}).WithError(err).Error("Sync failed")
		s.publish(operationID, kind, 0, fmt.Sprintf("Error: %v", err))
		return result, err
	}

	s.markSynced(operationKey)
	logger.WithFields(logrus.Fields{"operation": operationKey, "synced": synced}).Info("Sync completed")
	return result, nil
}

func (s *SyncService) syncRepositories(ctx context.Context, opID string) (int, error) {
	kind := models.SyncKindRepositories
	s.publish(opID, kind, 0, "Fetching repositories")

	ghRepos, err := s.api.ListUserRepositories(ctx, s.policy.PageSize)
	if err != nil {
		return 0, err
	}
	s.publish(opID, kind, 25, fmt.Sprintf("Processing %d repositories", len(ghRepos)))

	synced := 0
	for i, ghRepo := range ghRepos {
		if err := ctx.Err(); err != nil {
			return synced, err
		}

		repo := githubclient.MapRepository(ghRepo)
		if ghRepo.Owner != nil {
			if err := s.userRepo.Upsert(githubclient.MapUser(ghRepo.Owner)); err != nil {
				logger.WithError(err).Warnf("Failed to store owner of %s", repo.FullName)
			}
		}
		if err := s.repoRepo.Upsert(repo); err != nil {
			return synced, fmt.Errorf("failed to store repository %s: %w", repo.FullName, err)
		}
		synced++
		s.publish(opID, kind, processingPercent(i+1, len(ghRepos)), repo.FullName)
	}

	if err := s.cacheService.Remove("repositories_all"); err != nil {
		logger.WithError(err).Warn("Failed to invalidate repository list cache")
	}

	s.publish(opID, kind, 100, fmt.Sprintf("Synced %d repositories", synced))
	return synced, nil
}

func (s *SyncService) syncPullRequests(ctx context.Context, opID string, repositoryID int64) (int, error) {
	kind := models.SyncKindPullRequests

	repo, err := s.repoRepo.GetByID(repositoryID)
	if err != nil {
		return 0, err
	}
	if repo == nil {
		return 0, fmt.Errorf("repository %d is not synced locally", repositoryID)
	}
	owner, name := repo.OwnerAndName()
	if owner == "" {
		return 0, fmt.Errorf("repository %d has malformed full name %q", repositoryID, repo.FullName)
	}

	s.publish(opID, kind, 0, fmt.Sprintf("Fetching pull requests for %s", repo.FullName))

	ghPRs, err := s.api.ListPullRequests(ctx, owner, name, "all", s.policy.PageSize)
	if err != nil {
		return 0, err
	}
	s.publish(opID, kind, 25, fmt.Sprintf("Processing %d pull requests", len(ghPRs)))

	synced := 0
	for i, ghPR := range ghPRs {
		if err := ctx.Err(); err != nil {
			return synced, err
		}

		if ghPR.User != nil {
			if err := s.userRepo.Upsert(githubclient.MapUser(ghPR.User)); err != nil {
				logger.WithError(err).Warnf("Failed to store author of #%d", ghPR.GetNumber())
			}
		}
		pr := githubclient.MapPullRequest(ghPR, repositoryID)
		if err := s.pullRequestRepo.Upsert(pr); err != nil {
			return synced, fmt.Errorf("failed to store pull request #%d: %w", pr.Number, err)
		}
		synced++
		s.publish(opID, kind, processingPercent(i+1, len(ghPRs)), fmt.Sprintf("#%d %s", pr.Number, pr.Title))
	}

	if err := s.cacheService.Remove(fmt.Sprintf("pullrequests_list_%d", repositoryID)); err != nil {
		logger.WithError(err).Warnf("Failed to invalidate pull request cache for repository %d", repositoryID)
	}

	s.publish(opID, kind, 100, fmt.Sprintf("Synced %d pull requests", synced))
	return synced, nil
}

func (s *SyncService) syncComments(ctx context.Context, opID string, pullRequestID int64) (int, error) {
	kind := models.SyncKindComments

	pr, err := s.pullRequestRepo.GetByID(pullRequestID)
	if err != nil {
		return 0, err
	}
	if pr == nil {
		return 0, fmt.Errorf("pull request %d is not synced locally", pullRequestID)
	}
	repo, err := s.repoRepo.GetByID(pr.RepositoryID)
	if err != nil {
		return 0, err
	}
	if repo == nil {
		return 0, fmt.Errorf("repository %d is not synced locally", pr.RepositoryID)
	}
	owner, name := repo.OwnerAndName()
	if owner == "" {
		return 0, fmt.Errorf("repository %d has malformed full name %q", repo.ID, repo.FullName)
	}

	s.publish(opID, kind, 0, fmt.Sprintf("Fetching comments for %s#%d", repo.FullName, pr.Number))

	reviews, err := s.api.ListReviews(ctx, owner, name, pr.Number, s.policy.PageSize)
	if err != nil {
		return 0, err
	}
	issueComments, err := s.api.ListIssueComments(ctx, owner, name, pr.Number, s.policy.PageSize)
	if err != nil {
		return 0, err
	}
	reviewComments, err := s.api.ListReviewComments(ctx, owner, name, pr.Number, s.policy.PageSize)
	if err != nil {
		return 0, err
	}

	total := len(reviews) + len(issueComments) + len(reviewComments)
	s.publish(opID, kind, 25, fmt.Sprintf("Processing %d items", total))

	synced := 0
	processed := 0

	// Reviews go first so review comments can reference them
	for _, ghReview := range reviews {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if ghReview.User != nil {
			if err := s.userRepo.Upsert(githubclient.MapUser(ghReview.User)); err != nil {
				logger.WithError(err).Warnf("Failed to store reviewer for review %d", ghReview.GetID())
			}
		}
		review := githubclient.MapReview(ghReview, pullRequestID)
		if err := s.reviewRepo.Upsert(review); err != nil {
			return synced, fmt.Errorf("failed to store review %d: %w", review.ID, err)
		}
		synced++
		processed++
		s.publish(opID, kind, processingPercent(processed, total), fmt.Sprintf("Review by %s", ghReview.User.GetLogin()))
	}

	for _, ghComment := range issueComments {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if ghComment.User != nil {
			if err := s.userRepo.Upsert(githubclient.MapUser(ghComment.User)); err != nil {
				logger.WithError(err).Warnf("Failed to store commenter for comment %d", ghComment.GetID())
			}
		}
		comment := githubclient.MapIssueComment(ghComment, pullRequestID)
		if err := s.commentRepo.Upsert(comment); err != nil {
			return synced, fmt.Errorf("failed to store comment %d: %w", comment.ID, err)
		}
		synced++
		processed++
		s.publish(opID, kind, processingPercent(processed, total), "Conversation comment")
	}

	for _, ghComment := range reviewComments {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if ghComment.User != nil {
			if err := s.userRepo.Upsert(githubclient.MapUser(ghComment.User)); err != nil {
				logger.WithError(err).Warnf("Failed to store commenter for comment %d", ghComment.GetID())
			}
		}
		comment := githubclient.MapReviewComment(ghComment, pullRequestID)
		if err := s.commentRepo.Upsert(comment); err != nil {
			return synced, fmt.Errorf("failed to store comment %d: %w", comment.ID, err)
		}
		synced++
		processed++
		s.publish(opID, kind, processingPercent(processed, total), "Review comment")
	}

	if err := s.cacheService.Remove(fmt.Sprintf("comments_list_%d", pullRequestID)); err != nil {
		logger.WithError(err).Warnf("Failed to invalidate comment cache for pull request %d", pullRequestID)
	}

	s.publish(opID, kind, 100, fmt.Sprintf("Synced %d items", synced))
	return synced, nil
}

// processingPercent maps item progress onto the 25-100 range; the first
// quarter of the bar belongs to the fetch.
func processingPercent(processed, total int) int {
	if total == 0 {
		return 100
	}
	return 25 + 75*processed/total
}
