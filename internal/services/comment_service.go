package services

import (
	"fmt"

	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/alimgiray/reviewdesk/internal/repositories"
	"github.com/alimgiray/reviewdesk/pkg/logger"
)

// CommentService reads comments cache-first from the local store. Fetching
// comments from the API given only the internal pull request id is not
// possible: the (owner, repository, number) triple the API needs is not
// maintained on this path, and the gap stays loud instead of passing as an
// empty success.
type CommentService struct {
	commentRepo  *repositories.CommentRepository
	cacheService *CacheService
}

func NewCommentService(commentRepo *repositories.CommentRepository, cacheService *CacheService) *CommentService {
	return &CommentService{
		commentRepo:  commentRepo,
		cacheService: cacheService,
	}
}

// GetCommentsByPullRequestID returns the locally stored comments of a pull request
func (s *CommentService) GetCommentsByPullRequestID(pullRequestID int64) ([]*models.Comment, error) {
	key := fmt.Sprintf("comments_list_%d", pullRequestID)

	var cached []*models.Comment
	if s.cacheService.GetJSON(key, &cached) {
		return cached, nil
	}

	comments, err := s.commentRepo.GetByPullRequestID(pullRequestID)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetJSON(key, comments, commentTTL); err != nil {
		logger.WithError(err).Warnf("Failed to cache comments for pull request %d", pullRequestID)
	}
	return comments, nil
}

// FetchCommentsFromAPI would pull comments for an internal pull request id
// straight from GitHub. The id-to-(owner, repository, number) mapping needed
// for that call is not maintained here.
func (s *CommentService) FetchCommentsFromAPI(pullRequestID int64) ([]*models.Comment, error) {
	return nil, fmt.Errorf("fetching comments by pull request id %d: %w", pullRequestID, ErrNotImplemented)
}

// GetCommentByID returns one comment, or nil when unknown
func (s *CommentService) GetCommentByID(id int64) (*models.Comment, error) {
	return s.commentRepo.GetByID(id)
}

// GetThread returns the direct replies to a comment
func (s *CommentService) GetThread(parentCommentID int64) ([]*models.Comment, error) {
	return s.commentRepo.GetReplies(parentCommentID)
}

// SearchComments matches q as a substring of comment bodies
func (s *CommentService) SearchComments(q string) ([]*models.Comment, error) {
	return s.commentRepo.Search(q)
}

func (s *CommentService) GetAllComments() ([]*models.Comment, error) {
	return s.commentRepo.GetAll()
}

func (s *CommentService) UpsertComment(c *models.Comment) error {
	return s.commentRepo.Upsert(c)
}

// DuplicateComment is not supported
func (s *CommentService) DuplicateComment(id int64) (*models.Comment, error) {
	return nil, fmt.Errorf("duplicating comment %d: %w", id, ErrNotImplemented)
}
