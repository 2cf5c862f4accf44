package services

import (
	"fmt"

	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/alimgiray/reviewdesk/internal/repositories"
)

// ReviewService reads reviews from the local store. Like comments, the API
// path keyed by internal pull request id is not maintained, and creating
// reviews through the API is unsupported.
type ReviewService struct {
	reviewRepo *repositories.ReviewRepository
}

func NewReviewService(reviewRepo *repositories.ReviewRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo}
}

func (s *ReviewService) GetReviewByID(id int64) (*models.Review, error) {
	return s.reviewRepo.GetByID(id)
}

func (s *ReviewService) GetReviewsByPullRequestID(pullRequestID int64) ([]*models.Review, error) {
	return s.reviewRepo.GetByPullRequestID(pullRequestID)
}

func (s *ReviewService) UpsertReview(review *models.Review) error {
	return s.reviewRepo.Upsert(review)
}

// FetchReviewsFromAPI would pull reviews for an internal pull request id
// straight from GitHub; the required (owner, repository, number) mapping is
// not maintained here.
func (s *ReviewService) FetchReviewsFromAPI(pullRequestID int64) ([]*models.Review, error) {
	return nil, fmt.Errorf("fetching reviews by pull request id %d: %w", pullRequestID, ErrNotImplemented)
}

// CreateReview is not supported
func (s *ReviewService) CreateReview(review *models.Review) error {
	return fmt.Errorf("creating reviews: %w", ErrNotImplemented)
}
