package services

import (
	"context"
	"fmt"

	githubclient "github.com/alimgiray/reviewdesk/internal/github"
	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/alimgiray/reviewdesk/internal/repositories"
	"github.com/alimgiray/reviewdesk/pkg/logger"
)

type UserService struct {
	userRepo     *repositories.UserRepository
	client       *githubclient.Client
	cacheService *CacheService
	authService  *AuthService
}

func NewUserService(
	userRepo *repositories.UserRepository,
	client *githubclient.Client,
	cacheService *CacheService,
	authService *AuthService,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		client:       client,
		cacheService: cacheService,
		authService:  authService,
	}
}

// GetUserByLogin returns a user, falling back to the API when not stored
// locally. Not-found maps to nil.
func (s *UserService) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	key := "user_" + login

	var cached models.User
	if s.cacheService.GetJSON(key, &cached) {
		return &cached, nil
	}

	user, err := s.userRepo.GetByLogin(login)
	if err != nil {
		return nil, err
	}
	if user == nil && s.authService.IsAuthenticated() {
		ghUser, err := s.client.GetUser(ctx, login)
		if err != nil {
			return nil, err
		}
		if ghUser == nil {
			return nil, nil
		}
		user = githubclient.MapUser(ghUser)
		if err := s.userRepo.Upsert(user); err != nil {
			return nil, fmt.Errorf("failed to store user %s: %w", login, err)
		}
	}
	if user == nil {
		return nil, nil
	}

	if err := s.cacheService.SetJSON(key, user, repositoryTTL); err != nil {
		logger.WithError(err).Warnf("Failed to cache user %s", login)
	}
	return user, nil
}

func (s *UserService) GetUserByID(id int64) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

func (s *UserService) UpsertUser(user *models.User) error {
	return s.userRepo.Upsert(user)
}
