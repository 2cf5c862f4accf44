package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	githubclient "github.com/alimgiray/reviewdesk/internal/github"
	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/alimgiray/reviewdesk/internal/repositories"
	"github.com/alimgiray/reviewdesk/pkg/logger"
)

const (
	cacheKeyAuthToken = "auth_token"
	cacheKeyAuthUser  = "auth_user"

	authTokenTTL = 30 * 24 * time.Hour
	authUserTTL  = 24 * time.Hour
)

// deviceAuthorizer is the slice of the device flow the service needs,
// narrowed so tests can substitute a fake provider.
type deviceAuthorizer interface {
	RequestCode(ctx context.Context) (*githubclient.DeviceAuthorization, error)
	PollToken(ctx context.Context, deviceCode string) (string, error)
}

// AuthService drives GitHub's device flow and keeps the session alive across
// restarts. The access token only reaches the cache table sealed by
// TokenCrypto.
type AuthService struct {
	deviceFlow   deviceAuthorizer
	client       *githubclient.Client
	cacheService *CacheService
	userRepo     *repositories.UserRepository
	crypto       *TokenCrypto

	mu            sync.RWMutex
	token         string
	currentUser   *models.User
	authListeners []func(authenticated bool)
}

func NewAuthService(
	deviceFlow deviceAuthorizer,
	client *githubclient.Client,
	cacheService *CacheService,
	userRepo *repositories.UserRepository,
	crypto *TokenCrypto,
) *AuthService {
	return &AuthService{
		deviceFlow:   deviceFlow,
		client:       client,
		cacheService: cacheService,
		userRepo:     userRepo,
		crypto:       crypto,
	}
}

// OnAuthenticationChanged registers a callback fired after sign-in and sign-out
func (s *AuthService) OnAuthenticationChanged(fn func(authenticated bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authListeners = append(s.authListeners, fn)
}

func (s *AuthService) notifyAuthChanged(authenticated bool) {
	s.mu.RLock()
	listeners := make([]func(bool), len(s.authListeners))
	copy(listeners, s.authListeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(authenticated)
	}
}

// StartAuthentication requests a device code pair and verification URL
func (s *AuthService) StartAuthentication(ctx context.Context) (*githubclient.DeviceAuthorization, error) {
	auth, err := s.deviceFlow.RequestCode(ctx)
	if err != nil {
		return nil, err
	}
	logger.Infof("Device flow started, user code %s", auth.UserCode)
	return auth, nil
}

// CompleteAuthentication attempts one exchange of the device code for a
// token. A pending authorization returns (false, nil): the caller re-polls
// after the flow's interval. On success the token is sealed into the cache
// and the current user's profile is fetched and cached.
func (s *AuthService) CompleteAuthentication(ctx context.Context, deviceCode string) (bool, error) {
	token, err := s.deviceFlow.PollToken(ctx, deviceCode)
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}

	if err := s.adoptToken(ctx, token, true); err != nil {
		return false, err
	}

	logger.Infof("Authenticated as %s", s.CurrentUser().Login)
	return true, nil
}

// adoptToken activates the token, optionally persists it, fetches the user
// profile and fires the authentication-changed callbacks.
func (s *AuthService) adoptToken(ctx context.Context, token string, persist bool) error {
	s.client.SetToken(token)

	ghUser, err := s.client.GetCurrentUser(ctx)
	if err != nil {
		s.client.SetToken("")
		return fmt.Errorf("token validation failed: %w", err)
	}

	user := githubclient.MapUser(ghUser)
	if err := s.userRepo.Upsert(user); err != nil {
		logger.WithError(err).Warnf("Failed to store user profile for %s", user.Login)
	}

	if persist {
		sealed, err := s.crypto.Encrypt(token)
		if err != nil {
			return fmt.Errorf("failed to seal token: %w", err)
		}
		if err := s.cacheService.SetJSON(cacheKeyAuthToken, sealed, authTokenTTL); err != nil {
			return err
		}
	}
	if err := s.cacheService.SetJSON(cacheKeyAuthUser, user, authUserTTL); err != nil {
		logger.WithError(err).Warn("Failed to cache user profile")
	}

	s.mu.Lock()
	s.token = token
	s.currentUser = user
	s.mu.Unlock()

	s.notifyAuthChanged(true)
	return nil
}

// LoadAuthentication restores a persisted session at startup. A missing,
// undecryptable or invalid token leaves the service unauthenticated without
// an error.
func (s *AuthService) LoadAuthentication(ctx context.Context) error {
	var sealed string
	if !s.cacheService.GetJSON(cacheKeyAuthToken, &sealed) {
		return nil
	}

	token, err := s.crypto.Decrypt(sealed)
	if err != nil {
		logger.WithError(err).Warn("Persisted token could not be decrypted, discarding")
		s.discardPersistedSession()
		return nil
	}

	if err := s.adoptToken(ctx, token, false); err != nil {
		logger.WithError(err).Warn("Persisted token is no longer valid, discarding")
		s.discardPersistedSession()
		return nil
	}

	logger.Infof("Session restored for %s", s.CurrentUser().Login)
	return nil
}

func (s *AuthService) discardPersistedSession() {
	if err := s.cacheService.Remove(cacheKeyAuthToken); err != nil {
		logger.WithError(err).Warn("Failed to remove persisted token")
	}
	if err := s.cacheService.Remove(cacheKeyAuthUser); err != nil {
		logger.WithError(err).Warn("Failed to remove cached user profile")
	}
}

// SignOut drops the session and persisted credentials
func (s *AuthService) SignOut() {
	s.discardPersistedSession()
	s.client.SetToken("")

	s.mu.Lock()
	s.token = ""
	s.currentUser = nil
	s.mu.Unlock()

	s.notifyAuthChanged(false)
	logger.Infof("Signed out")
}

// IsAuthenticated reports whether a validated token is active
func (s *AuthService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// CurrentUser returns the authenticated user's profile, or nil
func (s *AuthService) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentUser
}
