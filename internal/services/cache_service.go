package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/alimgiray/reviewdesk/internal/repositories"
	"github.com/alimgiray/reviewdesk/pkg/logger"
)

// NoExpiration stores an entry without an expiry timestamp
const NoExpiration time.Duration = -1

// CacheService stores JSON-serialized values in the cache table. Values are
// opaque text blobs; the caller supplies the type at read time. Read failures
// degrade to a miss (logged, not returned) so read paths stay non-fatal;
// write failures propagate.
type CacheService struct {
	cacheRepo *repositories.CacheRepository
}

func NewCacheService(cacheRepo *repositories.CacheRepository) *CacheService {
	return &CacheService{cacheRepo: cacheRepo}
}

// GetJSON reads the value under key into out. Returns false on a miss,
// including expired entries and any read or deserialization failure.
func (s *CacheService) GetJSON(key string, out interface{}) bool {
	entry, err := s.cacheRepo.Get(key)
	if err != nil {
		logger.WithError(err).Warnf("Cache read failed for key %s, treating as miss", key)
		return false
	}
	if entry == nil {
		return false
	}

	if err := json.Unmarshal([]byte(entry.Value), out); err != nil {
		logger.WithError(err).Warnf("Cache entry %s could not be deserialized, treating as miss", key)
		return false
	}
	return true
}

// SetJSON serializes value and upserts it under key. A positive ttl expires
// the entry after that duration; ttl of zero stores an already-expired entry;
// NoExpiration stores it without expiry.
func (s *CacheService) SetJSON(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize cache value for %s: %w", key, err)
	}

	var expiresAt *time.Time
	if ttl >= 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}

	if err := s.cacheRepo.Set(key, string(data), expiresAt); err != nil {
		return fmt.Errorf("failed to store cache entry %s: %w", key, err)
	}
	return nil
}

// GetTime reads a timestamp stored under key, returning the zero time on a miss
func (s *CacheService) GetTime(key string) time.Time {
	var t time.Time
	if !s.GetJSON(key, &t) {
		return time.Time{}
	}
	return t
}

// SetTime stores a timestamp under key without expiry
func (s *CacheService) SetTime(key string, t time.Time) error {
	return s.SetJSON(key, t, NoExpiration)
}

func (s *CacheService) Remove(key string) error {
	return s.cacheRepo.Remove(key)
}

func (s *CacheService) RemoveByPattern(pattern string) (int64, error) {
	return s.cacheRepo.RemoveByPattern(pattern)
}

func (s *CacheService) Clear() error {
	return s.cacheRepo.Clear()
}

func (s *CacheService) Exists(key string) (bool, error) {
	return s.cacheRepo.Exists(key)
}

func (s *CacheService) Statistics() (*models.CacheStatistics, error) {
	return s.cacheRepo.Statistics()
}
