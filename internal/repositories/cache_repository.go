package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/alimgiray/reviewdesk/pkg/database"
)

// CacheRepository persists opaque JSON blobs in the cache_entries table.
// Expiration is checked at read time only: an expired entry found during Get
// is deleted and reported as a miss. There is no background sweep.
type CacheRepository struct {
	db *sql.DB
}

func NewCacheRepository(db *sql.DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// Get returns the entry stored under key, or (nil, nil) on a miss
func (r *CacheRepository) Get(key string) (*models.CacheEntry, error) {
	query := `SELECT key, value, expires_at, created_at, updated_at FROM cache_entries WHERE key = ?`

	var entry models.CacheEntry
	err := r.db.QueryRow(query, key).Scan(
		&entry.Key, &entry.Value, &entry.ExpiresAt, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if entry.IsExpired(time.Now()) {
		if err := r.Remove(key); err != nil {
			return nil, fmt.Errorf("failed to remove expired entry %q: %w", key, err)
		}
		return nil, nil
	}

	return &entry, nil
}

// Set stores value under key, overwriting any existing entry. A nil expiresAt
// means the entry never expires.
func (r *CacheRepository) Set(key, value string, expiresAt *time.Time) error {
	query := `
		INSERT INTO cache_entries (key, value, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`

	return database.WithRetry(func() error {
		_, err := r.db.Exec(query, key, value, expiresAt)
		return err
	})
}

// Remove deletes the entry stored under key, if any
func (r *CacheRepository) Remove(key string) error {
	_, err := r.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key)
	return err
}

// RemoveByPattern deletes every entry whose key matches pattern, where `*`
// is the single supported wildcard. The pattern is translated to a SQL LIKE
// clause; no other glob syntax is honored.
func (r *CacheRepository) RemoveByPattern(pattern string) (int64, error) {
	like := strings.ReplaceAll(pattern, "*", "%")

	result, err := r.db.Exec(`DELETE FROM cache_entries WHERE key LIKE ?`, like)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Clear deletes every entry
func (r *CacheRepository) Clear() error {
	_, err := r.db.Exec(`DELETE FROM cache_entries`)
	return err
}

// Exists reports whether a live (non-expired) entry is stored under key
func (r *CacheRepository) Exists(key string) (bool, error) {
	query := `SELECT COUNT(*) FROM cache_entries WHERE key = ? AND (expires_at IS NULL OR expires_at > ?)`

	var count int
	if err := r.db.QueryRow(query, key, time.Now()).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// Statistics reports total and already-expired entry counts
func (r *CacheRepository) Statistics() (*models.CacheStatistics, error) {
	stats := &models.CacheStatistics{}

	if err := r.db.QueryRow(`SELECT COUNT(*) FROM cache_entries`).Scan(&stats.TotalEntries); err != nil {
		return nil, err
	}
	query := `SELECT COUNT(*) FROM cache_entries WHERE expires_at IS NOT NULL AND expires_at <= ?`
	if err := r.db.QueryRow(query, time.Now()).Scan(&stats.ExpiredEntries); err != nil {
		return nil, err
	}

	return stats, nil
}
