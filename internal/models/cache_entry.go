package models

import (
	"time"
)

// CacheEntry is a JSON blob stored under a string key with optional
// expiration. Expired entries are deleted lazily on the next read.
type CacheEntry struct {
	Key       string     `json:"key"`
	Value     string     `json:"value"`
	ExpiresAt *time.Time `json:"expiresAt"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// IsExpired reports whether the entry's expiration is in the past
func (e *CacheEntry) IsExpired(now time.Time) bool {
	return e.ExpiresAt != nil && !e.ExpiresAt.After(now)
}

// CacheStatistics summarizes the cache table contents
type CacheStatistics struct {
	TotalEntries   int `json:"totalEntries"`
	ExpiredEntries int `json:"expiredEntries"`
}
