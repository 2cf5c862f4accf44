package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	repo := NewCacheRepository(newTestDB(t))

	future := time.Now().Add(time.Hour)
	require.NoError(t, repo.Set("key1", `{"value":42}`, &future))

	entry, err := repo.Get("key1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, `{"value":42}`, entry.Value)
}

func TestCacheSetOverwrites(t *testing.T) {
	repo := NewCacheRepository(newTestDB(t))

	require.NoError(t, repo.Set("key1", "first", nil))
	require.NoError(t, repo.Set("key1", "second", nil))

	entry, err := repo.Get("key1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "second", entry.Value)
}

func TestCacheExpiredEntryIsMissAndRemoved(t *testing.T) {
	repo := NewCacheRepository(newTestDB(t))

	past := time.Now().Add(-time.Minute)
	require.NoError(t, repo.Set("stale", "old", &past))

	entry, err := repo.Get("stale")
	require.NoError(t, err)
	assert.Nil(t, entry, "expired entry should read as a miss")

	// The lazy delete should have removed the row
	exists, err := repo.Exists("stale")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCacheZeroTTLIsImmediateMiss(t *testing.T) {
	repo := NewCacheRepository(newTestDB(t))

	now := time.Now()
	require.NoError(t, repo.Set("instant", "gone", &now))

	entry, err := repo.Get("instant")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestCacheMissingKeyIsMiss(t *testing.T) {
	repo := NewCacheRepository(newTestDB(t))

	entry, err := repo.Get("never-set")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestCacheRemoveByPattern(t *testing.T) {
	repo := NewCacheRepository(newTestDB(t))

	require.NoError(t, repo.Set("repository_1", "a", nil))
	require.NoError(t, repo.Set("repository_2", "b", nil))
	require.NoError(t, repo.Set("user_1", "c", nil))

	removed, err := repo.RemoveByPattern("repository_*")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	entry, err := repo.Get("user_1")
	require.NoError(t, err)
	assert.NotNil(t, entry, "entries outside the pattern must survive")
}

func TestCacheClearAndStatistics(t *testing.T) {
	repo := NewCacheRepository(newTestDB(t))

	past := time.Now().Add(-time.Minute)
	require.NoError(t, repo.Set("live", "a", nil))
	require.NoError(t, repo.Set("dead", "b", &past))

	stats, err := repo.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.ExpiredEntries)

	require.NoError(t, repo.Clear())
	stats, err = repo.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalEntries)
}
