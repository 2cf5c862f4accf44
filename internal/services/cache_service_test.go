package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheServiceJSONRoundTrip(t *testing.T) {
	st := newTestStack(t)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, st.cacheService.SetJSON("key", payload{Name: "alpha", Count: 3}, time.Minute))

	var out payload
	require.True(t, st.cacheService.GetJSON("key", &out))
	assert.Equal(t, payload{Name: "alpha", Count: 3}, out)
}

func TestCacheServiceMissLeavesValueUntouched(t *testing.T) {
	st := newTestStack(t)

	out := "unchanged"
	assert.False(t, st.cacheService.GetJSON("absent", &out))
	assert.Equal(t, "unchanged", out)
}

func TestCacheServiceZeroTTLIsImmediateMiss(t *testing.T) {
	st := newTestStack(t)

	require.NoError(t, st.cacheService.SetJSON("key", "value", 0))
	var out string
	assert.False(t, st.cacheService.GetJSON("key", &out))
}

func TestCacheServiceNoExpirationSurvives(t *testing.T) {
	st := newTestStack(t)

	require.NoError(t, st.cacheService.SetJSON("key", "value", NoExpiration))
	var out string
	require.True(t, st.cacheService.GetJSON("key", &out))
	assert.Equal(t, "value", out)
}

func TestCacheServiceTimeRoundTrip(t *testing.T) {
	st := newTestStack(t)

	assert.True(t, st.cacheService.GetTime("last_sync_repositories").IsZero())

	stamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.cacheService.SetTime("last_sync_repositories", stamp))
	assert.True(t, stamp.Equal(st.cacheService.GetTime("last_sync_repositories")))
}

func TestCacheServiceCorruptEntryIsMiss(t *testing.T) {
	st := newTestStack(t)

	_, err := st.db.Exec(`INSERT INTO cache_entries (key, value) VALUES ('bad', 'not json {')`)
	require.NoError(t, err)

	var out map[string]string
	assert.False(t, st.cacheService.GetJSON("bad", &out))
}
