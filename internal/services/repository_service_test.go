package services

import (
	"context"
	"testing"

	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRepositoryService wires the service without a GitHub client; the tests
// stay on the cache and local-table paths, so the API is never reached.
func newRepositoryService(t *testing.T, st *testStack, authenticated bool) *RepositoryService {
	t.Helper()
	auth := &AuthService{}
	if authenticated {
		auth.token = "test-token"
	}
	return NewRepositoryService(st.repoRepo, nil, st.cacheService, auth, 100)
}

func TestGetRepositoriesPrefersCache(t *testing.T) {
	st := newTestStack(t)
	svc := newRepositoryService(t, st, false)

	require.NoError(t, st.repoRepo.Upsert(&models.Repository{ID: 1, Name: "stale", FullName: "octo/stale"}))
	require.NoError(t, st.cacheService.SetJSON("repositories_all",
		[]*models.Repository{{ID: 2, Name: "cached", FullName: "octo/cached"}}, repositoryTTL))

	repos, err := svc.GetRepositories(context.Background())
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "octo/cached", repos[0].FullName)
}

func TestGetRepositoriesFallsBackToLocal(t *testing.T) {
	st := newTestStack(t)
	svc := newRepositoryService(t, st, false)

	require.NoError(t, st.repoRepo.Upsert(&models.Repository{ID: 1, Name: "alpha", FullName: "octo/alpha"}))

	repos, err := svc.GetRepositories(context.Background())
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "octo/alpha", repos[0].FullName)
}

func TestGetRepositoriesEmptyWhenSignedOut(t *testing.T) {
	st := newTestStack(t)
	svc := newRepositoryService(t, st, false)

	repos, err := svc.GetRepositories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, repos, "no token means no API fallback")
}

func TestGetRepositoryByIDWritesBackToCache(t *testing.T) {
	st := newTestStack(t)
	svc := newRepositoryService(t, st, false)

	require.NoError(t, st.repoRepo.Upsert(&models.Repository{ID: 1, Name: "alpha", FullName: "octo/alpha"}))

	repo, err := svc.GetRepositoryByID(1)
	require.NoError(t, err)
	require.NotNil(t, repo)

	var cached models.Repository
	require.True(t, st.cacheService.GetJSON("repository_1", &cached))
	assert.Equal(t, "octo/alpha", cached.FullName)
}

func TestGetRepositoryByIDUnknownIsNil(t *testing.T) {
	st := newTestStack(t)
	svc := newRepositoryService(t, st, false)

	repo, err := svc.GetRepositoryByID(404)
	require.NoError(t, err)
	assert.Nil(t, repo)
}

func TestGetRepositoryByFullNameLocalHit(t *testing.T) {
	st := newTestStack(t)
	svc := newRepositoryService(t, st, false)

	require.NoError(t, st.repoRepo.Upsert(&models.Repository{ID: 1, Name: "alpha", FullName: "octo/alpha"}))

	repo, err := svc.GetRepositoryByFullName(context.Background(), "octo", "alpha")
	require.NoError(t, err)
	require.NotNil(t, repo)
	assert.Equal(t, int64(1), repo.ID)

	var cached models.Repository
	assert.True(t, st.cacheService.GetJSON("repository_name_octo/alpha", &cached))
}

func TestGetRepositoryByFullNameUnknownIsNil(t *testing.T) {
	st := newTestStack(t)
	svc := newRepositoryService(t, st, false)

	// Signed out: no API fallback, unknown names are just nil
	repo, err := svc.GetRepositoryByFullName(context.Background(), "octo", "missing")
	require.NoError(t, err)
	assert.Nil(t, repo)
}

func TestSearchRepositoriesLocalMatch(t *testing.T) {
	st := newTestStack(t)
	svc := newRepositoryService(t, st, false)

	require.NoError(t, st.repoRepo.Upsert(&models.Repository{ID: 1, Name: "cache-layer", FullName: "octo/cache-layer"}))
	require.NoError(t, st.repoRepo.Upsert(&models.Repository{ID: 2, Name: "unrelated", FullName: "octo/unrelated"}))

	repos, err := svc.SearchRepositories(context.Background(), "cache")
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "octo/cache-layer", repos[0].FullName)

	// The result set lands in the cache under the query key
	var cached []*models.Repository
	assert.True(t, st.cacheService.GetJSON("repository_search_cache", &cached))
}

func TestDeleteRepositoryInvalidatesCache(t *testing.T) {
	st := newTestStack(t)
	svc := newRepositoryService(t, st, false)

	require.NoError(t, st.repoRepo.Upsert(&models.Repository{ID: 1, Name: "alpha", FullName: "octo/alpha"}))
	_, err := svc.GetRepositoryByID(1)
	require.NoError(t, err)
	require.NoError(t, st.cacheService.SetJSON("repositories_all", []*models.Repository{{ID: 1}}, repositoryTTL))

	require.NoError(t, svc.DeleteRepository(1))

	var out models.Repository
	assert.False(t, st.cacheService.GetJSON("repository_1", &out))
	var list []*models.Repository
	assert.False(t, st.cacheService.GetJSON("repositories_all", &list))

	repo, err := st.repoRepo.GetByID(1)
	require.NoError(t, err)
	assert.Nil(t, repo)
}
