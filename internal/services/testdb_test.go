package services

import (
	"database/sql"
	"os"
	"testing"

	"github.com/alimgiray/reviewdesk/internal/repositories"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// newTestDB opens an in-memory database with the real schema applied. The
// pool is pinned to one connection: a second connection would get its own
// empty in-memory database.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	schema, err := os.ReadFile("../../migrations/001_init.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return db
}

// testStack bundles the repositories and base services most service tests need
type testStack struct {
	db           *sql.DB
	userRepo     *repositories.UserRepository
	repoRepo     *repositories.RepositoryRepository
	prRepo       *repositories.PullRequestRepository
	reviewRepo   *repositories.ReviewRepository
	commentRepo  *repositories.CommentRepository
	cacheService *CacheService
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	db := newTestDB(t)
	return &testStack{
		db:           db,
		userRepo:     repositories.NewUserRepository(db),
		repoRepo:     repositories.NewRepositoryRepository(db),
		prRepo:       repositories.NewPullRequestRepository(db),
		reviewRepo:   repositories.NewReviewRepository(db),
		commentRepo:  repositories.NewCommentRepository(db),
		cacheService: NewCacheService(repositories.NewCacheRepository(db)),
	}
}

// authenticatedService returns an auth service already holding a token, so
// sync tests can run without driving the device flow.
func authenticatedService(token string) *AuthService {
	return &AuthService{token: token}
}
