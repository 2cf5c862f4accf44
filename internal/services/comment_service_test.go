package services

import (
	"testing"
	"time"

	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/alimgiray/reviewdesk/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommentFixture(t *testing.T) (*CommentService, *testStack) {
	t.Helper()
	st := newTestStack(t)
	require.NoError(t, st.repoRepo.Upsert(&models.Repository{ID: 1, Name: "alpha", FullName: "octo/alpha"}))
	require.NoError(t, st.prRepo.Upsert(&models.PullRequest{
		ID: 10, RepositoryID: 1, Number: 1, Title: "First", State: models.PullRequestOpen,
	}))
	return NewCommentService(st.commentRepo, st.cacheService), st
}

func storedComment(id int64, body string) *models.Comment {
	created := time.Now()
	return &models.Comment{
		ID: id, PullRequestID: 10, Type: models.CommentTypeIssue,
		Body: body, GithubCreatedAt: &created,
	}
}

func TestGetCommentsByPullRequestCachesList(t *testing.T) {
	svc, st := newCommentFixture(t)

	require.NoError(t, svc.UpsertComment(storedComment(100, "first")))
	require.NoError(t, svc.UpsertComment(storedComment(101, "second")))

	comments, err := svc.GetCommentsByPullRequestID(10)
	require.NoError(t, err)
	require.Len(t, comments, 2)

	var cached []*models.Comment
	assert.True(t, st.cacheService.GetJSON("comments_list_10", &cached))
	assert.Len(t, cached, 2)
}

func TestGetThreadReturnsRepliesOnly(t *testing.T) {
	svc, _ := newCommentFixture(t)

	require.NoError(t, svc.UpsertComment(storedComment(100, "root")))
	reply := storedComment(101, "reply")
	parent := int64(100)
	reply.ParentCommentID = &parent
	require.NoError(t, svc.UpsertComment(reply))
	require.NoError(t, svc.UpsertComment(storedComment(102, "unrelated")))

	thread, err := svc.GetThread(100)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, int64(101), thread[0].ID)
}

func TestFetchCommentsFromAPIIsNotImplemented(t *testing.T) {
	svc, _ := newCommentFixture(t)

	_, err := svc.FetchCommentsFromAPI(10)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestDuplicateCommentIsNotImplemented(t *testing.T) {
	svc, _ := newCommentFixture(t)

	_, err := svc.DuplicateComment(100)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func configAI(enabled bool) config.AIConfig {
	return config.AIConfig{Enabled: enabled, Model: "mock"}
}

func TestAIServiceDisabledByDefault(t *testing.T) {
	svc := NewAIService(configAI(false))
	assert.False(t, svc.Enabled())

	_, err := svc.SuggestReview(&models.PullRequest{Title: "Add cache"})
	assert.ErrorIs(t, err, ErrAIDisabled)
	_, err = svc.SummarizeComments(nil)
	assert.ErrorIs(t, err, ErrAIDisabled)
}

func TestAIServiceCannedAnswers(t *testing.T) {
	svc := NewAIService(configAI(true))
	require.True(t, svc.Enabled())

	suggestion, err := svc.SuggestReview(&models.PullRequest{Title: "Add cache"})
	require.NoError(t, err)
	assert.NotEmpty(t, suggestion)

	summary, err := svc.SummarizeComments([]*models.Comment{storedComment(1, "nit")})
	require.NoError(t, err)
	assert.NotEmpty(t, summary)
}
