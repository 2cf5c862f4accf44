package services

import (
	"testing"
	"time"

	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestValidateCommentsAcceptsCleanSet(t *testing.T) {
	result := ValidateComments(sampleComments())
	assert.True(t, result.IsValid())
	assert.Empty(t, result.Errors)
}

func TestValidateCommentsEmptyBodyIsError(t *testing.T) {
	created := time.Now()
	alice := "alice"
	result := ValidateComments([]*models.Comment{
		{ID: 1, Type: models.CommentTypeIssue, Body: "", AuthorLogin: &alice, GithubCreatedAt: &created},
	})

	assert.False(t, result.IsValid())
	assert.Len(t, result.Errors, 1)
}

func TestValidateCommentsUnsetTimestampIsError(t *testing.T) {
	alice := "alice"
	result := ValidateComments([]*models.Comment{
		{ID: 1, Type: models.CommentTypeIssue, Body: "fine", AuthorLogin: &alice},
	})

	assert.False(t, result.IsValid())
	assert.Len(t, result.Errors, 1)
}

func TestValidateCommentsMissingAuthorIsWarning(t *testing.T) {
	created := time.Now()
	result := ValidateComments([]*models.Comment{
		{ID: 1, Type: models.CommentTypeIssue, Body: "fine", GithubCreatedAt: &created},
	})

	assert.True(t, result.IsValid(), "missing author must not block the set")
	assert.Len(t, result.Warnings, 1)
}

func TestValidateCommentsReviewWithoutPathIsWarning(t *testing.T) {
	created := time.Now()
	alice := "alice"
	result := ValidateComments([]*models.Comment{
		{ID: 1, Type: models.CommentTypeReview, Body: "fine", AuthorLogin: &alice, GithubCreatedAt: &created},
	})

	assert.True(t, result.IsValid())
	assert.Len(t, result.Warnings, 1)
}
