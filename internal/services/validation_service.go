package services

import (
	"github.com/alimgiray/reviewdesk/internal/models"
)

// ValidateComments checks a comment set for structural problems. An empty
// body or an unset creation timestamp is an error; a missing author is only
// a warning since GitHub reports deleted accounts that way.
func ValidateComments(comments []*models.Comment) *models.ValidationResult {
	result := &models.ValidationResult{}

	for _, comment := range comments {
		if comment.Body == "" {
			result.AddError("comment %d: body is empty", comment.ID)
		}
		if comment.GithubCreatedAt == nil || comment.GithubCreatedAt.IsZero() {
			result.AddError("comment %d: created timestamp is unset", comment.ID)
		}
		if comment.AuthorLogin == nil || *comment.AuthorLogin == "" {
			result.AddWarning("comment %d: author is missing", comment.ID)
		}
		if comment.Type == models.CommentTypeReview && comment.FilePath == nil {
			result.AddWarning("comment %d: review comment without file path", comment.ID)
		}
	}

	return result
}
