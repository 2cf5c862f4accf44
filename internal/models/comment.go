package models

import (
	"time"
)

type CommentType string

const (
	CommentTypeIssue  CommentType = "issue"
	CommentTypeReview CommentType = "review"
	CommentTypeCommit CommentType = "commit"
)

// Comment represents a comment on a pull request: an issue-style conversation
// comment, a review comment anchored to a diff position, or a commit comment.
// ParentCommentID links threaded replies; a reply chain must terminate at a
// top-level comment (no cycles).
type Comment struct {
	ID              int64       `json:"id"`
	PullRequestID   int64       `json:"pullRequestId"`
	ReviewID        *int64      `json:"reviewId"`
	ParentCommentID *int64      `json:"parentCommentId"`
	Type            CommentType `json:"type"`
	Body            string      `json:"body"`
	AuthorLogin     *string     `json:"authorLogin"`
	FilePath        *string     `json:"filePath"`
	Line            *int        `json:"line"`
	DiffHunk        *string     `json:"diffHunk"`
	Side            *string     `json:"side"`
	HTMLURL         *string     `json:"htmlUrl"`
	GithubCreatedAt *time.Time  `json:"githubCreatedAt"`
	GithubUpdatedAt *time.Time  `json:"githubUpdatedAt"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}
