package models

import (
	"time"
)

// PullRequestState is a tri-state: GitHub reports open/closed plus a merged
// flag, which collapses here into a single value.
type PullRequestState string

const (
	PullRequestOpen   PullRequestState = "open"
	PullRequestClosed PullRequestState = "closed"
	PullRequestMerged PullRequestState = "merged"
)

// PullRequest represents a GitHub pull request. Numbers are unique within a
// repository; deleting the repository removes its pull requests.
type PullRequest struct {
	ID              int64            `json:"id"`
	RepositoryID    int64            `json:"repositoryId"`
	Number          int              `json:"number"`
	Title           string           `json:"title"`
	Body            *string          `json:"body"`
	State           PullRequestState `json:"state"`
	AuthorLogin     *string          `json:"authorLogin"`
	BaseBranch      *string          `json:"baseBranch"`
	HeadBranch      *string          `json:"headBranch"`
	Commits         int              `json:"commits"`
	Additions       int              `json:"additions"`
	Deletions       int              `json:"deletions"`
	ChangedFiles    int              `json:"changedFiles"`
	HTMLURL         *string          `json:"htmlUrl"`
	MergedByLogin   *string          `json:"mergedByLogin"`
	GithubCreatedAt *time.Time       `json:"githubCreatedAt"`
	GithubUpdatedAt *time.Time       `json:"githubUpdatedAt"`
	ClosedAt        *time.Time       `json:"closedAt"`
	MergedAt        *time.Time       `json:"mergedAt"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}
