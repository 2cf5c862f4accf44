package models

import (
	"time"
)

type ReviewState string

const (
	ReviewApproved         ReviewState = "approved"
	ReviewChangesRequested ReviewState = "changes_requested"
	ReviewCommented        ReviewState = "commented"
	ReviewPending          ReviewState = "pending"
	ReviewDismissed        ReviewState = "dismissed"
)

// Review represents a pull request review. Deleting the pull request removes
// its reviews; deleting a review nulls out the review reference on its
// comments instead of deleting them.
type Review struct {
	ID            int64       `json:"id"`
	PullRequestID int64       `json:"pullRequestId"`
	Body          *string     `json:"body"`
	State         ReviewState `json:"state"`
	AuthorLogin   *string     `json:"authorLogin"`
	SubmittedAt   *time.Time  `json:"submittedAt"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}
