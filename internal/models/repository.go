package models

import (
	"time"
)

// Repository represents a GitHub repository. Rows are overwritten wholesale on
// each sync.
type Repository struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	FullName        string     `json:"fullName"`
	OwnerLogin      *string    `json:"ownerLogin"`
	Description     *string    `json:"description"`
	Private         bool       `json:"private"`
	DefaultBranch   *string    `json:"defaultBranch"`
	Language        *string    `json:"language"`
	Stars           int        `json:"stars"`
	Forks           int        `json:"forks"`
	OpenIssues      int        `json:"openIssues"`
	GithubCreatedAt *time.Time `json:"githubCreatedAt"`
	GithubUpdatedAt *time.Time `json:"githubUpdatedAt"`
	GithubPushedAt  *time.Time `json:"githubPushedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// OwnerAndName splits the full name into its owner and repository parts.
// Returns empty strings when the full name is malformed.
func (r *Repository) OwnerAndName() (string, string) {
	for i := len(r.FullName) - 1; i >= 0; i-- {
		if r.FullName[i] == '/' {
			if i == 0 || i == len(r.FullName)-1 {
				return "", ""
			}
			return r.FullName[:i], r.FullName[i+1:]
		}
	}
	return "", ""
}
