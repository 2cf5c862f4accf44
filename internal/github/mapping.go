package github

import (
	"strings"

	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/google/go-github/v57/github"
)

// Mapping functions are pure transformations from go-github DTOs to local
// domain models. Required fields always produce a value; optional fields map
// to nil when absent.

// MapRepository converts a GitHub repository to the local model
func MapRepository(r *github.Repository) *models.Repository {
	repo := &models.Repository{
		ID:         r.GetID(),
		Name:       r.GetName(),
		FullName:   r.GetFullName(),
		Private:    r.GetPrivate(),
		Stars:      r.GetStargazersCount(),
		Forks:      r.GetForksCount(),
		OpenIssues: r.GetOpenIssuesCount(),
	}

	if r.Owner != nil && r.Owner.Login != nil {
		login := r.Owner.GetLogin()
		repo.OwnerLogin = &login
	}
	if r.Description != nil {
		description := r.GetDescription()
		repo.Description = &description
	}
	if r.DefaultBranch != nil {
		branch := r.GetDefaultBranch()
		repo.DefaultBranch = &branch
	}
	if r.Language != nil {
		language := r.GetLanguage()
		repo.Language = &language
	}
	if r.CreatedAt != nil {
		repo.GithubCreatedAt = &r.CreatedAt.Time
	}
	if r.UpdatedAt != nil {
		repo.GithubUpdatedAt = &r.UpdatedAt.Time
	}
	if r.PushedAt != nil {
		repo.GithubPushedAt = &r.PushedAt.Time
	}

	return repo
}

// MapPullRequest converts a GitHub pull request to the local model. GitHub
// reports open/closed plus a merged timestamp; a closed pull request with a
// merged timestamp becomes the merged state.
func MapPullRequest(pr *github.PullRequest, repositoryID int64) *models.PullRequest {
	mapped := &models.PullRequest{
		ID:           pr.GetID(),
		RepositoryID: repositoryID,
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		State:        mapPullRequestState(pr),
		Commits:      pr.GetCommits(),
		Additions:    pr.GetAdditions(),
		Deletions:    pr.GetDeletions(),
		ChangedFiles: pr.GetChangedFiles(),
	}

	if pr.Body != nil {
		body := pr.GetBody()
		mapped.Body = &body
	}
	if pr.User != nil && pr.User.Login != nil {
		login := pr.User.GetLogin()
		mapped.AuthorLogin = &login
	}
	if pr.Base != nil && pr.Base.Ref != nil {
		ref := pr.Base.GetRef()
		mapped.BaseBranch = &ref
	}
	if pr.Head != nil && pr.Head.Ref != nil {
		ref := pr.Head.GetRef()
		mapped.HeadBranch = &ref
	}
	if pr.HTMLURL != nil {
		htmlURL := pr.GetHTMLURL()
		mapped.HTMLURL = &htmlURL
	}
	if pr.MergedBy != nil && pr.MergedBy.Login != nil {
		login := pr.MergedBy.GetLogin()
		mapped.MergedByLogin = &login
	}
	if pr.CreatedAt != nil {
		mapped.GithubCreatedAt = &pr.CreatedAt.Time
	}
	if pr.UpdatedAt != nil {
		mapped.GithubUpdatedAt = &pr.UpdatedAt.Time
	}
	if pr.ClosedAt != nil {
		mapped.ClosedAt = &pr.ClosedAt.Time
	}
	if pr.MergedAt != nil {
		mapped.MergedAt = &pr.MergedAt.Time
	}

	return mapped
}

func mapPullRequestState(pr *github.PullRequest) models.PullRequestState {
	if pr.MergedAt != nil || pr.GetMerged() {
		return models.PullRequestMerged
	}
	if pr.GetState() == "closed" {
		return models.PullRequestClosed
	}
	return models.PullRequestOpen
}

// MapIssueComment converts a conversation comment to the local model
func MapIssueComment(c *github.IssueComment, pullRequestID int64) *models.Comment {
	comment := &models.Comment{
		ID:            c.GetID(),
		PullRequestID: pullRequestID,
		Type:          models.CommentTypeIssue,
		Body:          c.GetBody(),
	}

	if c.User != nil && c.User.Login != nil {
		login := c.User.GetLogin()
		comment.AuthorLogin = &login
	}
	if c.HTMLURL != nil {
		htmlURL := c.GetHTMLURL()
		comment.HTMLURL = &htmlURL
	}
	if c.CreatedAt != nil {
		comment.GithubCreatedAt = &c.CreatedAt.Time
	}
	if c.UpdatedAt != nil {
		comment.GithubUpdatedAt = &c.UpdatedAt.Time
	}

	return comment
}

// MapReviewComment converts a diff-anchored review comment to the local model,
// carrying its diff position metadata and reply / review references.
func MapReviewComment(c *github.PullRequestComment, pullRequestID int64) *models.Comment {
	comment := &models.Comment{
		ID:            c.GetID(),
		PullRequestID: pullRequestID,
		Type:          models.CommentTypeReview,
		Body:          c.GetBody(),
	}

	if c.PullRequestReviewID != nil {
		reviewID := c.GetPullRequestReviewID()
		comment.ReviewID = &reviewID
	}
	if c.InReplyTo != nil {
		parentID := c.GetInReplyTo()
		comment.ParentCommentID = &parentID
	}
	if c.User != nil && c.User.Login != nil {
		login := c.User.GetLogin()
		comment.AuthorLogin = &login
	}
	if c.Path != nil {
		path := c.GetPath()
		comment.FilePath = &path
	}
	if c.Line != nil {
		line := c.GetLine()
		comment.Line = &line
	}
	if c.DiffHunk != nil {
		hunk := c.GetDiffHunk()
		comment.DiffHunk = &hunk
	}
	if c.Side != nil {
		side := c.GetSide()
		comment.Side = &side
	}
	if c.HTMLURL != nil {
		htmlURL := c.GetHTMLURL()
		comment.HTMLURL = &htmlURL
	}
	if c.CreatedAt != nil {
		comment.GithubCreatedAt = &c.CreatedAt.Time
	}
	if c.UpdatedAt != nil {
		comment.GithubUpdatedAt = &c.UpdatedAt.Time
	}

	return comment
}

// MapReview converts a GitHub review to the local model
func MapReview(r *github.PullRequestReview, pullRequestID int64) *models.Review {
	review := &models.Review{
		ID:            r.GetID(),
		PullRequestID: pullRequestID,
		State:         mapReviewState(r.GetState()),
	}

	if r.Body != nil {
		body := r.GetBody()
		review.Body = &body
	}
	if r.User != nil && r.User.Login != nil {
		login := r.User.GetLogin()
		review.AuthorLogin = &login
	}
	if r.SubmittedAt != nil {
		review.SubmittedAt = &r.SubmittedAt.Time
	}

	return review
}

func mapReviewState(state string) models.ReviewState {
	switch strings.ToUpper(state) {
	case "APPROVED":
		return models.ReviewApproved
	case "CHANGES_REQUESTED":
		return models.ReviewChangesRequested
	case "DISMISSED":
		return models.ReviewDismissed
	case "PENDING":
		return models.ReviewPending
	default:
		return models.ReviewCommented
	}
}

// MapUser converts a GitHub user to the local model
func MapUser(u *github.User) *models.User {
	user := &models.User{
		ID:    u.GetID(),
		Login: u.GetLogin(),
	}

	if u.Name != nil {
		name := u.GetName()
		user.Name = &name
	}
	if u.Email != nil {
		email := u.GetEmail()
		user.Email = &email
	}
	if u.AvatarURL != nil {
		avatarURL := u.GetAvatarURL()
		user.AvatarURL = &avatarURL
	}
	if u.HTMLURL != nil {
		profileURL := u.GetHTMLURL()
		user.ProfileURL = &profileURL
	}
	if u.Bio != nil {
		bio := u.GetBio()
		user.Bio = &bio
	}

	return user
}
