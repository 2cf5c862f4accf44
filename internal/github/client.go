package github

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
	"golang.org/x/sync/semaphore"
)

// Client wraps the GitHub API client. Every outbound call acquires a slot on
// a weighted semaphore so concurrent requests stay under the API rate limit;
// callers block until a slot frees. The underlying client is swapped on
// sign-in and sign-out, possibly while calls are in flight, so access to it
// goes through api().
type Client struct {
	mu  sync.RWMutex
	gh  *github.Client
	sem *semaphore.Weighted
}

// NewClient creates a client without credentials. Authenticated calls fail
// until SetToken is used.
func NewClient(maxConcurrent int) *Client {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Client{
		gh:  github.NewClient(nil),
		sem: semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// SetToken swaps the underlying client for one authenticated with token.
// An empty token reverts to an unauthenticated client. Calls already in
// flight finish on the client they started with.
func (c *Client) SetToken(token string) {
	gh := github.NewClient(nil)
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		gh = github.NewClient(oauth2.NewClient(context.Background(), ts))
	}

	c.mu.Lock()
	gh.BaseURL = c.gh.BaseURL
	c.gh = gh
	c.mu.Unlock()
}

func (c *Client) api() *github.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gh
}

func (c *Client) acquire(ctx context.Context) error {
	return c.sem.Acquire(ctx, 1)
}

func (c *Client) release() {
	c.sem.Release(1)
}

// isNotFound reports whether err is a GitHub 404
func isNotFound(err error) bool {
	if resp, ok := err.(*github.ErrorResponse); ok {
		return resp.Response != nil && resp.Response.StatusCode == http.StatusNotFound
	}
	return false
}

// ListUserRepositories fetches every repository of the authenticated user,
// one page at a time.
func (c *Client) ListUserRepositories(ctx context.Context, pageSize int) ([]*github.Repository, error) {
	var all []*github.Repository
	opts := &github.RepositoryListOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: pageSize},
	}

	for {
		if err := c.acquire(ctx); err != nil {
			return nil, err
		}
		repos, resp, err := c.api().Repositories.List(ctx, "", opts)
		c.release()
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories: %w", err)
		}
		all = append(all, repos...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// ListPullRequests fetches pull requests of owner/repo in the given state
// ("open", "closed" or "all").
func (c *Client) ListPullRequests(ctx context.Context, owner, repo, state string, pageSize int) ([]*github.PullRequest, error) {
	var all []*github.PullRequest
	opts := &github.PullRequestListOptions{
		State:       state,
		ListOptions: github.ListOptions{PerPage: pageSize},
	}

	for {
		if err := c.acquire(ctx); err != nil {
			return nil, err
		}
		prs, resp, err := c.api().PullRequests.List(ctx, owner, repo, opts)
		c.release()
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests for %s/%s: %w", owner, repo, err)
		}
		all = append(all, prs...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// GetPullRequest fetches one pull request with its diff statistics, which the
// list endpoint omits. Not-found returns nil without error.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	pr, _, err := c.api().PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pull request %s/%s#%d: %w", owner, repo, number, err)
	}
	return pr, nil
}

// GetRepository fetches one repository. Not-found returns nil without error.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	r, _, err := c.api().Repositories.Get(ctx, owner, repo)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get repository %s/%s: %w", owner, repo, err)
	}
	return r, nil
}

// ListIssueComments fetches the conversation comments of a pull request
func (c *Client) ListIssueComments(ctx context.Context, owner, repo string, number, pageSize int) ([]*github.IssueComment, error) {
	var all []*github.IssueComment
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: pageSize},
	}

	for {
		if err := c.acquire(ctx); err != nil {
			return nil, err
		}
		comments, resp, err := c.api().Issues.ListComments(ctx, owner, repo, number, opts)
		c.release()
		if err != nil {
			return nil, fmt.Errorf("failed to list issue comments for %s/%s#%d: %w", owner, repo, number, err)
		}
		all = append(all, comments...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// ListReviewComments fetches the diff-anchored review comments of a pull request
func (c *Client) ListReviewComments(ctx context.Context, owner, repo string, number, pageSize int) ([]*github.PullRequestComment, error) {
	var all []*github.PullRequestComment
	opts := &github.PullRequestListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: pageSize},
	}

	for {
		if err := c.acquire(ctx); err != nil {
			return nil, err
		}
		comments, resp, err := c.api().PullRequests.ListComments(ctx, owner, repo, number, opts)
		c.release()
		if err != nil {
			return nil, fmt.Errorf("failed to list review comments for %s/%s#%d: %w", owner, repo, number, err)
		}
		all = append(all, comments...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// ListReviews fetches the reviews of a pull request
func (c *Client) ListReviews(ctx context.Context, owner, repo string, number, pageSize int) ([]*github.PullRequestReview, error) {
	var all []*github.PullRequestReview
	opts := &github.ListOptions{PerPage: pageSize}

	for {
		if err := c.acquire(ctx); err != nil {
			return nil, err
		}
		reviews, resp, err := c.api().PullRequests.ListReviews(ctx, owner, repo, number, opts)
		c.release()
		if err != nil {
			return nil, fmt.Errorf("failed to list reviews for %s/%s#%d: %w", owner, repo, number, err)
		}
		all = append(all, reviews...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// GetCurrentUser fetches the authenticated user's profile
func (c *Client) GetCurrentUser(ctx context.Context) (*github.User, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	user, _, err := c.api().Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return user, nil
}

// GetUser fetches a user by login. Not-found returns nil without error.
func (c *Client) GetUser(ctx context.Context, login string) (*github.User, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	user, _, err := c.api().Users.Get(ctx, login)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %s: %w", login, err)
	}
	return user, nil
}

// SearchRepositories searches repositories by free-text query
func (c *Client) SearchRepositories(ctx context.Context, query string, pageSize int) ([]*github.Repository, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	result, _, err := c.api().Search.Repositories(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: pageSize},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search repositories: %w", err)
	}
	return result.Repositories, nil
}
