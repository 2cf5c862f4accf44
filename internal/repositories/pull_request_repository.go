package repositories

import (
	"database/sql"

	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/alimgiray/reviewdesk/pkg/database"
)

type PullRequestRepository struct {
	db *sql.DB
}

func NewPullRequestRepository(db *sql.DB) *PullRequestRepository {
	return &PullRequestRepository{db: db}
}

const pullRequestColumns = `id, repository_id, number, title, body, state, author_login,
	base_branch, head_branch, commits, additions, deletions, changed_files,
	html_url, merged_by_login, github_created_at, github_updated_at,
	closed_at, merged_at, created_at, updated_at`

func (r *PullRequestRepository) scanPullRequest(row *sql.Row) (*models.PullRequest, error) {
	var pr models.PullRequest
	err := row.Scan(
		&pr.ID, &pr.RepositoryID, &pr.Number, &pr.Title, &pr.Body, &pr.State,
		&pr.AuthorLogin, &pr.BaseBranch, &pr.HeadBranch, &pr.Commits, &pr.Additions,
		&pr.Deletions, &pr.ChangedFiles, &pr.HTMLURL, &pr.MergedByLogin,
		&pr.GithubCreatedAt, &pr.GithubUpdatedAt, &pr.ClosedAt, &pr.MergedAt,
		&pr.CreatedAt, &pr.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

func (r *PullRequestRepository) GetByID(id int64) (*models.PullRequest, error) {
	query := `SELECT ` + pullRequestColumns + ` FROM pull_requests WHERE id = ?`
	return r.scanPullRequest(r.db.QueryRow(query, id))
}

func (r *PullRequestRepository) GetByRepositoryAndNumber(repositoryID int64, number int) (*models.PullRequest, error) {
	query := `SELECT ` + pullRequestColumns + ` FROM pull_requests WHERE repository_id = ? AND number = ?`
	return r.scanPullRequest(r.db.QueryRow(query, repositoryID, number))
}

func (r *PullRequestRepository) GetByRepositoryID(repositoryID int64) ([]*models.PullRequest, error) {
	query := `SELECT ` + pullRequestColumns + ` FROM pull_requests WHERE repository_id = ? ORDER BY number DESC`
	return r.queryPullRequests(query, repositoryID)
}

// Search matches the query as a substring of title or body within one repository
func (r *PullRequestRepository) Search(repositoryID int64, q string) ([]*models.PullRequest, error) {
	query := `SELECT ` + pullRequestColumns + ` FROM pull_requests
		WHERE repository_id = ? AND (title LIKE ? OR body LIKE ?)
		ORDER BY number DESC`
	pattern := "%" + q + "%"
	return r.queryPullRequests(query, repositoryID, pattern, pattern)
}

func (r *PullRequestRepository) queryPullRequests(query string, args ...interface{}) ([]*models.PullRequest, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pullRequests []*models.PullRequest
	for rows.Next() {
		var pr models.PullRequest
		err := rows.Scan(
			&pr.ID, &pr.RepositoryID, &pr.Number, &pr.Title, &pr.Body, &pr.State,
			&pr.AuthorLogin, &pr.BaseBranch, &pr.HeadBranch, &pr.Commits, &pr.Additions,
			&pr.Deletions, &pr.ChangedFiles, &pr.HTMLURL, &pr.MergedByLogin,
			&pr.GithubCreatedAt, &pr.GithubUpdatedAt, &pr.ClosedAt, &pr.MergedAt,
			&pr.CreatedAt, &pr.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		pullRequests = append(pullRequests, &pr)
	}

	return pullRequests, rows.Err()
}

func (r *PullRequestRepository) Upsert(pr *models.PullRequest) error {
	query := `
		INSERT INTO pull_requests (
			id, repository_id, number, title, body, state, author_login,
			base_branch, head_branch, commits, additions, deletions, changed_files,
			html_url, merged_by_login, github_created_at, github_updated_at,
			closed_at, merged_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			repository_id = excluded.repository_id,
			number = excluded.number,
			title = excluded.title,
			body = excluded.body,
			state = excluded.state,
			author_login = excluded.author_login,
			base_branch = excluded.base_branch,
			head_branch = excluded.head_branch,
			commits = excluded.commits,
			additions = excluded.additions,
			deletions = excluded.deletions,
			changed_files = excluded.changed_files,
			html_url = excluded.html_url,
			merged_by_login = excluded.merged_by_login,
			github_created_at = excluded.github_created_at,
			github_updated_at = excluded.github_updated_at,
			closed_at = excluded.closed_at,
			merged_at = excluded.merged_at,
			updated_at = CURRENT_TIMESTAMP
	`

	return database.WithRetry(func() error {
		_, err := r.db.Exec(query,
			pr.ID, pr.RepositoryID, pr.Number, pr.Title, pr.Body, pr.State,
			pr.AuthorLogin, pr.BaseBranch, pr.HeadBranch, pr.Commits, pr.Additions,
			pr.Deletions, pr.ChangedFiles, pr.HTMLURL, pr.MergedByLogin,
			pr.GithubCreatedAt, pr.GithubUpdatedAt, pr.ClosedAt, pr.MergedAt,
		)
		return err
	})
}

func (r *PullRequestRepository) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM pull_requests WHERE id = ?`, id)
	return err
}
