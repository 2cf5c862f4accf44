package repositories

import (
	"database/sql"

	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/alimgiray/reviewdesk/pkg/database"
)

type RepositoryRepository struct {
	db *sql.DB
}

func NewRepositoryRepository(db *sql.DB) *RepositoryRepository {
	return &RepositoryRepository{db: db}
}

const repositoryColumns = `id, name, full_name, owner_login, description, private, default_branch,
	language, stars, forks, open_issues, github_created_at, github_updated_at,
	github_pushed_at, created_at, updated_at`

func (r *RepositoryRepository) scanRepository(row *sql.Row) (*models.Repository, error) {
	var repo models.Repository
	err := row.Scan(
		&repo.ID, &repo.Name, &repo.FullName, &repo.OwnerLogin, &repo.Description,
		&repo.Private, &repo.DefaultBranch, &repo.Language, &repo.Stars, &repo.Forks,
		&repo.OpenIssues, &repo.GithubCreatedAt, &repo.GithubUpdatedAt,
		&repo.GithubPushedAt, &repo.CreatedAt, &repo.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

func (r *RepositoryRepository) GetByID(id int64) (*models.Repository, error) {
	query := `SELECT ` + repositoryColumns + ` FROM repositories WHERE id = ?`
	return r.scanRepository(r.db.QueryRow(query, id))
}

func (r *RepositoryRepository) GetByFullName(fullName string) (*models.Repository, error) {
	query := `SELECT ` + repositoryColumns + ` FROM repositories WHERE full_name = ?`
	return r.scanRepository(r.db.QueryRow(query, fullName))
}

func (r *RepositoryRepository) GetAll() ([]*models.Repository, error) {
	query := `SELECT ` + repositoryColumns + ` FROM repositories ORDER BY full_name`
	return r.queryRepositories(query)
}

// Search matches the query as a substring of name, full name or description
func (r *RepositoryRepository) Search(q string) ([]*models.Repository, error) {
	query := `SELECT ` + repositoryColumns + ` FROM repositories
		WHERE name LIKE ? OR full_name LIKE ? OR description LIKE ?
		ORDER BY full_name`
	pattern := "%" + q + "%"
	return r.queryRepositories(query, pattern, pattern, pattern)
}

func (r *RepositoryRepository) queryRepositories(query string, args ...interface{}) ([]*models.Repository, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repositories []*models.Repository
	for rows.Next() {
		var repo models.Repository
		err := rows.Scan(
			&repo.ID, &repo.Name, &repo.FullName, &repo.OwnerLogin, &repo.Description,
			&repo.Private, &repo.DefaultBranch, &repo.Language, &repo.Stars, &repo.Forks,
			&repo.OpenIssues, &repo.GithubCreatedAt, &repo.GithubUpdatedAt,
			&repo.GithubPushedAt, &repo.CreatedAt, &repo.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		repositories = append(repositories, &repo)
	}

	return repositories, rows.Err()
}

// Upsert overwrites the repository wholesale on each sync
func (r *RepositoryRepository) Upsert(repo *models.Repository) error {
	query := `
		INSERT INTO repositories (
			id, name, full_name, owner_login, description, private, default_branch,
			language, stars, forks, open_issues, github_created_at, github_updated_at,
			github_pushed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			full_name = excluded.full_name,
			owner_login = excluded.owner_login,
			description = excluded.description,
			private = excluded.private,
			default_branch = excluded.default_branch,
			language = excluded.language,
			stars = excluded.stars,
			forks = excluded.forks,
			open_issues = excluded.open_issues,
			github_created_at = excluded.github_created_at,
			github_updated_at = excluded.github_updated_at,
			github_pushed_at = excluded.github_pushed_at,
			updated_at = CURRENT_TIMESTAMP
	`

	return database.WithRetry(func() error {
		_, err := r.db.Exec(query,
			repo.ID, repo.Name, repo.FullName, repo.OwnerLogin, repo.Description,
			repo.Private, repo.DefaultBranch, repo.Language, repo.Stars, repo.Forks,
			repo.OpenIssues, repo.GithubCreatedAt, repo.GithubUpdatedAt, repo.GithubPushedAt,
		)
		return err
	})
}

// Delete removes the repository; pull requests, reviews and comments under it
// go with it through the cascade rules.
func (r *RepositoryRepository) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM repositories WHERE id = ?`, id)
	return err
}
