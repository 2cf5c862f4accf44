package repositories

import (
	"database/sql"

	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/alimgiray/reviewdesk/pkg/database"
)

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `id, pull_request_id, body, state, author_login, submitted_at, created_at, updated_at`

func (r *ReviewRepository) GetByID(id int64) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = ?`

	var review models.Review
	err := r.db.QueryRow(query, id).Scan(
		&review.ID, &review.PullRequestID, &review.Body, &review.State,
		&review.AuthorLogin, &review.SubmittedAt, &review.CreatedAt, &review.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) GetByPullRequestID(pullRequestID int64) ([]*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE pull_request_id = ? ORDER BY submitted_at`

	rows, err := r.db.Query(query, pullRequestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		var review models.Review
		err := rows.Scan(
			&review.ID, &review.PullRequestID, &review.Body, &review.State,
			&review.AuthorLogin, &review.SubmittedAt, &review.CreatedAt, &review.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, &review)
	}

	return reviews, rows.Err()
}

func (r *ReviewRepository) Upsert(review *models.Review) error {
	query := `
		INSERT INTO reviews (id, pull_request_id, body, state, author_login, submitted_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			pull_request_id = excluded.pull_request_id,
			body = excluded.body,
			state = excluded.state,
			author_login = excluded.author_login,
			submitted_at = excluded.submitted_at,
			updated_at = CURRENT_TIMESTAMP
	`

	return database.WithRetry(func() error {
		_, err := r.db.Exec(query, review.ID, review.PullRequestID, review.Body, review.State, review.AuthorLogin, review.SubmittedAt)
		return err
	})
}

// Delete removes the review; its comments survive with review_id nulled out
func (r *ReviewRepository) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM reviews WHERE id = ?`, id)
	return err
}
