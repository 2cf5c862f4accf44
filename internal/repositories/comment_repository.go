package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/alimgiray/reviewdesk/pkg/database"
)

// ErrCommentCycle is returned when inserting a comment whose reply chain
// would not terminate at a top-level comment.
var ErrCommentCycle = errors.New("comment reply chain forms a cycle")

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentColumns = `id, pull_request_id, review_id, parent_comment_id, type, body,
	author_login, file_path, line, diff_hunk, side, html_url,
	github_created_at, github_updated_at, created_at, updated_at`

func (r *CommentRepository) scanComment(row *sql.Row) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(
		&c.ID, &c.PullRequestID, &c.ReviewID, &c.ParentCommentID, &c.Type, &c.Body,
		&c.AuthorLogin, &c.FilePath, &c.Line, &c.DiffHunk, &c.Side, &c.HTMLURL,
		&c.GithubCreatedAt, &c.GithubUpdatedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepository) GetByID(id int64) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = ?`
	return r.scanComment(r.db.QueryRow(query, id))
}

func (r *CommentRepository) GetByPullRequestID(pullRequestID int64) ([]*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE pull_request_id = ? ORDER BY github_created_at`
	return r.queryComments(query, pullRequestID)
}

func (r *CommentRepository) GetByReviewID(reviewID int64) ([]*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE review_id = ? ORDER BY github_created_at`
	return r.queryComments(query, reviewID)
}

// GetReplies returns the direct replies to a comment
func (r *CommentRepository) GetReplies(parentCommentID int64) ([]*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE parent_comment_id = ? ORDER BY github_created_at`
	return r.queryComments(query, parentCommentID)
}

// Search matches the query as a substring of comment bodies
func (r *CommentRepository) Search(q string) ([]*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE body LIKE ? ORDER BY github_created_at`
	return r.queryComments(query, "%"+q+"%")
}

func (r *CommentRepository) GetAll() ([]*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments ORDER BY github_created_at`
	return r.queryComments(query)
}

func (r *CommentRepository) queryComments(query string, args ...interface{}) ([]*models.Comment, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var c models.Comment
		err := rows.Scan(
			&c.ID, &c.PullRequestID, &c.ReviewID, &c.ParentCommentID, &c.Type, &c.Body,
			&c.AuthorLogin, &c.FilePath, &c.Line, &c.DiffHunk, &c.Side, &c.HTMLURL,
			&c.GithubCreatedAt, &c.GithubUpdatedAt, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}

	return comments, rows.Err()
}

// Upsert stores the comment after checking its reply chain stays acyclic.
// A reply whose parent is not stored yet is kept with the parent reference
// dropped, since the foreign key could not be satisfied; the next sync pass
// restores the link once the parent exists.
func (r *CommentRepository) Upsert(c *models.Comment) error {
	if c.ParentCommentID != nil {
		parent, err := r.GetByID(*c.ParentCommentID)
		if err != nil {
			return err
		}
		if parent == nil {
			c.ParentCommentID = nil
		} else if err := r.checkAcyclic(c.ID, *c.ParentCommentID); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO comments (
			id, pull_request_id, review_id, parent_comment_id, type, body,
			author_login, file_path, line, diff_hunk, side, html_url,
			github_created_at, github_updated_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			pull_request_id = excluded.pull_request_id,
			review_id = excluded.review_id,
			parent_comment_id = excluded.parent_comment_id,
			type = excluded.type,
			body = excluded.body,
			author_login = excluded.author_login,
			file_path = excluded.file_path,
			line = excluded.line,
			diff_hunk = excluded.diff_hunk,
			side = excluded.side,
			html_url = excluded.html_url,
			github_created_at = excluded.github_created_at,
			github_updated_at = excluded.github_updated_at,
			updated_at = CURRENT_TIMESTAMP
	`

	return database.WithRetry(func() error {
		_, err := r.db.Exec(query,
			c.ID, c.PullRequestID, c.ReviewID, c.ParentCommentID, c.Type, c.Body,
			c.AuthorLogin, c.FilePath, c.Line, c.DiffHunk, c.Side, c.HTMLURL,
			c.GithubCreatedAt, c.GithubUpdatedAt,
		)
		return err
	})
}

// checkAcyclic walks the parent chain from parentID and fails if it passes
// through commentID or never terminates.
func (r *CommentRepository) checkAcyclic(commentID, parentID int64) error {
	const maxDepth = 1000

	current := parentID
	for depth := 0; depth < maxDepth; depth++ {
		if current == commentID {
			return ErrCommentCycle
		}
		parent, err := r.GetByID(current)
		if err != nil {
			return err
		}
		if parent == nil || parent.ParentCommentID == nil {
			return nil
		}
		current = *parent.ParentCommentID
	}

	return fmt.Errorf("comment reply chain exceeds depth %d", maxDepth)
}

// Delete removes the comment; replies survive with their parent reference
// nulled out.
func (r *CommentRepository) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM comments WHERE id = ?`, id)
	return err
}
