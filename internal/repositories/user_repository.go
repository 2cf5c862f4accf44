package repositories

import (
	"database/sql"

	"github.com/alimgiray/reviewdesk/internal/models"
	"github.com/alimgiray/reviewdesk/pkg/database"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, login, name, email, avatar_url, profile_url, bio, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Login, &user.Name, &user.Email, &user.AvatarURL,
		&user.ProfileURL, &user.Bio, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (r *UserRepository) GetByLogin(login string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login = ?`

	user, err := scanUser(r.db.QueryRow(query, login))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// Upsert inserts the user or overwrites the existing row with the same id
func (r *UserRepository) Upsert(user *models.User) error {
	query := `
		INSERT INTO users (id, login, name, email, avatar_url, profile_url, bio, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			login = excluded.login,
			name = excluded.name,
			email = excluded.email,
			avatar_url = excluded.avatar_url,
			profile_url = excluded.profile_url,
			bio = excluded.bio,
			updated_at = CURRENT_TIMESTAMP
	`

	return database.WithRetry(func() error {
		_, err := r.db.Exec(query, user.ID, user.Login, user.Name, user.Email, user.AvatarURL, user.ProfileURL, user.Bio)
		return err
	})
}

func (r *UserRepository) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	return err
}
