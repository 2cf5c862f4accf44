package models

import (
	"time"
)

// User represents a GitHub account referenced by repositories, pull requests
// and comments. Logins are unique.
type User struct {
	ID         int64     `json:"id"`
	Login      string    `json:"login"`
	Name       *string   `json:"name"`
	Email      *string   `json:"email"`
	AvatarURL  *string   `json:"avatarUrl"`
	ProfileURL *string   `json:"profileUrl"`
	Bio        *string   `json:"bio"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
