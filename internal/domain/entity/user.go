package entity

import (
	"strings"
	"time"
)

type User struct {
	Id        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Matches reports whether the user matches a lowercased search query
// against name and email.
func (u User) Matches(query string) bool {
	return strings.Contains(strings.ToLower(u.FullName), query) ||
		strings.Contains(strings.ToLower(u.Email), query)
}
