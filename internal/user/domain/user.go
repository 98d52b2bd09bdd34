package domain

import (
	"errors"
	"time"
)

// Role is the user's coarse authorization role, carried in token claims.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the account aggregate: identity, credentials, and security state.
// Sessions and refresh tokens live in their own store keyed by user id.
type User struct {
	ID           string     `db:"id"`
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	Email        string     `db:"email"`
	Phone        string     `db:"phone"`
	PasswordHash string     `db:"password_hash"`
	Role         Role       `db:"role"`
	IsVerified   bool       `db:"is_verified"`
	Region       string     `db:"region"` // opaque locale fields, not interpreted here
	City         string     `db:"city"`

	FailedLoginCount    int        `db:"failed_login_count"`
	LockedUntil         *time.Time `db:"locked_until"`
	ResetTokenHash      *string    `db:"reset_token_hash"`
	ResetTokenExpiresAt *time.Time `db:"reset_token_expires_at"`

	LastLoginAt *time.Time `db:"last_login_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// Validate validates the user for persistence. Returns an error describing
// the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}
