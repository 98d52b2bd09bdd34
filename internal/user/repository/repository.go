package repository

import (
	"context"
	"errors"
	"time"

	"fintrack/backend/internal/user/domain"
)

// ErrDuplicate is returned by Create when the email or phone is already taken.
var ErrDuplicate = errors.New("email or phone already registered")

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	GetByResetTokenHash(ctx context.Context, hash string, now time.Time) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	UpdateLoginState(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetResetToken(ctx context.Context, userID, hash string, expiresAt time.Time) error
	ResetPassword(ctx context.Context, userID, passwordHash string) error
}
