package repository

import (
	"context"
	"time"

	"fintrack/backend/internal/session/domain"
)

// Repository defines persistence for sessions and their refresh-token state.
// Every method is a single atomic statement or transaction; two concurrent
// logins or refreshes for one user must not lose a session or resurrect a
// rotated-out refresh token.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// CreateWithCap inserts the session and, in the same transaction, revokes
	// the least-recently-active sessions beyond cap so at most cap active
	// sessions remain afterwards. Implementations must serialize concurrent
	// calls for the same user, or both could pass the cap check on the same
	// under-cap snapshot.
	CreateWithCap(ctx context.Context, s *domain.Session, cap int) error
	ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]*domain.Session, error)
	CountActiveByUser(ctx context.Context, userID string, now time.Time) (int, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllByUser(ctx context.Context, userID string) error
	// RevokeAllByUserExcept revokes every active session of the user except
	// keepID. Used by password change.
	RevokeAllByUserExcept(ctx context.Context, userID, keepID string) error
	// RotateRefresh atomically replaces the session's refresh token state and
	// extends the session, but only while oldJTI is still current. Returns
	// false when the session was revoked or oldJTI was already rotated out.
	RotateRefresh(ctx context.Context, sessionID, oldJTI, newJTI, newHash string, refreshExpiresAt, sessionExpiresAt, now time.Time) (bool, error)
	// DeleteExpiredByUser removes sessions whose expiry has passed and
	// returns how many were removed.
	DeleteExpiredByUser(ctx context.Context, userID string, now time.Time) (int, error)
}
