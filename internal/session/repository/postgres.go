package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"fintrack/backend/internal/session/domain"
)

const sessionColumns = `id, user_id, device_id, user_agent, ip_address,
	device_name, browser, os, location, refresh_jti, refresh_token_hash,
	refresh_expires_at, created_at, last_activity_at, expires_at, revoked_at`

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.GetContext(ctx, &s, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// CreateWithCap inserts the session and revokes least-recently-active
// overflow in one transaction, so "at most cap active sessions" holds after
// every call even under concurrent logins.
func (r *PostgresRepository) CreateWithCap(ctx context.Context, s *domain.Session, cap int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Serialize insert+evict per user. Under READ COMMITTED two concurrent
	// logins could otherwise both run the eviction subselect before seeing
	// each other's insert and commit cap+1 active sessions. The lock is
	// released at commit/rollback.
	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`, s.UserID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, device_id, user_agent, ip_address,
			device_name, browser, os, location, refresh_jti, refresh_token_hash,
			refresh_expires_at, created_at, last_activity_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		s.ID, s.UserID, s.DeviceID, s.UserAgent, s.IPAddress,
		s.Device, s.Browser, s.OS, s.Location, s.RefreshJTI, s.RefreshTokenHash,
		s.RefreshExpiresAt, s.CreatedAt, s.LastActivityAt, s.ExpiresAt)
	if err != nil {
		return err
	}

	// Evict by last activity, keeping the cap newest; the row just inserted
	// counts toward the cap.
	_, err = tx.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = $3
		 WHERE id IN (
			SELECT id FROM sessions
			WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > $3
			ORDER BY last_activity_at DESC, created_at DESC
			OFFSET $2
		 )`,
		s.UserID, cap, time.Now().UTC())
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ListActiveByUser returns the user's active sessions ordered by most recent
// activity first.
func (r *PostgresRepository) ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]*domain.Session, error) {
	var list []*domain.Session
	err := r.db.SelectContext(ctx, &list,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > $2
		 ORDER BY last_activity_at DESC`, userID, now)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// CountActiveByUser returns the number of active sessions for the user.
func (r *PostgresRepository) CountActiveByUser(ctx context.Context, userID string, now time.Time) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM sessions
		 WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > $2`, userID, now)
	return n, err
}

// Revoke marks the session with the given id as revoked.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`,
		id, time.Now().UTC())
	return err
}

// RevokeAllByUser revokes all sessions for the given user.
func (r *PostgresRepository) RevokeAllByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL`,
		userID, time.Now().UTC())
	return err
}

// RevokeAllByUserExcept revokes all of the user's sessions except keepID.
func (r *PostgresRepository) RevokeAllByUserExcept(ctx context.Context, userID, keepID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = $3
		 WHERE user_id = $1 AND id <> $2 AND revoked_at IS NULL`,
		userID, keepID, time.Now().UTC())
	return err
}

// RotateRefresh swaps the refresh token state and extends the session in one
// conditional update. Zero rows updated means the presented token was already
// rotated out or the session is gone; the caller treats that as reuse.
func (r *PostgresRepository) RotateRefresh(ctx context.Context, sessionID, oldJTI, newJTI, newHash string, refreshExpiresAt, sessionExpiresAt, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET refresh_jti = $3, refresh_token_hash = $4,
			refresh_expires_at = $5, expires_at = $6, last_activity_at = $7
		 WHERE id = $1 AND refresh_jti = $2 AND revoked_at IS NULL AND expires_at > $7`,
		sessionID, oldJTI, newJTI, newHash, refreshExpiresAt, sessionExpiresAt, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteExpiredByUser removes sessions past their expiry and returns the
// removed count. Revoked rows are swept as well.
func (r *PostgresRepository) DeleteExpiredByUser(ctx context.Context, userID string, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions
		 WHERE user_id = $1 AND (expires_at <= $2 OR revoked_at IS NOT NULL)`,
		userID, now)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
