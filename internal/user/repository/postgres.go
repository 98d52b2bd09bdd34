package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"fintrack/backend/internal/user/domain"
)

const userColumns = `id, first_name, last_name, email, COALESCE(phone, '') AS phone,
	password_hash, role, is_verified, region, city, failed_login_count,
	locked_until, reset_token_hash, reset_token_expires_at, last_login_at,
	created_at, updated_at`

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns the user with the given email, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetByIdentifier returns the user whose email or phone matches identifier,
// or nil if not found.
func (r *PostgresRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM users WHERE email = $1 OR phone = $1`, identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetByResetTokenHash returns the user holding an unexpired reset token with
// the given hash, or nil if none.
func (r *PostgresRepository) GetByResetTokenHash(ctx context.Context, hash string, now time.Time) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM users
		 WHERE reset_token_hash = $1 AND reset_token_expires_at > $2`, hash, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create persists the user. The user must have ID set. Returns ErrDuplicate
// when the email or phone collides with an existing row.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	var phone any
	if u.Phone != "" {
		phone = u.Phone
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, first_name, last_name, email, phone, password_hash,
			role, is_verified, region, city, failed_login_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		u.ID, u.FirstName, u.LastName, u.Email, phone, u.PasswordHash,
		u.Role, u.IsVerified, u.Region, u.City, u.FailedLoginCount, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// UpdateLoginState persists the user's lockout counters and last-login time.
func (r *PostgresRepository) UpdateLoginState(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET failed_login_count = $2, locked_until = $3,
			last_login_at = $4, updated_at = now()
		 WHERE id = $1`,
		u.ID, u.FailedLoginCount, u.LockedUntil, u.LastLoginAt)
	return err
}

// UpdatePassword replaces the user's password hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		userID, passwordHash)
	return err
}

// SetResetToken stores the reset token hash and its expiry on the user,
// replacing any previous token.
func (r *PostgresRepository) SetResetToken(ctx context.Context, userID, hash string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET reset_token_hash = $2, reset_token_expires_at = $3,
			updated_at = now()
		 WHERE id = $1`,
		userID, hash, expiresAt)
	return err
}

// ResetPassword replaces the password hash and clears the reset token fields
// in one statement, so a consumed token can never be consumed again.
func (r *PostgresRepository) ResetPassword(ctx context.Context, userID, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, reset_token_hash = NULL,
			reset_token_expires_at = NULL, updated_at = now()
		 WHERE id = $1`,
		userID, passwordHash)
	return err
}
