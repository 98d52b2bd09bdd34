package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"fintrack/backend/internal/device/domain"
)

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a device repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByUserAndFingerprint returns the user's device with the given
// fingerprint, or nil if not found.
func (r *PostgresRepository) GetByUserAndFingerprint(ctx context.Context, userID, fingerprint string) (*domain.Device, error) {
	var d domain.Device
	err := r.db.GetContext(ctx, &d,
		`SELECT id, user_id, fingerprint, first_seen_at, last_seen_at
		 FROM devices WHERE user_id = $1 AND fingerprint = $2`, userID, fingerprint)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// Create persists the device. The device must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, d *domain.Device) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO devices (id, user_id, fingerprint, first_seen_at, last_seen_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.UserID, d.Fingerprint, d.FirstSeenAt, d.LastSeenAt)
	return err
}

// TouchLastSeen sets the device's last-seen timestamp.
func (r *PostgresRepository) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE devices SET last_seen_at = $2 WHERE id = $1`, id, at)
	return err
}
