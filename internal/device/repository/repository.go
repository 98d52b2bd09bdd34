package repository

import (
	"context"
	"time"

	"fintrack/backend/internal/device/domain"
)

// Repository defines persistence for devices.
type Repository interface {
	GetByUserAndFingerprint(ctx context.Context, userID, fingerprint string) (*domain.Device, error)
	Create(ctx context.Context, d *domain.Device) error
	TouchLastSeen(ctx context.Context, id string, at time.Time) error
}
