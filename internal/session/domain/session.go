package domain

import "time"

// DeviceInfo is the best-effort device snapshot captured at login. None of
// these fields are security-authoritative.
type DeviceInfo struct {
	UserAgent string `db:"user_agent" json:"userAgent"`
	IPAddress string `db:"ip_address" json:"ipAddress"`
	Device    string `db:"device_name" json:"device"`
	Browser   string `db:"browser" json:"browser"`
	OS        string `db:"os" json:"os"`
	Location  string `db:"location" json:"location"`
}

// Session represents one authenticated device binding. Each session carries
// exactly one active refresh token (jti + hash); rotation swaps both fields
// in a single conditional update.
type Session struct {
	ID       string `db:"id"`
	UserID   string `db:"user_id"`
	DeviceID string `db:"device_id"`

	DeviceInfo

	RefreshJTI       string    `db:"refresh_jti"`
	RefreshTokenHash string    `db:"refresh_token_hash"`
	RefreshExpiresAt time.Time `db:"refresh_expires_at"`

	CreatedAt      time.Time  `db:"created_at"`
	LastActivityAt time.Time  `db:"last_activity_at"`
	ExpiresAt      time.Time  `db:"expires_at"`
	RevokedAt      *time.Time `db:"revoked_at"` // nil when active
}

// IsActive reports whether the session is unrevoked and unexpired at now.
func (s *Session) IsActive(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}
