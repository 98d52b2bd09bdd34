package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	sessiondomain "fintrack/backend/internal/session/domain"
)

// Device represents a device a user has logged in from. Repeat logins from
// the same device reuse its id, so clients see a stable deviceId across
// sessions.
type Device struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	Fingerprint string     `db:"fingerprint"`
	FirstSeenAt time.Time  `db:"first_seen_at"`
	LastSeenAt  *time.Time `db:"last_seen_at"`
}

// Fingerprint derives a stable identifier from the DeviceInfo fields that do
// not change between logins. Best-effort only; never security-authoritative.
func Fingerprint(info sessiondomain.DeviceInfo) string {
	h := sha256.New()
	h.Write([]byte(info.UserAgent))
	h.Write([]byte{0})
	h.Write([]byte(info.Device))
	h.Write([]byte{0})
	h.Write([]byte(info.Browser))
	h.Write([]byte{0})
	h.Write([]byte(info.OS))
	return hex.EncodeToString(h.Sum(nil))
}
