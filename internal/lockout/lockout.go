// Package lockout enforces a temporary lock after repeated failed logins.
package lockout

import (
	"time"

	"fintrack/backend/internal/user/domain"
)

// Guard tracks consecutive credential failures on the user aggregate and
// trips a fixed-duration lock at the threshold. The window is fixed rather
// than exponential; callers needing stronger guarantees swap the window
// function, not this type.
type Guard struct {
	Threshold int
	Window    time.Duration
}

// NewGuard returns a Guard with the given threshold and lock window.
// Non-positive values fall back to 5 failures / 15 minutes.
func NewGuard(threshold int, window time.Duration) *Guard {
	if threshold <= 0 {
		threshold = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &Guard{Threshold: threshold, Window: window}
}

// RecordFailure increments the user's failed-login count and sets
// LockedUntil once the threshold is reached. The caller persists the user.
func (g *Guard) RecordFailure(u *domain.User, now time.Time) {
	u.FailedLoginCount++
	if u.FailedLoginCount >= g.Threshold {
		until := now.Add(g.Window)
		u.LockedUntil = &until
	}
}

// RecordSuccess clears the failure count and any lock. The caller persists
// the user.
func (g *Guard) RecordSuccess(u *domain.User) {
	u.FailedLoginCount = 0
	u.LockedUntil = nil
}

// IsLocked reports whether the user is locked at now. While locked, callers
// must not run the credential check at all.
func (g *Guard) IsLocked(u *domain.User, now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// RemainingLock returns how long the lock still holds at now; zero when
// unlocked.
func (g *Guard) RemainingLock(u *domain.User, now time.Time) time.Duration {
	if !g.IsLocked(u, now) {
		return 0
	}
	return u.LockedUntil.Sub(now)
}
