package lockout

import (
	"testing"
	"time"

	"fintrack/backend/internal/user/domain"
)

func TestGuard_LocksAtThreshold(t *testing.T) {
	g := NewGuard(3, 15*time.Minute)
	u := &domain.User{}
	now := time.Now().UTC()

	g.RecordFailure(u, now)
	g.RecordFailure(u, now)
	if g.IsLocked(u, now) {
		t.Fatal("should not lock below threshold")
	}
	g.RecordFailure(u, now)
	if !g.IsLocked(u, now) {
		t.Fatal("should lock at threshold")
	}
	if u.FailedLoginCount != 3 {
		t.Errorf("FailedLoginCount: want 3, got %d", u.FailedLoginCount)
	}
	remaining := g.RemainingLock(u, now)
	if remaining <= 0 || remaining > 15*time.Minute {
		t.Errorf("RemainingLock: want (0, 15m], got %v", remaining)
	}
}

func TestGuard_LockExpires(t *testing.T) {
	g := NewGuard(1, time.Minute)
	u := &domain.User{}
	now := time.Now().UTC()

	g.RecordFailure(u, now)
	if !g.IsLocked(u, now) {
		t.Fatal("should be locked")
	}
	after := now.Add(time.Minute + time.Second)
	if g.IsLocked(u, after) {
		t.Fatal("lock should expire after the window")
	}
	if g.RemainingLock(u, after) != 0 {
		t.Error("RemainingLock should be zero once expired")
	}
}

func TestGuard_RecordSuccessClears(t *testing.T) {
	g := NewGuard(2, time.Minute)
	u := &domain.User{}
	now := time.Now().UTC()

	g.RecordFailure(u, now)
	g.RecordFailure(u, now)
	g.RecordSuccess(u)
	if u.FailedLoginCount != 0 {
		t.Errorf("FailedLoginCount after success: want 0, got %d", u.FailedLoginCount)
	}
	if u.LockedUntil != nil {
		t.Error("LockedUntil should be cleared on success")
	}
	if g.IsLocked(u, now) {
		t.Error("user should not be locked after success")
	}
}

func TestNewGuard_Defaults(t *testing.T) {
	g := NewGuard(0, 0)
	if g.Threshold != 5 {
		t.Errorf("Threshold default: want 5, got %d", g.Threshold)
	}
	if g.Window != 15*time.Minute {
		t.Errorf("Window default: want 15m, got %v", g.Window)
	}
}
