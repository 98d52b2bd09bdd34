package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr default: want :8080, got %q", cfg.HTTPAddr)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost default: want 12, got %d", cfg.BcryptCost)
	}
	if cfg.LockoutThreshold != 5 {
		t.Errorf("LockoutThreshold default: want 5, got %d", cfg.LockoutThreshold)
	}
	if cfg.SessionCap != 5 {
		t.Errorf("SessionCap default: want 5, got %d", cfg.SessionCap)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("LOCKOUT_THRESHOLD", "3")
	t.Setenv("SESSION_CAP", "2")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr: want :9999, got %q", cfg.HTTPAddr)
	}
	if cfg.LockoutThreshold != 3 {
		t.Errorf("LockoutThreshold: want 3, got %d", cfg.LockoutThreshold)
	}
	if cfg.SessionCap != 2 {
		t.Errorf("SessionCap: want 2, got %d", cfg.SessionCap)
	}
}

func TestLoad_InvalidBcryptCost(t *testing.T) {
	t.Setenv("BCRYPT_COST", "99")
	if _, err := Load(); err == nil {
		t.Fatal("Load should reject BCRYPT_COST out of range")
	}
}

func TestLoad_InvalidLockoutThreshold(t *testing.T) {
	t.Setenv("LOCKOUT_THRESHOLD", "-1")
	if _, err := Load(); err == nil {
		t.Fatal("Load should reject negative LOCKOUT_THRESHOLD")
	}
}

func TestDurationAccessors(t *testing.T) {
	cfg := &Config{
		JWTAccessTTL:     "5m",
		JWTRefreshTTL:    "48h",
		LockoutWindow:    "30m",
		SessionTTLStr:    "24h",
		ResetTokenTTLStr: "2h",
	}
	if got := cfg.AccessTTL(); got != 5*time.Minute {
		t.Errorf("AccessTTL: want 5m, got %v", got)
	}
	if got := cfg.RefreshTTL(); got != 48*time.Hour {
		t.Errorf("RefreshTTL: want 48h, got %v", got)
	}
	if got := cfg.LockWindow(); got != 30*time.Minute {
		t.Errorf("LockWindow: want 30m, got %v", got)
	}
	if got := cfg.SessionTTL(); got != 24*time.Hour {
		t.Errorf("SessionTTL: want 24h, got %v", got)
	}
	if got := cfg.ResetTokenTTL(); got != 2*time.Hour {
		t.Errorf("ResetTokenTTL: want 2h, got %v", got)
	}
}

func TestDurationAccessors_Fallbacks(t *testing.T) {
	cfg := &Config{JWTAccessTTL: "bogus", LockoutWindow: "", ResetTokenTTLStr: "-5m"}
	if got := cfg.AccessTTL(); got != 15*time.Minute {
		t.Errorf("AccessTTL fallback: want 15m, got %v", got)
	}
	if got := cfg.LockWindow(); got != 15*time.Minute {
		t.Errorf("LockWindow fallback: want 15m, got %v", got)
	}
	if got := cfg.ResetTokenTTL(); got != time.Hour {
		t.Errorf("ResetTokenTTL fallback: want 1h, got %v", got)
	}
}
