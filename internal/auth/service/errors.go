package service

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the auth service; the transport layer maps them to
// status codes. Credential failures are always generic so callers cannot
// tell which part of the identifier/password pair was wrong.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrPhoneTaken         = errors.New("phone already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrResetTokenInvalid  = errors.New("invalid or expired reset token")
)

// ValidationError reports malformed input that slipped past the transport
// layer's request validation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// LockedError is returned while an account lock is in effect. It carries a
// retry-after hint but never reveals whether the presented password was
// correct; no credential check runs while locked.
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked; retry in %s", e.RetryAfter.Round(time.Second))
}

// TokenErrorKind classifies token failures.
type TokenErrorKind string

const (
	TokenExpired   TokenErrorKind = "expired"
	TokenMalformed TokenErrorKind = "malformed"
	TokenWrongType TokenErrorKind = "wrong_type"
	TokenRevoked   TokenErrorKind = "revoked"
)

// TokenError is returned when a presented token fails verification, either
// cryptographically or against the live session state.
type TokenError struct {
	Kind TokenErrorKind
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%s token", e.Kind)
}
