package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"fintrack/backend/internal/audit/domain"
	auditrepo "fintrack/backend/internal/audit/repository"
)

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// AuditLogger records auth events and serves them back for the user's
// activity view. LogEvent is best-effort and never fails the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, resource, metadata string)
	Recent(ctx context.Context, userID string, limit int32) ([]*domain.AuditLog, error)
}

// Logger implements AuditLogger using the audit repository and an optional IP extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
}

// NewLogger returns an AuditLogger that persists to repo and uses ipExtractor
// for client IP. ipExtractor may be nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, userID, action, resource, metadata string) {
	if l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", action, resource, err)
	}
}

// Recent returns the user's latest audit entries, newest first. With no
// repository configured it returns an empty history.
func (l *Logger) Recent(ctx context.Context, userID string, limit int32) ([]*domain.AuditLog, error) {
	if l.repo == nil {
		return nil, nil
	}
	return l.repo.ListByUser(ctx, userID, limit, 0)
}
