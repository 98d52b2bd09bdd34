package domain

import "time"

// Auth event actions recorded by this subsystem.
const (
	ActionLoginSuccess    = "login_success"
	ActionLoginFailure    = "login_failure"
	ActionAccountLocked   = "account_locked"
	ActionTokenRefreshed  = "token_refreshed"
	ActionRefreshReuse    = "refresh_token_reuse"
	ActionLogout          = "logout"
	ActionLogoutAll       = "logout_all"
	ActionPasswordChanged = "password_changed"
	ActionPasswordReset   = "password_reset"
	ActionResetRequested  = "reset_requested"
	ActionRegistered      = "registered"
)

// AuditLog represents one security-relevant auth event.
type AuditLog struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Action    string    `db:"action"`
	Resource  string    `db:"resource"`
	IP        string    `db:"ip"`
	Metadata  string    `db:"metadata"`
	CreatedAt time.Time `db:"created_at"`
}
