package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"fintrack/backend/internal/audit"
	auditdomain "fintrack/backend/internal/audit/domain"
	"fintrack/backend/internal/blacklist"
	devicedomain "fintrack/backend/internal/device/domain"
	"fintrack/backend/internal/email"
	"fintrack/backend/internal/lockout"
	"fintrack/backend/internal/security"
	sessiondomain "fintrack/backend/internal/session/domain"
	userdomain "fintrack/backend/internal/user/domain"
	userrepo "fintrack/backend/internal/user/repository"
)

// RegisterInput is the profile supplied at registration. The transport layer
// has already validated shapes; the service re-checks the security-relevant
// fields before touching the store.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
	Region    string
	City      string
}

// Tokens is the bearer-token pair handed to the client.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64 // access-token lifetime in seconds
}

// SessionInfo identifies the session materialized by register/login/refresh.
type SessionInfo struct {
	SessionID string
	DeviceID  string
}

// AuthResult is the outcome of Register, Login, and Refresh.
type AuthResult struct {
	User    *userdomain.User
	Tokens  Tokens
	Session SessionInfo
}

// CleanupResult reports an on-demand expired-session sweep.
type CleanupResult struct {
	Removed int
	Active  int
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*userdomain.User, error)
	GetByResetTokenHash(ctx context.Context, hash string, now time.Time) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	UpdateLoginState(ctx context.Context, u *userdomain.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetResetToken(ctx context.Context, userID, hash string, expiresAt time.Time) error
	ResetPassword(ctx context.Context, userID, passwordHash string) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
	CreateWithCap(ctx context.Context, s *sessiondomain.Session, cap int) error
	ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]*sessiondomain.Session, error)
	CountActiveByUser(ctx context.Context, userID string, now time.Time) (int, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllByUser(ctx context.Context, userID string) error
	RevokeAllByUserExcept(ctx context.Context, userID, keepID string) error
	RotateRefresh(ctx context.Context, sessionID, oldJTI, newJTI, newHash string, refreshExpiresAt, sessionExpiresAt, now time.Time) (bool, error)
	DeleteExpiredByUser(ctx context.Context, userID string, now time.Time) (int, error)
}

// DeviceRepo is the minimal device repository needed by the auth service.
type DeviceRepo interface {
	GetByUserAndFingerprint(ctx context.Context, userID, fingerprint string) (*devicedomain.Device, error)
	Create(ctx context.Context, d *devicedomain.Device) error
	TouchLastSeen(ctx context.Context, id string, at time.Time) error
}

// Config carries the tunables the auth service needs beyond its collaborators.
type Config struct {
	SessionCap    int
	SessionTTL    time.Duration
	ResetTokenTTL time.Duration
	ResetLinkBase string
}

// AuthService orchestrates registration, login, token rotation, logout, and
// the password change/reset flows. All session mutations go through the
// session repository so the cap and one-refresh-per-session invariants are
// enforced in one place.
type AuthService struct {
	userRepo    UserRepo
	sessionRepo SessionRepo
	deviceRepo  DeviceRepo
	hasher      *security.Hasher
	tokens      *security.TokenProvider
	guard       *lockout.Guard
	blacklist   *blacklist.TokenBlacklist
	mailer      email.Mailer
	audit       audit.AuditLogger
	tracer      trace.Tracer
	cfg         Config
}

// NewAuthService returns an AuthService with the given dependencies.
// blacklist, mailer, and auditLogger may be nil; those concerns are then
// skipped.
func NewAuthService(
	userRepo UserRepo,
	sessionRepo SessionRepo,
	deviceRepo DeviceRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	guard *lockout.Guard,
	bl *blacklist.TokenBlacklist,
	mailer email.Mailer,
	auditLogger audit.AuditLogger,
	cfg Config,
) *AuthService {
	if cfg.SessionCap <= 0 {
		cfg.SessionCap = 5
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = tokens.RefreshTTL()
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = time.Hour
	}
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		deviceRepo:  deviceRepo,
		hasher:      hasher,
		tokens:      tokens,
		guard:       guard,
		blacklist:   bl,
		mailer:      mailer,
		audit:       auditLogger,
		tracer:      otel.Tracer("fintrack/backend/internal/auth/service"),
		cfg:         cfg,
	}
}

// Register creates a user with a hashed password and logs it in immediately,
// issuing the first token pair and session exactly as Login does.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, device sessiondomain.DeviceInfo) (*AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	emailAddr := strings.TrimSpace(strings.ToLower(in.Email))
	if err := validateEmail(emailAddr); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	existing, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	phone := strings.TrimSpace(in.Phone)
	if phone != "" {
		byPhone, err := s.userRepo.GetByIdentifier(ctx, phone)
		if err != nil {
			return nil, err
		}
		if byPhone != nil {
			return nil, ErrPhoneTaken
		}
	}
	hashed, err := s.hasher.Hash([]byte(in.Password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        emailAddr,
		Phone:        phone,
		PasswordHash: hashed,
		Role:         userdomain.RoleUser,
		Region:       in.Region,
		City:         in.City,
		LastLoginAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration for the same email/phone.
		if errors.Is(err, userrepo.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	result, err := s.createSession(ctx, user, device, now)
	if err != nil {
		return nil, err
	}
	s.auditEvent(ctx, user.ID, auditdomain.ActionRegistered, "user", emailAddr)
	return result, nil
}

// Login authenticates by email or phone. An unknown identifier behaves
// identically to a wrong password so callers cannot probe for accounts.
// While a lockout holds, the password is never checked.
func (s *AuthService) Login(ctx context.Context, identifier, password string, device sessiondomain.DeviceInfo) (*AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	identifier = strings.TrimSpace(strings.ToLower(identifier))
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	now := time.Now().UTC()
	if s.guard.IsLocked(user, now) {
		return nil, &LockedError{RetryAfter: s.guard.RemainingLock(user, now)}
	}
	if !s.hasher.Verify(user.PasswordHash, []byte(password)) {
		s.guard.RecordFailure(user, now)
		if err := s.userRepo.UpdateLoginState(ctx, user); err != nil {
			return nil, err
		}
		s.auditEvent(ctx, user.ID, auditdomain.ActionLoginFailure, "session", fmt.Sprintf("failed_count=%d", user.FailedLoginCount))
		if user.LockedUntil != nil {
			s.auditEvent(ctx, user.ID, auditdomain.ActionAccountLocked, "user", fmt.Sprintf("locked_until=%s", user.LockedUntil.Format(time.RFC3339)))
		}
		return nil, ErrInvalidCredentials
	}
	s.guard.RecordSuccess(user)
	user.LastLoginAt = &now
	if err := s.userRepo.UpdateLoginState(ctx, user); err != nil {
		return nil, err
	}
	result, err := s.createSession(ctx, user, device, now)
	if err != nil {
		return nil, err
	}
	s.auditEvent(ctx, user.ID, auditdomain.ActionLoginSuccess, "session", result.Session.SessionID)
	return result, nil
}

// Refresh validates the refresh token against both its signature and the
// live session record, rotates it, and returns a new pair. Presenting a
// rotated-out token is treated as theft: every session of the user is
// revoked before the error is returned.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, device sessiondomain.DeviceInfo) (*AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Refresh")
	defer span.End()

	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}
	sess, err := s.sessionRepo.GetByID(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if sess == nil || !sess.IsActive(now) {
		return nil, &TokenError{Kind: TokenRevoked}
	}
	if sess.UserID != claims.Subject {
		return nil, &TokenError{Kind: TokenRevoked}
	}
	if sess.RefreshJTI != claims.ID || !security.RefreshTokenHashEqual(refreshToken, sess.RefreshTokenHash) {
		// The session's current token differs: this one was already rotated
		// out, so someone replayed it.
		return nil, s.handleRefreshReuse(ctx, sess.UserID, sess.ID)
	}
	user, err := s.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &TokenError{Kind: TokenRevoked}
	}
	pair, err := s.tokens.IssuePair(user.ID, sess.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	rotated, err := s.sessionRepo.RotateRefresh(ctx, sess.ID, claims.ID, pair.RefreshJTI,
		security.HashRefreshToken(pair.RefreshToken), pair.RefreshExpiresAt, now.Add(s.cfg.SessionTTL), now)
	if err != nil {
		return nil, err
	}
	if !rotated {
		// A concurrent refresh won the conditional update, which means this
		// token was presented twice.
		return nil, s.handleRefreshReuse(ctx, sess.UserID, sess.ID)
	}
	if device.UserAgent != "" && sess.DeviceID != "" {
		_ = s.deviceRepo.TouchLastSeen(ctx, sess.DeviceID, now)
	}
	s.auditEvent(ctx, user.ID, auditdomain.ActionTokenRefreshed, "session", sess.ID)
	return &AuthResult{
		User:    user,
		Tokens:  s.toTokens(pair),
		Session: SessionInfo{SessionID: sess.ID, DeviceID: sess.DeviceID},
	}, nil
}

// Logout revokes one session. The caller's access token (jti + expiry, as
// verified by the transport layer) is blacklisted so it stops working
// immediately rather than at its natural expiry.
func (s *AuthService) Logout(ctx context.Context, userID, sessionID, accessJTI string, accessExpiresAt time.Time) error {
	ctx, span := s.tracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil || sess.UserID != userID {
		return ErrSessionNotFound
	}
	if err := s.sessionRepo.Revoke(ctx, sessionID); err != nil {
		return err
	}
	if accessJTI != "" {
		_ = s.blacklist.AddToken(ctx, accessJTI, accessExpiresAt)
	}
	s.auditEvent(ctx, userID, auditdomain.ActionLogout, "session", sessionID)
	return nil
}

// LogoutAll revokes every session of the user and blacklists all access
// tokens issued before now.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	ctx, span := s.tracer.Start(ctx, "AuthService.LogoutAll")
	defer span.End()

	if err := s.sessionRepo.RevokeAllByUser(ctx, userID); err != nil {
		return err
	}
	_ = s.blacklist.BlacklistUser(ctx, userID, s.tokens.AccessTTL())
	s.auditEvent(ctx, userID, auditdomain.ActionLogoutAll, "session", "")
	return nil
}

// ChangePassword replaces the password after verifying the current one, and
// revokes every session except the caller's own. Unlike LogoutAll this does
// not set the user-wide token marker, because that would also invalidate the
// caller's access token; the revoked sessions' outstanding access tokens
// simply age out within AccessTTL.
func (s *AuthService) ChangePassword(ctx context.Context, userID, sessionID, currentPassword, newPassword string) error {
	ctx, span := s.tracer.Start(ctx, "AuthService.ChangePassword")
	defer span.End()

	if err := validatePassword(newPassword); err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !s.hasher.Verify(user.PasswordHash, []byte(currentPassword)) {
		return ErrInvalidCredentials
	}
	hashed, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hashed); err != nil {
		return err
	}
	if err := s.sessionRepo.RevokeAllByUserExcept(ctx, userID, sessionID); err != nil {
		return err
	}
	s.auditEvent(ctx, userID, auditdomain.ActionPasswordChanged, "user", "")
	return nil
}

// ForgotPassword issues a reset token and mails the reset link. The outcome
// is deliberately indistinguishable for known and unknown addresses; only a
// store failure surfaces as an error.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	ctx, span := s.tracer.Start(ctx, "AuthService.ForgotPassword")
	defer span.End()

	emailAddr = strings.TrimSpace(strings.ToLower(emailAddr))
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	token, hash, err := security.GenerateResetToken()
	if err != nil {
		return err
	}
	expiresAt := time.Now().UTC().Add(s.cfg.ResetTokenTTL)
	if err := s.userRepo.SetResetToken(ctx, user.ID, hash, expiresAt); err != nil {
		return err
	}
	if s.mailer != nil {
		link := s.cfg.ResetLinkBase + token
		// A delivery failure must not change the response shape; the reset
		// token stays valid and the user can retry the request.
		_ = s.mailer.SendPasswordResetEmail(ctx, user.Email, user.FirstName, link)
	}
	s.auditEvent(ctx, user.ID, auditdomain.ActionResetRequested, "user", "")
	return nil
}

// ResetPassword consumes a reset token: replaces the password hash, clears
// the token so it cannot be used twice, and revokes every session and
// refresh token the user had.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	ctx, span := s.tracer.Start(ctx, "AuthService.ResetPassword")
	defer span.End()

	if err := validatePassword(newPassword); err != nil {
		return err
	}
	now := time.Now().UTC()
	user, err := s.userRepo.GetByResetTokenHash(ctx, security.HashResetToken(token), now)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrResetTokenInvalid
	}
	hashed, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return err
	}
	if err := s.userRepo.ResetPassword(ctx, user.ID, hashed); err != nil {
		return err
	}
	if err := s.sessionRepo.RevokeAllByUser(ctx, user.ID); err != nil {
		return err
	}
	_ = s.blacklist.BlacklistUser(ctx, user.ID, s.tokens.AccessTTL())
	s.auditEvent(ctx, user.ID, auditdomain.ActionPasswordReset, "user", "")
	return nil
}

// GetUserSessions lists the user's active sessions, most recently active
// first.
func (s *AuthService) GetUserSessions(ctx context.Context, userID string) ([]*sessiondomain.Session, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.GetUserSessions")
	defer span.End()

	return s.sessionRepo.ListActiveByUser(ctx, userID, time.Now().UTC())
}

// SecurityEvents returns the user's recent audit history, newest first. With
// no audit logger configured it returns an empty history.
func (s *AuthService) SecurityEvents(ctx context.Context, userID string, limit int) ([]*auditdomain.AuditLog, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.SecurityEvents")
	defer span.End()

	if s.audit == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.audit.Recent(ctx, userID, int32(limit))
}

// CleanupExpiredSessions removes the user's expired and revoked sessions and
// reports how many were removed and how many remain active. There is no
// background sweeper; this runs only when invoked.
func (s *AuthService) CleanupExpiredSessions(ctx context.Context, userID string) (*CleanupResult, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.CleanupExpiredSessions")
	defer span.End()

	now := time.Now().UTC()
	removed, err := s.sessionRepo.DeleteExpiredByUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	active, err := s.sessionRepo.CountActiveByUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	return &CleanupResult{Removed: removed, Active: active}, nil
}

// createSession materializes a session for an authenticated user: resolves
// or registers the device, issues the token pair, and inserts the session
// under the cap in one transaction.
func (s *AuthService) createSession(ctx context.Context, user *userdomain.User, device sessiondomain.DeviceInfo, now time.Time) (*AuthResult, error) {
	fp := devicedomain.Fingerprint(device)
	dev, err := s.deviceRepo.GetByUserAndFingerprint(ctx, user.ID, fp)
	if err != nil {
		return nil, err
	}
	if dev == nil {
		dev = &devicedomain.Device{
			ID:          uuid.New().String(),
			UserID:      user.ID,
			Fingerprint: fp,
			FirstSeenAt: now,
			LastSeenAt:  &now,
		}
		if err := s.deviceRepo.Create(ctx, dev); err != nil {
			return nil, err
		}
	} else {
		_ = s.deviceRepo.TouchLastSeen(ctx, dev.ID, now)
	}
	sessionID := uuid.New().String()
	pair, err := s.tokens.IssuePair(user.ID, sessionID, string(user.Role))
	if err != nil {
		return nil, err
	}
	sess := &sessiondomain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		DeviceID:         dev.ID,
		DeviceInfo:       device,
		RefreshJTI:       pair.RefreshJTI,
		RefreshTokenHash: security.HashRefreshToken(pair.RefreshToken),
		RefreshExpiresAt: pair.RefreshExpiresAt,
		CreatedAt:        now,
		LastActivityAt:   now,
		ExpiresAt:        now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessionRepo.CreateWithCap(ctx, sess, s.cfg.SessionCap); err != nil {
		return nil, err
	}
	return &AuthResult{
		User:    user,
		Tokens:  s.toTokens(pair),
		Session: SessionInfo{SessionID: sessionID, DeviceID: dev.ID},
	}, nil
}

// handleRefreshReuse revokes every session of the user and returns the
// revoked-token error the caller should surface.
func (s *AuthService) handleRefreshReuse(ctx context.Context, userID, sessionID string) error {
	_ = s.sessionRepo.RevokeAllByUser(ctx, userID)
	_ = s.blacklist.BlacklistUser(ctx, userID, s.tokens.AccessTTL())
	s.auditEvent(ctx, userID, auditdomain.ActionRefreshReuse, "session", sessionID)
	return &TokenError{Kind: TokenRevoked}
}

func (s *AuthService) toTokens(pair *security.TokenPair) Tokens {
	return Tokens{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL() / time.Second),
	}
}

func (s *AuthService) auditEvent(ctx context.Context, userID, action, resource, metadata string) {
	if s.audit == nil {
		return
	}
	s.audit.LogEvent(ctx, userID, action, resource, metadata)
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, security.ErrTokenExpired):
		return &TokenError{Kind: TokenExpired}
	case errors.Is(err, security.ErrTokenWrongType):
		return &TokenError{Kind: TokenWrongType}
	default:
		return &TokenError{Kind: TokenMalformed}
	}
}

func validateEmail(email string) error {
	if email == "" {
		return &ValidationError{Msg: "email is required"}
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return &ValidationError{Msg: "invalid email format"}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return &ValidationError{Msg: "password must be at least 8 characters"}
	}
	var hasLetter, hasNumber bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasNumber = true
		}
	}
	if !hasLetter || !hasNumber {
		return &ValidationError{Msg: "password must contain letters and numbers"}
	}
	return nil
}
