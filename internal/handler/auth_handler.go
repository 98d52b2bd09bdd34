package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	auditdomain "fintrack/backend/internal/audit/domain"
	"fintrack/backend/internal/auth/service"
	"fintrack/backend/internal/handler/middleware"
	sessiondomain "fintrack/backend/internal/session/domain"
	userdomain "fintrack/backend/internal/user/domain"
	"fintrack/backend/internal/validator"
)

// AuthService is the part of the auth service the HTTP shell calls.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput, device sessiondomain.DeviceInfo) (*service.AuthResult, error)
	Login(ctx context.Context, identifier, password string, device sessiondomain.DeviceInfo) (*service.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string, device sessiondomain.DeviceInfo) (*service.AuthResult, error)
	Logout(ctx context.Context, userID, sessionID, accessJTI string, accessExpiresAt time.Time) error
	LogoutAll(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, sessionID, currentPassword, newPassword string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetUserSessions(ctx context.Context, userID string) ([]*sessiondomain.Session, error)
	SecurityEvents(ctx context.Context, userID string, limit int) ([]*auditdomain.AuditLog, error)
	CleanupExpiredSessions(ctx context.Context, userID string) (*service.CleanupResult, error)
}

// AuthHandler translates HTTP requests into auth service calls and service
// errors into stable status codes.
type AuthHandler struct {
	svc       AuthService
	validator *validator.Validator
}

func NewAuthHandler(svc AuthService, v *validator.Validator) *AuthHandler {
	return &AuthHandler{svc: svc, validator: v}
}

type registerRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	Phone     string `json:"phone" validate:"omitempty,e164"`
	Region    string `json:"region" validate:"omitempty,max=100"`
	City      string `json:"city" validate:"omitempty,max=100"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Validate(req); err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.svc.Register(c.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		Region:    req.Region,
		City:      req.City,
	}, deviceInfoFromRequest(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAuthResponse(res))
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Validate(req); err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.svc.Login(c.Context(), req.Identifier, req.Password, deviceInfoFromRequest(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(toAuthResponse(res))
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Validate(req); err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.svc.Refresh(c.Context(), req.RefreshToken, deviceInfoFromRequest(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(toAuthResponse(res))
}

// Logout handles POST /api/v1/auth/logout. Revokes the caller's own session
// and blacklists the presented access token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	sessionID := middleware.SessionID(c)
	err := h.svc.Logout(c.Context(), userID, sessionID, middleware.TokenJTI(c), middleware.TokenExpiresAt(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "logged out"})
}

// LogoutAll handles POST /api/v1/auth/logout-all.
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	if err := h.svc.LogoutAll(c.Context(), middleware.UserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "logged out everywhere"})
}

// ChangePassword handles POST /api/v1/auth/change-password. The caller's own
// session survives; all others are revoked.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Validate(req); err != nil {
		return badRequest(c, err.Error())
	}
	err := h.svc.ChangePassword(c.Context(), middleware.UserID(c), middleware.SessionID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "password changed"})
}

// ForgotPassword handles POST /api/v1/auth/forgot-password. The response is
// identical whether or not the email matches an account.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Validate(req); err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.svc.ForgotPassword(c.Context(), req.Email); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "if the email is registered, a reset link has been sent",
	})
}

// ResetPassword handles POST /api/v1/auth/reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Validate(req); err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.svc.ResetPassword(c.Context(), req.Token, req.NewPassword); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "password reset"})
}

// Sessions handles GET /api/v1/auth/sessions. Admins may pass ?userId= to
// inspect another account's sessions.
func (h *AuthHandler) Sessions(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if target := c.Query("userId"); target != "" && target != userID {
		if middleware.Role(c) != string(userdomain.RoleAdmin) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin role required"})
		}
		userID = target
	}
	sessions, err := h.svc.GetUserSessions(c.Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]sessionResponse, 0, len(sessions))
	current := middleware.SessionID(c)
	for _, s := range sessions {
		out = append(out, toSessionResponse(s, s.ID == current))
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"sessions": out})
}

// Activity handles GET /api/v1/auth/activity: the caller's recent security
// events (logins, logouts, password changes), newest first.
func (h *AuthHandler) Activity(c *fiber.Ctx) error {
	events, err := h.svc.SecurityEvents(c.Context(), middleware.UserID(c), c.QueryInt("limit", 50))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]activityResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toActivityResponse(e))
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"events": out})
}

// CleanupSessions handles DELETE /api/v1/auth/sessions/expired.
func (h *AuthHandler) CleanupSessions(c *fiber.Ctx) error {
	res, err := h.svc.CleanupExpiredSessions(c.Context(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"removed": res.Removed,
		"active":  res.Active,
	})
}
