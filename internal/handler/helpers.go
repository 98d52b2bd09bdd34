package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"fintrack/backend/internal/auth/service"
	sessiondomain "fintrack/backend/internal/session/domain"
)

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// writeError maps service errors to stable status codes. Credential failures
// stay generic; internals never leak into response bodies.
func writeError(c *fiber.Ctx, err error) error {
	var (
		validationErr *service.ValidationError
		lockedErr     *service.LockedError
		tokenErr      *service.TokenError
	)
	switch {
	case errors.As(err, &validationErr):
		return badRequest(c, validationErr.Msg)
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrPhoneTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	case errors.As(err, &lockedErr):
		retryAfter := int64(lockedErr.RetryAfter/time.Second) + 1
		c.Set(fiber.HeaderRetryAfter, strconv.FormatInt(retryAfter, 10))
		return c.Status(fiber.StatusLocked).JSON(fiber.Map{
			"error":      "account temporarily locked",
			"retryAfter": retryAfter,
		})
	case errors.As(err, &tokenErr):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": tokenErr.Error()})
	case errors.Is(err, service.ErrResetTokenInvalid):
		return badRequest(c, err.Error())
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}

// deviceInfoFromRequest captures a best-effort device snapshot from request
// headers. None of it is trusted for authorization.
func deviceInfoFromRequest(c *fiber.Ctx) sessiondomain.DeviceInfo {
	ip := c.IP()
	if fwd := c.Get(fiber.HeaderXForwardedFor); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			ip = strings.TrimSpace(first)
		} else {
			ip = strings.TrimSpace(fwd)
		}
	}
	return sessiondomain.DeviceInfo{
		UserAgent: c.Get(fiber.HeaderUserAgent),
		IPAddress: ip,
		Device:    c.Get("X-Device-Name"),
		Browser:   c.Get("X-Browser"),
		OS:        c.Get("X-OS"),
		Location:  c.Get("X-Location"),
	}
}
