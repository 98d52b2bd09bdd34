package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"fintrack/backend/internal/blacklist"
	"fintrack/backend/internal/security"
)

// Locals keys set by Auth for downstream handlers.
const (
	localUserID         = "user_id"
	localSessionID      = "session_id"
	localRole           = "role"
	localTokenJTI       = "token_jti"
	localTokenExpiresAt = "token_expires_at"
)

// Auth validates the Bearer access token, rejects blacklisted tokens, and
// stores the caller's identity in Locals. bl may be nil, which disables the
// revocation check.
func Auth(tokens *security.TokenProvider, bl *blacklist.TokenBlacklist) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "missing authorization header")
		}
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return unauthorized(c, "invalid authorization header")
		}

		claims, err := tokens.ValidateAccess(token)
		if err != nil {
			return unauthorized(c, "invalid token")
		}

		issuedAt := time.Time{}
		if claims.IssuedAt != nil {
			issuedAt = claims.IssuedAt.Time
		}
		revoked, err := bl.IsBlacklisted(c.Context(), claims.Subject, claims.ID, issuedAt)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to verify token status",
			})
		}
		if revoked {
			return unauthorized(c, "token has been revoked")
		}

		c.Locals(localUserID, claims.Subject)
		c.Locals(localSessionID, claims.SessionID)
		c.Locals(localRole, claims.Role)
		c.Locals(localTokenJTI, claims.ID)
		if claims.ExpiresAt != nil {
			c.Locals(localTokenExpiresAt, claims.ExpiresAt.Time)
		}
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}

// UserID returns the authenticated user id set by Auth, or "".
func UserID(c *fiber.Ctx) string {
	s, _ := c.Locals(localUserID).(string)
	return s
}

// SessionID returns the caller's session id set by Auth, or "".
func SessionID(c *fiber.Ctx) string {
	s, _ := c.Locals(localSessionID).(string)
	return s
}

// Role returns the caller's role set by Auth, or "".
func Role(c *fiber.Ctx) string {
	s, _ := c.Locals(localRole).(string)
	return s
}

// TokenJTI returns the access token id set by Auth, or "".
func TokenJTI(c *fiber.Ctx) string {
	s, _ := c.Locals(localTokenJTI).(string)
	return s
}

// TokenExpiresAt returns the access token expiry set by Auth, or the zero
// time.
func TokenExpiresAt(c *fiber.Ctx) time.Time {
	t, _ := c.Locals(localTokenExpiresAt).(time.Time)
	return t
}
