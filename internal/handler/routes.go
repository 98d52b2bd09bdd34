package handler

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes mounts all auth routes on the app. requireAuth guards the
// endpoints that act on the caller's own account.
func SetupRoutes(app *fiber.App, auth *AuthHandler, health *HealthHandler, requireAuth fiber.Handler) {
	app.Get("/health", health.Check)

	v1 := app.Group("/api/v1/auth")

	v1.Post("/register", auth.Register)
	v1.Post("/login", auth.Login)
	v1.Post("/refresh", auth.Refresh)
	v1.Post("/forgot-password", auth.ForgotPassword)
	v1.Post("/reset-password", auth.ResetPassword)

	v1.Post("/logout", requireAuth, auth.Logout)
	v1.Post("/logout-all", requireAuth, auth.LogoutAll)
	v1.Post("/change-password", requireAuth, auth.ChangePassword)
	v1.Get("/sessions", requireAuth, auth.Sessions)
	v1.Get("/activity", requireAuth, auth.Activity)
	v1.Delete("/sessions/expired", requireAuth, auth.CleanupSessions)
}
