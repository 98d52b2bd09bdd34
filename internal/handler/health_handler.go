package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Pinger is the connectivity probe a health check runs against a backing
// store.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports readiness for load balancers and orchestration.
type HealthHandler struct {
	db    Pinger
	redis Pinger
}

// NewHealthHandler returns a health handler. Either pinger may be nil, which
// skips that probe.
func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Check handles GET /health.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := fiber.StatusOK
	result := fiber.Map{"status": "ok"}
	if h.db != nil {
		if err := h.db.PingContext(c.Context()); err != nil {
			status = fiber.StatusServiceUnavailable
			result["status"] = "degraded"
			result["database"] = "unreachable"
		}
	}
	if h.redis != nil {
		if err := h.redis.PingContext(c.Context()); err != nil {
			status = fiber.StatusServiceUnavailable
			result["status"] = "degraded"
			result["redis"] = "unreachable"
		}
	}
	return c.Status(status).JSON(result)
}
