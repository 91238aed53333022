package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"catalog/pkg/logger"
)

// PingFunc reports whether a dependency is reachable.
type PingFunc func(ctx context.Context) error

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	pingDB  PingFunc
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler that pings the database on every check.
func NewHealthHandler(pingDB PingFunc) *HealthHandler {
	return &HealthHandler{
		pingDB:  pingDB,
		timeout: 2 * time.Second,
	}
}

// RegisterRoutes registers the health route with the Fiber router.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth reports service status. It answers 503 when the database is down.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	status := fiber.StatusOK
	database := "up"

	if h.pingDB != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
		defer cancel()

		if err := h.pingDB(ctx); err != nil {
			logger.Warn(c.UserContext()).Err(err).Msg("Health check: database unreachable")
			status = fiber.StatusServiceUnavailable
			database = "down"
		}
	}

	state := "healthy"
	if status != fiber.StatusOK {
		state = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":   state,
		"time":     time.Now().Format(time.RFC3339),
		"database": database,
	})
}
