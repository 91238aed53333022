package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"catalog/pkg/logger"
)

// RequestLogger logs every request before dispatch and once it completes.
// It never alters the outcome of the request.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := requestIDOf(c)

		logger.Info(c.UserContext()).
			Str("method", c.Method()).
			Str("url", c.OriginalURL()).
			Str("ip", c.IP()).
			Str("request_id", requestID).
			Time("received_at", start).
			Msg("Request received")

		err := c.Next()

		duration := time.Since(start)
		status := responseStatus(c, err)

		event := logger.Info(c.UserContext())
		if status >= fiber.StatusInternalServerError {
			event = logger.Error(c.UserContext())
		} else if status >= fiber.StatusBadRequest {
			event = logger.Warn(c.UserContext())
		}

		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration", duration).
			Int64("duration_ms", duration.Milliseconds()).
			Str("request_id", requestID).
			Msg("Request completed")

		return err
	}
}

func requestIDOf(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok && id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}
