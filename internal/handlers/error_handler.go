package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"catalog/pkg/logger"
)

// ErrorHandler is the application-wide fiber.ErrorHandler. Routing errors keep
// their status and message; anything else becomes a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return writeError(c, fe.Code, fe.Message)
	}

	logger.Error(c.UserContext()).
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("Unhandled request error")

	return writeError(c, fiber.StatusInternalServerError, msgInternalError)
}
