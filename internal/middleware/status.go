package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// responseStatus is the status the client will see once err, if any, has been
// through the error handler.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// routePath is the matched route pattern, without the trailing slash fiber
// keeps on group roots.
func routePath(c *fiber.Ctx) string {
	route := c.Route().Path
	if len(route) > 1 {
		route = strings.TrimSuffix(route, "/")
	}
	return route
}
