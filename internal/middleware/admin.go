package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AdminAuth guards the admin API with a static token, accepted either as
// a bearer token or in X-Admin-Token. An empty configured token disables
// the API entirely.
func AdminAuth(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "admin API is not configured",
			})
		}

		provided := c.Get("X-Admin-Token")
		if provided == "" {
			auth := c.Get(fiber.HeaderAuthorization)
			provided = strings.TrimPrefix(auth, "Bearer ")
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}
		return c.Next()
	}
}
