package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/usercontext"
)

// RequireAPISessionAuth ensures a logged-in caller and returns JSON 401 otherwise.
func RequireAPISessionAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "unauthorized",
			"message": "Потрібно увійти в систему",
		})
	}
	return c.Next()
}

// RequireAPIAdmin ensures a logged-in admin: 401 for anonymous callers, 403
// for everybody else.
func RequireAPIAdmin(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return RequireAPISessionAuth(c)
	}
	if !usercontext.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "forbidden",
			"message": "Доступ лише для адміністратора",
		})
	}
	return c.Next()
}
