package auth

import (
	"github.com/gofiber/fiber/v2"

	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
)

// OnlyRolesSlice lets the request through when the caller holds one of allowedRoles.
// It must run after AuthMiddleware.
func OnlyRolesSlice(message string, allowedRoles []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(helper.LocUserRole).(string)
		if !ok || role == "" {
			return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - role not found")
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				return c.Next()
			}
		}

		return helper.JsonError(c, fiber.StatusForbidden, message)
	}
}
