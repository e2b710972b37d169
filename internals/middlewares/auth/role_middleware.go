package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/abassolaiya/phibitechbackend/internals/constants"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
)

// IsAdmin reports whether the authenticated caller is an admin.
func IsAdmin(c *fiber.Ctx) bool {
	return helper.GetUserRole(c) == constants.RoleAdmin
}

// CanManage is true for the resource owner and for admins.
func CanManage(c *fiber.Ctx, ownerID string) bool {
	if IsAdmin(c) {
		return true
	}
	uid, err := helper.GetUserIDFromToken(c)
	return err == nil && uid.String() == ownerID
}
