package middleware

import (
	"gridreserve-backend/internal/pkg/constants"
	"gridreserve-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthorizePermission returns a handler that checks the session party's role
// against PermissionRoles. Unconfigured permission -> 500; role not allowed
// -> 403.
func AuthorizePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		party := GetParty(c)
		if party == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		role := getRoleFromParty(party)
		if role == "" {
			return response.Error(c, "Authorization error", 500, nil)
		}
		roles, ok := constants.PermissionRoles[permission]
		if !ok || len(roles) == 0 {
			return response.Error(c, "Permission configuration error", 500, nil)
		}
		if !constants.AllowedRole(permission, role) {
			return response.Error(c, "Party is forbidden from performing this action", 403, nil)
		}
		return c.Next()
	}
}

func getRoleFromParty(party interface{}) string {
	m, ok := party.(map[string]interface{})
	if !ok {
		return ""
	}
	r, _ := m["role"].(string)
	return r
}
