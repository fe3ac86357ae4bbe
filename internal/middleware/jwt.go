package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/spk-prodi-api/internal/token"
	"github.com/noah-isme/spk-prodi-api/internal/utils"
)

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(tokenString string) (token.Identity, error)
}

// JWTProtected validates the bearer token and stores the caller in Locals as
// user_id (uint) and user_role (lower-case string).
func JWTProtected(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get(fiber.HeaderAuthorization)
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		identity, err := parser.Parse(tokenString)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals("user_id", identity.UserID)
		c.Locals("user_role", strings.ToLower(strings.TrimSpace(identity.Role)))

		return c.Next()
	}
}

// CurrentUser returns the authenticated caller placed in Locals by JWTProtected.
func CurrentUser(c *fiber.Ctx) (uint, string, bool) {
	userID, ok := c.Locals("user_id").(uint)
	if !ok || userID == 0 {
		return 0, "", false
	}
	return userID, normalizeRoleValue(c.Locals("user_role")), true
}
