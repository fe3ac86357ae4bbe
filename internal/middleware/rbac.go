package middleware

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/spk-prodi-api/internal/utils"
)

// RequireTeacher admits Guru BK accounts only.
func RequireTeacher() fiber.Handler {
	return RequireRole(AuthRoleTeacher)
}

// RequireStudent admits student accounts only. Student routes read the student
// from the token, so a teacher must use the /students/:studentId routes instead.
func RequireStudent() fiber.Handler {
	return RequireRole(AuthRoleStudent)
}

// RequireRole ensures that the authenticated user holds one of roles. It must run
// after JWTProtected.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized == "" {
			continue
		}
		if _, seen := allowed[normalized]; !seen {
			names = append(names, normalized)
		}
		allowed[normalized] = struct{}{}
	}
	sort.Strings(names)
	denied := fmt.Sprintf("restricted to %s accounts", strings.Join(names, " or "))

	return func(c *fiber.Ctx) error {
		if _, ok := c.Locals("user_id").(uint); !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if _, ok := allowed[normalizeRoleValue(c.Locals("user_role"))]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, denied)
		}
		return c.Next()
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
