package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/peoplehub/backoffice/internal/apperr"
	"github.com/peoplehub/backoffice/internal/permission"
	"github.com/peoplehub/backoffice/internal/response"
)

// PermissionProtected gates a route on the evaluator. Own-scoped checks take
// the target owner from the target_user_id query param; absent means the
// caller's own records. The resolved scope is stashed in locals for handlers
// that filter result sets by it.
func PermissionProtected(checker *permission.Checker, resource, perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID, ok := c.Locals("user_id").(uint)
		if !ok || actorID == 0 {
			return response.Unauthorized(c, "Missing actor identity")
		}

		targetUserID := uint(c.QueryInt("target_user_id", 0))

		decision, err := checker.Check(actorID, resource, perm, targetUserID)
		if err != nil {
			if errors.Is(err, apperr.ErrInvalidArgument) {
				return response.BadRequest(c, err.Error(), nil)
			}
			return response.FromError(c, err, "Actor")
		}
		if !decision.Allowed {
			return response.Forbidden(c, decision.Reason)
		}

		c.Locals("permission_scope", decision.Scope)
		return c.Next()
	}
}

// ScopeFromLocals returns the scope resolved by PermissionProtected.
func ScopeFromLocals(c *fiber.Ctx) permission.Scope {
	if s, ok := c.Locals("permission_scope").(permission.Scope); ok {
		return s
	}
	return permission.ScopeNone
}
