package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/peoplehub/backoffice/internal/response"
	"github.com/peoplehub/backoffice/internal/utils"
)

// JWTProtected validates the bearer token and stashes the actor id in locals.
// Authorization decisions happen downstream against the stored role, never
// against token claims.
func JWTProtected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return response.Unauthorized(c, "Invalid token format")
		}

		userID, err := utils.ParseJWT(tokenParts[1])
		if err != nil || userID == 0 {
			return response.Unauthorized(c, "Invalid or expired token")
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}
