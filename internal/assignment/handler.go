package assignment

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/peoplehub/backoffice/internal/response"
	"github.com/peoplehub/backoffice/internal/utils"
)

type Handler struct {
	Service *Service
}

func (h *Handler) AssignRoleHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	var body struct {
		UserID    uint   `json:"user_id"`
		Role      string `json:"role"`
		ExpiresAt string `json:"expires_at,omitempty"`
		Reason    string `json:"reason,omitempty"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if body.UserID == 0 || body.Role == "" {
		return response.ValidationError(c, map[string]string{
			"user_id": "user_id is required",
			"role":    "role is required",
		})
	}

	var expiresAt *time.Time
	if body.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, body.ExpiresAt)
		if err != nil {
			return response.ValidationError(c, map[string]string{"expires_at": "must be RFC3339"})
		}
		if parsed.Before(time.Now()) {
			return response.ValidationError(c, map[string]string{"expires_at": "must be in the future"})
		}
		expiresAt = &parsed
	}

	record, err := h.Service.AssignRole(body.UserID, body.Role, actorID, expiresAt, utils.Sanitize(body.Reason))
	if err != nil {
		return response.FromError(c, err, "Role or user")
	}

	return response.Created(c, record, "Role assigned successfully")
}

func (h *Handler) RevokeRoleHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	var body struct {
		UserID uint   `json:"user_id"`
		Reason string `json:"reason,omitempty"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if body.UserID == 0 {
		return response.ValidationError(c, map[string]string{"user_id": "user_id is required"})
	}

	if err := h.Service.RevokeRole(body.UserID, actorID, utils.Sanitize(body.Reason)); err != nil {
		return response.FromError(c, err, "Active role assignment")
	}

	return response.Success(c, nil, "Role revoked successfully")
}

func (h *Handler) HistoryHandler(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("user_id")
	if err != nil || userID < 1 {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	records, err := h.Service.History(uint(userID))
	if err != nil {
		return response.InternalError(c, "Failed to fetch assignment history")
	}

	return response.Success(c, records, "Assignment history retrieved successfully")
}
