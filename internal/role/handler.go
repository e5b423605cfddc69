package role

import (
	"github.com/gofiber/fiber/v2"
	"github.com/peoplehub/backoffice/internal/response"
	"github.com/peoplehub/backoffice/internal/utils"
)

type Handler struct {
	Service *Service
}

func (h *Handler) CreateRoleHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	var body struct {
		Key         string       `json:"key"`
		Name        string       `json:"name"`
		Description string       `json:"description,omitempty"`
		Grants      []GrantInput `json:"grants,omitempty"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if body.Key == "" || body.Name == "" {
		return response.ValidationError(c, map[string]string{
			"key":  "key is required",
			"name": "name is required",
		})
	}

	role, err := h.Service.CreateRole(body.Key, body.Name, utils.Sanitize(body.Description), body.Grants, actorID)
	if err != nil {
		return response.FromError(c, err, "Role")
	}

	return response.Created(c, role, "Role created successfully")
}

func (h *Handler) ListRolesHandler(c *fiber.Ctx) error {
	roles, err := h.Service.ListRoles()
	if err != nil {
		return response.InternalError(c, "Failed to fetch roles")
	}
	return response.Success(c, roles, "Roles retrieved successfully")
}

func (h *Handler) GetRoleHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid role ID", nil)
	}

	role, err := h.Service.GetRole(uint(id))
	if err != nil {
		return response.FromError(c, err, "Role")
	}
	return response.Success(c, role, "Role retrieved successfully")
}

func (h *Handler) UpdateRoleHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid role ID", nil)
	}

	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if body.Description != nil {
		clean := utils.Sanitize(*body.Description)
		body.Description = &clean
	}

	role, err := h.Service.UpdateRole(uint(id), body.Name, body.Description, body.IsActive, actorID)
	if err != nil {
		return response.FromError(c, err, "Role")
	}
	return response.Success(c, role, "Role updated successfully")
}

func (h *Handler) DeleteRoleHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid role ID", nil)
	}

	if err := h.Service.DeleteRole(uint(id), actorID); err != nil {
		return response.FromError(c, err, "Role")
	}
	return response.Success(c, nil, "Role deleted successfully")
}

func (h *Handler) UpsertGrantHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)
	roleKey := c.Params("key")

	var body GrantInput
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if body.Resource == "" {
		return response.ValidationError(c, map[string]string{"resource": "resource is required"})
	}

	grant, err := h.Service.UpsertGrant(roleKey, body, actorID)
	if err != nil {
		return response.FromError(c, err, "Role")
	}
	return response.Success(c, grant, "Grant saved successfully")
}

func (h *Handler) DeleteGrantHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)
	roleKey := c.Params("key")
	resource := c.Params("resource")

	if err := h.Service.DeleteGrant(roleKey, resource, actorID); err != nil {
		return response.FromError(c, err, "Grant")
	}
	return response.Success(c, nil, "Grant deleted successfully")
}
