package reference

import (
	"github.com/gofiber/fiber/v2"
	"github.com/peoplehub/backoffice/internal/response"
	"github.com/peoplehub/backoffice/internal/utils"
)

type Handler struct {
	Service *Service
}

func paramID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) CreateDepartmentHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	var body struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if body.Name == "" {
		return response.ValidationError(c, map[string]string{"name": "name is required"})
	}

	dep, err := h.Service.CreateDepartment(body.Name, utils.Sanitize(body.Description), actorID)
	if err != nil {
		return response.FromError(c, err, "Department")
	}
	return response.Created(c, dep, "Department created successfully")
}

func (h *Handler) ListDepartmentsHandler(c *fiber.Ctx) error {
	deps, err := h.Service.ListDepartments()
	if err != nil {
		return response.InternalError(c, "Failed to fetch departments")
	}
	return response.Success(c, deps, "Departments retrieved successfully")
}

func (h *Handler) UpdateDepartmentHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid department ID", nil)
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

	dep, err := h.Service.UpdateDepartment(id, body.Name, body.Description, body.IsActive, actorID)
	if err != nil {
		return response.FromError(c, err, "Department")
	}
	return response.Success(c, dep, "Department updated successfully")
}

func (h *Handler) DeleteDepartmentHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid department ID", nil)
	}

	if err := h.Service.DeleteDepartment(id, actorID); err != nil {
		return response.FromError(c, err, "Department")
	}
	return response.Success(c, nil, "Department deleted successfully")
}

func (h *Handler) CreatePositionHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	var body struct {
		Name  string `json:"name"`
		Level int    `json:"level,omitempty"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if body.Name == "" {
		return response.ValidationError(c, map[string]string{"name": "name is required"})
	}

	pos, err := h.Service.CreatePosition(body.Name, body.Level, actorID)
	if err != nil {
		return response.FromError(c, err, "Position")
	}
	return response.Created(c, pos, "Position created successfully")
}

func (h *Handler) ListPositionsHandler(c *fiber.Ctx) error {
	positions, err := h.Service.ListPositions()
	if err != nil {
		return response.InternalError(c, "Failed to fetch positions")
	}
	return response.Success(c, positions, "Positions retrieved successfully")
}

func (h *Handler) UpdatePositionHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid position ID", nil)
	}

	var body struct {
		Name     *string `json:"name"`
		Level    *int    `json:"level"`
		IsActive *bool   `json:"is_active"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	pos, err := h.Service.UpdatePosition(id, body.Name, body.Level, body.IsActive, actorID)
	if err != nil {
		return response.FromError(c, err, "Position")
	}
	return response.Success(c, pos, "Position updated successfully")
}

func (h *Handler) DeletePositionHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid position ID", nil)
	}

	if err := h.Service.DeletePosition(id, actorID); err != nil {
		return response.FromError(c, err, "Position")
	}
	return response.Success(c, nil, "Position deleted successfully")
}

func (h *Handler) CreateLeaveTypeHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	var body struct {
		Name        string `json:"name"`
		DefaultDays int    `json:"default_days"`
		IsPaid      *bool  `json:"is_paid"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if body.Name == "" {
		return response.ValidationError(c, map[string]string{"name": "name is required"})
	}

	isPaid := true
	if body.IsPaid != nil {
		isPaid = *body.IsPaid
	}

	lt, err := h.Service.CreateLeaveType(body.Name, body.DefaultDays, isPaid, actorID)
	if err != nil {
		return response.FromError(c, err, "Leave type")
	}
	return response.Created(c, lt, "Leave type created successfully")
}

func (h *Handler) ListLeaveTypesHandler(c *fiber.Ctx) error {
	types, err := h.Service.ListLeaveTypes()
	if err != nil {
		return response.InternalError(c, "Failed to fetch leave types")
	}
	return response.Success(c, types, "Leave types retrieved successfully")
}

func (h *Handler) UpdateLeaveTypeHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid leave type ID", nil)
	}

	var body struct {
		Name        *string `json:"name"`
		DefaultDays *int    `json:"default_days"`
		IsPaid      *bool   `json:"is_paid"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	lt, err := h.Service.UpdateLeaveType(id, body.Name, body.DefaultDays, body.IsPaid, body.IsActive, actorID)
	if err != nil {
		return response.FromError(c, err, "Leave type")
	}
	return response.Success(c, lt, "Leave type updated successfully")
}

func (h *Handler) DeleteLeaveTypeHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid leave type ID", nil)
	}

	if err := h.Service.DeleteLeaveType(id, actorID); err != nil {
		return response.FromError(c, err, "Leave type")
	}
	return response.Success(c, nil, "Leave type deleted successfully")
}
