package employee

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/peoplehub/backoffice/internal/middleware"
	"github.com/peoplehub/backoffice/internal/permission"
	"github.com/peoplehub/backoffice/internal/response"
)

type Handler struct {
	Service *Service
}

type employeeBody struct {
	UserID       *uint  `json:"user_id,omitempty"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	DepartmentID *uint  `json:"department_id,omitempty"`
	PositionID   *uint  `json:"position_id,omitempty"`
	HireDate     string `json:"hire_date,omitempty"`
}

func (b employeeBody) toInput() (Input, error) {
	in := Input{
		UserID:       b.UserID,
		Name:         b.Name,
		Email:        b.Email,
		Phone:        b.Phone,
		DepartmentID: b.DepartmentID,
		PositionID:   b.PositionID,
	}
	if b.HireDate != "" {
		parsed, err := time.Parse("2006-01-02", b.HireDate)
		if err != nil {
			return in, err
		}
		in.HireDate = &parsed
	}
	return in, nil
}

func (h *Handler) CreateEmployeeHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	var body employeeBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if body.Name == "" || body.Email == "" {
		return response.ValidationError(c, map[string]string{
			"name":  "name is required",
			"email": "email is required",
		})
	}

	in, err := body.toInput()
	if err != nil {
		return response.ValidationError(c, map[string]string{"hire_date": "must be YYYY-MM-DD"})
	}

	e, err := h.Service.Create(in, actorID)
	if err != nil {
		return response.FromError(c, err, "Employee")
	}
	return response.Created(c, e, "Employee created successfully")
}

func (h *Handler) ListEmployeesHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)
	ownOnly := middleware.ScopeFromLocals(c) == permission.ScopeOwn

	employees, err := h.Service.List(actorID, ownOnly)
	if err != nil {
		return response.InternalError(c, "Failed to fetch employees")
	}
	return response.Success(c, employees, "Employees retrieved successfully")
}

func (h *Handler) GetEmployeeHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid employee ID", nil)
	}

	e, err := h.Service.Get(uint(id))
	if err != nil {
		return response.FromError(c, err, "Employee")
	}

	if middleware.ScopeFromLocals(c) == permission.ScopeOwn {
		if e.UserID == nil || *e.UserID != actorID {
			return response.Forbidden(c, permission.ReasonScopeViolation)
		}
	}

	return response.Success(c, e, "Employee retrieved successfully")
}

func (h *Handler) UpdateEmployeeHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid employee ID", nil)
	}

	var body employeeBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	in, err := body.toInput()
	if err != nil {
		return response.ValidationError(c, map[string]string{"hire_date": "must be YYYY-MM-DD"})
	}

	e, err := h.Service.Update(uint(id), in, actorID)
	if err != nil {
		return response.FromError(c, err, "Employee")
	}
	return response.Success(c, e, "Employee updated successfully")
}

func (h *Handler) DeleteEmployeeHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid employee ID", nil)
	}

	if err := h.Service.Delete(uint(id), actorID); err != nil {
		return response.FromError(c, err, "Employee")
	}
	return response.NoContent(c)
}
