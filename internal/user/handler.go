package user

import (
	"github.com/gofiber/fiber/v2"
	"github.com/peoplehub/backoffice/internal/permission"
	"github.com/peoplehub/backoffice/internal/response"
)

type Handler struct {
	Service *Service
	Checker *permission.Checker
}

func (h *Handler) CreateUserHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	var body struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Phone      string `json:"phone,omitempty"`
		Password   string `json:"password"`
		EmployeeID *uint  `json:"employee_id,omitempty"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if body.Email == "" || body.Password == "" || body.Name == "" {
		return response.ValidationError(c, map[string]string{
			"email":    "email is required",
			"password": "password is required",
			"name":     "name is required",
		})
	}

	u, err := h.Service.Create(CreateInput{
		Name:       body.Name,
		Email:      body.Email,
		Phone:      body.Phone,
		Password:   body.Password,
		EmployeeID: body.EmployeeID,
	}, actorID)
	if err != nil {
		return response.FromError(c, err, "User")
	}

	return response.Created(c, u, "User created successfully")
}

func (h *Handler) ListUsersHandler(c *fiber.Ctx) error {
	users, err := h.Service.List()
	if err != nil {
		return response.InternalError(c, "Failed to fetch users")
	}
	return response.Success(c, users, "Users retrieved successfully")
}

func (h *Handler) GetUserHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	u, err := h.Service.Get(uint(id))
	if err != nil {
		return response.FromError(c, err, "User")
	}
	return response.Success(c, u, "User retrieved successfully")
}

func (h *Handler) UpdateUserHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	var body struct {
		Name     *string `json:"name"`
		Email    *string `json:"email"`
		Phone    *string `json:"phone"`
		IsActive *bool   `json:"is_active"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	u, err := h.Service.Update(uint(id), UpdateInput{
		Name:     body.Name,
		Email:    body.Email,
		Phone:    body.Phone,
		IsActive: body.IsActive,
	}, actorID)
	if err != nil {
		return response.FromError(c, err, "User")
	}
	return response.Success(c, u, "User updated successfully")
}

func (h *Handler) DeleteUserHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	if err := h.Service.Delete(uint(id), actorID); err != nil {
		return response.FromError(c, err, "User")
	}
	return response.NoContent(c)
}

// CheckPermissionHandler answers "may I?" without performing the action.
// A denial is a successful check, not an error response.
func (h *Handler) CheckPermissionHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	resource := c.Query("resource")
	perm := c.Query("permission")
	if resource == "" || perm == "" {
		return response.ValidationError(c, map[string]string{
			"resource":   "resource is required",
			"permission": "permission is required",
		})
	}
	targetUserID := uint(c.QueryInt("target_user_id", 0))

	decision, err := h.Checker.Check(actorID, resource, perm, targetUserID)
	if err != nil {
		return response.FromError(c, err, "Actor")
	}

	return response.Success(c, fiber.Map{
		"allowed": decision.Allowed,
		"scope":   decision.Scope,
		"reason":  decision.Reason,
	}, "Permission check evaluated")
}
