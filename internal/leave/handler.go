package leave

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/peoplehub/backoffice/internal/middleware"
	"github.com/peoplehub/backoffice/internal/permission"
	"github.com/peoplehub/backoffice/internal/response"
	"github.com/peoplehub/backoffice/internal/utils"
)

type Handler struct {
	Service *Service
}

func (h *Handler) CreateLeaveRequestHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	var body struct {
		EmployeeID  uint   `json:"employee_id,omitempty"`
		LeaveTypeID uint   `json:"leave_type_id"`
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
		Reason      string `json:"reason,omitempty"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	start, err := time.Parse("2006-01-02", body.StartDate)
	if err != nil {
		return response.ValidationError(c, map[string]string{"start_date": "must be YYYY-MM-DD"})
	}
	end, err := time.Parse("2006-01-02", body.EndDate)
	if err != nil {
		return response.ValidationError(c, map[string]string{"end_date": "must be YYYY-MM-DD"})
	}

	req, err := h.Service.Create(CreateInput{
		EmployeeID:  body.EmployeeID,
		LeaveTypeID: body.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		Reason:      utils.Sanitize(body.Reason),
	}, actorID)
	if err != nil {
		return response.FromError(c, err, "Leave request")
	}
	return response.Created(c, req, "Leave request created successfully")
}

func (h *Handler) ListLeaveRequestsHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)
	ownOnly := middleware.ScopeFromLocals(c) == permission.ScopeOwn

	requests, err := h.Service.List(actorID, ownOnly, c.Query("status"))
	if err != nil {
		return response.InternalError(c, "Failed to fetch leave requests")
	}
	return response.Success(c, requests, "Leave requests retrieved successfully")
}

func (h *Handler) GetLeaveRequestHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid leave request ID", nil)
	}

	req, err := h.Service.Get(uint(id))
	if err != nil {
		return response.FromError(c, err, "Leave request")
	}

	if middleware.ScopeFromLocals(c) == permission.ScopeOwn && !h.Service.Owns(req, actorID) {
		return response.Forbidden(c, permission.ReasonScopeViolation)
	}

	return response.Success(c, req, "Leave request retrieved successfully")
}

// DecideLeaveRequestHandler approves or rejects a pending request. The route
// is gated on update:all, so no ownership check happens here.
func (h *Handler) DecideLeaveRequestHandler(c *fiber.Ctx) error {
	actorID := c.Locals("user_id").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid leave request ID", nil)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	req, err := h.Service.Decide(uint(id), body.Status, actorID)
	if err != nil {
		return response.FromError(c, err, "Leave request")
	}
	return response.Success(c, req, "Leave request updated successfully")
}
