package audit

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/peoplehub/backoffice/internal/models"
	"github.com/peoplehub/backoffice/internal/response"
	"gorm.io/gorm"
)

type Handler struct {
	DB       *gorm.DB
	Archiver *Archiver
}

// ListHandler returns audit entries, newest first, filterable by action,
// collection, performer and target.
func (h *Handler) ListHandler(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	query := h.DB.Model(&models.AuditLog{})
	if v := c.Query("action"); v != "" {
		query = query.Where("action = ?", v)
	}
	if v := c.Query("collection"); v != "" {
		query = query.Where("collection = ?", v)
	}
	if v := c.Query("performed_by"); v != "" {
		query = query.Where("performed_by = ?", v)
	}
	if v := c.Query("target_id"); v != "" {
		query = query.Where("target_id = ?", v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalError(c, "Failed to count audit logs")
	}

	var entries []models.AuditLog
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return response.InternalError(c, "Failed to fetch audit logs")
	}

	return response.SuccessWithMeta(c, entries, response.CalculateMeta(page, limit, total), "Audit logs retrieved successfully")
}

// ExportHandler dumps a date range of entries to the archive bucket.
func (h *Handler) ExportHandler(c *fiber.Ctx) error {
	if h.Archiver == nil {
		return response.FailedPrecondition(c, "Audit archive is not configured")
	}

	var body struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	from, err := time.Parse(time.RFC3339, body.From)
	if err != nil {
		return response.ValidationError(c, map[string]string{"from": "must be RFC3339"})
	}
	to, err := time.Parse(time.RFC3339, body.To)
	if err != nil {
		return response.ValidationError(c, map[string]string{"to": "must be RFC3339"})
	}
	if !to.After(from) {
		return response.ValidationError(c, map[string]string{"to": "must be after from"})
	}

	key, count, err := h.Archiver.Export(from, to)
	if err != nil {
		return response.InternalError(c, "Failed to export audit logs")
	}

	return response.Success(c, fiber.Map{"key": key, "count": count}, "Audit logs exported successfully")
}
