package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is append-only: rows are inserted once and never updated or
// deleted, so there is no UpdatedAt/DeletedAt.
type AuditLog struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	EventID          string         `gorm:"size:36;index" json:"event_id"`
	Action           string         `gorm:"size:30;index" json:"action"`
	Collection       string         `gorm:"size:50;index" json:"collection"`
	TargetID         string         `gorm:"size:50;index" json:"target_id"`
	TargetEmail      string         `gorm:"size:100" json:"target_email,omitempty"`
	PerformedBy      string         `gorm:"size:50;index" json:"performed_by"`
	PerformedByEmail string         `gorm:"size:100" json:"performed_by_email"`
	Permanent        bool           `gorm:"default:false" json:"permanent"`
	Metadata         datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
}
