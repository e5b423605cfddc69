package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultRoleKey is the role new users start with and the role a user falls
// back to when their assignment is revoked.
const DefaultRoleKey = "employee"

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100" json:"name"`
	Email    string `gorm:"uniqueIndex;size:100" json:"email"`
	Phone    string `gorm:"size:30" json:"phone,omitempty"`
	Password string `gorm:"size:255" json:"-"`
	Provider string `gorm:"size:50" json:"provider"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
	// Role is the role key and is authoritative for authorization.
	Role string `gorm:"size:50;index;default:'employee'" json:"role"`
	// RoleID/RoleName are denormalized for display only, kept in sync by the
	// propagator. Never consulted by the permission evaluator.
	RoleID     *uint          `json:"role_id,omitempty"`
	RoleName   string         `gorm:"size:100" json:"role_name,omitempty"`
	EmployeeID *uint          `gorm:"index" json:"employee_id,omitempty"`
	CreatedBy  uint           `json:"created_by"`
	UpdatedBy  uint           `json:"updated_by"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
