package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Key         string `gorm:"size:50;uniqueIndex" json:"key"`
	Name        string `gorm:"size:100" json:"name"`
	Description string `json:"description"`
	IsSystem    bool   `gorm:"default:false" json:"is_system"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
	// Denormalized map resource -> ResourcePermissions, maintained by the
	// propagator from PermissionGrant writes. Display convenience only.
	Permissions datatypes.JSON `json:"permissions,omitempty"`
	CreatedBy   uint           `json:"created_by"`
	UpdatedBy   uint           `json:"updated_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// ResourcePermissions is one entry of Role.Permissions.
type ResourcePermissions struct {
	Resource     string   `json:"resource"`
	ResourceName string   `json:"resource_name"`
	Permissions  []string `json:"permissions"`
}

// PermissionGrant is the source of truth for what a role may do on a
// resource. One row per (role, resource) pair; tokens are either bare
// actions ("read") or scoped ("read:own").
type PermissionGrant struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RoleKey      string         `gorm:"size:50;index:idx_grant_role_resource,unique" json:"role_key"`
	Resource     string         `gorm:"size:50;index:idx_grant_role_resource,unique" json:"resource"`
	ResourceName string         `gorm:"size:100" json:"resource_name"`
	Permissions  datatypes.JSON `json:"permissions"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedBy    uint           `json:"created_by"`
	UpdatedBy    uint           `json:"updated_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// RoleAssignment is the historical record of a user holding a role. At most
// one active row per user; role changes deactivate the old row and insert a
// new one so the history stays auditable.
type RoleAssignment struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"index" json:"user_id"`
	RoleKey    string         `gorm:"size:50" json:"role_key"`
	AssignedBy uint           `json:"assigned_by"`
	IsActive   bool           `gorm:"index;default:true" json:"is_active"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	RevokedBy  *uint          `json:"revoked_by,omitempty"`
	RevokedAt  *time.Time     `json:"revoked_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
