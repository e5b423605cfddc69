package models

import (
	"time"

	"gorm.io/gorm"
)

// Dependent documents: each carries a cached copy of a reference entity's
// name next to its id. The copies may transiently diverge from the source;
// SyncedAt records the last fan-out or backfill touch.

type Employee struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         *uint          `gorm:"index" json:"user_id,omitempty"`
	Name           string         `gorm:"size:100" json:"name"`
	Email          string         `gorm:"size:100;index" json:"email"`
	Phone          string         `gorm:"size:30" json:"phone,omitempty"`
	DepartmentID   *uint          `gorm:"index" json:"department_id,omitempty"`
	DepartmentName string         `gorm:"size:100" json:"department_name,omitempty"`
	PositionID     *uint          `gorm:"index" json:"position_id,omitempty"`
	PositionName   string         `gorm:"size:100" json:"position_name,omitempty"`
	HireDate       *time.Time     `json:"hire_date,omitempty"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	SyncedAt       *time.Time     `json:"synced_at,omitempty"`
	CreatedBy      uint           `json:"created_by"`
	UpdatedBy      uint           `json:"updated_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

type Attendance struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	EmployeeID     uint           `gorm:"index" json:"employee_id"`
	DepartmentID   *uint          `gorm:"index" json:"department_id,omitempty"`
	DepartmentName string         `gorm:"size:100" json:"department_name,omitempty"`
	Date           time.Time      `gorm:"index" json:"date"`
	ClockIn        *time.Time     `json:"clock_in,omitempty"`
	ClockOut       *time.Time     `json:"clock_out,omitempty"`
	Status         string         `gorm:"size:20;default:'present'" json:"status"`
	SyncedAt       *time.Time     `json:"synced_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

type LeaveRequest struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	EmployeeID     uint           `gorm:"index" json:"employee_id"`
	DepartmentID   *uint          `gorm:"index" json:"department_id,omitempty"`
	DepartmentName string         `gorm:"size:100" json:"department_name,omitempty"`
	LeaveTypeID    uint           `gorm:"index" json:"leave_type_id"`
	LeaveTypeName  string         `gorm:"size:100" json:"leave_type_name,omitempty"`
	StartDate      time.Time      `json:"start_date"`
	EndDate        time.Time      `json:"end_date"`
	Status         string         `gorm:"size:20;default:'pending'" json:"status"`
	Reason         string         `json:"reason,omitempty"`
	SyncedAt       *time.Time     `json:"synced_at,omitempty"`
	CreatedBy      uint           `json:"created_by"`
	UpdatedBy      uint           `json:"updated_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

type LeaveEntitlement struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	EmployeeID    uint           `gorm:"index" json:"employee_id"`
	LeaveTypeID   uint           `gorm:"index" json:"leave_type_id"`
	LeaveTypeName string         `gorm:"size:100" json:"leave_type_name,omitempty"`
	Year          int            `gorm:"index" json:"year"`
	TotalDays     int            `json:"total_days"`
	UsedDays      int            `json:"used_days"`
	SyncedAt      *time.Time     `json:"synced_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

type PayrollRecord struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	EmployeeID     uint           `gorm:"index" json:"employee_id"`
	DepartmentID   *uint          `gorm:"index" json:"department_id,omitempty"`
	DepartmentName string         `gorm:"size:100" json:"department_name,omitempty"`
	PositionID     *uint          `gorm:"index" json:"position_id,omitempty"`
	PositionName   string         `gorm:"size:100" json:"position_name,omitempty"`
	Period         string         `gorm:"size:7;index" json:"period"`
	GrossPay       int64          `json:"gross_pay"`
	NetPay         int64          `json:"net_pay"`
	Status         string         `gorm:"size:20;default:'draft'" json:"status"`
	SyncedAt       *time.Time     `json:"synced_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
