package role

import (
	"encoding/json"
	"errors"

	"github.com/peoplehub/backoffice/internal/models"
	"gorm.io/gorm"
)

type seedRole struct {
	Key         string
	Name        string
	Description string
	Grants      []GrantInput
}

var systemRoles = []seedRole{
	{
		Key:         "admin",
		Name:        "Administrator",
		Description: "Full access to every resource",
		Grants: []GrantInput{
			{Resource: "users", ResourceName: "Users", Permissions: []string{"create", "read", "update", "delete"}},
			{Resource: "roles", ResourceName: "Roles", Permissions: []string{"create", "read", "update", "delete"}},
			{Resource: "employees", ResourceName: "Employees", Permissions: []string{"create", "read", "update", "delete"}},
			{Resource: "departments", ResourceName: "Departments", Permissions: []string{"create", "read", "update", "delete"}},
			{Resource: "positions", ResourceName: "Positions", Permissions: []string{"create", "read", "update", "delete"}},
			{Resource: "leave_types", ResourceName: "Leave Types", Permissions: []string{"create", "read", "update", "delete"}},
			{Resource: "leave_requests", ResourceName: "Leave Requests", Permissions: []string{"create", "read", "update", "delete"}},
			{Resource: "audit_logs", ResourceName: "Audit Logs", Permissions: []string{"read"}},
		},
	},
	{
		Key:         "hr",
		Name:        "Human Resources",
		Description: "Manages employee records and leave administration",
		Grants: []GrantInput{
			{Resource: "employees", ResourceName: "Employees", Permissions: []string{"read:all", "create", "update:all"}},
			{Resource: "users", ResourceName: "Users", Permissions: []string{"read:all", "update:all"}},
			{Resource: "departments", ResourceName: "Departments", Permissions: []string{"create", "read", "update"}},
			{Resource: "positions", ResourceName: "Positions", Permissions: []string{"create", "read", "update"}},
			{Resource: "leave_types", ResourceName: "Leave Types", Permissions: []string{"create", "read", "update"}},
			{Resource: "leave_requests", ResourceName: "Leave Requests", Permissions: []string{"read:all", "update:all"}},
			{Resource: "audit_logs", ResourceName: "Audit Logs", Permissions: []string{"read"}},
		},
	},
	{
		Key:         "manager",
		Name:        "Manager",
		Description: "Reads team records and reviews leave requests",
		Grants: []GrantInput{
			{Resource: "employees", ResourceName: "Employees", Permissions: []string{"read:all"}},
			{Resource: "leave_requests", ResourceName: "Leave Requests", Permissions: []string{"read:all", "update:all"}},
		},
	},
	{
		Key:         "employee",
		Name:        "Employee",
		Description: "Self-service access to own records",
		Grants: []GrantInput{
			{Resource: "employees", ResourceName: "Employees", Permissions: []string{"read:own"}},
			{Resource: "leave_requests", ResourceName: "Leave Requests", Permissions: []string{"create", "read:own", "update:own"}},
		},
	},
}

// SeedSystemRoles creates the built-in roles and their grants if they are
// missing. Existing rows are left untouched so operator edits to the active
// flag survive restarts.
func SeedSystemRoles(db *gorm.DB) error {
	for _, sr := range systemRoles {
		var role models.Role
		err := db.Where("key = ?", sr.Key).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role = models.Role{
				Key:         sr.Key,
				Name:        sr.Name,
				Description: sr.Description,
				IsSystem:    true,
				IsActive:    true,
			}
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		for _, g := range sr.Grants {
			var count int64
			if err := db.Model(&models.PermissionGrant{}).
				Where("role_key = ? AND resource = ?", sr.Key, g.Resource).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			tokens, _ := json.Marshal(g.Permissions)
			grant := models.PermissionGrant{
				RoleKey:      sr.Key,
				Resource:     g.Resource,
				ResourceName: g.ResourceName,
				Permissions:  tokens,
				IsActive:     true,
			}
			if err := db.Create(&grant).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
