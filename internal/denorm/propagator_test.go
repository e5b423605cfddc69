package denorm

import (
	"encoding/json"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/peoplehub/backoffice/internal/events"
	"github.com/peoplehub/backoffice/internal/logging"
	"github.com/peoplehub/backoffice/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func denormDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.PermissionGrant{},
		&models.Department{},
		&models.Position{},
		&models.LeaveType{},
		&models.Employee{},
		&models.Attendance{},
		&models.LeaveRequest{},
		&models.LeaveEntitlement{},
		&models.PayrollRecord{},
	))
	return db
}

func TestHandleReferenceDepartmentRename(t *testing.T) {
	db := denormDB(t)
	p := NewPropagator(db, logging.NewNop())

	dept := models.Department{Name: "Engineering", IsActive: true}
	require.NoError(t, db.Create(&dept).Error)
	other := models.Department{Name: "Sales", IsActive: true}
	require.NoError(t, db.Create(&other).Error)

	require.NoError(t, db.Create(&models.Employee{Name: "A", DepartmentID: &dept.ID, DepartmentName: "Engineering"}).Error)
	require.NoError(t, db.Create(&models.Employee{Name: "B", DepartmentID: &dept.ID, DepartmentName: "Engineering"}).Error)
	require.NoError(t, db.Create(&models.Employee{Name: "C", DepartmentID: &other.ID, DepartmentName: "Sales"}).Error)
	require.NoError(t, db.Create(&models.PayrollRecord{EmployeeID: 1, DepartmentID: &dept.ID, DepartmentName: "Engineering", Period: "2026-08"}).Error)
	require.NoError(t, db.Create(&models.LeaveRequest{EmployeeID: 1, DepartmentID: &dept.ID, DepartmentName: "Engineering", LeaveTypeID: 1}).Error)

	before := dept
	after := dept
	after.Name = "Platform Engineering"

	p.HandleReference(events.ChangeEvent{
		Collection: events.CollectionDepartment,
		DocID:      dept.ID,
		Before:     &before,
		After:      &after,
	})

	var emps []models.Employee
	require.NoError(t, db.Where("department_id = ?", dept.ID).Find(&emps).Error)
	for _, e := range emps {
		assert.Equal(t, "Platform Engineering", e.DepartmentName)
		assert.NotNil(t, e.SyncedAt)
	}

	var payroll models.PayrollRecord
	require.NoError(t, db.First(&payroll).Error)
	assert.Equal(t, "Platform Engineering", payroll.DepartmentName)

	var leave models.LeaveRequest
	require.NoError(t, db.First(&leave).Error)
	assert.Equal(t, "Platform Engineering", leave.DepartmentName)

	// A document pointing at a different department is untouched.
	var unaffected models.Employee
	require.NoError(t, db.Where("department_id = ?", other.ID).First(&unaffected).Error)
	assert.Equal(t, "Sales", unaffected.DepartmentName)
	assert.Nil(t, unaffected.SyncedAt)
}

func TestHandleReferenceNoopWhenUnchanged(t *testing.T) {
	db := denormDB(t)
	p := NewPropagator(db, logging.NewNop())

	dept := models.Department{Name: "Engineering", IsActive: true}
	require.NoError(t, db.Create(&dept).Error)
	require.NoError(t, db.Create(&models.Employee{Name: "A", DepartmentID: &dept.ID, DepartmentName: "Engineering"}).Error)

	same := dept
	p.HandleReference(events.ChangeEvent{
		Collection: events.CollectionDepartment,
		DocID:      dept.ID,
		Before:     &dept,
		After:      &same,
	})

	var emp models.Employee
	require.NoError(t, db.First(&emp).Error)
	assert.Nil(t, emp.SyncedAt, "unchanged name must not touch dependents")
}

func TestHandleReferenceIgnoresCreateAndDelete(t *testing.T) {
	db := denormDB(t)
	p := NewPropagator(db, logging.NewNop())

	dept := models.Department{Name: "Engineering"}
	require.NoError(t, db.Create(&dept).Error)
	require.NoError(t, db.Create(&models.Employee{Name: "A", DepartmentID: &dept.ID, DepartmentName: "Engineering"}).Error)

	p.HandleReference(events.ChangeEvent{Collection: events.CollectionDepartment, DocID: dept.ID, After: &dept})
	p.HandleReference(events.ChangeEvent{Collection: events.CollectionDepartment, DocID: dept.ID, Before: &dept})

	var emp models.Employee
	require.NoError(t, db.First(&emp).Error)
	assert.Nil(t, emp.SyncedAt)
}

func TestHandleGrantMaintainsPermissionMap(t *testing.T) {
	db := denormDB(t)
	p := NewPropagator(db, logging.NewNop())

	role := models.Role{Key: "hr", Name: "HR", IsActive: true}
	require.NoError(t, db.Create(&role).Error)

	grant := models.PermissionGrant{
		RoleKey:      "hr",
		Resource:     "employees",
		ResourceName: "Employees",
		Permissions:  datatypes.JSON(`["read:all","create"]`),
		IsActive:     true,
	}
	require.NoError(t, db.Create(&grant).Error)

	p.HandleGrant(events.ChangeEvent{Collection: events.CollectionGrants, DocID: grant.ID, After: &grant})

	var reloaded models.Role
	require.NoError(t, db.First(&reloaded, role.ID).Error)
	perms := map[string]models.ResourcePermissions{}
	require.NoError(t, json.Unmarshal(reloaded.Permissions, &perms))
	assert.Equal(t, []string{"read:all", "create"}, perms["employees"].Permissions)
	assert.Equal(t, "Employees", perms["employees"].ResourceName)

	// Deleting the grant removes the entry.
	p.HandleGrant(events.ChangeEvent{Collection: events.CollectionGrants, DocID: grant.ID, Before: &grant})

	require.NoError(t, db.First(&reloaded, role.ID).Error)
	perms = map[string]models.ResourcePermissions{}
	require.NoError(t, json.Unmarshal(reloaded.Permissions, &perms))
	_, ok := perms["employees"]
	assert.False(t, ok)
}

func TestHandleRoleRename(t *testing.T) {
	db := denormDB(t)
	p := NewPropagator(db, logging.NewNop())

	role := models.Role{Key: "hr", Name: "HR Staff", IsActive: true}
	require.NoError(t, db.Create(&role).Error)

	require.NoError(t, db.Create(&models.User{Email: "a@test.com", Role: "hr", RoleID: &role.ID, RoleName: "HR Staff"}).Error)
	require.NoError(t, db.Create(&models.User{Email: "b@test.com", Role: "employee", RoleName: "Employee"}).Error)

	before := role
	after := role
	after.Name = "People Ops"

	p.HandleRole(events.ChangeEvent{Collection: events.CollectionRoles, DocID: role.ID, Before: &before, After: &after})

	var u models.User
	require.NoError(t, db.Where("email = ?", "a@test.com").First(&u).Error)
	assert.Equal(t, "People Ops", u.RoleName)

	u = models.User{}
	require.NoError(t, db.Where("email = ?", "b@test.com").First(&u).Error)
	assert.Equal(t, "Employee", u.RoleName)
}
