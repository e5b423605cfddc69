package reference_test

import (
	"fmt"
	"testing"

	"github.com/peoplehub/backoffice/internal/models"
	"github.com/peoplehub/backoffice/internal/testutils"
	"github.com/stretchr/testify/assert"
)

func TestDepartmentHandlers(t *testing.T) {
	env := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, env.DB, "admin@test.com", "password", "admin")
	token := testutils.GetAuthToken(t, admin.ID, admin.Role)

	t.Run("Success - Create department", func(t *testing.T) {
		body := map[string]interface{}{"name": "Engineering", "description": "Builds the product"}

		resp, err := testutils.MakeRequest(env.App, "POST", "/departments", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)
		testutils.AssertSuccess(t, resp)
	})

	t.Run("Error - Duplicate name", func(t *testing.T) {
		body := map[string]interface{}{"name": "Engineering"}

		resp, err := testutils.MakeRequest(env.App, "POST", "/departments", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 409, resp.Code)
		testutils.AssertError(t, resp, "CONFLICT")
	})

	t.Run("Rename fans out to dependent documents", func(t *testing.T) {
		var dep models.Department
		env.DB.Where("name = ?", "Engineering").First(&dep)

		employees := []models.Employee{
			{Name: "A", Email: "a@test.com", DepartmentID: &dep.ID, DepartmentName: dep.Name, IsActive: true},
			{Name: "B", Email: "b@test.com", DepartmentID: &dep.ID, DepartmentName: dep.Name, IsActive: true},
			{Name: "C", Email: "c@test.com", IsActive: true},
		}
		for i := range employees {
			assert.NoError(t, env.DB.Create(&employees[i]).Error)
		}
		att := models.Attendance{EmployeeID: employees[0].ID, DepartmentID: &dep.ID, DepartmentName: dep.Name}
		assert.NoError(t, env.DB.Create(&att).Error)

		body := map[string]interface{}{"name": "Platform Engineering"}
		resp, err := testutils.MakeRequest(env.App, "PUT", fmt.Sprintf("/departments/%d", dep.ID), body, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		env.Drain()

		var synced models.Employee
		env.DB.First(&synced, employees[0].ID)
		assert.Equal(t, "Platform Engineering", synced.DepartmentName)
		assert.NotNil(t, synced.SyncedAt)

		var untouched models.Employee
		env.DB.First(&untouched, employees[2].ID)
		assert.Empty(t, untouched.DepartmentName)

		var attSynced models.Attendance
		env.DB.First(&attSynced, att.ID)
		assert.Equal(t, "Platform Engineering", attSynced.DepartmentName)
	})

	t.Run("Error - Delete while referenced", func(t *testing.T) {
		var dep models.Department
		env.DB.Where("name = ?", "Platform Engineering").First(&dep)

		resp, err := testutils.MakeRequest(env.App, "DELETE", fmt.Sprintf("/departments/%d", dep.ID), nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 409, resp.Code)
		testutils.AssertError(t, resp, "FAILED_PRECONDITION")
	})

	t.Run("Error - HR cannot delete departments", func(t *testing.T) {
		hr := testutils.CreateTestUser(t, env.DB, "hr@test.com", "password", "hr")
		hrToken := testutils.GetAuthToken(t, hr.ID, hr.Role)

		var dep models.Department
		env.DB.Where("name = ?", "Platform Engineering").First(&dep)

		resp, err := testutils.MakeRequest(env.App, "DELETE", fmt.Sprintf("/departments/%d", dep.ID), nil, hrToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
		testutils.AssertError(t, resp, "FORBIDDEN")
	})
}

func TestLeaveTypeHandlers(t *testing.T) {
	env := testutils.SetupTestApp(t)

	hr := testutils.CreateTestUser(t, env.DB, "hr@test.com", "password", "hr")
	token := testutils.GetAuthToken(t, hr.ID, hr.Role)

	t.Run("Success - HR manages leave types", func(t *testing.T) {
		body := map[string]interface{}{"name": "Annual Leave", "default_days": 20}

		resp, err := testutils.MakeRequest(env.App, "POST", "/leave-types", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)
		testutils.AssertSuccess(t, resp)
	})

	t.Run("Rename fans out to leave requests and entitlements", func(t *testing.T) {
		var lt models.LeaveType
		env.DB.Where("name = ?", "Annual Leave").First(&lt)

		emp := models.Employee{Name: "D", Email: "d@test.com", IsActive: true}
		assert.NoError(t, env.DB.Create(&emp).Error)
		ent := models.LeaveEntitlement{EmployeeID: emp.ID, LeaveTypeID: lt.ID, LeaveTypeName: lt.Name, Year: 2026, TotalDays: 20}
		assert.NoError(t, env.DB.Create(&ent).Error)

		body := map[string]interface{}{"name": "Paid Time Off"}
		resp, err := testutils.MakeRequest(env.App, "PUT", fmt.Sprintf("/leave-types/%d", lt.ID), body, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		env.Drain()

		var fresh models.LeaveEntitlement
		env.DB.First(&fresh, ent.ID)
		assert.Equal(t, "Paid Time Off", fresh.LeaveTypeName)
	})
}
