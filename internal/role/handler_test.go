package role_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/peoplehub/backoffice/internal/models"
	"github.com/peoplehub/backoffice/internal/testutils"
	"github.com/stretchr/testify/assert"
)

func TestCreateRoleHandler(t *testing.T) {
	env := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, env.DB, "admin@test.com", "password", "admin")
	token := testutils.GetAuthToken(t, admin.ID, admin.Role)

	t.Run("Success - Create role with grants", func(t *testing.T) {
		body := map[string]interface{}{
			"key":         "auditor",
			"name":        "Auditor",
			"description": "Read-only compliance access",
			"grants": []map[string]interface{}{
				{"resource": "audit_logs", "permissions": []string{"read"}},
				{"resource": "employees", "permissions": []string{"read:all"}},
			},
		}

		resp, err := testutils.MakeRequest(env.App, "POST", "/roles", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)
		testutils.AssertSuccess(t, resp)

		var grants []models.PermissionGrant
		env.DB.Where("role_key = ?", "auditor").Find(&grants)
		assert.Len(t, grants, 2)
	})

	t.Run("Grant creation feeds the role permission map", func(t *testing.T) {
		env.Drain()

		var r models.Role
		assert.NoError(t, env.DB.Where("key = ?", "auditor").First(&r).Error)

		perms := map[string]models.ResourcePermissions{}
		assert.NoError(t, json.Unmarshal(r.Permissions, &perms))
		assert.Contains(t, perms, "audit_logs")
		assert.Contains(t, perms, "employees")
		assert.Equal(t, []string{"read:all"}, perms["employees"].Permissions)
	})

	t.Run("Error - Duplicate key", func(t *testing.T) {
		body := map[string]interface{}{"key": "auditor", "name": "Auditor Again"}

		resp, err := testutils.MakeRequest(env.App, "POST", "/roles", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 409, resp.Code)
		testutils.AssertError(t, resp, "CONFLICT")
	})

	t.Run("Error - Malformed permission token", func(t *testing.T) {
		body := map[string]interface{}{
			"key":  "broken",
			"name": "Broken",
			"grants": []map[string]interface{}{
				{"resource": "employees", "permissions": []string{"read:some"}},
			},
		}

		resp, err := testutils.MakeRequest(env.App, "POST", "/roles", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
		testutils.AssertError(t, resp, "BAD_REQUEST")
	})
}

func TestUpdateRoleHandler(t *testing.T) {
	env := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, env.DB, "admin@test.com", "password", "admin")
	token := testutils.GetAuthToken(t, admin.ID, admin.Role)

	var hrRole models.Role
	env.DB.Where("key = ?", "hr").First(&hrRole)

	t.Run("Error - System role cannot be renamed", func(t *testing.T) {
		body := map[string]interface{}{"name": "People Ops"}

		resp, err := testutils.MakeRequest(env.App, "PUT", fmt.Sprintf("/roles/%d", hrRole.ID), body, token)
		assert.NoError(t, err)
		assert.Equal(t, 409, resp.Code)
		testutils.AssertError(t, resp, "FAILED_PRECONDITION")
	})

	t.Run("Success - System role active flag is editable", func(t *testing.T) {
		body := map[string]interface{}{"is_active": false}

		resp, err := testutils.MakeRequest(env.App, "PUT", fmt.Sprintf("/roles/%d", hrRole.ID), body, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)
		testutils.AssertSuccess(t, resp)

		var r models.Role
		env.DB.First(&r, hrRole.ID)
		assert.False(t, r.IsActive)

		// Deactivated role denies everything it used to allow.
		hr := testutils.CreateTestUser(t, env.DB, "hr@test.com", "password", "hr")
		hrToken := testutils.GetAuthToken(t, hr.ID, hr.Role)
		listResp, err := testutils.MakeRequest(env.App, "GET", "/employees", nil, hrToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, listResp.Code)
	})

	t.Run("Success - Custom role rename fans out to users", func(t *testing.T) {
		body := map[string]interface{}{
			"key":  "contractor",
			"name": "Contractor",
		}
		resp, err := testutils.MakeRequest(env.App, "POST", "/roles", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)

		var r models.Role
		env.DB.Where("key = ?", "contractor").First(&r)

		u := testutils.CreateTestUser(t, env.DB, "contractor@test.com", "password", "contractor")

		rename := map[string]interface{}{"name": "External Contractor"}
		resp, err = testutils.MakeRequest(env.App, "PUT", fmt.Sprintf("/roles/%d", r.ID), rename, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		env.Drain()

		var fresh models.User
		env.DB.First(&fresh, u.ID)
		assert.Equal(t, "External Contractor", fresh.RoleName)
	})
}

func TestDeleteRoleHandler(t *testing.T) {
	env := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, env.DB, "admin@test.com", "password", "admin")
	token := testutils.GetAuthToken(t, admin.ID, admin.Role)

	t.Run("Error - System role cannot be deleted", func(t *testing.T) {
		var r models.Role
		env.DB.Where("key = ?", "manager").First(&r)

		resp, err := testutils.MakeRequest(env.App, "DELETE", fmt.Sprintf("/roles/%d", r.ID), nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 409, resp.Code)
		testutils.AssertError(t, resp, "FAILED_PRECONDITION")
	})

	t.Run("Error - Role still assigned to users", func(t *testing.T) {
		body := map[string]interface{}{"key": "temp", "name": "Temp"}
		resp, err := testutils.MakeRequest(env.App, "POST", "/roles", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)

		testutils.CreateTestUser(t, env.DB, "temp@test.com", "password", "temp")

		var r models.Role
		env.DB.Where("key = ?", "temp").First(&r)

		resp, err = testutils.MakeRequest(env.App, "DELETE", fmt.Sprintf("/roles/%d", r.ID), nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 409, resp.Code)
		testutils.AssertError(t, resp, "FAILED_PRECONDITION")
	})

	t.Run("Success - Unassigned custom role", func(t *testing.T) {
		body := map[string]interface{}{
			"key":  "intern",
			"name": "Intern",
			"grants": []map[string]interface{}{
				{"resource": "employees", "permissions": []string{"read:own"}},
			},
		}
		resp, err := testutils.MakeRequest(env.App, "POST", "/roles", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)

		var r models.Role
		env.DB.Where("key = ?", "intern").First(&r)

		resp, err = testutils.MakeRequest(env.App, "DELETE", fmt.Sprintf("/roles/%d", r.ID), nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var grants []models.PermissionGrant
		env.DB.Where("role_key = ?", "intern").Find(&grants)
		assert.Empty(t, grants)
	})
}

func TestGrantHandlers(t *testing.T) {
	env := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, env.DB, "admin@test.com", "password", "admin")
	token := testutils.GetAuthToken(t, admin.ID, admin.Role)

	t.Run("Success - Upsert widens a grant and the evaluator sees it", func(t *testing.T) {
		emp := testutils.CreateTestUser(t, env.DB, "emp@test.com", "password", "employee")
		empToken := testutils.GetAuthToken(t, emp.ID, emp.Role)

		// Employees cannot list departments by default.
		resp, err := testutils.MakeRequest(env.App, "GET", "/departments", nil, empToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)

		body := map[string]interface{}{
			"resource":    "departments",
			"permissions": []string{"read"},
		}
		resp, err = testutils.MakeRequest(env.App, "PUT", "/roles/employee/grants", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)
		env.Drain()

		resp, err = testutils.MakeRequest(env.App, "GET", "/departments", nil, empToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)
	})

	t.Run("Error - Invalid token rejected before write", func(t *testing.T) {
		body := map[string]interface{}{
			"resource":    "departments",
			"permissions": []string{"fly"},
		}
		resp, err := testutils.MakeRequest(env.App, "PUT", "/roles/employee/grants", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
		testutils.AssertError(t, resp, "BAD_REQUEST")
	})

	t.Run("Success - Delete grant removes the map entry", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "DELETE", "/roles/employee/grants/departments", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)
		env.Drain()

		var r models.Role
		env.DB.Where("key = ?", "employee").First(&r)
		perms := map[string]models.ResourcePermissions{}
		assert.NoError(t, json.Unmarshal(r.Permissions, &perms))
		assert.NotContains(t, perms, "departments")
	})

	t.Run("Error - Unknown role", func(t *testing.T) {
		body := map[string]interface{}{
			"resource":    "departments",
			"permissions": []string{"read"},
		}
		resp, err := testutils.MakeRequest(env.App, "PUT", "/roles/ghost/grants", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
		testutils.AssertError(t, resp, "NOT_FOUND")
	})
}
