package audit_test

import (
	"testing"

	"github.com/peoplehub/backoffice/internal/models"
	"github.com/peoplehub/backoffice/internal/testutils"
	"github.com/stretchr/testify/assert"
)

func TestListAuditLogsHandler(t *testing.T) {
	env := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, env.DB, "admin@test.com", "password", "admin")
	token := testutils.GetAuthToken(t, admin.ID, admin.Role)

	entries := []models.AuditLog{
		{EventID: "e1", Action: "CREATED", Collection: "users", TargetID: "1", PerformedBy: "system"},
		{EventID: "e2", Action: "UPDATED", Collection: "users", TargetID: "1", PerformedBy: "2"},
		{EventID: "e3", Action: "DELETED", Collection: "roles", TargetID: "7", PerformedBy: "2", Permanent: true},
	}
	for i := range entries {
		assert.NoError(t, env.DB.Create(&entries[i]).Error)
	}

	t.Run("Success - List with filters", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "GET", "/audit-logs?collection=users", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.True(t, result.Success)
		assert.Len(t, result.Data.([]interface{}), 2)
		assert.NotNil(t, result.Meta)
		assert.Equal(t, int64(2), result.Meta.Total)
	})

	t.Run("Success - Filter by action", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "GET", "/audit-logs?action=DELETED", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		records := result.Data.([]interface{})
		assert.Len(t, records, 1)
		assert.Equal(t, true, records[0].(map[string]interface{})["permanent"])
	})

	t.Run("Error - Employee cannot read the trail", func(t *testing.T) {
		emp := testutils.CreateTestUser(t, env.DB, "emp@test.com", "password", "employee")
		empToken := testutils.GetAuthToken(t, emp.ID, emp.Role)

		resp, err := testutils.MakeRequest(env.App, "GET", "/audit-logs", nil, empToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
		testutils.AssertError(t, resp, "FORBIDDEN")
	})
}

func TestExportHandlerUnconfigured(t *testing.T) {
	env := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, env.DB, "admin@test.com", "password", "admin")
	token := testutils.GetAuthToken(t, admin.ID, admin.Role)

	body := map[string]interface{}{
		"from": "2026-01-01T00:00:00Z",
		"to":   "2026-02-01T00:00:00Z",
	}

	resp, err := testutils.MakeRequest(env.App, "POST", "/audit-logs/export", body, token)
	assert.NoError(t, err)
	assert.Equal(t, 409, resp.Code)
	testutils.AssertError(t, resp, "FAILED_PRECONDITION")
}
