package auth_test

import (
	"testing"

	"github.com/peoplehub/backoffice/internal/models"
	"github.com/peoplehub/backoffice/internal/testutils"
	"github.com/stretchr/testify/assert"
)

func TestRegisterHandler(t *testing.T) {
	env := testutils.SetupTestApp(t)

	t.Run("Success - Register with default role", func(t *testing.T) {
		body := map[string]interface{}{
			"name":     "New Hire",
			"email":    "newhire@test.com",
			"password": "password123",
		}

		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/register", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)
		testutils.AssertSuccess(t, resp)

		var u models.User
		assert.NoError(t, env.DB.Where("email = ?", "newhire@test.com").First(&u).Error)
		assert.Equal(t, models.DefaultRoleKey, u.Role)
		assert.True(t, u.IsActive)
	})

	t.Run("Error - Duplicate email", func(t *testing.T) {
		body := map[string]interface{}{
			"name":     "Duplicate",
			"email":    "newhire@test.com",
			"password": "password123",
		}

		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/register", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 409, resp.Code)
		testutils.AssertError(t, resp, "CONFLICT")
	})

	t.Run("Error - Short password", func(t *testing.T) {
		body := map[string]interface{}{
			"name":     "Weak",
			"email":    "weak@test.com",
			"password": "short",
		}

		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/register", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)
		testutils.AssertError(t, resp, "VALIDATION_ERROR")
	})
}

func TestLoginHandler(t *testing.T) {
	env := testutils.SetupTestApp(t)
	testutils.CreateTestUser(t, env.DB, "employee@test.com", "password", "employee")

	t.Run("Success - Valid credentials", func(t *testing.T) {
		body := map[string]interface{}{
			"email":    "employee@test.com",
			"password": "password",
		}

		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/login", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.True(t, result.Success)

		data := result.Data.(map[string]interface{})
		assert.NotEmpty(t, data["access_token"])
	})

	t.Run("Error - Wrong password", func(t *testing.T) {
		body := map[string]interface{}{
			"email":    "employee@test.com",
			"password": "wrong",
		}

		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/login", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
		testutils.AssertError(t, resp, "UNAUTHORIZED")
	})

	t.Run("Error - Deactivated account", func(t *testing.T) {
		u := testutils.CreateTestUser(t, env.DB, "inactive@test.com", "password", "employee")
		env.DB.Model(&models.User{}).Where("id = ?", u.ID).Update("is_active", false)

		body := map[string]interface{}{
			"email":    "inactive@test.com",
			"password": "password",
		}

		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/login", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})
}

func TestJWTProtected(t *testing.T) {
	env := testutils.SetupTestApp(t)

	t.Run("Error - Missing token", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "GET", "/users", nil, "")
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})

	t.Run("Error - Garbage token", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "GET", "/users", nil, "not-a-token")
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})
}
