package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/peoplehub/backoffice/internal/audit"
	"github.com/peoplehub/backoffice/internal/denorm"
	"github.com/peoplehub/backoffice/internal/events"
	"github.com/peoplehub/backoffice/internal/logging"
	"github.com/peoplehub/backoffice/internal/models"
	"github.com/peoplehub/backoffice/internal/permission"
	"github.com/peoplehub/backoffice/internal/role"
	"github.com/peoplehub/backoffice/internal/server"
	"github.com/peoplehub/backoffice/internal/utils"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err, "Failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.PermissionGrant{},
		&models.RoleAssignment{},
		&models.Department{},
		&models.Position{},
		&models.LeaveType{},
		&models.Employee{},
		&models.Attendance{},
		&models.LeaveRequest{},
		&models.LeaveEntitlement{},
		&models.PayrollRecord{},
		&models.AuditLog{},
	)
	assert.NoError(t, err, "Failed to migrate test database")

	return db
}

// Env bundles the app with the pieces tests need to reach behind the HTTP
// surface. Call Drain after writes to let asynchronous propagation settle.
type Env struct {
	App *fiber.App
	DB  *gorm.DB
	Bus *events.Bus
}

// Drain blocks until every published change event has been handled.
func (e *Env) Drain() {
	e.Bus.Wait()
}

func SetupTestApp(t *testing.T) *Env {
	db := TestDB(t)
	CreateTestRoles(t, db)

	log := logging.NewNop()
	bus := events.NewBus(log)
	denorm.NewPropagator(db, log).Register(bus)
	recorder := audit.NewRecorder(db, log)
	recorder.Register(bus)

	app := server.New(server.Deps{
		DB:       db,
		Bus:      bus,
		Checker:  permission.NewChecker(db),
		Recorder: recorder,
		Log:      log,
	})

	return &Env{App: app, DB: db, Bus: bus}
}

// CreateTestRoles seeds the system roles and grants, then runs the backfill
// once so the denormalized role permission maps exist.
func CreateTestRoles(t *testing.T, db *gorm.DB) {
	err := role.SeedSystemRoles(db)
	assert.NoError(t, err, "Failed to seed system roles")

	denorm.NewReconciler(db, logging.NewNop()).Run()
}

func CreateTestUser(t *testing.T, db *gorm.DB, email, password, roleKey string) *models.User {
	hashedPassword, _ := utils.HashPassword(password)

	var r models.Role
	if err := db.Where("key = ?", roleKey).First(&r).Error; err != nil {
		t.Fatalf("Failed to find role %q: %v. Make sure CreateTestRoles was called.", roleKey, err)
	}

	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Password: hashedPassword,
		Provider: "local",
		IsActive: true,
		Role:     r.Key,
		RoleID:   &r.ID,
		RoleName: r.Name,
	}

	err := db.Create(user).Error
	assert.NoError(t, err, "Failed to create test user")

	return user
}

func GetAuthToken(t *testing.T, userID uint, roleKey string) string {
	token, err := utils.GenerateJWT(userID, roleKey)
	assert.NoError(t, err, "Failed to generate test token")
	return token
}

func MakeRequest(app *fiber.App, method, url string, body interface{}, token string) (*httptest.ResponseRecorder, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()

	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode

	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

func ParseResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	if resp.Body.Len() == 0 {
		t.Log("Warning: Response body is empty")
		return
	}

	err := json.NewDecoder(resp.Body).Decode(v)
	if err != nil && err != io.EOF {
		t.Logf("Response body: %s", resp.Body.String())
		assert.NoError(t, err, "Failed to parse response")
	}
}

type StandardResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data"`
	Error   *ErrorDetail `json:"error"`
	Meta    *Meta        `json:"meta"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func AssertSuccess(t *testing.T, resp *httptest.ResponseRecorder) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.True(t, result.Success, "Expected success response")
	assert.Empty(t, result.Error, "Expected no error")
}

func AssertError(t *testing.T, resp *httptest.ResponseRecorder, expectedCode string) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.False(t, result.Success, "Expected error response")
	assert.NotNil(t, result.Error, "Expected error object")
	assert.Equal(t, expectedCode, result.Error.Code, "Error code mismatch")
}
