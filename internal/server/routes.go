package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/peoplehub/backoffice/internal/assignment"
	"github.com/peoplehub/backoffice/internal/audit"
	"github.com/peoplehub/backoffice/internal/auth"
	"github.com/peoplehub/backoffice/internal/employee"
	"github.com/peoplehub/backoffice/internal/leave"
	"github.com/peoplehub/backoffice/internal/middleware"
	"github.com/peoplehub/backoffice/internal/reference"
	"github.com/peoplehub/backoffice/internal/role"
	"github.com/peoplehub/backoffice/internal/user"
)

func SetupRoutes(app *fiber.App, deps Deps) {
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS, PATCH",
	}))

	authHandler := &auth.Handler{Service: &auth.Service{DB: deps.DB, Bus: deps.Bus}}
	userHandler := &user.Handler{Service: &user.Service{DB: deps.DB, Bus: deps.Bus}, Checker: deps.Checker}
	roleHandler := &role.Handler{Service: &role.Service{DB: deps.DB, Bus: deps.Bus}}
	assignmentHandler := &assignment.Handler{Service: &assignment.Service{DB: deps.DB, Bus: deps.Bus, Recorder: deps.Recorder}}
	referenceHandler := &reference.Handler{Service: &reference.Service{DB: deps.DB, Bus: deps.Bus}}
	employeeHandler := &employee.Handler{Service: &employee.Service{DB: deps.DB}}
	leaveHandler := &leave.Handler{Service: &leave.Service{DB: deps.DB}}
	auditHandler := &audit.Handler{DB: deps.DB, Archiver: deps.Archiver}

	protect := func(resource, perm string) fiber.Handler {
		return middleware.PermissionProtected(deps.Checker, resource, perm)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Back office API is running",
		})
	})

	authGroup := app.Group("/auth")
	authGroup.Post("/register", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
	}), authHandler.RegisterHandler)
	authGroup.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 15 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), authHandler.LoginHandler)
	authGroup.Get("/google/login", authHandler.GoogleLoginHandler)
	authGroup.Get("/google/callback", authHandler.GoogleCallbackHandler)

	userGroup := app.Group("/users")
	userGroup.Use(auth.JWTProtected())
	userGroup.Get("/permissions/check", userHandler.CheckPermissionHandler)
	userGroup.Post("/", protect("users", "create"), userHandler.CreateUserHandler)
	userGroup.Get("/", protect("users", "read:own"), userHandler.ListUsersHandler)
	userGroup.Get("/:id", protect("users", "read:own"), userHandler.GetUserHandler)
	userGroup.Put("/:id", protect("users", "update"), userHandler.UpdateUserHandler)
	userGroup.Delete("/:id", protect("users", "delete"), userHandler.DeleteUserHandler)

	roleGroup := app.Group("/roles")
	roleGroup.Use(auth.JWTProtected())
	roleGroup.Post("/", protect("roles", "create"), roleHandler.CreateRoleHandler)
	roleGroup.Get("/", protect("roles", "read"), roleHandler.ListRolesHandler)
	roleGroup.Get("/:id", protect("roles", "read"), roleHandler.GetRoleHandler)
	roleGroup.Put("/:id", protect("roles", "update"), roleHandler.UpdateRoleHandler)
	roleGroup.Delete("/:id", protect("roles", "delete"), roleHandler.DeleteRoleHandler)
	roleGroup.Put("/:key/grants", protect("roles", "update"), roleHandler.UpsertGrantHandler)
	roleGroup.Delete("/:key/grants/:resource", protect("roles", "update"), roleHandler.DeleteGrantHandler)

	assignmentGroup := app.Group("/assignments")
	assignmentGroup.Use(auth.JWTProtected())
	assignmentGroup.Post("/assign", protect("roles", "update"), assignmentHandler.AssignRoleHandler)
	assignmentGroup.Post("/revoke", protect("roles", "update"), assignmentHandler.RevokeRoleHandler)
	assignmentGroup.Get("/history/:user_id", protect("roles", "read"), assignmentHandler.HistoryHandler)

	departmentGroup := app.Group("/departments")
	departmentGroup.Use(auth.JWTProtected())
	departmentGroup.Post("/", protect("departments", "create"), referenceHandler.CreateDepartmentHandler)
	departmentGroup.Get("/", protect("departments", "read"), referenceHandler.ListDepartmentsHandler)
	departmentGroup.Put("/:id", protect("departments", "update"), referenceHandler.UpdateDepartmentHandler)
	departmentGroup.Delete("/:id", protect("departments", "delete"), referenceHandler.DeleteDepartmentHandler)

	positionGroup := app.Group("/positions")
	positionGroup.Use(auth.JWTProtected())
	positionGroup.Post("/", protect("positions", "create"), referenceHandler.CreatePositionHandler)
	positionGroup.Get("/", protect("positions", "read"), referenceHandler.ListPositionsHandler)
	positionGroup.Put("/:id", protect("positions", "update"), referenceHandler.UpdatePositionHandler)
	positionGroup.Delete("/:id", protect("positions", "delete"), referenceHandler.DeletePositionHandler)

	leaveTypeGroup := app.Group("/leave-types")
	leaveTypeGroup.Use(auth.JWTProtected())
	leaveTypeGroup.Post("/", protect("leave_types", "create"), referenceHandler.CreateLeaveTypeHandler)
	leaveTypeGroup.Get("/", protect("leave_types", "read"), referenceHandler.ListLeaveTypesHandler)
	leaveTypeGroup.Put("/:id", protect("leave_types", "update"), referenceHandler.UpdateLeaveTypeHandler)
	leaveTypeGroup.Delete("/:id", protect("leave_types", "delete"), referenceHandler.DeleteLeaveTypeHandler)

	employeeGroup := app.Group("/employees")
	employeeGroup.Use(auth.JWTProtected())
	employeeGroup.Post("/", protect("employees", "create"), employeeHandler.CreateEmployeeHandler)
	employeeGroup.Get("/", protect("employees", "read:own"), employeeHandler.ListEmployeesHandler)
	employeeGroup.Get("/:id", protect("employees", "read:own"), employeeHandler.GetEmployeeHandler)
	employeeGroup.Put("/:id", protect("employees", "update"), employeeHandler.UpdateEmployeeHandler)
	employeeGroup.Delete("/:id", protect("employees", "delete"), employeeHandler.DeleteEmployeeHandler)

	leaveGroup := app.Group("/leave-requests")
	leaveGroup.Use(auth.JWTProtected())
	leaveGroup.Post("/", protect("leave_requests", "create"), leaveHandler.CreateLeaveRequestHandler)
	leaveGroup.Get("/", protect("leave_requests", "read:own"), leaveHandler.ListLeaveRequestsHandler)
	leaveGroup.Get("/:id", protect("leave_requests", "read:own"), leaveHandler.GetLeaveRequestHandler)
	leaveGroup.Put("/:id/decision", protect("leave_requests", "update"), leaveHandler.DecideLeaveRequestHandler)

	auditGroup := app.Group("/audit-logs")
	auditGroup.Use(auth.JWTProtected())
	auditGroup.Get("/", protect("audit_logs", "read"), auditHandler.ListHandler)
	auditGroup.Post("/export", protect("audit_logs", "read"), auditHandler.ExportHandler)
}
