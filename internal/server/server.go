package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/peoplehub/backoffice/internal/audit"
	"github.com/peoplehub/backoffice/internal/events"
	"github.com/peoplehub/backoffice/internal/permission"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps carries everything the HTTP layer needs. The bus and checker are
// shared with the background components, so they are injected rather than
// constructed here.
type Deps struct {
	DB       *gorm.DB
	Bus      *events.Bus
	Checker  *permission.Checker
	Recorder *audit.Recorder
	Archiver *audit.Archiver
	Log      *zap.SugaredLogger
}

func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})

	SetupRoutes(app, deps)

	return app
}
