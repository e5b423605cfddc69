package main

import (
	"log"
	"time"

	"github.com/peoplehub/backoffice/internal/audit"
	"github.com/peoplehub/backoffice/internal/config"
	"github.com/peoplehub/backoffice/internal/database"
	"github.com/peoplehub/backoffice/internal/denorm"
	"github.com/peoplehub/backoffice/internal/events"
	"github.com/peoplehub/backoffice/internal/logging"
	"github.com/peoplehub/backoffice/internal/permission"
	"github.com/peoplehub/backoffice/internal/role"
	"github.com/peoplehub/backoffice/internal/server"
	"github.com/peoplehub/backoffice/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("configuration error: ", err)
	}

	if err := utils.ValidateJWTSecret(); err != nil {
		log.Fatal("JWT configuration error: ", err)
	}

	zlog := logging.New()
	defer zlog.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		zlog.Fatalw("database connection failed", "error", err)
	}

	if err := database.Migrate(db); err != nil {
		zlog.Fatalw("migration failed", "error", err)
	}
	zlog.Infow("database migrated")

	if err := role.SeedSystemRoles(db); err != nil {
		zlog.Fatalw("seeding system roles failed", "error", err)
	}
	zlog.Infow("system roles seeded")

	bus := events.NewBus(zlog)

	propagator := denorm.NewPropagator(db, zlog)
	propagator.Register(bus)

	recorder := audit.NewRecorder(db, zlog)
	recorder.Register(bus)

	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewPublisher(zlog, cfg.KafkaBrokers, cfg.KafkaTopic)
		defer publisher.Close()
		bus.SubscribeAll(publisher.Mirror)
		zlog.Infow("change event mirror enabled", "topic", cfg.KafkaTopic)
	}

	var archiver *audit.Archiver
	if cfg.AuditBucket != "" {
		archiver, err = audit.NewArchiver(db, cfg.AuditBucket, cfg.AuditRegion)
		if err != nil {
			zlog.Fatalw("audit archive setup failed", "error", err)
		}
		zlog.Infow("audit archive enabled", "bucket", cfg.AuditBucket)
	}

	reconciler := denorm.NewReconciler(db, zlog)
	// Boot-time sweep repairs anything that drifted while the service was down
	// and builds the denormalized role permission maps.
	summary := reconciler.Run()
	zlog.Infow("boot backfill finished",
		"processed", summary.Totals.Processed,
		"updated", summary.Totals.Updated,
		"errored", summary.Totals.Errored)

	if cfg.BackfillInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.BackfillInterval)
			defer ticker.Stop()

			for range ticker.C {
				s := reconciler.Run()
				zlog.Infow("scheduled backfill finished",
					"processed", s.Totals.Processed,
					"updated", s.Totals.Updated,
					"errored", s.Totals.Errored)
			}
		}()
		zlog.Infow("scheduled backfill enabled", "interval", cfg.BackfillInterval)
	}

	app := server.New(server.Deps{
		DB:       db,
		Bus:      bus,
		Checker:  permission.NewChecker(db),
		Recorder: recorder,
		Archiver: archiver,
		Log:      zlog,
	})

	zlog.Infow("server starting", "addr", cfg.ServerAddr)
	if err := app.Listen(cfg.ServerAddr); err != nil {
		zlog.Fatalw("server exited", "error", err)
	}
}
