package audit

import (
	"encoding/json"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/peoplehub/backoffice/internal/events"
	"github.com/peoplehub/backoffice/internal/logging"
	"github.com/peoplehub/backoffice/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func auditDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Role{}, &models.AuditLog{}))
	return db
}

func lastEntry(t *testing.T, db *gorm.DB) models.AuditLog {
	t.Helper()
	var entry models.AuditLog
	require.NoError(t, db.Order("id DESC").First(&entry).Error)
	return entry
}

func TestRecorderClassifiesCreate(t *testing.T) {
	db := auditDB(t)
	r := NewRecorder(db, logging.NewNop())

	admin := models.User{ID: 10, Email: "admin@test.com", Role: "admin", IsActive: true}
	require.NoError(t, db.Create(&admin).Error)

	role := &models.Role{ID: 1, Key: "hr", Name: "HR", IsActive: true, CreatedBy: 10}
	r.Handle(events.ChangeEvent{ID: "ev-1", Collection: events.CollectionRoles, DocID: 1, After: role})

	entry := lastEntry(t, db)
	assert.Equal(t, ActionCreated, entry.Action)
	assert.Equal(t, "roles", entry.Collection)
	assert.Equal(t, "1", entry.TargetID)
	assert.Equal(t, "10", entry.PerformedBy)
	assert.Equal(t, "admin@test.com", entry.PerformedByEmail)
	assert.False(t, entry.Permanent)
}

func TestRecorderDiffsTrackedFields(t *testing.T) {
	db := auditDB(t)
	r := NewRecorder(db, logging.NewNop())

	before := &models.Role{ID: 1, Key: "hr", Name: "HR", Description: "old", IsActive: true}
	after := &models.Role{ID: 1, Key: "hr", Name: "People Ops", Description: "old", IsActive: true, UpdatedBy: 10}

	r.Handle(events.ChangeEvent{Collection: events.CollectionRoles, DocID: 1, Before: before, After: after})

	entry := lastEntry(t, db)
	assert.Equal(t, ActionUpdated, entry.Action)

	changes := map[string]FieldChange{}
	require.NoError(t, json.Unmarshal(entry.Metadata, &changes))
	require.Contains(t, changes, "name")
	assert.Equal(t, "HR", changes["name"].Before)
	assert.Equal(t, "People Ops", changes["name"].After)
	// Unchanged fields are omitted.
	assert.NotContains(t, changes, "description")
	assert.NotContains(t, changes, "is_active")
}

func TestRecorderSoftDeleteReclassification(t *testing.T) {
	db := auditDB(t)
	r := NewRecorder(db, logging.NewNop())

	before := &models.Role{ID: 1, Key: "hr", Name: "HR", IsActive: true}
	after := &models.Role{ID: 1, Key: "hr", Name: "HR", IsActive: false}

	r.Handle(events.ChangeEvent{Collection: events.CollectionRoles, DocID: 1, Before: before, After: after})

	entry := lastEntry(t, db)
	assert.Equal(t, ActionDeleted, entry.Action)
	assert.False(t, entry.Permanent)
}

func TestRecorderDeactivationWithOtherChangesStaysUpdated(t *testing.T) {
	db := auditDB(t)
	r := NewRecorder(db, logging.NewNop())

	before := &models.Role{ID: 1, Key: "hr", Name: "HR", IsActive: true}
	after := &models.Role{ID: 1, Key: "hr", Name: "People Ops", IsActive: false}

	r.Handle(events.ChangeEvent{Collection: events.CollectionRoles, DocID: 1, Before: before, After: after})

	entry := lastEntry(t, db)
	assert.Equal(t, ActionUpdated, entry.Action)
}

func TestRecorderReactivationIsUpdate(t *testing.T) {
	db := auditDB(t)
	r := NewRecorder(db, logging.NewNop())

	before := &models.Role{ID: 1, Key: "hr", Name: "HR", IsActive: false}
	after := &models.Role{ID: 1, Key: "hr", Name: "HR", IsActive: true}

	r.Handle(events.ChangeEvent{Collection: events.CollectionRoles, DocID: 1, Before: before, After: after})

	entry := lastEntry(t, db)
	assert.Equal(t, ActionUpdated, entry.Action)
}

func TestRecorderHardDelete(t *testing.T) {
	db := auditDB(t)
	r := NewRecorder(db, logging.NewNop())

	before := &models.User{ID: 5, Email: "gone@test.com", Role: "employee", IsActive: true}
	r.Handle(events.ChangeEvent{Collection: events.CollectionUsers, DocID: 5, Before: before})

	entry := lastEntry(t, db)
	assert.Equal(t, ActionDeleted, entry.Action)
	assert.True(t, entry.Permanent)
	assert.Equal(t, "gone@test.com", entry.TargetEmail)
}

func TestRecorderPerformerFallbacks(t *testing.T) {
	db := auditDB(t)
	r := NewRecorder(db, logging.NewNop())

	t.Run("system sentinel when no performer recorded", func(t *testing.T) {
		role := &models.Role{ID: 1, Key: "hr", Name: "HR", IsActive: true}
		r.Handle(events.ChangeEvent{Collection: events.CollectionRoles, DocID: 1, After: role})

		entry := lastEntry(t, db)
		assert.Equal(t, SystemPerformer, entry.PerformedBy)
		assert.Equal(t, SystemEmail, entry.PerformedByEmail)
	})

	t.Run("unknown email sentinel when lookup fails", func(t *testing.T) {
		role := &models.Role{ID: 2, Key: "ops", Name: "Ops", IsActive: true, CreatedBy: 999}
		r.Handle(events.ChangeEvent{Collection: events.CollectionRoles, DocID: 2, After: role})

		entry := lastEntry(t, db)
		assert.Equal(t, "999", entry.PerformedBy)
		assert.Equal(t, UnknownEmail, entry.PerformedByEmail)
	})
}

func TestRecorderSkipsUntrackedChanges(t *testing.T) {
	db := auditDB(t)
	r := NewRecorder(db, logging.NewNop())

	// Only the denormalized permission map changed; nothing tracked differs.
	before := &models.Role{ID: 1, Key: "hr", Name: "HR", IsActive: true}
	after := &models.Role{ID: 1, Key: "hr", Name: "HR", IsActive: true, UpdatedBy: 3}

	r.Handle(events.ChangeEvent{Collection: events.CollectionRoles, DocID: 1, Before: before, After: after})

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
