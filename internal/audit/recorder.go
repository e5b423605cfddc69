package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/peoplehub/backoffice/internal/events"
	"github.com/peoplehub/backoffice/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Action classifications.
const (
	ActionCreated      = "CREATED"
	ActionUpdated      = "UPDATED"
	ActionDeleted      = "DELETED"
	ActionRoleAssigned = "ROLE_ASSIGNED"
	ActionRoleRevoked  = "ROLE_REVOKED"
)

// Sentinels used when the performer cannot be resolved.
const (
	SystemPerformer = "system"
	SystemEmail     = "system@backoffice.local"
	UnknownEmail    = "unknown@backoffice.local"
)

// FieldChange is one before/after pair in an UPDATED entry's metadata.
type FieldChange struct {
	Before interface{} `json:"before"`
	After  interface{} `json:"after"`
}

// Recorder observes writes on authorization-relevant collections and appends
// one immutable log entry per qualifying write. It is best-effort by design:
// recorder failures are logged and dropped, never surfaced to the write that
// triggered them.
type Recorder struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewRecorder(db *gorm.DB, log *zap.SugaredLogger) *Recorder {
	return &Recorder{db: db, log: log}
}

func (r *Recorder) Register(bus *events.Bus) {
	bus.Subscribe(events.CollectionRoles, r.Handle)
	bus.Subscribe(events.CollectionUsers, r.Handle)
}

// snapshot is the tracked view of a document: the fields the audit trail
// diffs, plus who touched it.
type snapshot struct {
	fields    map[string]interface{}
	email     string
	createdBy uint
	updatedBy uint
}

func takeSnapshot(doc interface{}) (snapshot, bool) {
	switch v := doc.(type) {
	case *models.Role:
		return snapshot{
			fields: map[string]interface{}{
				"name":        v.Name,
				"description": v.Description,
				"is_active":   v.IsActive,
			},
			createdBy: v.CreatedBy,
			updatedBy: v.UpdatedBy,
		}, true
	case *models.User:
		return snapshot{
			fields: map[string]interface{}{
				"name":      v.Name,
				"email":     v.Email,
				"phone":     v.Phone,
				"role":      v.Role,
				"is_active": v.IsActive,
			},
			email:     v.Email,
			createdBy: v.CreatedBy,
			updatedBy: v.UpdatedBy,
		}, true
	}
	return snapshot{}, false
}

// diff returns a change entry for every tracked field whose value differs,
// and nothing for unchanged fields.
func diff(before, after snapshot) map[string]FieldChange {
	changes := map[string]FieldChange{}
	for field, b := range before.fields {
		a := after.fields[field]
		if a != b {
			changes[field] = FieldChange{Before: b, After: a}
		}
	}
	return changes
}

// isSoftDelete is the deactivation-is-deletion rule: an update whose only
// tracked change flips is_active from true to false is semantically a
// deletion, not an edit.
func isSoftDelete(changes map[string]FieldChange) bool {
	if len(changes) != 1 {
		return false
	}
	ch, ok := changes["is_active"]
	if !ok {
		return false
	}
	return ch.Before == true && ch.After == false
}

// Handle classifies one change event and appends the matching entry.
func (r *Recorder) Handle(ev events.ChangeEvent) {
	entry, ok := r.classify(ev)
	if !ok {
		return
	}
	if err := r.db.Create(entry).Error; err != nil {
		r.log.Errorw("audit append failed",
			"event_id", ev.ID, "collection", ev.Collection, "doc_id", ev.DocID, "error", err)
	}
}

func (r *Recorder) classify(ev events.ChangeEvent) (*models.AuditLog, bool) {
	entry := &models.AuditLog{
		EventID:    ev.ID,
		Collection: ev.Collection,
		TargetID:   fmt.Sprintf("%d", ev.DocID),
		CreatedAt:  time.Now(),
	}

	switch {
	case ev.Before == nil && ev.After != nil:
		after, ok := takeSnapshot(ev.After)
		if !ok {
			return nil, false
		}
		entry.Action = ActionCreated
		entry.TargetEmail = after.email
		r.resolvePerformer(entry, after)

	case ev.Before != nil && ev.After != nil:
		before, ok := takeSnapshot(ev.Before)
		if !ok {
			return nil, false
		}
		after, ok := takeSnapshot(ev.After)
		if !ok {
			return nil, false
		}
		changes := diff(before, after)
		if len(changes) == 0 {
			return nil, false // nothing tracked changed
		}
		if isSoftDelete(changes) {
			entry.Action = ActionDeleted
		} else {
			entry.Action = ActionUpdated
		}
		raw, err := json.Marshal(changes)
		if err != nil {
			r.log.Errorw("audit diff marshal failed", "event_id", ev.ID, "error", err)
			return nil, false
		}
		entry.Metadata = raw
		entry.TargetEmail = after.email
		r.resolvePerformer(entry, after)

	case ev.Before != nil && ev.After == nil:
		before, ok := takeSnapshot(ev.Before)
		if !ok {
			return nil, false
		}
		entry.Action = ActionDeleted
		entry.Permanent = true
		entry.TargetEmail = before.email
		r.resolvePerformer(entry, before)

	default:
		return nil, false
	}

	return entry, true
}

// resolvePerformer fills PerformedBy from the snapshot's updated_by (falling
// back to created_by, then the system sentinel), and looks up a readable
// email with a sentinel on lookup failure.
func (r *Recorder) resolvePerformer(entry *models.AuditLog, s snapshot) {
	performer := s.updatedBy
	if performer == 0 {
		performer = s.createdBy
	}
	if performer == 0 {
		entry.PerformedBy = SystemPerformer
		entry.PerformedByEmail = SystemEmail
		return
	}

	entry.PerformedBy = fmt.Sprintf("%d", performer)

	var u models.User
	if err := r.db.Select("email").First(&u, performer).Error; err != nil {
		entry.PerformedByEmail = UnknownEmail
		return
	}
	entry.PerformedByEmail = u.Email
}

// Append writes an explicit entry (role assignment and revocation use this
// directly). Like Handle, failures are logged only.
func (r *Recorder) Append(tx *gorm.DB, entry *models.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return tx.Create(entry).Error
}
