package denorm

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/peoplehub/backoffice/internal/events"
	"github.com/peoplehub/backoffice/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// BatchSize is the store's maximum atomic write batch. Batches commit
	// independently: a crash mid fan-out leaves earlier batches applied and
	// later ones stale, to be repaired by the reconciler.
	BatchSize = 500
	// PageSize bounds each id query during fan-out and sweeps.
	PageSize = 200
)

// Propagator reacts to reference-entity change events and rewrites the
// cached name copy in every dependent collection. All failures are logged,
// never returned: propagation must not fail the triggering write.
type Propagator struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewPropagator(db *gorm.DB, log *zap.SugaredLogger) *Propagator {
	return &Propagator{db: db, log: log}
}

// Register subscribes the propagator to every collection it reacts to.
func (p *Propagator) Register(bus *events.Bus) {
	bus.Subscribe(events.CollectionDepartment, p.HandleReference)
	bus.Subscribe(events.CollectionPosition, p.HandleReference)
	bus.Subscribe(events.CollectionLeaveType, p.HandleReference)
	bus.Subscribe(events.CollectionGrants, p.HandleGrant)
	bus.Subscribe(events.CollectionRoles, p.HandleRole)
}

// referenceName pulls the canonical name out of a reference snapshot.
func referenceName(snapshot interface{}) (string, bool) {
	switch v := snapshot.(type) {
	case *models.Department:
		return v.Name, v != nil
	case *models.Position:
		return v.Name, v != nil
	case *models.LeaveType:
		return v.Name, v != nil
	}
	return "", false
}

// HandleReference fans a changed reference name out to every dependent
// collection listed for the entity type. Unchanged names are the dominant
// case and exit before touching the store.
func (p *Propagator) HandleReference(ev events.ChangeEvent) {
	if ev.Before == nil || ev.After == nil {
		return // creates have no dependents yet; deletes leave copies as-is
	}

	before, ok := referenceName(ev.Before)
	if !ok {
		return
	}
	after, ok := referenceName(ev.After)
	if !ok {
		return
	}
	if before == after {
		return
	}

	for _, dep := range Fanout[ev.Collection] {
		updated, err := p.syncDependent(dep, ev.DocID, after)
		if err != nil {
			// One collection failing must not prevent syncing the rest.
			p.log.Errorw("fan-out failed for collection",
				"event_id", ev.ID, "reference", ev.Collection, "ref_id", ev.DocID,
				"dependent", dep.Table, "error", err)
			continue
		}
		p.log.Infow("fan-out synced collection",
			"event_id", ev.ID, "reference", ev.Collection, "ref_id", ev.DocID,
			"dependent", dep.Table, "updated", updated, "name", after)
	}
}

// syncDependent rewrites dep's cached name for every row referencing refID.
// Ids are read in pages and written in independent batches of BatchSize.
func (p *Propagator) syncDependent(dep Dependent, refID uint, name string) (int64, error) {
	var updated int64
	lastID := uint(0)

	for {
		var ids []uint
		err := p.db.Table(dep.Table).
			Where(dep.FKColumn+" = ?", refID).
			Where("deleted_at IS NULL").
			Where("id > ?", lastID).
			Order("id").
			Limit(PageSize).
			Pluck("id", &ids).Error
		if err != nil {
			return updated, err
		}
		if len(ids) == 0 {
			return updated, nil
		}
		lastID = ids[len(ids)-1]

		for start := 0; start < len(ids); start += BatchSize {
			end := start + BatchSize
			if end > len(ids) {
				end = len(ids)
			}
			res := p.db.Table(dep.Table).
				Where("id IN ?", ids[start:end]).
				Updates(map[string]interface{}{
					dep.NameColumn: name,
					"synced_at":    time.Now(),
				})
			if res.Error != nil {
				return updated, res.Error
			}
			updated += res.RowsAffected
		}
	}
}

// HandleGrant maintains the role's denormalized permissions map: upsert the
// resource entry on grant create/update, remove it on delete.
func (p *Propagator) HandleGrant(ev events.ChangeEvent) {
	var grant *models.PermissionGrant
	if ev.After != nil {
		grant, _ = ev.After.(*models.PermissionGrant)
	} else if ev.Before != nil {
		grant, _ = ev.Before.(*models.PermissionGrant)
	}
	if grant == nil {
		return
	}

	var role models.Role
	if err := p.db.Where("key = ?", grant.RoleKey).First(&role).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			p.log.Errorw("load role for grant sync", "event_id", ev.ID, "role", grant.RoleKey, "error", err)
		}
		return
	}

	perms := map[string]models.ResourcePermissions{}
	if len(role.Permissions) > 0 {
		if err := json.Unmarshal(role.Permissions, &perms); err != nil {
			p.log.Errorw("decode role permission map", "event_id", ev.ID, "role", grant.RoleKey, "error", err)
			perms = map[string]models.ResourcePermissions{}
		}
	}

	if ev.After == nil {
		delete(perms, grant.Resource)
	} else {
		var tokens []string
		if len(grant.Permissions) > 0 {
			if err := json.Unmarshal(grant.Permissions, &tokens); err != nil {
				p.log.Errorw("decode grant tokens", "event_id", ev.ID, "role", grant.RoleKey, "error", err)
				return
			}
		}
		perms[grant.Resource] = models.ResourcePermissions{
			Resource:     grant.Resource,
			ResourceName: grant.ResourceName,
			Permissions:  tokens,
		}
	}

	raw, err := json.Marshal(perms)
	if err != nil {
		p.log.Errorw("encode role permission map", "event_id", ev.ID, "role", grant.RoleKey, "error", err)
		return
	}
	if err := p.db.Model(&models.Role{}).Where("id = ?", role.ID).
		Update("permissions", raw).Error; err != nil {
		p.log.Errorw("write role permission map", "event_id", ev.ID, "role", grant.RoleKey, "error", err)
	}
}

// HandleRole rewrites the cached role name on every user pointing at a
// renamed role, batched like any other fan-out.
func (p *Propagator) HandleRole(ev events.ChangeEvent) {
	if ev.Before == nil || ev.After == nil {
		return
	}
	before, ok := ev.Before.(*models.Role)
	if !ok {
		return
	}
	after, ok := ev.After.(*models.Role)
	if !ok {
		return
	}
	if before.Name == after.Name {
		return
	}

	dep := Dependent{Table: "users", FKColumn: "role_id", NameColumn: "role_name"}
	updated, err := p.syncRoleName(dep, after.ID, after.Name)
	if err != nil {
		p.log.Errorw("role name fan-out failed",
			"event_id", ev.ID, "role", after.Key, "error", err)
		return
	}
	p.log.Infow("role name fan-out synced",
		"event_id", ev.ID, "role", after.Key, "updated", updated, "name", after.Name)
}

// syncRoleName is syncDependent without the synced_at column, which the
// users table does not carry.
func (p *Propagator) syncRoleName(dep Dependent, refID uint, name string) (int64, error) {
	var updated int64
	lastID := uint(0)

	for {
		var ids []uint
		err := p.db.Table(dep.Table).
			Where(dep.FKColumn+" = ?", refID).
			Where("deleted_at IS NULL").
			Where("id > ?", lastID).
			Order("id").
			Limit(PageSize).
			Pluck("id", &ids).Error
		if err != nil {
			return updated, err
		}
		if len(ids) == 0 {
			return updated, nil
		}
		lastID = ids[len(ids)-1]

		for start := 0; start < len(ids); start += BatchSize {
			end := start + BatchSize
			if end > len(ids) {
				end = len(ids)
			}
			res := p.db.Table(dep.Table).
				Where("id IN ?", ids[start:end]).
				Update(dep.NameColumn, name)
			if res.Error != nil {
				return updated, res.Error
			}
			updated += res.RowsAffected
		}
	}
}
