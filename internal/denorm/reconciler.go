package denorm

import (
	"encoding/json"
	"time"

	"github.com/peoplehub/backoffice/internal/events"
	"github.com/peoplehub/backoffice/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Counters tracks one collection's progress through a sweep.
type Counters struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Errored   int `json:"errored"`
}

func (c *Counters) add(o Counters) {
	c.Processed += o.Processed
	c.Updated += o.Updated
	c.Skipped += o.Skipped
	c.Errored += o.Errored
}

// Summary aggregates a full reconciliation run.
type Summary struct {
	StartedAt   time.Time            `json:"started_at"`
	FinishedAt  time.Time            `json:"finished_at"`
	Collections map[string]*Counters `json:"collections"`
	Totals      Counters             `json:"totals"`
}

// Reconciler re-derives every denormalized field from its source of truth
// and writes only actual differences. Every run is a complete stateless
// pass: no watermark, safe on demand, safe on a schedule, safe concurrently
// with live traffic. A second run over consistent data performs zero writes.
type Reconciler struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewReconciler(db *gorm.DB, log *zap.SugaredLogger) *Reconciler {
	return &Reconciler{db: db, log: log}
}

// Run sweeps reference entities before the documents that cache them:
// reference names into dependents, role names and ids into users, grant
// token sets into each role's permission map. Per-document errors are
// counted and skipped, never aborting the sweep.
func (r *Reconciler) Run() Summary {
	sum := Summary{
		StartedAt:   time.Now(),
		Collections: map[string]*Counters{},
	}
	bump := func(name string, c Counters) {
		if sum.Collections[name] == nil {
			sum.Collections[name] = &Counters{}
		}
		sum.Collections[name].add(c)
		sum.Totals.add(c)
	}

	for _, refType := range []string{events.CollectionDepartment, events.CollectionPosition, events.CollectionLeaveType} {
		names, err := r.loadNames(SourceTable[refType])
		if err != nil {
			r.log.Errorw("backfill: load reference names", "reference", refType, "error", err)
			bump(SourceTable[refType], Counters{Errored: 1})
			continue
		}
		for _, dep := range Fanout[refType] {
			bump(dep.Table, r.sweepDependent(dep, names))
		}
	}

	bump("users", r.sweepUsers())
	bump("roles", r.sweepRolePermissions())

	sum.FinishedAt = time.Now()
	r.log.Infow("backfill finished",
		"processed", sum.Totals.Processed, "updated", sum.Totals.Updated,
		"skipped", sum.Totals.Skipped, "errored", sum.Totals.Errored,
		"duration", sum.FinishedAt.Sub(sum.StartedAt).String())
	return sum
}

func (r *Reconciler) loadNames(table string) (map[uint]string, error) {
	names := map[uint]string{}
	lastID := uint(0)
	for {
		var rows []struct {
			ID   uint
			Name string
		}
		err := r.db.Table(table).
			Select("id, name").
			Where("deleted_at IS NULL").
			Where("id > ?", lastID).
			Order("id").
			Limit(PageSize).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return names, nil
		}
		for _, row := range rows {
			names[row.ID] = row.Name
		}
		lastID = rows[len(rows)-1].ID
	}
}

// sweepDependent walks one dependent collection comparing each cached name
// against the source map, rewriting only rows that differ.
func (r *Reconciler) sweepDependent(dep Dependent, names map[uint]string) Counters {
	var c Counters
	lastID := uint(0)

	for {
		var rows []struct {
			ID     uint
			RefID  *uint
			Cached string
		}
		err := r.db.Table(dep.Table).
			Select("id, " + dep.FKColumn + " AS ref_id, " + dep.NameColumn + " AS cached").
			Where("deleted_at IS NULL").
			Where("id > ?", lastID).
			Order("id").
			Limit(PageSize).
			Scan(&rows).Error
		if err != nil {
			r.log.Errorw("backfill: page query failed", "collection", dep.Table, "error", err)
			c.Errored++
			return c
		}
		if len(rows) == 0 {
			return c
		}
		lastID = rows[len(rows)-1].ID

		for _, row := range rows {
			c.Processed++
			if row.RefID == nil {
				c.Skipped++
				continue
			}
			want, ok := names[*row.RefID]
			if !ok || want == row.Cached {
				// Dangling references have no truth to derive from.
				c.Skipped++
				continue
			}
			err := r.db.Table(dep.Table).
				Where("id = ?", row.ID).
				Updates(map[string]interface{}{
					dep.NameColumn: want,
					"synced_at":    time.Now(),
				}).Error
			if err != nil {
				r.log.Errorw("backfill: row update failed",
					"collection", dep.Table, "id", row.ID, "error", err)
				c.Errored++
				continue
			}
			c.Updated++
		}
	}
}

// sweepUsers re-derives role_id and role_name from the authoritative role
// key on each user.
func (r *Reconciler) sweepUsers() Counters {
	var c Counters

	var roles []models.Role
	if err := r.db.Find(&roles).Error; err != nil {
		r.log.Errorw("backfill: load roles", "error", err)
		c.Errored++
		return c
	}
	byKey := map[string]models.Role{}
	for _, role := range roles {
		byKey[role.Key] = role
	}

	lastID := uint(0)
	for {
		var users []models.User
		err := r.db.Where("id > ?", lastID).Order("id").Limit(PageSize).Find(&users).Error
		if err != nil {
			r.log.Errorw("backfill: page users", "error", err)
			c.Errored++
			return c
		}
		if len(users) == 0 {
			return c
		}
		lastID = users[len(users)-1].ID

		for _, u := range users {
			c.Processed++
			role, ok := byKey[u.Role]
			if !ok {
				c.Skipped++
				continue
			}
			if u.RoleID != nil && *u.RoleID == role.ID && u.RoleName == role.Name {
				c.Skipped++
				continue
			}
			err := r.db.Model(&models.User{}).Where("id = ?", u.ID).
				Updates(map[string]interface{}{
					"role_id":   role.ID,
					"role_name": role.Name,
				}).Error
			if err != nil {
				r.log.Errorw("backfill: user update failed", "id", u.ID, "error", err)
				c.Errored++
				continue
			}
			c.Updated++
		}
	}
}

// sweepRolePermissions rebuilds each role's denormalized permission map from
// the grant rows, writing only when the rebuilt map differs.
func (r *Reconciler) sweepRolePermissions() Counters {
	var c Counters

	var roles []models.Role
	if err := r.db.Find(&roles).Error; err != nil {
		r.log.Errorw("backfill: load roles", "error", err)
		c.Errored++
		return c
	}

	for _, role := range roles {
		c.Processed++

		var grants []models.PermissionGrant
		if err := r.db.Where("role_key = ? AND is_active = ?", role.Key, true).Find(&grants).Error; err != nil {
			r.log.Errorw("backfill: load grants", "role", role.Key, "error", err)
			c.Errored++
			continue
		}

		perms := map[string]models.ResourcePermissions{}
		for _, grant := range grants {
			var tokens []string
			if len(grant.Permissions) > 0 {
				if err := json.Unmarshal(grant.Permissions, &tokens); err != nil {
					r.log.Errorw("backfill: decode grant tokens", "role", role.Key, "resource", grant.Resource, "error", err)
					continue
				}
			}
			perms[grant.Resource] = models.ResourcePermissions{
				Resource:     grant.Resource,
				ResourceName: grant.ResourceName,
				Permissions:  tokens,
			}
		}

		want, err := json.Marshal(perms)
		if err != nil {
			c.Errored++
			continue
		}

		current := map[string]models.ResourcePermissions{}
		if len(role.Permissions) > 0 {
			_ = json.Unmarshal(role.Permissions, &current)
		}
		have, _ := json.Marshal(current)
		if string(have) == string(want) {
			c.Skipped++
			continue
		}

		if err := r.db.Model(&models.Role{}).Where("id = ?", role.ID).
			Update("permissions", want).Error; err != nil {
			r.log.Errorw("backfill: role permission map update failed", "role", role.Key, "error", err)
			c.Errored++
			continue
		}
		c.Updated++
	}
	return c
}
