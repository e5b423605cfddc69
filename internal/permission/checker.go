package permission

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/peoplehub/backoffice/internal/apperr"
	"github.com/peoplehub/backoffice/internal/models"
	"gorm.io/gorm"
)

// Checker is the store-backed entry point used by every protected operation.
// It loads the actor's role and the matching grant, then defers to Evaluate.
type Checker struct {
	db *gorm.DB
}

func NewChecker(db *gorm.DB) *Checker {
	return &Checker{db: db}
}

// Check evaluates whether actorID may perform perm on resource. When the
// request is own-scoped, targetUserID names the record owner; zero means the
// actor's own record. A missing or inactive role or grant is a plain deny,
// not an error.
func (c *Checker) Check(actorID uint, resource, perm string, targetUserID uint) (Decision, error) {
	if actorID == 0 {
		return Decision{}, fmt.Errorf("%w: missing actor", apperr.ErrUnauthenticated)
	}

	res, err := ParseResource(resource)
	if err != nil {
		return Decision{}, err
	}
	requested, err := Parse(perm)
	if err != nil {
		return Decision{}, err
	}

	var actor models.User
	if err := c.db.First(&actor, actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Decision{}, fmt.Errorf("%w: actor %d", apperr.ErrNotFound, actorID)
		}
		return Decision{}, err
	}
	if !actor.IsActive {
		return deny(ReasonNotGranted), nil
	}

	granted, ok, err := c.loadGrant(actor.Role, res)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return deny(ReasonNotGranted), nil
	}

	if targetUserID == 0 {
		targetUserID = actorID
	}
	return Evaluate(granted, requested, actorID, targetUserID), nil
}

// loadGrant returns the token set for (roleKey, resource), reporting ok=false
// when the role or grant is absent or inactive.
func (c *Checker) loadGrant(roleKey, resource string) ([]string, bool, error) {
	var role models.Role
	if err := c.db.Where("key = ?", roleKey).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !role.IsActive {
		return nil, false, nil
	}

	var grant models.PermissionGrant
	err := c.db.Where("role_key = ? AND resource = ?", roleKey, resource).First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !grant.IsActive {
		return nil, false, nil
	}

	var tokens []string
	if len(grant.Permissions) > 0 {
		if err := json.Unmarshal(grant.Permissions, &tokens); err != nil {
			return nil, false, err
		}
	}
	return tokens, true, nil
}
