package role

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/peoplehub/backoffice/internal/apperr"
	"github.com/peoplehub/backoffice/internal/events"
	"github.com/peoplehub/backoffice/internal/models"
	"github.com/peoplehub/backoffice/internal/permission"
	"gorm.io/gorm"
)

type Service struct {
	DB  *gorm.DB
	Bus *events.Bus
}

// GrantInput is one (resource, tokens) pair supplied on role create or grant
// upsert.
type GrantInput struct {
	Resource     string   `json:"resource"`
	ResourceName string   `json:"resource_name,omitempty"`
	Permissions  []string `json:"permissions"`
}

func validateGrant(in GrantInput) error {
	if _, err := permission.ParseResource(in.Resource); err != nil {
		return err
	}
	for _, token := range in.Permissions {
		if _, err := permission.Parse(token); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) CreateRole(key, name, description string, grants []GrantInput, actorID uint) (*models.Role, error) {
	if key == "" || name == "" {
		return nil, fmt.Errorf("%w: key and name are required", apperr.ErrInvalidArgument)
	}
	for _, g := range grants {
		if err := validateGrant(g); err != nil {
			return nil, err
		}
	}

	var existing models.Role
	if err := s.DB.Where("key = ?", key).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: role %q", apperr.ErrAlreadyExists, key)
	}

	role := models.Role{
		Key:         key,
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedBy:   actorID,
		UpdatedBy:   actorID,
	}
	created := make([]models.PermissionGrant, 0, len(grants))

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		for _, g := range grants {
			tokens, _ := json.Marshal(g.Permissions)
			grant := models.PermissionGrant{
				RoleKey:      key,
				Resource:     g.Resource,
				ResourceName: g.ResourceName,
				Permissions:  tokens,
				IsActive:     true,
				CreatedBy:    actorID,
				UpdatedBy:    actorID,
			}
			if err := tx.Create(&grant).Error; err != nil {
				return err
			}
			created = append(created, grant)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionRoles, DocID: role.ID, After: &role})
	for i := range created {
		grant := created[i]
		s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionGrants, DocID: grant.ID, After: &grant})
	}

	return &role, nil
}

// UpdateRole edits a role's display attributes. System roles keep their name
// and description immutable; flipping the active flag is allowed on any role.
func (s *Service) UpdateRole(id uint, name, description *string, isActive *bool, actorID uint) (*models.Role, error) {
	var role models.Role
	if err := s.DB.First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: role %d", apperr.ErrNotFound, id)
		}
		return nil, err
	}
	before := role

	if role.IsSystem {
		if (name != nil && *name != role.Name) || (description != nil && *description != role.Description) {
			return nil, fmt.Errorf("%w: system role %q cannot be renamed", apperr.ErrFailedPrecondition, role.Key)
		}
	}

	if name != nil {
		role.Name = *name
	}
	if description != nil {
		role.Description = *description
	}
	if isActive != nil {
		role.IsActive = *isActive
	}
	role.UpdatedBy = actorID

	if err := s.DB.Save(&role).Error; err != nil {
		return nil, err
	}

	s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionRoles, DocID: role.ID, Before: &before, After: &role})
	return &role, nil
}

func (s *Service) DeleteRole(id uint, actorID uint) error {
	var role models.Role
	if err := s.DB.First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: role %d", apperr.ErrNotFound, id)
		}
		return err
	}

	if role.IsSystem {
		return fmt.Errorf("%w: system role %q cannot be deleted", apperr.ErrFailedPrecondition, role.Key)
	}

	var userCount int64
	if err := s.DB.Model(&models.User{}).Where("role = ?", role.Key).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		return fmt.Errorf("%w: role %q is still assigned to %d user(s)", apperr.ErrFailedPrecondition, role.Key, userCount)
	}

	var grants []models.PermissionGrant
	if err := s.DB.Where("role_key = ?", role.Key).Find(&grants).Error; err != nil {
		return err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_key = ?", role.Key).Delete(&models.PermissionGrant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&role).Error
	})
	if err != nil {
		return err
	}

	s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionRoles, DocID: role.ID, Before: &role})
	for i := range grants {
		grant := grants[i]
		s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionGrants, DocID: grant.ID, Before: &grant})
	}
	return nil
}

func (s *Service) GetRole(id uint) (*models.Role, error) {
	var role models.Role
	if err := s.DB.First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: role %d", apperr.ErrNotFound, id)
		}
		return nil, err
	}
	return &role, nil
}

func (s *Service) ListRoles() ([]models.Role, error) {
	var roles []models.Role
	if err := s.DB.Order("key").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// UpsertGrant replaces the token set for (roleKey, resource). The role's
// denormalized permission map catches up asynchronously via the propagator;
// callers must not assume it reflects the change on return.
func (s *Service) UpsertGrant(roleKey string, in GrantInput, actorID uint) (*models.PermissionGrant, error) {
	if err := validateGrant(in); err != nil {
		return nil, err
	}

	var role models.Role
	if err := s.DB.Where("key = ?", roleKey).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: role %q", apperr.ErrNotFound, roleKey)
		}
		return nil, err
	}

	tokens, _ := json.Marshal(in.Permissions)

	var grant models.PermissionGrant
	err := s.DB.Where("role_key = ? AND resource = ?", roleKey, in.Resource).First(&grant).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		grant = models.PermissionGrant{
			RoleKey:      roleKey,
			Resource:     in.Resource,
			ResourceName: in.ResourceName,
			Permissions:  tokens,
			IsActive:     true,
			CreatedBy:    actorID,
			UpdatedBy:    actorID,
		}
		if err := s.DB.Create(&grant).Error; err != nil {
			return nil, err
		}
		s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionGrants, DocID: grant.ID, After: &grant})
		return &grant, nil

	case err != nil:
		return nil, err
	}

	before := grant
	grant.Permissions = tokens
	if in.ResourceName != "" {
		grant.ResourceName = in.ResourceName
	}
	grant.IsActive = true
	grant.UpdatedBy = actorID
	if err := s.DB.Save(&grant).Error; err != nil {
		return nil, err
	}

	s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionGrants, DocID: grant.ID, Before: &before, After: &grant})
	return &grant, nil
}

func (s *Service) DeleteGrant(roleKey, resource string, actorID uint) error {
	var grant models.PermissionGrant
	err := s.DB.Where("role_key = ? AND resource = ?", roleKey, resource).First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: grant %s/%s", apperr.ErrNotFound, roleKey, resource)
		}
		return err
	}

	if err := s.DB.Delete(&grant).Error; err != nil {
		return err
	}

	s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionGrants, DocID: grant.ID, Before: &grant})
	return nil
}
