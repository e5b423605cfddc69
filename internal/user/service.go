package user

import (
	"errors"
	"fmt"

	"github.com/peoplehub/backoffice/internal/apperr"
	"github.com/peoplehub/backoffice/internal/events"
	"github.com/peoplehub/backoffice/internal/models"
	"github.com/peoplehub/backoffice/internal/utils"
	"gorm.io/gorm"
)

type Service struct {
	DB  *gorm.DB
	Bus *events.Bus
}

type CreateInput struct {
	Name       string
	Email      string
	Phone      string
	Password   string
	EmployeeID *uint
}

type UpdateInput struct {
	Name     *string
	Email    *string
	Phone    *string
	IsActive *bool
}

// Create provisions a user with the default role. Role changes go through the
// assignment manager, never through this package.
func (s *Service) Create(in CreateInput, actorID uint) (*models.User, error) {
	var existing models.User
	if err := s.DB.Where("email = ?", in.Email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: email %q", apperr.ErrAlreadyExists, in.Email)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := models.User{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Password:   hash,
		Provider:   "local",
		IsActive:   true,
		Role:       models.DefaultRoleKey,
		EmployeeID: in.EmployeeID,
		CreatedBy:  actorID,
		UpdatedBy:  actorID,
	}
	if err := s.DB.Create(&u).Error; err != nil {
		return nil, err
	}

	s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionUsers, DocID: u.ID, After: &u})
	return &u, nil
}

func (s *Service) Get(id uint) (*models.User, error) {
	var u models.User
	if err := s.DB.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", apperr.ErrNotFound, id)
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) List() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Service) Update(id uint, in UpdateInput, actorID uint) (*models.User, error) {
	var u models.User
	if err := s.DB.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", apperr.ErrNotFound, id)
		}
		return nil, err
	}
	before := u

	if in.Email != nil && *in.Email != u.Email {
		var existing models.User
		if err := s.DB.Where("email = ? AND id != ?", *in.Email, id).First(&existing).Error; err == nil {
			return nil, fmt.Errorf("%w: email %q", apperr.ErrAlreadyExists, *in.Email)
		}
		u.Email = *in.Email
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	u.UpdatedBy = actorID

	if err := s.DB.Save(&u).Error; err != nil {
		return nil, err
	}

	s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionUsers, DocID: u.ID, Before: &before, After: &u})
	return &u, nil
}

// Delete removes the user permanently. The published event carries no after
// snapshot, which the audit trail records as a permanent deletion.
func (s *Service) Delete(id, actorID uint) error {
	var u models.User
	if err := s.DB.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", apperr.ErrNotFound, id)
		}
		return err
	}
	if id == actorID {
		return fmt.Errorf("%w: cannot delete your own account", apperr.ErrFailedPrecondition)
	}

	if err := s.DB.Unscoped().Delete(&u).Error; err != nil {
		return err
	}

	s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionUsers, DocID: u.ID, Before: &u})
	return nil
}
