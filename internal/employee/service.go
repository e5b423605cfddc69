package employee

import (
	"errors"
	"fmt"
	"time"

	"github.com/peoplehub/backoffice/internal/apperr"
	"github.com/peoplehub/backoffice/internal/models"
	"gorm.io/gorm"
)

// Service manages employee records. On create and on reference reassignment
// the current department and position names are copied onto the row, so a
// fresh document never waits for a fan-out to become readable.
type Service struct {
	DB *gorm.DB
}

type Input struct {
	UserID       *uint
	Name         string
	Email        string
	Phone        string
	DepartmentID *uint
	PositionID   *uint
	HireDate     *time.Time
}

func (s *Service) resolveNames(e *models.Employee) error {
	if e.DepartmentID != nil {
		var dep models.Department
		if err := s.DB.First(&dep, *e.DepartmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: department %d", apperr.ErrNotFound, *e.DepartmentID)
			}
			return err
		}
		e.DepartmentName = dep.Name
	}
	if e.PositionID != nil {
		var pos models.Position
		if err := s.DB.First(&pos, *e.PositionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: position %d", apperr.ErrNotFound, *e.PositionID)
			}
			return err
		}
		e.PositionName = pos.Name
	}
	return nil
}

func (s *Service) Create(in Input, actorID uint) (*models.Employee, error) {
	if in.Name == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", apperr.ErrInvalidArgument)
	}

	e := models.Employee{
		UserID:       in.UserID,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		DepartmentID: in.DepartmentID,
		PositionID:   in.PositionID,
		HireDate:     in.HireDate,
		IsActive:     true,
		CreatedBy:    actorID,
		UpdatedBy:    actorID,
	}
	if err := s.resolveNames(&e); err != nil {
		return nil, err
	}
	now := time.Now()
	e.SyncedAt = &now

	if err := s.DB.Create(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Service) Get(id uint) (*models.Employee, error) {
	var e models.Employee
	if err := s.DB.First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: employee %d", apperr.ErrNotFound, id)
		}
		return nil, err
	}
	return &e, nil
}

// List returns employees, restricted to the actor's own record when ownOnly
// is set.
func (s *Service) List(actorID uint, ownOnly bool) ([]models.Employee, error) {
	q := s.DB.Order("id")
	if ownOnly {
		q = q.Where("user_id = ?", actorID)
	}
	var employees []models.Employee
	err := q.Find(&employees).Error
	return employees, err
}

func (s *Service) Update(id uint, in Input, actorID uint) (*models.Employee, error) {
	var e models.Employee
	if err := s.DB.First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: employee %d", apperr.ErrNotFound, id)
		}
		return nil, err
	}

	if in.Name != "" {
		e.Name = in.Name
	}
	if in.Email != "" {
		e.Email = in.Email
	}
	if in.Phone != "" {
		e.Phone = in.Phone
	}
	if in.HireDate != nil {
		e.HireDate = in.HireDate
	}
	if in.DepartmentID != nil {
		e.DepartmentID = in.DepartmentID
	}
	if in.PositionID != nil {
		e.PositionID = in.PositionID
	}
	if in.DepartmentID != nil || in.PositionID != nil {
		if err := s.resolveNames(&e); err != nil {
			return nil, err
		}
		now := time.Now()
		e.SyncedAt = &now
	}
	e.UpdatedBy = actorID

	if err := s.DB.Save(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Service) Delete(id, actorID uint) error {
	var e models.Employee
	if err := s.DB.First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: employee %d", apperr.ErrNotFound, id)
		}
		return err
	}
	return s.DB.Delete(&e).Error
}
