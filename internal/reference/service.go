package reference

import (
	"errors"
	"fmt"

	"github.com/peoplehub/backoffice/internal/apperr"
	"github.com/peoplehub/backoffice/internal/events"
	"github.com/peoplehub/backoffice/internal/models"
	"gorm.io/gorm"
)

// Service covers the reference entities whose names fan out into dependent
// collections. Every committed write publishes a change event with full
// before/after snapshots so the propagator and the audit trail can react.
type Service struct {
	DB  *gorm.DB
	Bus *events.Bus
}

func (s *Service) notFound(err error, kind string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", apperr.ErrNotFound, kind, id)
	}
	return err
}

// Departments

func (s *Service) CreateDepartment(name, description string, actorID uint) (*models.Department, error) {
	var existing models.Department
	if err := s.DB.Where("name = ?", name).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: department %q", apperr.ErrAlreadyExists, name)
	}

	dep := models.Department{Name: name, Description: description, IsActive: true, CreatedBy: actorID, UpdatedBy: actorID}
	if err := s.DB.Create(&dep).Error; err != nil {
		return nil, err
	}
	s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionDepartment, DocID: dep.ID, After: &dep})
	return &dep, nil
}

func (s *Service) ListDepartments() ([]models.Department, error) {
	var deps []models.Department
	err := s.DB.Order("name").Find(&deps).Error
	return deps, err
}

func (s *Service) UpdateDepartment(id uint, name, description *string, isActive *bool, actorID uint) (*models.Department, error) {
	var dep models.Department
	if err := s.DB.First(&dep, id).Error; err != nil {
		return nil, s.notFound(err, "department", id)
	}
	before := dep

	if name != nil && *name != dep.Name {
		var existing models.Department
		if err := s.DB.Where("name = ? AND id != ?", *name, id).First(&existing).Error; err == nil {
			return nil, fmt.Errorf("%w: department %q", apperr.ErrAlreadyExists, *name)
		}
		dep.Name = *name
	}
	if description != nil {
		dep.Description = *description
	}
	if isActive != nil {
		dep.IsActive = *isActive
	}
	dep.UpdatedBy = actorID

	if err := s.DB.Save(&dep).Error; err != nil {
		return nil, err
	}
	s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionDepartment, DocID: dep.ID, Before: &before, After: &dep})
	return &dep, nil
}

func (s *Service) DeleteDepartment(id, actorID uint) error {
	var dep models.Department
	if err := s.DB.First(&dep, id).Error; err != nil {
		return s.notFound(err, "department", id)
	}

	var refs int64
	if err := s.DB.Model(&models.Employee{}).Where("department_id = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("%w: department %q is referenced by %d employee(s)", apperr.ErrFailedPrecondition, dep.Name, refs)
	}

	if err := s.DB.Delete(&dep).Error; err != nil {
		return err
	}
	s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionDepartment, DocID: dep.ID, Before: &dep})
	return nil
}

// Positions

func (s *Service) CreatePosition(name string, level int, actorID uint) (*models.Position, error) {
	var existing models.Position
	if err := s.DB.Where("name = ?", name).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: position %q", apperr.ErrAlreadyExists, name)
	}

	pos := models.Position{Name: name, Level: level, IsActive: true, CreatedBy: actorID, UpdatedBy: actorID}
	if err := s.DB.Create(&pos).Error; err != nil {
		return nil, err
	}
	s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionPosition, DocID: pos.ID, After: &pos})
	return &pos, nil
}

func (s *Service) ListPositions() ([]models.Position, error) {
	var positions []models.Position
	err := s.DB.Order("name").Find(&positions).Error
	return positions, err
}

func (s *Service) UpdatePosition(id uint, name *string, level *int, isActive *bool, actorID uint) (*models.Position, error) {
	var pos models.Position
	if err := s.DB.First(&pos, id).Error; err != nil {
		return nil, s.notFound(err, "position", id)
	}
	before := pos

	if name != nil && *name != pos.Name {
		var existing models.Position
		if err := s.DB.Where("name = ? AND id != ?", *name, id).First(&existing).Error; err == nil {
			return nil, fmt.Errorf("%w: position %q", apperr.ErrAlreadyExists, *name)
		}
		pos.Name = *name
	}
	if level != nil {
		pos.Level = *level
	}
	if isActive != nil {
		pos.IsActive = *isActive
	}
	pos.UpdatedBy = actorID

	if err := s.DB.Save(&pos).Error; err != nil {
		return nil, err
	}
	s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionPosition, DocID: pos.ID, Before: &before, After: &pos})
	return &pos, nil
}

func (s *Service) DeletePosition(id, actorID uint) error {
	var pos models.Position
	if err := s.DB.First(&pos, id).Error; err != nil {
		return s.notFound(err, "position", id)
	}

	var refs int64
	if err := s.DB.Model(&models.Employee{}).Where("position_id = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("%w: position %q is referenced by %d employee(s)", apperr.ErrFailedPrecondition, pos.Name, refs)
	}

	if err := s.DB.Delete(&pos).Error; err != nil {
		return err
	}
	s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionPosition, DocID: pos.ID, Before: &pos})
	return nil
}

// Leave types

func (s *Service) CreateLeaveType(name string, defaultDays int, isPaid bool, actorID uint) (*models.LeaveType, error) {
	var existing models.LeaveType
	if err := s.DB.Where("name = ?", name).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: leave type %q", apperr.ErrAlreadyExists, name)
	}

	lt := models.LeaveType{Name: name, DefaultDays: defaultDays, IsPaid: isPaid, IsActive: true, CreatedBy: actorID, UpdatedBy: actorID}
	if err := s.DB.Create(&lt).Error; err != nil {
		return nil, err
	}
	s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionLeaveType, DocID: lt.ID, After: &lt})
	return &lt, nil
}

func (s *Service) ListLeaveTypes() ([]models.LeaveType, error) {
	var types []models.LeaveType
	err := s.DB.Order("name").Find(&types).Error
	return types, err
}

func (s *Service) UpdateLeaveType(id uint, name *string, defaultDays *int, isPaid, isActive *bool, actorID uint) (*models.LeaveType, error) {
	var lt models.LeaveType
	if err := s.DB.First(&lt, id).Error; err != nil {
		return nil, s.notFound(err, "leave type", id)
	}
	before := lt

	if name != nil && *name != lt.Name {
		var existing models.LeaveType
		if err := s.DB.Where("name = ? AND id != ?", *name, id).First(&existing).Error; err == nil {
			return nil, fmt.Errorf("%w: leave type %q", apperr.ErrAlreadyExists, *name)
		}
		lt.Name = *name
	}
	if defaultDays != nil {
		lt.DefaultDays = *defaultDays
	}
	if isPaid != nil {
		lt.IsPaid = *isPaid
	}
	if isActive != nil {
		lt.IsActive = *isActive
	}
	lt.UpdatedBy = actorID

	if err := s.DB.Save(&lt).Error; err != nil {
		return nil, err
	}
	s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionLeaveType, DocID: lt.ID, Before: &before, After: &lt})
	return &lt, nil
}

func (s *Service) DeleteLeaveType(id, actorID uint) error {
	var lt models.LeaveType
	if err := s.DB.First(&lt, id).Error; err != nil {
		return s.notFound(err, "leave type", id)
	}

	var refs int64
	if err := s.DB.Model(&models.LeaveRequest{}).Where("leave_type_id = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("%w: leave type %q is referenced by %d request(s)", apperr.ErrFailedPrecondition, lt.Name, refs)
	}

	if err := s.DB.Delete(&lt).Error; err != nil {
		return err
	}
	s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionLeaveType, DocID: lt.ID, Before: &lt})
	return nil
}
