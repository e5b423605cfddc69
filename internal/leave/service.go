package leave

import (
	"errors"
	"fmt"
	"time"

	"github.com/peoplehub/backoffice/internal/apperr"
	"github.com/peoplehub/backoffice/internal/models"
	"gorm.io/gorm"
)

// Request lifecycle states.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Service manages leave requests. The leave type and department names are
// copied onto the request at creation time; renames afterwards reach the row
// through the fan-out or the backfill sweep.
type Service struct {
	DB *gorm.DB
}

type CreateInput struct {
	EmployeeID  uint
	LeaveTypeID uint
	StartDate   time.Time
	EndDate     time.Time
	Reason      string
}

// employeeFor resolves the employee record owned by userID.
func (s *Service) employeeFor(userID uint) (*models.Employee, error) {
	var e models.Employee
	if err := s.DB.Where("user_id = ?", userID).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no employee record for user %d", apperr.ErrNotFound, userID)
		}
		return nil, err
	}
	return &e, nil
}

func (s *Service) Create(in CreateInput, actorID uint) (*models.LeaveRequest, error) {
	if in.LeaveTypeID == 0 {
		return nil, fmt.Errorf("%w: leave_type_id is required", apperr.ErrInvalidArgument)
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, fmt.Errorf("%w: end_date precedes start_date", apperr.ErrInvalidArgument)
	}

	var emp *models.Employee
	var err error
	if in.EmployeeID == 0 {
		emp, err = s.employeeFor(actorID)
	} else {
		var e models.Employee
		if err = s.DB.First(&e, in.EmployeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				err = fmt.Errorf("%w: employee %d", apperr.ErrNotFound, in.EmployeeID)
			}
		}
		emp = &e
	}
	if err != nil {
		return nil, err
	}

	var lt models.LeaveType
	if err := s.DB.First(&lt, in.LeaveTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: leave type %d", apperr.ErrNotFound, in.LeaveTypeID)
		}
		return nil, err
	}
	if !lt.IsActive {
		return nil, fmt.Errorf("%w: leave type %q is inactive", apperr.ErrFailedPrecondition, lt.Name)
	}

	now := time.Now()
	req := models.LeaveRequest{
		EmployeeID:     emp.ID,
		DepartmentID:   emp.DepartmentID,
		DepartmentName: emp.DepartmentName,
		LeaveTypeID:    lt.ID,
		LeaveTypeName:  lt.Name,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		Status:         StatusPending,
		Reason:         in.Reason,
		SyncedAt:       &now,
		CreatedBy:      actorID,
		UpdatedBy:      actorID,
	}
	if err := s.DB.Create(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns leave requests, restricted to the actor's own employee record
// when ownOnly is set.
func (s *Service) List(actorID uint, ownOnly bool, status string) ([]models.LeaveRequest, error) {
	q := s.DB.Order("created_at DESC")
	if ownOnly {
		emp, err := s.employeeFor(actorID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return []models.LeaveRequest{}, nil
			}
			return nil, err
		}
		q = q.Where("employee_id = ?", emp.ID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var requests []models.LeaveRequest
	err := q.Find(&requests).Error
	return requests, err
}

func (s *Service) Get(id uint) (*models.LeaveRequest, error) {
	var req models.LeaveRequest
	if err := s.DB.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: leave request %d", apperr.ErrNotFound, id)
		}
		return nil, err
	}
	return &req, nil
}

// Owns reports whether the request belongs to the actor's employee record.
func (s *Service) Owns(req *models.LeaveRequest, actorID uint) bool {
	emp, err := s.employeeFor(actorID)
	if err != nil {
		return false
	}
	return req.EmployeeID == emp.ID
}

// Decide moves a pending request to approved or rejected.
func (s *Service) Decide(id uint, status string, actorID uint) (*models.LeaveRequest, error) {
	if status != StatusApproved && status != StatusRejected {
		return nil, fmt.Errorf("%w: status must be %q or %q", apperr.ErrInvalidArgument, StatusApproved, StatusRejected)
	}

	req, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending {
		return nil, fmt.Errorf("%w: request is already %s", apperr.ErrFailedPrecondition, req.Status)
	}

	req.Status = status
	req.UpdatedBy = actorID
	if err := s.DB.Save(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}
