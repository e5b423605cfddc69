package assignment

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/peoplehub/backoffice/internal/apperr"
	"github.com/peoplehub/backoffice/internal/audit"
	"github.com/peoplehub/backoffice/internal/events"
	"github.com/peoplehub/backoffice/internal/models"
	"gorm.io/gorm"
)

// Service orchestrates role changes: deactivate the previous assignment
// records, insert the new one, move the user's authoritative role pointer
// and append the audit entry, all submitted as one store batch. The batch is
// best-effort, not a cross-collection transaction; drift it leaves behind is
// caught by audit inspection and repaired by the backfill sweep.
type Service struct {
	DB       *gorm.DB
	Bus      *events.Bus
	Recorder *audit.Recorder
}

func (s *Service) AssignRole(userID uint, roleKey string, assignedBy uint, expiresAt *time.Time, reason string) (*models.RoleAssignment, error) {
	if userID == 0 || roleKey == "" {
		return nil, fmt.Errorf("%w: user and role are required", apperr.ErrInvalidArgument)
	}

	var role models.Role
	if err := s.DB.Where("key = ?", roleKey).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: role %q", apperr.ErrNotFound, roleKey)
		}
		return nil, err
	}
	if !role.IsActive {
		return nil, fmt.Errorf("%w: role %q is inactive", apperr.ErrFailedPrecondition, roleKey)
	}

	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", apperr.ErrNotFound, userID)
		}
		return nil, err
	}
	previous := user

	record := models.RoleAssignment{
		UserID:     userID,
		RoleKey:    roleKey,
		AssignedBy: assignedBy,
		IsActive:   true,
		ExpiresAt:  expiresAt,
		Reason:     reason,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RoleAssignment{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}

		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Updates(map[string]interface{}{
				"role":       roleKey,
				"role_id":    role.ID,
				"role_name":  role.Name,
				"updated_by": assignedBy,
			}).Error; err != nil {
			return err
		}

		metadata, _ := json.Marshal(map[string]interface{}{
			"previous_role": previous.Role,
			"new_role":      roleKey,
			"reason":        reason,
		})
		return s.Recorder.Append(tx, &models.AuditLog{
			Action:      audit.ActionRoleAssigned,
			Collection:  events.CollectionUsers,
			TargetID:    fmt.Sprintf("%d", userID),
			TargetEmail: user.Email,
			PerformedBy: fmt.Sprintf("%d", assignedBy),
			Metadata:    metadata,
		})
	})
	if err != nil {
		return nil, err
	}

	var updated models.User
	if err := s.DB.First(&updated, userID).Error; err == nil {
		s.Bus.Publish(events.ChangeEvent{
			Collection: events.CollectionUsers,
			DocID:      userID,
			Before:     &previous,
			After:      &updated,
		})
	}

	return &record, nil
}

func (s *Service) RevokeRole(userID, revokedBy uint, reason string) error {
	if userID == 0 {
		return fmt.Errorf("%w: user is required", apperr.ErrInvalidArgument)
	}

	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", apperr.ErrNotFound, userID)
		}
		return err
	}
	previous := user

	var active []models.RoleAssignment
	if err := s.DB.Where("user_id = ? AND is_active = ?", userID, true).Find(&active).Error; err != nil {
		return err
	}
	if len(active) == 0 {
		return fmt.Errorf("%w: no active role assignment for user %d", apperr.ErrNotFound, userID)
	}

	var fallback models.Role
	fallbackErr := s.DB.Where("key = ?", models.DefaultRoleKey).First(&fallback).Error

	now := time.Now()
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RoleAssignment{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Updates(map[string]interface{}{
				"is_active":  false,
				"revoked_by": revokedBy,
				"revoked_at": now,
			}).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"role":       models.DefaultRoleKey,
			"updated_by": revokedBy,
		}
		if fallbackErr == nil {
			updates["role_id"] = fallback.ID
			updates["role_name"] = fallback.Name
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return err
		}

		metadata, _ := json.Marshal(map[string]interface{}{
			"previous_role": previous.Role,
			"new_role":      models.DefaultRoleKey,
			"reason":        reason,
		})
		return s.Recorder.Append(tx, &models.AuditLog{
			Action:      audit.ActionRoleRevoked,
			Collection:  events.CollectionUsers,
			TargetID:    fmt.Sprintf("%d", userID),
			TargetEmail: user.Email,
			PerformedBy: fmt.Sprintf("%d", revokedBy),
			Metadata:    metadata,
		})
	})
	if err != nil {
		return err
	}

	var updated models.User
	if err := s.DB.First(&updated, userID).Error; err == nil {
		s.Bus.Publish(events.ChangeEvent{
			Collection: events.CollectionUsers,
			DocID:      userID,
			Before:     &previous,
			After:      &updated,
		})
	}

	return nil
}

// History lists a user's assignment records, newest first.
func (s *Service) History(userID uint) ([]models.RoleAssignment, error) {
	var records []models.RoleAssignment
	err := s.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&records).Error
	return records, err
}
