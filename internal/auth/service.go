package auth

import (
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

// Register provisions a self-service account with the default role. Elevated
// roles are only reachable through the assignment manager afterwards.
func (s *Service) Register(name, email, password string) (*models.User, error) {
	var existing models.User
	if err := s.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: email %q", apperr.ErrAlreadyExists, email)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Provider: "local",
		IsActive: true,
		Role:     models.DefaultRoleKey,
	}
	if err := s.DB.Create(&u).Error; err != nil {
		return nil, err
	}

	s.Bus.Publish(events.ChangeEvent{Collection: events.CollectionUsers, DocID: u.ID, After: &u})
	return &u, nil
}

func (s *Service) Login(email, password string) (string, *models.User, error) {
	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthenticated)
	}
	if !user.IsActive {
		return "", nil, fmt.Errorf("%w: account is deactivated", apperr.ErrUnauthenticated)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return "", nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthenticated)
	}

	token, err := utils.GenerateJWT(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}
