package service

import (
	"errors"
	"fmt"

	"order-sla-bot/internal/logging"
	"order-sla-bot/internal/models"
	"order-sla-bot/internal/repository"

	"github.com/sirupsen/logrus"
)

type UserService struct {
	repo   repository.UserRepository
	logger *logrus.Logger
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo, logger: logging.New()}
}

// Register creates the user or updates their profile and role.
// The admin role can only be granted by another admin.
func (s *UserService) Register(chatID int64, username, firstName, lastName string, role models.Role) (*models.User, error) {
	if firstName == "" {
		return nil, fmt.Errorf("%w: first name is empty", ErrInvalidInput)
	}
	if role == models.RoleAdmin {
		return nil, ErrForbidden
	}

	user, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		user = &models.User{
			ChatID:    chatID,
			Username:  username,
			FirstName: firstName,
			LastName:  lastName,
			Role:      role,
		}
		if err := s.repo.Create(user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		s.logger.WithFields(logrus.Fields{"chat_id": chatID, "role": role}).Info("User registered")
		return user, nil
	}

	user.Username = username
	user.FirstName = firstName
	user.LastName = lastName
	if !user.IsAdmin() {
		user.Role = role
	}
	if err := s.repo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// GetUser returns the user registered under chatID.
func (s *UserService) GetUser(chatID int64) (*models.User, error) {
	user, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) GetByID(id uint) (*models.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// InitializeAdmin makes sure the bootstrap admin exists with the admin role.
func (s *UserService) InitializeAdmin(chatID int64) error {
	user, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return err
	}

	if user == nil {
		err = s.repo.Create(&models.User{ChatID: chatID, FirstName: "Admin", Role: models.RoleAdmin})
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil
		}
		if err == nil {
			s.logger.WithField("chat_id", chatID).Info("Admin user created")
		}
		return err
	}

	if user.IsAdmin() {
		return nil
	}
	user.Role = models.RoleAdmin
	return s.repo.Update(user)
}

// SetRole changes another user's role. Admin only.
func (s *UserService) SetRole(actor *models.User, chatID int64, role models.Role) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	user, err := s.GetUser(chatID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.repo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"chat_id": chatID, "role": role, "by": actor.ChatID}).Info("Role changed")
	return user, nil
}

// Managers returns project managers and admins, the people escalations go to.
func (s *UserService) Managers() ([]*models.User, error) {
	pms, err := s.repo.GetByRole(models.RoleProjectManager)
	if err != nil {
		return nil, err
	}
	admins, err := s.repo.GetByRole(models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return append(pms, admins...), nil
}
