package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apierrors "github.com/yukikurage/todo-reminder-api/internal/errors"
	"github.com/yukikurage/todo-reminder-api/internal/models"
	"github.com/yukikurage/todo-reminder-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService exposes account reads and self-service profile changes.
type UserService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, apierrors.System(fmt.Errorf("failed to list users: %w", err))
	}
	return users, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.ErrUserMissing
		}
		return nil, apierrors.System(fmt.Errorf("failed to find user: %w", err))
	}
	return user, nil
}

// UpdateProfileInput holds editable profile fields.
type UpdateProfileInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,max=255"`
}

// Update changes the caller's own profile. Other accounts are reported as not found.
func (s *UserService) Update(ctx context.Context, callerID, id uint64, input UpdateProfileInput) (*models.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if callerID != id {
		return nil, apierrors.ErrUserMissing
	}

	if other, err := s.userRepo.FindByEmail(ctx, input.Email); err == nil && other.ID != id {
		return nil, apierrors.ErrEmailTaken
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierrors.System(fmt.Errorf("failed to check email: %w", err))
	}

	if err := s.userRepo.UpdateProfile(ctx, id, input.Name, input.Email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.ErrUserMissing
		}
		return nil, apierrors.System(fmt.Errorf("failed to update user: %w", err))
	}

	return s.Get(ctx, id)
}

// Delete removes the caller's own account and returns it.
// Tasks that reference the account are left in place.
func (s *UserService) Delete(ctx context.Context, callerID, id uint64) (*models.User, error) {
	if callerID != id {
		return nil, apierrors.ErrUserMissing
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.ErrUserMissing
		}
		return nil, apierrors.System(fmt.Errorf("failed to delete user: %w", err))
	}

	s.logger.Info("User deleted", zap.Uint64("user_id", id))
	return user, nil
}
