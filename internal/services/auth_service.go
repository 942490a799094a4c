package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/todo-reminder-api/internal/constants"
	apierrors "github.com/yukikurage/todo-reminder-api/internal/errors"
	"github.com/yukikurage/todo-reminder-api/internal/models"
	"github.com/yukikurage/todo-reminder-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrPasswordTooShort = fieldError("password",
		fmt.Sprintf("must be at least %d characters", constants.MinPasswordLength))
	ErrDeviceTokenRequired = fieldError("deviceToken", "is required")
	ErrWrongPassword       = fieldError("oldPassword", "does not match the current password")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *TokenService
	logger   *zap.Logger
	hashCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6"`
}

// Register creates a new user and issues a token for it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, "", err
	}

	if _, err := s.userRepo.FindByEmail(ctx, input.Email); err == nil {
		return nil, "", apierrors.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apierrors.System(fmt.Errorf("failed to check email: %w", err))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, "", apierrors.System(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", apierrors.System(fmt.Errorf("failed to create user: %w", err))
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", apierrors.System(err)
	}

	s.logger.Info("User registered", zap.Uint64("user_id", user.ID))
	return user, token, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required"`
	DeviceToken *string `json:"deviceToken"`
}

// Login verifies credentials, optionally records the device token and issues a token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, string, error) {
	// Checked before the input touches storage.
	if utf8.RuneCountInString(input.Password) < constants.MinPasswordLength {
		return nil, "", ErrPasswordTooShort
	}
	input.Email = normalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, "", err
	}

	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apierrors.ErrInvalidLogin
		}
		return nil, "", apierrors.System(fmt.Errorf("failed to find user: %w", err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", apierrors.ErrInvalidLogin
	}

	if input.DeviceToken != nil && strings.TrimSpace(*input.DeviceToken) != "" {
		token := strings.TrimSpace(*input.DeviceToken)
		if err := s.userRepo.SetDeviceToken(ctx, user.ID, &token); err != nil {
			return nil, "", apierrors.System(fmt.Errorf("failed to save device token: %w", err))
		}
		user.DeviceToken = &token
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", apierrors.System(err)
	}

	return user, token, nil
}

// Logout forgets the user's device so no further reminders are pushed to it.
func (s *AuthService) Logout(ctx context.Context, userID uint64) error {
	if err := s.userRepo.SetDeviceToken(ctx, userID, nil); err != nil {
		return s.userError(err, "failed to clear device token")
	}
	return nil
}

// SaveDeviceToken registers the device that receives reminders for the user.
func (s *AuthService) SaveDeviceToken(ctx context.Context, userID uint64, deviceToken string) error {
	deviceToken = strings.TrimSpace(deviceToken)
	if deviceToken == "" {
		return ErrDeviceTokenRequired
	}
	if err := s.userRepo.SetDeviceToken(ctx, userID, &deviceToken); err != nil {
		return s.userError(err, "failed to save device token")
	}
	return nil
}

// ChangePasswordInput holds the current and the new password.
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// ChangePassword replaces the password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint64, input ChangePasswordInput) error {
	if err := validateInput(input); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return s.userError(err, "failed to find user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
		return ErrWrongPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), s.hashCost)
	if err != nil {
		return apierrors.System(fmt.Errorf("failed to hash password: %w", err))
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, userID, string(hashedPassword)); err != nil {
		return s.userError(err, "failed to update password")
	}
	return nil
}

// Authenticate resolves the caller from an Authorization header value.
// The user is loaded on every call so deleted accounts lose access at once.
func (s *AuthService) Authenticate(ctx context.Context, authorization string) (*models.User, error) {
	token, ok := bearerToken(authorization)
	if !ok {
		return nil, apierrors.ErrUnauthenticated
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.ErrUserNotFound
		}
		return nil, apierrors.System(fmt.Errorf("failed to find user: %w", err))
	}

	return user, nil
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len(constants.BearerPrefix) ||
		!strings.EqualFold(header[:len(constants.BearerPrefix)], constants.BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(constants.BearerPrefix):])
	return token, token != ""
}

func (s *AuthService) userError(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierrors.ErrUserNotFound
	}
	return apierrors.System(fmt.Errorf("%s: %w", msg, err))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
