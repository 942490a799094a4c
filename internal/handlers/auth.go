package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-reminder-api/internal/dto"
	apierrors "github.com/yukikurage/todo-reminder-api/internal/errors"
	"github.com/yukikurage/todo-reminder-api/internal/middleware"
	"github.com/yukikurage/todo-reminder-api/internal/services"
	"go.uber.org/zap"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register creates a new user and returns it with a token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondCreated(c, "User registered successfully", dto.AuthResponse{
		User:  dto.ToUserDTO(*user),
		Token: token,
	})
}

// Login authenticates a user and returns a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginInput
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, "Logged in successfully", dto.AuthResponse{
		User:  dto.ToUserDTO(*user),
		Token: token,
	})
}

// Logout forgets the caller's device.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, "Logged out successfully", nil)
}

// SaveDeviceToken registers the device that receives reminders.
func (h *AuthHandler) SaveDeviceToken(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		DeviceToken string `json:"deviceToken"`
	}
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.SaveDeviceToken(c.Request.Context(), userID, req.DeviceToken); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, "Device token saved", nil)
}

// ChangePassword replaces the caller's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.ChangePasswordInput
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, "Password changed successfully", nil)
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		respondError(c, h.logger, apierrors.ErrUnauthenticated)
		return
	}

	respondOK(c, "Current user", dto.ToUserDTO(*user))
}
