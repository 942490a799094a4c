package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-reminder-api/internal/dto"
	"github.com/yukikurage/todo-reminder-api/internal/services"
	"go.uber.org/zap"
)

// UserHandler serves the account directory.
type UserHandler struct {
	userService *services.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// ListUsers returns every user.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Users fetched successfully", dto.ToUserDTOs(users))
}

// GetUser returns one user.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "User fetched successfully", dto.ToUserDTO(*user))
}

// UpdateUser changes the caller's own profile.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req services.UpdateProfileInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), callerID, id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "User updated successfully", dto.ToUserDTO(*user))
}

// DeleteUser removes the caller's own account.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.userService.Delete(c.Request.Context(), callerID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "User deleted successfully", dto.ToUserDTO(*user))
}
