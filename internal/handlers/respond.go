package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-reminder-api/internal/dto"
	apierrors "github.com/yukikurage/todo-reminder-api/internal/errors"
	"github.com/yukikurage/todo-reminder-api/internal/middleware"
	"go.uber.org/zap"
)

var errInvalidBody = apierrors.Validation("Invalid request body", nil)

// respondError renders err and logs it when the failure is not the caller's fault.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	if apierrors.KindOf(err) == apierrors.KindSystem {
		logger.Error("Request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.Error(err)
	}
	dto.RenderError(c, err)
}

func respondOK(c *gin.Context, message string, data any) {
	dto.Render(c, http.StatusOK, dto.OK(message, data))
}

func respondCreated(c *gin.Context, message string, data any) {
	dto.Render(c, http.StatusCreated, dto.OK(message, data))
}

// bindJSON decodes the body into dst, rendering a validation error on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		dto.RenderError(c, errInvalidBody)
		return false
	}
	return true
}

// currentUserID returns the authenticated caller, rendering 401 when absent.
func currentUserID(c *gin.Context) (uint64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		dto.RenderError(c, apierrors.ErrUnauthenticated)
	}
	return userID, ok
}

// taskIDParam returns the id parsed by middleware.RequireTaskID.
func taskIDParam(c *gin.Context) (uint64, bool) {
	id, ok := middleware.GetTaskID(c)
	if ok {
		return id, true
	}
	return pathID(c)
}

func pathID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		dto.RenderError(c, apierrors.Validation("Invalid ID", map[string]string{"id": "must be a positive integer"}))
		return 0, false
	}
	return id, true
}
