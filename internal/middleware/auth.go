package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-reminder-api/internal/constants"
	"github.com/yukikurage/todo-reminder-api/internal/dto"
	apierrors "github.com/yukikurage/todo-reminder-api/internal/errors"
	"github.com/yukikurage/todo-reminder-api/internal/models"
)

// Authenticator resolves the caller from an Authorization header value.
type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) (*models.User, error)
}

// RequireAuth checks the bearer token and stores the caller in the context
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Vary", constants.AuthorizationHeader)

		user, err := auth.Authenticate(c.Request.Context(), c.GetHeader(constants.AuthorizationHeader))
		if err != nil {
			if apierrors.KindOf(err) == apierrors.KindSystem {
				// Surfaces the cause in the request log.
				c.Error(err)
			}
			dto.AbortWithError(c, err)
			return
		}

		// Store user in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetUser retrieves the authenticated user from context
func GetUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
