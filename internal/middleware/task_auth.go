package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-reminder-api/internal/constants"
	"github.com/yukikurage/todo-reminder-api/internal/dto"
	apierrors "github.com/yukikurage/todo-reminder-api/internal/errors"
)

var errInvalidTaskID = apierrors.Validation("Invalid task ID", map[string]string{"id": "must be a positive integer"})

// RequireTaskID parses the :id path parameter. Visibility of the task
// itself is decided by the service under the operation's scope.
func RequireTaskID() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || taskID == 0 {
			dto.AbortWithError(c, errInvalidTaskID)
			return
		}

		c.Set(constants.ContextKeyTaskID, taskID)
		c.Next()
	}
}

// GetTaskID retrieves the parsed task ID from context
func GetTaskID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(constants.ContextKeyTaskID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
