package dto

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/todo-reminder-api/internal/errors"
)

// Envelope is the uniform body of every API response.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    any                 `json:"data"`
	Error   *apierrors.APIError `json:"error,omitempty"`
}

// OK builds a successful envelope.
func OK(message string, data any) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// FromError builds the envelope for a failed operation.
// Not-found is not a failure of the request: it succeeds with no data.
func FromError(err error) Envelope {
	apiErr := apierrors.ToAPIError(err)
	if apiErr.Code == apierrors.KindNotFound {
		return Envelope{Success: true, Message: apiErr.Message}
	}
	return Envelope{Success: false, Message: apiErr.Message, Error: apiErr}
}

// Render writes env with the given status.
func Render(c *gin.Context, status int, env Envelope) {
	c.JSON(status, env)
}

// RenderError writes the envelope for err with the status its kind maps to.
func RenderError(c *gin.Context, err error) {
	c.JSON(apierrors.HTTPStatus(apierrors.KindOf(err)), FromError(err))
}

// AbortWithError writes the envelope for err and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apierrors.HTTPStatus(apierrors.KindOf(err)), FromError(err))
}
