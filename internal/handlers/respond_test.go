package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/todo-reminder-api/internal/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantLogged bool
	}{
		{"system error is logged", apierrors.System(errors.New("disk full")), http.StatusInternalServerError, true},
		{"validation error is not", apierrors.Validation("bad", map[string]string{"title": "is required"}), http.StatusBadRequest, false},
		{"not found is not", apierrors.ErrTaskNotFound, http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/tasks", nil)

			respondError(c, zap.New(core), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotContains(t, w.Body.String(), "disk full")
			if !tt.wantLogged {
				assert.Zero(t, logs.Len())
				assert.Empty(t, c.Errors)
				return
			}
			require.Equal(t, 1, logs.Len())
			assert.Contains(t, logs.All()[0].ContextMap()["error"], "disk full")
			require.Len(t, c.Errors, 1)
			assert.ErrorIs(t, c.Errors[0].Err, tt.err)
		})
	}
}
