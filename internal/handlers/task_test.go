package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/todo-reminder-api/internal/constants"
	"github.com/yukikurage/todo-reminder-api/internal/database"
	"github.com/yukikurage/todo-reminder-api/internal/dto"
	apierrors "github.com/yukikurage/todo-reminder-api/internal/errors"
	"github.com/yukikurage/todo-reminder-api/internal/middleware"
	"github.com/yukikurage/todo-reminder-api/internal/models"
	"github.com/yukikurage/todo-reminder-api/internal/repository"
	"github.com/yukikurage/todo-reminder-api/internal/services"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Error   *apierrors.APIError `json:"error"`
}

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	auth    *services.AuthService
	handler *TaskHandler
	router  *gin.Engine
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), database.GormConfig("silent", zap.NewNop()))
	suite.Require().NoError(err)
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	// Run migrations
	suite.Require().NoError(database.Migrate(suite.db, zap.NewNop()))

	taskRepo := repository.NewTaskRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	tokens, err := services.NewTokenService(testSecret, time.Hour)
	suite.Require().NoError(err)

	suite.auth = services.NewAuthService(userRepo, tokens, zap.NewNop())
	policies := services.DefaultScopePolicies()
	// Without drafter, as no API key is configured in tests
	suite.handler = NewTaskHandler(
		services.NewTaskService(taskRepo, policies, nil, zap.NewNop()),
		services.NewTaskQueryService(taskRepo, policies),
		services.NewAssignmentService(taskRepo, userRepo, policies, zap.NewNop()),
		zap.NewNop(),
	)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	suite.router = Router{
		Auth:         NewAuthHandler(suite.auth, zap.NewNop()),
		Users:        NewUserHandler(services.NewUserService(userRepo, zap.NewNop()), zap.NewNop()),
		Tasks:        suite.handler,
		Authn:        suite.auth,
		LoginLimiter: middleware.NewIPRateLimiter(100, 100),
		Logger:       zap.NewNop(),
	}.Engine()
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// register creates a user and returns it with a bearer token
func (suite *TaskHandlerTestSuite) register(name, email string) (*models.User, string) {
	user, token, err := suite.auth.Register(context.Background(), services.RegisterInput{
		Name:     name,
		Email:    email,
		Password: "password123",
	})
	suite.Require().NoError(err)
	return user, token
}

func (suite *TaskHandlerTestSuite) do(method, url, token string, body any) (*httptest.ResponseRecorder, envelope) {
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var env envelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (suite *TaskHandlerTestSuite) createTask(token string, body map[string]any) dto.TaskDTO {
	w, env := suite.do(http.MethodPost, "/api/tasks", token, body)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var task dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(env.Data, &task))
	return task
}

func taskURL(id uint64, suffix string) string {
	return "/api/tasks/" + strconv.FormatUint(id, 10) + suffix
}

// Helper function to create authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	_, token := suite.register("Alice", "alice@example.com")

	task := suite.createTask(token, map[string]any{
		"title":       "Pay rent",
		"description": "June",
		"priority":    "High",
		"dueDate":     "2030-07-01",
	})

	suite.Equal("Pay rent", task.Title)
	suite.Equal(models.PriorityHigh, task.Priority)
	suite.False(task.Completed)
	suite.Require().NotNil(task.DueDate)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidRequest() {
	_, token := suite.register("Alice", "alice@example.com")

	w, env := suite.do(http.MethodPost, "/api/tasks", token, map[string]any{"title": ""})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.False(env.Success)
	suite.Require().NotNil(env.Error)
	suite.Equal(apierrors.KindValidation, env.Error.Code)
	suite.Contains(env.Error.Details, "title")
	suite.Contains(env.Error.Details, "description")
}

func (suite *TaskHandlerTestSuite) TestCreateTask_MalformedBody() {
	c, w := suite.createAuthContext(http.MethodPost, "/api/tasks", []byte("{not json"), 1)

	suite.handler.CreateTask(c)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasks_Unauthorized() {
	w, env := suite.do(http.MethodGet, "/api/tasks", "", nil)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.False(env.Success)
	suite.Equal(apierrors.KindUnauthenticated, env.Error.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasks_HandlerWithoutUser() {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/tasks", nil)

	suite.handler.ListTasks(c)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasks_FilterAndPaginate() {
	_, alice := suite.register("Alice", "alice@example.com")
	_, bob := suite.register("Bob", "bob@example.com")
	suite.createTask(alice, map[string]any{"title": "A low", "description": "d", "priority": "Low"})
	suite.createTask(alice, map[string]any{"title": "A high", "description": "d", "priority": "High"})
	suite.createTask(alice, map[string]any{"title": "A medium", "description": "d"})
	suite.createTask(bob, map[string]any{"title": "B high", "description": "d", "priority": "High"})

	w, env := suite.do(http.MethodGet, "/api/tasks?sort=priority&pageSize=2", alice, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var page dto.TaskListResponse
	suite.Require().NoError(json.Unmarshal(env.Data, &page))
	suite.Equal(int64(3), page.TotalCount)
	suite.Equal(2, page.TotalPages)
	suite.Require().Len(page.Tasks, 2)
	suite.Equal("A high", page.Tasks[0].Title)
	suite.Equal("A medium", page.Tasks[1].Title)

	w, env = suite.do(http.MethodGet, "/api/tasks?priority=High", alice, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(env.Data, &page))
	suite.Equal(int64(1), page.TotalCount)
}

func (suite *TaskHandlerTestSuite) TestListTasks_InvalidSort() {
	_, token := suite.register("Alice", "alice@example.com")

	w, env := suite.do(http.MethodGet, "/api/tasks?sort=random", token, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(env.Error.Details, "sort")
}

func (suite *TaskHandlerTestSuite) TestOverdueTasks() {
	_, token := suite.register("Alice", "alice@example.com")
	suite.createTask(token, map[string]any{"title": "Late", "description": "d", "dueDate": "2020-01-01"})
	suite.createTask(token, map[string]any{"title": "Future", "description": "d", "dueDate": "2099-01-01"})

	w, env := suite.do(http.MethodGet, "/api/tasks/overdue", token, nil)

	suite.Require().Equal(http.StatusOK, w.Code)
	var page dto.TaskListResponse
	suite.Require().NoError(json.Unmarshal(env.Data, &page))
	suite.Require().Len(page.Tasks, 1)
	suite.Equal("Late", page.Tasks[0].Title)
}

func (suite *TaskHandlerTestSuite) TestGetTask_NotFoundIsSuccessWithoutData() {
	_, token := suite.register("Alice", "alice@example.com")

	w, env := suite.do(http.MethodGet, "/api/tasks/999", token, nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.True(env.Success)
	suite.Equal("null", string(env.Data))
	suite.Nil(env.Error)
}

func (suite *TaskHandlerTestSuite) TestGetTask_InvalidID() {
	_, token := suite.register("Alice", "alice@example.com")

	w, env := suite.do(http.MethodGet, "/api/tasks/abc", token, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.False(env.Success)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_Success() {
	_, token := suite.register("Alice", "alice@example.com")
	task := suite.createTask(token, map[string]any{"title": "Old", "description": "d"})

	w, env := suite.do(http.MethodPut, taskURL(task.ID, ""), token, map[string]any{
		"title":       "New",
		"description": "New details",
	})

	suite.Require().Equal(http.StatusOK, w.Code)
	var updated dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(env.Data, &updated))
	suite.Equal("New", updated.Title)
	suite.Equal(models.PriorityMedium, updated.Priority)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_NotOwner() {
	_, alice := suite.register("Alice", "alice@example.com")
	_, bob := suite.register("Bob", "bob@example.com")
	task := suite.createTask(alice, map[string]any{"title": "Mine", "description": "d"})

	w, env := suite.do(http.MethodPut, taskURL(task.ID, ""), bob, map[string]any{"title": "Hijack", "description": "x"})

	suite.Equal(http.StatusOK, w.Code)
	suite.True(env.Success)
	suite.Equal("null", string(env.Data))

	_, env = suite.do(http.MethodGet, taskURL(task.ID, ""), alice, nil)
	var got dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(env.Data, &got))
	suite.Equal("Mine", got.Title)
}

func (suite *TaskHandlerTestSuite) TestToggleTask() {
	_, token := suite.register("Alice", "alice@example.com")
	task := suite.createTask(token, map[string]any{"title": "Flip", "description": "d"})

	_, env := suite.do(http.MethodPatch, taskURL(task.ID, "/complete"), token, nil)
	var toggled dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(env.Data, &toggled))
	suite.True(toggled.Completed)

	_, env = suite.do(http.MethodPatch, taskURL(task.ID, "/complete"), token, nil)
	suite.Require().NoError(json.Unmarshal(env.Data, &toggled))
	suite.False(toggled.Completed)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_ReturnsDeleted() {
	_, token := suite.register("Alice", "alice@example.com")
	task := suite.createTask(token, map[string]any{"title": "Doomed", "description": "d"})

	w, env := suite.do(http.MethodDelete, taskURL(task.ID, ""), token, nil)

	suite.Require().Equal(http.StatusOK, w.Code)
	var deleted dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(env.Data, &deleted))
	suite.Equal("Doomed", deleted.Title)

	_, env = suite.do(http.MethodGet, taskURL(task.ID, ""), token, nil)
	suite.Equal("null", string(env.Data))
}

func (suite *TaskHandlerTestSuite) TestBulkDelete() {
	_, alice := suite.register("Alice", "alice@example.com")
	_, bob := suite.register("Bob", "bob@example.com")
	a1 := suite.createTask(alice, map[string]any{"title": "A1", "description": "d"})
	a2 := suite.createTask(alice, map[string]any{"title": "A2", "description": "d"})
	b1 := suite.createTask(bob, map[string]any{"title": "B1", "description": "d"})

	w, env := suite.do(http.MethodDelete, "/api/tasks/bulk", alice, map[string]any{"ids": []uint64{a1.ID, a2.ID, b1.ID}})

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.BulkDeleteResponse
	suite.Require().NoError(json.Unmarshal(env.Data, &resp))
	suite.Equal(int64(2), resp.DeletedCount)

	w, env = suite.do(http.MethodDelete, "/api/tasks/bulk", alice, map[string]any{"ids": []uint64{}})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(env.Error.Details, "ids")
}

func (suite *TaskHandlerTestSuite) TestSearch() {
	_, token := suite.register("Alice", "alice@example.com")
	suite.createTask(token, map[string]any{"title": "Buy milk", "description": "d"})
	suite.createTask(token, map[string]any{"title": "Walk dog", "description": "with MILKy treats"})
	suite.createTask(token, map[string]any{"title": "Other", "description": "d"})

	w, env := suite.do(http.MethodGet, "/api/tasks/search?search=milk", token, nil)

	suite.Require().Equal(http.StatusOK, w.Code)
	var tasks []dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(env.Data, &tasks))
	suite.Len(tasks, 2)
}

func (suite *TaskHandlerTestSuite) TestAssignFlow() {
	alice, aliceToken := suite.register("Alice", "alice@example.com")
	bob, bobToken := suite.register("Bob", "bob@example.com")
	task := suite.createTask(aliceToken, map[string]any{"title": "Shared", "description": "d"})

	w, env := suite.do(http.MethodPut, "/api/tasks/assign", aliceToken, map[string]any{"taskId": task.ID, "userId": bob.ID})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var assigned dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(env.Data, &assigned))
	suite.Require().NotNil(assigned.AssignedToID)
	suite.Equal(bob.ID, *assigned.AssignedToID)
	suite.Equal(alice.ID, *assigned.AssignedByID)

	_, env = suite.do(http.MethodGet, "/api/tasks/assigned", bobToken, nil)
	var mine []dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(env.Data, &mine))
	suite.Require().Len(mine, 1)
	suite.Require().NotNil(mine[0].AssignedBy)
	suite.Equal("Alice", mine[0].AssignedBy.Name)

	// Only the owner may unassign.
	_, env = suite.do(http.MethodPost, taskURL(task.ID, "/unassign"), bobToken, nil)
	suite.Equal("null", string(env.Data))

	w, env = suite.do(http.MethodPost, taskURL(task.ID, "/unassign"), aliceToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var unassigned dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(env.Data, &unassigned))
	suite.Nil(unassigned.AssignedToID)
}

func (suite *TaskHandlerTestSuite) TestAssign_MissingFields() {
	_, token := suite.register("Alice", "alice@example.com")

	w, env := suite.do(http.MethodPut, "/api/tasks/assign", token, map[string]any{"userId": 2})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(env.Error.Details, "taskId")
}

func (suite *TaskHandlerTestSuite) TestGenerateTasks_Unavailable() {
	_, token := suite.register("Alice", "alice@example.com")

	w, env := suite.do(http.MethodPost, "/api/tasks/generate", token, map[string]any{"text": "buy milk tomorrow"})

	suite.Equal(http.StatusServiceUnavailable, w.Code)
	suite.Equal(apierrors.KindServiceUnavailable, env.Error.Code)
}

func (suite *TaskHandlerTestSuite) TestHealth() {
	w, env := suite.do(http.MethodGet, "/health", "", nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.True(suite.T(), env.Success)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
