package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/yukikurage/todo-reminder-api/internal/database"
	"github.com/yukikurage/todo-reminder-api/internal/models"
	"github.com/yukikurage/todo-reminder-api/internal/query"
)

// MockTaskRepository is a mock TaskRepository
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) FindOne(ctx context.Context, id uint64, scope database.TaskScope) (*models.Task, error) {
	args := m.Called(ctx, id, scope)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, filter query.Filter, scope database.TaskScope, now time.Time) ([]models.Task, int64, error) {
	args := m.Called(ctx, filter, scope, now)
	tasks, _ := args.Get(0).([]models.Task)
	return tasks, args.Get(1).(int64), args.Error(2)
}

func (m *MockTaskRepository) Search(ctx context.Context, term string, scope database.TaskScope) ([]models.Task, error) {
	args := m.Called(ctx, term, scope)
	tasks, _ := args.Get(0).([]models.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskRepository) UpdateFields(ctx context.Context, id uint64, scope database.TaskScope, fields map[string]any) error {
	args := m.Called(ctx, id, scope, fields)
	return args.Error(0)
}

func (m *MockTaskRepository) ToggleCompleted(ctx context.Context, id uint64, scope database.TaskScope) error {
	args := m.Called(ctx, id, scope)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id uint64, scope database.TaskScope) error {
	args := m.Called(ctx, id, scope)
	return args.Error(0)
}

func (m *MockTaskRepository) DeleteMany(ctx context.Context, ids []uint64, scope database.TaskScope) (int64, error) {
	args := m.Called(ctx, ids, scope)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) Assign(ctx context.Context, id uint64, scope database.TaskScope, assigneeID, assignerID uint64, at time.Time) error {
	args := m.Called(ctx, id, scope, assigneeID, assignerID, at)
	return args.Error(0)
}

func (m *MockTaskRepository) Unassign(ctx context.Context, id uint64, scope database.TaskScope) error {
	args := m.Called(ctx, id, scope)
	return args.Error(0)
}

func (m *MockTaskRepository) ListAssignedTo(ctx context.Context, userID uint64) ([]models.Task, error) {
	args := m.Called(ctx, userID)
	tasks, _ := args.Get(0).([]models.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskRepository) FindOverdue(ctx context.Context, now time.Time, notifiedBefore *time.Time) ([]models.Task, error) {
	args := m.Called(ctx, now, notifiedBefore)
	tasks, _ := args.Get(0).([]models.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskRepository) MarkNotified(ctx context.Context, id uint64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockUserRepository is a mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uint64) ([]models.User, error) {
	args := m.Called(ctx, ids)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id uint64, name, email string) error {
	args := m.Called(ctx, id, name, email)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, id uint64, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *MockUserRepository) SetDeviceToken(ctx context.Context, id uint64, token *string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDrafter is a mock Drafter
type MockDrafter struct {
	mock.Mock
}

func (m *MockDrafter) DraftTasks(ctx context.Context, text string) ([]GeneratedTask, error) {
	args := m.Called(ctx, text)
	drafts, _ := args.Get(0).([]GeneratedTask)
	return drafts, args.Error(1)
}
