package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/todo-reminder-api/internal/constants"
	"github.com/yukikurage/todo-reminder-api/internal/database"
	apierrors "github.com/yukikurage/todo-reminder-api/internal/errors"
	"github.com/yukikurage/todo-reminder-api/internal/models"
	"github.com/yukikurage/todo-reminder-api/internal/query"
	"github.com/yukikurage/todo-reminder-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNoTaskIDsProvided  = fieldError("ids", "must be a non-empty list of task ids")
	ErrDraftTextRequired  = fieldError("text", "is required")
	ErrAINoTasksGenerated = apierrors.New(apierrors.KindValidation, "No tasks could be drafted from the text")
)

// Drafter turns free text into task drafts.
type Drafter interface {
	DraftTasks(ctx context.Context, text string) ([]GeneratedTask, error)
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	policies ScopePolicies
	drafter  Drafter
	logger   *zap.Logger
	now      func() time.Time
}

// NewTaskService creates a new TaskService. drafter may be nil.
func NewTaskService(taskRepo repository.TaskRepository, policies ScopePolicies, drafter Drafter, logger *zap.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		policies: policies,
		drafter:  drafter,
		logger:   logger,
		now:      time.Now,
	}
}

// TaskInput represents the body of a create or update.
// Priority and due date keep their current value on update when omitted.
type TaskInput struct {
	Title       string  `json:"title" validate:"required,max=100"`
	Description string  `json:"description" validate:"required,max=500"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

type taskFields struct {
	priority    *models.Priority
	dueDate     *time.Time
	dueDateSent bool
}

func (in *TaskInput) normalize() (taskFields, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	details := map[string]string{}
	if err := validateInput(*in); err != nil {
		var apiErr *apierrors.Error
		if !errors.As(err, &apiErr) || apiErr.Kind != apierrors.KindValidation {
			return taskFields{}, err
		}
		for k, v := range apiErr.Details {
			details[k] = v
		}
	}

	var f taskFields
	if p := strings.TrimSpace(in.Priority); p != "" {
		pr, err := models.ParsePriority(p)
		if err != nil {
			details["priority"] = "must be one of Low, Medium, High"
		} else {
			f.priority = &pr
		}
	}
	if in.DueDate != nil && strings.TrimSpace(*in.DueDate) != "" {
		d, err := query.ParseDate(strings.TrimSpace(*in.DueDate))
		if err != nil {
			details["dueDate"] = "must be an RFC 3339 timestamp or YYYY-MM-DD date"
		} else {
			f.dueDate = &d
			f.dueDateSent = true
		}
	}

	if len(details) > 0 {
		return taskFields{}, apierrors.Validation("Validation failed", details)
	}
	return f, nil
}

// Create creates a task owned by the caller.
func (s *TaskService) Create(ctx context.Context, callerID uint64, input TaskInput) (*models.Task, error) {
	fields, err := input.normalize()
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Priority:    models.PriorityMedium,
		DueDate:     fields.dueDate,
		OwnerID:     callerID,
	}
	if fields.priority != nil {
		task.Priority = *fields.priority
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, apierrors.System(fmt.Errorf("failed to create task: %w", err))
	}

	return task, nil
}

// Get returns a task by id under the fetch policy.
func (s *TaskService) Get(ctx context.Context, callerID, taskID uint64) (*models.Task, error) {
	return s.find(ctx, taskID, s.policies.For(OpFetch, callerID))
}

// Update replaces title and description of an owned task, and priority and
// due date when given. A changed due date re-arms the overdue reminder.
func (s *TaskService) Update(ctx context.Context, callerID, taskID uint64, input TaskInput) (*models.Task, error) {
	fields, err := input.normalize()
	if err != nil {
		return nil, err
	}

	scope := s.policies.For(OpUpdate, callerID)
	task, err := s.find(ctx, taskID, scope)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"title":       input.Title,
		"description": input.Description,
	}
	if fields.priority != nil {
		updates["priority"] = *fields.priority
	}
	if fields.dueDateSent && !sameTime(task.DueDate, fields.dueDate) {
		updates["due_date"] = *fields.dueDate
		updates["last_notified_at"] = nil
	}

	if err := s.taskRepo.UpdateFields(ctx, taskID, scope, updates); err != nil {
		return nil, s.taskError(err, "failed to update task")
	}

	return s.find(ctx, taskID, scope)
}

// Delete removes an owned task and returns it as it was.
func (s *TaskService) Delete(ctx context.Context, callerID, taskID uint64) (*models.Task, error) {
	scope := s.policies.For(OpDelete, callerID)
	task, err := s.find(ctx, taskID, scope)
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.Delete(ctx, taskID, scope); err != nil {
		return nil, s.taskError(err, "failed to delete task")
	}

	return task, nil
}

// ToggleComplete flips the completion flag under the toggle policy.
func (s *TaskService) ToggleComplete(ctx context.Context, callerID, taskID uint64) (*models.Task, error) {
	scope := s.policies.For(OpToggle, callerID)
	if err := s.taskRepo.ToggleCompleted(ctx, taskID, scope); err != nil {
		return nil, s.taskError(err, "failed to toggle task")
	}
	return s.find(ctx, taskID, scope)
}

// BulkDelete removes the owned tasks among ids and returns how many were removed.
// Ids the caller does not own are skipped silently.
func (s *TaskService) BulkDelete(ctx context.Context, callerID uint64, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoTaskIDsProvided
	}

	count, err := s.taskRepo.DeleteMany(ctx, uniqueUint64(ids), s.policies.For(OpBulkDelete, callerID))
	if err != nil {
		return 0, apierrors.System(fmt.Errorf("failed to delete tasks: %w", err))
	}

	s.logger.Info("Tasks bulk deleted",
		zap.Uint64("user_id", callerID),
		zap.Int("requested", len(ids)),
		zap.Int64("deleted", count),
	)
	return count, nil
}

// DraftTasks suggests tasks from free text. Nothing is saved.
func (s *TaskService) DraftTasks(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s.drafter == nil {
		return nil, apierrors.ErrDraftingDisabled
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrDraftTextRequired
	}

	drafts, err := s.drafter.DraftTasks(ctx, text)
	if err != nil {
		return nil, apierrors.System(fmt.Errorf("failed to draft tasks: %w", err))
	}
	if len(drafts) > constants.MaxAIGeneratedTasks {
		drafts = drafts[:constants.MaxAIGeneratedTasks]
	}

	valid := make([]GeneratedTask, 0, len(drafts))
	cutoff := s.now().Add(-24 * time.Hour)
	for _, d := range drafts {
		d.Title = truncate(strings.TrimSpace(d.Title), constants.MaxTitleLength)
		d.Description = truncate(strings.TrimSpace(d.Description), constants.MaxDescriptionLength)
		if d.Title == "" {
			continue
		}
		if d.Description == "" {
			d.Description = d.Title
		}
		if pr, err := models.ParsePriority(string(d.Priority)); err == nil {
			d.Priority = pr
		} else {
			d.Priority = models.PriorityMedium
		}
		if d.DueDate != nil && d.DueDate.Before(cutoff) {
			d.DueDate = nil
		}
		valid = append(valid, d)
	}

	if len(valid) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	return valid, nil
}

func (s *TaskService) find(ctx context.Context, taskID uint64, scope database.TaskScope) (*models.Task, error) {
	task, err := s.taskRepo.FindOne(ctx, taskID, scope)
	if err != nil {
		return nil, s.taskError(err, "failed to find task")
	}
	return task, nil
}

func (s *TaskService) taskError(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierrors.ErrTaskNotFound
	}
	return apierrors.System(fmt.Errorf("%s: %w", msg, err))
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
