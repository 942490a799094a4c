package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	apierrors "github.com/yukikurage/todo-reminder-api/internal/errors"
	"github.com/yukikurage/todo-reminder-api/internal/models"
	"github.com/yukikurage/todo-reminder-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTaskIDRequired = fieldError("taskId", "is required")
	ErrUserIDRequired = fieldError("userId", "is required")
)

// AssignmentService hands owned tasks to other users.
type AssignmentService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	policies ScopePolicies
	logger   *zap.Logger
	now      func() time.Time
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, policies ScopePolicies, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		policies: policies,
		logger:   logger,
		now:      time.Now,
	}
}

// AssignInput identifies the task and the user who receives it.
type AssignInput struct {
	TaskID uint64 `json:"taskId"`
	UserID uint64 `json:"userId"`
}

// Assign records userID as assignee of an owned task with the caller as assigner.
// Reassigning overwrites the previous assignment.
func (s *AssignmentService) Assign(ctx context.Context, callerID uint64, input AssignInput) (*models.Task, error) {
	if input.TaskID == 0 {
		return nil, ErrTaskIDRequired
	}
	if input.UserID == 0 {
		return nil, ErrUserIDRequired
	}

	if _, err := s.userRepo.FindByID(ctx, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.ErrUserMissing
		}
		return nil, apierrors.System(fmt.Errorf("failed to find assignee: %w", err))
	}

	scope := s.policies.For(OpAssign, callerID)
	if err := s.taskRepo.Assign(ctx, input.TaskID, scope, input.UserID, callerID, s.now().UTC()); err != nil {
		return nil, s.taskError(err, "failed to assign task")
	}

	task, err := s.taskRepo.FindOne(ctx, input.TaskID, scope)
	if err != nil {
		return nil, s.taskError(err, "failed to find task")
	}

	s.logger.Info("Task assigned",
		zap.Uint64("task_id", input.TaskID),
		zap.Uint64("assignee_id", input.UserID),
		zap.Uint64("assigner_id", callerID),
	)
	return task, nil
}

// Unassign clears the assignment of an owned task.
func (s *AssignmentService) Unassign(ctx context.Context, callerID, taskID uint64) (*models.Task, error) {
	scope := s.policies.For(OpUnassign, callerID)
	if err := s.taskRepo.Unassign(ctx, taskID, scope); err != nil {
		return nil, s.taskError(err, "failed to unassign task")
	}

	task, err := s.taskRepo.FindOne(ctx, taskID, scope)
	if err != nil {
		return nil, s.taskError(err, "failed to find task")
	}
	return task, nil
}

// ListAssigned returns the tasks assigned to the caller.
func (s *AssignmentService) ListAssigned(ctx context.Context, callerID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListAssignedTo(ctx, callerID)
	if err != nil {
		return nil, apierrors.System(fmt.Errorf("failed to list assigned tasks: %w", err))
	}
	return tasks, nil
}

func (s *AssignmentService) taskError(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierrors.ErrTaskNotFound
	}
	return apierrors.System(fmt.Errorf("%s: %w", msg, err))
}
