package services

import (
	"context"
	"fmt"
	"time"

	apierrors "github.com/yukikurage/todo-reminder-api/internal/errors"
	"github.com/yukikurage/todo-reminder-api/internal/models"
	"github.com/yukikurage/todo-reminder-api/internal/query"
	"github.com/yukikurage/todo-reminder-api/internal/repository"
	"github.com/yukikurage/todo-reminder-api/internal/utils"
)

// TaskQueryService serves the read paths over a user's tasks.
type TaskQueryService struct {
	taskRepo repository.TaskRepository
	policies ScopePolicies
	now      func() time.Time
}

// NewTaskQueryService creates a new TaskQueryService
func NewTaskQueryService(taskRepo repository.TaskRepository, policies ScopePolicies) *TaskQueryService {
	return &TaskQueryService{
		taskRepo: taskRepo,
		policies: policies,
		now:      time.Now,
	}
}

// TaskPage is one page of a listing.
type TaskPage struct {
	Tasks      []models.Task
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// List returns the caller's tasks matching params.
func (s *TaskQueryService) List(ctx context.Context, callerID uint64, params query.Params) (*TaskPage, error) {
	filter, err := query.Parse(params)
	if err != nil {
		return nil, err
	}
	return s.ListFiltered(ctx, callerID, filter)
}

// ListFiltered returns the caller's tasks matching an already parsed filter.
func (s *TaskQueryService) ListFiltered(ctx context.Context, callerID uint64, filter query.Filter) (*TaskPage, error) {
	tasks, total, err := s.taskRepo.List(ctx, filter, s.policies.For(OpList, callerID), s.now())
	if err != nil {
		return nil, apierrors.System(fmt.Errorf("failed to list tasks: %w", err))
	}

	return &TaskPage{
		Tasks:      tasks,
		Total:      total,
		Page:       filter.Pagination.Page,
		PageSize:   filter.Pagination.Limit,
		TotalPages: utils.TotalPages(total, filter.Pagination.Limit),
	}, nil
}

// Overdue lists the caller's open tasks past their due date.
func (s *TaskQueryService) Overdue(ctx context.Context, callerID uint64, params query.Params) (*TaskPage, error) {
	params.Overdue = "true"
	return s.List(ctx, callerID, params)
}

// Search matches term against tasks the caller owns or is assigned.
// An empty term returns the whole set, newest first.
func (s *TaskQueryService) Search(ctx context.Context, callerID uint64, term string) ([]models.Task, error) {
	tasks, err := s.taskRepo.Search(ctx, term, s.policies.For(OpSearch, callerID))
	if err != nil {
		return nil, apierrors.System(fmt.Errorf("failed to search tasks: %w", err))
	}
	return tasks, nil
}
