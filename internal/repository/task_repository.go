package repository

import (
	"context"
	"strings"
	"time"

	"github.com/yukikurage/todo-reminder-api/internal/database"
	"github.com/yukikurage/todo-reminder-api/internal/models"
	"github.com/yukikurage/todo-reminder-api/internal/query"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

func (r *GormTaskRepository) tasks(ctx context.Context, scope database.TaskScope) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Task{}).Scopes(scope.Apply)
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindOne finds a task by ID within the scope
func (r *GormTaskRepository) FindOne(ctx context.Context, id uint64, scope database.TaskScope) (*models.Task, error) {
	var task models.Task
	if err := r.tasks(ctx, scope).Where("tasks.id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves a filtered, sorted page of tasks and the total match count
func (r *GormTaskRepository) List(ctx context.Context, filter query.Filter, scope database.TaskScope, now time.Time) ([]models.Task, int64, error) {
	// A counted chain cannot be reused for Find, so each query starts fresh.
	base := func() *gorm.DB {
		return r.tasks(ctx, scope).Scopes(filter.Where(now))
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tasks := []models.Task{}
	if total == 0 || int64(filter.Pagination.Offset) >= total {
		return tasks, total, nil
	}

	if err := base().
		Scopes(filter.Order(), database.Paginate(filter.Pagination)).
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Search matches term against title and description, newest first
func (r *GormTaskRepository) Search(ctx context.Context, term string, scope database.TaskScope) ([]models.Task, error) {
	q := r.tasks(ctx, scope)
	if term = strings.TrimSpace(term); term != "" {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where("(LOWER(tasks.title) LIKE ? ESCAPE '!' OR LOWER(tasks.description) LIKE ? ESCAPE '!')", pattern, pattern)
	}

	tasks := []models.Task{}
	if err := q.Order("tasks.created_at DESC").Order("tasks.id DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// escapeLike neutralises LIKE wildcards using '!' as the escape character
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// UpdateFields applies column updates to a task within the scope
func (r *GormTaskRepository) UpdateFields(ctx context.Context, id uint64, scope database.TaskScope, fields map[string]any) error {
	result := r.tasks(ctx, scope).Where("tasks.id = ?", id).Updates(fields)
	return rowsOrNotFound(result)
}

// ToggleCompleted flips the completion flag in a single statement. Both
// completing and reopening clear the reminder marker, so a reopened task
// that is still overdue is reminded again.
func (r *GormTaskRepository) ToggleCompleted(ctx context.Context, id uint64, scope database.TaskScope) error {
	result := r.tasks(ctx, scope).Where("tasks.id = ?", id).Updates(map[string]any{
		"completed":        gorm.Expr("NOT completed"),
		"last_notified_at": nil,
	})
	return rowsOrNotFound(result)
}

// Delete soft deletes a task within the scope
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64, scope database.TaskScope) error {
	result := r.db.WithContext(ctx).Scopes(scope.Apply).Where("tasks.id = ?", id).Delete(&models.Task{})
	return rowsOrNotFound(result)
}

// DeleteMany soft deletes the tasks among ids that are within the scope
func (r *GormTaskRepository) DeleteMany(ctx context.Context, ids []uint64, scope database.TaskScope) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Scopes(scope.Apply).Where("tasks.id IN ?", ids).Delete(&models.Task{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Assign sets assignee, assigner and assignment time together
func (r *GormTaskRepository) Assign(ctx context.Context, id uint64, scope database.TaskScope, assigneeID, assignerID uint64, at time.Time) error {
	result := r.tasks(ctx, scope).Where("tasks.id = ?", id).Updates(map[string]any{
		"assigned_to_id": assigneeID,
		"assigned_by_id": assignerID,
		"assigned_at":    at.UTC(),
	})
	return rowsOrNotFound(result)
}

// Unassign clears all assignment fields together
func (r *GormTaskRepository) Unassign(ctx context.Context, id uint64, scope database.TaskScope) error {
	result := r.tasks(ctx, scope).Where("tasks.id = ?", id).Updates(map[string]any{
		"assigned_to_id": nil,
		"assigned_by_id": nil,
		"assigned_at":    nil,
	})
	return rowsOrNotFound(result)
}

func selectSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email")
}

// ListAssignedTo lists tasks assigned to userID with both parties preloaded
func (r *GormTaskRepository) ListAssignedTo(ctx context.Context, userID uint64) ([]models.Task, error) {
	tasks := []models.Task{}
	err := r.db.WithContext(ctx).
		Preload("AssignedTo", selectSummary).
		Preload("AssignedBy", selectSummary).
		Where("tasks.assigned_to_id = ?", userID).
		Order("tasks.created_at DESC").
		Order("tasks.id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindOverdue lists open tasks due before now whose last notification is
// unset or no later than notifiedBefore
func (r *GormTaskRepository) FindOverdue(ctx context.Context, now time.Time, notifiedBefore *time.Time) ([]models.Task, error) {
	q := r.db.WithContext(ctx).
		Where("tasks.completed = ?", false).
		Where("tasks.due_date IS NOT NULL AND tasks.due_date < ?", now.UTC())
	if notifiedBefore != nil {
		q = q.Where("(tasks.last_notified_at IS NULL OR tasks.last_notified_at <= ?)", notifiedBefore.UTC())
	}

	tasks := []models.Task{}
	if err := q.Order("tasks.due_date ASC").Order("tasks.id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// MarkNotified records a delivered reminder without touching updated_at
func (r *GormTaskRepository) MarkNotified(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		UpdateColumn("last_notified_at", at.UTC()).Error
}

func rowsOrNotFound(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
