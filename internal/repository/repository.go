package repository

import (
	"context"
	"time"

	"github.com/yukikurage/todo-reminder-api/internal/database"
	"github.com/yukikurage/todo-reminder-api/internal/models"
	"github.com/yukikurage/todo-reminder-api/internal/query"
)

// TaskRepository defines the interface for task data access.
// Lookups outside the scope behave exactly like missing rows.
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindOne finds a task by ID within the scope
	FindOne(ctx context.Context, id uint64, scope database.TaskScope) (*models.Task, error)

	// List retrieves a filtered, sorted page of tasks and the total match count
	List(ctx context.Context, filter query.Filter, scope database.TaskScope, now time.Time) ([]models.Task, int64, error)

	// Search matches term against title and description, newest first
	Search(ctx context.Context, term string, scope database.TaskScope) ([]models.Task, error)

	// UpdateFields applies column updates to a task within the scope
	UpdateFields(ctx context.Context, id uint64, scope database.TaskScope, fields map[string]any) error

	// ToggleCompleted flips the completion flag in a single statement
	ToggleCompleted(ctx context.Context, id uint64, scope database.TaskScope) error

	// Delete soft deletes a task within the scope
	Delete(ctx context.Context, id uint64, scope database.TaskScope) error

	// DeleteMany soft deletes the tasks among ids that are within the scope
	DeleteMany(ctx context.Context, ids []uint64, scope database.TaskScope) (int64, error)

	// Assign sets assignee, assigner and assignment time together
	Assign(ctx context.Context, id uint64, scope database.TaskScope, assigneeID, assignerID uint64, at time.Time) error

	// Unassign clears all assignment fields together
	Unassign(ctx context.Context, id uint64, scope database.TaskScope) error

	// ListAssignedTo lists tasks assigned to userID with both parties preloaded
	ListAssignedTo(ctx context.Context, userID uint64) ([]models.Task, error)

	// FindOverdue lists open tasks due before now whose last notification
	// is unset or older than notifiedBefore. A nil notifiedBefore ignores it.
	FindOverdue(ctx context.Context, now time.Time, notifiedBefore *time.Time) ([]models.Task, error)

	// MarkNotified records a delivered reminder
	MarkNotified(ctx context.Context, id uint64, at time.Time) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByIDs loads the users among ids that exist
	FindByIDs(ctx context.Context, ids []uint64) ([]models.User, error)

	// List lists all users, newest first
	List(ctx context.Context) ([]models.User, error)

	// UpdateProfile updates name and email
	UpdateProfile(ctx context.Context, id uint64, name, email string) error

	// UpdatePasswordHash replaces the stored password hash
	UpdatePasswordHash(ctx context.Context, id uint64, hash string) error

	// SetDeviceToken stores or clears (nil) the push device token
	SetDeviceToken(ctx context.Context, id uint64, token *string) error

	// Delete permanently removes a user
	Delete(ctx context.Context, id uint64) error
}
