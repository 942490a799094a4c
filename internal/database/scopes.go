package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/todo-reminder-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// ScopePolicy decides which tasks an operation may see for a caller.
type ScopePolicy int

const (
	// OwnerOnly restricts to tasks the caller owns.
	OwnerOnly ScopePolicy = iota
	// OwnerOrAssignee also admits tasks assigned to the caller.
	OwnerOrAssignee
	// Unscoped admits any task.
	Unscoped
)

func (p ScopePolicy) String() string {
	switch p {
	case OwnerOnly:
		return "owner_only"
	case OwnerOrAssignee:
		return "owner_or_assignee"
	case Unscoped:
		return "unscoped"
	default:
		return "unknown"
	}
}

// TaskScope binds a policy to the calling user.
type TaskScope struct {
	Policy ScopePolicy
	UserID uint64
}

// OwnedBy is the owner-only scope for userID.
func OwnedBy(userID uint64) TaskScope {
	return TaskScope{Policy: OwnerOnly, UserID: userID}
}

// Apply restricts a tasks query to the scope.
func (s TaskScope) Apply(db *gorm.DB) *gorm.DB {
	switch s.Policy {
	case Unscoped:
		return db
	case OwnerOrAssignee:
		return db.Where("(tasks.owner_id = ? OR tasks.assigned_to_id = ?)", s.UserID, s.UserID)
	default:
		return db.Where("tasks.owner_id = ?", s.UserID)
	}
}
