package services

import (
	"github.com/yukikurage/todo-reminder-api/internal/database"
)

// Operation names a task operation that reads or mutates stored tasks.
type Operation string

const (
	OpList       Operation = "list"
	OpSearch     Operation = "search"
	OpFetch      Operation = "fetch"
	OpUpdate     Operation = "update"
	OpDelete     Operation = "delete"
	OpToggle     Operation = "toggle"
	OpBulkDelete Operation = "bulk_delete"
	OpAssign     Operation = "assign"
	OpUnassign   Operation = "unassign"
)

// ScopePolicies declares the visibility rule of every task operation.
type ScopePolicies map[Operation]database.ScopePolicy

// DefaultScopePolicies keeps fetch-by-id and toggle open to any
// authenticated caller; every mutation of content or assignment is owner-only.
func DefaultScopePolicies() ScopePolicies {
	return ScopePolicies{
		OpList:       database.OwnerOnly,
		OpSearch:     database.OwnerOrAssignee,
		OpFetch:      database.Unscoped,
		OpUpdate:     database.OwnerOnly,
		OpDelete:     database.OwnerOnly,
		OpToggle:     database.Unscoped,
		OpBulkDelete: database.OwnerOnly,
		OpAssign:     database.OwnerOnly,
		OpUnassign:   database.OwnerOnly,
	}
}

// StrictScopePolicies narrows fetch-by-id and toggle to owner or assignee.
func StrictScopePolicies() ScopePolicies {
	p := DefaultScopePolicies()
	p[OpFetch] = database.OwnerOrAssignee
	p[OpToggle] = database.OwnerOrAssignee
	return p
}

// For returns the scope of op for userID. Undeclared operations are owner-only.
func (p ScopePolicies) For(op Operation, userID uint64) database.TaskScope {
	policy, ok := p[op]
	if !ok {
		policy = database.OwnerOnly
	}
	return database.TaskScope{Policy: policy, UserID: userID}
}
