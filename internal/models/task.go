package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists every priority from most to least severe.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// ParsePriority matches s against the known priorities, ignoring case.
func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// Severity ranks a priority; higher is more urgent.
func (p Priority) Severity() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func (p Priority) Valid() bool {
	return p.Severity() > 0
}

type Task struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	Title          string         `gorm:"type:varchar(100);not null" json:"title"`
	Description    string         `gorm:"type:varchar(500);not null" json:"description"`
	Completed      bool           `gorm:"not null;default:false" json:"completed"`
	Priority       Priority       `gorm:"type:varchar(10);not null;default:'Medium'" json:"priority"`
	DueDate        *time.Time     `gorm:"index" json:"dueDate"`
	OwnerID        uint64         `gorm:"not null;index:idx_tasks_owner_created,priority:1" json:"ownerId"`
	AssignedToID   *uint64        `gorm:"index" json:"assignedToId"`
	AssignedByID   *uint64        `json:"assignedById"`
	AssignedAt     *time.Time     `json:"assignedAt"`
	LastNotifiedAt *time.Time     `json:"-"`
	CreatedAt      time.Time      `gorm:"index:idx_tasks_owner_created,priority:2" json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner      *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	AssignedTo *User `gorm:"foreignKey:AssignedToID" json:"assignedTo,omitempty"`
	AssignedBy *User `gorm:"foreignKey:AssignedByID" json:"assignedBy,omitempty"`
}

// IsOverdue reports whether the task is past due and still open at now.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}
