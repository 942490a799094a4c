package dto

import (
	"time"

	"github.com/yukikurage/todo-reminder-api/internal/models"
	"github.com/yukikurage/todo-reminder-api/internal/utils"
)

// UserSummary is the projection of a user embedded in task responses
type UserSummary struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           uint64          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Completed    bool            `json:"completed"`
	Priority     models.Priority `json:"priority"`
	DueDate      *time.Time      `json:"dueDate"`
	OwnerID      uint64          `json:"ownerId"`
	AssignedToID *uint64         `json:"assignedToId"`
	AssignedByID *uint64         `json:"assignedById"`
	AssignedAt   *time.Time      `json:"assignedAt"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	AssignedTo   *UserSummary    `json:"assignedTo,omitempty"`
	AssignedBy   *UserSummary    `json:"assignedBy,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalCount int64     `json:"totalCount"`
	TotalPages int       `json:"totalPages"`
}

// BulkDeleteResponse reports how many tasks a bulk delete removed
type BulkDeleteResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// Conversion functions

// ToUserSummary converts a User model to UserSummary
func ToUserSummary(user models.User) UserSummary {
	return UserSummary{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	items := make([]UserDTO, len(users))
	for i, u := range users {
		items[i] = ToUserDTO(u)
	}
	return items
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Completed:    task.Completed,
		Priority:     task.Priority,
		DueDate:      task.DueDate,
		OwnerID:      task.OwnerID,
		AssignedToID: task.AssignedToID,
		AssignedByID: task.AssignedByID,
		AssignedAt:   task.AssignedAt,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}

	// Include assignment parties if preloaded
	if task.AssignedTo != nil {
		summary := ToUserSummary(*task.AssignedTo)
		dto.AssignedTo = &summary
	}
	if task.AssignedBy != nil {
		summary := ToUserSummary(*task.AssignedBy)
		dto.AssignedBy = &summary
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	return TaskListResponse{
		Tasks:      ToTaskDTOs(tasks),
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: utils.TotalPages(totalCount, pageSize),
	}
}
