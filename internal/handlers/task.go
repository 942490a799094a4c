package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-reminder-api/internal/dto"
	"github.com/yukikurage/todo-reminder-api/internal/query"
	"github.com/yukikurage/todo-reminder-api/internal/services"
	"go.uber.org/zap"
)

type TaskHandler struct {
	tasks       *services.TaskService
	queries     *services.TaskQueryService
	assignments *services.AssignmentService
	logger      *zap.Logger
}

func NewTaskHandler(tasks *services.TaskService, queries *services.TaskQueryService, assignments *services.AssignmentService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:       tasks,
		queries:     queries,
		assignments: assignments,
		logger:      logger,
	}
}

// ListTasks returns the caller's tasks, filtered, sorted and paginated
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var params query.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, h.logger, errInvalidBody)
		return
	}

	page, err := h.queries.List(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, "Tasks fetched successfully", dto.ToTaskListResponse(page.Tasks, page.Page, page.PageSize, page.Total))
}

// ListOverdueTasks returns the caller's open tasks past their due date
func (h *TaskHandler) ListOverdueTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var params query.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, h.logger, errInvalidBody)
		return
	}

	page, err := h.queries.Overdue(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, "Overdue tasks fetched successfully", dto.ToTaskListResponse(page.Tasks, page.Page, page.PageSize, page.Total))
}

// SearchTasks matches ?search= (or ?q=) against tasks the caller owns or is assigned
func (h *TaskHandler) SearchTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	term := c.Query("search")
	if term == "" {
		term = c.Query("q")
	}

	tasks, err := h.queries.Search(c.Request.Context(), userID, term)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, "Tasks fetched successfully", dto.ToTaskDTOs(tasks))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, "Task fetched successfully", dto.ToTaskDTO(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.TaskInput
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondCreated(c, "Task created successfully", dto.ToTaskDTO(*task))
}

// UpdateTask updates an owned task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	var req services.TaskInput
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), userID, taskID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, "Task updated successfully", dto.ToTaskDTO(*task))
}

// DeleteTask deletes an owned task and returns it
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.tasks.Delete(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, "Task deleted successfully", dto.ToTaskDTO(*task))
}

// ToggleTask flips the completion flag
func (h *TaskHandler) ToggleTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.tasks.ToggleComplete(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, "Task status updated successfully", dto.ToTaskDTO(*task))
}

// BulkDeleteTasks deletes the owned tasks among the given ids
func (h *TaskHandler) BulkDeleteTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		IDs []uint64 `json:"ids"`
	}
	if !bindJSON(c, &req) {
		return
	}

	count, err := h.tasks.BulkDelete(c.Request.Context(), userID, req.IDs)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, "Tasks deleted successfully", dto.BulkDeleteResponse{DeletedCount: count})
}

// AssignTask hands an owned task to another user
func (h *TaskHandler) AssignTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.AssignInput
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.assignments.Assign(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, "Task assigned successfully", dto.ToTaskDTO(*task))
}

// UnassignTask clears the assignment of an owned task
func (h *TaskHandler) UnassignTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.assignments.Unassign(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, "Task unassigned successfully", dto.ToTaskDTO(*task))
}

// ListAssignedTasks returns the tasks assigned to the caller
func (h *TaskHandler) ListAssignedTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tasks, err := h.assignments.ListAssigned(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, "Assigned tasks fetched successfully", dto.ToTaskDTOs(tasks))
}

// GenerateTasks drafts task suggestions from text. Nothing is saved.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if !bindJSON(c, &req) {
		return
	}

	drafts, err := h.tasks.DraftTasks(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, "Tasks drafted successfully", gin.H{"tasks": drafts})
}
