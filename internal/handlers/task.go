package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskquest-api/internal/dto"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/middleware"
	"github.com/yukikurage/taskquest-api/internal/models"
	"github.com/yukikurage/taskquest-api/internal/services"
	"github.com/yukikurage/taskquest-api/internal/utils"
)

const dateOnlyLayout = "2006-01-02"

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListMyTasks returns the tasks of every team the current user belongs to.
// Can filter by status
func (h *TaskHandler) ListMyTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	status := c.Query("status")
	if status != "" && !models.TaskStatus(status).Valid() {
		apierrors.InvalidStatus(c, "Invalid status filter")
		return
	}

	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListMyTasks(c.Request.Context(), userID, status, &params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// CreateTask creates a new task in a team
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		TeamID     uint64  `json:"team_id" binding:"required"`
		TaskName   string  `json:"task_name" binding:"required"`
		TaskDesc   *string `json:"task_desc"`
		Difficulty string  `json:"difficulty"`
		Status     string  `json:"status"`
		DateDue    string  `json:"date_due"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	dateDue, err := parseDueDate(req.DateDue)
	if err != nil {
		apierrors.BadRequest(c, "Invalid date_due format. Use RFC3339 or YYYY-MM-DD")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		TeamID:     req.TeamID,
		ActorID:    userID,
		TaskName:   req.TaskName,
		TaskDesc:   req.TaskDesc,
		Difficulty: req.Difficulty,
		Status:     req.Status,
		DateDue:    dateDue,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns the task loaded by RequireTaskAccess
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task context missing")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask edits task fields (team admin or creator)
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task context missing")
		return
	}

	type UpdateTaskRequest struct {
		TaskName   *string `json:"task_name"`
		TaskDesc   *string `json:"task_desc"`
		Difficulty *string `json:"difficulty"`
		DateDue    *string `json:"date_due"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		TaskName:   req.TaskName,
		TaskDesc:   req.TaskDesc,
		Difficulty: req.Difficulty,
	}
	if req.DateDue != nil {
		// An empty string removes the due date.
		dateDue, err := parseDueDate(*req.DateDue)
		if err != nil {
			apierrors.BadRequest(c, "Invalid date_due format. Use RFC3339 or YYYY-MM-DD")
			return
		}
		input.DateDue = dateDue
		input.ClearDateDue = dateDue == nil
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), task.ID, userID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask removes a task (team admin or creator)
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task context missing")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), task.ID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// ChangeStatus moves a task to a new status, awarding XP on completion
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task context missing")
		return
	}

	type ChangeStatusRequest struct {
		Status string `json:"status" binding:"required"`
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "status is required")
		return
	}

	result, err := h.taskService.ChangeStatus(c.Request.Context(), services.ChangeStatusInput{
		TaskID:  task.ID,
		ActorID: userID,
		Status:  req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStatusChangeResponse(result))
}

// ListCollaborators returns the collaborators of a task
func (h *TaskHandler) ListCollaborators(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task context missing")
		return
	}

	collaborators, err := h.taskService.ListCollaborators(c.Request.Context(), task.ID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"collaborators": dto.ToCollaboratorDTOs(collaborators),
	})
}

// AddCollaborator adds or updates a collaborator on a task
func (h *TaskHandler) AddCollaborator(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task context missing")
		return
	}

	type AddCollaboratorRequest struct {
		UserID uint64 `json:"user_id" binding:"required"`
		Role   string `json:"role"`
		Status string `json:"status"`
	}

	var req AddCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "user_id is required")
		return
	}

	collaborator, err := h.taskService.AddCollaborator(c.Request.Context(), services.AddCollaboratorInput{
		TaskID:  task.ID,
		ActorID: userID,
		UserID:  req.UserID,
		Role:    req.Role,
		Status:  req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCollaboratorDTO(*collaborator))
}

// UpdateCollaboratorStatus changes the invitation status of a collaborator
func (h *TaskHandler) UpdateCollaboratorStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task context missing")
		return
	}
	collaboratorID, ok := idParam(c, "user_id")
	if !ok {
		return
	}

	type UpdateCollaboratorRequest struct {
		Status string `json:"status" binding:"required"`
	}

	var req UpdateCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "status is required")
		return
	}

	collaborator, err := h.taskService.UpdateCollaboratorStatus(c.Request.Context(), task.ID, userID, collaboratorID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCollaboratorDTO(*collaborator))
}

// RemoveCollaborator removes a collaborator from a task
func (h *TaskHandler) RemoveCollaborator(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task context missing")
		return
	}
	collaboratorID, ok := idParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.taskService.RemoveCollaborator(c.Request.Context(), task.ID, userID, collaboratorID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Collaborator removed successfully",
	})
}

// GenerateTasks drafts tasks for a team from free text using AI
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	teamID, ok := idParam(c, "id")
	if !ok {
		return
	}

	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "text is required")
		return
	}

	drafts, err := h.taskService.GenerateTasks(c.Request.Context(), services.GenerateTasksInput{
		TeamID:  teamID,
		ActorID: userID,
		Text:    req.Text,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToGeneratedTaskDTOs(drafts),
	})
}

// parseDueDate accepts RFC3339 or a bare date. Empty input means no due date.
func parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnlyLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
