package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/tasknest/internal/domain"
	"github.com/yukikurage/tasknest/internal/dto"
	apierrors "github.com/yukikurage/tasknest/internal/errors"
	"github.com/yukikurage/tasknest/internal/middleware"
	"github.com/yukikurage/tasknest/internal/models"
	"github.com/yukikurage/tasknest/internal/services"
	"github.com/yukikurage/tasknest/internal/utils"
)

// Values accepted by the status query parameter of ListTasks
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusAll       = "all"
)

type TaskHandler struct {
	taskService *services.TaskService
	logger      *slog.Logger
}

func NewTaskHandler(taskService *services.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks returns active tasks by default.
// status=completed|all, priority and page/limit narrow or paginate the list.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	ctx := c.Request.Context()

	status := c.DefaultQuery("status", StatusActive)
	var completed *bool
	switch status {
	case StatusActive:
		completed = boolPtr(false)
	case StatusCompleted:
		completed = boolPtr(true)
	case StatusAll:
	default:
		apierrors.BadRequestWithDetails(c, "Invalid status", apierrors.FieldDetails{
			Field:  "status",
			Reason: "must be one of: active, completed, all",
		})
		return
	}

	if priority := c.Query("priority"); priority != "" {
		if status != StatusActive {
			apierrors.BadRequest(c, "priority can only be combined with status=active")
			return
		}

		tasks, err := h.taskService.ListTasksByPriority(ctx, models.Priority(priority))
		if err != nil {
			apierrors.RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, nil))
		return
	}

	_, paginated := c.GetQuery("page")
	if paginated || status == StatusAll {
		params := utils.GetPaginationParams(c)
		tasks, total, err := h.taskService.PaginateTasks(ctx, completed, params.Page, params.Limit)
		if err != nil {
			apierrors.RespondDomainError(c, err)
			return
		}

		pagination := utils.NewPaginationResponse(params, total)
		c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, &pagination))
		return
	}

	var (
		tasks []models.Task
		err   error
	)
	if status == StatusCompleted {
		tasks, err = h.taskService.ListCompletedTasks(ctx)
	} else {
		tasks, err = h.taskService.ListActiveTasks(ctx)
	}
	if err != nil {
		apierrors.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, nil))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := middleware.GetID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), taskID)
	if err != nil {
		apierrors.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		Title:    req.Title,
		Priority: req.Priority,
		TagIDs:   req.TagIDs,
	})
	if err != nil {
		apierrors.RespondDomainError(c, err)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "task created",
		slog.Uint64("task_id", task.ID),
		slog.Int("tag_count", len(task.Tags)),
	)

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates an existing task. Absent fields keep their values.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, ok := middleware.GetID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), taskID, services.UpdateTaskInput{
		Title:    req.Title,
		Priority: req.Priority,
		TagIDs:   req.TagIDs,
	})
	if err != nil {
		apierrors.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CompleteTask marks a task as completed
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	taskID, ok := middleware.GetID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.taskService.CompleteTask(c.Request.Context(), taskID)
	if err != nil {
		apierrors.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, ok := middleware.GetID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if _, err := h.taskService.DeleteTask(c.Request.Context(), taskID); err != nil {
		apierrors.RespondDomainError(c, err)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "task deleted", slog.Uint64("task_id", taskID))

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// GetStats returns active/completed counts and the per-priority breakdown
func (h *TaskHandler) GetStats(c *gin.Context) {
	stats, err := h.taskService.TaskStats(c.Request.Context())
	if err != nil {
		apierrors.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskStatsDTO(*stats))
}

// GenerateTasks asks the AI service for task drafts from free text.
// Drafts are returned for review and not stored.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	var req dto.GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.GenerateTaskDrafts(c.Request.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAIServiceNotConfigured):
			apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
		case domain.IsValidation(err):
			apierrors.RespondDomainError(c, err)
		case errors.Is(err, services.ErrAINoTasksGenerated),
			errors.Is(err, services.ErrAINoValidTasks),
			errors.Is(err, services.ErrAITooManyTasks):
			apierrors.UnprocessableEntity(c, err.Error())
		default:
			_ = c.Error(err)
			apierrors.BadGateway(c, "Failed to generate tasks")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToGenerateTasksResponse(drafts))
}

func boolPtr(v bool) *bool {
	return &v
}
