package dto

import (
	"time"

	"github.com/yukikurage/tasknest/internal/models"
	"github.com/yukikurage/tasknest/internal/services"
	"github.com/yukikurage/tasknest/internal/utils"
)

// CreateTaskRequest is the body of POST /api/tasks
type CreateTaskRequest struct {
	Title    string          `json:"title"`
	Priority models.Priority `json:"priority"`
	TagIDs   []uint64        `json:"tag_ids"`
}

// UpdateTaskRequest is the body of PATCH /api/tasks/:id.
// An absent or null tag_ids keeps the current tags; [] removes them all.
type UpdateTaskRequest struct {
	Title    *string          `json:"title"`
	Priority *models.Priority `json:"priority"`
	TagIDs   *[]uint64        `json:"tag_ids"`
}

// GenerateTasksRequest is the body of POST /api/tasks/generate
type GenerateTasksRequest struct {
	Text string `json:"text"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID            uint64          `json:"id"`
	Title         string          `json:"title"`
	Priority      models.Priority `json:"priority"`
	PriorityLabel string          `json:"priority_label"`
	PriorityLevel int             `json:"priority_level"`
	IsCompleted   bool            `json:"is_completed"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Tags          []TagDTO        `json:"tags"`
}

// TaskSummaryDTO represents a task nested in a tag response
type TaskSummaryDTO struct {
	ID          uint64          `json:"id"`
	Title       string          `json:"title"`
	Priority    models.Priority `json:"priority"`
	IsCompleted bool            `json:"is_completed"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TaskListResponse represents a list of tasks, paginated when Pagination is set
type TaskListResponse struct {
	Tasks      []TaskDTO                 `json:"tasks"`
	Pagination *utils.PaginationResponse `json:"pagination,omitempty"`
}

// TaskStatsDTO represents task statistics
type TaskStatsDTO struct {
	ActiveCount      int64                     `json:"active_count"`
	CompletedCount   int64                     `json:"completed_count"`
	CountsByPriority map[models.Priority]int64 `json:"counts_by_priority"`
}

// TaskDraftDTO represents an AI suggested task
type TaskDraftDTO struct {
	Title    string          `json:"title"`
	Priority models.Priority `json:"priority"`
	Tags     []string        `json:"tags"`
}

// GenerateTasksResponse lists AI suggested tasks
type GenerateTasksResponse struct {
	Tasks []TaskDraftDTO `json:"tasks"`
}

// Conversion functions

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:            task.ID,
		Title:         task.Title,
		Priority:      task.Priority,
		PriorityLabel: task.Priority.Label(),
		PriorityLevel: task.Priority.Level(),
		IsCompleted:   task.IsCompleted,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
		Tags:          make([]TagDTO, len(task.Tags)),
	}

	for i, tag := range task.Tags {
		dto.Tags[i] = ToTagDTO(tag)
	}

	return dto
}

// ToTaskSummaryDTO converts a Task model to TaskSummaryDTO
func ToTaskSummaryDTO(task models.Task) TaskSummaryDTO {
	return TaskSummaryDTO{
		ID:          task.ID,
		Title:       task.Title,
		Priority:    task.Priority,
		IsCompleted: task.IsCompleted,
		CreatedAt:   task.CreatedAt,
	}
}

// ToTaskListResponse converts a slice of tasks; pagination may be nil
func ToTaskListResponse(tasks []models.Task, pagination *utils.PaginationResponse) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Pagination: pagination,
	}
}

// ToTaskStatsDTO converts service statistics to TaskStatsDTO
func ToTaskStatsDTO(stats services.TaskStats) TaskStatsDTO {
	counts := stats.CountsByPriority
	if counts == nil {
		counts = map[models.Priority]int64{}
	}

	return TaskStatsDTO{
		ActiveCount:      stats.ActiveCount,
		CompletedCount:   stats.CompletedCount,
		CountsByPriority: counts,
	}
}

// ToGenerateTasksResponse converts AI drafts to GenerateTasksResponse
func ToGenerateTasksResponse(drafts []services.TaskDraft) GenerateTasksResponse {
	items := make([]TaskDraftDTO, len(drafts))
	for i, draft := range drafts {
		tags := draft.Tags
		if tags == nil {
			tags = []string{}
		}
		items[i] = TaskDraftDTO{
			Title:    draft.Title,
			Priority: draft.Priority,
			Tags:     tags,
		}
	}

	return GenerateTasksResponse{Tasks: items}
}
