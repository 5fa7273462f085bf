package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/tasknest/internal/constants"
	"github.com/yukikurage/tasknest/internal/domain"
	"github.com/yukikurage/tasknest/internal/models"
	"github.com/yukikurage/tasknest/internal/repository"
	"github.com/yukikurage/tasknest/internal/utils"
	"github.com/yukikurage/tasknest/internal/validation"
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo  repository.TaskRepository
	tagRepo   repository.TagRepository
	aiService *AIService
}

// NewTaskService creates a new TaskService. aiService may be nil.
func NewTaskService(taskRepo repository.TaskRepository, tagRepo repository.TagRepository, aiService *AIService) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		tagRepo:   tagRepo,
		aiService: aiService,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title    string
	Priority models.Priority
	TagIDs   []uint64
}

// UpdateTaskInput represents input for updating a task.
// A nil TagIDs keeps the current tags; a non-nil empty slice removes them all.
type UpdateTaskInput struct {
	Title    *string
	Priority *models.Priority
	TagIDs   *[]uint64
}

// TaskStats summarizes the task list
type TaskStats struct {
	ActiveCount      int64
	CompletedCount   int64
	CountsByPriority map[models.Priority]int64
}

// CreateTask validates input and creates an active task with the given tags
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := validation.NormalizeText(input.Title)
	if err := validation.TaskTitle(title); err != nil {
		return nil, err
	}
	if err := validation.TaskPriority(input.Priority); err != nil {
		return nil, err
	}

	tagIDs := validation.UniqueIDs(input.TagIDs)
	if err := s.ensureTagsExist(ctx, tagIDs); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:    title,
		Priority: input.Priority,
	}

	if err := s.taskRepo.Create(ctx, task, tagIDs); err != nil {
		return nil, domain.NewPersistenceError("create task", err)
	}

	return s.findTask(ctx, task.ID)
}

// GetTask returns a task with its tags
func (s *TaskService) GetTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	return s.findTask(ctx, taskID)
}

// UpdateTask updates an existing task
func (s *TaskService) UpdateTask(ctx context.Context, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := validation.NormalizeText(*input.Title)
		if err := validation.TaskTitle(title); err != nil {
			return nil, err
		}
		task.Title = title
	}
	if input.Priority != nil {
		if err := validation.TaskPriority(*input.Priority); err != nil {
			return nil, err
		}
		task.Priority = *input.Priority
	}

	var tagIDs *[]uint64
	if input.TagIDs != nil {
		ids := validation.UniqueIDs(*input.TagIDs)
		if err := s.ensureTagsExist(ctx, ids); err != nil {
			return nil, err
		}
		tagIDs = &ids
	}

	if err := s.taskRepo.Update(ctx, task, tagIDs); err != nil {
		return nil, lookupError(err, domain.NewTaskNotFoundError(taskID), "update task")
	}

	return s.findTask(ctx, taskID)
}

// CompleteTask marks a task as completed. Completing a completed task changes nothing.
func (s *TaskService) CompleteTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.IsCompleted {
		return task, nil
	}

	if err := s.taskRepo.MarkCompleted(ctx, taskID); err != nil {
		return nil, lookupError(err, domain.NewTaskNotFoundError(taskID), "complete task")
	}

	return s.findTask(ctx, taskID)
}

// DeleteTask detaches all tags from a task and deletes it
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint64) (bool, error) {
	if _, err := s.findTask(ctx, taskID); err != nil {
		return false, err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return false, lookupError(err, domain.NewTaskNotFoundError(taskID), "delete task")
	}

	return true, nil
}

// ListActiveTasks returns non-completed tasks, newest first
func (s *TaskService) ListActiveTasks(ctx context.Context) ([]models.Task, error) {
	return s.listTasks(ctx, repository.TaskFilter{Completed: boolPtr(false)})
}

// ListCompletedTasks returns completed tasks, most recently updated first
func (s *TaskService) ListCompletedTasks(ctx context.Context) ([]models.Task, error) {
	return s.listTasks(ctx, repository.TaskFilter{
		Completed: boolPtr(true),
		Order:     repository.OrderRecentlyUpdated,
	})
}

// ListTasksByPriority returns non-completed tasks of one priority, newest first
func (s *TaskService) ListTasksByPriority(ctx context.Context, priority models.Priority) ([]models.Task, error) {
	if err := validation.TaskPriority(priority); err != nil {
		return nil, err
	}

	return s.listTasks(ctx, repository.TaskFilter{
		Completed: boolPtr(false),
		Priority:  &priority,
	})
}

// PaginateTasks returns one page of tasks, newest first, and the total number of matching tasks.
// A nil completed includes tasks in both states.
func (s *TaskService) PaginateTasks(ctx context.Context, completed *bool, page, pageSize int) ([]models.Task, int64, error) {
	params := utils.NewPaginationParams(page, pageSize)

	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{
		Completed:  completed,
		Pagination: &params,
	})
	if err != nil {
		return nil, 0, domain.NewPersistenceError("paginate tasks", err)
	}

	return tasks, total, nil
}

// TaskStats counts active and completed tasks, with a per-priority breakdown of active ones
func (s *TaskService) TaskStats(ctx context.Context) (*TaskStats, error) {
	active, err := s.taskRepo.Count(ctx, boolPtr(false))
	if err != nil {
		return nil, domain.NewPersistenceError("count active tasks", err)
	}

	completed, err := s.taskRepo.Count(ctx, boolPtr(true))
	if err != nil {
		return nil, domain.NewPersistenceError("count completed tasks", err)
	}

	byPriority, err := s.taskRepo.CountActiveByPriority(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError("count tasks by priority", err)
	}

	return &TaskStats{
		ActiveCount:      active,
		CompletedCount:   completed,
		CountsByPriority: byPriority,
	}, nil
}

// CountActiveTasks returns the number of non-completed tasks
func (s *TaskService) CountActiveTasks(ctx context.Context) (int64, error) {
	count, err := s.taskRepo.Count(ctx, boolPtr(false))
	if err != nil {
		return 0, domain.NewPersistenceError("count active tasks", err)
	}
	return count, nil
}

// GenerateTaskDrafts uses AI to suggest tasks from free text. Nothing is stored.
func (s *TaskService) GenerateTaskDrafts(ctx context.Context, text string) ([]TaskDraft, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	text = validation.NormalizeText(text)
	if err := validation.DraftText(text); err != nil {
		return nil, err
	}

	drafts, err := s.aiService.DraftTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(drafts) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("%w (max %d)", ErrAITooManyTasks, constants.MaxAIGeneratedTasks)
	}

	validDrafts := make([]TaskDraft, 0, len(drafts))
	for _, draft := range drafts {
		draft.Title = validation.NormalizeText(draft.Title)
		if validation.TaskTitle(draft.Title) != nil {
			continue
		}

		if !draft.Priority.IsValid() {
			draft.Priority = models.PriorityMedium
		}

		draft.Tags = cleanTagNames(draft.Tags)
		validDrafts = append(validDrafts, draft)
	}

	if len(validDrafts) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validDrafts, nil
}

func (s *TaskService) listTasks(ctx context.Context, filter repository.TaskFilter) ([]models.Task, error) {
	tasks, _, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.NewPersistenceError("list tasks", err)
	}
	return tasks, nil
}

func (s *TaskService) findTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, lookupError(err, domain.NewTaskNotFoundError(taskID), "find task")
	}
	return task, nil
}

// ensureTagsExist rejects the whole operation when any tag id is unknown
func (s *TaskService) ensureTagsExist(ctx context.Context, tagIDs []uint64) error {
	if len(tagIDs) == 0 {
		return nil
	}

	count, err := s.tagRepo.CountByIDs(ctx, tagIDs)
	if err != nil {
		return domain.NewPersistenceError("verify tags", err)
	}
	if int(count) != len(tagIDs) {
		return domain.NewValidationError(validation.FieldTagIDs, "contains unknown tag ids")
	}

	return nil
}

// cleanTagNames trims names and drops invalid or repeated ones
func cleanTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))

	for _, name := range names {
		name = validation.NormalizeText(name)
		if validation.TagName(name) != nil {
			continue
		}
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}

	return result
}

func boolPtr(v bool) *bool {
	return &v
}
