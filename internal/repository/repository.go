package repository

import (
	"context"

	"github.com/yukikurage/tasknest/internal/models"
	"github.com/yukikurage/tasknest/internal/utils"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a task and attaches the given tags in one transaction
	Create(ctx context.Context, task *models.Task, tagIDs []uint64) error

	// FindByID finds a task by ID with its tags
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// List retrieves tasks with their tags, filtered and ordered
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update saves title and priority; a non-nil tagIDs replaces the tag set
	Update(ctx context.Context, task *models.Task, tagIDs *[]uint64) error

	// MarkCompleted flips is_completed to true
	MarkCompleted(ctx context.Context, id uint64) error

	// Delete detaches all tags and deletes the task
	Delete(ctx context.Context, id uint64) error

	// AttachTags links tags to a task, ignoring pairs that already exist
	AttachTags(ctx context.Context, taskID uint64, tagIDs []uint64) error

	// DetachTags unlinks tags from a task; no tag IDs detaches all of them
	DetachTags(ctx context.Context, taskID uint64, tagIDs ...uint64) error

	// SyncTags makes tagIDs the exact tag set of a task
	SyncTags(ctx context.Context, taskID uint64, tagIDs []uint64) error

	// Count counts tasks, optionally by completion state
	Count(ctx context.Context, completed *bool) (int64, error)

	// CountActiveByPriority counts non-completed tasks per priority
	CountActiveByPriority(ctx context.Context) (map[models.Priority]int64, error)
}

// TaskOrder selects the sort order of a task listing
type TaskOrder int

const (
	// OrderNewestFirst sorts by creation time, newest first
	OrderNewestFirst TaskOrder = iota
	// OrderRecentlyUpdated sorts by last update, most recent first
	OrderRecentlyUpdated
)

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Completed  *bool
	Priority   *models.Priority
	Order      TaskOrder
	Pagination *utils.PaginationParams
}

// TagRepository defines the interface for tag data access
type TagRepository interface {
	// Create creates a new tag
	Create(ctx context.Context, tag *models.Tag) error

	// FindByID finds a tag by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Tag, error)

	// FindByName finds a tag by its exact name
	FindByName(ctx context.Context, name string) (*models.Tag, error)

	// Update updates a tag
	Update(ctx context.Context, tag *models.Tag) error

	// Delete detaches the tag from every task and deletes it
	Delete(ctx context.Context, id uint64) error

	// List retrieves tags ordered by name
	List(ctx context.Context, filter TagFilter) ([]models.Tag, error)

	// ListWithTaskCount retrieves a page of tags annotated with their task count
	ListWithTaskCount(ctx context.Context, search string, params utils.PaginationParams) ([]models.TagCount, int64, error)

	// Popular retrieves tags ordered by descending task count
	Popular(ctx context.Context, limit int) ([]models.TagCount, error)

	// ListWithActiveTaskCount retrieves tags annotated with their non-completed task count
	ListWithActiveTaskCount(ctx context.Context) ([]models.TagCount, error)

	// CountByIDs counts how many of the given tag IDs exist
	CountByIDs(ctx context.Context, ids []uint64) (int64, error)

	// Count counts all tags
	Count(ctx context.Context) (int64, error)
}

// TagFilter holds filtering options for listing tags
type TagFilter struct {
	Search string
	Limit  int
}
