package repository

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/tasknest/internal/database"
	"github.com/yukikurage/tasknest/internal/models"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// withTx returns a repository bound to an open transaction
func (r *GormTaskRepository) withTx(tx *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: tx}
}

func tagsByName(db *gorm.DB) *gorm.DB {
	return db.Order("tags.name ASC")
}

// Create creates a new task and attaches the given tags
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task, tagIDs []uint64) (err error) {
	ctx, span := startSpan(ctx, "TaskRepository.Create", attribute.Int("tag_count", len(tagIDs)))
	defer func() { endSpan(span, err) }()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}
		return r.withTx(tx).AttachTags(ctx, task.ID, tagIDs)
	})
}

// FindByID finds a task by ID with its tags
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64) (_ *models.Task, err error) {
	ctx, span := startSpan(ctx, "TaskRepository.FindByID", attribute.Int64("task.id", int64(id)))
	defer func() { endSpan(span, err) }()

	var task models.Task
	if err := r.db.WithContext(ctx).Preload("Tags", tagsByName).First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *GormTaskRepository) filtered(ctx context.Context, filter TaskFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Task{})

	if filter.Completed != nil {
		query = query.Where("tasks.is_completed = ?", *filter.Completed)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}

	return query
}

// List retrieves tasks with filtering, ordering and optional pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) (_ []models.Task, _ int64, err error) {
	ctx, span := startSpan(ctx, "TaskRepository.List")
	defer func() { endSpan(span, err) }()

	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := r.filtered(ctx, filter)
	switch filter.Order {
	case OrderRecentlyUpdated:
		listQuery = listQuery.Order("tasks.updated_at DESC")
	default:
		listQuery = listQuery.Order("tasks.created_at DESC")
	}
	// Rows written within the same clock tick keep insertion order
	listQuery = listQuery.Order("tasks.id DESC")

	if filter.Pagination != nil {
		listQuery = listQuery.Scopes(database.Paginate(*filter.Pagination))
	}

	tasks := []models.Task{}
	if err := listQuery.Preload("Tags", tagsByName).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update saves the task's title and priority and, when tagIDs is non-nil,
// replaces its tag set in the same transaction
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task, tagIDs *[]uint64) (err error) {
	ctx, span := startSpan(ctx, "TaskRepository.Update", attribute.Int64("task.id", int64(task.ID)))
	defer func() { endSpan(span, err) }()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(task).Select("title", "priority").Updates(task).Error; err != nil {
			return err
		}
		if tagIDs == nil {
			return nil
		}
		return r.withTx(tx).SyncTags(ctx, task.ID, *tagIDs)
	})
}

// MarkCompleted marks the task as completed
func (r *GormTaskRepository) MarkCompleted(ctx context.Context, id uint64) (err error) {
	ctx, span := startSpan(ctx, "TaskRepository.MarkCompleted", attribute.Int64("task.id", int64(id)))
	defer func() { endSpan(span, err) }()

	result := r.db.WithContext(ctx).Model(&models.Task{ID: id}).Update("is_completed", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the task and its tag links
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) (err error) {
	ctx, span := startSpan(ctx, "TaskRepository.Delete", attribute.Int64("task.id", int64(id)))
	defer func() { endSpan(span, err) }()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.withTx(tx).DetachTags(ctx, id); err != nil {
			return err
		}

		result := tx.Delete(&models.Task{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// AttachTags links tags to a task; pairs that already exist are skipped
func (r *GormTaskRepository) AttachTags(ctx context.Context, taskID uint64, tagIDs []uint64) (err error) {
	if len(tagIDs) == 0 {
		return nil
	}

	ctx, span := startSpan(ctx, "TaskRepository.AttachTags", attribute.Int64("task.id", int64(taskID)))
	defer func() { endSpan(span, err) }()

	links := make([]models.TaskTag, len(tagIDs))
	for i, tagID := range tagIDs {
		links[i] = models.TaskTag{
			TaskID: taskID,
			TagID:  tagID,
		}
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

// DetachTags unlinks tags from a task
func (r *GormTaskRepository) DetachTags(ctx context.Context, taskID uint64, tagIDs ...uint64) (err error) {
	ctx, span := startSpan(ctx, "TaskRepository.DetachTags", attribute.Int64("task.id", int64(taskID)))
	defer func() { endSpan(span, err) }()

	query := r.db.WithContext(ctx).Where("task_id = ?", taskID)
	if len(tagIDs) > 0 {
		query = query.Where("tag_id IN ?", tagIDs)
	}
	return query.Delete(&models.TaskTag{}).Error
}

// SyncTags replaces the task's tag set with tagIDs
func (r *GormTaskRepository) SyncTags(ctx context.Context, taskID uint64, tagIDs []uint64) (err error) {
	ctx, span := startSpan(ctx, "TaskRepository.SyncTags", attribute.Int64("task.id", int64(taskID)))
	defer func() { endSpan(span, err) }()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Where("task_id = ?", taskID)
		if len(tagIDs) > 0 {
			stale = stale.Where("tag_id NOT IN ?", tagIDs)
		}
		if err := stale.Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}

		return r.withTx(tx).AttachTags(ctx, taskID, tagIDs)
	})
}

// Count counts tasks, optionally restricted to one completion state
func (r *GormTaskRepository) Count(ctx context.Context, completed *bool) (_ int64, err error) {
	ctx, span := startSpan(ctx, "TaskRepository.Count")
	defer func() { endSpan(span, err) }()

	var count int64
	err = r.filtered(ctx, TaskFilter{Completed: completed}).Count(&count).Error
	return count, err
}

type priorityCount struct {
	Priority models.Priority
	Count    int64
}

// CountActiveByPriority counts non-completed tasks grouped by priority
func (r *GormTaskRepository) CountActiveByPriority(ctx context.Context) (_ map[models.Priority]int64, err error) {
	ctx, span := startSpan(ctx, "TaskRepository.CountActiveByPriority")
	defer func() { endSpan(span, err) }()

	var rows []priorityCount
	if err := r.db.WithContext(ctx).Model(&models.Task{}).
		Select("priority, COUNT(*) AS count").
		Where("is_completed = ?", false).
		Group("priority").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.Priority]int64, len(rows))
	for _, row := range rows {
		counts[row.Priority] = row.Count
	}
	return counts, nil
}
