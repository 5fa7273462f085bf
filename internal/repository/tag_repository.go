package repository

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yukikurage/tasknest/internal/database"
	"github.com/yukikurage/tasknest/internal/models"
	"github.com/yukikurage/tasknest/internal/utils"
)

const tagColumns = "tags.id, tags.name, tags.color, tags.created_at, tags.updated_at"

// GormTagRepository is a GORM implementation of TagRepository
type GormTagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &GormTagRepository{db: db}
}

// Create creates a new tag
func (r *GormTagRepository) Create(ctx context.Context, tag *models.Tag) (err error) {
	ctx, span := startSpan(ctx, "TagRepository.Create")
	defer func() { endSpan(span, err) }()

	return r.db.WithContext(ctx).Create(tag).Error
}

// FindByID finds a tag by ID with optional preloading
func (r *GormTagRepository) FindByID(ctx context.Context, id uint64, preload ...string) (_ *models.Tag, err error) {
	ctx, span := startSpan(ctx, "TagRepository.FindByID", attribute.Int64("tag.id", int64(id)))
	defer func() { endSpan(span, err) }()

	var tag models.Tag
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&tag, id).Error; err != nil {
		return nil, err
	}

	return &tag, nil
}

// FindByName finds a tag by name
func (r *GormTagRepository) FindByName(ctx context.Context, name string) (_ *models.Tag, err error) {
	ctx, span := startSpan(ctx, "TagRepository.FindByName")
	defer func() { endSpan(span, err) }()

	var tag models.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// Update saves the tag's name and color
func (r *GormTagRepository) Update(ctx context.Context, tag *models.Tag) (err error) {
	ctx, span := startSpan(ctx, "TagRepository.Update", attribute.Int64("tag.id", int64(tag.ID)))
	defer func() { endSpan(span, err) }()

	return r.db.WithContext(ctx).Model(tag).Select("name", "color").Updates(tag).Error
}

// Delete removes the tag and every task link pointing at it
func (r *GormTagRepository) Delete(ctx context.Context, id uint64) (err error) {
	ctx, span := startSpan(ctx, "TagRepository.Delete", attribute.Int64("tag.id", int64(id)))
	defer func() { endSpan(span, err) }()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Tag{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func searchName(search string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}
		return db.Where("tags.name LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(search)+"%")
	}
}

// likeEscaper makes % and _ in a search term match literally, with '!' as the
// LIKE escape character.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// List retrieves tags ordered by name
func (r *GormTagRepository) List(ctx context.Context, filter TagFilter) (_ []models.Tag, err error) {
	ctx, span := startSpan(ctx, "TagRepository.List")
	defer func() { endSpan(span, err) }()

	query := r.db.WithContext(ctx).Scopes(searchName(filter.Search)).Order("tags.name ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	tags := []models.Tag{}
	if err := query.Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *GormTagRepository) withTaskCount(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Tag{}).
		Select(tagColumns + ", COUNT(task_tag.task_id) AS task_count").
		Joins("LEFT JOIN task_tag ON task_tag.tag_id = tags.id").
		Group(tagColumns)
}

// ListWithTaskCount retrieves a page of tags, with their task counts, ordered by name
func (r *GormTagRepository) ListWithTaskCount(ctx context.Context, search string, params utils.PaginationParams) (_ []models.TagCount, _ int64, err error) {
	ctx, span := startSpan(ctx, "TagRepository.ListWithTaskCount")
	defer func() { endSpan(span, err) }()

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Tag{}).Scopes(searchName(search)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tags := []models.TagCount{}
	if err := r.withTaskCount(ctx).
		Scopes(searchName(search), database.Paginate(params)).
		Order("tags.name ASC").
		Scan(&tags).Error; err != nil {
		return nil, 0, err
	}

	return tags, total, nil
}

// Popular retrieves the most used tags, ties broken by name
func (r *GormTagRepository) Popular(ctx context.Context, limit int) (_ []models.TagCount, err error) {
	ctx, span := startSpan(ctx, "TagRepository.Popular", attribute.Int("limit", limit))
	defer func() { endSpan(span, err) }()

	tags := []models.TagCount{}
	if err := r.withTaskCount(ctx).
		Order("task_count DESC").
		Order("tags.name ASC").
		Limit(limit).
		Scan(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// ListWithActiveTaskCount retrieves all tags with the number of non-completed tasks using them
func (r *GormTagRepository) ListWithActiveTaskCount(ctx context.Context) (_ []models.TagCount, err error) {
	ctx, span := startSpan(ctx, "TagRepository.ListWithActiveTaskCount")
	defer func() { endSpan(span, err) }()

	tags := []models.TagCount{}
	if err := r.db.WithContext(ctx).Model(&models.Tag{}).
		Select(tagColumns+", COUNT(tasks.id) AS task_count").
		Joins("LEFT JOIN task_tag ON task_tag.tag_id = tags.id").
		Joins("LEFT JOIN tasks ON tasks.id = task_tag.task_id AND tasks.is_completed = ?", false).
		Group(tagColumns).
		Order("tags.name ASC").
		Scan(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// CountByIDs counts how many of the given tag IDs exist
func (r *GormTagRepository) CountByIDs(ctx context.Context, ids []uint64) (_ int64, err error) {
	ctx, span := startSpan(ctx, "TagRepository.CountByIDs", attribute.Int("tag_count", len(ids)))
	defer func() { endSpan(span, err) }()

	if len(ids) == 0 {
		return 0, nil
	}

	var count int64
	err = r.db.WithContext(ctx).Model(&models.Tag{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}

// Count counts all tags
func (r *GormTagRepository) Count(ctx context.Context) (_ int64, err error) {
	ctx, span := startSpan(ctx, "TagRepository.Count")
	defer func() { endSpan(span, err) }()

	var count int64
	err = r.db.WithContext(ctx).Model(&models.Tag{}).Count(&count).Error
	return count, err
}
