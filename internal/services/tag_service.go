package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yukikurage/tasknest/internal/constants"
	"github.com/yukikurage/tasknest/internal/domain"
	"github.com/yukikurage/tasknest/internal/models"
	"github.com/yukikurage/tasknest/internal/repository"
	"github.com/yukikurage/tasknest/internal/utils"
	"github.com/yukikurage/tasknest/internal/validation"
)

// TagService handles tag business logic
type TagService struct {
	tagRepo repository.TagRepository
}

// NewTagService creates a new TagService
func NewTagService(tagRepo repository.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

// CreateTagInput represents input for creating a tag
type CreateTagInput struct {
	Name  string
	Color string
}

// UpdateTagInput represents input for updating a tag
type UpdateTagInput struct {
	Name  *string
	Color *string
}

// CreateTag validates and creates a tag. An empty color falls back to the default.
func (s *TagService) CreateTag(ctx context.Context, input CreateTagInput) (*models.Tag, error) {
	name := validation.NormalizeText(input.Name)
	color := validation.NormalizeText(input.Color)
	if color == "" {
		color = models.DefaultTagColor
	}

	if err := validation.TagName(name); err != nil {
		return nil, err
	}
	if err := validation.TagColor(color); err != nil {
		return nil, err
	}
	if err := s.ensureNameAvailable(ctx, name, 0); err != nil {
		return nil, err
	}

	tag := &models.Tag{
		Name:  name,
		Color: color,
	}

	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, tagWriteError(err, "create tag")
	}

	return tag, nil
}

// UpdateTag changes the name and/or color of a tag
func (s *TagService) UpdateTag(ctx context.Context, tagID uint64, input UpdateTagInput) (*models.Tag, error) {
	tag, err := s.findTag(ctx, tagID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := validation.NormalizeText(*input.Name)
		if err := validation.TagName(name); err != nil {
			return nil, err
		}
		if err := s.ensureNameAvailable(ctx, name, tag.ID); err != nil {
			return nil, err
		}
		tag.Name = name
	}
	if input.Color != nil {
		color := validation.NormalizeText(*input.Color)
		if err := validation.TagColor(color); err != nil {
			return nil, err
		}
		tag.Color = color
	}

	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return nil, tagWriteError(err, "update tag")
	}

	return tag, nil
}

// DeleteTag detaches a tag from every task and deletes it
func (s *TagService) DeleteTag(ctx context.Context, tagID uint64) (bool, error) {
	if _, err := s.findTag(ctx, tagID); err != nil {
		return false, err
	}

	if err := s.tagRepo.Delete(ctx, tagID); err != nil {
		return false, lookupError(err, domain.NewTagNotFoundError(tagID), "delete tag")
	}

	return true, nil
}

// GetTag returns a tag with the tasks it is attached to
func (s *TagService) GetTag(ctx context.Context, tagID uint64) (*models.Tag, error) {
	tag, err := s.tagRepo.FindByID(ctx, tagID, "Tasks")
	if err != nil {
		return nil, lookupError(err, domain.NewTagNotFoundError(tagID), "find tag")
	}
	return tag, nil
}

// ListTags returns tags ordered by name, optionally filtered by a substring of the name
func (s *TagService) ListTags(ctx context.Context, search string) ([]models.Tag, error) {
	tags, err := s.tagRepo.List(ctx, repository.TagFilter{Search: validation.NormalizeText(search)})
	if err != nil {
		return nil, domain.NewPersistenceError("list tags", err)
	}
	return tags, nil
}

// SearchTags returns the first few tags whose name contains search, for autocomplete
func (s *TagService) SearchTags(ctx context.Context, search string) ([]models.Tag, error) {
	search = validation.NormalizeText(search)
	if search == "" {
		return []models.Tag{}, nil
	}

	tags, err := s.tagRepo.List(ctx, repository.TagFilter{
		Search: search,
		Limit:  constants.TagSearchLimit,
	})
	if err != nil {
		return nil, domain.NewPersistenceError("search tags", err)
	}
	return tags, nil
}

// PaginateTags returns one page of tags with their task counts, and the total number of matching tags
func (s *TagService) PaginateTags(ctx context.Context, search string, page, pageSize int) ([]models.TagCount, int64, error) {
	params := utils.NewPaginationParams(page, pageSize)

	tags, total, err := s.tagRepo.ListWithTaskCount(ctx, validation.NormalizeText(search), params)
	if err != nil {
		return nil, 0, domain.NewPersistenceError("paginate tags", err)
	}
	return tags, total, nil
}

// PopularTags returns the tags used by the most tasks
func (s *TagService) PopularTags(ctx context.Context, limit int) ([]models.TagCount, error) {
	if limit <= 0 {
		limit = constants.DefaultPopularTagLimit
	}

	tags, err := s.tagRepo.Popular(ctx, limit)
	if err != nil {
		return nil, domain.NewPersistenceError("list popular tags", err)
	}
	return tags, nil
}

// TagsWithActiveTaskCount returns every tag with the number of non-completed tasks using it
func (s *TagService) TagsWithActiveTaskCount(ctx context.Context) ([]models.TagCount, error) {
	tags, err := s.tagRepo.ListWithActiveTaskCount(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError("count active tasks per tag", err)
	}
	return tags, nil
}

// CountTags returns the number of tags
func (s *TagService) CountTags(ctx context.Context) (int64, error) {
	count, err := s.tagRepo.Count(ctx)
	if err != nil {
		return 0, domain.NewPersistenceError("count tags", err)
	}
	return count, nil
}

func (s *TagService) findTag(ctx context.Context, tagID uint64) (*models.Tag, error) {
	tag, err := s.tagRepo.FindByID(ctx, tagID)
	if err != nil {
		return nil, lookupError(err, domain.NewTagNotFoundError(tagID), "find tag")
	}
	return tag, nil
}

// ensureNameAvailable fails when another tag than selfID already uses name
func (s *TagService) ensureNameAvailable(ctx context.Context, name string, selfID uint64) error {
	existing, err := s.tagRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return domain.NewPersistenceError("check tag name", err)
	}

	if existing.ID != selfID {
		return domain.NewValidationError(validation.FieldName, reasonNameTaken)
	}
	return nil
}
