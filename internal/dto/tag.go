package dto

import (
	"time"

	"github.com/yukikurage/tasknest/internal/models"
	"github.com/yukikurage/tasknest/internal/utils"
)

// CreateTagRequest is the body of POST /api/tags
type CreateTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// UpdateTagRequest is the body of PATCH /api/tags/:id
type UpdateTagRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// TagDTO represents a tag in API responses
type TagDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagDetailDTO represents a tag together with its tasks
type TagDetailDTO struct {
	TagDTO
	Tasks []TaskSummaryDTO `json:"tasks"`
}

// TagCountDTO represents a tag annotated with a task count
type TagCountDTO struct {
	TagDTO
	TaskCount int64 `json:"task_count"`
}

// TagListResponse represents a list of tags
type TagListResponse struct {
	Tags []TagDTO `json:"tags"`
}

// TagTotalResponse is the body of GET /api/tags/count
type TagTotalResponse struct {
	Total int64 `json:"total"`
}

// TagCountListResponse represents a list of counted tags, paginated when Pagination is set
type TagCountListResponse struct {
	Tags       []TagCountDTO             `json:"tags"`
	Pagination *utils.PaginationResponse `json:"pagination,omitempty"`
}

// ToTagDTO converts a Tag model to TagDTO
func ToTagDTO(tag models.Tag) TagDTO {
	return TagDTO{
		ID:        tag.ID,
		Name:      tag.Name,
		Color:     tag.Color,
		CreatedAt: tag.CreatedAt,
		UpdatedAt: tag.UpdatedAt,
	}
}

// ToTagDetailDTO converts a Tag model with preloaded tasks
func ToTagDetailDTO(tag models.Tag) TagDetailDTO {
	dto := TagDetailDTO{
		TagDTO: ToTagDTO(tag),
		Tasks:  make([]TaskSummaryDTO, len(tag.Tasks)),
	}

	for i, task := range tag.Tasks {
		dto.Tasks[i] = ToTaskSummaryDTO(task)
	}

	return dto
}

// ToTagListResponse converts a slice of tags to TagListResponse
func ToTagListResponse(tags []models.Tag) TagListResponse {
	items := make([]TagDTO, len(tags))
	for i, tag := range tags {
		items[i] = ToTagDTO(tag)
	}
	return TagListResponse{Tags: items}
}

// ToTagCountListResponse converts counted tags; pagination may be nil
func ToTagCountListResponse(tags []models.TagCount, pagination *utils.PaginationResponse) TagCountListResponse {
	items := make([]TagCountDTO, len(tags))
	for i, tag := range tags {
		items[i] = TagCountDTO{
			TagDTO: TagDTO{
				ID:        tag.ID,
				Name:      tag.Name,
				Color:     tag.Color,
				CreatedAt: tag.CreatedAt,
				UpdatedAt: tag.UpdatedAt,
			},
			TaskCount: tag.TaskCount,
		}
	}

	return TagCountListResponse{
		Tags:       items,
		Pagination: pagination,
	}
}
