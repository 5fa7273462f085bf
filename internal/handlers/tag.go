package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/tasknest/internal/dto"
	apierrors "github.com/yukikurage/tasknest/internal/errors"
	"github.com/yukikurage/tasknest/internal/middleware"
	"github.com/yukikurage/tasknest/internal/services"
	"github.com/yukikurage/tasknest/internal/utils"
)

type TagHandler struct {
	tagService *services.TagService
	logger     *slog.Logger
}

func NewTagHandler(tagService *services.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		logger:     logger,
	}
}

// ListTags returns tags ordered by name, filtered by ?search=.
// With ?page= the response is paginated and includes task counts.
func (h *TagHandler) ListTags(c *gin.Context) {
	ctx := c.Request.Context()
	search := c.Query("search")

	if _, paginated := c.GetQuery("page"); paginated {
		params := utils.GetPaginationParams(c)
		tags, total, err := h.tagService.PaginateTags(ctx, search, params.Page, params.Limit)
		if err != nil {
			apierrors.RespondDomainError(c, err)
			return
		}

		pagination := utils.NewPaginationResponse(params, total)
		c.JSON(http.StatusOK, dto.ToTagCountListResponse(tags, &pagination))
		return
	}

	tags, err := h.tagService.ListTags(ctx, search)
	if err != nil {
		apierrors.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTagListResponse(tags))
}

// SearchTags returns a handful of tags matching ?q=, for autocomplete
func (h *TagHandler) SearchTags(c *gin.Context) {
	tags, err := h.tagService.SearchTags(c.Request.Context(), c.Query("q"))
	if err != nil {
		apierrors.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTagListResponse(tags))
}

// PopularTags returns the most used tags; ?limit= defaults to 10
func (h *TagHandler) PopularTags(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	tags, err := h.tagService.PopularTags(c.Request.Context(), limit)
	if err != nil {
		apierrors.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTagCountListResponse(tags, nil))
}

// ActiveTaskCounts returns every tag with its number of non-completed tasks
func (h *TagHandler) ActiveTaskCounts(c *gin.Context) {
	tags, err := h.tagService.TagsWithActiveTaskCount(c.Request.Context())
	if err != nil {
		apierrors.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTagCountListResponse(tags, nil))
}

// CountTags returns the number of tags
func (h *TagHandler) CountTags(c *gin.Context) {
	total, err := h.tagService.CountTags(c.Request.Context())
	if err != nil {
		apierrors.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TagTotalResponse{Total: total})
}

// GetTag returns a tag with the tasks it is attached to
func (h *TagHandler) GetTag(c *gin.Context) {
	tagID, ok := middleware.GetID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid tag ID")
		return
	}

	tag, err := h.tagService.GetTag(c.Request.Context(), tagID)
	if err != nil {
		apierrors.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTagDetailDTO(*tag))
}

// CreateTag creates a new tag
func (h *TagHandler) CreateTag(c *gin.Context) {
	var req dto.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	tag, err := h.tagService.CreateTag(c.Request.Context(), services.CreateTagInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		apierrors.RespondDomainError(c, err)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "tag created", slog.Uint64("tag_id", tag.ID))

	c.JSON(http.StatusCreated, dto.ToTagDTO(*tag))
}

// UpdateTag updates a tag's name and/or color
func (h *TagHandler) UpdateTag(c *gin.Context) {
	tagID, ok := middleware.GetID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid tag ID")
		return
	}

	var req dto.UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	tag, err := h.tagService.UpdateTag(c.Request.Context(), tagID, services.UpdateTagInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		apierrors.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTagDTO(*tag))
}

// DeleteTag detaches a tag from all tasks and deletes it
func (h *TagHandler) DeleteTag(c *gin.Context) {
	tagID, ok := middleware.GetID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid tag ID")
		return
	}

	if _, err := h.tagService.DeleteTag(c.Request.Context(), tagID); err != nil {
		apierrors.RespondDomainError(c, err)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "tag deleted", slog.Uint64("tag_id", tagID))

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted successfully"})
}
