package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	apierrors "github.com/yukikurage/tasknest/internal/errors"
	"github.com/yukikurage/tasknest/internal/handlers"
	"github.com/yukikurage/tasknest/internal/middleware"
	"github.com/yukikurage/tasknest/internal/telemetry"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Task   *handlers.TaskHandler
	Tag    *handlers.TagHandler
	Health *handlers.HealthHandler
}

// NewRouter builds the gin engine. metrics may be nil.
func NewRouter(h Handlers, logger *slog.Logger, metrics *telemetry.Metrics) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	if metrics != nil {
		r.Use(middleware.Metrics(metrics))
	}

	r.NoRoute(func(c *gin.Context) {
		apierrors.NotFound(c, "Route not found")
	})

	r.GET("/health", h.Health.Health)

	api := r.Group("/api")
	{
		tasks := api.Group("/tasks")
		{
			taskID := middleware.RequireID("task")

			tasks.GET("", h.Task.ListTasks)
			tasks.POST("", h.Task.CreateTask)
			tasks.GET("/stats", h.Task.GetStats)
			tasks.POST("/generate", h.Task.GenerateTasks)
			tasks.GET("/:id", taskID, h.Task.GetTask)
			tasks.PATCH("/:id", taskID, h.Task.UpdateTask)
			tasks.DELETE("/:id", taskID, h.Task.DeleteTask)
			tasks.POST("/:id/complete", taskID, h.Task.CompleteTask)
		}

		tags := api.Group("/tags")
		{
			tagID := middleware.RequireID("tag")

			tags.GET("", h.Tag.ListTags)
			tags.POST("", h.Tag.CreateTag)
			tags.GET("/search", h.Tag.SearchTags)
			tags.GET("/popular", h.Tag.PopularTags)
			tags.GET("/active-counts", h.Tag.ActiveTaskCounts)
			tags.GET("/count", h.Tag.CountTags)
			tags.GET("/:id", tagID, h.Tag.GetTag)
			tags.PATCH("/:id", tagID, h.Tag.UpdateTag)
			tags.DELETE("/:id", tagID, h.Tag.DeleteTag)
		}
	}

	return r
}
