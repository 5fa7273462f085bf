package jobs

import (
	"context"
	"log/slog"

	"github.com/yukikurage/tasknest/internal/services"
)

// StatsSource provides the task counters reported by StatsReporter.
type StatsSource interface {
	TaskStats(ctx context.Context) (*services.TaskStats, error)
}

// StatsReporter logs a snapshot of task counters.
type StatsReporter struct {
	source StatsSource
	logger *slog.Logger
}

func NewStatsReporter(source StatsSource, logger *slog.Logger) *StatsReporter {
	return &StatsReporter{
		source: source,
		logger: logger,
	}
}

// Report reads the current stats and logs them in a single record.
func (r *StatsReporter) Report(ctx context.Context) {
	stats, err := r.source.TaskStats(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to collect task stats", slog.Any("error", err))
		return
	}

	byPriority := make([]any, 0, len(stats.CountsByPriority))
	for priority, count := range stats.CountsByPriority {
		byPriority = append(byPriority, slog.Int64(string(priority), count))
	}

	r.logger.InfoContext(ctx, "task stats",
		slog.Int64("active", stats.ActiveCount),
		slog.Int64("completed", stats.CompletedCount),
		slog.Group("active_by_priority", byPriority...),
	)
}
