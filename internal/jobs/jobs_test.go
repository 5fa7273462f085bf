package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/tasknest/internal/models"
	"github.com/yukikurage/tasknest/internal/repository"
	"github.com/yukikurage/tasknest/internal/services"
	"github.com/yukikurage/tasknest/internal/testutil"
)

type failingSource struct{}

func (failingSource) TaskStats(context.Context) (*services.TaskStats, error) {
	return nil, errors.New("database is locked")
}

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestStatsReporterReport(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateTask(t, db, "Low one", models.PriorityLow)
	testutil.CreateTask(t, db, "High one", models.PriorityHigh)
	done := testutil.CreateTask(t, db, "Done", models.PriorityHigh)
	require.NoError(t, db.Model(done).Update("is_completed", true).Error)

	taskService := services.NewTaskService(repository.NewTaskRepository(db), repository.NewTagRepository(db), nil)

	var buf bytes.Buffer
	reporter := NewStatsReporter(taskService, slog.New(slog.NewJSONHandler(&buf, nil)))
	reporter.Report(context.Background())

	record := decodeRecord(t, &buf)
	assert.Equal(t, "task stats", record["msg"])
	assert.Equal(t, float64(2), record["active"])
	assert.Equal(t, float64(1), record["completed"])
	assert.Equal(t, map[string]interface{}{"low": float64(1), "high": float64(1)}, record["active_by_priority"])
}

func TestStatsReporterReportFailure(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewStatsReporter(failingSource{}, slog.New(slog.NewJSONHandler(&buf, nil)))
	reporter.Report(context.Background())

	record := decodeRecord(t, &buf)
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "database is locked", record["error"])
}

func TestSchedulerRejectsInvalidSpec(t *testing.T) {
	scheduler := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := scheduler.Schedule("stats", "every tuesday", func(context.Context) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to schedule stats")
	assert.Zero(t, scheduler.Len())
}

func TestSchedulerRunsJobs(t *testing.T) {
	scheduler := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	var runs atomic.Int32
	_, err := scheduler.Schedule("tick", "@every 1s", func(context.Context) {
		runs.Add(1)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, scheduler.Len())

	scheduler.Start()
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	scheduler.Stop()
}

func TestSchedulerStopCancelsJobContext(t *testing.T) {
	scheduler := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	started := make(chan struct{}, 1)
	var cancelled atomic.Bool
	_, err := scheduler.Schedule("slow", "@every 1s", func(ctx context.Context) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		cancelled.Store(true)
	})
	require.NoError(t, err)

	scheduler.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not start")
	}

	scheduler.Stop()
	assert.True(t, cancelled.Load())
}
