package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gorm.io/gorm"

	"github.com/yukikurage/tasknest/internal/constants"
	"github.com/yukikurage/tasknest/internal/dto"
	"github.com/yukikurage/tasknest/internal/handlers"
	"github.com/yukikurage/tasknest/internal/repository"
	"github.com/yukikurage/tasknest/internal/services"
	"github.com/yukikurage/tasknest/internal/telemetry"
	"github.com/yukikurage/tasknest/internal/testutil"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newHandlers(db *gorm.DB) Handlers {
	taskRepo := repository.NewTaskRepository(db)
	tagRepo := repository.NewTagRepository(db)

	return Handlers{
		Task:   handlers.NewTaskHandler(services.NewTaskService(taskRepo, tagRepo, nil), testLogger),
		Tag:    handlers.NewTagHandler(services.NewTagService(tagRepo), testLogger),
		Health: handlers.NewHealthHandler(db),
	}
}

type RouterTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

func (suite *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.db = testutil.NewTestDB(suite.T())
	suite.router = NewRouter(newHandlers(suite.db), testLogger, nil)
}

func (suite *RouterTestSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *RouterTestSuite) TestTaskLifecycle() {
	w := suite.do(http.MethodPost, "/api/tags", map[string]string{"name": "work"})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var tag dto.TagDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &tag))

	w = suite.do(http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":    "Write report",
		"priority": "high",
		"tag_ids":  []uint64{tag.ID},
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var task dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &task))

	path := "/api/tasks/" + jsonNumber(task.ID)

	w = suite.do(http.MethodPost, path+"/complete", nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, "/api/tasks/stats", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"active_count":0,"completed_count":1,"counts_by_priority":{}}`, w.Body.String())

	w = suite.do(http.MethodGet, "/api/tags/popular", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"task_count":1`)

	w = suite.do(http.MethodGet, "/api/tags/count", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"total":1}`, w.Body.String())

	w = suite.do(http.MethodDelete, path, nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, path, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *RouterTestSuite) TestInvalidID() {
	w := suite.do(http.MethodGet, "/api/tasks/abc", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "Invalid task ID")

	w = suite.do(http.MethodDelete, "/api/tags/0", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "Invalid tag ID")
}

func (suite *RouterTestSuite) TestUnknownRoute() {
	w := suite.do(http.MethodGet, "/api/projects", nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Contains(w.Body.String(), "NOT_FOUND")
}

func (suite *RouterTestSuite) TestRequestIDEchoed() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(constants.HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("req-123", w.Header().Get(constants.HeaderRequestID))

	w = suite.do(http.MethodGet, "/health", nil)
	suite.NotEmpty(w.Header().Get(constants.HeaderRequestID))
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func TestRouterRecordsMetricsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewTestDB(t)

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := telemetry.NewMetrics(provider.Meter("test"), func(context.Context) (int64, error) {
		return 0, nil
	})
	require.NoError(t, err)

	router := NewRouter(newHandlers(db), testLogger, metrics)
	for _, path := range []string{"/api/tasks/1", "/api/tasks/2"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var counter metricdata.Sum[int64]
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "http_requests_total" {
				counter = m.Data.(metricdata.Sum[int64])
			}
		}
	}

	require.Len(t, counter.DataPoints, 1)
	point := counter.DataPoints[0]
	assert.Equal(t, int64(2), point.Value)

	route, ok := point.Attributes.Value(attribute.Key("http.route"))
	require.True(t, ok)
	assert.Equal(t, "/api/tasks/:id", route.AsString())

	status, ok := point.Attributes.Value(attribute.Key("http.status_code"))
	require.True(t, ok)
	assert.Equal(t, "404", status.AsString())
}

func jsonNumber(id uint64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}
