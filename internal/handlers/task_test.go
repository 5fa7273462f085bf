package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/yukikurage/tasknest/internal/constants"
	"github.com/yukikurage/tasknest/internal/dto"
	apierrors "github.com/yukikurage/tasknest/internal/errors"
	"github.com/yukikurage/tasknest/internal/models"
	"github.com/yukikurage/tasknest/internal/repository"
	"github.com/yukikurage/tasknest/internal/services"
	"github.com/yukikurage/tasknest/internal/testutil"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// newContext builds a test context; a non-zero id is stored as RequireID would
func newContext(method, url string, body []byte, id uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if id != 0 {
		c.Set(constants.ContextKeyID, id)
	}

	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.APIError {
	t.Helper()

	var apiErr apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	return apiErr
}

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	suite.db = testutil.NewTestDB(suite.T())

	taskService := services.NewTaskService(
		repository.NewTaskRepository(suite.db),
		repository.NewTagRepository(suite.db),
		nil,
	)
	suite.handler = NewTaskHandler(taskService, discardLogger)

	gin.SetMode(gin.TestMode)
}

func (suite *TaskHandlerTestSuite) decodeList(w *httptest.ResponseRecorder) dto.TaskListResponse {
	var response dto.TaskListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func (suite *TaskHandlerTestSuite) TestListTasks_ActiveByDefault() {
	testutil.CreateTask(suite.T(), suite.db, "Open task", models.PriorityLow)
	done := testutil.CreateTask(suite.T(), suite.db, "Closed task", models.PriorityLow)
	suite.Require().NoError(suite.db.Model(done).Update("is_completed", true).Error)

	c, w := newContext(http.MethodGet, "/api/tasks", nil, 0)
	suite.handler.ListTasks(c)

	suite.Equal(http.StatusOK, w.Code)
	response := suite.decodeList(w)
	suite.Require().Len(response.Tasks, 1)
	suite.Equal("Open task", response.Tasks[0].Title)
	suite.Equal("Low Priority", response.Tasks[0].PriorityLabel)
	suite.Nil(response.Pagination)
}

func (suite *TaskHandlerTestSuite) TestListTasks_Completed() {
	testutil.CreateTask(suite.T(), suite.db, "Open task", models.PriorityLow)
	done := testutil.CreateTask(suite.T(), suite.db, "Closed task", models.PriorityLow)
	suite.Require().NoError(suite.db.Model(done).Update("is_completed", true).Error)

	c, w := newContext(http.MethodGet, "/api/tasks?status=completed", nil, 0)
	suite.handler.ListTasks(c)

	suite.Equal(http.StatusOK, w.Code)
	response := suite.decodeList(w)
	suite.Require().Len(response.Tasks, 1)
	suite.True(response.Tasks[0].IsCompleted)
}

func (suite *TaskHandlerTestSuite) TestListTasks_AllPaginated() {
	for _, title := range []string{"One", "Two", "Three"} {
		testutil.CreateTask(suite.T(), suite.db, title, models.PriorityMedium)
	}

	c, w := newContext(http.MethodGet, "/api/tasks?status=all&page=1&limit=2", nil, 0)
	suite.handler.ListTasks(c)

	suite.Equal(http.StatusOK, w.Code)
	response := suite.decodeList(w)
	suite.Len(response.Tasks, 2)
	suite.Require().NotNil(response.Pagination)
	suite.Equal(int64(3), response.Pagination.Total)
	suite.Equal(2, response.Pagination.TotalPages)
}

func (suite *TaskHandlerTestSuite) TestListTasks_ByPriority() {
	testutil.CreateTask(suite.T(), suite.db, "Low task", models.PriorityLow)
	testutil.CreateTask(suite.T(), suite.db, "High task", models.PriorityHigh)

	c, w := newContext(http.MethodGet, "/api/tasks?priority=high", nil, 0)
	suite.handler.ListTasks(c)

	suite.Equal(http.StatusOK, w.Code)
	response := suite.decodeList(w)
	suite.Require().Len(response.Tasks, 1)
	suite.Equal("High task", response.Tasks[0].Title)
}

func (suite *TaskHandlerTestSuite) TestListTasks_InvalidFilters() {
	c, w := newContext(http.MethodGet, "/api/tasks?status=archived", nil, 0)
	suite.handler.ListTasks(c)
	suite.Equal(http.StatusBadRequest, w.Code)

	c, w = newContext(http.MethodGet, "/api/tasks?priority=urgent", nil, 0)
	suite.handler.ListTasks(c)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(apierrors.ErrCodeInvalidInput, decodeError(suite.T(), w).Code)
}

func (suite *TaskHandlerTestSuite) TestGetTask_Success() {
	tag := testutil.CreateTag(suite.T(), suite.db, "work")
	task := testutil.CreateTask(suite.T(), suite.db, "Tagged task", models.PriorityHigh, tag)

	c, w := newContext(http.MethodGet, "/api/tasks/1", nil, task.ID)
	suite.handler.GetTask(c)

	suite.Equal(http.StatusOK, w.Code)
	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal(task.ID, response.ID)
	suite.Require().Len(response.Tags, 1)
	suite.Equal("work", response.Tags[0].Name)
}

func (suite *TaskHandlerTestSuite) TestGetTask_NotFound() {
	c, w := newContext(http.MethodGet, "/api/tasks/99", nil, 99)
	suite.handler.GetTask(c)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal(apierrors.ErrCodeNotFound, decodeError(suite.T(), w).Code)
}

func (suite *TaskHandlerTestSuite) TestGetTask_MissingID() {
	c, w := newContext(http.MethodGet, "/api/tasks/x", nil, 0)
	suite.handler.GetTask(c)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	tag := testutil.CreateTag(suite.T(), suite.db, "Urgent")

	body, _ := json.Marshal(map[string]interface{}{
		"title":    "Buy milk",
		"priority": "low",
		"tag_ids":  []uint64{tag.ID},
	})
	c, w := newContext(http.MethodPost, "/api/tasks", body, 0)
	suite.handler.CreateTask(c)

	suite.Equal(http.StatusCreated, w.Code)
	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("Buy milk", response.Title)
	suite.Equal(models.PriorityLow, response.Priority)
	suite.Equal(1, response.PriorityLevel)
	suite.False(response.IsCompleted)
	suite.Require().Len(response.Tags, 1)
	suite.Equal("Urgent", response.Tags[0].Name)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidRequest() {
	c, w := newContext(http.MethodPost, "/api/tasks", []byte(`{"title":`), 0)
	suite.handler.CreateTask(c)
	suite.Equal(http.StatusBadRequest, w.Code)

	body, _ := json.Marshal(map[string]interface{}{"title": "ab", "priority": "low"})
	c, w = newContext(http.MethodPost, "/api/tasks", body, 0)
	suite.handler.CreateTask(c)

	suite.Equal(http.StatusBadRequest, w.Code)
	apiErr := decodeError(suite.T(), w)
	suite.Equal(apierrors.ErrCodeInvalidInput, apiErr.Code)
	details, ok := apiErr.Details.(map[string]interface{})
	suite.Require().True(ok)
	suite.Equal("title", details["field"])
}

func (suite *TaskHandlerTestSuite) TestCreateTask_MissingFieldsReportField() {
	cases := []struct {
		body  string
		field string
	}{
		{`{"priority":"low"}`, "title"},
		{`{"title":"","priority":"low"}`, "title"},
		{`{"title":"Buy milk"}`, "priority"},
	}

	for _, tc := range cases {
		c, w := newContext(http.MethodPost, "/api/tasks", []byte(tc.body), 0)
		suite.handler.CreateTask(c)

		suite.Equal(http.StatusBadRequest, w.Code, tc.body)
		apiErr := decodeError(suite.T(), w)
		suite.Equal(apierrors.ErrCodeInvalidInput, apiErr.Code)
		details, ok := apiErr.Details.(map[string]interface{})
		suite.Require().True(ok, tc.body)
		suite.Equal(tc.field, details["field"])
		suite.Equal("is required", details["reason"])
	}

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Task{}).Count(&count).Error)
	suite.Zero(count)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_Success() {
	keep := testutil.CreateTag(suite.T(), suite.db, "keep")
	task := testutil.CreateTask(suite.T(), suite.db, "Original title", models.PriorityLow, keep)

	body, _ := json.Marshal(map[string]interface{}{"title": "Updated title"})
	c, w := newContext(http.MethodPatch, "/api/tasks/1", body, task.ID)
	suite.handler.UpdateTask(c)

	suite.Equal(http.StatusOK, w.Code)
	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("Updated title", response.Title)
	suite.Equal(models.PriorityLow, response.Priority)
	suite.Len(response.Tags, 1)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_EmptyTagIDsClearsTags() {
	tag := testutil.CreateTag(suite.T(), suite.db, "drop")
	task := testutil.CreateTask(suite.T(), suite.db, "Tagged", models.PriorityLow, tag)

	c, w := newContext(http.MethodPatch, "/api/tasks/1", []byte(`{"tag_ids":[]}`), task.ID)
	suite.handler.UpdateTask(c)

	suite.Equal(http.StatusOK, w.Code)
	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Empty(response.Tags)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_NullTagIDsKeepsTags() {
	tag := testutil.CreateTag(suite.T(), suite.db, "stay")
	task := testutil.CreateTask(suite.T(), suite.db, "Tagged", models.PriorityLow, tag)

	c, w := newContext(http.MethodPatch, "/api/tasks/1", []byte(`{"tag_ids":null,"priority":"high"}`), task.ID)
	suite.handler.UpdateTask(c)

	suite.Equal(http.StatusOK, w.Code)
	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal(models.PriorityHigh, response.Priority)
	suite.Len(response.Tags, 1)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_NotFound() {
	c, w := newContext(http.MethodPatch, "/api/tasks/99", []byte(`{"title":"Whatever"}`), 99)
	suite.handler.UpdateTask(c)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCompleteTask_Twice() {
	task := testutil.CreateTask(suite.T(), suite.db, "Finish me", models.PriorityMedium)

	for i := 0; i < 2; i++ {
		c, w := newContext(http.MethodPost, "/api/tasks/1/complete", nil, task.ID)
		suite.handler.CompleteTask(c)

		suite.Equal(http.StatusOK, w.Code)
		var response dto.TaskDTO
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
		suite.True(response.IsCompleted)
	}
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	task := testutil.CreateTask(suite.T(), suite.db, "Delete me", models.PriorityLow)

	c, w := newContext(http.MethodDelete, "/api/tasks/1", nil, task.ID)
	suite.handler.DeleteTask(c)
	suite.Equal(http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.Task{}).Count(&count)
	suite.Zero(count)

	c, w = newContext(http.MethodDelete, "/api/tasks/1", nil, task.ID)
	suite.handler.DeleteTask(c)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetStats_Success() {
	testutil.CreateTask(suite.T(), suite.db, "Low one", models.PriorityLow)
	testutil.CreateTask(suite.T(), suite.db, "Low two", models.PriorityLow)
	testutil.CreateTask(suite.T(), suite.db, "High one", models.PriorityHigh)
	done := testutil.CreateTask(suite.T(), suite.db, "Done", models.PriorityHigh)
	suite.Require().NoError(suite.db.Model(done).Update("is_completed", true).Error)

	c, w := newContext(http.MethodGet, "/api/tasks/stats", nil, 0)
	suite.handler.GetStats(c)

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"active_count":3,"completed_count":1,"counts_by_priority":{"low":2,"high":1}}`, w.Body.String())
}

func (suite *TaskHandlerTestSuite) TestGenerateTasks_NotConfigured() {
	c, w := newContext(http.MethodPost, "/api/tasks/generate", []byte(`{"text":"plan the trip"}`), 0)
	suite.handler.GenerateTasks(c)

	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}

func TestTaskHandler_StorageFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock := testutil.NewMockDB(t)
	taskService := services.NewTaskService(
		repository.NewTaskRepository(db),
		repository.NewTagRepository(db),
		nil,
	)
	handler := NewTaskHandler(taskService, discardLogger)

	mock.ExpectQuery("SELECT count").WillReturnError(errors.New("connection refused"))

	c, w := newContext(http.MethodGet, "/api/tasks/stats", nil, 0)
	handler.GetStats(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	apiErr := decodeError(t, w)
	assert.Equal(t, apierrors.ErrCodeInternalError, apiErr.Code)
	assert.NotContains(t, apiErr.Message, "connection refused")
	assert.Len(t, c.Errors, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
