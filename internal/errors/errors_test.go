package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/tasknest/internal/domain"
)

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domain.NewValidationError("title", "is required"), http.StatusBadRequest, ErrCodeInvalidInput},
		{"wrapped validation", fmt.Errorf("create: %w", domain.NewValidationError("name", "has already been taken")), http.StatusBadRequest, ErrCodeInvalidInput},
		{"not found", domain.NewTaskNotFoundError(7), http.StatusNotFound, ErrCodeNotFound},
		{"persistence", domain.NewPersistenceError("list tasks", fmt.Errorf("disk I/O error")), http.StatusInternalServerError, ErrCodeInternalError},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, apiErr := FromDomain(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}

func TestFromDomainHidesPersistenceCause(t *testing.T) {
	_, apiErr := FromDomain(domain.NewPersistenceError("list tasks", fmt.Errorf("password authentication failed")))
	assert.Equal(t, "Internal server error", apiErr.Message)
	assert.Nil(t, apiErr.Details)
}

func TestRespondDomainError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondDomainError(c, domain.NewValidationError("color", "must be a hex color like #RRGGBB"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, c.IsAborted())
	assert.Len(t, c.Errors, 1)

	var body struct {
		Code    string       `json:"code"`
		Message string       `json:"message"`
		Details FieldDetails `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeInvalidInput, body.Code)
	assert.Equal(t, "color", body.Details.Field)
	assert.Equal(t, "must be a hex color like #RRGGBB", body.Details.Reason)
}
