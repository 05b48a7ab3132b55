package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferoute/saferoute/internal/api/models"
)

func TestProblem_Write(t *testing.T) {
	p := models.NewNotFound("trace-123", "report not found")
	p.Instance = "/v1/reports/nope"

	rec := httptest.NewRecorder()
	p.Write(rec)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "trace-123", rec.Header().Get("X-Request-Id"))

	var decoded models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, models.ProblemTypeNotFound, decoded.Type)
	assert.Equal(t, "Not found", decoded.Title)
	assert.Equal(t, "report not found", decoded.Detail)
	assert.Equal(t, "/v1/reports/nope", decoded.Instance)
}

func TestProblemConstructors(t *testing.T) {
	tests := []struct {
		name     string
		problem  *models.Problem
		wantType string
		wantCode int
	}{
		{
			name:     "bad request",
			problem:  models.NewBadRequest("t", "bad", nil),
			wantType: models.ProblemTypeValidation,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unauthorized",
			problem:  models.NewUnauthorized("t", "no token"),
			wantType: models.ProblemTypeUnauthorized,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "not found",
			problem:  models.NewNotFound("t", "gone"),
			wantType: models.ProblemTypeNotFound,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "conflict",
			problem:  models.NewConflict("t", "already resolved"),
			wantType: models.ProblemTypeConflict,
			wantCode: http.StatusConflict,
		},
		{
			name:     "too many requests",
			problem:  models.NewTooManyRequests("t", "slow down"),
			wantType: models.ProblemTypeTooManyRequests,
			wantCode: http.StatusTooManyRequests,
		},
		{
			name:     "internal error",
			problem:  models.NewInternalError("t", "boom"),
			wantType: models.ProblemTypeInternal,
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.problem.Type)
			assert.Equal(t, tt.wantCode, tt.problem.Status)
			assert.Equal(t, "t", tt.problem.TraceID)
			assert.NotEmpty(t, tt.problem.Title)
		})
	}
}

func TestNewBadRequest_FieldErrors(t *testing.T) {
	errs := []models.FieldError{
		{Field: "lat", Message: "must be a number", Code: "INVALID"},
		{Field: "lon", Message: "must be a number", Code: "INVALID"},
	}

	p := models.NewBadRequest("trace-456", "invalid coordinates", errs)

	require.Len(t, p.Errors, 2)
	assert.Equal(t, "lat", p.Errors[0].Field)
	assert.Equal(t, "INVALID", p.Errors[1].Code)

	// Field errors survive serialization
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"errors"`)
}

func TestProblem_OmitsEmptyFields(t *testing.T) {
	p := models.NewProblem(models.ProblemTypeInternal, "Internal server error", http.StatusInternalServerError, "t")

	data, err := json.Marshal(p)
	require.NoError(t, err)

	assert.NotContains(t, string(data), `"detail"`)
	assert.NotContains(t, string(data), `"instance"`)
	assert.NotContains(t, string(data), `"errors"`)
}
