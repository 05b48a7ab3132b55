package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferoute/saferoute/internal/api/models"
	"github.com/saferoute/saferoute/internal/api/response"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/safety/score", http.NoBody)

	response.JSON(rec, req, http.StatusOK, map[string]int{"overallScore": 72})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"overallScore":72}`, rec.Body.String())
}

func TestJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)

	response.JSON(rec, req, http.StatusOK, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/reports", http.NoBody)

	response.Created(rec, req, "/v1/reports/rpt_123", map[string]string{"id": "rpt_123"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/v1/reports/rpt_123", rec.Header().Get("Location"))
	assert.Contains(t, rec.Body.String(), "rpt_123")
}

func TestError_SetsInstance(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/routes/nope", http.NoBody)

	response.Error(rec, req, models.NewNotFound("trace-1", "route not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var p models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "/v1/routes/nope", p.Instance)
	assert.Equal(t, "route not found", p.Detail)
}

func TestBadRequest_FieldErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/safety/score", http.NoBody)

	response.BadRequest(rec, req, "invalid coordinates", []models.FieldError{
		{Field: "lat", Message: "must be a number", Code: "INVALID"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var p models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, models.ProblemTypeValidation, p.Type)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "lat", p.Errors[0].Field)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name     string
		write    func(w http.ResponseWriter, r *http.Request)
		wantCode int
	}{
		{
			name:     "not found",
			write:    func(w http.ResponseWriter, r *http.Request) { response.NotFound(w, r, "gone") },
			wantCode: http.StatusNotFound,
		},
		{
			name:     "conflict",
			write:    func(w http.ResponseWriter, r *http.Request) { response.Conflict(w, r, "already resolved") },
			wantCode: http.StatusConflict,
		},
		{
			name:     "internal error",
			write:    func(w http.ResponseWriter, r *http.Request) { response.InternalError(w, r, "boom") },
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/v1/test", http.NoBody)

			tt.write(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}
}
