package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saferoute/saferoute/internal/api/middleware"
)

func TestRequestID_Generated(t *testing.T) {
	var ctxID string
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = middleware.GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/safety/score", nil))

	assert.Contains(t, ctxID, "req_")
	assert.Equal(t, ctxID, rec.Header().Get("X-Request-Id"))
}

func TestRequestID_HonorsCallerID(t *testing.T) {
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req_from_mobile_app", middleware.GetRequestID(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/routes", nil)
	req.Header.Set("X-Request-Id", "req_from_mobile_app")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req_from_mobile_app", rec.Header().Get("X-Request-Id"))
}

func TestGetRequestID_MissingFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/routes", nil)
	assert.Empty(t, middleware.GetRequestID(req.Context()))
}

func TestRequestID_Unique(t *testing.T) {
	handler := middleware.RequestID(okHandler())

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/routes", nil))

		id := rec.Header().Get("X-Request-Id")
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate request ID: %s", id)
		seen[id] = true
	}
}
