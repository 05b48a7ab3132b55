package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferoute/saferoute/internal/api/middleware"
)

func serveWithMetrics(t *testing.T, handler http.HandlerFunc, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	metrics, err := middleware.NewMetrics()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, http.NoBody)
	metrics.Middleware()(handler).ServeHTTP(rec, req)
	return rec
}

func TestNewMetrics(t *testing.T) {
	metrics, err := middleware.NewMetrics()
	require.NoError(t, err)
	assert.NotNil(t, metrics)
}

func TestMetrics_Middleware(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantCode int
		wantBody string
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("OK"))
			},
			wantCode: http.StatusOK,
			wantBody: "OK",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("error"))
			},
			wantCode: http.StatusInternalServerError,
			wantBody: "error",
		},
		{
			name: "client error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveWithMetrics(t, tt.handler, http.MethodGet, "/v1/safety/score")

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestMetrics_Middleware_ImplicitStatusOK(t *testing.T) {
	rec := serveWithMetrics(t, func(w http.ResponseWriter, _ *http.Request) {
		// Write without WriteHeader implies 200
		_, _ = w.Write([]byte("response"))
	}, http.MethodGet, "/v1/routes")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewProviderMetrics(t *testing.T) {
	pm, err := middleware.NewProviderMetrics()
	require.NoError(t, err)
	assert.NotNil(t, pm)
}

func TestProviderMetrics_Record(t *testing.T) {
	pm, err := middleware.NewProviderMetrics()
	require.NoError(t, err)

	pm.RecordRequest("overpass", http.MethodPost, 120*time.Millisecond, nil)
	pm.RecordRequest("gibs", http.MethodGet, 2*time.Second, errors.New("timeout"))
	pm.RecordCacheHit("overpass", "count")
	pm.RecordCacheMiss("overpass", "count")
}
