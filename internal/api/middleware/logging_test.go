package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferoute/saferoute/internal/api/middleware"
)

// logLine wraps a handler with the Logger middleware, serves one request, and
// decodes the resulting log entry.
func logLine(t *testing.T, inner http.Handler, req *http.Request, chain ...func(http.Handler) http.Handler) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	handler := middleware.Logger(zerolog.New(&buf))(inner)
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}

	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger_RequestFields(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("response body"))
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/safety/score", http.NoBody)
	req.Header.Set("User-Agent", "saferoute-app/2.1")

	entry := logLine(t, inner, req)

	assert.Equal(t, "request completed", entry["message"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/v1/safety/score", entry["path"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, float64(len("response body")), entry["bytes"])
	assert.Equal(t, "saferoute-app/2.1", entry["user_agent"])
	assert.NotEmpty(t, entry["duration"])
}

func TestLogger_ErrorStatus(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	entry := logLine(t, inner, httptest.NewRequest(http.MethodPost, "/v1/reports", http.NoBody))

	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, float64(500), entry["status"])
}

func TestLogger_RequestID(t *testing.T) {
	entry := logLine(t, okHandler(),
		httptest.NewRequest(http.MethodGet, "/v1/routes", http.NoBody),
		middleware.RequestID,
	)

	requestID, ok := entry["request_id"].(string)
	require.True(t, ok)
	assert.Contains(t, requestID, "req_")
}

func TestLogger_TraceCorrelation(t *testing.T) {
	setupTestTracer(t)

	entry := logLine(t, okHandler(),
		httptest.NewRequest(http.MethodGet, "/v1/routes/calculate", http.NoBody),
		middleware.Tracing("saferoute-api"),
	)

	traceID, ok := entry["trace_id"].(string)
	require.True(t, ok)
	assert.Len(t, traceID, 32)

	spanID, ok := entry["span_id"].(string)
	require.True(t, ok)
	assert.Len(t, spanID, 16)
}

func TestLogger_ImplicitStatusOK(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	entry := logLine(t, inner, httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody))

	assert.Equal(t, float64(200), entry["status"])
}
