package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/saferoute/saferoute/internal/api/middleware"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr
}

// endedSpan runs one request through the tracing middleware and returns the
// single recorded span.
func endedSpan(t *testing.T, sr *tracetest.SpanRecorder, handler http.Handler, req *http.Request) sdktrace.ReadOnlySpan {
	t.Helper()

	handler.ServeHTTP(httptest.NewRecorder(), req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	return spans[0]
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, attr := range span.Attributes() {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_CreatesServerSpan(t *testing.T) {
	sr := setupTestTracer(t)

	handler := middleware.Tracing("saferoute-api")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, trace.SpanFromContext(r.Context()).SpanContext().IsValid())
		w.WriteHeader(http.StatusOK)
	}))

	span := endedSpan(t, sr, handler, httptest.NewRequest(http.MethodGet, "/v1/safety/score", nil))
	assert.Equal(t, "GET /v1/safety/score", span.Name())
	assert.Equal(t, trace.SpanKindServer, span.SpanKind())
}

func TestTracing_ContinuesUpstreamTrace(t *testing.T) {
	sr := setupTestTracer(t)

	handler := middleware.Tracing("saferoute-api")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/routes/calculate", nil)
	req.Header.Set("traceparent", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01")

	span := endedSpan(t, sr, handler, req)
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", span.SpanContext().TraceID().String())
}

func TestTracing_RecordsResponseStatus(t *testing.T) {
	sr := setupTestTracer(t)

	handler := middleware.Tracing("saferoute-api")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	span := endedSpan(t, sr, handler, httptest.NewRequest(http.MethodGet, "/v1/reports/nope", nil))

	val, ok := spanAttr(span, "http.response.status_code")
	require.True(t, ok, "status code attribute should be set")
	assert.Equal(t, int64(404), val.AsInt64())

	// 4xx is not a span error
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestTracing_MarksServerErrors(t *testing.T) {
	sr := setupTestTracer(t)

	handler := middleware.Tracing("saferoute-api")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	span := endedSpan(t, sr, handler, httptest.NewRequest(http.MethodGet, "/v1/safety/score", nil))

	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "Internal Server Error", span.Status().Description)
}

func TestTracing_CarriesRequestID(t *testing.T) {
	sr := setupTestTracer(t)

	handler := middleware.RequestID(
		middleware.Tracing("saferoute-api")(okHandler()),
	)

	span := endedSpan(t, sr, handler, httptest.NewRequest(http.MethodGet, "/v1/reports", nil))

	val, ok := spanAttr(span, "request.id")
	require.True(t, ok, "request.id attribute should be set")
	assert.Contains(t, val.AsString(), "req_")
}
