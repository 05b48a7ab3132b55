package openmeteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const forecastBody = `{
	"latitude": 13.08,
	"longitude": 80.27,
	"current": {
		"time": "2026-08-30T19:30",
		"temperature_2m": 29.4,
		"precipitation": 2.1,
		"weather_code": 61,
		"wind_speed_10m": 14.2,
		"is_day": 0
	}
}`

func TestClient_GetCurrentWeather(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "13.082700", r.URL.Query().Get("latitude"))
		assert.Contains(t, r.URL.Query().Get("current"), "weather_code")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(forecastBody))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		Logger:  zerolog.Nop(),
	})

	obs, err := client.GetCurrentWeather(context.Background(), 13.0827, 80.2707)
	require.NoError(t, err)

	assert.InDelta(t, 13.08, obs.Lat, 1e-9)
	assert.InDelta(t, 29.4, obs.Temperature, 1e-9)
	assert.Equal(t, 61, obs.WMOCode)
	assert.False(t, obs.IsDay)
	assert.InDelta(t, 0.5, obs.Severity(), 1e-9)
	assert.Equal(t, 2026, obs.ObservedAt.Year())
}

func TestClient_GetCurrentWeather_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		Logger:  zerolog.Nop(),
	})

	_, err := client.GetCurrentWeather(context.Background(), 13.0827, 80.2707)
	require.Error(t, err)
}

func TestClient_Name(t *testing.T) {
	client := NewClient(ClientConfig{Logger: zerolog.Nop()})
	assert.Equal(t, ProviderName, client.Name())
}
