package osrm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferoute/saferoute/internal/routing"
	"github.com/saferoute/saferoute/pkg/geo"
)

const routeBody = `{
	"code": "Ok",
	"routes": [
		{
			"geometry": "_p~iF~ps|U_ulLnnqC",
			"distance": 6214.3,
			"duration": 4474.5,
			"legs": [{"summary": "Anna Salai, Kamarajar Salai"}]
		},
		{
			"geometry": "_p~iF~ps|U_mqNvxq` + "`" + `@",
			"distance": 6890.1,
			"duration": 4961.0,
			"legs": [{"summary": ""}]
		}
	]
}`

func TestClient_GetDirections(t *testing.T) {
	var path, query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(routeBody))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Logger: zerolog.Nop()})

	resp, err := client.GetDirections(context.Background(), routing.DirectionsRequest{
		Origin:       geo.Point{Lat: 13.0827, Lon: 80.2707},
		Destination:  geo.Point{Lat: 13.0398, Lon: 80.2342},
		Profile:      routing.ProfileFoot,
		Alternatives: true,
	})
	require.NoError(t, err)

	// Lon-first coordinate order in the path.
	assert.Equal(t, "/route/v1/foot/80.270700,13.082700;80.234200,13.039800", path)
	assert.Contains(t, query, "alternatives=true")
	assert.Contains(t, query, "geometries=polyline")

	require.Len(t, resp.Routes, 2)
	assert.Equal(t, ProviderName, resp.Provider)
	assert.InDelta(t, 6214.3, resp.Routes[0].DistanceMeters, 1e-9)
	assert.Equal(t, "Anna Salai, Kamarajar Salai", resp.Routes[0].Summary)
	assert.NotEmpty(t, resp.Routes[0].Waypoints())
}

func TestClient_GetDirections_NoRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code": "NoRoute", "message": "Impossible route between points"}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Logger: zerolog.Nop()})

	_, err := client.GetDirections(context.Background(), routing.DirectionsRequest{
		Origin:      geo.Point{Lat: 13.0827, Lon: 80.2707},
		Destination: geo.Point{Lat: 13.0398, Lon: 80.2342},
		Profile:     routing.ProfileFoot,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, routing.ErrNoRouteFound)

	var routingErr *routing.Error
	require.True(t, errors.As(err, &routingErr))
	assert.Equal(t, "NoRoute", routingErr.Code)
	assert.False(t, routingErr.IsRetryable())
}

func TestClient_GetDirections_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Logger: zerolog.Nop()})

	_, err := client.GetDirections(context.Background(), routing.DirectionsRequest{
		Origin:      geo.Point{Lat: 13.0827, Lon: 80.2707},
		Destination: geo.Point{Lat: 13.0398, Lon: 80.2342},
		Profile:     routing.ProfileFoot,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, routing.ErrRateLimitExceeded)

	var routingErr *routing.Error
	require.True(t, errors.As(err, &routingErr))
	assert.True(t, routingErr.IsRetryable())
}

func TestClient_GetDirections_BikeProfile(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(routeBody))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Logger: zerolog.Nop()})

	_, err := client.GetDirections(context.Background(), routing.DirectionsRequest{
		Origin:      geo.Point{Lat: 13.0827, Lon: 80.2707},
		Destination: geo.Point{Lat: 13.0398, Lon: 80.2342},
		Profile:     routing.ProfileBike,
	})
	require.NoError(t, err)
	assert.Contains(t, path, "/route/v1/bike/")
}
