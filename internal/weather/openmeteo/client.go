// Package openmeteo implements a weather provider backed by the Open-Meteo
// forecast API. Open-Meteo needs no API key, which keeps local development
// and the ingestion worker simple.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/saferoute/saferoute/internal/provider/resilience"
	"github.com/saferoute/saferoute/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "open-meteo"

	// DefaultBaseURL is the Open-Meteo forecast API base URL.
	DefaultBaseURL = "https://api.open-meteo.com/v1"
)

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to the public API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open-Meteo API client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Open-Meteo client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetCurrentWeather fetches current weather for a location.
func (c *Client) GetCurrentWeather(ctx context.Context, lat, lon float64) (*weather.Observation, error) {
	url := fmt.Sprintf(
		"%s/forecast?latitude=%.6f&longitude=%.6f&current=temperature_2m,precipitation,weather_code,wind_speed_10m,is_day",
		c.baseURL, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var omResp forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&omResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return c.toObservation(&omResp), nil
}

// toObservation converts an Open-Meteo response to the domain model.
func (c *Client) toObservation(resp *forecastResponse) *weather.Observation {
	obs := &weather.Observation{
		Lat:           resp.Latitude,
		Lon:           resp.Longitude,
		Temperature:   resp.Current.Temperature,
		Precipitation: resp.Current.Precipitation,
		WindSpeed:     resp.Current.WindSpeed,
		WMOCode:       resp.Current.WeatherCode,
		IsDay:         resp.Current.IsDay == 1,
		FetchedAt:     time.Now(),
	}

	if observedAt, err := time.Parse("2006-01-02T15:04", resp.Current.Time); err == nil {
		obs.ObservedAt = observedAt
	} else {
		obs.ObservedAt = obs.FetchedAt
	}

	return obs
}

// Open-Meteo API response structures.

type forecastResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Current   struct {
		Time          string  `json:"time"`
		Temperature   float64 `json:"temperature_2m"`
		Precipitation float64 `json:"precipitation"`
		WeatherCode   int     `json:"weather_code"`
		WindSpeed     float64 `json:"wind_speed_10m"`
		IsDay         int     `json:"is_day"`
	} `json:"current"`
}

// Ensure Client implements the weather provider interface.
var _ weather.Provider = (*Client)(nil)
