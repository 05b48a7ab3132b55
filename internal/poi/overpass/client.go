// Package overpass implements a POI provider backed by the OpenStreetMap
// Overpass API.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/saferoute/saferoute/internal/poi"
	"github.com/saferoute/saferoute/internal/provider/resilience"
)

const (
	// ProviderName identifies this POI provider.
	ProviderName = "overpass"

	// DefaultBaseURL is the public Overpass API interpreter endpoint.
	DefaultBaseURL = "https://overpass-api.de/api/interpreter"
)

// ClientConfig holds configuration for the Overpass client.
type ClientConfig struct {
	// BaseURL is the interpreter endpoint (optional, defaults to the public API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Overpass API client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Overpass client.
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

// CountPOIs returns the number of POIs of the category within radiusMeters.
// The query uses Overpass's count output, so only the tally crosses the wire.
func (c *Client) CountPOIs(ctx context.Context, lat, lon, radiusMeters float64, category poi.Category) (int, error) {
	query := buildQuery(lat, lon, radiusMeters, category)

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var opResp overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&opResp); err != nil {
		return 0, fmt.Errorf("decoding response: %w", err)
	}

	for _, el := range opResp.Elements {
		if el.Type == "count" {
			total, err := strconv.Atoi(el.Tags.Total)
			if err != nil {
				return 0, fmt.Errorf("parsing count: %w", err)
			}
			return total, nil
		}
	}

	return 0, fmt.Errorf("no count element in response")
}

// buildQuery renders the Overpass QL for a category count around a point.
func buildQuery(lat, lon, radiusMeters float64, category poi.Category) string {
	around := fmt.Sprintf("(around:%.0f,%.6f,%.6f)", radiusMeters, lat, lon)

	var selectors string
	if category == poi.CategoryEmergency {
		selectors = fmt.Sprintf(`node["amenity"~"police|hospital|clinic|fire_station"]%s;`, around)
	} else {
		selectors = fmt.Sprintf(
			`node["amenity"]%[1]s;node["shop"]%[1]s;node["tourism"]%[1]s;`, around)
	}

	return fmt.Sprintf("[out:json][timeout:10];(%s);out count;", selectors)
}

// Overpass API response structures.

type overpassResponse struct {
	Elements []struct {
		Type string `json:"type"`
		Tags struct {
			Total string `json:"total"`
		} `json:"tags"`
	} `json:"elements"`
}

// Ensure Client implements the poi provider interface.
var _ poi.Provider = (*Client)(nil)
