// Package osrm implements a routing provider backed by an OSRM HTTP server
// (for example the public router.project-osrm.org or a self-hosted instance
// with a foot profile).
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/saferoute/saferoute/internal/provider/resilience"
	"github.com/saferoute/saferoute/internal/routing"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "osrm"

	// DefaultBaseURL is the public OSRM demo server.
	DefaultBaseURL = "https://router.project-osrm.org"
)

// ClientConfig holds configuration for the OSRM client.
type ClientConfig struct {
	// BaseURL is the OSRM server base URL (optional, defaults to the demo server).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Registry tracks provider health (optional, only used when HTTPClient is nil).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OSRM API client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new OSRM client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
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

// SupportedProfiles returns the profiles this provider supports.
func (c *Client) SupportedProfiles() []routing.RouteProfile {
	return []routing.RouteProfile{routing.ProfileFoot, routing.ProfileBike}
}

// GetDirections retrieves route directions between two points. OSRM returns
// precision-5 encoded polylines directly, so no geometry conversion is
// needed.
func (c *Client) GetDirections(ctx context.Context, req routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	// OSRM takes coordinates lon-first.
	url := fmt.Sprintf(
		"%s/route/v1/%s/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=polyline&alternatives=%t",
		c.baseURL, profilePath(req.Profile),
		req.Origin.Lon, req.Origin.Lat,
		req.Destination.Lon, req.Destination.Lat,
		req.Alternatives)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "REQUEST_ERROR",
			Message:  "failed to create request",
			Err:      err,
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "TRANSPORT_ERROR",
			Message:  "request failed",
			Err:      routing.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMITED",
			Message:  "osrm rate limit exceeded",
			Err:      routing.ErrRateLimitExceeded,
		}
	case resp.StatusCode >= 500:
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  "osrm server error",
			Err:      routing.ErrProviderUnavailable,
		}
	}

	var osrmResp routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&osrmResp); err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "DECODE_ERROR",
			Message:  "failed to decode response",
			Err:      err,
		}
	}

	if osrmResp.Code != "Ok" {
		if osrmResp.Code == "NoRoute" || osrmResp.Code == "NoSegment" {
			return nil, &routing.Error{
				Provider: ProviderName,
				Code:     osrmResp.Code,
				Message:  osrmResp.Message,
				Err:      routing.ErrNoRouteFound,
			}
		}
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     osrmResp.Code,
			Message:  osrmResp.Message,
			Err:      routing.ErrProviderUnavailable,
		}
	}

	routes := make([]routing.Route, 0, len(osrmResp.Routes))
	for _, r := range osrmResp.Routes {
		routes = append(routes, routing.Route{
			GeometryPolyline: r.Geometry,
			DistanceMeters:   r.Distance,
			DurationSeconds:  r.Duration,
			Summary:          routeSummary(r),
		})
	}

	if len(routes) == 0 {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTES",
			Message:  "osrm returned no routes",
			Err:      routing.ErrNoRouteFound,
		}
	}

	return &routing.DirectionsResponse{
		Routes:    routes,
		Provider:  ProviderName,
		FetchedAt: time.Now(),
	}, nil
}

// profilePath maps a route profile onto an OSRM profile path segment.
func profilePath(profile routing.RouteProfile) string {
	switch profile {
	case routing.ProfileBike:
		return "bike"
	default:
		return "foot"
	}
}

// routeSummary joins the leg summaries into a human-readable string.
func routeSummary(r osrmRoute) string {
	for _, leg := range r.Legs {
		if leg.Summary != "" {
			return leg.Summary
		}
	}
	return ""
}

// OSRM API response structures.

type routeResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Geometry string  `json:"geometry"`
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Legs     []struct {
		Summary string `json:"summary"`
	} `json:"legs"`
}

// Ensure Client implements the routing provider interface.
var _ routing.Provider = (*Client)(nil)
