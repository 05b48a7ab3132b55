// Package gibs implements a night-light provider backed by NASA GIBS WMS,
// serving the VIIRS day/night band composite. The client fetches a small
// tile centered on the query point and averages its luminance.
package gibs

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/saferoute/saferoute/internal/lighting"
	"github.com/saferoute/saferoute/internal/provider/resilience"
)

const (
	// ProviderName identifies this lighting provider.
	ProviderName = "gibs"

	// DefaultBaseURL is the GIBS WMS endpoint for EPSG:4326 layers.
	DefaultBaseURL = "https://gibs.earthdata.nasa.gov/wms/epsg4326/best/wms.cgi"

	// DefaultLayer is the VIIRS day/night band radiance composite.
	DefaultLayer = "VIIRS_SNPP_DayNightBand_At_Sensor_Radiance"

	// tileSizePx is the edge length of the fetched tile in pixels.
	tileSizePx = 64

	// tileHalfWidthDeg is half the tile edge in degrees, ~500m.
	tileHalfWidthDeg = 0.0045

	// compositeLagDays is how far behind real time the composite runs.
	compositeLagDays = 2
)

// ClientConfig holds configuration for the GIBS client.
type ClientConfig struct {
	// BaseURL is the WMS endpoint (optional, defaults to the public API).
	BaseURL string

	// Layer is the WMS layer name (optional, defaults to the VIIRS DNB
	// radiance composite).
	Layer string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger

	// Now returns the current time; overridable for tests.
	Now func() time.Time
}

// Client is a GIBS WMS client.
type Client struct {
	baseURL    string
	layer      string
	httpClient *resilience.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// NewClient creates a new GIBS client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	layer := cfg.Layer
	if layer == "" {
		layer = DefaultLayer
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		baseURL:    baseURL,
		layer:      layer,
		httpClient: httpClient,
		logger:     cfg.Logger,
		now:        now,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Brightness returns the normalized brightness in [0,1] at a point, computed
// as the mean luminance of a small tile centered on it.
func (c *Client) Brightness(ctx context.Context, lat, lon float64) (float64, error) {
	// WMS 1.3.0 with EPSG:4326 orders the bounding box lat-first.
	tileDate := c.now().UTC().AddDate(0, 0, -compositeLagDays).Format("2006-01-02")
	url := fmt.Sprintf(
		"%s?SERVICE=WMS&REQUEST=GetMap&VERSION=1.3.0&LAYERS=%s&CRS=EPSG:4326"+
			"&BBOX=%.6f,%.6f,%.6f,%.6f&WIDTH=%d&HEIGHT=%d&FORMAT=image/png&TIME=%s",
		c.baseURL, c.layer,
		lat-tileHalfWidthDeg, lon-tileHalfWidthDeg,
		lat+tileHalfWidthDeg, lon+tileHalfWidthDeg,
		tileSizePx, tileSizePx, tileDate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	img, err := png.Decode(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("decoding tile: %w", err)
	}

	return meanLuminance(img), nil
}

// meanLuminance averages the grayscale luminance of the tile into [0,1].
func meanLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	if bounds.Empty() {
		return 0
	}

	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			sum += float64(gray.Y)
		}
	}

	pixels := float64(bounds.Dx() * bounds.Dy())
	return sum / pixels / 255.0
}

// Ensure Client implements the lighting provider interface.
var _ lighting.Provider = (*Client)(nil)
