package resilience

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a request.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrMaxRetriesExceeded is returned when all retry attempts have been exhausted.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// ServerError represents an HTTP 5xx response. It trips the circuit breaker
// and marks the attempt retryable.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// MetricsRecorder receives the outcome of each completed request cycle.
type MetricsRecorder interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
}

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies this client for circuit breaker naming and health tracking.
	Name string

	// Timeout applies to each individual HTTP attempt (default: 10s).
	Timeout time.Duration

	// MaxRetries bounds the retry attempts after the first try (default: 3).
	MaxRetries uint64

	// InitialInterval is the starting backoff delay (default: 100ms).
	InitialInterval time.Duration

	// MaxInterval caps the backoff delay (default: 5s).
	MaxInterval time.Duration

	// CircuitBreaker overrides DefaultCircuitBreakerConfig when set.
	CircuitBreaker *CircuitBreakerConfig

	// Registry receives per-request health updates (optional).
	Registry *Registry

	// Metrics receives per-request timing and outcome (optional).
	Metrics MetricsRecorder
}

// DefaultClientConfig returns sensible defaults for the resilient client.
func DefaultClientConfig(name string) ClientConfig {
	cbConfig := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		CircuitBreaker:  &cbConfig,
	}
}

// Client wraps http.Client with a circuit breaker and exponential-backoff
// retries. All factor source clients go through it.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	registry   *Registry
	metrics    MetricsRecorder
	config     ClientConfig
}

// NewClient creates a new resilient HTTP client. If cfg.Registry is set, the
// client registers itself and reports request outcomes to the registry.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	cbConfig := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.CircuitBreaker != nil {
		cbConfig = *cfg.CircuitBreaker
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    NewCircuitBreaker[*http.Response](cbConfig), //nolint:bodyclose // type param, not response
		registry:   cfg.Registry,
		metrics:    cfg.Metrics,
		config:     cfg,
	}

	if cfg.Registry != nil {
		cfg.Registry.Register(cfg.Name, c)
	}

	return c
}

// Do executes an HTTP request through the circuit breaker, retrying transient
// failures (5xx, network errors) with exponential backoff. Returns
// ErrCircuitOpen without attempting the request while the breaker is open.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.DoWithContext(req.Context(), req)
}

// DoWithContext executes an HTTP request with the given context.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0 // retries bounded by WithMaxRetries, not elapsed time

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	start := time.Now()

	var lastResp *http.Response
	err := backoff.Retry(func() error {
		resp, attemptErr := c.attempt(ctx, req)
		if attemptErr != nil {
			if errors.Is(attemptErr, gobreaker.ErrOpenState) || errors.Is(attemptErr, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				// 5xx with a body worth returning if retries run out
				lastResp = resp
			}
			return attemptErr
		}
		lastResp = resp
		return nil
	}, policy)

	c.record(req, time.Since(start), err)

	if err != nil {
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}
	return lastResp, nil
}

// attempt runs a single try through the circuit breaker. A 5xx status is
// surfaced as a ServerError so the breaker counts it as a failure.
func (c *Client) attempt(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, &ServerError{StatusCode: resp.StatusCode}
		}
		return resp, nil
	})
}

func (c *Client) record(req *http.Request, elapsed time.Duration, err error) {
	if c.metrics != nil {
		c.metrics.RecordRequest(c.config.Name, req.Method, elapsed, err)
	}
	if c.registry == nil {
		return
	}
	if err != nil {
		c.registry.RecordFailure(c.config.Name, err)
	} else {
		c.registry.RecordSuccess(c.config.Name)
	}
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (c *Client) CircuitBreakerState() gobreaker.State {
	return c.breaker.State()
}

// CircuitBreakerCounts returns the current counts of the circuit breaker.
func (c *Client) CircuitBreakerCounts() gobreaker.Counts {
	return c.breaker.Counts()
}
