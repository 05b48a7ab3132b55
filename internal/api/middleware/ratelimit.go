package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/saferoute/saferoute/internal/api/models"
)

// RateLimitConfig holds a request budget for a window.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

// Rate limit tiers. Score and route calculation hit several upstream factor
// sources per request, so they get the tighter expensive budget.
var (
	// AuthRateLimit applies to authentication endpoints (10 req/min).
	AuthRateLimit = RateLimitConfig{RequestLimit: 10, WindowLength: time.Minute}

	// ExpensiveRateLimit applies to scoring and routing endpoints (30 req/min).
	ExpensiveRateLimit = RateLimitConfig{RequestLimit: 30, WindowLength: time.Minute}

	// StandardRateLimit applies to everything else (100 req/min).
	StandardRateLimit = RateLimitConfig{RequestLimit: 100, WindowLength: time.Minute}
)

// RateLimitByIP limits requests per client IP. chi's RealIP middleware runs
// earlier in the chain, so X-Forwarded-For is already resolved.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return limit(cfg, httprate.KeyByRealIP)
}

// RateLimitByUser limits requests per authenticated user, falling back to the
// client IP when no user is on the context.
func RateLimitByUser(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return limit(cfg, keyByUserOrIP)
}

func limit(cfg RateLimitConfig, keyFn httprate.KeyFunc) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(keyFn),
		httprate.WithLimitHandler(writeLimitExceeded),
	)
}

func keyByUserOrIP(r *http.Request) (string, error) {
	if userID := GetUserID(r.Context()); userID != "" {
		return "user:" + userID, nil
	}
	return httprate.KeyByRealIP(r)
}

// writeLimitExceeded answers a throttled request with an RFC7807 problem.
func writeLimitExceeded(w http.ResponseWriter, r *http.Request) {
	problem := models.NewTooManyRequests(GetRequestID(r.Context()), "Rate limit exceeded. Please try again later.")
	problem.Instance = r.URL.Path

	// httprate does not expose the window reset, so advise a full window
	w.Header().Set("Retry-After", "60")

	problem.Write(w)
}
