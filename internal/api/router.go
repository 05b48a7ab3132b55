// Package api provides the HTTP API for SafeRoute.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/saferoute/saferoute/internal/api/handler"
	"github.com/saferoute/saferoute/internal/api/middleware"
	"github.com/saferoute/saferoute/internal/auth"
	"github.com/saferoute/saferoute/internal/provider/resilience"
	"github.com/saferoute/saferoute/internal/report"
	"github.com/saferoute/saferoute/internal/reputation"
	"github.com/saferoute/saferoute/internal/routeplan"
	"github.com/saferoute/saferoute/internal/safety"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version           string
	BuildTime         string
	Logger            zerolog.Logger
	ServiceName       string
	Metrics           *middleware.Metrics
	JWTService        *auth.JWTService
	SafetyEngine      *safety.Engine
	SafetyRepository  safety.Repository
	ReputationService *reputation.Service
	ReportService     *report.Service
	RouteOptimizer    *routeplan.Optimizer
	RouteRepository   routeplan.Repository
	ProviderRegistry  *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "saferoute-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ProviderRegistry)
	safetyHandler := handler.NewSafetyHandler(cfg.SafetyEngine, cfg.SafetyRepository, cfg.Logger)
	reputationHandler := handler.NewReputationHandler(cfg.ReputationService)
	reportHandler := handler.NewReportHandler(cfg.ReportService)
	routeHandler := handler.NewRouteHandler(cfg.RouteOptimizer, cfg.RouteRepository, cfg.Logger)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.JWTService)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Safety score endpoint (public) - fans out to factor sources,
		// strict rate limiting
		r.With(expensiveRateLimit).Get("/safety/score", safetyHandler.GetScore)
		r.With(standardRateLimit).Get("/safety/latest", safetyHandler.GetLatest)

		// Route calculation - expensive compute, strict rate limiting
		r.With(expensiveRateLimit).Post("/routes:calculate", routeHandler.CalculateRoute)
		r.With(standardRateLimit).Get("/routes/{routeId}", routeHandler.GetRoute)

		// Reputation endpoints
		r.Route("/reputation", func(r chi.Router) {
			r.With(standardRateLimit).Post("/wilson-score", reputationHandler.ComputeWilsonScore)
			r.With(standardRateLimit).Get("/{userId}", reputationHandler.GetReputation)
			// Recording events mutates trust state and requires auth
			r.With(authMiddleware, middleware.RateLimitByUser(middleware.StandardRateLimit)).
				Post("/events", reputationHandler.RecordEvent)
		})

		// Hazard report endpoints
		r.Route("/reports", func(r chi.Router) {
			r.With(standardRateLimit).Get("/", reportHandler.ListReports)
			r.With(standardRateLimit).Get("/{reportId}", reportHandler.GetReport)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware)
				r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit))
				r.Post("/", reportHandler.CreateReport)
				r.Post("/{reportId}:verify", reportHandler.VerifyReport)
			})
		})
	})

	return r
}
