// Package main provides the entrypoint for the SafeRoute API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/saferoute/saferoute/internal/api"
	"github.com/saferoute/saferoute/internal/api/middleware"
	"github.com/saferoute/saferoute/internal/auth"
	"github.com/saferoute/saferoute/internal/darkspot"
	"github.com/saferoute/saferoute/internal/database"
	"github.com/saferoute/saferoute/internal/lighting"
	"github.com/saferoute/saferoute/internal/lighting/gibs"
	"github.com/saferoute/saferoute/internal/poi"
	"github.com/saferoute/saferoute/internal/poi/overpass"
	"github.com/saferoute/saferoute/internal/provider/resilience"
	"github.com/saferoute/saferoute/internal/report"
	"github.com/saferoute/saferoute/internal/reputation"
	"github.com/saferoute/saferoute/internal/routeplan"
	"github.com/saferoute/saferoute/internal/routing"
	"github.com/saferoute/saferoute/internal/routing/osrm"
	"github.com/saferoute/saferoute/internal/safety"
	"github.com/saferoute/saferoute/internal/telemetry"
	"github.com/saferoute/saferoute/internal/weather"
	"github.com/saferoute/saferoute/internal/weather/openmeteo"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// poiSource adapts the POI service to the scoring engine's source interface.
type poiSource struct {
	service *poi.Service
}

func (s poiSource) Count(ctx context.Context, lat, lon, radiusMeters float64, category safety.POICategory) (int, error) {
	return s.service.Count(ctx, lat, lon, radiusMeters, poi.Category(category))
}

func main() {
	const serviceName = "saferoute-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting SafeRoute API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize JWT validation (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
	})

	// Provider registry tracks circuit breaker health for the ops endpoint
	registry := resilience.NewRegistry()

	providerMetrics, err := middleware.NewProviderMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create provider metrics")
	}

	// Initialize factor source clients and services
	gibsClient := gibs.NewClient(gibs.ClientConfig{
		BaseURL:    os.Getenv("GIBS_BASE_URL"),
		HTTPClient: newProviderClient(gibs.ProviderName, registry, providerMetrics),
		Logger:     log,
	})
	lightingService := lighting.NewService(lighting.ServiceConfig{
		Provider: gibsClient,
		Logger:   log,
	})
	log.Info().Msg("lighting service initialized")

	overpassClient := overpass.NewClient(overpass.ClientConfig{
		BaseURL:    os.Getenv("OVERPASS_BASE_URL"),
		HTTPClient: newProviderClient("overpass", registry, providerMetrics),
		Logger:     log,
	})
	poiService := poi.NewService(poi.ServiceConfig{
		Provider: overpassClient,
		Logger:   log,
	})
	log.Info().Msg("poi service initialized")

	weatherClient := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:    os.Getenv("OPENMETEO_BASE_URL"),
		HTTPClient: newProviderClient(openmeteo.ProviderName, registry, providerMetrics),
		Logger:     log,
	})
	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: weatherClient,
		Logger:   log,
	})
	log.Info().Msg("weather service initialized")

	// Dark spots come from verified hazard reports in the database
	darkSpotService := darkspot.NewService(darkspot.ServiceConfig{
		Store:  darkspot.NewPostgresStore(pool),
		Logger: log,
	})

	// Initialize the safety scoring engine
	safetyEngine := safety.NewEngine(safety.EngineConfig{
		Lighting:  lightingService,
		POI:       poiSource{service: poiService},
		DarkSpots: darkSpotService,
		Weather:   weatherService,
		Logger:    log,
	})
	log.Info().Msg("safety engine initialized")

	// Initialize reputation and report services
	reputationService := reputation.NewService(reputation.ServiceConfig{
		Repository: reputation.NewPostgresRepository(pool),
		Logger:     log,
	})
	log.Info().Msg("reputation service initialized")

	reportService := report.NewService(report.ServiceConfig{
		Repository: report.NewPostgresRepository(pool),
		Reputation: reputationService,
		Logger:     log,
	})
	log.Info().Msg("report service initialized")

	// Initialize routing provider and route optimizer
	osrmClient := osrm.NewClient(osrm.ClientConfig{
		BaseURL:  os.Getenv("OSRM_BASE_URL"),
		Registry: registry,
		Logger:   log,
	})
	routingService := routing.NewService(routing.ServiceConfig{
		Provider: osrmClient,
		Logger:   log,
	})

	routeOptimizer := routeplan.NewOptimizer(routeplan.OptimizerConfig{
		Directions: routingService,
		Scorer:     safetyEngine,
		Logger:     log,
	})
	log.Info().Msg("route optimizer initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:           Version,
		BuildTime:         BuildTime,
		Logger:            log,
		ServiceName:       serviceName,
		Metrics:           metrics,
		JWTService:        jwtService,
		SafetyEngine:      safetyEngine,
		SafetyRepository:  safety.NewPostgresRepository(pool),
		ReputationService: reputationService,
		ReportService:     reportService,
		RouteOptimizer:    routeOptimizer,
		RouteRepository:   routeplan.NewPostgresRepository(pool),
		ProviderRegistry:  registry,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// newProviderClient builds a resilient HTTP client registered for health
// tracking and request metrics.
func newProviderClient(name string, registry *resilience.Registry, metrics resilience.MetricsRecorder) *resilience.Client {
	cfg := resilience.DefaultClientConfig(name)
	cfg.Registry = registry
	cfg.Metrics = metrics
	return resilience.NewClient(cfg)
}
