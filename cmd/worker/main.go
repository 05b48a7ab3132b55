// Package main provides the entrypoint for the SafeRoute refresh worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/saferoute/saferoute/internal/darkspot"
	"github.com/saferoute/saferoute/internal/database"
	"github.com/saferoute/saferoute/internal/lighting"
	"github.com/saferoute/saferoute/internal/lighting/gibs"
	"github.com/saferoute/saferoute/internal/poi"
	"github.com/saferoute/saferoute/internal/poi/overpass"
	"github.com/saferoute/saferoute/internal/provider/resilience"
	"github.com/saferoute/saferoute/internal/weather"
	"github.com/saferoute/saferoute/internal/weather/openmeteo"
	"github.com/saferoute/saferoute/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "saferoute-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting SafeRoute worker")

	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database for the dark spot store
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	// Build factor source services. The worker keeps its own caches warm
	// and exercises each upstream so failures surface here instead of on
	// a user-facing score request.
	registry := resilience.NewRegistry()

	lightingService := lighting.NewService(lighting.ServiceConfig{
		Provider: gibs.NewClient(gibs.ClientConfig{
			BaseURL:    os.Getenv("GIBS_BASE_URL"),
			HTTPClient: newProviderClient(gibs.ProviderName, registry),
			Logger:     log,
		}),
		Logger: log,
	})

	poiService := poi.NewService(poi.ServiceConfig{
		Provider: overpass.NewClient(overpass.ClientConfig{
			BaseURL:    os.Getenv("OVERPASS_BASE_URL"),
			HTTPClient: newProviderClient("overpass", registry),
			Logger:     log,
		}),
		Logger: log,
	})

	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: openmeteo.NewClient(openmeteo.ClientConfig{
			BaseURL:    os.Getenv("OPENMETEO_BASE_URL"),
			HTTPClient: newProviderClient(openmeteo.ProviderName, registry),
			Logger:     log,
		}),
		Logger: log,
	})

	darkSpotService := darkspot.NewService(darkspot.ServiceConfig{
		Store:  darkspot.NewPostgresStore(pool),
		Logger: log,
	})

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:          worker.DefaultRefreshConfig(),
		Logger:          log,
		LightingService: lightingService,
		POIService:      poiService,
		WeatherService:  weatherService,
		DarkSpotService: darkSpotService,
	})

	// Health check server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":%q}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Pub/Sub drives refresh jobs in production. Without a project ID the
	// worker falls back to a local ticker so development still refreshes.
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	if projectID != "" {
		subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
		if subscription == "" {
			subscription = "source-refresh"
		}

		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			RefreshJob:       refreshJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	} else {
		interval := 30 * time.Minute
		if raw := os.Getenv("REFRESH_INTERVAL"); raw != "" {
			if parsed, err := time.ParseDuration(raw); err == nil {
				interval = parsed
			}
		}

		log.Info().Dur("interval", interval).Msg("pubsub not configured, using local refresh ticker")

		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					result := refreshJob.Run(ctx)
					if err := refreshJob.FlushDarkSpots(ctx); err != nil {
						log.Warn().Err(err).Msg("dark spot flush failed")
					}
					log.Info().
						Int("successful", result.Successful).
						Int("failed", result.Failed).
						Msg("scheduled refresh completed")
				}
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

// newProviderClient builds a resilient HTTP client registered for health
// tracking.
func newProviderClient(name string, registry *resilience.Registry) *resilience.Client {
	cfg := resilience.DefaultClientConfig(name)
	cfg.Registry = registry
	return resilience.NewClient(cfg)
}
