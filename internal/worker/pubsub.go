package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Job types accepted on the refresh subscription.
const (
	jobSourceRefresh = "source_refresh"
	jobHealthCheck   = "health_check"
)

// RefreshMessage is the payload published by the scheduler.
type RefreshMessage struct {
	JobType    string `json:"job_type"`
	RefreshAll bool   `json:"refresh_all,omitempty"`
	CheckOnly  bool   `json:"check_only,omitempty"`
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	RefreshJob       *RefreshJob
	Logger           zerolog.Logger
}

// PubSubHandler consumes refresh jobs from a Pub/Sub subscription.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	refreshJob       *RefreshJob
	logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		refreshJob:       cfg.RefreshJob,
		logger:           cfg.Logger,
	}, nil
}

// Start receives messages until the context is cancelled.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, h.handleMessage)
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	start := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	var refreshMsg RefreshMessage
	if err := json.Unmarshal(msg.Data, &refreshMsg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	var err error
	switch refreshMsg.JobType {
	case jobSourceRefresh:
		err = h.runSourceRefresh(ctx, refreshMsg)
	case jobHealthCheck:
		err = h.runHealthCheck(ctx)
	default:
		// Ack so the unknown message is not redelivered forever
		logger.Warn().Str("job_type", refreshMsg.JobType).Msg("unknown job type")
		msg.Ack()
		return
	}

	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
		return
	}

	logger.Info().
		Str("job_type", refreshMsg.JobType).
		Dur("duration", time.Since(start)).
		Msg("job completed successfully")

	msg.Ack()
}

// runSourceRefresh executes a full refresh pass and drops the cached dark
// spot counts. The job counts as failed, and gets redelivered, only when
// more points failed than succeeded.
func (h *PubSubHandler) runSourceRefresh(ctx context.Context, msg RefreshMessage) error {
	h.logger.Info().
		Bool("refresh_all", msg.RefreshAll).
		Msg("starting factor source refresh")

	result := h.refreshJob.Run(ctx)

	if err := h.refreshJob.FlushDarkSpots(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("dark spot flush failed")
	}

	h.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("total_points", result.TotalPoints).
		Msg("factor source refresh completed")

	if result.Failed > result.Successful {
		return fmt.Errorf("too many refresh failures: %d/%d", result.Failed, result.TotalPoints)
	}

	return nil
}

// runHealthCheck refreshes a single point to verify provider connectivity.
// POI is skipped; Overpass is too slow for a liveness probe.
func (h *PubSubHandler) runHealthCheck(ctx context.Context) error {
	h.logger.Debug().Msg("running health check")

	probe := NewRefreshJob(RefreshJobConfig{
		Config: RefreshConfig{
			Targets: []RefreshTarget{{
				Name:     "health-check",
				Priority: 1,
				Points:   []Point{{Lat: 13.0827, Lon: 80.2707}}, // Chennai Central
			}},
			Concurrency:     1,
			Timeout:         10 * time.Second,
			RefreshLighting: true,
			RefreshWeather:  true,
		},
		Logger:          h.logger,
		LightingService: h.refreshJob.lightingService,
		WeatherService:  h.refreshJob.weatherService,
	})

	result := probe.Run(ctx)
	if result.Failed > 0 {
		return fmt.Errorf("health check failed: %d errors", result.Failed)
	}

	h.logger.Debug().Msg("health check passed")
	return nil
}
