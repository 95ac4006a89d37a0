package queue

import (
	"context"
	"time"

	"github.com/blockfinax/guarantee-api-service/internal/config"
	"github.com/blockfinax/guarantee-api-service/internal/queue/client"
	"github.com/rs/zerolog/log"
)

// Queues owns the outbound activity event stream. Publishing is best-effort
// from the caller's perspective: a failed publish must not fail the operation
// that produced the event, it is parked in the outbox instead (see services).
type Queues struct {
	ActivityEventQueueClient client.QueueClient
	publishTimeout           time.Duration
}

func New(cfg *config.QueueConfig) *Queues {
	activityEventQueueClient, err := client.NewQueueClient(
		cfg.Url, cfg.QueueUser, cfg.QueuePassword, cfg.EventQueueName,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating ActivityEventQueueClient")
	}
	return &Queues{
		ActivityEventQueueClient: activityEventQueueClient,
		publishTimeout:           time.Duration(cfg.PublishTimeout) * time.Second,
	}
}

// PublishActivityEvent sends one serialized event, bounded by the configured
// publish timeout.
func (q *Queues) PublishActivityEvent(ctx context.Context, messageBody string) error {
	publishCtx, cancel := context.WithTimeout(ctx, q.publishTimeout)
	defer cancel()
	return q.ActivityEventQueueClient.SendMessage(publishCtx, messageBody)
}

// IsConnectionHealthy reports whether the queue connection is still usable.
func (q *Queues) IsConnectionHealthy() error {
	return q.ActivityEventQueueClient.Ping()
}

func (q *Queues) Stop() {
	if err := q.ActivityEventQueueClient.Stop(); err != nil {
		log.Error().Err(err).Msg("error while stopping ActivityEventQueueClient")
	}
}
