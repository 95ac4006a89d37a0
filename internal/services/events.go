package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/blockfinax/guarantee-api-service/internal/observability/metrics"
	"github.com/blockfinax/guarantee-api-service/internal/queue/client"
)

// emitActivityEvent publishes one activity event. Publishing never fails the
// operation that produced the event: on a broker error the event is parked in
// the outbox collection and replayed later via the replay CLI flag.
func (s *Services) emitActivityEvent(ctx context.Context, eventType client.EventType, event interface{}) {
	body, err := json.Marshal(event)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).
			Int("event_type", int(eventType)).
			Msg("error while marshalling activity event")
		return
	}

	if s.emitter == nil {
		return
	}

	if publishErr := s.emitter.PublishActivityEvent(ctx, string(body)); publishErr != nil {
		log.Ctx(ctx).Warn().Err(publishErr).
			Int("event_type", int(eventType)).
			Msg("error while publishing activity event, saving to outbox")
		metrics.RecordActivityEventPublish(int(eventType), metrics.Error)

		saveErr := s.DbClient.SaveUnpublishedEvent(
			ctx, uuid.NewString(), int(eventType), string(body), s.now().Unix(),
		)
		if saveErr != nil {
			// The event is lost; downstream consumers reconcile from the
			// primary collections on the next full sync.
			log.Ctx(ctx).Error().Err(saveErr).
				Int("event_type", int(eventType)).
				Msg("error while saving unpublished event to outbox")
		}
		return
	}
	metrics.RecordActivityEventPublish(int(eventType), metrics.Success)
}

// ReplayUnpublishedEvents drains the outbox, publishing each parked event and
// deleting it on broker confirmation. Invoked from the CLI replay flag.
func (s *Services) ReplayUnpublishedEvents(ctx context.Context) error {
	events, err := s.DbClient.FindUnpublishedEvents(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching unpublished events")
		return err
	}

	for _, event := range events {
		if s.emitter == nil {
			break
		}
		if err := s.emitter.PublishActivityEvent(ctx, event.Body); err != nil {
			log.Ctx(ctx).Error().Err(err).
				Str("event_id", event.Id).
				Msg("error while replaying unpublished event")
			return err
		}
		if err := s.DbClient.DeleteUnpublishedEvent(ctx, event.Id); err != nil {
			log.Ctx(ctx).Error().Err(err).
				Str("event_id", event.Id).
				Msg("error while deleting replayed event from outbox")
			return err
		}
	}
	return nil
}
