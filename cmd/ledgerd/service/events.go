package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/remixlabs/ledger/common/logger"
	"github.com/remixlabs/ledger/common/queue"
)

// Ledger event topics. One event per successful mutation; the external
// notification collaborator subscribes to these.
const (
	TopicIngested      = "ledger.artifact.ingested"
	TopicRemixRecorded = "ledger.remix.recorded"
	TopicCrowned       = "ledger.artifact.crowned"
	TopicGraveyarded   = "ledger.artifact.graveyarded"
)

// Event is the envelope published on every ledger mutation
type Event struct {
	Topic      string    `json:"topic"`
	ArtifactID string    `json:"artifact_id"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
	Detail     any       `json:"detail,omitempty"`
}

// EventPublisher emits ledger events. Emission is best-effort: a publish
// failure is logged, never surfaced to the mutation's caller.
type EventPublisher struct {
	queue queue.Queue
	log   *logger.Logger
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(q queue.Queue, log *logger.Logger) *EventPublisher {
	return &EventPublisher{queue: q, log: log}
}

// Publish emits one event keyed by artifact id
func (p *EventPublisher) Publish(ctx context.Context, topic, artifactID, actor string, detail any) {
	if p == nil || p.queue == nil {
		return
	}

	event := Event{
		Topic:      topic,
		ArtifactID: artifactID,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
		Detail:     detail,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error("failed to marshal ledger event", "topic", topic, "error", err)
		return
	}

	if err := p.queue.Publish(ctx, topic, artifactID, payload); err != nil {
		p.log.Warn("failed to publish ledger event", "topic", topic, "artifact_id", artifactID, "error", err)
	}
}
