// Package event publishes review lifecycle events to Kafka for downstream
// consumers (search indexing, notifications, analytics).
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roomhaven/reviews-service/internal/domain"
	"github.com/roomhaven/reviews-service/pkg/kafka"
	"github.com/roomhaven/reviews-service/pkg/logger"
)

const (
	TopicReviewCreated = "roomhaven.review.created"
	TopicReviewUpdated = "roomhaven.review.updated"
	TopicReviewDeleted = "roomhaven.review.deleted"

	AggregateTypeReview = "review"

	sourceService = "reviews-service"
)

// ReviewEventPayload is the data section of every review lifecycle event. The
// aggregate reflects the target's summary after the mutation; it is omitted
// when the recompute failed and the summary is stale.
type ReviewEventPayload struct {
	Review    domain.Review     `json:"review"`
	Aggregate *domain.Aggregate `json:"aggregate,omitempty"`
}

// Publisher emits review lifecycle events. The interface lets the service
// layer run without Kafka in tests and local setups.
type Publisher interface {
	ReviewCreated(ctx context.Context, review *domain.Review, agg *domain.Aggregate) error
	ReviewUpdated(ctx context.Context, review *domain.Review, agg *domain.Aggregate) error
	ReviewDeleted(ctx context.Context, review *domain.Review, agg *domain.Aggregate) error
}

// KafkaPublisher publishes review events through the shared Kafka producer,
// keyed by review ID.
type KafkaPublisher struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

// NewKafkaPublisher creates a Kafka-backed event publisher.
func NewKafkaPublisher(producer *kafka.Producer, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, logger: logger}
}

func (p *KafkaPublisher) ReviewCreated(ctx context.Context, review *domain.Review, agg *domain.Aggregate) error {
	return p.publish(ctx, TopicReviewCreated, "review.created", review, agg)
}

func (p *KafkaPublisher) ReviewUpdated(ctx context.Context, review *domain.Review, agg *domain.Aggregate) error {
	return p.publish(ctx, TopicReviewUpdated, "review.updated", review, agg)
}

func (p *KafkaPublisher) ReviewDeleted(ctx context.Context, review *domain.Review, agg *domain.Aggregate) error {
	return p.publish(ctx, TopicReviewDeleted, "review.deleted", review, agg)
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, eventType string, review *domain.Review, agg *domain.Aggregate) error {
	payload := ReviewEventPayload{Review: *review, Aggregate: agg}

	evt, err := kafka.NewEvent(eventType, review.ID, AggregateTypeReview, sourceService, payload)
	if err != nil {
		return fmt.Errorf("build %s event: %w", eventType, err)
	}

	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		evt.WithCorrelationID(cid)
	}
	evt.Metadata["target_kind"] = string(review.Target.Kind)
	evt.Metadata["target_id"] = review.Target.ID

	return p.producer.Publish(ctx, topic, evt)
}

// NoopPublisher discards events. Used when Kafka is not configured.
type NoopPublisher struct{}

func (NoopPublisher) ReviewCreated(context.Context, *domain.Review, *domain.Aggregate) error {
	return nil
}

func (NoopPublisher) ReviewUpdated(context.Context, *domain.Review, *domain.Aggregate) error {
	return nil
}

func (NoopPublisher) ReviewDeleted(context.Context, *domain.Review, *domain.Aggregate) error {
	return nil
}
