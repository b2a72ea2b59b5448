// Package publisher puts newly created requests on the queue for the
// authorizer to pick up.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"grantflow/internal/platform/kafka/producer"
	"grantflow/pkg/domain"
)

// requestEvent is the wire payload consumed by the authorizer. Field names
// are part of the contract between the two services.
type requestEvent struct {
	RequestID int64       `json:"request_id"`
	UserID    string      `json:"user_id"`
	Kind      domain.Kind `json:"kind"`
	TargetID  int64       `json:"target_id"`
}

// Publisher publishes request events to a fixed topic.
type Publisher struct {
	producer *producer.Producer
	topic    string
}

func New(p *producer.Producer, topic string) *Publisher {
	return &Publisher{producer: p, topic: topic}
}

// PublishRequest emits the event that triggers the authorization saga.
// Delivery is synchronous; a returned error means the event is NOT on the
// queue and the caller must not report the request as submitted.
func (p *Publisher) PublishRequest(ctx context.Context, requestID int64, userID string, kind domain.Kind, targetID int64) error {
	value, err := json.Marshal(requestEvent{
		RequestID: requestID,
		UserID:    userID,
		Kind:      kind,
		TargetID:  targetID,
	})
	if err != nil {
		return fmt.Errorf("encode request event: %w", err)
	}

	// Random keys spread requests across partitions. Ordering between
	// requests is not a contract; each saga run is independent.
	return p.producer.Produce(ctx, &producer.Message{
		Topic: p.topic,
		Key:   []byte(uuid.NewString()),
		Value: value,
	})
}
