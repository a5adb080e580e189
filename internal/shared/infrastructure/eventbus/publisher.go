package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
)

// Publisher defines the interface for publishing events to a message broker.
type Publisher interface {
	// Publish sends a message to the event bus.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close closes the publisher connection.
	Close() error
}

// PublishJSON marshals v and publishes it under routingKey.
func PublishJSON(ctx context.Context, p Publisher, routingKey string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", routingKey, err)
	}
	return p.Publish(ctx, routingKey, payload)
}
