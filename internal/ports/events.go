package ports

import "context"

// EventPublisher is the outbound domain-event publish port used by the outbox relay.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
}
