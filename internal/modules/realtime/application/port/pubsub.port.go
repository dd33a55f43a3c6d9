package port

import (
	"context"

	"rentalWs/internal/modules/realtime/domain"
)

// EventPublisher hands a domain event to the broker for the topic implied by
// its type. Implementations do not retry; callers decide how to react to a
// publish failure.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.Event) error
}

// MessageSource delivers raw broker payloads until ctx is cancelled. handle is
// invoked once per message; an in-flight handle call always completes before
// Consume returns.
type MessageSource interface {
	Consume(ctx context.Context, handle func(topic string, value []byte)) error
}
