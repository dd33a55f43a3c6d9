package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"rentalWs/internal/modules/realtime/domain"
)

// ErrPublish is returned when the broker rejects or never receives an event.
// The caller decides whether to retry, log and continue, or fail its request.
var ErrPublish = errors.New("event publish failed")

// Publisher writes domain events to Kafka. Messages are keyed by subject id so
// events about the same subject land on one partition and keep their order.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.Hash{},
		},
	}
}

// Publish serializes the event and enqueues it on the topic implied by its
// type. Fire-and-forget from the caller's perspective: no internal retries.
func (p *Publisher) Publish(ctx context.Context, event *domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPublish, err)
	}
	topic := event.Type.Topic()
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(event.SubjectID),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: topic %s: %v", ErrPublish, topic, err)
	}
	slog.Debug("event published",
		slog.String("topic", topic),
		slog.String("eventType", string(event.Type)),
		slog.String("subjectId", event.SubjectID),
	)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
