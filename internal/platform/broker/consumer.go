package broker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/segmentio/kafka-go"
)

// ConsumerGroup reads every configured topic with one reader goroutine per
// topic, all sharing a consumer group id so a process is one logical consumer.
// Redelivery is at-least-once; downstream handling must tolerate duplicates.
type ConsumerGroup struct {
	brokers []string
	groupID string
	topics  []string
}

func NewConsumerGroup(brokers []string, groupID string, topics []string) *ConsumerGroup {
	return &ConsumerGroup{brokers: brokers, groupID: groupID, topics: topics}
}

// Consume blocks until ctx is cancelled, invoking handle for each message.
// Reader errors are logged and retried; a handle call that is in flight when
// ctx is cancelled always runs to completion before Consume returns.
func (g *ConsumerGroup) Consume(ctx context.Context, handle func(topic string, value []byte)) error {
	var wg sync.WaitGroup
	for _, topic := range g.topics {
		wg.Add(1)
		go func(topic string) {
			defer wg.Done()
			g.consumeTopic(ctx, topic, handle)
		}(topic)
	}
	wg.Wait()
	return ctx.Err()
}

func (g *ConsumerGroup) consumeTopic(ctx context.Context, topic string, handle func(topic string, value []byte)) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: g.brokers,
		GroupID: g.groupID,
		Topic:   topic,
	})
	defer func() {
		if err := reader.Close(); err != nil {
			slog.Warn("kafka reader close failed", slog.String("topic", topic), slog.Any("error", err))
		}
	}()

	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("kafka read error", slog.String("topic", topic), slog.Any("error", err))
			continue
		}
		slog.Debug("kafka message consumed",
			slog.String("topic", m.Topic),
			slog.Int("partition", m.Partition),
			slog.Int64("offset", m.Offset),
			slog.String("key", string(m.Key)),
		)
		handle(m.Topic, m.Value)
	}
}
