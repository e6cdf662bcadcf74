// Package kafka implements the eventstream publisher on a Kafka topic.
// Events are keyed by session id so per-session ordering is preserved
// across partitions.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/catalog/pkg/eventstream"
)

// Publisher writes capture events to a Kafka topic.
type Publisher struct {
	writer *kafkago.Writer
}

// New creates a publisher for the given brokers and topic.
func New(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafkago.Writer{
			Addr:     kafkago.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafkago.Hash{},
		},
	}
}

// PublishCapture serializes the event and writes it keyed by session id.
func (p *Publisher) PublishCapture(ctx context.Context, event *eventstream.EntriesCapturedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling capture event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.SessionID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publishing capture event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
