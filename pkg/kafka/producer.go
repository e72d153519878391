package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/logger"
)

// Producer publishes events to a Kafka topic. Events are keyed so that
// messages about the same entity land on the same partition.
type Producer struct {
	writer  *kafkago.Writer
	brokers []string
	source  string
	log     *slog.Logger
}

// NewProducer creates a producer for the given brokers and topic.
func NewProducer(brokers []string, topic, source string, log *slog.Logger) *Producer {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkago.RequireOne,
		Async:        false,
	}

	return &Producer{
		writer:  writer,
		brokers: brokers,
		source:  source,
		log:     log,
	}
}

// Ping verifies a broker is reachable by dialing the first one.
func (p *Producer) Ping(ctx context.Context) error {
	conn, err := kafkago.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("dial kafka broker %s: %w", p.brokers[0], err)
	}
	return conn.Close()
}

// Publish serializes and sends an event keyed by the given entity key.
func (p *Producer) Publish(ctx context.Context, eventType, key string, payload any) error {
	event := NewEvent(eventType, p.source, payload)
	event.CorrelationID = logger.CorrelationIDFromContext(ctx)

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", eventType, err)
	}

	msg := kafkago.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event %s: %w", eventType, err)
	}

	p.log.DebugContext(ctx, "event published",
		slog.String("event_id", event.ID),
		slog.String("event_type", eventType),
		slog.String("key", key),
	)

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
