package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/trademind/internal/models"
)

// messageWriter is the subset of *kafka.Writer the producer uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes journal events, keyed by user id so a user's events
// stay ordered within one partition
type Producer struct {
	writer messageWriter
	topic  string
	logger zerolog.Logger
}

// NewProducer creates a producer for topic
func NewProducer(brokers []string, topic string, logger zerolog.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
	return &Producer{
		writer: writer,
		topic:  topic,
		logger: logger.With().Str("component", "kafka_producer").Str("topic", topic).Logger(),
	}
}

// Publish writes one event
func (p *Producer) Publish(ctx context.Context, event models.JournalEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal journal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.UserID),
		Value: payload,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write %s event: %w", event.EventType, err)
	}
	p.logger.Debug().Str("event_type", event.EventType).Str("user_id", event.UserID).Msg("journal event published")
	return nil
}

// Close flushes and closes the writer
func (p *Producer) Close() error {
	return p.writer.Close()
}
