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

// messageReader is the subset of *kafka.Reader the consumer uses
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
	Config() kafka.ReaderConfig
}

// Notifier is told about every journal change of a user
type Notifier interface {
	Notify(userID string, event models.JournalEvent)
}

// JournalConsumer reads journal events and forwards them to the live hub
type JournalConsumer struct {
	reader   messageReader
	notifier Notifier
	logger   zerolog.Logger
}

// NewJournalConsumer creates a consumer for the journal topic. Every server
// instance holds its own sockets, so groupID should be unique per instance.
func NewJournalConsumer(brokers []string, topic, groupID string, notifier Notifier, logger zerolog.Logger) *JournalConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        500 * time.Millisecond,
		StartOffset:    kafka.LastOffset, // only live changes matter
		CommitInterval: time.Second,
	})

	return &JournalConsumer{
		reader:   reader,
		notifier: notifier,
		logger:   logger.With().Str("component", "journal_consumer").Logger(),
	}
}

// Start consumes until ctx is cancelled
func (c *JournalConsumer) Start(ctx context.Context) error {
	c.logger.Info().Str("topic", c.reader.Config().Topic).Msg("starting journal consumer")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("journal consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return c.reader.Close()
				}
				c.logger.Error().Err(err).Msg("error reading journal message")
				continue
			}

			if err := c.processMessage(msg); err != nil {
				c.logger.Error().Err(err).Int("partition", msg.Partition).Int64("offset", msg.Offset).
					Msg("error processing journal message")
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *JournalConsumer) processMessage(msg kafka.Message) error {
	var event models.JournalEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal journal event: %w", err)
	}

	switch event.EventType {
	case models.EventTradeOpened, models.EventTradeClosed, models.EventTradeCancelled,
		models.EventTradeDeleted, models.EventRitualCompleted, models.EventSettingsUpdated:
	default:
		c.logger.Debug().Str("event_type", event.EventType).Msg("ignoring unknown journal event type")
		return nil
	}
	if event.UserID == "" {
		return fmt.Errorf("journal event %s has no user_id", event.EventType)
	}

	c.notifier.Notify(event.UserID, event)
	return nil
}

// Close closes the underlying reader
func (c *JournalConsumer) Close() error {
	return c.reader.Close()
}
