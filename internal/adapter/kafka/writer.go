package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/irrigation-advisor/internal/config"
	"github.com/couchcryptid/irrigation-advisor/internal/domain"
)

// Writer produces advisory events to a Kafka topic.
// It implements advisory.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured advisory topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAdvisoryTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes one advisory event keyed by its ID.
func (w *Writer) Publish(ctx context.Context, event domain.AdvisoryEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write advisory event %s: %w", event.ID, err)
	}
	w.logger.Debug("advisory event published", "id", event.ID, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an AdvisoryEvent into a Kafka message.
func serializeToMessage(event domain.AdvisoryEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize advisory event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "decision", Value: []byte(event.Advisory.Decision)},
			{Key: "issued_at", Value: []byte(event.IssuedAt.Format(time.RFC3339))},
		},
	}, nil
}
