package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/tokyo-flow-dashboard/internal/config"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes dashboard interactions to a Kafka topic.
// It implements dashboard.InteractionRecorder.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured interaction topic.
// Writes are asynchronous so a slow broker never delays a dashboard response;
// delivery failures are logged from the completion callback.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 100 * time.Millisecond,
		Async:        true,
		Completion: func(msgs []kafkago.Message, err error) {
			if err != nil {
				logger.Warn("interaction delivery failed", "error", err, "messages", len(msgs))
			}
		},
	}
	return &Writer{writer: w, logger: logger}
}

// Record enqueues one interaction.
func (w *Writer) Record(ctx context.Context, in domain.Interaction) error {
	msg, err := serializeToMessage(in)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

// Close flushes pending messages and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Interaction into a Kafka message keyed by
// view so each panel's interactions stay ordered within a partition.
func serializeToMessage(in domain.Interaction) (kafkago.Message, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize interaction: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(in.View),
		Value: data,
		Time:  in.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "interaction_id", Value: []byte(in.ID)},
			{Key: "category", Value: []byte(in.Category)},
			{Key: "occurred_at", Value: []byte(in.OccurredAt.Format(time.RFC3339))},
		},
	}, nil
}
