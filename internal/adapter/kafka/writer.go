// Package kafka publishes accepted flight snapshots to a sink topic for
// downstream analytics consumers. Fan-out is optional: the poller runs
// without it when no brokers are configured.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/aerowatch/air-traffic-monitor/internal/domain"
)

// Writer produces snapshot messages to a Kafka topic.
// It implements poller.SnapshotPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBatch serializes and publishes a batch of snapshot entries in a
// single WriteMessages call.
func (w *Writer) PublishBatch(ctx context.Context, entries []domain.SnapshotEntry) error {
	if len(entries) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(entries))
	for i := range entries {
		msg, err := serializeToMessage(entries[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a SnapshotEntry into a Kafka message keyed by
// the aircraft's ICAO 24-bit address, so one aircraft's observations land
// on one partition in order.
func serializeToMessage(entry domain.SnapshotEntry) (kafkago.Message, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot entry: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(entry.ICAO24),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "callsign", Value: []byte(entry.Callsign)},
			{Key: "observed_at", Value: []byte(strconv.FormatInt(entry.Timestamp, 10))},
		},
	}, nil
}
