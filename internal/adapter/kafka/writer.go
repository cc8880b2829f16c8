package kafka

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/quake-data-viewer/internal/config"
	"github.com/couchcryptid/quake-data-viewer/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces record messages to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured record topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes every record of a query result and writes them to the
// topic in a single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, r domain.DateRange, table domain.Table) error {
	if len(table) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(table))
	for i := range table {
		msg, err := serializeToMessage(r, table[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d records: %w", len(msgs), err)
	}
	w.logger.Debug("records published", "topic", w.writer.Topic, "count", len(msgs), "range", r.String())
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// recordMessage is the JSON value of a record message.
type recordMessage struct {
	domain.Record
	Tier domain.Tier `json:"tier"`
}

// serializeToMessage marshals a Record into a Kafka message.
func serializeToMessage(r domain.DateRange, rec domain.Record) (kafkago.Message, error) {
	data, err := json.Marshal(recordMessage{Record: rec, Tier: rec.Tier()})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(recordKey(rec)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "tier", Value: []byte(rec.Tier().String())},
			{Key: "query_range", Value: []byte(r.String())},
		},
	}, nil
}

// recordKey derives a deterministic key from the record's identifying fields.
// The same event queried through overlapping ranges gets the same key.
func recordKey(rec domain.Record) string {
	mag := "null"
	if rec.Magnitude != nil {
		mag = fmt.Sprintf("%g", *rec.Magnitude)
	}
	input := fmt.Sprintf("%s|%.4f|%.4f|%s", rec.Time, rec.Latitude, rec.Longitude, mag)
	hash := sha256.Sum256([]byte(input))
	return "eq-" + hex.EncodeToString(hash[:8])
}
