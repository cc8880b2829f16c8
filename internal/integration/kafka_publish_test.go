//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/quake-data-viewer/internal/adapter/kafka"
	"github.com/couchcryptid/quake-data-viewer/internal/adapter/usgs"
	"github.com/couchcryptid/quake-data-viewer/internal/config"
	"github.com/couchcryptid/quake-data-viewer/internal/domain"
	"github.com/couchcryptid/quake-data-viewer/internal/observability"
	"github.com/couchcryptid/quake-data-viewer/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testTopic = "test-earthquake-records"

const usgsResponse = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "id": "us1", "properties": {"mag": 6.1, "place": "10km N of X", "time": 0}, "geometry": {"type": "Point", "coordinates": [-120.1, 35.2, 10.0]}},
		{"type": "Feature", "id": "nc2", "properties": {"mag": 3.4, "place": "5km E of Y", "time": 1714145445123}, "geometry": {"type": "Point", "coordinates": [-122.8, 38.8, 2.5]}},
		{"type": "Feature", "id": "ak3", "properties": {"mag": null, "place": null, "time": 1714150000000}, "geometry": {"type": "Point", "coordinates": [-150.0, 61.2, 30.0]}}
	]
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("quake-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestQueryPublishesRecords wires a stub USGS server, the real USGS client,
// the pipeline and the Kafka writer, and reads the published records back.
func TestQueryPublishesRecords(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(usgsResponse))
	}))
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		KafkaEnabled: true,
		KafkaBrokers: []string{broker},
		KafkaTopic:   testTopic,
	}
	metrics := observability.NewMetricsForTesting()
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	source := usgs.NewClient(upstream.URL, 10*time.Second, metrics, discardLogger())
	p := pipeline.New(source, writer, discardLogger(), metrics)

	rng := domain.NewDateRange(
		time.Date(2024, time.April, 25, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.April, 26, 0, 0, 0, 0, time.UTC),
	)
	result, err := p.Query(ctx, rng)
	require.NoError(t, err)
	require.Len(t, result.Records, 3)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	tiers := make([]string, 0, 3)
	for range 3 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from record topic")

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, "2024-04-25/2024-04-26", headers["query_range"])

		var rec domain.Record
		require.NoError(t, json.Unmarshal(msg.Value, &rec))
		assert.NotEmpty(t, rec.Time)
		tiers = append(tiers, headers["tier"])
	}

	assert.ElementsMatch(t, []string{"high", "medium", "neutral"}, tiers)
}
