//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/tokyo-flow-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/config"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/dashboard"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/domain"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testTopic = "test-interactions"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"),
	)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka: %v", err)
		}
	})
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the controller.
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

type receivedMessage struct {
	Interaction domain.Interaction
	Key         string
	Headers     map[string]string
}

func newConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

func readInteraction(ctx context.Context, t *testing.T, consumer *kafkago.Reader) receivedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from interaction topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var in domain.Interaction
	require.NoError(t, json.Unmarshal(msg.Value, &in), "unmarshal interaction")

	return receivedMessage{Interaction: in, Key: string(msg.Key), Headers: headers}
}

// TestInteractionWriter verifies that kafka.Writer delivers a recorded
// interaction with its key and headers.
func TestInteractionWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())

	in := domain.NewInteraction(domain.ViewMap, domain.CategoryAll, 23).
		WithRange(domain.NewDate(2020, 2, 1), domain.NewDate(2020, 2, 29))
	require.NoError(t, writer.Record(ctx, in))
	// Close flushes the async batch.
	require.NoError(t, writer.Close())

	got := readInteraction(ctx, t, newConsumer(t, broker))
	assert.Equal(t, "map", got.Key)
	assert.Equal(t, in.ID, got.Headers["interaction_id"])
	assert.Equal(t, "全体", got.Headers["category"])
	_, err := time.Parse(time.RFC3339, got.Headers["occurred_at"])
	assert.NoError(t, err, "occurred_at should be valid RFC3339")

	assert.Equal(t, in.ID, got.Interaction.ID)
	assert.Equal(t, 23, got.Interaction.Rows)
	require.NotNil(t, got.Interaction.End)
	assert.Equal(t, domain.NewDate(2020, 2, 29), *got.Interaction.End)
}

// TestDashboardPublishesInteractions wires the view service to a real
// broker and checks that every answered view is logged.
func TestDashboardPublishesInteractions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())

	day1, day2 := domain.NewDate(2020, 2, 1), domain.NewDate(2020, 2, 2)
	obs, err := domain.NewObservationTable([]domain.Date{day1, day2}, []domain.ObservationRow{
		{Category: domain.CategoryVisitor, Area: "台東区", Counts: []float64{10, 20}},
	})
	require.NoError(t, err)
	coords, err := domain.NewCoordinates([]domain.AreaCoordinate{
		{Area: "台東区", Latitude: 35.712, Longitude: 139.780},
	})
	require.NoError(t, err)

	metrics := observability.NewMetricsForTesting()
	svc := dashboard.New(writer, nil, discardLogger(), metrics)
	svc.Attach(domain.NewDataset(obs, coords))

	_, err = svc.MapView(ctx, dashboard.MapQuery{Category: domain.CategoryVisitor, Start: day1, End: day2})
	require.NoError(t, err)
	_, err = svc.SeriesView(ctx, dashboard.SeriesQuery{Category: domain.CategoryVisitor, Areas: domain.OneArea("台東区")})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	consumer := newConsumer(t, broker)
	views := map[string]receivedMessage{}
	for range 2 {
		got := readInteraction(ctx, t, consumer)
		views[got.Key] = got
	}

	require.Contains(t, views, "map")
	require.Contains(t, views, "series")
	assert.Equal(t, 1, views["map"].Interaction.Rows)
	assert.Equal(t, 2, views["series"].Interaction.Rows)
	assert.Equal(t, []string{"台東区"}, views["series"].Interaction.Areas)
	assert.Equal(t, domain.CategoryVisitor, views["series"].Interaction.Category)
}
