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
	_ "time/tzdata"

	"github.com/couchcryptid/hebcal-calendar-service/internal/adapter/geodb"
	"github.com/couchcryptid/hebcal-calendar-service/internal/adapter/hebcal"
	"github.com/couchcryptid/hebcal-calendar-service/internal/adapter/kafka"
	"github.com/couchcryptid/hebcal-calendar-service/internal/config"
	"github.com/couchcryptid/hebcal-calendar-service/internal/domain"
	"github.com/couchcryptid/hebcal-calendar-service/internal/observability"
	"github.com/couchcryptid/hebcal-calendar-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const (
	testSourceTopic = "test-calendar-requests"
	testSinkTopic   = "test-calendar-exports"
)

const geonamesFixture = `
CREATE TABLE geoname (
	geonameid INTEGER PRIMARY KEY, name TEXT, asciiname TEXT,
	latitude REAL, longitude REAL, country TEXT, admin1 TEXT,
	population INTEGER, elevation INTEGER, timezone TEXT
);
CREATE TABLE admin1 (key TEXT PRIMARY KEY, name TEXT, asciiname TEXT);
CREATE TABLE country (iso TEXT PRIMARY KEY, country TEXT);
INSERT INTO country VALUES ('IL', 'Israel'), ('US', 'United States');
INSERT INTO admin1 VALUES ('IL.06', 'Jerusalem', 'Jerusalem'), ('US.NY', 'New York', 'New York');
INSERT INTO geoname VALUES
	(281184, 'Jerusalem', 'Jerusalem', 31.76904, 35.21633, 'IL', '06', 801000, 786, 'Asia/Jerusalem'),
	(5128581, 'New York City', 'New York City', 40.71427, -74.00597, 'US', 'NY', 8804190, 10, 'America/New_York');
`

const zipsFixture = `
CREATE TABLE ZIPCodes_Primary (
	ZipCode TEXT PRIMARY KEY, CityMixedCase TEXT, State TEXT,
	Latitude REAL, Longitude REAL, TimeZone INTEGER, DayLightSaving TEXT, Elevation INTEGER
);
INSERT INTO ZIPCodes_Primary VALUES ('02138', 'Cambridge', 'MA', 42.3800, -71.1345, 5, 'Y', 12);
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("hebcal-test"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

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
	cconn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cconn.Close()

	require.NoError(t, cconn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// newTransformer wires the real decoder, resolver and calendar engine over
// in-memory location fixtures.
func newTransformer(t *testing.T, metrics *observability.Metrics) *pipeline.CalendarTransformer {
	t.Helper()
	geonames, err := geodb.Open(":memory:", discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = geonames.Close() })
	_, err = geonames.Exec(geonamesFixture)
	require.NoError(t, err)

	zips, err := geodb.Open(":memory:", discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = zips.Close() })
	_, err = zips.Exec(zipsFixture)
	require.NoError(t, err)

	store, err := geodb.NewStore(geonames, zips, discardLogger())
	require.NoError(t, err)

	resolver := domain.NewResolver(geodb.NewCachedLookup(store, 100, metrics), discardLogger())
	decoder := domain.NewDecoder(resolver, discardLogger())
	materializer := domain.NewMaterializer(hebcal.NewEngine(metrics, discardLogger()), discardLogger())
	return pipeline.NewTransformer(decoder, materializer, metrics, discardLogger())
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 2 * time.Second,
	}
}

// exportMessage holds a deserialized message read from the sink topic.
type exportMessage struct {
	Export  domain.CalendarExport
	Key     string
	Headers map[string]string
}

// readExport reads a single message from the sink consumer and deserializes it.
func readExport(ctx context.Context, t *testing.T, consumer *kafkago.Reader) exportMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var export domain.CalendarExport
	require.NoError(t, json.Unmarshal(msg.Value, &export), "unmarshal sink message")

	return exportMessage{Export: export, Key: string(msg.Key), Headers: headers}
}

func sinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (extractor)
// and kafka.Writer (loader) round-trip a request through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-reader")

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	query := "v=1&geonameid=281184&year=5785&yt=H&month=7&c=on"
	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:     []byte("req-1"),
		Value:   []byte(query),
		Headers: []kafkago.Header{{Key: domain.HeaderClientIP, Value: []byte("203.0.113.7")}},
	}))

	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned and messages become available.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawRequest
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("req-1"), raw.Key)
	assert.Equal(t, query, string(raw.Value))
	assert.Equal(t, "203.0.113.7", raw.Headers[domain.HeaderClientIP])
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	transformer := newTransformer(t, observability.NewMetricsForTesting())
	out, err := transformer.Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, []domain.OutputMessage{out}))

	em := readExport(ctx, t, sinkConsumer(t, broker))
	assert.Equal(t, "req-1", em.Key)
	assert.Equal(t, "application/json", em.Headers[pipeline.HeaderContentType])
	assert.Contains(t, em.Headers[pipeline.HeaderQuery], "geo=geoname")
	assert.Equal(t, "Hebcal Jerusalem 5785", em.Export.Title)
	assert.NotEmpty(t, em.Export.Items)
}

// TestPipelineEndToEnd runs the full pipeline against real Kafka and checks
// that every request is answered, skipping a malformed one.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-pipeline")

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("jerusalem"), Value: []byte("v=1&geonameid=281184&year=2024&month=10&c=on&maj=on")},
		kafkago.Message{Key: []byte("unknown-zip"), Value: []byte("v=1&zip=99999&year=2024")},
		kafkago.Message{Key: []byte("cambridge"), Value: []byte("v=1&zip=02138&year=2024&month=10&c=on&s=on")},
		kafkago.Message{Key: []byte("bad-year"), Value: []byte("v=1&year=abc")},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, newTransformer(t, metrics), writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	received := map[string]exportMessage{}
	for len(received) < 2 {
		em := readExport(ctx, t, consumer)
		received[em.Key] = em
	}

	// Nothing else arrives: the two failing requests were skipped.
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no further message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
	assert.NoError(t, p.CheckReadiness(ctx))

	jer, ok := received["jerusalem"]
	require.True(t, ok)
	assert.Equal(t, "Hebcal Jerusalem 2024", jer.Export.Title)
	assert.Contains(t, jer.Headers[pipeline.HeaderQuery], "geonameid=281184")

	cam, ok := received["cambridge"]
	require.True(t, ok)
	assert.Contains(t, cam.Headers[pipeline.HeaderQuery], "geo=zip")
	var parashat int
	for _, it := range cam.Export.Items {
		if it.Category == domain.CategoryParashat {
			parashat++
		}
	}
	assert.Positive(t, parashat, "expected weekly Torah portions for Cambridge")
}
