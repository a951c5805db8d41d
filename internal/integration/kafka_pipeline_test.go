//go:build integration

package integration_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/forecast-report-service/internal/adapter/kafka"
	"github.com/couchcryptid/forecast-report-service/internal/adapter/sqlite"
	"github.com/couchcryptid/forecast-report-service/internal/config"
	"github.com/couchcryptid/forecast-report-service/internal/domain"
	"github.com/couchcryptid/forecast-report-service/internal/observability"
	"github.com/couchcryptid/forecast-report-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSourceTopic = "test-raw-forecasts"
	testSinkTopic   = "test-forecast-reports"
	fixtureDocument = "forecast_5days_mixed.json"
)

// reportMessage is a report read back from the sink topic.
type reportMessage struct {
	Key     string
	Body    string
	Headers map[string]string
}

func readReport(ctx context.Context, t *testing.T, consumer *kafkago.Reader) reportMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return reportMessage{Key: string(msg.Key), Body: string(msg.Value), Headers: headers}
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

func publish(ctx context.Context, t *testing.T, broker string, msgs ...kafkago.Message) {
	t.Helper()
	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx, msgs...))
}

// TestKafkaReaderWriter round-trips one forecast document through the
// adapter layer: Reader, ReportTransformer, Writer.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-reader")

	doc := loadFixture(t, fixtureDocument)
	publish(ctx, t, broker, kafkago.Message{Key: []byte("349727"), Value: doc})

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	batch, err := reader.ExtractBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("349727"), raw.Key)
	assert.Equal(t, doc, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	transformer := pipeline.NewTransformer(domain.MaxTemperatureLegacy, discardLogger())
	out, err := transformer.Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, []domain.OutputEvent{out}))

	rm := readReport(ctx, t, sinkConsumer(t, broker))
	assert.Equal(t, "349727", rm.Key)
	assert.Equal(t, string(loadFixture(t, "forecast_5days_mixed_legacy.txt")), rm.Body)
	assert.Equal(t, domain.ReportContentType, rm.Headers[domain.HeaderContentType])
	assert.Equal(t, "5", rm.Headers[domain.HeaderDayCount])
	_, err = time.Parse(time.RFC3339, rm.Headers[domain.HeaderGeneratedAt])
	assert.NoError(t, err, "generated_at should be valid RFC3339")
}

// TestPipelineEndToEnd runs the full pipeline with the Kafka writer and the
// SQLite archive chained, and checks every document yields one report.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-pipeline")

	const documents = 10
	doc := loadFixture(t, fixtureDocument)
	msgs := make([]kafkago.Message, 0, documents)
	for i := range documents {
		msgs = append(msgs, kafkago.Message{Key: []byte("location-" + strconv.Itoa(i)), Value: doc})
	}
	publish(ctx, t, broker, msgs...)

	metrics := observability.NewMetricsForTesting()
	archive, err := sqlite.Open(":memory:", metrics, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = archive.Close() })

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	transformer := pipeline.NewTransformer(domain.MaxTemperatureCorrected, discardLogger())
	p := pipeline.New(reader, transformer, pipeline.MultiLoader{writer, archive}, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	want := string(loadFixture(t, "forecast_5days_mixed_corrected.txt"))
	keys := map[string]bool{}
	for len(keys) < documents {
		rm := readReport(ctx, t, consumer)
		assert.Equal(t, want, rm.Body)
		keys[rm.Key] = true
	}

	pipelineCancel()
	require.NoError(t, <-errCh)
	require.NoError(t, p.CheckReadiness(ctx))

	archived, err := archive.Latest(ctx, "location-3")
	require.NoError(t, err)
	assert.Equal(t, want, archived.Body)
	assert.Equal(t, 5, archived.DayCount)
}

// TestPipelineTransformError verifies a poison document is skipped and the
// pipeline keeps processing valid documents.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-poison")

	publish(ctx, t, broker,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("empty"), Value: []byte(`{"DailyForecasts": []}`)},
		kafkago.Message{Key: []byte("good"), Value: loadFixture(t, fixtureDocument)},
	)

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	transformer := pipeline.NewTransformer(domain.MaxTemperatureLegacy, discardLogger())
	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	rm := readReport(ctx, t, consumer)
	assert.Equal(t, "good", rm.Key)

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
