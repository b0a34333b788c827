package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/riskscore360/internal/config"
	"github.com/turtacn/riskscore360/internal/domain/models"
	"github.com/turtacn/riskscore360/internal/domain/service"
	"github.com/turtacn/riskscore360/internal/infrastructure/monitoring"
	"github.com/turtacn/riskscore360/pkg/constants"
	apperrors "github.com/turtacn/riskscore360/pkg/errors"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func sampleResult(t *testing.T) *models.ScoreResult {
	t.Helper()
	report, err := service.NewDefaultScoringEngine().Score(&models.RawSignalDocument{
		SubscriptionID: "sub-1",
		ResourceGroup:  "rg-prod",
		IAMDrift:       models.DriftOwner,
		IAMCounts:      &models.IAMCounts{Owners: 6, Contributors: 10, Readers: 5},
		Defender:       &models.DefenderSignal{High: 6, Medium: 3},
	})
	require.NoError(t, err)
	return &models.ScoreResult{
		ReportID:    "5f0c6f36-6a7e-4a53-9b53-3c7c9e2d8d11",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Fingerprint: "abc123",
		Report:      report,
	}
}

func TestEncode_JSONAndYAMLAgree(t *testing.T) {
	result := sampleResult(t)

	jsonOut, err := Encode(result, constants.OutputFormatJSON)
	require.NoError(t, err)
	yamlOut, err := Encode(result, constants.OutputFormatYAML)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(jsonOut, []byte("{\n  \"report_id\": ")), "two-space indent")
	assert.True(t, bytes.HasSuffix(jsonOut, []byte("}\n")))

	var fromJSON, fromYAML map[string]interface{}
	require.NoError(t, json.Unmarshal(jsonOut, &fromJSON))
	require.NoError(t, yaml.Unmarshal(yamlOut, &fromYAML))

	report := fromYAML["report"].(map[string]interface{})
	assert.Equal(t, "sub-1", report["subscription_id"])
	assert.Equal(t, "2.0", report["schema_version"], "numeric-looking strings stay strings")
	assert.EqualValues(t, fromJSON["report"].(map[string]interface{})["risk_score"], report["risk_score"])
	assert.NotContains(t, string(yamlOut), "{\"", "no flow style")
	assert.Less(t, bytes.Index(yamlOut, []byte("report_id")), bytes.Index(yamlOut, []byte("fingerprint")), "key order kept")

	_, err = Encode(result, constants.OutputFormat("pdf"))
	assert.Error(t, err)
}

func TestWriterEmitter(t *testing.T) {
	var buf bytes.Buffer
	e := NewWriterEmitter(&buf, constants.OutputFormatJSON)

	require.NoError(t, e.Emit(context.Background(), sampleResult(t)))
	var decoded models.ScoreResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "abc123", decoded.Fingerprint)
	assert.Equal(t, "writer", e.Name())
	assert.NoError(t, e.Close())
}

func TestFileEmitter(t *testing.T) {
	dir := t.TempDir()
	e, err := NewFileEmitter(dir, constants.OutputFormatYAML, nil)
	require.NoError(t, err)

	result := sampleResult(t)
	require.NoError(t, e.Emit(context.Background(), result))

	data, err := os.ReadFile(e.Path(result.ReportID))
	require.NoError(t, err)
	assert.Contains(t, string(data), "risk_level: Critical")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file removed")
}

func TestKafkaEmitter(t *testing.T) {
	w := &fakeWriter{}
	e := newKafkaEmitter(w, "riskscore.reports", nil)

	result := sampleResult(t)
	require.NoError(t, e.Emit(context.Background(), result))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "sub-1", string(msg.Key))
	assert.Equal(t, "report_id", msg.Headers[0].Key)
	assert.Equal(t, result.ReportID, string(msg.Headers[0].Value))
	carrier := headerCarrier(msg.Headers)
	assert.Empty(t, carrier.Get("traceparent"), "no trace headers without tracing")

	var decoded models.ScoreResult
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, result.Report.RiskScore, decoded.Report.RiskScore)

	require.NoError(t, e.Close())
	assert.True(t, w.closed)
}

func TestKafkaEmitter_Failure(t *testing.T) {
	e := newKafkaEmitter(&fakeWriter{err: errors.New("broker unavailable")}, "riskscore.reports", nil)

	err := e.Emit(context.Background(), sampleResult(t))
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeEmitFailed, appErr.Code())
	assert.Equal(t, "kafka", appErr.Metadata()["emitter"])
}

func TestKafkaEmitter_PropagatesTraceContext(t *testing.T) {
	provider := sdktrace.NewTracerProvider()
	tracing := monitoring.NewTracingManagerWithProvider(provider, nil)
	w := &fakeWriter{}
	e := newKafkaEmitter(w, "riskscore.reports", nil).WithTracing(tracing)

	ctx, span := tracing.Tracer().Start(context.Background(), "score")
	defer span.End()
	result := sampleResult(t)
	require.NoError(t, e.Emit(ctx, result))
	require.Len(t, w.messages, 1)

	carrier := headerCarrier(w.messages[0].Headers)
	assert.Equal(t, result.ReportID, carrier.Get("report_id"))
	assert.Contains(t, carrier.Get("traceparent"), span.SpanContext().TraceID().String())
	assert.Contains(t, carrier.Keys(), "traceparent")

	// The consumer side continues the same trace from the headers.
	remote := propagation.TraceContext{}.Extract(context.Background(), &carrier)
	assert.Equal(t, span.SpanContext().TraceID(), trace.SpanContextFromContext(remote).TraceID())
	assert.NoError(t, tracing.Shutdown(context.Background()))
}

func TestHeaderCarrier_SetReplaces(t *testing.T) {
	carrier := headerCarrier{{Key: "content_type", Value: []byte("application/json")}}
	carrier.Set("content_type", "application/yaml")
	carrier.Set("traceparent", "00-abc-def-01")

	assert.Len(t, carrier, 2)
	assert.Equal(t, "application/yaml", carrier.Get("content_type"))
	assert.Equal(t, []string{"content_type", "traceparent"}, carrier.Keys())
	assert.Empty(t, carrier.Get("missing"))
}

func TestKafkaEmitter_PingWithoutBrokers(t *testing.T) {
	e := newKafkaEmitter(&fakeWriter{}, "riskscore.reports", nil)
	assert.Error(t, e.Ping(context.Background()))
}

func TestFromConfig(t *testing.T) {
	emitters, kafkaEmitter, err := FromConfig(&config.Config{}, nil)
	require.NoError(t, err)
	assert.Empty(t, emitters)
	assert.Nil(t, kafkaEmitter)

	cfg := &config.Config{
		Output: config.OutputConfig{Format: "yaml", Directory: t.TempDir()},
		Kafka:  config.KafkaConfig{Enabled: true, Brokers: []string{"localhost:9092"}, Topic: "reports", RequiredAcks: 1},
	}
	emitters, kafkaEmitter, err = FromConfig(cfg, nil)
	require.NoError(t, err)
	require.Len(t, emitters, 2)
	assert.Equal(t, "file", emitters[0].Name())
	assert.Equal(t, "kafka", emitters[1].Name())
	assert.Same(t, kafkaEmitter, emitters[1])
	assert.NoError(t, CloseAll(emitters))
}
