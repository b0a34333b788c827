package monitoring_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/riskscore360/internal/config"
	"github.com/turtacn/riskscore360/internal/infrastructure/monitoring"
	"github.com/turtacn/riskscore360/pkg/constants"
	"github.com/turtacn/riskscore360/pkg/logger"
)

func TestMetricsAdapter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := monitoring.NewMetrics(reg)
	adapter := monitoring.NewMetricsAdapter(m)

	adapter.RecordScore("http", true, 10*time.Millisecond, "")
	adapter.RecordScore("http", false, time.Millisecond, "missing_input")
	adapter.RecordReport("Critical", 92)
	adapter.RecordComponentScore("iam", "critical", 35)
	adapter.RecordDecodeWarning("defender")
	adapter.RecordDecodeWarning("defender")
	adapter.RecordBatch(5, 2, time.Second)
	adapter.RecordCacheAccess("report", true)
	adapter.RecordCacheAccess("report", false)
	adapter.RecordEmit("kafka", false, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScoreRequests.WithLabelValues("http", "success", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScoreRequests.WithLabelValues("http", "failure", "missing_input")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RiskLevels.WithLabelValues("Critical")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DecodeWarnings.WithLabelValues("defender")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BatchFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheAccess.WithLabelValues("report", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheAccess.WithLabelValues("report", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmitRequests.WithLabelValues("kafka", "failure")))

	count, err := testutil.GatherAndCount(reg, "riskscore_risk_score")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_HTTP(t *testing.T) {
	m := monitoring.NewMetrics(prometheus.NewRegistry())

	m.ActiveRequestsInc("/api/v1/score", "POST")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPActiveRequests.WithLabelValues("/api/v1/score", "POST")))
	m.ActiveRequestsDec("/api/v1/score", "POST")
	m.ObserveRequest("/api/v1/score", "POST", "200", 5*time.Millisecond)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPActiveRequests.WithLabelValues("/api/v1/score", "POST")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/v1/score", "POST", "200")))
}

func TestZapLogger_ContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := monitoring.NewZapLoggerFromCore(core)

	ctx := context.WithValue(context.Background(), constants.ContextKeyRequestID, "req-1")
	log.WithComponent("engine").Info(ctx, "scored", logger.Fields{"risk_score": 92})
	log.Error(context.Background(), "emit failed", errors.New("broker down"))

	require.Equal(t, 2, logs.Len())
	first := logs.All()[0]
	assert.Equal(t, "scored", first.Message)
	fields := first.ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "engine", fields["component"])
	assert.EqualValues(t, 92, fields["risk_score"])

	second := logs.All()[1]
	assert.Equal(t, zapcore.ErrorLevel, second.Level)
	assert.Equal(t, "broker down", second.ContextMap()["error"])
}

func TestStartOperation_MergesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := monitoring.NewZapLoggerFromCore(core)

	done := logger.StartOperation(context.Background(), log, "score_batch")
	done(logger.Fields{"items": 3, "operation": "ignored"})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.DebugLevel, entry.Level)
	assert.Equal(t, "Operation completed", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "ignored", fields["operation"], "later fields win")
	assert.EqualValues(t, 3, fields["items"])
	assert.Contains(t, fields, "duration_ms")
}

func TestZapLogger_SetLevel(t *testing.T) {
	log, err := monitoring.NewZapLogger(&config.LogConfig{Level: "warn", Format: "json", OutputPath: "stderr"})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	log.SetLevel("debug")
	assert.True(t, log.Core().Enabled(zap.DebugLevel))
	log.SetLevel("nonsense")
	assert.True(t, log.Core().Enabled(zap.DebugLevel))
}

func TestTracingManager_InjectTraceContext(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tm := monitoring.NewTracingManagerWithProvider(provider, nil)

	ctx, span := tm.Tracer().Start(context.Background(), "score")
	carrier := propagation.MapCarrier{}
	tm.InjectTraceContext(ctx, carrier)
	span.End()

	traceparent := carrier.Get("traceparent")
	require.NotEmpty(t, traceparent)
	assert.Contains(t, traceparent, span.SpanContext().TraceID().String())
	assert.Contains(t, traceparent, span.SpanContext().SpanID().String())

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "score", spans[0].Name())
	assert.NoError(t, tm.Shutdown(context.Background()))
}

func TestTracingManager_Disabled(t *testing.T) {
	tm, err := monitoring.NewTracingManager(&config.TracingConfig{Enabled: false}, "development", nil)
	require.NoError(t, err)

	carrier := propagation.MapCarrier{}
	tm.InjectTraceContext(context.Background(), carrier)
	assert.Empty(t, carrier.Get("traceparent"))
	assert.NoError(t, tm.Shutdown(context.Background()))
}
