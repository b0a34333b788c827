package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/riskscore360/internal/config"
	"github.com/turtacn/riskscore360/pkg/constants"
	"github.com/turtacn/riskscore360/pkg/logger"
)

// TracingManager 管理 OpenTelemetry 追踪
type TracingManager struct {
	tracer     trace.Tracer
	provider   *sdktrace.TracerProvider
	propagator propagation.TextMapPropagator
	logger     logger.Logger
}

func defaultPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
}

// NewTracingManager 创建追踪管理器。未启用时返回全局 noop tracer。
func NewTracingManager(cfg *config.TracingConfig, environment string, log logger.Logger) (*TracingManager, error) {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	if !cfg.Enabled {
		log.Info(context.Background(), "Tracing is disabled")
		return &TracingManager{
			tracer:     otel.Tracer(constants.ServiceName),
			propagator: defaultPropagator(),
			logger:     log,
		}, nil
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(
		jaeger.WithEndpoint(cfg.JaegerEndpoint),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = constants.ServiceName
	}
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(constants.ReportSchemaVersion),
			attribute.String("environment", environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(defaultPropagator())

	log.Info(context.Background(), "Tracing initialized successfully", logger.Fields{
		"endpoint":    cfg.JaegerEndpoint,
		"sample_rate": cfg.SampleRate,
	})

	return NewTracingManagerWithProvider(provider, log), nil
}

// NewTracingManagerWithProvider 使用已有的 TracerProvider 创建追踪管理器
func NewTracingManagerWithProvider(provider *sdktrace.TracerProvider, log logger.Logger) *TracingManager {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &TracingManager{
		tracer:     provider.Tracer(constants.ServiceName),
		provider:   provider,
		propagator: defaultPropagator(),
		logger:     log,
	}
}

// Tracer 返回底层 Tracer
func (tm *TracingManager) Tracer() trace.Tracer {
	return tm.tracer
}

// InjectTraceContext 注入追踪上下文到 Carrier (W3C traceparent + baggage)
func (tm *TracingManager) InjectTraceContext(ctx context.Context, carrier propagation.TextMapCarrier) {
	tm.propagator.Inject(ctx, carrier)
}

// Shutdown 关闭追踪管理器
func (tm *TracingManager) Shutdown(ctx context.Context) error {
	if tm.provider == nil {
		return nil
	}
	if err := tm.provider.Shutdown(ctx); err != nil {
		tm.logger.Error(ctx, "Failed to shutdown tracing provider", err)
		return err
	}
	tm.logger.Info(ctx, "Tracing provider shutdown successfully")
	return nil
}
