package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/riskscore360/pkg/constants"
)

// RequestMetrics is the subset of monitoring.Metrics recorded per HTTP request.
type RequestMetrics interface {
	ActiveRequestsInc(path, method string)
	ActiveRequestsDec(path, method string)
	ObserveRequest(path, method, status string, duration time.Duration)
}

// ObservabilityMiddleware returns a Gin middleware that integrates Prometheus metrics and OpenTelemetry tracing.
// For each HTTP request, it continues the caller's trace if one is propagated, starts a server span
// and records request totals, duration and in-flight requests labeled by route template.
// ObservabilityMiddleware 返回一个集成了 Prometheus 指标和 OpenTelemetry 跟踪的 Gin 中间件。
// 对于每个 HTTP 请求，若调用方传递了追踪上下文则延续之，启动服务端 Span，
// 并按路由模板记录请求总数、持续时间和进行中的请求数。
func ObservabilityMiddleware(tracer trace.Tracer, metrics RequestMetrics) gin.HandlerFunc {
	propagator := propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	return func(c *gin.Context) {
		start := time.Now()

		// Use the route template (e.g. "/api/v1/reports/:id") for low-cardinality labels.
		path := c.FullPath()
		if path == "" {
			path = "not_found"
		}
		method := c.Request.Method

		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(constants.ContextKeyTraceID), span.SpanContext().TraceID().String())

		metrics.ActiveRequestsInc(path, method)
		c.Next()
		metrics.ActiveRequestsDec(path, method)

		status := c.Writer.Status()
		metrics.ObserveRequest(path, method, strconv.Itoa(status), time.Since(start))

		span.SetAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
			attribute.Int("http.status_code", status),
			attribute.String("http.client_ip", c.ClientIP()),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}

// DefaultTracer returns the tracer of the globally registered provider.
func DefaultTracer() trace.Tracer {
	return otel.Tracer(constants.ServiceName)
}
