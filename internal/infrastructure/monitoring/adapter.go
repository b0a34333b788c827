// Package monitoring provides the zap logger, Prometheus metrics and OpenTelemetry tracing of the service.
package monitoring

import (
	"time"

	"github.com/turtacn/riskscore360/internal/domain/service"
)

// MetricsAdapter implements the domain's service.Metrics interface, sending metrics to a Prometheus backend.
// MetricsAdapter 实现了域的 service.Metrics 接口，将指标发送到 Prometheus 后端。
type MetricsAdapter struct {
	metrics *Metrics
}

// NewMetricsAdapter creates a new adapter that wraps a concrete Prometheus Metrics object,
// satisfying the domain's Metrics interface.
// NewMetricsAdapter 创建一个包装具体 Prometheus Metrics 对象的新适配器，
// 满足域的 Metrics 接口。
func NewMetricsAdapter(metrics *Metrics) service.Metrics {
	return &MetricsAdapter{metrics: metrics}
}

func (a *MetricsAdapter) RecordScore(source string, success bool, duration time.Duration, errorCode string) {
	a.metrics.RecordScore(source, success, duration, errorCode)
}

func (a *MetricsAdapter) RecordReport(riskLevel string, riskScore int) {
	a.metrics.RecordReport(riskLevel, riskScore)
}

func (a *MetricsAdapter) RecordComponentScore(component, severity string, score int) {
	a.metrics.RecordComponentScore(component, severity, score)
}

func (a *MetricsAdapter) RecordDecodeWarning(section string) {
	a.metrics.RecordDecodeWarning(section)
}

func (a *MetricsAdapter) RecordBatch(size, failed int, duration time.Duration) {
	a.metrics.RecordBatch(size, failed, duration)
}

func (a *MetricsAdapter) RecordCacheAccess(cacheType string, hit bool) {
	a.metrics.RecordCacheAccess(cacheType, hit)
}

func (a *MetricsAdapter) RecordEmit(emitter string, success bool, duration time.Duration) {
	a.metrics.RecordEmit(emitter, success, duration)
}
