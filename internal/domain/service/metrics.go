// Package service defines the scoring engine and the interfaces of its collaborators.
package service

import (
	"time"
)

// Metrics defines the interface for collecting business metrics.
// This abstraction allows the application layer to remain independent of the specific monitoring implementation (e.g., Prometheus).
// Metrics 定义了收集业务指标的接口。
// 这种抽象使应用层能够独立于具体的监控实现（例如 Prometheus）。
type Metrics interface {
	// RecordScore records one scoring invocation. errorCode is empty on success.
	// RecordScore 记录一次评分调用。成功时 errorCode 为空。
	RecordScore(source string, success bool, duration time.Duration, errorCode string)

	// RecordReport records the outcome of a successful scoring.
	// RecordReport 记录一次成功评分的结果。
	RecordReport(riskLevel string, riskScore int)

	// RecordComponentScore records the score of one component.
	// RecordComponentScore 记录单个分项的得分。
	RecordComponentScore(component, severity string, score int)

	// RecordDecodeWarning records a malformed section that was scored as absent.
	// RecordDecodeWarning 记录一个被视为缺失的格式错误分段。
	RecordDecodeWarning(section string)

	// RecordBatch records a batch request and how many of its items failed.
	// RecordBatch 记录一次批量请求及其中失败的条目数。
	RecordBatch(size, failed int, duration time.Duration)

	// RecordCacheAccess records a cache hit or miss.
	// RecordCacheAccess 记录缓存命中或未命中。
	RecordCacheAccess(cacheType string, hit bool)

	// RecordEmit records the latency and outcome of one emitter call.
	// RecordEmit 记录一次发送器调用的延迟和结果。
	RecordEmit(emitter string, success bool, duration time.Duration)
}

// NoopMetrics discards every measurement.
type NoopMetrics struct{}

func (NoopMetrics) RecordScore(string, bool, time.Duration, string) {}
func (NoopMetrics) RecordReport(string, int)                        {}
func (NoopMetrics) RecordComponentScore(string, string, int)        {}
func (NoopMetrics) RecordDecodeWarning(string)                      {}
func (NoopMetrics) RecordBatch(int, int, time.Duration)             {}
func (NoopMetrics) RecordCacheAccess(string, bool)                  {}
func (NoopMetrics) RecordEmit(string, bool, time.Duration)          {}
