package service

import (
	"context"

	"github.com/turtacn/riskscore360/internal/domain/models"
)

//go:generate mockery --name ScoringEngine --output mocks --outpkg mocks
// ScoringEngine converts one raw signal document into one composite risk report.
// ScoringEngine 将一份原始信号文档转换为一份综合风险报告。
type ScoringEngine interface {
	// Score computes the report. A nil document fails with a missing_input error;
	// every other input is scored.
	// Score 计算报告。文档为 nil 时返回 missing_input 错误；其他输入均会被评分。
	Score(doc *models.RawSignalDocument) (*models.CompositeRiskReport, error)

	// Profile returns the scoring profile the engine was built with.
	// Profile 返回引擎构造时使用的评分配置。
	Profile() models.ScoringProfile
}

//go:generate mockery --name SignalSource --output mocks --outpkg mocks
// SignalSource supplies raw signal documents, e.g. from the collector's JSON file.
// SignalSource 提供原始信号文档，例如来自采集器输出的 JSON 文件。
type SignalSource interface {
	// Load reads and decodes one document.
	// Load 读取并解码一份文档。
	Load(ctx context.Context) (*models.LoadedSignal, error)
}

//go:generate mockery --name ReportEmitter --output mocks --outpkg mocks
// ReportEmitter hands scored reports to a downstream consumer such as the report renderer.
// ReportEmitter 将评分报告交给下游消费者，例如报告渲染器。
type ReportEmitter interface {
	// Name identifies the emitter in logs and metrics.
	// Name 在日志和指标中标识该发送器。
	Name() string

	// Emit delivers one result.
	// Emit 投递一个结果。
	Emit(ctx context.Context, result *models.ScoreResult) error

	// Close releases resources held by the emitter.
	// Close 释放发送器持有的资源。
	Close() error
}

//go:generate mockery --name ReportCache --output mocks --outpkg mocks
// ReportCache keeps recently computed results retrievable by report ID and by
// document fingerprint.
// ReportCache 使最近计算的结果可以按报告 ID 和文档指纹检索。
type ReportCache interface {
	// Get returns the result with the given report ID.
	// Get 返回给定报告 ID 的结果。
	Get(ctx context.Context, reportID string) (*models.ScoreResult, bool)

	// GetOrCompute returns the cached result for fingerprint, or runs compute
	// once for all concurrent callers and caches its result. cached reports
	// whether the result came from the cache.
	// GetOrCompute 返回指纹对应的缓存结果，否则对所有并发调用者只执行一次 compute
	// 并缓存结果。cached 表示结果是否来自缓存。
	GetOrCompute(ctx context.Context, fingerprint string, compute func() (*models.ScoreResult, error)) (result *models.ScoreResult, cached bool, err error)
}
