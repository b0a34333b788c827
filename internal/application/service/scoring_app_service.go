// Package service provides application-level services that orchestrate the scoring engine and its adapters
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/riskscore360/internal/application/dto"
	"github.com/turtacn/riskscore360/internal/domain/models"
	domainService "github.com/turtacn/riskscore360/internal/domain/service"
	"github.com/turtacn/riskscore360/pkg/constants"
	"github.com/turtacn/riskscore360/pkg/errors"
	"github.com/turtacn/riskscore360/pkg/logger"
	"github.com/turtacn/riskscore360/pkg/utils"
)

// ScoringAppService defines the interface for the scoring application service
// ScoringAppService 定义评分应用服务接口
type ScoringAppService interface {
	// Score scores one loaded document. Identical documents scored within the
	// cache TTL return the same result.
	// Score 对一份已加载的文档评分。缓存有效期内相同文档返回相同结果。
	Score(ctx context.Context, signal *models.LoadedSignal) (*models.ScoreResult, error)

	// ScoreBatch loads and scores every source with bounded concurrency. Item
	// failures are reported per item; results keep the order of sources.
	// ScoreBatch 以有限并发加载并评分所有来源。单项失败按条目返回，结果保持来源顺序。
	ScoreBatch(ctx context.Context, sources []domainService.SignalSource) ([]*dto.BatchItem, error)

	// GetReport returns a previously computed result by report ID.
	// GetReport 按报告 ID 返回先前计算的结果。
	GetReport(ctx context.Context, reportID string) (*models.ScoreResult, error)
}

// Options configures a ScoringAppService
type Options struct {
	Cache            domainService.ReportCache
	Emitters         []domainService.ReportEmitter
	Metrics          domainService.Metrics
	Tracer           trace.Tracer
	BatchConcurrency int
	MaxBatchItems    int
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

type scoringAppServiceImpl struct {
	engine      domainService.ScoringEngine
	cache       domainService.ReportCache
	emitters    []domainService.ReportEmitter
	metrics     domainService.Metrics
	tracer      trace.Tracer
	concurrency int
	maxItems    int
	now         func() time.Time
	logger      logger.Logger
}

// NewScoringAppService creates a new instance of ScoringAppService
func NewScoringAppService(engine domainService.ScoringEngine, opts Options, log logger.Logger) ScoringAppService {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	s := &scoringAppServiceImpl{
		engine:      engine,
		cache:       opts.Cache,
		emitters:    opts.Emitters,
		metrics:     opts.Metrics,
		tracer:      opts.Tracer,
		concurrency: opts.BatchConcurrency,
		maxItems:    opts.MaxBatchItems,
		now:         opts.Now,
		logger:      log.WithComponent("scoring_app_service"),
	}
	if s.metrics == nil {
		s.metrics = domainService.NoopMetrics{}
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(constants.ServiceName)
	}
	if s.concurrency <= 0 {
		s.concurrency = constants.DefaultBatchConcurrency
	}
	if s.maxItems <= 0 {
		s.maxItems = constants.MaxBatchSize
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Score implements ScoringAppService
func (s *scoringAppServiceImpl) Score(ctx context.Context, signal *models.LoadedSignal) (*models.ScoreResult, error) {
	start := time.Now()
	source := sourceOf(signal)

	ctx, span := s.tracer.Start(ctx, "ScoringAppService.Score", trace.WithAttributes(attribute.String("source", source)))
	defer span.End()

	result, cached, err := s.score(ctx, signal)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.RecordScore(source, false, time.Since(start), errorCode(err))
		if errors.IsClientError(err) {
			s.logger.Warn(ctx, "Scoring rejected", logger.Fields{"source": source, "error": err.Error()})
		} else {
			s.logger.Error(ctx, "Scoring failed", err, logger.Fields{"source": source})
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.String("report_id", result.ReportID),
		attribute.Int("risk_score", result.Report.RiskScore),
		attribute.String("risk_level", string(result.Report.RiskLevel)),
		attribute.Bool("cached", cached),
	)
	span.SetStatus(codes.Ok, "")
	s.metrics.RecordScore(source, true, time.Since(start), "")

	s.logger.Info(ctx, "Document scored", logger.Fields{
		"source":          source,
		"report_id":       result.ReportID,
		"subscription_id": result.Report.SubscriptionID,
		"risk_score":      result.Report.RiskScore,
		"risk_level":      string(result.Report.RiskLevel),
		"cached":          cached,
		"warnings":        len(result.Warnings),
	})
	return result, nil
}

func (s *scoringAppServiceImpl) score(ctx context.Context, signal *models.LoadedSignal) (*models.ScoreResult, bool, error) {
	if signal == nil || signal.Document == nil {
		return nil, false, errors.ErrMissingInput("raw signal document is required")
	}

	fingerprint, err := utils.Fingerprint(signal.Document)
	if err != nil {
		return nil, false, errors.WrapError(err, constants.ErrCodeServerError, "failed to fingerprint document")
	}

	for _, w := range signal.Warnings {
		s.metrics.RecordDecodeWarning(models.WarningSection(w))
	}

	compute := func() (*models.ScoreResult, error) {
		return s.compute(ctx, signal, fingerprint)
	}
	if s.cache == nil {
		result, err := compute()
		return result, false, err
	}
	result, cached, err := s.cache.GetOrCompute(ctx, fingerprint, compute)
	if err != nil {
		return nil, false, err
	}
	return callerEnvelope(result, signal), cached, nil
}

// callerEnvelope returns a copy of a shared result that carries the caller's
// own source and decode warnings. The report itself is shared.
func callerEnvelope(shared *models.ScoreResult, signal *models.LoadedSignal) *models.ScoreResult {
	result := *shared
	result.Source = signal.Source
	result.Warnings = nil
	if len(signal.Warnings) > 0 {
		result.Warnings = append([]string(nil), signal.Warnings...)
	}
	return &result
}

// compute runs the engine and delivers the new result to every emitter.
func (s *scoringAppServiceImpl) compute(ctx context.Context, signal *models.LoadedSignal, fingerprint string) (*models.ScoreResult, error) {
	report, err := s.engine.Score(signal.Document)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordReport(string(report.RiskLevel), report.RiskScore)
	for _, c := range report.ComponentDetails.Ordered() {
		s.metrics.RecordComponentScore(c.Component, string(c.Severity), c.Score)
	}

	result := &models.ScoreResult{
		ReportID:    uuid.NewString(),
		GeneratedAt: s.now().UTC(),
		Fingerprint: fingerprint,
		Source:      signal.Source,
		Warnings:    signal.Warnings,
		Report:      report,
	}

	if err := s.emit(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *scoringAppServiceImpl) emit(ctx context.Context, result *models.ScoreResult) error {
	for _, e := range s.emitters {
		start := time.Now()
		emitCtx, span := s.tracer.Start(ctx, "ReportEmitter.Emit", trace.WithAttributes(attribute.String("emitter", e.Name())))
		err := e.Emit(emitCtx, result)
		s.metrics.RecordEmit(e.Name(), err == nil, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			if _, ok := errors.AsAppError(err); !ok {
				err = errors.ErrEmitFailed(e.Name(), err)
			}
			return err
		}
		span.End()
	}
	return nil
}

// ScoreBatch implements ScoringAppService
func (s *scoringAppServiceImpl) ScoreBatch(ctx context.Context, sources []domainService.SignalSource) ([]*dto.BatchItem, error) {
	if len(sources) == 0 {
		return nil, errors.ErrInvalidRequest("batch contains no documents")
	}
	if len(sources) > s.maxItems {
		return nil, errors.ErrInvalidRequest("batch exceeds the maximum number of documents").
			WithMetadata("max_items", s.maxItems).
			WithMetadata("items", len(sources))
	}

	start := time.Now()
	done := logger.StartOperation(ctx, s.logger, "score_batch")
	items := make([]*dto.BatchItem, len(sources))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			items[i] = s.scoreItem(ctx, i, src)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, item := range items {
		if item.Error != nil {
			failed++
		}
	}
	s.metrics.RecordBatch(len(sources), failed, time.Since(start))
	done(logger.Fields{"items": len(sources), "failed": failed})
	return items, nil
}

func (s *scoringAppServiceImpl) scoreItem(ctx context.Context, index int, src domainService.SignalSource) *dto.BatchItem {
	item := &dto.BatchItem{Index: index}
	if err := ctx.Err(); err != nil {
		item.Error = dto.NewErrorDTO(errors.WrapError(err, constants.ErrCodeInvalidRequest, "batch cancelled"))
		return item
	}

	signal, err := src.Load(ctx)
	if err != nil {
		s.metrics.RecordScore(constants.UnknownIdentifier, false, 0, errorCode(err))
		item.Error = dto.NewErrorDTO(err)
		return item
	}
	item.Source = signal.Source

	result, err := s.Score(ctx, signal)
	if err != nil {
		item.Error = dto.NewErrorDTO(err)
		return item
	}
	item.Result = result
	return item
}

// GetReport implements ScoringAppService
func (s *scoringAppServiceImpl) GetReport(ctx context.Context, reportID string) (*models.ScoreResult, error) {
	if !utils.ValidateReportID(reportID) {
		return nil, errors.ErrInvalidRequest("report id must be a UUID").WithMetadata("report_id", reportID)
	}
	if s.cache == nil {
		return nil, errors.ErrReportNotFound(reportID)
	}
	result, ok := s.cache.Get(ctx, reportID)
	if !ok {
		return nil, errors.ErrReportNotFound(reportID)
	}
	return result, nil
}

func sourceOf(signal *models.LoadedSignal) string {
	if signal == nil || signal.Source == "" {
		return constants.UnknownIdentifier
	}
	return signal.Source
}

func errorCode(err error) string {
	if appErr, ok := errors.AsAppError(err); ok {
		return string(appErr.Code())
	}
	return string(constants.ErrCodeServerError)
}
