package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/riskscore360/internal/domain/models"
	domainService "github.com/turtacn/riskscore360/internal/domain/service"
	"github.com/turtacn/riskscore360/internal/domain/service/mocks"
	"github.com/turtacn/riskscore360/internal/infrastructure/cache"
	"github.com/turtacn/riskscore360/internal/infrastructure/signal"
	"github.com/turtacn/riskscore360/pkg/constants"
	apperrors "github.com/turtacn/riskscore360/pkg/errors"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

func scenarioSignal() *models.LoadedSignal {
	return &models.LoadedSignal{
		Source: "real_inputs.json",
		Document: &models.RawSignalDocument{
			SubscriptionID: "sub-1",
			ResourceGroup:  "rg-prod",
			IAMDrift:       models.DriftOwner,
			IAMCounts:      &models.IAMCounts{Owners: 6, Contributors: 10, Readers: 5},
			Defender:       &models.DefenderSignal{High: 6, Medium: 3},
			Network:        &models.NetworkSignal{OpenHighRiskPorts: 5, PublicIPCount: 6, MissingNSGCount: 2},
		},
	}
}

func newService(t *testing.T, opts Options) ScoringAppService {
	t.Helper()
	if opts.Cache == nil {
		opts.Cache = cache.NewMemoryReportCache(time.Minute, time.Minute, nil, nil)
	}
	opts.Now = func() time.Time { return fixedNow }
	return NewScoringAppService(domainService.NewDefaultScoringEngine(), opts, nil)
}

func okEmitter(name string) *mocks.MockReportEmitter {
	e := new(mocks.MockReportEmitter)
	e.On("Name").Return(name)
	e.On("Emit", mock.Anything, mock.Anything).Return(nil)
	return e
}

func TestScoringAppService_Score(t *testing.T) {
	emitter := okEmitter("kafka")
	svc := newService(t, Options{Emitters: []domainService.ReportEmitter{emitter}})

	result, err := svc.Score(context.Background(), scenarioSignal())
	require.NoError(t, err)

	_, err = uuid.Parse(result.ReportID)
	assert.NoError(t, err)
	assert.Equal(t, fixedNow.UTC(), result.GeneratedAt)
	assert.Equal(t, time.UTC, result.GeneratedAt.Location())
	assert.Equal(t, "real_inputs.json", result.Source)
	assert.NotEmpty(t, result.Fingerprint)
	assert.Equal(t, "sub-1", result.Report.SubscriptionID)
	assert.Equal(t, models.RiskLevelCritical, result.Report.RiskLevel)

	again, err := svc.Score(context.Background(), scenarioSignal())
	require.NoError(t, err)
	assert.Equal(t, result.ReportID, again.ReportID, "identical documents share a report")
	emitter.AssertNumberOfCalls(t, "Emit", 1)

	changed := scenarioSignal()
	changed.Document.Defender.High = 1
	other, err := svc.Score(context.Background(), changed)
	require.NoError(t, err)
	assert.NotEqual(t, result.ReportID, other.ReportID)
	assert.NotEqual(t, result.Fingerprint, other.Fingerprint)
}

func TestScoringAppService_Score_MissingInput(t *testing.T) {
	metrics := new(mocks.MockMetrics)
	metrics.On("RecordScore", constants.UnknownIdentifier, false, mock.Anything, string(constants.ErrCodeMissingInput)).Return().Twice()
	svc := newService(t, Options{Metrics: metrics})

	_, err := svc.Score(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsMissingInput(err))

	_, err = svc.Score(context.Background(), &models.LoadedSignal{})
	assert.True(t, apperrors.IsMissingInput(err))
	metrics.AssertExpectations(t)
}

func TestScoringAppService_Score_RecordsMetrics(t *testing.T) {
	metrics := new(mocks.MockMetrics)
	metrics.On("RecordDecodeWarning", "defender").Return().Once()
	metrics.On("RecordReport", "Critical", mock.AnythingOfType("int")).Return().Once()
	metrics.On("RecordComponentScore", mock.Anything, mock.Anything, mock.Anything).Return().Times(5)
	metrics.On("RecordEmit", "file", true, mock.Anything).Return().Once()
	metrics.On("RecordScore", "real_inputs.json", true, mock.Anything, "").Return().Once()

	svc := newService(t, Options{Metrics: metrics, Emitters: []domainService.ReportEmitter{okEmitter("file")}})
	sig := scenarioSignal()
	sig.Warnings = []string{models.SectionWarning("defender", errors.New("bad"))}

	result, err := svc.Score(context.Background(), sig)
	require.NoError(t, err)
	assert.Len(t, result.Warnings, 1)
	metrics.AssertExpectations(t)
}

func TestScoringAppService_Score_EmitFailure(t *testing.T) {
	failing := new(mocks.MockReportEmitter)
	failing.On("Name").Return("kafka")
	failing.On("Emit", mock.Anything, mock.Anything).Return(errors.New("broker unavailable"))
	svc := newService(t, Options{Emitters: []domainService.ReportEmitter{failing}})

	_, err := svc.Score(context.Background(), scenarioSignal())
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeEmitFailed, appErr.Code())

	_, err = svc.Score(context.Background(), scenarioSignal())
	require.Error(t, err)
	failing.AssertNumberOfCalls(t, "Emit", 2)
}

func TestScoringAppService_ScoreBatch(t *testing.T) {
	missing := new(mocks.MockSignalSource)
	missing.On("Load", mock.Anything).Return(nil, apperrors.ErrMissingInputFile("/tmp/absent.json"))

	svc := newService(t, Options{BatchConcurrency: 2})
	sources := []domainService.SignalSource{
		signal.NewBytesSource([]byte(`{"subscription_id": "a", "defender": {"high": 6}}`), "doc-0", nil),
		signal.NewBytesSource([]byte(`[1, 2]`), "doc-1", nil),
		missing,
		signal.NewBytesSource([]byte(`{"subscription_id": "d"}`), "doc-3", nil),
	}

	items, err := svc.ScoreBatch(context.Background(), sources)
	require.NoError(t, err)
	require.Len(t, items, 4)

	for i, item := range items {
		assert.Equal(t, i, item.Index)
	}
	require.NotNil(t, items[0].Result)
	assert.Equal(t, "a", items[0].Result.Report.SubscriptionID)
	assert.Equal(t, "doc-0", items[0].Source)
	assert.Equal(t, string(constants.ErrCodeInvalidDocument), items[1].Error.Code)
	assert.Equal(t, string(constants.ErrCodeMissingInput), items[2].Error.Code)
	require.NotNil(t, items[3].Result)
	assert.Equal(t, 0, items[3].Result.Report.RiskScore)
}

func TestScoringAppService_ScoreBatch_Limits(t *testing.T) {
	svc := newService(t, Options{MaxBatchItems: 2})

	_, err := svc.ScoreBatch(context.Background(), nil)
	assert.Equal(t, constants.ErrCodeInvalidRequest, badRequestCode(t, err))

	src := signal.NewBytesSource([]byte(`{}`), "doc", nil)
	_, err = svc.ScoreBatch(context.Background(), []domainService.SignalSource{src, src, src})
	assert.Equal(t, constants.ErrCodeInvalidRequest, badRequestCode(t, err))
}

func TestScoringAppService_GetReport(t *testing.T) {
	svc := newService(t, Options{})

	_, err := svc.GetReport(context.Background(), "not-a-uuid")
	assert.Equal(t, constants.ErrCodeInvalidRequest, badRequestCode(t, err))

	_, err = svc.GetReport(context.Background(), uuid.NewString())
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeReportNotFound, appErr.Code())
	assert.Equal(t, 404, appErr.HTTPStatus())

	result, err := svc.Score(context.Background(), scenarioSignal())
	require.NoError(t, err)
	got, err := svc.GetReport(context.Background(), result.ReportID)
	require.NoError(t, err)
	assert.Equal(t, result.ReportID, got.ReportID)
	assert.Same(t, result.Report, got.Report)
}

func badRequestCode(t *testing.T, err error) constants.ErrorCode {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected an AppError, got %v", err)
	assert.Equal(t, 400, appErr.HTTPStatus())
	return appErr.Code()
}

func TestScoringAppService_Score_EngineFailure(t *testing.T) {
	engine := new(mocks.MockScoringEngine)
	engine.On("Score", mock.Anything).Return(nil, errors.New("profile corrupted"))
	emitter := okEmitter("writer")

	svc := NewScoringAppService(engine, Options{Emitters: []domainService.ReportEmitter{emitter}}, nil)
	_, err := svc.Score(context.Background(), scenarioSignal())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile corrupted")
	emitter.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything)
	engine.AssertExpectations(t)
}

func TestScoringAppService_Score_CachedResult(t *testing.T) {
	cached := &models.ScoreResult{ReportID: uuid.NewString(), Report: &models.CompositeRiskReport{RiskLevel: models.RiskLevelLow}}
	reportCache := new(mocks.MockReportCache)
	reportCache.On("GetOrCompute", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(cached, true, nil)
	reportCache.On("Get", mock.Anything, cached.ReportID).Return(cached, true)

	engine := new(mocks.MockScoringEngine)
	svc := NewScoringAppService(engine, Options{Cache: reportCache}, nil)

	result, err := svc.Score(context.Background(), scenarioSignal())
	require.NoError(t, err)
	assert.Equal(t, cached.ReportID, result.ReportID)
	assert.Same(t, cached.Report, result.Report)
	assert.Equal(t, "real_inputs.json", result.Source)
	engine.AssertNotCalled(t, "Score", mock.Anything)

	found, err := svc.GetReport(context.Background(), cached.ReportID)
	require.NoError(t, err)
	assert.Same(t, cached, found)
	reportCache.AssertExpectations(t)
}

func TestScoringAppService_Score_CacheHitKeepsCallerEnvelope(t *testing.T) {
	emitter := okEmitter("file")
	svc := newService(t, Options{Emitters: []domainService.ReportEmitter{emitter}})

	first := scenarioSignal()
	first.Source = "http"
	firstResult, err := svc.Score(context.Background(), first)
	require.NoError(t, err)

	second := scenarioSignal()
	second.Source = "rg-b.json"
	second.Warnings = []string{models.SectionWarning("policy", errors.New("unexpected token"))}
	secondResult, err := svc.Score(context.Background(), second)
	require.NoError(t, err)

	assert.Equal(t, firstResult.ReportID, secondResult.ReportID)
	assert.Equal(t, firstResult.GeneratedAt, secondResult.GeneratedAt)
	assert.Same(t, firstResult.Report, secondResult.Report)
	emitter.AssertNumberOfCalls(t, "Emit", 1)

	assert.Equal(t, "http", firstResult.Source)
	assert.Empty(t, firstResult.Warnings)
	assert.Equal(t, "rg-b.json", secondResult.Source)
	assert.Equal(t, second.Warnings, secondResult.Warnings)

	third, err := svc.Score(context.Background(), scenarioSignal())
	require.NoError(t, err)
	assert.Equal(t, "real_inputs.json", third.Source)
	assert.Empty(t, third.Warnings, "warnings of earlier callers do not leak")
}
