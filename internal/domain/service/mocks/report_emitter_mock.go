package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/riskscore360/internal/domain/models"
)

type MockReportEmitter struct {
	mock.Mock
}

func (m *MockReportEmitter) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockReportEmitter) Emit(ctx context.Context, result *models.ScoreResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockReportEmitter) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockReportCache struct {
	mock.Mock
}

func (m *MockReportCache) Get(ctx context.Context, reportID string) (*models.ScoreResult, bool) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*models.ScoreResult), args.Bool(1)
}

func (m *MockReportCache) GetOrCompute(ctx context.Context, fingerprint string, compute func() (*models.ScoreResult, error)) (*models.ScoreResult, bool, error) {
	args := m.Called(ctx, fingerprint, compute)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.ScoreResult), args.Bool(1), args.Error(2)
}
