package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/riskscore360/internal/domain/models"
)

type MockScoringEngine struct {
	mock.Mock
}

func (m *MockScoringEngine) Score(doc *models.RawSignalDocument) (*models.CompositeRiskReport, error) {
	args := m.Called(doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CompositeRiskReport), args.Error(1)
}

func (m *MockScoringEngine) Profile() models.ScoringProfile {
	args := m.Called()
	return args.Get(0).(models.ScoringProfile)
}

type MockSignalSource struct {
	mock.Mock
}

func (m *MockSignalSource) Load(ctx context.Context) (*models.LoadedSignal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoadedSignal), args.Error(1)
}
