package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordScore(source string, success bool, duration time.Duration, errorCode string) {
	m.Called(source, success, duration, errorCode)
}

func (m *MockMetrics) RecordReport(riskLevel string, riskScore int) {
	m.Called(riskLevel, riskScore)
}

func (m *MockMetrics) RecordComponentScore(component, severity string, score int) {
	m.Called(component, severity, score)
}

func (m *MockMetrics) RecordDecodeWarning(section string) {
	m.Called(section)
}

func (m *MockMetrics) RecordBatch(size, failed int, duration time.Duration) {
	m.Called(size, failed, duration)
}

func (m *MockMetrics) RecordCacheAccess(cacheType string, hit bool) {
	m.Called(cacheType, hit)
}

func (m *MockMetrics) RecordEmit(emitter string, success bool, duration time.Duration) {
	m.Called(emitter, success, duration)
}
