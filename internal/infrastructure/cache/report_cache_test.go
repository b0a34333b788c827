package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/riskscore360/internal/domain/models"
	"github.com/turtacn/riskscore360/internal/domain/service/mocks"
	"github.com/turtacn/riskscore360/internal/infrastructure/cache"
)

func TestMemoryReportCache_GetOrCompute(t *testing.T) {
	c := cache.NewMemoryReportCache(time.Minute, time.Minute, nil, nil)
	ctx := context.Background()

	calls := 0
	compute := func() (*models.ScoreResult, error) {
		calls++
		return &models.ScoreResult{ReportID: "r-1", Fingerprint: "fp-1"}, nil
	}

	first, cached, err := c.GetOrCompute(ctx, "fp-1", compute)
	require.NoError(t, err)
	assert.False(t, cached)

	second, cached, err := c.GetOrCompute(ctx, "fp-1", compute)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)

	byID, ok := c.Get(ctx, "r-1")
	require.True(t, ok)
	assert.Same(t, first, byID)
	assert.Equal(t, 1, c.Len())

	_, ok = c.Get(ctx, "r-2")
	assert.False(t, ok)

	c.Flush()
	_, ok = c.Get(ctx, "r-1")
	assert.False(t, ok)
}

func TestMemoryReportCache_ComputeError(t *testing.T) {
	c := cache.NewMemoryReportCache(time.Minute, time.Minute, nil, nil)
	failure := errors.New("boom")

	_, _, err := c.GetOrCompute(context.Background(), "fp", func() (*models.ScoreResult, error) {
		return nil, failure
	})
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 0, c.Len(), "errors are not cached")
}

func TestMemoryReportCache_Expiry(t *testing.T) {
	c := cache.NewMemoryReportCache(20*time.Millisecond, time.Minute, nil, nil)
	ctx := context.Background()
	compute := func() (*models.ScoreResult, error) { return &models.ScoreResult{ReportID: "r"}, nil }

	_, _, err := c.GetOrCompute(ctx, "fp", compute)
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)

	_, cached, err := c.GetOrCompute(ctx, "fp", compute)
	require.NoError(t, err)
	assert.False(t, cached)
}

func TestMemoryReportCache_ConcurrentCallersComputeOnce(t *testing.T) {
	c := cache.NewMemoryReportCache(time.Minute, time.Minute, nil, nil)
	var calls int32
	release := make(chan struct{})

	compute := func() (*models.ScoreResult, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &models.ScoreResult{ReportID: "shared"}, nil
	}

	var wg sync.WaitGroup
	results := make([]*models.ScoreResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, _, err := c.GetOrCompute(context.Background(), "same", compute)
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, "shared", r.ReportID)
	}
}

func TestMemoryReportCache_RecordsAccess(t *testing.T) {
	m := new(mocks.MockMetrics)
	m.On("RecordCacheAccess", "report", false).Return().Once()
	m.On("RecordCacheAccess", "report", true).Return().Once()

	c := cache.NewMemoryReportCache(time.Minute, time.Minute, m, nil)
	compute := func() (*models.ScoreResult, error) { return &models.ScoreResult{ReportID: "r"}, nil }
	_, _, _ = c.GetOrCompute(context.Background(), "fp", compute)
	_, _, _ = c.GetOrCompute(context.Background(), "fp", compute)

	m.AssertExpectations(t)
	m.AssertNumberOfCalls(t, "RecordCacheAccess", 2)
}
