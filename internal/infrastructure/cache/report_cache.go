// Package cache keeps recently scored reports in memory.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/riskscore360/internal/domain/models"
	"github.com/turtacn/riskscore360/internal/domain/service"
	"github.com/turtacn/riskscore360/pkg/logger"
)

const (
	reportKeyPrefix      = "report:"
	fingerprintKeyPrefix = "fp:"
	cacheType            = "report"
)

// MemoryReportCache is an in-process ReportCache with per-entry expiry.
// Concurrent requests for the same fingerprint are collapsed into one
// computation.
type MemoryReportCache struct {
	store   *gocache.Cache
	sf      singleflight.Group
	metrics service.Metrics
	logger  logger.Logger
}

// NewMemoryReportCache creates a cache whose entries expire after ttl.
func NewMemoryReportCache(ttl, cleanupInterval time.Duration, metrics service.Metrics, log logger.Logger) *MemoryReportCache {
	if metrics == nil {
		metrics = service.NoopMetrics{}
	}
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &MemoryReportCache{
		store:   gocache.New(ttl, cleanupInterval),
		metrics: metrics,
		logger:  log.WithComponent("report_cache"),
	}
}

func (c *MemoryReportCache) Get(ctx context.Context, reportID string) (*models.ScoreResult, bool) {
	v, found := c.store.Get(reportKeyPrefix + reportID)
	c.metrics.RecordCacheAccess(cacheType, found)
	if !found {
		return nil, false
	}
	return v.(*models.ScoreResult), true
}

func (c *MemoryReportCache) GetOrCompute(ctx context.Context, fingerprint string, compute func() (*models.ScoreResult, error)) (*models.ScoreResult, bool, error) {
	key := fingerprintKeyPrefix + fingerprint
	if v, found := c.store.Get(key); found {
		c.metrics.RecordCacheAccess(cacheType, true)
		return v.(*models.ScoreResult), true, nil
	}
	c.metrics.RecordCacheAccess(cacheType, false)

	v, err, shared := c.sf.Do(key, func() (interface{}, error) {
		// Another caller may have stored the result between the lookup and Do.
		if v, found := c.store.Get(key); found {
			return v, nil
		}
		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.store.SetDefault(key, result)
		c.store.SetDefault(reportKeyPrefix+result.ReportID, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	if shared {
		c.logger.Debug(ctx, "Collapsed concurrent score requests", logger.Fields{"fingerprint": fingerprint})
	}
	return v.(*models.ScoreResult), false, nil
}

// Len returns the number of cached reports.
func (c *MemoryReportCache) Len() int {
	return c.store.ItemCount() / 2
}

// Flush drops every entry.
func (c *MemoryReportCache) Flush() {
	c.store.Flush()
}
