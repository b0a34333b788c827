package cli

import (
	"github.com/turtacn/riskscore360/internal/application/service"
	"github.com/turtacn/riskscore360/internal/config"
	domainService "github.com/turtacn/riskscore360/internal/domain/service"
	"github.com/turtacn/riskscore360/internal/infrastructure/cache"
	"github.com/turtacn/riskscore360/internal/infrastructure/emitter"
	"github.com/turtacn/riskscore360/pkg/logger"
)

// scoringRuntime bundles the application service with the emitters it owns.
type scoringRuntime struct {
	svc      service.ScoringAppService
	emitters []domainService.ReportEmitter
}

func newScoringRuntime(cfg *config.Config, log logger.Logger, extra ...domainService.ReportEmitter) (*scoringRuntime, error) {
	configured, _, err := emitter.FromConfig(cfg, log)
	if err != nil {
		return nil, err
	}
	emitters := append(extra, configured...)

	svc := service.NewScoringAppService(domainService.NewDefaultScoringEngine(), service.Options{
		Cache:            cache.NewMemoryReportCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval, nil, log),
		Emitters:         emitters,
		BatchConcurrency: cfg.Batch.Concurrency,
		MaxBatchItems:    cfg.Batch.MaxItems,
	}, log)
	return &scoringRuntime{svc: svc, emitters: emitters}, nil
}

func (r *scoringRuntime) Close() error {
	return emitter.CloseAll(r.emitters)
}
