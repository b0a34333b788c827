package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	appservice "github.com/turtacn/riskscore360/internal/application/service"
	"github.com/turtacn/riskscore360/internal/config"
	domainservice "github.com/turtacn/riskscore360/internal/domain/service"
	"github.com/turtacn/riskscore360/internal/infrastructure/cache"
	"github.com/turtacn/riskscore360/internal/infrastructure/emitter"
	"github.com/turtacn/riskscore360/internal/infrastructure/monitoring"
	grpcapi "github.com/turtacn/riskscore360/internal/interfaces/grpc"
	httpapi "github.com/turtacn/riskscore360/internal/interfaces/http"
	"github.com/turtacn/riskscore360/internal/interfaces/http/handlers"
	"github.com/turtacn/riskscore360/pkg/logger"
)

var version = "dev"

func main() {
	configFile := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// Logger for startup
	startupLogger, err := monitoring.NewZapLogger(&config.LogConfig{Level: "info", Format: "json"})
	if err != nil {
		log.Fatalf("Failed to create startup logger: %v", err)
	}

	// Load config
	loader := config.NewLoader(*configFile, startupLogger)
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()
	ctx := context.Background()

	loader.Watch(func(next *config.Config) {
		appLogger.SetLevel(next.Log.Level)
	})

	// Initialize tracing
	tracing, err := monitoring.NewTracingManager(&cfg.Tracing, cfg.Server.Environment, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize tracer", err)
	}

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(registry)
	metricsAdapter := monitoring.NewMetricsAdapter(metrics)

	// Initialize infrastructure
	emitters, kafkaEmitter, err := emitter.FromConfig(cfg, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize report emitters", err)
	}
	if kafkaEmitter != nil {
		kafkaEmitter.WithTracing(tracing)
	}
	reportCache := cache.NewMemoryReportCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval, metricsAdapter, appLogger)

	// Initialize application services
	scoringSvc := appservice.NewScoringAppService(domainservice.NewDefaultScoringEngine(), appservice.Options{
		Cache:            reportCache,
		Emitters:         emitters,
		Metrics:          metricsAdapter,
		Tracer:           tracing.Tracer(),
		BatchConcurrency: cfg.Batch.Concurrency,
		MaxBatchItems:    cfg.Batch.MaxItems,
	}, appLogger)

	// Initialize HTTP handlers and router
	checkers := map[string]handlers.Checker{}
	if kafkaEmitter != nil {
		checkers["kafka"] = kafkaEmitter.Ping
	}
	router := httpapi.NewRouter(cfg, appLogger, httpapi.Dependencies{
		ScoreHandler:  handlers.NewScoreHandler(scoringSvc, cfg.Server.MaxBodyBytes, cfg.Output.OutputFormat(), appLogger),
		HealthHandler: handlers.NewHealthHandler(checkers, version, appLogger),
		Metrics:       metrics,
		Gatherer:      registry,
		Tracer:        tracing.Tracer(),
	})

	errCh := make(chan error, 2)
	go func() { errCh <- router.Start() }()

	// Initialize and start gRPC server
	var grpcServer *grpcapi.Server
	if cfg.GRPC.Enabled {
		grpcServer = grpcapi.NewServer(grpcapi.NewScoringGRPCService(scoringSvc, appLogger), appLogger)
		go func() { errCh <- grpcServer.Listen(cfg.GRPC.Port) }()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		appLogger.Info(ctx, "Shutdown signal received", logger.Fields{"signal": sig.String()})
	case err := <-errCh:
		if err != nil {
			appLogger.Error(ctx, "Server stopped unexpectedly", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Stop(shutdownCtx)
	}
	if err := router.Stop(shutdownCtx); err != nil {
		appLogger.Error(ctx, "HTTP server forced to shut down", err)
	}
	if err := emitter.CloseAll(emitters); err != nil {
		appLogger.Error(ctx, "Failed to close report emitters", err)
	}
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(ctx, "Failed to flush traces", err)
	}

	appLogger.Info(ctx, "Server exited")
}
