package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/riskscore360/internal/config"
	"github.com/turtacn/riskscore360/internal/interfaces/http/handlers"
	"github.com/turtacn/riskscore360/internal/interfaces/http/middleware"
	"github.com/turtacn/riskscore360/pkg/constants"
	"github.com/turtacn/riskscore360/pkg/logger"
)

// Router HTTP 路由器
type Router struct {
	engine        *gin.Engine
	config        *config.Config
	logger        logger.Logger
	scoreHandler  *handlers.ScoreHandler
	healthHandler *handlers.HealthHandler
	metrics       middleware.RequestMetrics
	gatherer      prometheus.Gatherer
	tracer        trace.Tracer
	server        *http.Server
}

// Dependencies 路由器依赖
type Dependencies struct {
	ScoreHandler  *handlers.ScoreHandler
	HealthHandler *handlers.HealthHandler
	Metrics       middleware.RequestMetrics
	Gatherer      prometheus.Gatherer
	Tracer        trace.Tracer
}

// NewRouter 创建路由器
func NewRouter(cfg *config.Config, log logger.Logger, deps Dependencies) *Router {
	// 设置 Gin 模式
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if deps.Tracer == nil {
		deps.Tracer = middleware.DefaultTracer()
	}

	r := &Router{
		engine:        gin.New(),
		config:        cfg,
		logger:        log.WithComponent("http_router"),
		scoreHandler:  deps.ScoreHandler,
		healthHandler: deps.HealthHandler,
		metrics:       deps.Metrics,
		gatherer:      deps.Gatherer,
		tracer:        deps.Tracer,
	}
	r.SetupRoutes()
	return r
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes() {
	// 全局中间件
	r.engine.Use(handlers.RecoveryMiddleware(r.logger))
	r.engine.Use(handlers.RequestIDMiddleware())
	if r.metrics != nil {
		r.engine.Use(middleware.ObservabilityMiddleware(r.tracer, r.metrics))
	}
	r.engine.Use(handlers.LoggingMiddleware(r.logger))

	// CORS 配置
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", constants.HeaderRequestID, "If-None-Match", "traceparent"},
		ExposeHeaders: []string{constants.HeaderRequestID, constants.HeaderReportID, "ETag"},
		MaxAge:        12 * time.Hour,
	}
	if allowsAnyOrigin(r.config.Server.AllowedOrigins) {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = r.config.Server.AllowedOrigins
	}
	r.engine.Use(cors.New(corsConfig))

	// 健康检查路由
	r.engine.GET("/health", r.healthHandler.HealthCheck)
	r.engine.GET("/ready", r.healthHandler.ReadinessCheck)
	r.engine.GET("/live", r.healthHandler.LivenessCheck)

	// Prometheus metrics
	if r.config.Metrics.Enabled {
		r.engine.GET(r.config.Metrics.Path, gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}

	// Pprof 性能分析（仅在非生产环境）
	if !r.config.Server.IsProduction() {
		pprof.Register(r.engine)
	}

	// API 路由组
	v1 := r.engine.Group("/api/v1")
	{
		v1.POST("/score", r.scoreHandler.Score)
		v1.POST("/score/batch", r.scoreHandler.ScoreBatch)
		v1.GET("/reports/:id", middleware.ETagCache(int(r.config.Cache.TTL.Seconds())), r.scoreHandler.GetReport)
	}

	// 404 处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "The requested resource was not found",
		})
	})
}

// Start 启动 HTTP 服务器，阻塞直到服务器关闭
func (r *Router) Start() error {
	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	r.server = &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    r.config.Server.ReadTimeout,
		WriteTimeout:   r.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	r.logger.Info(context.Background(), "Starting HTTP server", logger.Fields{"address": addr})
	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 停止 HTTP 服务器
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	r.logger.Info(ctx, "Stopping HTTP server...")
	return r.server.Shutdown(ctx)
}

// Engine exposes the gin engine, mainly for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
