package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/riskscore360/pkg/constants"
	"github.com/turtacn/riskscore360/pkg/logger"
)

// Checker probes one dependency. A nil error means healthy.
type Checker func(ctx context.Context) error

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	checkers map[string]Checker
	version  string
	timeout  time.Duration
	log      logger.Logger
}

// NewHealthHandler creates a new HealthHandler. checkers are run by the
// readiness probe; the liveness probe never touches dependencies.
func NewHealthHandler(checkers map[string]Checker, version string, log logger.Logger) *HealthHandler {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &HealthHandler{
		checkers: checkers,
		version:  version,
		timeout:  2 * time.Second,
		log:      log.WithComponent("health"),
	}
}

// LivenessCheck godoc
// @Summary      Liveness Check
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Router       /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "alive",
		"service": constants.ServiceName,
		"version": h.version,
	})
}

// ReadinessCheck godoc
// @Summary      Readiness Check
// @Description  Checks if the service and its dependencies are ready to accept traffic.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	status := "ready"
	httpStatus := http.StatusOK

	checks := h.performChecks(c.Request.Context())
	for name, result := range checks {
		if result != "ok" {
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			h.log.Warn(c.Request.Context(), "Readiness check failed", logger.Fields{"check": name, "result": result})
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"service":   constants.ServiceName,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

// HealthCheck is an alias of ReadinessCheck.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	h.ReadinessCheck(c)
}

func (h *HealthHandler) performChecks(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var wg sync.WaitGroup
	mu := &sync.Mutex{}
	checks := make(map[string]string, len(h.checkers))

	wg.Add(len(h.checkers))
	for name, check := range h.checkers {
		go func(name string, check Checker) {
			defer wg.Done()
			status := "ok"
			if err := check(ctx); err != nil {
				status = "error: " + err.Error()
			}
			mu.Lock()
			checks[name] = status
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()
	return checks
}
