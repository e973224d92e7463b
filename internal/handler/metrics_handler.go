package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/campus-connect-api/internal/service"
)

// ReadinessCheck reports whether a dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics     *service.MetricsService
	environment string
	started     time.Time
	checks      map[string]ReadinessCheck
	logger      *zap.Logger
	now         func() time.Time
}

// NewMetricsHandler constructs a metrics handler. checks are run by Ready.
func NewMetricsHandler(metrics *service.MetricsService, environment string, checks map[string]ReadinessCheck, logger *zap.Logger) *MetricsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetricsHandler{
		metrics:     metrics,
		environment: environment,
		started:     time.Now(),
		checks:      checks,
		logger:      logger,
		now:         time.Now,
	}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health godoc
// @Summary Liveness probe
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *MetricsHandler) Health(c *gin.Context) {
	now := h.now()
	c.JSON(http.StatusOK, gin.H{
		"status":      "OK",
		"uptime":      now.Sub(h.started).Seconds(),
		"timestamp":   now.UTC().Format(time.RFC3339),
		"environment": h.environment,
	})
}

// Ready godoc
// @Summary Readiness probe
// @Description Pings the database and Redis.
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /ready [get]
func (h *MetricsHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	var (
		mu      sync.Mutex
		g       errgroup.Group
		healthy = true
		results = make(map[string]string, len(h.checks))
	)
	for name, check := range h.checks {
		name, check := name, check
		g.Go(func() error {
			state := "up"
			if err := check(ctx); err != nil {
				state = "down"
				h.logger.Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
			}
			mu.Lock()
			defer mu.Unlock()
			results[name] = state
			healthy = healthy && state == "up"
			return nil
		})
	}
	_ = g.Wait()

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": results})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": results})
}
