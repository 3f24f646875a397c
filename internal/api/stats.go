package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

// StatsHandler serves aggregate counters and the health check.
type StatsHandler struct {
	st     StateReader
	checks map[string]HealthCheck
	logger *zap.Logger
}

// NewStatsHandler creates a StatsHandler probing checks on /v1/health.
func NewStatsHandler(st StateReader, checks map[string]HealthCheck, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{st: st, checks: checks, logger: logger}
}

// Stats handles GET /v1/stats
func (h *StatsHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.st.Stats())
}

// Health handles GET /v1/health
//
// Public so a load balancer can poll it. Each configured backend is
// pinged with a short timeout; any failure turns the response into a 503.
func (h *StatsHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	backends := make(gin.H, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("health check failed", zap.String("backend", name), zap.Error(err))
			backends[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		backends[name] = "ok"
	}

	body := gin.H{"status": "ok", "backends": backends}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
