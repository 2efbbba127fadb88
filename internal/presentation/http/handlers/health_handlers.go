package handlers

import (
	"net/http"
	"time"

	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// HealthHandlers contains the liveness endpoint
type HealthHandlers struct {
	perfTracker *performance.Tracker
	startedAt   time.Time
}

// NewHealthHandlers creates health handlers
func NewHealthHandlers(perfTracker *performance.Tracker) *HealthHandlers {
	return &HealthHandlers{
		perfTracker: perfTracker,
		startedAt:   time.Now(),
	}
}

// GetHealth handles GET /api/v1/health
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"uptimeSeconds": int(time.Since(h.startedAt).Seconds()),
		"performance":   h.perfTracker.GetOverallStats(),
	})
}
