package handlers

import (
	"net/http"
	"time"

	"github.com/VelourMedia/pulsetrack-go/internal/application/services"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// LifecycleHandlers contains the lifecycle trigger and status endpoints
type LifecycleHandlers struct {
	lifecycleService *services.LifecycleService
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
}

// LifecycleTriggerRequest identifies the external scheduler invoking a run
type LifecycleTriggerRequest struct {
	Trigger string `json:"trigger"`
}

// NewLifecycleHandlers creates lifecycle handlers with injected dependencies
func NewLifecycleHandlers(lifecycleService *services.LifecycleService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *LifecycleHandlers {
	return &LifecycleHandlers{
		lifecycleService: lifecycleService,
		logger:           logger,
		perfTracker:      perfTracker,
	}
}

// TriggerLifecycle handles POST /api/v1/analytics/lifecycle. The endpoint
// always answers 200; individual operation failures are reported in the
// per-operation status.
func (h *LifecycleHandlers) TriggerLifecycle(c *gin.Context) {
	var req LifecycleTriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Trigger == "" {
		req.Trigger = "manual"
	}

	c.JSON(http.StatusOK, h.lifecycleService.Run(req.Trigger, time.Now()))
}

// GetLifecycleStatus handles GET /api/v1/analytics/lifecycle
func (h *LifecycleHandlers) GetLifecycleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.lifecycleService.Status())
}
