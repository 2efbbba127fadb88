// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"net/http"
	"time"

	"github.com/VelourMedia/pulsetrack-go/internal/application/services"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// ActivityHandlers contains the activity ingestion endpoints
type ActivityHandlers struct {
	sessionService *services.SessionService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// ActivityResponse is the snapshot returned to the tracking snippet
type ActivityResponse struct {
	SessionID         string  `json:"sessionId"`
	IsActive          bool    `json:"isActive"`
	ActivityScore     float64 `json:"activityScore"`
	SessionQuality    string  `json:"sessionQuality"`
	TotalInteractions int     `json:"totalInteractions"`
}

// NewActivityHandlers creates activity handlers with injected dependencies
func NewActivityHandlers(sessionService *services.SessionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ActivityHandlers {
	return &ActivityHandlers{
		sessionService: sessionService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// RecordActivity handles POST /api/v1/analytics/activity
func (h *ActivityHandlers) RecordActivity(c *gin.Context) {
	var req services.ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req.UserAgent = c.GetHeader("User-Agent")
	req.IPAddress = c.ClientIP()
	req.Referrer = c.GetHeader("Referer")

	snap, err := h.sessionService.RecordActivity(req, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ActivityResponse{
		SessionID:         snap.SessionID,
		IsActive:          snap.IsActive,
		ActivityScore:     snap.ActivityScore,
		SessionQuality:    string(snap.Quality),
		TotalInteractions: snap.TotalInteractions,
	})
}

// GetActivity handles GET /api/v1/analytics/activity
func (h *ActivityHandlers) GetActivity(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"activeSessions": h.sessionService.GetActiveSessions(),
		"realtimeStats":  h.sessionService.RealTimeStats(),
	})
}
