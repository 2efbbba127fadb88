package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/heuristics"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// ConfigHandlers contains the operator config administration endpoints
type ConfigHandlers struct {
	store       *heuristics.Store
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewConfigHandlers creates config handlers with injected dependencies
func NewConfigHandlers(store *heuristics.Store, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ConfigHandlers {
	return &ConfigHandlers{
		store:       store,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetConfig handles GET /api/v1/config
func (h *ConfigHandlers) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Get())
}

// UpdateConfig handles PUT /api/v1/config with a partial document
func (h *ConfigHandlers) UpdateConfig(c *gin.Context) {
	var partial map[string]any
	if err := c.ShouldBindJSON(&partial); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.store.Update(partial, time.Now())
	if err != nil {
		h.logger.System().Error("Config update failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.logger.System().Info("Config updated by operator")
	c.JSON(http.StatusOK, updated)
}

// LogLevelRequest adjusts one logging channel's level at runtime
type LogLevelRequest struct {
	Channel string `json:"channel"`
	Level   string `json:"level"`
}

// SetLogLevel handles PUT /api/v1/logging
func (h *ConfigHandlers) SetLogLevel(c *gin.Context) {
	var req LogLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(req.Level)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown log level %q", req.Level)})
		return
	}

	if err := h.logger.SetChannelLevel(logging.Channel(req.Channel), level); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.logger.System().Info("Log level adjusted by operator",
		"logChannel", req.Channel, "level", level.String())
	c.JSON(http.StatusOK, gin.H{"channel": req.Channel, "level": level.String()})
}

// ResetConfig handles DELETE /api/v1/config
func (h *ConfigHandlers) ResetConfig(c *gin.Context) {
	reset, err := h.store.Reset(time.Now())
	if err != nil {
		h.logger.System().Error("Config reset failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.System().Info("Config reset to defaults by operator")
	c.JSON(http.StatusOK, reset)
}
