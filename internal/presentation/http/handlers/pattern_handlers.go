package handlers

import (
	"net/http"
	"strconv"

	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/persistence/patterns"
	"github.com/gin-gonic/gin"
)

// PatternHandlers contains the feedback-loop inspection endpoints
type PatternHandlers struct {
	store       *patterns.Store
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewPatternHandlers creates pattern handlers with injected dependencies
func NewPatternHandlers(store *patterns.Store, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *PatternHandlers {
	return &PatternHandlers{
		store:       store,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetStats handles GET /api/v1/patterns/stats
func (h *PatternHandlers) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Stats())
}

// FindSimilar handles GET /api/v1/patterns/similar?message=&limit=
func (h *PatternHandlers) FindSimilar(c *gin.Context) {
	message := c.Query("message")
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing message parameter"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
			return
		}
		limit = parsed
	}

	c.JSON(http.StatusOK, gin.H{"patterns": h.store.FindSimilar(message, limit)})
}
