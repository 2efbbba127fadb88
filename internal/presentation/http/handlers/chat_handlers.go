package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/VelourMedia/pulsetrack-go/internal/application/services"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// ChatHandlers contains the message pipeline endpoint
type ChatHandlers struct {
	chatService *services.ChatService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewChatHandlers creates chat handlers with injected dependencies
func NewChatHandlers(chatService *services.ChatService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ChatHandlers {
	return &ChatHandlers{
		chatService: chatService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// HandleChat handles POST /api/v1/chat
func (h *ChatHandlers) HandleChat(c *gin.Context) {
	var req services.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp, err := h.chatService.Handle(c.Request.Context(), req, time.Now())
	if err != nil {
		var limited *services.RateLimitedError
		if errors.As(err, &limited) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limited",
				"waitSeconds": limited.WaitSeconds,
			})
			return
		}

		h.logger.Chat().Error("Chat pipeline failed", "sessionId", req.SessionID, "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
