package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/VelourMedia/pulsetrack-go/internal/domain/entities/session"
	"github.com/VelourMedia/pulsetrack-go/internal/domain/humanize"
	"github.com/VelourMedia/pulsetrack-go/internal/domain/scoring"
	"github.com/VelourMedia/pulsetrack-go/internal/domain/strategy"
	"github.com/VelourMedia/pulsetrack-go/internal/domain/undertone"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/caching/stores"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/generation"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/heuristics"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/persistence/patterns"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/ratelimit"
)

// ChatRequest is one inbound message from the chat surface
type ChatRequest struct {
	SessionID           string               `json:"sessionId"`
	UserID              string               `json:"userId,omitempty"`
	Message             string               `json:"message"`
	ConversationHistory []generation.Message `json:"conversationHistory,omitempty"`
	DebugMode           bool                 `json:"debugMode,omitempty"`
	ResponseTimeMs      int                  `json:"responseTimeMs,omitempty"`
	TypingStops         int                  `json:"typingStops,omitempty"`
}

// UndertoneAnalysis is the debug view of the classification
type UndertoneAnalysis struct {
	UserType         string   `json:"userType"`
	Confidence       float64  `json:"confidence"`
	Indicators       []string `json:"indicators"`
	HiddenMeaning    string   `json:"hiddenMeaning,omitempty"`
	RevenuePotential string   `json:"revenuePotential,omitempty"`
}

// ChatResponse is the pipeline output
type ChatResponse struct {
	Message           string             `json:"message"`
	FollowUp          string             `json:"followUp,omitempty"`
	UndertoneAnalysis *UndertoneAnalysis `json:"undertoneAnalysis,omitempty"`
}

// RateLimitedError tells the caller how long to back off before retrying
type RateLimitedError struct {
	WaitSeconds float64
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("generation rate limited, retry in %.0fs", e.WaitSeconds)
}

// ChatService runs the full message pipeline: classify, strategize,
// generate, humanize, score, learn.
type ChatService struct {
	config      *heuristics.Store
	sessions    *stores.SessionsStore
	limiter     *ratelimit.Limiter
	provider    generation.Provider
	patterns    *patterns.Store
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker

	// seedFunc feeds the per-request rng; tests override it
	seedFunc func() int64
}

func NewChatService(config *heuristics.Store, sessions *stores.SessionsStore, limiter *ratelimit.Limiter, provider generation.Provider, patternStore *patterns.Store, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ChatService {
	return &ChatService{
		config:      config,
		sessions:    sessions,
		limiter:     limiter,
		provider:    provider,
		patterns:    patternStore,
		logger:      logger,
		perfTracker: perfTracker,
		seedFunc:    func() int64 { return time.Now().UnixNano() },
	}
}

// Handle processes one message. No session or learning state is mutated
// until the upstream call has succeeded, so a cancelled request leaves
// everything untouched.
func (s *ChatService) Handle(ctx context.Context, req ChatRequest, now time.Time) (ChatResponse, error) {
	marker := s.perfTracker.StartOperation("chat_classify_generate", req.SessionID)
	defer s.perfTracker.CompleteOperation(marker)

	message := strings.TrimSpace(req.Message)
	if message == "" {
		err := fmt.Errorf("empty message")
		marker.SetError(err)
		return ChatResponse{}, err
	}

	cfg := s.config.Get()
	rng := rand.New(rand.NewSource(s.seedFunc()))

	classification := undertone.Classify(undertone.Context{
		Message:               message,
		PreviousAssistantTurn: lastAssistantTurn(req.ConversationHistory),
		MessageNumber:         userTurnCount(req.ConversationHistory) + 1,
		ResponseTimeMs:        req.ResponseTimeMs,
		TypingStops:           req.TypingStops,
		HourOfDay:             now.Hour(),
		SessionMinutes:        s.sessionMinutes(req.SessionID, now),
	}, cfg)

	s.logger.Chat().Info("Message classified",
		"sessionId", req.SessionID,
		"userType", string(classification.UserType),
		"confidence", classification.Confidence,
		"indicators", len(classification.Indicators))

	strat := strategy.For(classification.UserType, message, userTurnCount(req.ConversationHistory)+1, rng)

	if allowed, wait := s.limiter.TryAcquire(); !allowed {
		marker.SetMetadata("rateLimited", true)
		return ChatResponse{}, &RateLimitedError{WaitSeconds: wait}
	}

	turns := append(append([]generation.Message{}, req.ConversationHistory...),
		generation.Message{Role: "user", Content: message})

	draft, genErr := s.provider.Generate(ctx, turns, strat.Personality)
	if ctx.Err() != nil {
		marker.SetError(ctx.Err())
		return ChatResponse{}, ctx.Err()
	}
	s.limiter.RecordUse()

	s.recordMessageSignal(req, now)

	if genErr != nil {
		s.logger.Chat().Error("Generation failed, using fallback",
			"sessionId", req.SessionID, "error", genErr.Error())
		marker.SetMetadata("fallback", true)
		return s.respond(strat.Fallback, "", classification, req.DebugMode), nil
	}

	mood := humanize.DetectMood(message, now.Hour())
	draft = strategy.MatchEnergy(message, draft)
	humanized := humanize.Humanize(draft, mood, message, cfg, rng)

	scoringCtx := scoring.Context{
		UserType:  string(classification.UserType),
		IsSexual:  classification.UserType == undertone.HornyAddict,
		IsNervous: strings.Contains(message, "😅"),
	}
	breakdown := scoring.Score(humanized.Primary, message, scoringCtx)
	marker.SetMetadata("responseScore", breakdown.Overall)

	if saved, err := s.patterns.Save(message, humanized.Primary, breakdown.Overall, scoringCtx, cfg, now); err != nil {
		s.logger.Chat().Error("Failed to persist pattern", "error", err.Error())
	} else if saved {
		s.logger.Chat().Info("High-scoring pattern saved",
			"sessionId", req.SessionID, "score", breakdown.Overall)
	}

	return s.respond(humanized.Primary, humanized.FollowUp, classification, req.DebugMode), nil
}

func (s *ChatService) respond(message, followUp string, classification undertone.Result, debug bool) ChatResponse {
	resp := ChatResponse{Message: message, FollowUp: followUp}
	if debug {
		resp.UndertoneAnalysis = &UndertoneAnalysis{
			UserType:         string(classification.UserType),
			Confidence:       classification.Confidence,
			Indicators:       classification.Indicators,
			HiddenMeaning:    classification.HiddenMeaning,
			RevenuePotential: classification.RevenuePotential,
		}
	}
	return resp
}

// recordMessageSignal counts the message toward session engagement
func (s *ChatService) recordMessageSignal(req ChatRequest, now time.Time) {
	if req.SessionID == "" {
		return
	}
	s.sessions.RecordSignal(req.SessionID, req.UserID, "", "direct", session.Signal{
		Type:      session.SignalMessage,
		Intensity: 8,
		Timestamp: now,
	}, now)
}

func (s *ChatService) sessionMinutes(sessionID string, now time.Time) float64 {
	if sessionID == "" {
		return 0
	}
	snap, ok := s.sessions.Get(sessionID)
	if !ok {
		return 0
	}
	return now.Sub(snap.StartedAt).Minutes()
}

func lastAssistantTurn(history []generation.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "assistant" {
			return history[i].Content
		}
	}
	return ""
}

func userTurnCount(history []generation.Message) int {
	count := 0
	for _, m := range history {
		if m.Role == "user" {
			count++
		}
	}
	return count
}
