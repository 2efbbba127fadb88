package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/generation"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/ratelimit"
)

func TestChatEndpoint(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted("I really want to see you tonight"), ratelimit.NewLimiter(100, 0))

	w := env.do(t, http.MethodPost, "/api/v1/chat", map[string]any{
		"sessionId": "s1",
		"message":   "hey whats up",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	msg, _ := body["message"].(string)
	if msg == "" {
		t.Error("empty chat reply")
	}
	if _, ok := body["undertoneAnalysis"]; ok {
		t.Error("analysis exposed without debug mode")
	}

	// The inbound message counted toward session engagement.
	if snap, ok := env.sessions.Get("s1"); !ok || snap.TotalInteractions != 1 {
		t.Error("chat message signal not recorded")
	}
}

func TestChatEndpointDebugMode(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted("sounds fun"), ratelimit.NewLimiter(100, 0))

	w := env.do(t, http.MethodPost, "/api/v1/chat", map[string]any{
		"sessionId": "s1",
		"message":   "hey whats up",
		"debugMode": true,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["undertoneAnalysis"] == nil {
		t.Error("debug mode returned no analysis")
	}
}

func TestChatEndpointRejectsEmptyMessage(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted("hi"), ratelimit.NewLimiter(100, 0))

	w := env.do(t, http.MethodPost, "/api/v1/chat", map[string]any{
		"sessionId": "s1",
		"message":   "   ",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestChatEndpointRateLimited(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted("a", "b"), ratelimit.NewLimiter(1, time.Minute))

	first := env.do(t, http.MethodPost, "/api/v1/chat", map[string]any{
		"sessionId": "s1", "message": "hey",
	}, nil)
	if first.Code != http.StatusOK {
		t.Fatalf("first message status = %d, want 200: %s", first.Code, first.Body.String())
	}

	second := env.do(t, http.MethodPost, "/api/v1/chat", map[string]any{
		"sessionId": "s1", "message": "hey again",
	}, nil)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second message status = %d, want 429: %s", second.Code, second.Body.String())
	}

	body := decodeBody(t, second)
	wait, _ := body["waitSeconds"].(float64)
	if wait <= 0 {
		t.Errorf("waitSeconds = %v, want positive", body["waitSeconds"])
	}
}
