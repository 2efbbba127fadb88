package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/VelourMedia/pulsetrack-go/internal/domain/scoring"
	"github.com/VelourMedia/pulsetrack-go/internal/domain/tuning"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/generation"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/ratelimit"
)

func seedPattern(t *testing.T, env *testEnv, userMessage, response string, score float64) {
	t.Helper()

	saved, err := env.patterns.Save(userMessage, response, score, scoring.Context{
		UserType: "LONELY_SINGLE",
	}, tuning.Defaults(), time.Now())
	if err != nil {
		t.Fatalf("seed pattern: %v", err)
	}
	if !saved {
		t.Fatalf("seed pattern %q rejected", userMessage)
	}
}

func TestPatternEndpointsRequireToken(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted(), ratelimit.NewLimiter(100, 0))

	if w := env.do(t, http.MethodGet, "/api/v1/patterns/stats", nil, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("stats without token status = %d, want 401", w.Code)
	}
}

func TestPatternStatsEndpoint(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted(), ratelimit.NewLimiter(100, 0))
	seedPattern(t, env, "hey how are you doing", "pretty good, you?", 9.0)
	seedPattern(t, env, "what are you up to tonight", "thinking about you honestly", 8.6)

	w := env.do(t, http.MethodGet, "/api/v1/patterns/stats", nil, adminHeaders(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["totalPatterns"] != float64(2) {
		t.Errorf("totalPatterns = %v, want 2", body["totalPatterns"])
	}
	if body["topScore"] != 9.0 {
		t.Errorf("topScore = %v, want 9.0", body["topScore"])
	}
}

func TestFindSimilarEndpoint(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted(), ratelimit.NewLimiter(100, 0))
	seedPattern(t, env, "hey how are you doing", "pretty good, you?", 9.0)

	w := env.do(t, http.MethodGet, "/api/v1/patterns/similar?message=hey+how+are+you+doing", nil, adminHeaders(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	found, ok := body["patterns"].([]any)
	if !ok || len(found) != 1 {
		t.Errorf("patterns = %v, want 1 match", body["patterns"])
	}
}

func TestFindSimilarEndpointRequiresMessage(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted(), ratelimit.NewLimiter(100, 0))

	if w := env.do(t, http.MethodGet, "/api/v1/patterns/similar", nil, adminHeaders(t)); w.Code != http.StatusBadRequest {
		t.Errorf("missing message status = %d, want 400", w.Code)
	}
}

func TestFindSimilarEndpointRejectsBadLimit(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted(), ratelimit.NewLimiter(100, 0))

	if w := env.do(t, http.MethodGet, "/api/v1/patterns/similar?message=hey&limit=abc", nil, adminHeaders(t)); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", w.Code)
	}
}
