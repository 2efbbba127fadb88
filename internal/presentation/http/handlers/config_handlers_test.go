package handlers

import (
	"net/http"
	"testing"

	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/generation"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/ratelimit"
)

func TestConfigEndpointsRequireToken(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted(), ratelimit.NewLimiter(100, 0))

	if w := env.do(t, http.MethodGet, "/api/v1/config", nil, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	headers := map[string]string{"Authorization": "Bearer not-a-token"}
	if w := env.do(t, http.MethodGet, "/api/v1/config", nil, headers); w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", w.Code)
	}
}

func TestGetConfigEndpoint(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted(), ratelimit.NewLimiter(100, 0))

	w := env.do(t, http.MethodGet, "/api/v1/config", nil, adminHeaders(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["typoFrequency"] != 0.25 {
		t.Errorf("typoFrequency = %v, want default 0.25", body["typoFrequency"])
	}
}

func TestUpdateConfigEndpoint(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted(), ratelimit.NewLimiter(100, 0))

	w := env.do(t, http.MethodPut, "/api/v1/config", map[string]any{
		"typoFrequency": 0.4,
		"fillers":       map[string]any{"startChance": 0.9},
	}, adminHeaders(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["typoFrequency"] != 0.4 {
		t.Errorf("typoFrequency = %v, want 0.4", body["typoFrequency"])
	}
	fillers, _ := body["fillers"].(map[string]any)
	if fillers["startChance"] != 0.9 {
		t.Errorf("fillers.startChance = %v, want 0.9", fillers["startChance"])
	}
	if fillers["middleChance"] != 0.4 {
		t.Errorf("untouched sibling fillers.middleChance = %v, want 0.4", fillers["middleChance"])
	}

	// The merge is visible to subsequent readers.
	if got := env.heuristics.Get().TypoFrequency; got != 0.4 {
		t.Errorf("store typoFrequency = %v, want 0.4", got)
	}
}

func TestUpdateConfigEndpointRejectsBadJSON(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted(), ratelimit.NewLimiter(100, 0))

	if w := env.do(t, http.MethodPut, "/api/v1/config", nil, adminHeaders(t)); w.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", w.Code)
	}
}

func TestSetLogLevelEndpoint(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted(), ratelimit.NewLimiter(100, 0))

	w := env.do(t, http.MethodPut, "/api/v1/logging", map[string]any{
		"channel": "chat", "level": "debug",
	}, adminHeaders(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["channel"] != "chat" || body["level"] != "DEBUG" {
		t.Errorf("body = %v, want chat at DEBUG", body)
	}

	if w := env.do(t, http.MethodPut, "/api/v1/logging", map[string]any{
		"channel": "chat", "level": "loudest",
	}, adminHeaders(t)); w.Code != http.StatusBadRequest {
		t.Errorf("bad level status = %d, want 400", w.Code)
	}

	if w := env.do(t, http.MethodPut, "/api/v1/logging", map[string]any{
		"channel": "carrier-pigeon", "level": "debug",
	}, adminHeaders(t)); w.Code != http.StatusBadRequest {
		t.Errorf("unknown channel status = %d, want 400", w.Code)
	}

	if w := env.do(t, http.MethodPut, "/api/v1/logging", map[string]any{
		"channel": "chat", "level": "debug",
	}, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}
}

func TestResetConfigEndpoint(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted(), ratelimit.NewLimiter(100, 0))

	if w := env.do(t, http.MethodPut, "/api/v1/config", map[string]any{"typoFrequency": 0.9}, adminHeaders(t)); w.Code != http.StatusOK {
		t.Fatalf("seed update failed: %d", w.Code)
	}

	w := env.do(t, http.MethodDelete, "/api/v1/config", nil, adminHeaders(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["typoFrequency"] != 0.25 {
		t.Errorf("typoFrequency after reset = %v, want 0.25", body["typoFrequency"])
	}
}
