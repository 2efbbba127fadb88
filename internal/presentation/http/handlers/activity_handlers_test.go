package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/generation"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/ratelimit"
)

func TestRecordActivityEndpoint(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted(), ratelimit.NewLimiter(100, 0))

	w := env.do(t, http.MethodPost, "/api/v1/analytics/activity", map[string]any{
		"sessionId":    "s1",
		"activityType": "page_view",
		"intensity":    5,
	}, map[string]string{
		"User-Agent": "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0",
		"Referer":    "https://www.google.com/search?q=x",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["sessionId"] != "s1" {
		t.Errorf("sessionId = %v, want s1", body["sessionId"])
	}
	if body["isActive"] != true {
		t.Error("new session not reported active")
	}
	if body["totalInteractions"] != float64(1) {
		t.Errorf("totalInteractions = %v, want 1", body["totalInteractions"])
	}
}

func TestRecordActivityEndpointRejectsBadJSON(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted(), ratelimit.NewLimiter(100, 0))

	req := env.do(t, http.MethodPost, "/api/v1/analytics/activity", nil, nil)
	if req.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", req.Code)
	}
}

func TestRecordActivityEndpointRejectsUnknownType(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted(), ratelimit.NewLimiter(100, 0))

	w := env.do(t, http.MethodPost, "/api/v1/analytics/activity", map[string]any{
		"sessionId":    "s1",
		"activityType": "teleport",
		"intensity":    5,
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "error") {
		t.Errorf("error body missing: %s", w.Body.String())
	}

	if _, ok := env.sessions.Get("s1"); ok {
		t.Error("rejected signal created a session")
	}
}

func TestRecordActivityEndpointSessionEnd(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted(), ratelimit.NewLimiter(100, 0))

	if w := env.do(t, http.MethodPost, "/api/v1/analytics/activity", map[string]any{
		"sessionId":    "s1",
		"activityType": "click",
		"intensity":    5,
	}, nil); w.Code != http.StatusOK {
		t.Fatalf("seed status = %d, want 200", w.Code)
	}

	w := env.do(t, http.MethodPost, "/api/v1/analytics/activity", map[string]any{
		"sessionId":    "s1",
		"activityType": "session_end",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["isActive"] != false {
		t.Errorf("isActive = %v, want false", body["isActive"])
	}

	// The beacon is not idempotent at the API level.
	if w := env.do(t, http.MethodPost, "/api/v1/analytics/activity", map[string]any{
		"sessionId":    "s1",
		"activityType": "session_end",
	}, nil); w.Code != http.StatusBadRequest {
		t.Errorf("repeat beacon status = %d, want 400", w.Code)
	}
}

func TestGetActivityEndpoint(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted(), ratelimit.NewLimiter(100, 0))

	for _, id := range []string{"a", "b"} {
		w := env.do(t, http.MethodPost, "/api/v1/analytics/activity", map[string]any{
			"sessionId":    id,
			"activityType": "click",
			"intensity":    6,
		}, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("seed %s failed: %d", id, w.Code)
		}
	}

	w := env.do(t, http.MethodGet, "/api/v1/analytics/activity", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	body := decodeBody(t, w)
	active, ok := body["activeSessions"].([]any)
	if !ok || len(active) != 2 {
		t.Errorf("activeSessions = %v, want 2 entries", body["activeSessions"])
	}
	if _, ok := body["realtimeStats"]; !ok {
		t.Error("realtimeStats missing from response")
	}
}
