package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/VelourMedia/pulsetrack-go/internal/application/services"
	"github.com/VelourMedia/pulsetrack-go/internal/domain/entities/session"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/caching/stores"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/generation"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/heuristics"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/persistence/analytics"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/persistence/database"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/persistence/patterns"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/ratelimit"
	"github.com/VelourMedia/pulsetrack-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const testJWTSecret = "handler-test-secret"

// testEnv wires the full route tree against in-memory dependencies so
// handler tests exercise the same paths production registers.
type testEnv struct {
	router     *gin.Engine
	sessions   *stores.SessionsStore
	heuristics *heuristics.Store
	patterns   *patterns.Store
}

func newTestEnv(t *testing.T, provider generation.Provider, limiter *ratelimit.Limiter) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("logger init failed: %v", err)
	}
	tracker := performance.NewTracker(performance.DefaultTrackerConfig())

	db, err := database.NewConnection(filepath.Join(t.TempDir(), "test.db"), database.PoolConfig{
		MaxOpenConns: 2, MaxIdleConns: 1, ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		t.Fatalf("db init failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.CreateTables(); err != nil {
		t.Fatalf("schema bootstrap failed: %v", err)
	}

	sessions := stores.NewSessionsStore(100, 0.15)
	heurStore := heuristics.NewStore(filepath.Join(t.TempDir(), "heuristics.json"))
	patternStore := patterns.NewStore(filepath.Join(t.TempDir(), "patterns.json"))

	sessionService := services.NewSessionService(sessions, analytics.NewRepository(db), logger, tracker)
	lifecycleService := services.NewLifecycleService(sessions, session.Timeouts{
		Base:       30 * time.Minute,
		Bounce:     5 * time.Minute,
		Low:        15 * time.Minute,
		High:       time.Hour,
		AbandonCap: 2 * time.Hour,
	}, time.Hour, 5*time.Minute, logger, tracker)
	chatService := services.NewChatService(heurStore, sessions, limiter, provider, patternStore, logger, tracker)

	activityHandlers := NewActivityHandlers(sessionService, logger, tracker)
	lifecycleHandlers := NewLifecycleHandlers(lifecycleService, logger, tracker)
	chatHandlers := NewChatHandlers(chatService, logger, tracker)
	configHandlers := NewConfigHandlers(heurStore, logger, tracker)
	patternHandlers := NewPatternHandlers(patternStore, logger, tracker)
	healthHandlers := NewHealthHandlers(tracker)

	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/health", healthHandlers.GetHealth)
	api.POST("/analytics/activity", activityHandlers.RecordActivity)
	api.GET("/analytics/activity", activityHandlers.GetActivity)
	api.POST("/analytics/lifecycle", lifecycleHandlers.TriggerLifecycle)
	api.GET("/analytics/lifecycle", lifecycleHandlers.GetLifecycleStatus)
	api.POST("/chat", chatHandlers.HandleChat)

	admin := api.Group("")
	admin.Use(middleware.AdminAuthMiddleware(testJWTSecret))
	admin.GET("/config", configHandlers.GetConfig)
	admin.PUT("/config", configHandlers.UpdateConfig)
	admin.DELETE("/config", configHandlers.ResetConfig)
	admin.PUT("/logging", configHandlers.SetLogLevel)
	admin.GET("/patterns/stats", patternHandlers.GetStats)
	admin.GET("/patterns/similar", patternHandlers.FindSimilar)

	return &testEnv{
		router:     r,
		sessions:   sessions,
		heuristics: heurStore,
		patterns:   patternStore,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func adminToken(t *testing.T) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "operator",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return token
}

func adminHeaders(t *testing.T) map[string]string {
	return map[string]string{"Authorization": "Bearer " + adminToken(t)}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, generation.NewScripted(), ratelimit.NewLimiter(100, 0))

	w := env.do(t, http.MethodGet, "/api/v1/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	body := decodeBody(t, w)
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}
