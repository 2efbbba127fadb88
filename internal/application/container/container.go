// Package container provides dependency injection for all singleton services
package container

import (
	"fmt"
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
	"github.com/VelourMedia/pulsetrack-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Infrastructure
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
	DB          *database.DB
	Sessions    *stores.SessionsStore
	Heuristics  *heuristics.Store
	Patterns    *patterns.Store
	RateLimiter *ratelimit.Limiter
	Provider    generation.Provider

	// Application services
	SessionService   *services.SessionService
	LifecycleService *services.LifecycleService
	ChatService      *services.ChatService
}

// NewContainer creates and wires all singleton services
func NewContainer() (*Container, error) {
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig(config.LogDirectory))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())

	db, err := database.NewConnectionWithLogger(config.DatabasePath, database.PoolConfig{
		MaxOpenConns:    config.DBMaxOpenConns,
		MaxIdleConns:    config.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.CreateTables(); err != nil {
		return nil, fmt.Errorf("failed to bootstrap schema: %w", err)
	}

	sessions := stores.NewSessionsStore(config.MaxTrackedSessions, config.ScoreDecayPerMinute)
	heuristicsStore := heuristics.NewStore(config.HeuristicsPath)
	patternStore := patterns.NewStore(config.PatternsPath)
	limiter := ratelimit.NewLimiter(config.GenerationPerMinute, config.GenerationMinGap)
	provider := generation.NewClient(config.GenerationURL, config.GenerationModel, config.GenerationTimeout)
	repo := analytics.NewRepository(db)

	timeouts := session.Timeouts{
		Base:       config.SessionBaseTimeout,
		Bounce:     config.SessionBounceTimeout,
		Low:        config.SessionLowTimeout,
		High:       config.SessionHighTimeout,
		AbandonCap: config.SessionAbandonCap,
	}

	return &Container{
		Logger:      logger,
		PerfTracker: perfTracker,
		DB:          db,
		Sessions:    sessions,
		Heuristics:  heuristicsStore,
		Patterns:    patternStore,
		RateLimiter: limiter,
		Provider:    provider,

		SessionService:   services.NewSessionService(sessions, repo, logger, perfTracker),
		LifecycleService: services.NewLifecycleService(sessions, timeouts, config.DedupWindow, config.LifecycleInterval, logger, perfTracker),
		ChatService:      services.NewChatService(heuristicsStore, sessions, limiter, provider, patternStore, logger, perfTracker),
	}, nil
}

// Close releases infrastructure resources
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
