package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/VelourMedia/pulsetrack-go/internal/domain/entities/session"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/caching/stores"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/performance"
)

// OperationResult reports one lifecycle operation independently. A failed
// sweep never aborts the dedup run, and vice versa.
type OperationResult struct {
	Status   string `json:"status"`
	Affected int    `json:"affected"`
	Error    string `json:"error,omitempty"`
}

// LifecycleResult aggregates one lifecycle run
type LifecycleResult struct {
	Trigger   string          `json:"trigger"`
	Timestamp time.Time       `json:"timestamp"`
	Sweep     OperationResult `json:"sweep"`
	Dedup     OperationResult `json:"deduplication"`
}

// ActiveSessionsSummary is the status-query view of live sessions
type ActiveSessionsSummary struct {
	Total                int                         `json:"total"`
	ByQuality            map[session.QualityTier]int `json:"byQuality"`
	AverageActivityScore float64                     `json:"averageActivityScore"`
}

// LifecycleStatus is returned by the status query
type LifecycleStatus struct {
	ActiveSessions       ActiveSessionsSummary `json:"activeSessions"`
	RealtimeStats        stores.RealTimeStats  `json:"realtimeStats"`
	NextLifecycleCheckAt time.Time             `json:"nextLifecycleCheckAt"`
}

// LifecycleService runs the periodic sweep and deduplication
type LifecycleService struct {
	store       *stores.SessionsStore
	timeouts    session.Timeouts
	dedupWindow time.Duration
	interval    time.Duration
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker

	mu          sync.Mutex
	nextCheckAt time.Time
}

func NewLifecycleService(store *stores.SessionsStore, timeouts session.Timeouts, dedupWindow, interval time.Duration, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *LifecycleService {
	return &LifecycleService{
		store:       store,
		timeouts:    timeouts,
		dedupWindow: dedupWindow,
		interval:    interval,
		logger:      logger,
		perfTracker: perfTracker,
		nextCheckAt: time.Now().Add(interval),
	}
}

// Run executes sweep and dedup as independent operations. Each reports
// fulfilled or rejected on its own; the caller always gets a full result.
func (s *LifecycleService) Run(trigger string, now time.Time) LifecycleResult {
	marker := s.perfTracker.StartOperation("lifecycle_sweep", "system")
	defer s.perfTracker.CompleteOperation(marker)

	result := LifecycleResult{Trigger: trigger, Timestamp: now}
	result.Sweep = s.runOperation("sweep", func() (int, error) {
		return s.store.SweepLifecycle(s.timeouts, now), nil
	})
	result.Dedup = s.runOperation("deduplication", func() (int, error) {
		return s.store.Deduplicate(s.dedupWindow, now), nil
	})

	s.logger.Analytics().Info("Lifecycle run complete",
		"trigger", trigger,
		"swept", result.Sweep.Affected,
		"merged", result.Dedup.Affected)

	marker.SetMetadata("swept", result.Sweep.Affected)
	marker.SetMetadata("merged", result.Dedup.Affected)

	// Prune expired performance markers on the same cadence so the
	// tracker never grows without bound.
	s.perfTracker.Cleanup()

	return result
}

func (s *LifecycleService) runOperation(name string, op func() (int, error)) OperationResult {
	affected, err := s.safeRun(name, op)
	if err != nil {
		s.logger.Analytics().Error("Lifecycle operation failed", "operation", name, "error", err.Error())
		return OperationResult{Status: "rejected", Error: err.Error()}
	}
	return OperationResult{Status: "fulfilled", Affected: affected}
}

// safeRun converts a panicking operation into a rejected result so one bad
// run never takes the process down
func (s *LifecycleService) safeRun(name string, op func() (int, error)) (affected int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", name, r)
		}
	}()
	return op()
}

// Status answers the scheduler's status query
func (s *LifecycleService) Status() LifecycleStatus {
	stats := s.store.RealTimeStats()

	summary := ActiveSessionsSummary{
		Total:                stats.Active,
		ByQuality:            map[session.QualityTier]int{},
		AverageActivityScore: stats.AverageScore,
	}
	for _, snap := range s.store.GetActiveSessions() {
		summary.ByQuality[snap.Quality]++
	}

	s.mu.Lock()
	next := s.nextCheckAt
	s.mu.Unlock()

	return LifecycleStatus{
		ActiveSessions:       summary,
		RealtimeStats:        stats,
		NextLifecycleCheckAt: next,
	}
}

// StartWorker runs the lifecycle on a ticker until ctx is cancelled
func (s *LifecycleService) StartWorker(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.System().Info("Lifecycle worker started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.System().Info("Lifecycle worker stopping")
			return
		case <-ticker.C:
			s.Run("scheduled", time.Now())
			s.mu.Lock()
			s.nextCheckAt = time.Now().Add(s.interval)
			s.mu.Unlock()
		}
	}
}
