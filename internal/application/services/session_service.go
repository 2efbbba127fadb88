// Package services provides the orchestration layer between HTTP handlers
// and the domain/infrastructure packages.
package services

import (
	"fmt"
	"time"

	"github.com/VelourMedia/pulsetrack-go/internal/domain/entities/session"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/caching/stores"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/persistence/analytics"
)

// ActivityRequest is one inbound client signal
type ActivityRequest struct {
	SessionID    string  `json:"sessionId"`
	UserID       string  `json:"userId,omitempty"`
	ActivityType string  `json:"activityType"`
	Intensity    float64 `json:"intensity"`
	Timestamp    int64   `json:"timestamp,omitempty"`
	Page         string  `json:"page,omitempty"`

	// Filled by the handler from transport metadata
	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
	Referrer  string `json:"-"`
}

// activityTypeSessionEnd is the end-of-session beacon. It terminates the
// session instead of folding in as a signal.
const activityTypeSessionEnd = "session_end"

// maxTimestampSkew bounds how far a client-supplied timestamp may drift
// from server time. Anything outside the window is clamped to its edge.
const maxTimestampSkew = 5 * time.Minute

// SessionService folds activity signals into the live store and mirrors
// the result to the analytics rows
type SessionService struct {
	store       *stores.SessionsStore
	repo        *analytics.Repository
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewSessionService(store *stores.SessionsStore, repo *analytics.Repository, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SessionService {
	return &SessionService{
		store:       store,
		repo:        repo,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// RecordActivity validates and applies one signal. Malformed signals are
// rejected with an error and logged; they never mutate session state.
func (s *SessionService) RecordActivity(req ActivityRequest, now time.Time) (session.Snapshot, error) {
	marker := s.perfTracker.StartOperation("record_activity_signal", req.SessionID)
	defer s.perfTracker.CompleteOperation(marker)

	if req.SessionID == "" {
		err := fmt.Errorf("missing sessionId")
		marker.SetError(err)
		return session.Snapshot{}, err
	}

	ts := clampTimestamp(req.Timestamp, now)

	if req.ActivityType == activityTypeSessionEnd {
		return s.endSession(req.SessionID, ts, marker)
	}

	signalType, err := session.ParseSignalType(req.ActivityType)
	if err != nil {
		s.logger.Analytics().Warn("Dropping malformed activity signal",
			"sessionId", req.SessionID, "activityType", req.ActivityType)
		marker.SetError(err)
		return session.Snapshot{}, err
	}

	sig := session.Signal{
		Type:      signalType,
		Intensity: req.Intensity,
		Timestamp: ts,
		Page:      req.Page,
	}

	fingerprint := session.Fingerprint(req.UserAgent, req.IPAddress)
	referrerSource := session.ReferrerSource(req.Referrer)
	snap := s.store.RecordSignal(req.SessionID, req.UserID, fingerprint, referrerSource, sig, ts)

	s.logger.Analytics().Debug("Activity signal recorded",
		"sessionId", req.SessionID,
		"activityType", req.ActivityType,
		"activityScore", snap.ActivityScore,
		"quality", snap.Quality,
		"totalInteractions", snap.TotalInteractions)

	s.persistAsync(snap, sig)
	return snap, nil
}

// endSession applies the end-of-session beacon. Ending an unknown or
// already-ended session is an error and mutates nothing.
func (s *SessionService) endSession(sessionID string, now time.Time, marker *performance.Marker) (session.Snapshot, error) {
	if !s.store.EndSession(sessionID, now) {
		err := fmt.Errorf("no active session %q to end", sessionID)
		marker.SetError(err)
		return session.Snapshot{}, err
	}

	snap, _ := s.store.Get(sessionID)
	s.logger.Analytics().Info("Session ended by client",
		"sessionId", sessionID,
		"quality", snap.Quality,
		"totalInteractions", snap.TotalInteractions)

	s.persistSessionAsync(snap)
	return snap, nil
}

// clampTimestamp honors the client clock within the skew window and pins
// anything outside it, so a bogus timestamp can never backdate or
// forward-date a session.
func clampTimestamp(clientMillis int64, now time.Time) time.Time {
	if clientMillis <= 0 {
		return now
	}

	ts := time.UnixMilli(clientMillis)
	if earliest := now.Add(-maxTimestampSkew); ts.Before(earliest) {
		return earliest
	}
	if latest := now.Add(maxTimestampSkew); ts.After(latest) {
		return latest
	}
	return ts
}

// persistAsync mirrors the signal to the database without holding up the
// request. Row writes are best-effort; the in-memory store is the source
// of truth.
func (s *SessionService) persistAsync(snap session.Snapshot, sig session.Signal) {
	go func() {
		if err := s.repo.UpsertSession(snap); err != nil {
			s.logger.Database().Error("Failed to persist session row",
				"sessionId", snap.SessionID, "error", err.Error())
			return
		}
		if err := s.repo.RecordSignal(snap.SessionID, sig); err != nil {
			s.logger.Database().Error("Failed to persist signal row",
				"sessionId", snap.SessionID, "error", err.Error())
		}
	}()
}

// persistSessionAsync mirrors a session row without an accompanying
// signal row, used when termination produces no signal
func (s *SessionService) persistSessionAsync(snap session.Snapshot) {
	go func() {
		if err := s.repo.UpsertSession(snap); err != nil {
			s.logger.Database().Error("Failed to persist session row",
				"sessionId", snap.SessionID, "error", err.Error())
		}
	}()
}

// GetSession returns a snapshot of one tracked session
func (s *SessionService) GetSession(sessionID string) (session.Snapshot, bool) {
	return s.store.Get(sessionID)
}

// GetActiveSessions returns all active sessions, most recent first
func (s *SessionService) GetActiveSessions() []session.Snapshot {
	return s.store.GetActiveSessions()
}

// RealTimeStats returns the live aggregate view
func (s *SessionService) RealTimeStats() stores.RealTimeStats {
	return s.store.RealTimeStats()
}
