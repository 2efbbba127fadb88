// Package session provides domain entities for visitor session tracking.
// It defines the session lifecycle state, activity signals, quality
// tiering and the multi-factor idle timeout policy.
package session

import (
	"fmt"
	"time"
)

// QualityTier is the coarse engagement classification of a session
type QualityTier string

const (
	QualityHigh   QualityTier = "high"
	QualityMedium QualityTier = "medium"
	QualityLow    QualityTier = "low"
	QualityBounce QualityTier = "bounce"
)

// Session represents one visiting client across page loads
type Session struct {
	SessionID         string      `json:"sessionId"`
	UserID            string      `json:"userId,omitempty"`
	DeviceFingerprint string      `json:"deviceFingerprint"`
	ReferrerSource    string      `json:"referrerSource"`
	ActivityScore     float64     `json:"activityScore"`
	Quality           QualityTier `json:"sessionQuality"`
	IsActive          bool        `json:"isActive"`
	TotalInteractions int         `json:"totalInteractions"`
	PageViews         int         `json:"pageViews"`
	StartedAt         time.Time   `json:"startedAt"`
	LastActivityAt    time.Time   `json:"lastActivityAt"`
	EndedAt           *time.Time  `json:"endedAt,omitempty"`
}

// New creates an active session for an unseen sessionId
func New(sessionID, userID, fingerprint string, now time.Time) *Session {
	return &Session{
		SessionID:         sessionID,
		UserID:            userID,
		DeviceFingerprint: fingerprint,
		Quality:           QualityBounce,
		IsActive:          true,
		StartedAt:         now,
		LastActivityAt:    now,
	}
}

// ApplySignal folds one activity signal into the session state. The score
// decays for the idle gap first, then the signal contribution is added with
// an approach-to-ceiling curve so the score stays within [0, 10].
func (s *Session) ApplySignal(sig Signal, decayPerMinute float64, now time.Time) {
	if !s.IsActive {
		return
	}

	intensity := clampIntensity(sig.Intensity)

	idleMinutes := now.Sub(s.LastActivityAt).Minutes()
	if idleMinutes > 0 {
		s.ActivityScore -= decayPerMinute * idleMinutes
		if s.ActivityScore < 0 {
			s.ActivityScore = 0
		}
	}

	weight := s.signalWeight(sig.Type, intensity)
	s.ActivityScore += (10 - s.ActivityScore) * (weight / 10) * (intensity / 10)
	if s.ActivityScore > 10 {
		s.ActivityScore = 10
	}

	s.TotalInteractions++
	if sig.Type == SignalPageView {
		s.PageViews++
	}
	s.LastActivityAt = now
	s.Quality = QualityFor(s.ActivityScore, s.TotalInteractions)
}

// signalWeight maps a signal type to its engagement weight. Repeated page
// views count less than the landing view; click and scroll scale with
// intensity (scroll depth, click burst).
func (s *Session) signalWeight(t SignalType, intensity float64) float64 {
	switch t {
	case SignalMessage:
		return 10
	case SignalTyping:
		return 9
	case SignalPageView:
		if s.PageViews == 0 {
			return 8
		}
		return 4
	case SignalClick:
		return 7 + 2*(intensity/10)
	case SignalScroll:
		return 3 + 5*(intensity/10)
	case SignalFocus:
		return 6
	case SignalBlur:
		return 2
	default:
		return 0
	}
}

// End transitions the session to its terminal state, freezing the score
func (s *Session) End(now time.Time) {
	if !s.IsActive {
		return
	}
	s.IsActive = false
	ended := now
	s.EndedAt = &ended
}

// QualityFor derives the quality tier from score and interaction count.
// The mapping is monotone: higher score and more interactions never lower
// the tier.
func QualityFor(score float64, interactions int) QualityTier {
	switch {
	case score >= 8 && interactions >= 10:
		return QualityHigh
	case score >= 5 && interactions >= 5:
		return QualityMedium
	case interactions >= 2:
		return QualityLow
	default:
		return QualityBounce
	}
}

// Timeouts is the multi-factor idle timeout policy
type Timeouts struct {
	Base       time.Duration
	Bounce     time.Duration
	Low        time.Duration
	High       time.Duration
	AbandonCap time.Duration
}

// IdleTimeoutFor returns the idle duration after which the session ends
func (t Timeouts) IdleTimeoutFor(s *Session) time.Duration {
	switch {
	case s.Quality == QualityBounce:
		return t.Bounce
	case s.Quality == QualityLow:
		return t.Low
	case s.Quality == QualityHigh && s.TotalInteractions >= 20:
		return t.High
	default:
		return t.Base
	}
}

// ShouldEnd reports whether the session qualifies for termination at now.
// The abandon cap ends any session older than the cap regardless of tier.
func (t Timeouts) ShouldEnd(s *Session, now time.Time) bool {
	if !s.IsActive {
		return false
	}
	if now.Sub(s.StartedAt) >= t.AbandonCap {
		return true
	}
	return now.Sub(s.LastActivityAt) >= t.IdleTimeoutFor(s)
}

// Snapshot is a read-only value copy handed to concurrent readers
type Snapshot struct {
	SessionID         string      `json:"sessionId"`
	UserID            string      `json:"userId,omitempty"`
	DeviceFingerprint string      `json:"deviceFingerprint,omitempty"`
	ReferrerSource    string      `json:"referrerSource,omitempty"`
	IsActive          bool        `json:"isActive"`
	ActivityScore     float64     `json:"activityScore"`
	Quality           QualityTier `json:"sessionQuality"`
	TotalInteractions int         `json:"totalInteractions"`
	PageViews         int         `json:"pageViews"`
	LastActivityAt    time.Time   `json:"lastActivityAt"`
	StartedAt         time.Time   `json:"startedAt"`
	EndedAt           *time.Time  `json:"endedAt,omitempty"`
}

// Snapshot returns a consistent value copy of the session
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:         s.SessionID,
		UserID:            s.UserID,
		DeviceFingerprint: s.DeviceFingerprint,
		ReferrerSource:    s.ReferrerSource,
		IsActive:          s.IsActive,
		ActivityScore:     s.ActivityScore,
		Quality:           s.Quality,
		TotalInteractions: s.TotalInteractions,
		PageViews:         s.PageViews,
		LastActivityAt:    s.LastActivityAt,
		StartedAt:         s.StartedAt,
	}
	if s.EndedAt != nil {
		ended := *s.EndedAt
		snap.EndedAt = &ended
	}
	return snap
}

func clampIntensity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

func (q QualityTier) String() string { return string(q) }

// ParseQuality validates a stored quality tier label
func ParseQuality(s string) (QualityTier, error) {
	switch QualityTier(s) {
	case QualityHigh, QualityMedium, QualityLow, QualityBounce:
		return QualityTier(s), nil
	}
	return "", fmt.Errorf("unknown quality tier %q", s)
}
