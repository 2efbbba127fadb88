// Package performance provides marker-based performance tracking for
// pipeline operations with in-memory aggregation.
package performance

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

// AlertSeverity classifies a performance alert
type AlertSeverity string

const (
	AlertWarning  AlertSeverity = "warning"
	AlertCritical AlertSeverity = "critical"
)

// Marker tracks a single timed operation
type Marker struct {
	Operation string         `json:"operation"`
	SessionID string         `json:"sessionId"`
	StartTime time.Time      `json:"startTime"`
	EndTime   time.Time      `json:"endTime"`
	Duration  time.Duration  `json:"duration"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Completed bool           `json:"completed"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Complete finalizes the marker and records its duration
func (m *Marker) Complete() {
	if m.Completed {
		return
	}
	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.Completed = true
}

// SetError marks the operation as failed
func (m *Marker) SetError(err error) {
	m.Success = false
	if err != nil {
		m.Error = err.Error()
	}
}

// SetMetadata attaches a key/value pair to the marker
func (m *Marker) SetMetadata(key string, value any) {
	m.Metadata[key] = value
}

// Alert records an operation that crossed a threshold
type Alert struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Severity  AlertSeverity `json:"severity"`
	Operation string        `json:"operation"`
	SessionID string        `json:"sessionId"`
	Actual    time.Duration `json:"actual"`
	Message   string        `json:"message"`
}

// Thresholds defines durations beyond which alerts fire
type Thresholds struct {
	SlowResponse     time.Duration `json:"slowResponse"`
	CriticalResponse time.Duration `json:"criticalResponse"`
	ClassifyOp       time.Duration `json:"classifyOp"`
	GenerationOp     time.Duration `json:"generationOp"`
	DatabaseOp       time.Duration `json:"databaseOp"`
	SweepOp          time.Duration `json:"sweepOp"`
}

// DefaultThresholds returns sensible default alert thresholds
func DefaultThresholds() *Thresholds {
	return &Thresholds{
		SlowResponse:     500 * time.Millisecond,
		CriticalResponse: 5 * time.Second,
		ClassifyOp:       50 * time.Millisecond,
		GenerationOp:     20 * time.Second,
		DatabaseOp:       100 * time.Millisecond,
		SweepOp:          2 * time.Second,
	}
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxMarkers   int  `json:"maxMarkers"`
	MaxAlerts    int  `json:"maxAlerts"`
	EnableAlerts bool `json:"enableAlerts"`
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxMarkers:   10000,
		MaxAlerts:    500,
		EnableAlerts: true,
	}
}

// Tracker manages performance markers and aggregates metrics
type Tracker struct {
	markers    map[string]*Marker
	alerts     []*Alert
	thresholds *Thresholds
	config     *TrackerConfig
	started    time.Time
	mu         sync.RWMutex
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}
	return &Tracker{
		markers:    make(map[string]*Marker),
		thresholds: DefaultThresholds(),
		config:     config,
		started:    time.Now(),
	}
}

// StartOperation creates and tracks a new performance marker
func (t *Tracker) StartOperation(operation, sessionID string) *Marker {
	marker := &Marker{
		Operation: operation,
		SessionID: sessionID,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true,
	}

	markerID := fmt.Sprintf("%s_%s_%d", sessionID, operation, time.Now().UnixNano())

	t.mu.Lock()
	t.markers[markerID] = marker
	t.mu.Unlock()

	return marker
}

// CompleteOperation finalizes a marker and evaluates it against thresholds
func (t *Tracker) CompleteOperation(marker *Marker) {
	if marker == nil || marker.Completed {
		return
	}

	marker.Complete()

	if t.config.EnableAlerts {
		t.checkForAlerts(marker)
	}
}

func (t *Tracker) checkForAlerts(marker *Marker) {
	alerts := t.evaluateThresholds(marker)
	if len(alerts) == 0 {
		return
	}

	t.mu.Lock()
	t.alerts = append(t.alerts, alerts...)
	if len(t.alerts) > t.config.MaxAlerts {
		t.alerts = t.alerts[len(t.alerts)-t.config.MaxAlerts:]
	}
	t.mu.Unlock()
}

func (t *Tracker) evaluateThresholds(marker *Marker) []*Alert {
	var alerts []*Alert

	if marker.Duration > t.thresholds.CriticalResponse {
		alerts = append(alerts, t.createAlert(marker, AlertCritical,
			"Operation exceeded critical response time threshold"))
	} else if marker.Duration > t.thresholds.SlowResponse {
		alerts = append(alerts, t.createAlert(marker, AlertWarning,
			"Operation exceeded slow response time threshold"))
	}

	switch {
	case strings.Contains(marker.Operation, "classify"):
		if marker.Duration > t.thresholds.ClassifyOp {
			alerts = append(alerts, t.createAlert(marker, AlertWarning,
				"Classification exceeded threshold"))
		}
	case strings.Contains(marker.Operation, "generate"):
		if marker.Duration > t.thresholds.GenerationOp {
			alerts = append(alerts, t.createAlert(marker, AlertWarning,
				"Generation call exceeded threshold"))
		}
	case strings.Contains(marker.Operation, "db"):
		if marker.Duration > t.thresholds.DatabaseOp {
			alerts = append(alerts, t.createAlert(marker, AlertWarning,
				"Database operation exceeded threshold"))
		}
	case strings.Contains(marker.Operation, "sweep"):
		if marker.Duration > t.thresholds.SweepOp {
			alerts = append(alerts, t.createAlert(marker, AlertWarning,
				"Lifecycle sweep exceeded threshold"))
		}
	}

	return alerts
}

func (t *Tracker) createAlert(marker *Marker, severity AlertSeverity, message string) *Alert {
	return &Alert{
		ID:        fmt.Sprintf("alert_%d", time.Now().UnixNano()),
		Timestamp: time.Now(),
		Severity:  severity,
		Operation: marker.Operation,
		SessionID: marker.SessionID,
		Actual:    marker.Duration,
		Message:   message,
	}
}

// GetRecentMetrics returns markers completed within the specified duration
func (t *Tracker) GetRecentMetrics(within time.Duration) []Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cutoff := time.Now().Add(-within)
	var metrics []Marker
	for _, marker := range t.markers {
		if marker.Completed && marker.EndTime.After(cutoff) {
			metrics = append(metrics, *marker)
		}
	}
	return metrics
}

// GetAlerts returns the currently retained alerts
func (t *Tracker) GetAlerts() []*Alert {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Alert, len(t.alerts))
	copy(out, t.alerts)
	return out
}

// Cleanup removes old completed markers to bound memory
func (t *Tracker) Cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().Add(-time.Hour)
	for id, marker := range t.markers {
		if marker.Completed && marker.EndTime.Before(cutoff) {
			delete(t.markers, id)
		}
	}

	if len(t.markers) > t.config.MaxMarkers {
		count := 0
		for id := range t.markers {
			if count > t.config.MaxMarkers/2 {
				delete(t.markers, id)
			}
			count++
		}
	}
}

// GetOverallStats returns aggregate tracker statistics
func (t *Tracker) GetOverallStats() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	activeCount := 0
	completedCount := 0
	for _, marker := range t.markers {
		if marker.Completed {
			completedCount++
		} else {
			activeCount++
		}
	}

	return map[string]any{
		"trackerUptime":       time.Since(t.started).String(),
		"totalMarkers":        len(t.markers),
		"activeOperations":    activeCount,
		"completedOperations": completedCount,
		"totalAlerts":         len(t.alerts),
		"memoryUsageMB":       memStats.Alloc / (1024 * 1024),
		"systemMemoryMB":      memStats.Sys / (1024 * 1024),
	}
}
