// Package stores provides the in-memory session store. It is the
// authoritative live state for session tracking; persistence is a
// write-behind concern handled elsewhere.
package stores

import (
	"sort"
	"sync"
	"time"

	"github.com/VelourMedia/pulsetrack-go/internal/domain/entities/session"
)

// RealTimeStats is the aggregate view over live sessions
type RealTimeStats struct {
	Total          int                         `json:"total"`
	Active         int                         `json:"active"`
	AverageScore   float64                     `json:"averageActivityScore"`
	ByQuality      map[session.QualityTier]int `json:"byQuality"`
	EngagementRate float64                     `json:"engagementRate"`
	BounceRate     float64                     `json:"bounceRate"`
}

type entry struct {
	mu sync.Mutex
	s  *session.Session
}

// SessionsStore holds live sessions behind a two-level lock: a global
// RWMutex guards the map, a per-entry mutex guards each session. Sweeps
// and dedup lock one record at a time, never the whole store.
type SessionsStore struct {
	mu          sync.RWMutex
	entries     map[string]*entry
	maxSessions int
	decayPerMin float64
}

// NewSessionsStore creates an empty store
func NewSessionsStore(maxSessions int, decayPerMinute float64) *SessionsStore {
	return &SessionsStore{
		entries:     make(map[string]*entry),
		maxSessions: maxSessions,
		decayPerMin: decayPerMinute,
	}
}

// RecordSignal looks up or creates the session and folds the signal in.
// Serializable per session: concurrent signals for the same sessionId
// queue on the entry mutex and never lose updates.
func (st *SessionsStore) RecordSignal(sessionID, userID, fingerprint, referrerSource string, sig session.Signal, now time.Time) session.Snapshot {
	e := st.getOrCreate(sessionID, userID, fingerprint, referrerSource, now)

	e.mu.Lock()
	defer e.mu.Unlock()

	if userID != "" && e.s.UserID == "" {
		e.s.UserID = userID
	}
	e.s.ApplySignal(sig, st.decayPerMin, now)
	return e.s.Snapshot()
}

func (st *SessionsStore) getOrCreate(sessionID, userID, fingerprint, referrerSource string, now time.Time) *entry {
	st.mu.RLock()
	e, ok := st.entries[sessionID]
	st.mu.RUnlock()
	if ok {
		return e
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if e, ok := st.entries[sessionID]; ok {
		return e
	}

	if len(st.entries) >= st.maxSessions {
		st.evictOldestEndedLocked()
	}

	s := session.New(sessionID, userID, fingerprint, now)
	s.ReferrerSource = referrerSource
	e = &entry{s: s}
	st.entries[sessionID] = e
	return e
}

// evictOldestEndedLocked drops the least recently active ended session.
// Caller holds the write lock.
func (st *SessionsStore) evictOldestEndedLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range st.entries {
		e.mu.Lock()
		if !e.s.IsActive && (oldestID == "" || e.s.LastActivityAt.Before(oldest)) {
			oldestID = id
			oldest = e.s.LastActivityAt
		}
		e.mu.Unlock()
	}
	if oldestID != "" {
		delete(st.entries, oldestID)
	}
}

// Get returns a snapshot of one session
func (st *SessionsStore) Get(sessionID string) (session.Snapshot, bool) {
	st.mu.RLock()
	e, ok := st.entries[sessionID]
	st.mu.RUnlock()
	if !ok {
		return session.Snapshot{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.Snapshot(), true
}

// EndSession explicitly terminates a session, for end-of-session signals
func (st *SessionsStore) EndSession(sessionID string, now time.Time) bool {
	st.mu.RLock()
	e, ok := st.entries[sessionID]
	st.mu.RUnlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.s.IsActive {
		return false
	}
	e.s.End(now)
	return true
}

// GetActiveSessions returns snapshots of all active sessions, most
// recently active first
func (st *SessionsStore) GetActiveSessions() []session.Snapshot {
	snapshots := make([]session.Snapshot, 0)
	for _, e := range st.allEntries() {
		e.mu.Lock()
		if e.s.IsActive {
			snapshots = append(snapshots, e.s.Snapshot())
		}
		e.mu.Unlock()
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].LastActivityAt.After(snapshots[j].LastActivityAt)
	})
	return snapshots
}

// SweepLifecycle ends every session idle beyond its multi-factor timeout.
// Idempotent: already-ended sessions are skipped, so an immediate second
// sweep changes nothing.
func (st *SessionsStore) SweepLifecycle(timeouts session.Timeouts, now time.Time) int {
	ended := 0
	for _, e := range st.allEntries() {
		e.mu.Lock()
		if timeouts.ShouldEnd(e.s, now) {
			e.s.End(now)
			ended++
		}
		e.mu.Unlock()
	}
	return ended
}

// Deduplicate merges active sessions sharing a device fingerprint within
// the window into the most recently active one. Interaction counts are
// absorbed by the survivor so the store-wide sum never decreases.
func (st *SessionsStore) Deduplicate(window time.Duration, now time.Time) int {
	type candidate struct {
		id   string
		last time.Time
	}

	groups := make(map[string][]candidate)
	for id, e := range st.entryMap() {
		e.mu.Lock()
		if e.s.IsActive && e.s.DeviceFingerprint != "" && now.Sub(e.s.LastActivityAt) <= window {
			groups[e.s.DeviceFingerprint] = append(groups[e.s.DeviceFingerprint], candidate{id, e.s.LastActivityAt})
		}
		e.mu.Unlock()
	}

	merged := 0
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}

		sort.Slice(group, func(i, j int) bool { return group[i].last.After(group[j].last) })
		survivorID := group[0].id

		for _, dup := range group[1:] {
			if st.mergeInto(survivorID, dup.id, now) {
				merged++
			}
		}
	}
	return merged
}

// mergeInto absorbs dup into survivor. Entries are locked in sessionID
// order so two concurrent merges can never deadlock.
func (st *SessionsStore) mergeInto(survivorID, dupID string, now time.Time) bool {
	st.mu.RLock()
	survivor, okA := st.entries[survivorID]
	dup, okB := st.entries[dupID]
	st.mu.RUnlock()
	if !okA || !okB || survivorID == dupID {
		return false
	}

	first, second := survivor, dup
	if survivorID > dupID {
		first, second = dup, survivor
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if !survivor.s.IsActive || !dup.s.IsActive {
		return false
	}

	// Transfer counts so the store-wide interaction sum is unchanged.
	survivor.s.TotalInteractions += dup.s.TotalInteractions
	survivor.s.PageViews += dup.s.PageViews
	dup.s.TotalInteractions = 0
	dup.s.PageViews = 0
	if dup.s.StartedAt.Before(survivor.s.StartedAt) {
		survivor.s.StartedAt = dup.s.StartedAt
	}
	survivor.s.Quality = session.QualityFor(survivor.s.ActivityScore, survivor.s.TotalInteractions)
	dup.s.End(now)
	return true
}

// RealTimeStats aggregates the current store contents
func (st *SessionsStore) RealTimeStats() RealTimeStats {
	stats := RealTimeStats{ByQuality: map[session.QualityTier]int{}}

	scoreSum := 0.0
	for _, e := range st.allEntries() {
		e.mu.Lock()
		stats.Total++
		stats.ByQuality[e.s.Quality]++
		if e.s.IsActive {
			stats.Active++
			scoreSum += e.s.ActivityScore
		}
		e.mu.Unlock()
	}

	if stats.Active > 0 {
		stats.AverageScore = scoreSum / float64(stats.Active)
	}
	if stats.Total > 0 {
		stats.EngagementRate = float64(stats.ByQuality[session.QualityHigh]+stats.ByQuality[session.QualityMedium]) / float64(stats.Total) * 100
		stats.BounceRate = float64(stats.ByQuality[session.QualityBounce]) / float64(stats.Total) * 100
	}
	return stats
}

// TotalInteractionsSum sums interactions across all sessions, live and
// ended. Used by invariant checks around deduplication.
func (st *SessionsStore) TotalInteractionsSum() int {
	sum := 0
	for _, e := range st.allEntries() {
		e.mu.Lock()
		sum += e.s.TotalInteractions
		e.mu.Unlock()
	}
	return sum
}

// PurgeEnded removes ended sessions older than the retention window
func (st *SessionsStore) PurgeEnded(retention time.Duration, now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, e := range st.entries {
		e.mu.Lock()
		expired := !e.s.IsActive && e.s.EndedAt != nil && now.Sub(*e.s.EndedAt) > retention
		e.mu.Unlock()
		if expired {
			delete(st.entries, id)
			removed++
		}
	}
	return removed
}

func (st *SessionsStore) allEntries() []*entry {
	st.mu.RLock()
	defer st.mu.RUnlock()

	entries := make([]*entry, 0, len(st.entries))
	for _, e := range st.entries {
		entries = append(entries, e)
	}
	return entries
}

func (st *SessionsStore) entryMap() map[string]*entry {
	st.mu.RLock()
	defer st.mu.RUnlock()

	m := make(map[string]*entry, len(st.entries))
	for id, e := range st.entries {
		m[id] = e
	}
	return m
}
