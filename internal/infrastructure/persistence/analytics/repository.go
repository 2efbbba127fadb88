// Package analytics persists session and signal rows as a write-behind
// mirror of the in-memory store.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/VelourMedia/pulsetrack-go/internal/domain/entities/session"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/persistence/database"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/security"
)

// Database semaphore to limit concurrent database operations
var dbSemaphore = make(chan struct{}, 100)

const queryTimeout = 5 * time.Second

// Repository writes session and signal rows
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// UpsertSession writes the current session snapshot. The in-memory store
// remains authoritative; rows exist for offline analysis only.
func (r *Repository) UpsertSession(snap session.Snapshot) error {
	dbSemaphore <- struct{}{}
	defer func() { <-dbSemaphore }()

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `INSERT INTO sessions (id, user_id, device_fingerprint, referrer_source, activity_score, quality, total_interactions, page_views, started_at, last_activity_at, ended_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	          ON CONFLICT(id) DO UPDATE SET
	            user_id = excluded.user_id,
	            activity_score = excluded.activity_score,
	            quality = excluded.quality,
	            total_interactions = excluded.total_interactions,
	            page_views = excluded.page_views,
	            last_activity_at = excluded.last_activity_at,
	            ended_at = excluded.ended_at`

	var endedAt sql.NullTime
	if snap.EndedAt != nil {
		endedAt = sql.NullTime{Time: *snap.EndedAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		snap.SessionID, snap.UserID, snap.DeviceFingerprint, snap.ReferrerSource,
		snap.ActivityScore, string(snap.Quality), snap.TotalInteractions, snap.PageViews,
		snap.StartedAt.UTC(), snap.LastActivityAt.UTC(), endedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

// RecordSignal appends one signal row
func (r *Repository) RecordSignal(sessionID string, sig session.Signal) error {
	dbSemaphore <- struct{}{}
	defer func() { <-dbSemaphore }()

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `INSERT INTO signals (id, session_id, signal_type, intensity, page, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		security.GenerateULID(), sessionID, string(sig.Type), sig.Intensity, sig.Page, sig.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to record signal: %w", err)
	}
	return nil
}

// SignalCounts returns the number of persisted signals per type for a session
func (r *Repository) SignalCounts(sessionID string) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT signal_type, COUNT(*) FROM signals WHERE session_id = ? GROUP BY signal_type`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query signal counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var signalType string
		var count int
		if err := rows.Scan(&signalType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan signal count: %w", err)
		}
		counts[signalType] = count
	}
	return counts, rows.Err()
}
