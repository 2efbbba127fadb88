// Package database provides the core functionality for creating and managing
// database connections in a clean, isolated manner.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/observability/logging"
	_ "github.com/mattn/go-sqlite3"
)

// slowConnectionThreshold flags connection setup worth logging.
const slowConnectionThreshold = 100 * time.Millisecond

// DB represents a wrapper around the standard SQL database connection.
type DB struct {
	*sql.DB
}

// PoolConfig bounds the sqlite connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewConnection establishes a new database connection at the given path.
func NewConnection(databasePath string, pool PoolConfig) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(databasePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", databasePath)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// NewConnectionWithLogger establishes a new database connection with logging.
func NewConnectionWithLogger(databasePath string, pool PoolConfig, logger *logging.ChanneledLogger) (*DB, error) {
	start := time.Now()
	logger.Database().Debug("Creating new database connection", "databasePath", databasePath)

	db, err := NewConnection(databasePath, pool)
	if err != nil {
		logger.Database().Error("Failed to open database connection", "error", err.Error(), "databasePath", databasePath)
		return nil, err
	}

	duration := time.Since(start)
	logger.Database().Info("Database connection established", "databasePath", databasePath, "duration", duration)
	if duration > slowConnectionThreshold {
		logger.LogSlowOperation("DATABASE_CONNECTION", duration, "system")
	}

	return db, nil
}

// CreateTables creates the session and signal tables if missing.
func (db *DB) CreateTables() error {
	tables := []struct {
		name string
		sql  string
	}{
		{"sessions", "CREATE TABLE IF NOT EXISTS sessions (id TEXT PRIMARY KEY, user_id TEXT, device_fingerprint TEXT, referrer_source TEXT, activity_score REAL NOT NULL DEFAULT 0, quality TEXT NOT NULL, total_interactions INTEGER NOT NULL DEFAULT 0, page_views INTEGER NOT NULL DEFAULT 0, started_at TIMESTAMP NOT NULL, last_activity_at TIMESTAMP NOT NULL, ended_at TIMESTAMP)"},
		{"signals", "CREATE TABLE IF NOT EXISTS signals (id TEXT PRIMARY KEY, session_id TEXT NOT NULL REFERENCES sessions(id), signal_type TEXT NOT NULL, intensity REAL NOT NULL, page TEXT, created_at TIMESTAMP NOT NULL)"},
	}

	for _, t := range tables {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, t.name).Scan(&name)
		if err == sql.ErrNoRows {
			if _, err := db.Exec(t.sql); err != nil {
				return fmt.Errorf("failed to create table %s: %w", t.name, err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to check table %s existence: %w", t.name, err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_sessions_fingerprint ON sessions(device_fingerprint)",
		"CREATE INDEX IF NOT EXISTS idx_sessions_last_activity ON sessions(last_activity_at)",
		"CREATE INDEX IF NOT EXISTS idx_signals_session_id ON signals(session_id)",
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
