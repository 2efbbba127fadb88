// Package config provides centralized default values for PulseTrack
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Storage Paths
	DatabasePath   string
	HeuristicsPath string
	PatternsPath   string
	LogDirectory   string

	// Session Lifecycle
	MaxTrackedSessions   int
	SessionBaseTimeout   time.Duration
	SessionBounceTimeout time.Duration
	SessionLowTimeout    time.Duration
	SessionHighTimeout   time.Duration
	SessionAbandonCap    time.Duration
	DedupWindow          time.Duration
	LifecycleInterval    time.Duration
	ScoreDecayPerMinute  float64

	// Generation Provider
	GenerationURL     string
	GenerationModel   string
	GenerationTimeout time.Duration

	// Rate Limiting
	GenerationPerMinute int
	GenerationMinGap    time.Duration

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int

	// Admin
	AdminJWTSecret string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Storage Paths
	DatabasePath = getEnvString("DATABASE_PATH", "data/pulsetrack.db")
	HeuristicsPath = getEnvString("HEURISTICS_PATH", "config/heuristics.json")
	PatternsPath = getEnvString("PATTERNS_PATH", "data/successful-patterns.json")
	LogDirectory = getEnvString("LOG_DIRECTORY", "logs")

	// Session Lifecycle
	MaxTrackedSessions = getEnvInt("MAX_TRACKED_SESSIONS", 5000)
	SessionBaseTimeout = getEnvDuration("SESSION_BASE_TIMEOUT", 30*time.Minute)
	SessionBounceTimeout = getEnvDuration("SESSION_BOUNCE_TIMEOUT", 5*time.Minute)
	SessionLowTimeout = getEnvDuration("SESSION_LOW_TIMEOUT", 15*time.Minute)
	SessionHighTimeout = getEnvDuration("SESSION_HIGH_TIMEOUT", 60*time.Minute)
	SessionAbandonCap = getEnvDuration("SESSION_ABANDON_CAP", 2*time.Hour)
	DedupWindow = getEnvDuration("SESSION_DEDUP_WINDOW", time.Hour)
	LifecycleInterval = getEnvDuration("LIFECYCLE_INTERVAL", 5*time.Minute)
	ScoreDecayPerMinute = float64(getEnvInt("SCORE_DECAY_CENTIPOINTS_PER_MINUTE", 15)) / 100.0

	// Generation Provider
	GenerationURL = getEnvString("GENERATION_URL", "https://text.pollinations.ai/openai")
	GenerationModel = getEnvString("GENERATION_MODEL", "openai")
	GenerationTimeout = getEnvDuration("GENERATION_TIMEOUT", 25*time.Second)

	// Rate Limiting
	GenerationPerMinute = getEnvInt("GENERATION_PER_MINUTE", 10)
	GenerationMinGap = getEnvDuration("GENERATION_MIN_GAP", 6*time.Second)

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)

	// Admin
	AdminJWTSecret = getEnvString("ADMIN_JWT_SECRET", "")
}
