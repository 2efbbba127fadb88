// Package logging provides structured logging channels for PulseTrack
// operations with performance correlation capabilities.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Channel represents a logical logging channel for different system components
type Channel string

const (
	// System channels
	ChannelSystem   Channel = "system"   // General system operations
	ChannelStartup  Channel = "startup"  // Application startup and initialization
	ChannelShutdown Channel = "shutdown" // Application shutdown and cleanup

	// Business logic channels
	ChannelAnalytics Channel = "analytics" // Session tracking and lifecycle
	ChannelChat      Channel = "chat"      // Classification and response pipeline
	ChannelCache     Channel = "cache"     // Session store operations

	// Infrastructure channels
	ChannelDatabase Channel = "database" // Database operations and queries
	ChannelPerf     Channel = "performance"
	ChannelDebug    Channel = "debug"
)

// ChanneledLogger provides structured logging with multiple channels
type ChanneledLogger struct {
	channels   map[Channel]*slog.Logger
	channelsMu sync.RWMutex
	config     *LoggerConfig
	configMu   sync.RWMutex
}

// LoggerConfig contains configuration options for the channeled logger
type LoggerConfig struct {
	OutputToFile    bool   `json:"outputToFile"`
	OutputToConsole bool   `json:"outputToConsole"`
	LogDirectory    string `json:"logDirectory"`

	JSONFormat    bool `json:"jsonFormat"`
	IncludeSource bool `json:"includeSource"`

	DefaultLevel  slog.Level             `json:"defaultLevel"`
	ChannelLevels map[Channel]slog.Level `json:"channelLevels"`
}

// DefaultLoggerConfig returns a sensible default configuration
func DefaultLoggerConfig(logDirectory string) *LoggerConfig {
	return &LoggerConfig{
		OutputToFile:    true,
		OutputToConsole: true,
		LogDirectory:    logDirectory,
		JSONFormat:      true,
		IncludeSource:   false,
		DefaultLevel:    slog.LevelInfo,
		ChannelLevels:   make(map[Channel]slog.Level),
	}
}

// NewChanneledLogger creates a new channeled logger with the given configuration
func NewChanneledLogger(config *LoggerConfig) (*ChanneledLogger, error) {
	if config == nil {
		config = DefaultLoggerConfig("logs")
	}

	logger := &ChanneledLogger{
		channels: make(map[Channel]*slog.Logger),
		config:   config,
	}

	if config.OutputToFile {
		if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	channels := []Channel{
		ChannelSystem, ChannelStartup, ChannelShutdown,
		ChannelAnalytics, ChannelChat, ChannelCache,
		ChannelDatabase, ChannelPerf, ChannelDebug,
	}

	for _, channel := range channels {
		channelLogger, err := logger.createChannelLogger(channel)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger for channel %s: %w", channel, err)
		}
		logger.channels[channel] = channelLogger
	}

	return logger, nil
}

// createChannelLogger creates a slog.Logger for a specific channel
func (cl *ChanneledLogger) createChannelLogger(channel Channel) (*slog.Logger, error) {
	cl.configMu.RLock()
	defer cl.configMu.RUnlock()

	level := cl.config.DefaultLevel
	if channelLevel, exists := cl.config.ChannelLevels[channel]; exists {
		level = channelLevel
	}

	var writers []io.Writer

	if cl.config.OutputToConsole {
		writers = append(writers, os.Stdout)
	}

	if cl.config.OutputToFile {
		filename := fmt.Sprintf("%s.log", string(channel))
		logPath := filepath.Join(cl.config.LogDirectory, filename)

		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", logPath, err)
		}

		writers = append(writers, file)
	}

	var writer io.Writer
	if len(writers) == 1 {
		writer = writers[0]
	} else if len(writers) > 1 {
		writer = io.MultiWriter(writers...)
	} else {
		writer = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cl.config.IncludeSource,
	}

	var handler slog.Handler
	if cl.config.JSONFormat {
		handler = slog.NewJSONHandler(writer, handlerOpts)
	} else {
		handler = slog.NewTextHandler(writer, handlerOpts)
	}

	return slog.New(handler).With(slog.String("channel", string(channel))), nil
}

func (cl *ChanneledLogger) System() *slog.Logger    { return cl.channel(ChannelSystem) }
func (cl *ChanneledLogger) Startup() *slog.Logger   { return cl.channel(ChannelStartup) }
func (cl *ChanneledLogger) Shutdown() *slog.Logger  { return cl.channel(ChannelShutdown) }
func (cl *ChanneledLogger) Analytics() *slog.Logger { return cl.channel(ChannelAnalytics) }
func (cl *ChanneledLogger) Chat() *slog.Logger      { return cl.channel(ChannelChat) }
func (cl *ChanneledLogger) Cache() *slog.Logger     { return cl.channel(ChannelCache) }
func (cl *ChanneledLogger) Database() *slog.Logger  { return cl.channel(ChannelDatabase) }
func (cl *ChanneledLogger) Perf() *slog.Logger      { return cl.channel(ChannelPerf) }
func (cl *ChanneledLogger) Debug() *slog.Logger     { return cl.channel(ChannelDebug) }

func (cl *ChanneledLogger) channel(c Channel) *slog.Logger {
	cl.channelsMu.RLock()
	defer cl.channelsMu.RUnlock()
	return cl.channels[c]
}

// GetChannel returns a logger for a specific channel
func (cl *ChanneledLogger) GetChannel(channel Channel) *slog.Logger {
	cl.channelsMu.RLock()
	defer cl.channelsMu.RUnlock()

	if logger, exists := cl.channels[channel]; exists {
		return logger
	}
	return cl.channels[ChannelSystem]
}

// SetChannelLevel adjusts the level of a single channel at runtime.
// The channel's logger is rebuilt and swapped in under the write lock,
// so concurrent log calls always see a complete logger.
func (cl *ChanneledLogger) SetChannelLevel(channel Channel, level slog.Level) error {
	cl.channelsMu.RLock()
	_, known := cl.channels[channel]
	cl.channelsMu.RUnlock()
	if !known {
		return fmt.Errorf("unknown logging channel %q", channel)
	}

	cl.configMu.Lock()
	cl.config.ChannelLevels[channel] = level
	cl.configMu.Unlock()

	rebuilt, err := cl.createChannelLogger(channel)
	if err != nil {
		return err
	}

	cl.channelsMu.Lock()
	cl.channels[channel] = rebuilt
	cl.channelsMu.Unlock()
	return nil
}

// LogSlowOperation logs an operation that exceeded its expected duration
func (cl *ChanneledLogger) LogSlowOperation(operation string, duration time.Duration, sessionID string) {
	cl.Perf().Warn("Slow operation detected",
		slog.String("operation", operation),
		slog.Duration("duration", duration),
		slog.String("sessionId", sessionID),
	)
}
