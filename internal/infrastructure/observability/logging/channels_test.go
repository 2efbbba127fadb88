package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func newFileOnlyLogger(t *testing.T) (*ChanneledLogger, string) {
	t.Helper()

	dir := t.TempDir()
	cfg := DefaultLoggerConfig(dir)
	cfg.OutputToConsole = false

	logger, err := NewChanneledLogger(cfg)
	if err != nil {
		t.Fatalf("logger init failed: %v", err)
	}
	return logger, dir
}

func TestSetChannelLevelTakesEffect(t *testing.T) {
	logger, dir := newFileOnlyLogger(t)

	logger.Chat().Debug("suppressed line")
	if err := logger.SetChannelLevel(ChannelChat, slog.LevelDebug); err != nil {
		t.Fatalf("SetChannelLevel failed: %v", err)
	}
	logger.Chat().Debug("visible line")

	data, err := os.ReadFile(filepath.Join(dir, "chat.log"))
	if err != nil {
		t.Fatalf("read chat log: %v", err)
	}
	if strings.Contains(string(data), "suppressed line") {
		t.Error("debug line logged before level change")
	}
	if !strings.Contains(string(data), "visible line") {
		t.Error("debug line missing after level change")
	}
}

func TestSetChannelLevelRejectsUnknownChannel(t *testing.T) {
	logger, _ := newFileOnlyLogger(t)

	if err := logger.SetChannelLevel(Channel("carrier-pigeon"), slog.LevelDebug); err == nil {
		t.Error("unknown channel accepted")
	}
}

func TestSetChannelLevelConcurrentWithLogging(t *testing.T) {
	logger, _ := newFileOnlyLogger(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				logger.Analytics().Info("concurrent write", "n", j)
			}
		}()
	}
	for j := 0; j < 50; j++ {
		level := slog.LevelInfo
		if j%2 == 0 {
			level = slog.LevelWarn
		}
		if err := logger.SetChannelLevel(ChannelAnalytics, level); err != nil {
			t.Fatalf("SetChannelLevel failed: %v", err)
		}
	}
	wg.Wait()
}
