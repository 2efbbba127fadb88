package session

import (
	"testing"
	"time"
)

func TestQualityFor(t *testing.T) {
	tests := []struct {
		name         string
		score        float64
		interactions int
		want         QualityTier
	}{
		{"high engagement", 9.0, 12, QualityHigh},
		{"high score few interactions", 9.0, 4, QualityLow},
		{"medium", 6.0, 6, QualityMedium},
		{"low", 1.0, 3, QualityLow},
		{"single interaction", 8.0, 1, QualityBounce},
		{"nothing", 0, 0, QualityBounce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QualityFor(tt.score, tt.interactions); got != tt.want {
				t.Errorf("QualityFor(%v, %d) = %v, want %v", tt.score, tt.interactions, got, tt.want)
			}
		})
	}
}

func TestApplySignalBounds(t *testing.T) {
	now := time.Now()
	s := New("sess1", "", "fp", now)

	for i := 0; i < 200; i++ {
		now = now.Add(time.Second)
		s.ApplySignal(Signal{Type: SignalMessage, Intensity: 10, Timestamp: now}, 0.15, now)
		if s.ActivityScore < 0 || s.ActivityScore > 10 {
			t.Fatalf("activity score out of bounds: %v", s.ActivityScore)
		}
	}

	if s.TotalInteractions != 200 {
		t.Errorf("totalInteractions = %d, want 200", s.TotalInteractions)
	}
}

func TestLowIntensityNeverHigh(t *testing.T) {
	now := time.Now()
	s := New("sess1", "", "fp", now)

	// A stream of minimal signals must never produce a high tier.
	for i := 0; i < 50; i++ {
		now = now.Add(time.Second)
		s.ApplySignal(Signal{Type: SignalBlur, Intensity: 1, Timestamp: now}, 0.15, now)
	}

	if s.Quality == QualityHigh {
		t.Errorf("quality = high after low-intensity signals, score %v", s.ActivityScore)
	}
}

func TestScoreDecaysWhileIdle(t *testing.T) {
	now := time.Now()
	s := New("sess1", "", "fp", now)

	s.ApplySignal(Signal{Type: SignalMessage, Intensity: 10, Timestamp: now}, 0.15, now)
	before := s.ActivityScore

	later := now.Add(30 * time.Minute)
	s.ApplySignal(Signal{Type: SignalBlur, Intensity: 1, Timestamp: later}, 0.15, later)

	// 30 minutes of decay outweighs one weak blur signal.
	if s.ActivityScore >= before {
		t.Errorf("score did not decay: before %v, after %v", before, s.ActivityScore)
	}
}

func TestIntensityClamped(t *testing.T) {
	now := time.Now()
	s := New("sess1", "", "fp", now)

	s.ApplySignal(Signal{Type: SignalMessage, Intensity: 9999, Timestamp: now}, 0.15, now)
	if s.ActivityScore > 10 {
		t.Errorf("score exceeded ceiling with huge intensity: %v", s.ActivityScore)
	}

	s2 := New("sess2", "", "fp", now)
	s2.ApplySignal(Signal{Type: SignalMessage, Intensity: -5, Timestamp: now}, 0.15, now)
	if s2.ActivityScore != 0 {
		t.Errorf("negative intensity contributed score: %v", s2.ActivityScore)
	}
}

func TestEndFreezesSession(t *testing.T) {
	now := time.Now()
	s := New("sess1", "", "fp", now)
	s.ApplySignal(Signal{Type: SignalPageView, Intensity: 5, Timestamp: now}, 0.15, now)

	s.End(now.Add(time.Minute))
	if s.IsActive {
		t.Fatal("session still active after End")
	}
	if s.EndedAt == nil {
		t.Fatal("endedAt not set after End")
	}

	frozen := s.ActivityScore
	s.ApplySignal(Signal{Type: SignalMessage, Intensity: 10, Timestamp: now.Add(2 * time.Minute)}, 0.15, now.Add(2*time.Minute))
	if s.ActivityScore != frozen {
		t.Errorf("score mutated after end: %v != %v", s.ActivityScore, frozen)
	}
}

func TestTimeouts(t *testing.T) {
	timeouts := Timeouts{
		Base:       30 * time.Minute,
		Bounce:     5 * time.Minute,
		Low:        15 * time.Minute,
		High:       60 * time.Minute,
		AbandonCap: 2 * time.Hour,
	}

	start := time.Now()

	t.Run("bounce session ends after bounce timeout", func(t *testing.T) {
		s := New("sess1", "", "fp", start)
		s.ApplySignal(Signal{Type: SignalPageView, Intensity: 3, Timestamp: start}, 0.15, start)

		if timeouts.ShouldEnd(s, start.Add(4*time.Minute)) {
			t.Error("ended before bounce timeout")
		}
		if !timeouts.ShouldEnd(s, start.Add(6*time.Minute)) {
			t.Error("did not end after bounce timeout")
		}
		if s.Quality != QualityBounce {
			t.Errorf("quality = %v, want bounce", s.Quality)
		}
	})

	t.Run("high tier with many interactions gets extended timeout", func(t *testing.T) {
		s := New("sess2", "", "fp", start)
		now := start
		for i := 0; i < 25; i++ {
			now = now.Add(time.Second)
			s.ApplySignal(Signal{Type: SignalMessage, Intensity: 10, Timestamp: now}, 0.15, now)
		}
		if s.Quality != QualityHigh {
			t.Fatalf("quality = %v, want high", s.Quality)
		}
		if timeouts.ShouldEnd(s, now.Add(45*time.Minute)) {
			t.Error("high-tier session ended at 45m despite 60m timeout")
		}
		if !timeouts.ShouldEnd(s, now.Add(61*time.Minute)) {
			t.Error("high-tier session survived past extended timeout")
		}
	})

	t.Run("abandon cap overrides tier", func(t *testing.T) {
		s := New("sess3", "", "fp", start)
		now := start
		for i := 0; i < 25; i++ {
			now = now.Add(4 * time.Minute)
			s.ApplySignal(Signal{Type: SignalMessage, Intensity: 10, Timestamp: now}, 0.15, now)
		}
		if !timeouts.ShouldEnd(s, start.Add(3*time.Hour)) {
			t.Error("session survived past abandon cap")
		}
	})

	t.Run("ended session never qualifies again", func(t *testing.T) {
		s := New("sess4", "", "fp", start)
		s.End(start)
		if timeouts.ShouldEnd(s, start.Add(24*time.Hour)) {
			t.Error("ShouldEnd true for already-ended session")
		}
	})
}

func TestParseSignalType(t *testing.T) {
	for _, valid := range []string{"page_view", "click", "scroll", "typing", "message", "focus", "blur"} {
		if _, err := ParseSignalType(valid); err != nil {
			t.Errorf("ParseSignalType(%q) unexpected error: %v", valid, err)
		}
	}
	if _, err := ParseSignalType("hover"); err == nil {
		t.Error("ParseSignalType accepted unknown type")
	}
}

func TestFingerprint(t *testing.T) {
	chrome := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	fp := Fingerprint(chrome, "203.0.113.7")
	if fp != "203.0.113.7-chrome-windows" {
		t.Errorf("Fingerprint = %q", fp)
	}

	fp2 := Fingerprint("", "")
	if fp2 != "unknown-unknown-unknown" {
		t.Errorf("empty Fingerprint = %q", fp2)
	}
}

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name       string
		ua         string
		browser    string
		os         string
		deviceType string
	}{
		{"iphone safari", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Safari/604.1", "safari", "ios", "mobile"},
		{"android chrome", "Mozilla/5.0 (Linux; Android 14) Chrome/120.0 Mobile Safari/537.36", "chrome", "android", "mobile"},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) Safari/604.1", "safari", "ios", "tablet"},
		{"mac firefox", "Mozilla/5.0 (Macintosh; Intel Mac OS X 14.0) Gecko/20100101 Firefox/121.0", "firefox", "macos", "desktop"},
		{"empty", "", "unknown", "unknown", "desktop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			browser, os, deviceType := ParseUserAgent(tt.ua)
			if browser != tt.browser || os != tt.os || deviceType != tt.deviceType {
				t.Errorf("ParseUserAgent = (%s, %s, %s), want (%s, %s, %s)",
					browser, os, deviceType, tt.browser, tt.os, tt.deviceType)
			}
		})
	}
}

func TestReferrerSource(t *testing.T) {
	tests := []struct {
		referrer string
		want     string
	}{
		{"", "direct"},
		{"direct", "direct"},
		{"https://www.google.com/search?q=x", "google"},
		{"https://m.facebook.com/", "facebook"},
		{"https://out.reddit.com/", "reddit"},
		{"https://example.com/blog", "other"},
	}

	for _, tt := range tests {
		if got := ReferrerSource(tt.referrer); got != tt.want {
			t.Errorf("ReferrerSource(%q) = %q, want %q", tt.referrer, got, tt.want)
		}
	}
}
