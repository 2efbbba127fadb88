package patterns

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/VelourMedia/pulsetrack-go/internal/domain/scoring"
	"github.com/VelourMedia/pulsetrack-go/internal/domain/tuning"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "patterns.json"))
}

func TestSaveRejectsBelowThreshold(t *testing.T) {
	st := newTestStore(t)

	saved, err := st.Save("hey", "heyy wyd", 8.4, scoring.Context{}, tuning.Defaults(), time.Now())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if saved {
		t.Error("pattern below threshold was saved")
	}
	if st.Stats().TotalPatterns != 0 {
		t.Error("library not empty")
	}
}

func TestSaveSkipsNearDuplicates(t *testing.T) {
	st := newTestStore(t)
	now := time.Now()
	cfg := tuning.Defaults()

	if saved, _ := st.Save("hey whats up", "heyy", 9.0, scoring.Context{}, cfg, now); !saved {
		t.Fatal("first save rejected")
	}

	// Same message (case-insensitive) with a close score is a duplicate.
	if saved, _ := st.Save("HEY WHATS UP", "yooo", 9.2, scoring.Context{}, cfg, now); saved {
		t.Error("near-duplicate saved")
	}

	// Same message with a clearly different score is kept.
	if saved, _ := st.Save("hey whats up", "different reply", 9.8, scoring.Context{}, cfg, now); !saved {
		t.Error("distinct-score pattern rejected")
	}
}

func TestSaveKeepsTop100Descending(t *testing.T) {
	st := newTestStore(t)
	now := time.Now()
	cfg := tuning.Defaults()

	for i := 0; i < 120; i++ {
		score := 8.5 + float64(i%15)*0.1
		msg := fmt.Sprintf("message number %d", i)
		if _, err := st.Save(msg, "reply", score, scoring.Context{}, cfg, now); err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
	}

	stats := st.Stats()
	if stats.TotalPatterns != 100 {
		t.Errorf("totalPatterns = %d, want 100", stats.TotalPatterns)
	}

	for i := 1; i < len(st.patterns); i++ {
		if st.patterns[i].Score > st.patterns[i-1].Score {
			t.Fatalf("patterns not sorted descending at %d", i)
		}
	}
	if stats.TopScore != st.patterns[0].Score {
		t.Errorf("topScore %v != first pattern score %v", stats.TopScore, st.patterns[0].Score)
	}
}

func TestStorePersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.json")
	now := time.Now()

	st := NewStore(path)
	if _, err := st.Save("hey whats up tonight", "heyy ngl nothing much", 9.1, scoring.Context{UserType: "LONELY_SINGLE"}, tuning.Defaults(), now); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	reloaded := NewStore(path)
	stats := reloaded.Stats()
	if stats.TotalPatterns != 1 {
		t.Fatalf("reloaded totalPatterns = %d, want 1", stats.TotalPatterns)
	}
	if stats.ContextBreakdown["LONELY_SINGLE"] != 1 {
		t.Error("context breakdown lost on reload")
	}
}

func TestFindSimilarExactAndOverlap(t *testing.T) {
	st := newTestStore(t)
	now := time.Now()
	cfg := tuning.Defaults()

	st.Save("what are you doing tonight", "ngl just thinking about u", 9.0, scoring.Context{}, cfg, now)
	st.Save("how much do you charge", "lol im not like that", 8.8, scoring.Context{}, cfg, now)

	// Exact match comes back first.
	results := st.FindSimilar("what are you doing tonight", 3)
	if len(results) == 0 || results[0].UserMessage != "what are you doing tonight" {
		t.Fatalf("exact match not first: %+v", results)
	}

	// No token overlap means no results.
	if results := st.FindSimilar("completely unrelated words here", 3); len(results) != 0 {
		t.Errorf("unrelated query returned %d patterns", len(results))
	}

	// Strong overlap clears the floor.
	results = st.FindSimilar("what are you doing later tonight", 3)
	if len(results) != 1 {
		t.Fatalf("overlap query returned %d patterns, want 1", len(results))
	}
}

func TestFindSimilarDefaultLimit(t *testing.T) {
	st := newTestStore(t)
	now := time.Now()
	cfg := tuning.Defaults()

	for i := 0; i < 6; i++ {
		st.Save(fmt.Sprintf("hey whats up number %d", i), "reply", 8.6+float64(i)*0.2, scoring.Context{}, cfg, now)
	}

	if results := st.FindSimilar("hey whats up number", 0); len(results) != 3 {
		t.Errorf("default limit returned %d, want 3", len(results))
	}
}

func TestByContext(t *testing.T) {
	st := newTestStore(t)
	now := time.Now()
	cfg := tuning.Defaults()

	st.Save("msg one here", "r1", 9.0, scoring.Context{UserType: "HORNY_ADDICT", IsSexual: true}, cfg, now)
	st.Save("msg two here", "r2", 8.9, scoring.Context{UserType: "MARRIED_GUILTY"}, cfg, now)

	sexual := true
	if got := st.ByContext("HORNY_ADDICT", &sexual, nil); len(got) != 1 {
		t.Errorf("ByContext(HORNY_ADDICT, sexual) = %d patterns, want 1", len(got))
	}
	if got := st.ByContext("", nil, nil); len(got) != 2 {
		t.Errorf("unfiltered ByContext = %d patterns, want 2", len(got))
	}
}

func TestBestConfig(t *testing.T) {
	st := newTestStore(t)

	if _, ok := st.BestConfig(); ok {
		t.Error("empty store returned a config")
	}

	cfg := tuning.Defaults()
	cfg.TypoFrequency = 0.33
	st.Save("msg one here", "r1", 8.6, scoring.Context{}, tuning.Defaults(), time.Now())
	st.Save("msg two here", "r2", 9.9, scoring.Context{}, cfg, time.Now())

	best, ok := st.BestConfig()
	if !ok {
		t.Fatal("BestConfig returned no config")
	}
	if best.TypoFrequency != 0.33 {
		t.Errorf("best config typoFrequency = %v, want 0.33 from top pattern", best.TypoFrequency)
	}
}

func TestClear(t *testing.T) {
	st := newTestStore(t)
	st.Save("msg one here", "r1", 9.0, scoring.Context{}, tuning.Defaults(), time.Now())

	if err := st.Clear(time.Now()); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if st.Stats().TotalPatterns != 0 {
		t.Error("library not empty after clear")
	}
}
