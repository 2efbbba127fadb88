// Package patterns keeps a file-backed library of high-scoring responses.
// The library feeds operator tuning: similar past wins are surfaced for
// inspection and the best-performing config snapshot can be recalled.
package patterns

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/VelourMedia/pulsetrack-go/internal/domain/scoring"
	"github.com/VelourMedia/pulsetrack-go/internal/domain/tuning"
	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/security"
)

const (
	saveThreshold = 8.5
	maxPatterns   = 100
	minSimilarity = 0.3
	defaultLimit  = 3
)

// Pattern is one saved response with the context and config that produced it
type Pattern struct {
	ID          string          `json:"id"`
	UserMessage string          `json:"userMessage"`
	Response    string          `json:"response"`
	Score       float64         `json:"score"`
	Context     scoring.Context `json:"context"`
	Config      tuning.Config   `json:"config"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Stats summarizes the stored library
type Stats struct {
	TotalPatterns    int            `json:"totalPatterns"`
	AverageScore     float64        `json:"averageScore"`
	TopScore         float64        `json:"topScore"`
	ContextBreakdown map[string]int `json:"contextBreakdown"`
}

type metadata struct {
	Created       time.Time `json:"created"`
	LastUpdated   time.Time `json:"lastUpdated"`
	TotalPatterns int       `json:"totalPatterns"`
	AverageScore  float64   `json:"averageScore"`
}

type fileFormat struct {
	Patterns []Pattern `json:"patterns"`
	Metadata metadata  `json:"metadata"`
}

// Store is the mutex-guarded pattern library. Patterns are held sorted by
// score descending; every mutation is published atomically to disk.
type Store struct {
	mu       sync.Mutex
	path     string
	patterns []Pattern
}

// NewStore loads the library from path. A missing or corrupt file starts
// the library empty rather than failing startup.
func NewStore(path string) *Store {
	st := &Store{path: path}
	st.load()
	return st
}

func (st *Store) load() {
	data, err := os.ReadFile(st.path)
	if err != nil {
		return
	}

	var parsed fileFormat
	if err := json.Unmarshal(data, &parsed); err != nil {
		return
	}
	st.patterns = parsed.Patterns
	sort.SliceStable(st.patterns, func(i, j int) bool {
		return st.patterns[i].Score > st.patterns[j].Score
	})
}

// Save records a response if it clears the score threshold and is not a
// near-duplicate of an existing pattern. Returns true when stored.
func (st *Store) Save(userMessage, response string, score float64, ctx scoring.Context, cfg tuning.Config, now time.Time) (bool, error) {
	if score < saveThreshold {
		return false, nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	lower := strings.ToLower(userMessage)
	for _, p := range st.patterns {
		if strings.ToLower(p.UserMessage) == lower && math.Abs(p.Score-score) < 0.5 {
			return false, nil
		}
	}

	st.patterns = append(st.patterns, Pattern{
		ID:          security.GenerateULID(),
		UserMessage: userMessage,
		Response:    response,
		Score:       score,
		Context:     ctx,
		Config:      cfg,
		CreatedAt:   now,
	})

	sort.SliceStable(st.patterns, func(i, j int) bool {
		return st.patterns[i].Score > st.patterns[j].Score
	})
	if len(st.patterns) > maxPatterns {
		st.patterns = st.patterns[:maxPatterns]
	}

	if err := st.persistLocked(now); err != nil {
		return false, err
	}
	return true, nil
}

// persistLocked writes the library atomically: temp file then rename, so a
// crash mid-write never leaves a truncated library behind.
func (st *Store) persistLocked(now time.Time) error {
	if err := os.MkdirAll(filepath.Dir(st.path), 0755); err != nil {
		return fmt.Errorf("failed to create patterns directory: %w", err)
	}

	meta := metadata{
		Created:       now,
		LastUpdated:   now,
		TotalPatterns: len(st.patterns),
	}
	if len(st.patterns) > 0 {
		meta.Created = st.patterns[0].CreatedAt
		sum := 0.0
		for _, p := range st.patterns {
			sum += p.Score
		}
		meta.AverageScore = sum / float64(len(st.patterns))
	}

	data, err := json.MarshalIndent(fileFormat{Patterns: st.patterns, Metadata: meta}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal patterns: %w", err)
	}

	tmp := st.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write patterns file: %w", err)
	}
	if err := os.Rename(tmp, st.path); err != nil {
		return fmt.Errorf("failed to publish patterns file: %w", err)
	}
	return nil
}

// FindSimilar returns up to limit patterns whose prompting message resembles
// userMessage. Exact matches score 1.0, otherwise token-set overlap; matches
// at or below the similarity floor are excluded.
func (st *Store) FindSimilar(userMessage string, limit int) []Pattern {
	if limit <= 0 {
		limit = defaultLimit
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	lower := strings.ToLower(userMessage)
	type scored struct {
		pattern    Pattern
		similarity float64
	}

	candidates := make([]scored, 0, len(st.patterns))
	for _, p := range st.patterns {
		candidates = append(candidates, scored{p, similarity(lower, strings.ToLower(p.UserMessage))})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		diff := candidates[i].similarity - candidates[j].similarity
		if math.Abs(diff) > 0.1 {
			return diff > 0
		}
		return candidates[i].pattern.Score > candidates[j].pattern.Score
	})

	results := make([]Pattern, 0, limit)
	for _, c := range candidates {
		if c.similarity <= minSimilarity {
			continue
		}
		results = append(results, c.pattern)
		if len(results) == limit {
			break
		}
	}
	return results
}

func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	aWords := tokenSet(a)
	bWords := tokenSet(b)
	shared := 0
	for w := range aWords {
		if bWords[w] {
			shared++
		}
	}

	max := len(aWords)
	if len(bWords) > max {
		max = len(bWords)
	}
	if max == 0 {
		return 0
	}
	return float64(shared) / float64(max)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Split(s, " ") {
		set[w] = true
	}
	return set
}

// ByContext filters patterns on classification context. Empty userType and
// nil booleans match everything.
func (st *Store) ByContext(userType string, isSexual, isNervous *bool) []Pattern {
	st.mu.Lock()
	defer st.mu.Unlock()

	results := make([]Pattern, 0)
	for _, p := range st.patterns {
		if userType != "" && p.Context.UserType != userType {
			continue
		}
		if isSexual != nil && p.Context.IsSexual != *isSexual {
			continue
		}
		if isNervous != nil && p.Context.IsNervous != *isNervous {
			continue
		}
		results = append(results, p)
	}
	return results
}

// BestConfig returns the config snapshot behind the top-scoring pattern
func (st *Store) BestConfig() (tuning.Config, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if len(st.patterns) == 0 {
		return tuning.Config{}, false
	}
	return st.patterns[0].Config, true
}

// Stats summarizes the library for the inspection endpoint
func (st *Store) Stats() Stats {
	st.mu.Lock()
	defer st.mu.Unlock()

	stats := Stats{
		TotalPatterns:    len(st.patterns),
		ContextBreakdown: map[string]int{},
	}

	sum := 0.0
	for _, p := range st.patterns {
		sum += p.Score
		key := p.Context.UserType
		if key == "" {
			key = "UNKNOWN"
		}
		stats.ContextBreakdown[key]++
	}

	if len(st.patterns) > 0 {
		stats.AverageScore = sum / float64(len(st.patterns))
		stats.TopScore = st.patterns[0].Score
	}
	return stats
}

// Clear empties the library and publishes the empty state
func (st *Store) Clear(now time.Time) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.patterns = nil
	return st.persistLocked(now)
}
