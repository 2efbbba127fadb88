// Package heuristics owns the hot-reloadable tuning configuration. The
// JSON file on disk is the source of truth; operators can edit it directly
// or through the config endpoints, and readers always see the latest
// published state without a restart.
package heuristics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/VelourMedia/pulsetrack-go/internal/domain/tuning"
)

// Store serves tuning.Config with lazy reload. Get checks the file mtime
// and re-reads only when the file changed since the last load.
type Store struct {
	mu        sync.Mutex
	path      string
	current   tuning.Config
	lastMod   time.Time
	hasLoaded bool
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Get returns the current config, reloading from disk if the file changed.
// A missing or corrupt file falls back to defaults rather than failing.
func (st *Store) Get() tuning.Config {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.getLocked()
}

func (st *Store) getLocked() tuning.Config {
	info, err := os.Stat(st.path)
	if err != nil {
		if !st.hasLoaded {
			st.current = tuning.Defaults()
			st.hasLoaded = true
		}
		return st.current
	}

	if st.hasLoaded && !info.ModTime().After(st.lastMod) {
		return st.current
	}

	data, err := os.ReadFile(st.path)
	if err != nil {
		if !st.hasLoaded {
			st.current = tuning.Defaults()
			st.hasLoaded = true
		}
		return st.current
	}

	cfg := tuning.Defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		if !st.hasLoaded {
			st.current = tuning.Defaults()
			st.hasLoaded = true
		}
		return st.current
	}

	st.current = cfg
	st.lastMod = info.ModTime()
	st.hasLoaded = true
	return st.current
}

// Update deep-merges a partial config document into the current config and
// publishes the result. Unknown keys are ignored; absent keys keep their
// current values.
func (st *Store) Update(partial map[string]any, now time.Time) (tuning.Config, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	current := st.getLocked()

	base, err := toMap(current)
	if err != nil {
		return tuning.Config{}, err
	}
	deepMerge(base, partial)

	merged, err := fromMap(base)
	if err != nil {
		return tuning.Config{}, fmt.Errorf("invalid config update: %w", err)
	}

	merged.LastUpdated = now
	if err := st.persistLocked(merged); err != nil {
		return tuning.Config{}, err
	}
	return merged, nil
}

// Reset restores defaults and publishes them
func (st *Store) Reset(now time.Time) (tuning.Config, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	cfg := tuning.Defaults()
	cfg.LastUpdated = now
	if err := st.persistLocked(cfg); err != nil {
		return tuning.Config{}, err
	}
	return cfg, nil
}

// Adjust sets a single value addressed by a dotted JSON path, e.g.
// "fillers.startChance" or "classification.rules.addictInstant".
func (st *Store) Adjust(dottedPath string, value any, now time.Time) (tuning.Config, error) {
	parts := strings.Split(dottedPath, ".")
	if dottedPath == "" || len(parts) == 0 {
		return tuning.Config{}, fmt.Errorf("empty config path")
	}

	partial := map[string]any{}
	node := partial
	for i, part := range parts {
		if i == len(parts)-1 {
			node[part] = value
			break
		}
		child := map[string]any{}
		node[part] = child
		node = child
	}

	return st.Update(partial, now)
}

// persistLocked publishes atomically: temp file then rename
func (st *Store) persistLocked(cfg tuning.Config) error {
	if err := os.MkdirAll(filepath.Dir(st.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp := st.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, st.path); err != nil {
		return fmt.Errorf("failed to publish config file: %w", err)
	}

	st.current = cfg
	st.hasLoaded = true
	if info, err := os.Stat(st.path); err == nil {
		st.lastMod = info.ModTime()
	}
	return nil
}

func toMap(cfg tuning.Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return m, nil
}

func fromMap(m map[string]any) (tuning.Config, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return tuning.Config{}, err
	}
	var cfg tuning.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return tuning.Config{}, err
	}
	return cfg, nil
}

// deepMerge overlays src onto dst in place. Nested objects merge key by
// key; everything else replaces wholesale.
func deepMerge(dst, src map[string]any) {
	for key, srcVal := range src {
		if srcMap, ok := srcVal.(map[string]any); ok {
			if dstMap, ok := dst[key].(map[string]any); ok {
				deepMerge(dstMap, srcMap)
				continue
			}
		}
		dst[key] = srcVal
	}
}
