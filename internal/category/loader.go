package category

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const defaultName = "default"

// Paths helper for default/category files.
type Paths struct {
	BaseDir string // e.g. ./configs
}

func (p Paths) Dir() string {
	return filepath.Join(p.BaseDir, "categories")
}
func (p Paths) DefaultPath() string {
	return filepath.Join(p.Dir(), defaultName+".yaml")
}
func (p Paths) CategoryPath(key string) string {
	return filepath.Join(p.Dir(), key+".yaml")
}

// Loader reads category YAML files and merges default → category.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: category key or "$default"
}

// NewLoader creates a loader rooted at baseDir.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// Paths returns the file layout the loader reads.
func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged returns default.yaml overlaid with <key>.yaml, without normalization.
// Either file may be missing.
func (l *Loader) LoadMerged(key string) (RawConfig, error) {
	if err := checkKey(key); err != nil {
		return RawConfig{}, err
	}
	l.mu.RLock()
	if cfg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	catCfg, err := readYAML(l.paths.CategoryPath(key))
	if err != nil {
		return RawConfig{}, fmt.Errorf("read category %s: %w", key, err)
	}
	merged := mergeRaw(defCfg, catCfg)

	l.mu.Lock()
	l.cache["$default"] = defCfg
	l.cache[key] = merged
	l.mu.Unlock()

	return merged, nil
}

// Keys lists the category files present, sorted, excluding default.yaml.
func (l *Loader) Keys() ([]string, error) {
	entries, err := os.ReadDir(l.paths.Dir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".yaml" {
			continue
		}
		key := strings.TrimSuffix(name, ".yaml")
		if key == defaultName {
			continue
		}
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}

// Invalidate clears the cache. Call after the watcher reports a change.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

func checkKey(key string) error {
	if key == "" || key == defaultName || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("invalid category key %q", key)
	}
	return nil
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

// mergeRaw overlays b on a: set fields in b win, slices are replaced whole.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// draw
	if b.Draw.Zones != nil {
		z := *b.Draw.Zones
		out.Draw.Zones = &z
	}
	if b.Draw.Mode != "" {
		out.Draw.Mode = b.Draw.Mode
	}
	if b.Draw.TieBreak != "" {
		out.Draw.TieBreak = b.Draw.TieBreak
	}
	if len(b.Draw.PoolSizes) > 0 {
		out.Draw.PoolSizes = append([]int(nil), b.Draw.PoolSizes...)
	}

	// timing
	switch {
	case out.Timing == nil && b.Timing != nil:
		c := *b.Timing
		out.Timing = &c
	case out.Timing != nil && b.Timing != nil:
		c := *out.Timing
		if b.Timing.Settle != "" {
			c.Settle = b.Timing.Settle
		}
		if b.Timing.Spin != "" {
			c.Spin = b.Timing.Spin
		}
		if b.Timing.Open != "" {
			c.Open = b.Timing.Open
		}
		if b.Timing.Close != "" {
			c.Close = b.Timing.Close
		}
		out.Timing = &c
	}

	return out
}
