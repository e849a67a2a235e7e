// resolve.go
package category

import (
	"fmt"
	"time"

	"github.com/xtding233/bolillero/internal/draw"
	"github.com/xtding233/bolillero/internal/store"
)

// Overrides carries command-line or env values that beat the YAML layers.
type Overrides struct {
	Zones    *int
	Mode     *string
	TieBreak *string
	Settle   *time.Duration
}

type Resolver interface {
	// Returns merged RawConfig and normalized Settings
	Resolve(key string, o Overrides) (RawConfig, Settings, error)
}

var _ Resolver = (*Loader)(nil)

// Resolve merges default → category → overrides, validates, and normalizes.
func (l *Loader) Resolve(key string, o Overrides) (RawConfig, Settings, error) {
	raw, err := l.LoadMerged(key)
	if err != nil {
		return RawConfig{}, Settings{}, err
	}
	if o.Zones != nil {
		z := *o.Zones
		raw.Draw.Zones = &z
	}
	if o.Mode != nil {
		raw.Draw.Mode = *o.Mode
	}
	if o.TieBreak != nil {
		raw.Draw.TieBreak = *o.TieBreak
	}
	if o.Settle != nil {
		t := TimingConfig{}
		if raw.Timing != nil {
			t = *raw.Timing
		}
		t.Settle = o.Settle.String()
		raw.Timing = &t
	}
	if err := ValidateRaw(raw); err != nil {
		return raw, Settings{}, fmt.Errorf("category %s: %w", key, err)
	}
	return raw, normalize(key, raw), nil
}

// Defaults returns the built-in settings used when no file configures key.
func Defaults(key string) Settings { return normalize(key, RawConfig{}) }

// normalize fills defaults; raw must already be valid.
func normalize(key string, raw RawConfig) Settings {
	s := Settings{
		Key:       key,
		ZoneCount: DefaultZones,
		Mode:      draw.ModeFixed,
		TieBreak:  draw.TieBreak(raw.Draw.TieBreak),
		Settle:    draw.DefaultSettleDelay,
		Spin:      DefaultSpin,
		Open:      DefaultOpen,
		Close:     DefaultClose,
		Version:   raw.Version,
	}
	if raw.Draw.Zones != nil {
		s.ZoneCount, s.ZonesSet = *raw.Draw.Zones, true
	}
	if raw.Draw.Mode != "" {
		s.Mode = draw.Mode(raw.Draw.Mode)
	}
	copy(s.PoolSizes[:], raw.Draw.PoolSizes)
	if t := raw.Timing; t != nil {
		setIfPositive(&s.Settle, t.Settle)
		setIfPositive(&s.Spin, t.Spin)
		setIfPositive(&s.Open, t.Open)
		setIfPositive(&s.Close, t.Close)
	}
	return s
}

func setIfPositive(dst *time.Duration, v string) {
	if d, err := parseDuration(v); err == nil && d > 0 {
		*dst = d
	}
}

// Definitions resolves every category file into the persistence layer's shape.
// Files that fail validation are reported, not skipped.
func (l *Loader) Definitions() ([]store.CategoryDefinition, error) {
	keys, err := l.Keys()
	if err != nil {
		return nil, err
	}
	defs := make([]store.CategoryDefinition, 0, len(keys))
	for _, k := range keys {
		_, s, err := l.Resolve(k, Overrides{})
		if err != nil {
			return nil, err
		}
		defs = append(defs, store.CategoryDefinition{Key: k, ZoneCount: s.ZoneCount, PoolSizes: s.PoolSizes})
	}
	return defs, nil
}
