// types.go
package category

import (
	"time"

	"github.com/xtding233/bolillero/internal/draw"
)

// RawConfig is one category YAML file; every field is optional so files can layer.
type RawConfig struct {
	Version string        `yaml:"version"`
	Draw    DrawSection   `yaml:"draw"`
	Timing  *TimingConfig `yaml:"timing,omitempty"`
	Notes   string        `yaml:"notes,omitempty"`
}

type DrawSection struct {
	Zones     *int   `yaml:"zones"`
	Mode      string `yaml:"mode"`      // "fixed" | "random"
	TieBreak  string `yaml:"tie_break"` // "first" | "uniform"; empty pairs with mode
	PoolSizes []int  `yaml:"pool_sizes,omitempty"`
}

// TimingConfig holds Go duration strings ("2s", "800ms").
type TimingConfig struct {
	Settle string `yaml:"settle,omitempty"` // reveal hold, >= 1.5s
	Spin   string `yaml:"spin,omitempty"`
	Open   string `yaml:"open,omitempty"`
	Close  string `yaml:"close,omitempty"`
}

// Settings are the normalized values the draw and presenters run with.
type Settings struct {
	Key       string
	ZoneCount int
	ZonesSet  bool // ZoneCount came from a file or an override
	Mode      draw.Mode
	TieBreak  draw.TieBreak // empty means the pairing with Mode
	PoolSizes [draw.NumPools]int

	Settle time.Duration
	Spin   time.Duration
	Open   time.Duration
	Close  time.Duration

	Version string // effective config version for tracing
}

// Cage animation lengths: 3.2s spin, 0.8s open and close.
const (
	DefaultZones = 6
	DefaultSpin  = 3200 * time.Millisecond
	DefaultOpen  = 800 * time.Millisecond
	DefaultClose = 800 * time.Millisecond
)
