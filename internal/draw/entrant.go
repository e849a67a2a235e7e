package draw

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// NumPools is the fixed number of pools (ball cages). Pool i feeds grid column i-1.
const NumPools = 4

// Entrant is one named participant. Immutable once created.
type Entrant struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	Pool int    `yaml:"pool" json:"pool"` // 1..NumPools
}

// Column returns the grid column fed by the entrant's pool.
func (e Entrant) Column() int { return e.Pool - 1 }

// Pools holds the four ordered pools. Pools[i] stores entrants with Pool == i+1.
type Pools [NumPools][]Entrant

// Len returns the total number of entrants across all pools.
func (p *Pools) Len() int {
	n := 0
	for i := range p {
		n += len(p[i])
	}
	return n
}

// IDs returns the ids of pool (1-based) in stored order.
func (p *Pools) IDs(pool int) []string {
	if pool < 1 || pool > NumPools {
		return nil
	}
	ids := make([]string, len(p[pool-1]))
	for i, e := range p[pool-1] {
		ids[i] = e.ID
	}
	return ids
}

// Index builds the identity lookup used for one draw.
func (p *Pools) Index() map[string]Entrant {
	idx := make(map[string]Entrant, p.Len())
	for i := range p {
		for _, e := range p[i] {
			idx[e.ID] = e
		}
	}
	return idx
}

// Validate checks that every entrant sits in the pool it names and that ids are unique.
func (p *Pools) Validate() error {
	if errs := p.problems(); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(errs, "; "))
	}
	return nil
}

func (p *Pools) problems() []string {
	var errs []string
	seen := make(map[string]bool, p.Len())
	for i := range p {
		for j, e := range p[i] {
			if e.ID == "" {
				errs = append(errs, fmt.Sprintf("pools[%d][%d] has empty id", i, j))
				continue
			}
			if e.Pool != i+1 {
				errs = append(errs, fmt.Sprintf("entrant %q stored in pool %d but names pool %d", e.ID, i+1, e.Pool))
			}
			if seen[e.ID] {
				errs = append(errs, fmt.Sprintf("entrant id %q appears more than once", e.ID))
			}
			seen[e.ID] = true
		}
	}
	return errs
}

// clone returns a deep copy so callers never share backing arrays.
func (p *Pools) clone() Pools {
	var out Pools
	for i := range p {
		if p[i] != nil {
			out[i] = append([]Entrant(nil), p[i]...)
		}
	}
	return out
}

// Config is the persisted draw state for one category.
type Config struct {
	Key        string   `yaml:"key" json:"key"`
	ZoneCount  int      `yaml:"zone_count" json:"zone_count"`
	Pools      Pools    `yaml:"pools" json:"pools"`
	FixedOrder []string `yaml:"fixed_order" json:"fixed_order"`
	Mode       Mode     `yaml:"mode,omitempty" json:"mode,omitempty"`
	TieBreak   TieBreak `yaml:"tie_break,omitempty" json:"tie_break,omitempty"`
}

// NewConfig returns an empty configuration for key with n zones.
func NewConfig(key string, zones int) Config {
	return Config{Key: key, ZoneCount: zones, Mode: ModeFixed}
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := c
	out.Pools = c.Pools.clone()
	if c.FixedOrder != nil {
		out.FixedOrder = append([]string(nil), c.FixedOrder...)
	}
	return out
}

// EffectiveMode treats an empty mode as fixed.
func (c Config) EffectiveMode() Mode {
	if c.Mode == "" {
		return ModeFixed
	}
	return c.Mode
}

// EffectiveTieBreak falls back to the conventional pairing with the draw mode.
func (c Config) EffectiveTieBreak() TieBreak {
	if c.TieBreak == "" {
		return DefaultTieBreak(c.EffectiveMode())
	}
	return c.TieBreak
}

// Validate reports every problem that would keep a draw from starting.
func (c Config) Validate() error {
	var errs []string
	if c.ZoneCount < MinZones || c.ZoneCount > MaxZones {
		errs = append(errs, fmt.Sprintf("zone count %d outside [%d,%d]", c.ZoneCount, MinZones, MaxZones))
	}
	if !c.EffectiveMode().Valid() {
		errs = append(errs, fmt.Sprintf("unknown draw mode %q", c.Mode))
	}
	if !c.EffectiveTieBreak().Valid() {
		errs = append(errs, fmt.Sprintf("unknown tie-break policy %q", c.TieBreak))
	}
	errs = append(errs, c.Pools.problems()...)
	seen := make(map[string]int, len(c.FixedOrder))
	for _, ref := range c.FixedOrder {
		if seen[ref]++; seen[ref] == 2 {
			errs = append(errs, fmt.Sprintf("draw order lists %q more than once", ref))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(errs, "; "))
	}
	return nil
}

// AddEntrant appends a new entrant to pool (1-based) and to the end of the fixed order.
func (c *Config) AddEntrant(pool int, name string) (Entrant, error) {
	if pool < 1 || pool > NumPools {
		return Entrant{}, fmt.Errorf("%w: pool %d outside [1,%d]", ErrInvalidConfiguration, pool, NumPools)
	}
	clean := norm.NFC.String(strings.TrimSpace(name))
	if clean == "" {
		return Entrant{}, fmt.Errorf("%w: entrant name is empty", ErrInvalidConfiguration)
	}
	e := Entrant{ID: "team-" + uuid.NewString(), Name: clean, Pool: pool}
	c.Pools[pool-1] = append(c.Pools[pool-1], e)
	c.FixedOrder = append(c.FixedOrder, e.ID)
	return e, nil
}

// RemoveEntrant deletes the entrant and every draw-order reference to it.
func (c *Config) RemoveEntrant(id string) bool {
	removed := false
	for i := range c.Pools {
		kept := make([]Entrant, 0, len(c.Pools[i]))
		for _, e := range c.Pools[i] {
			if e.ID == id {
				removed = true
				continue
			}
			kept = append(kept, e)
		}
		c.Pools[i] = kept
	}
	if !removed {
		return false
	}
	order := make([]string, 0, len(c.FixedOrder))
	for _, ref := range c.FixedOrder {
		if ref != id {
			order = append(order, ref)
		}
	}
	c.FixedOrder = order
	return true
}

// MoveInOrder swaps id with its neighbour delta positions away (-1 up, +1 down).
// Moves past either end are refused.
func (c *Config) MoveInOrder(id string, delta int) bool {
	from := -1
	for i, ref := range c.FixedOrder {
		if ref == id {
			from = i
			break
		}
	}
	to := from + delta
	if from < 0 || delta == 0 || to < 0 || to >= len(c.FixedOrder) {
		return false
	}
	c.FixedOrder[from], c.FixedOrder[to] = c.FixedOrder[to], c.FixedOrder[from]
	return true
}

// SetZoneCount changes the grid size; values outside [MinZones,MaxZones] are rejected.
func (c *Config) SetZoneCount(n int) error {
	if n < MinZones || n > MaxZones {
		return fmt.Errorf("%w: zone count %d outside [%d,%d]", ErrInvalidConfiguration, n, MinZones, MaxZones)
	}
	c.ZoneCount = n
	return nil
}
