package category

import (
	"fmt"
	"strings"
	"time"

	"github.com/xtding233/bolillero/internal/draw"
)

// ValidateRaw checks semantic constraints of a (merged) RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// draw.zones
	if cfg.Draw.Zones != nil && (*cfg.Draw.Zones < draw.MinZones || *cfg.Draw.Zones > draw.MaxZones) {
		errs = append(errs, fmt.Sprintf("draw.zones must be in [%d,%d]", draw.MinZones, draw.MaxZones))
	}
	if cfg.Draw.Mode != "" && !draw.Mode(cfg.Draw.Mode).Valid() {
		errs = append(errs, "draw.mode must be one of: fixed, random")
	}
	if cfg.Draw.TieBreak != "" && !draw.TieBreak(cfg.Draw.TieBreak).Valid() {
		errs = append(errs, "draw.tie_break must be one of: first, uniform")
	}

	// pool sizes: at most one per pool, each within the grid
	if n := len(cfg.Draw.PoolSizes); n > draw.NumPools {
		errs = append(errs, fmt.Sprintf("draw.pool_sizes has %d entries; max %d", n, draw.NumPools))
	}
	for i, s := range cfg.Draw.PoolSizes {
		if s < 0 {
			errs = append(errs, fmt.Sprintf("draw.pool_sizes[%d] must be >= 0", i))
		}
		if cfg.Draw.Zones != nil && s > *cfg.Draw.Zones {
			errs = append(errs, fmt.Sprintf("draw.pool_sizes[%d]=%d exceeds zones=%d", i, s, *cfg.Draw.Zones))
		}
	}

	// timing
	if cfg.Timing != nil {
		if d, err := parseDuration(cfg.Timing.Settle); err != nil {
			errs = append(errs, "timing.settle: "+err.Error())
		} else if cfg.Timing.Settle != "" && d < draw.MinSettleDelay {
			errs = append(errs, fmt.Sprintf("timing.settle must be >= %s", draw.MinSettleDelay))
		}
		for name, v := range map[string]string{"spin": cfg.Timing.Spin, "open": cfg.Timing.Open, "close": cfg.Timing.Close} {
			if d, err := parseDuration(v); err != nil {
				errs = append(errs, "timing."+name+": "+err.Error())
			} else if d < 0 {
				errs = append(errs, "timing."+name+" must be >= 0")
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// parseDuration treats "" as zero.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
