package main

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/xtding233/bolillero/internal/category"
	"github.com/xtding233/bolillero/internal/config"
)

var errUsage = errors.New("usage")

// commonFlags binds the store and category flags. Defaults come from env.
func commonFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.Category, "category", cfg.Category, "category key")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "store driver: sqlite, postgres or yaml")
	fs.StringVar(&cfg.DatabaseURL, "db", cfg.DatabaseURL, "postgres connection URL")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "data directory for sqlite and yaml stores")
	fs.StringVar(&cfg.ConfigDir, "config", cfg.ConfigDir, "directory holding categories/*.yaml")
}

// runOptions are the draw flags that have no env counterpart.
type runOptions struct {
	Zones    int
	Mode     string
	TieBreak string
	Watch    bool
	Rounds   int
}

func runFlags(fs *flag.FlagSet, cfg *config.Config, ro *runOptions) {
	commonFlags(fs, cfg)
	fs.DurationVar(&cfg.Settle, "settle", cfg.Settle, "reveal hold before placement (min 1.5s)")
	fs.DurationVar(&cfg.Spin, "spin", cfg.Spin, "spin animation length")
	fs.DurationVar(&cfg.Open, "open", cfg.Open, "open animation length")
	fs.DurationVar(&cfg.Close, "close", cfg.Close, "close animation length")
	fs.BoolVar(&cfg.Sound, "sound", cfg.Sound, "play a chime on every reveal")
	fs.BoolVar(&cfg.TUI, "tui", cfg.TUI, "draw on a terminal board")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "seed for random order and placement (0 = crypto)")
	fs.DurationVar(&cfg.WatchInterval, "watch-interval", cfg.WatchInterval, "poll interval for -watch")
	fs.IntVar(&ro.Zones, "zones", 0, "zone count when the category has no saved state")
	fs.StringVar(&ro.Mode, "mode", "", "default draw mode: fixed or random")
	fs.StringVar(&ro.TieBreak, "tie-break", "", "default placement policy: first or uniform")
	fs.BoolVar(&ro.Watch, "watch", false, "reload category files when they change")
	fs.IntVar(&ro.Rounds, "rounds", 1, "number of consecutive draws")
}

// parse parses args and validates the merged configuration.
func parse(fs *flag.FlagSet, cfg *config.Config, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

// overrides turns explicit flags and env values into category overrides.
func (ro runOptions) overrides(cfg config.Config) category.Overrides {
	var ov category.Overrides
	if ro.Zones > 0 {
		z := ro.Zones
		ov.Zones = &z
	}
	if ro.Mode != "" {
		m := ro.Mode
		ov.Mode = &m
	}
	if ro.TieBreak != "" {
		tb := ro.TieBreak
		ov.TieBreak = &tb
	}
	if cfg.Settle > 0 {
		s := cfg.Settle
		ov.Settle = &s
	}
	return ov
}

func pick(override, fallback time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	return fallback
}
